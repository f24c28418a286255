// Package parser implements fnlang's recursive-descent, fully-backtracking
// parser: a Library plus a list of diagnostic strings.
//
// Every production records p.pos on entry and restores it on mismatch
// (Parser.mark / Parser.reset). A production may push a diagnostic and then
// still backtrack. The diagnostic is not rolled back with the position, so
// an abandoned alternative can leave behind an error for input that went on
// to parse successfully some other way.
package parser

import (
	"io"

	"github.com/artuross/fnlang/internal/lang/ast"
	"github.com/artuross/fnlang/internal/lang/lexer"
)

// Lexer is the subset of *lexer.Lexer the parser depends on, grounded on
// internal/exprtemplate/parser/parser.go's Lexer interface seam.
type Lexer interface {
	ReadToken() (*lexer.Token, error)
	SetUnscopedIdentifiers(bool)
}

// Parser turns a token stream into an *ast.Library.
type Parser struct {
	lexer  Lexer
	tokens []*lexer.Token
	pos    int
	errors []string
}

// New creates a Parser reading tokens from lex.
func New(lex Lexer) *Parser {
	return &Parser{lexer: lex}
}

// Parse lexes and parses src in one step, the package's main entry point.
func Parse(src string) (*ast.Library, []string) {
	p := New(lexer.New(src))
	return p.ParseLibrary(), p.errors
}

// ParseLibrary parses (function | object_type | enum_def)* without
// requiring the input to be fully consumed; trailing unconsumed input is
// silently ignored per spec.
func (p *Parser) ParseLibrary() *ast.Library {
	lib := &ast.Library{}

	for {
		if fn := p.parseFunction(); fn != nil {
			lib.Functions = append(lib.Functions, fn)
			continue
		}

		if ot := p.parseObjectType(); ot != nil {
			lib.Types = append(lib.Types, ot)
			continue
		}

		if ed := p.parseEnumDef(); ed != nil {
			lib.Types = append(lib.Types, ed)
			continue
		}

		break
	}

	return lib
}

func (p *Parser) errorf(message string) {
	p.errors = append(p.errors, message)
}

// --- token cursor -----------------------------------------------------

func (p *Parser) mark() int {
	return p.pos
}

func (p *Parser) reset(mark int) {
	p.pos = mark
}

func (p *Parser) fill(upTo int) {
	for len(p.tokens) <= upTo {
		token, err := p.lexer.ReadToken()
		if err == io.EOF {
			return
		}
		if err != nil {
			// The language has no escape hatch for lexical errors other than
			// treating the remainder of input as unparseable; every production
			// above simply stops matching.
			return
		}

		p.tokens = append(p.tokens, token)
	}
}

func (p *Parser) peek() (*lexer.Token, bool) {
	p.fill(p.pos)

	if p.pos >= len(p.tokens) {
		return nil, false
	}

	return p.tokens[p.pos], true
}

func (p *Parser) matchPunct(value string) bool {
	tok, ok := p.peek()
	if !ok || tok.Type != lexer.TokenPunctuation || tok.Value != value {
		return false
	}

	p.pos++

	return true
}

func (p *Parser) matchKeyword(value string) bool {
	tok, ok := p.peek()
	if !ok || tok.Type != lexer.TokenIdentifier || tok.Value != value {
		return false
	}

	p.pos++

	return true
}

func (p *Parser) parseSymbol() (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.Type != lexer.TokenIdentifier {
		return "", false
	}

	p.pos++

	return tok.Value, true
}

// parseUnscopedSymbol reads an identifier with '.' disabled as a
// continuation character, used inside enum variant lists.
func (p *Parser) parseUnscopedSymbol() (string, bool) {
	p.lexer.SetUnscopedIdentifiers(true)
	defer p.lexer.SetUnscopedIdentifiers(false)

	return p.parseSymbol()
}

func (p *Parser) parseNumberToken() (int64, bool) {
	tok, ok := p.peek()
	if !ok || tok.Type != lexer.TokenNumber {
		return 0, false
	}

	p.pos++

	return parseDigitsWrapping(tok.Value), true
}

func (p *Parser) parseStringToken() (string, bool) {
	tok, ok := p.peek()
	if !ok || tok.Type != lexer.TokenString {
		return "", false
	}

	p.pos++

	return tok.Value, true
}

// parseDigitsWrapping parses a run of ASCII digits as an unsigned
// accumulation into a signed 64-bit integer. Overflow wraps per two's
// complement; there is no overflow check.
func parseDigitsWrapping(digits string) int64 {
	var v int64

	for i := 0; i < len(digits); i++ {
		v = v*10 + int64(digits[i]-'0')
	}

	return v
}

// --- declarations -------------------------------------------------------

// function := 'fn' symbol lambda
func (p *Parser) parseFunction() *ast.Function {
	mark := p.mark()

	if !p.matchKeyword("fn") {
		p.reset(mark)
		return nil
	}

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	lambda := p.parseLambda()
	if lambda == nil {
		p.reset(mark)
		return nil
	}

	return &ast.Function{Name: name, Lambda: lambda}
}

// object_type := 'object' symbol '{' arg_decl* '}'
func (p *Parser) parseObjectType() *ast.ObjectType {
	mark := p.mark()

	if !p.matchKeyword("object") {
		p.reset(mark)
		return nil
	}

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("{") {
		p.reset(mark)
		return nil
	}

	members := make([]ast.Param, 0)
	for {
		memberMark := p.mark()

		decl, ok := p.parseArgDecl()
		if !ok {
			p.reset(memberMark)
			break
		}

		members = append(members, decl)
	}

	if !p.matchPunct("}") {
		p.reset(mark)
		return nil
	}

	return &ast.ObjectType{Name: name, Members: members}
}

// enum_def := 'enum' symbol '{' symbol (',' symbol)* '}'
func (p *Parser) parseEnumDef() *ast.EnumDef {
	mark := p.mark()

	if !p.matchKeyword("enum") {
		p.reset(mark)
		return nil
	}

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("{") {
		p.reset(mark)
		return nil
	}

	first, ok := p.parseUnscopedSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	variants := []string{first}

	for {
		variantMark := p.mark()

		if !p.matchPunct(",") {
			break
		}

		variant, ok := p.parseUnscopedSymbol()
		if !ok {
			p.reset(variantMark)
			break
		}

		variants = append(variants, variant)
	}

	if !p.matchPunct("}") {
		p.reset(mark)
		return nil
	}

	return &ast.EnumDef{Name: name, Variants: variants}
}

// arg_decl := symbol (':' symbol)?
func (p *Parser) parseArgDecl() (ast.Param, bool) {
	mark := p.mark()

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return ast.Param{}, false
	}

	if !p.matchPunct(":") {
		return ast.Param{Name: name}, true
	}

	typeName, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return ast.Param{}, false
	}

	return ast.Param{Name: name, Type: typeName}, true
}

// lambda := '(' arg_decls? ')' '->' symbol? scope
func (p *Parser) parseLambda() *ast.Lambda {
	mark := p.mark()

	if !p.matchPunct("(") {
		p.reset(mark)
		return nil
	}

	params := make([]ast.Param, 0)

	if first, ok := p.parseArgDecl(); ok {
		params = append(params, first)

		for {
			paramMark := p.mark()

			if !p.matchPunct(",") {
				break
			}

			next, ok := p.parseArgDecl()
			if !ok {
				p.reset(paramMark)
				break
			}

			params = append(params, next)
		}
	}

	if !p.matchPunct(")") {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("->") {
		p.reset(mark)
		return nil
	}

	returnType, _ := p.parseSymbol()

	body := p.parseScope()
	if body == nil {
		p.reset(mark)
		return nil
	}

	return &ast.Lambda{Params: params, ReturnType: returnType, Body: body}
}

// scope := '{' statement+ '}'
func (p *Parser) parseScope() *ast.Sequence {
	mark := p.mark()

	if !p.matchPunct("{") {
		p.reset(mark)
		return nil
	}

	first := p.parseStatement()
	if first == nil {
		p.reset(mark)
		return nil
	}

	statements := []ast.Node{first}

	for {
		stmtMark := p.mark()

		stmt := p.parseStatement()
		if stmt == nil {
			p.reset(stmtMark)
			break
		}

		statements = append(statements, stmt)
	}

	if !p.matchPunct("}") {
		p.reset(mark)
		return nil
	}

	return &ast.Sequence{Statements: statements}
}

// statement := if | while | expr ';'
func (p *Parser) parseStatement() ast.Node {
	if n := p.parseIf(); n != nil {
		return n
	}

	if n := p.parseWhile(); n != nil {
		return n
	}

	mark := p.mark()

	expr := p.parseExpr()
	if expr == nil {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct(";") {
		p.reset(mark)
		return nil
	}

	return expr
}

// if := 'if' '(' expr ')' scope ('else' scope)?
func (p *Parser) parseIf() *ast.If {
	mark := p.mark()

	if !p.matchKeyword("if") {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("(") {
		p.reset(mark)
		return nil
	}

	cond := p.parseExpr()
	if cond == nil {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct(")") {
		p.reset(mark)
		return nil
	}

	thenBody := p.parseScope()
	if thenBody == nil {
		p.reset(mark)
		return nil
	}

	elseMark := p.mark()

	var elseBody *ast.Sequence
	if p.matchKeyword("else") {
		elseBody = p.parseScope()
		if elseBody == nil {
			p.reset(elseMark)
		}
	}

	return &ast.If{Cond: cond, Then: thenBody, Else: elseBody}
}

// while := 'while' '(' expr ')' scope
func (p *Parser) parseWhile() *ast.Loop {
	mark := p.mark()

	if !p.matchKeyword("while") {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("(") {
		p.reset(mark)
		return nil
	}

	cond := p.parseExpr()
	if cond == nil {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct(")") {
		p.reset(mark)
		return nil
	}

	body := p.parseScope()
	if body == nil {
		p.reset(mark)
		return nil
	}

	return &ast.Loop{Cond: cond, Body: body}
}

// --- expressions ----------------------------------------------------------
//
// expr tries, in order: object_init, initialize, assign, lambda, mul, div,
// add, sub, comparison, call, number, string, symbol. First success wins.
// The try-order, not operator precedence, decides how ambiguous input
// parses.

func (p *Parser) parseExpr() ast.Node {
	if n := p.parseObjectInit(); n != nil {
		return n
	}

	if n := p.parseInitialize(); n != nil {
		return n
	}

	if n := p.parseAssign(); n != nil {
		return n
	}

	if n := p.parseLambda(); n != nil {
		return n
	}

	if n := p.parseBinOp("*", ast.Mul); n != nil {
		return n
	}

	if n := p.parseBinOp("/", ast.Div); n != nil {
		return n
	}

	if n := p.parseBinOp("+", ast.Add); n != nil {
		return n
	}

	if n := p.parseBinOp("-", ast.Sub); n != nil {
		return n
	}

	if n := p.parseComparison(); n != nil {
		return n
	}

	if n := p.parseCall(); n != nil {
		return n
	}

	if n := p.parseNumberExpr(); n != nil {
		return n
	}

	if n := p.parseStringExpr(); n != nil {
		return n
	}

	if n := p.parseSymbolExpr(); n != nil {
		return n
	}

	return nil
}

// parseBinOp matches a left operand of the narrow shape the grammar allows
// (number, call, or symbol, never a full nested binary expression) followed
// by the literal operator and a fully-recursive right operand.
func (p *Parser) parseBinOp(op string, kind ast.BinOpKind) *ast.BinOp {
	mark := p.mark()

	left := p.parseBinOpOperand()
	if left == nil {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct(op) {
		p.reset(mark)
		return nil
	}

	right := p.parseExpr()
	if right == nil {
		p.reset(mark)
		return nil
	}

	return &ast.BinOp{Op: kind, Left: left, Right: right}
}

func (p *Parser) parseBinOpOperand() ast.Node {
	if n := p.parseNumberExpr(); n != nil {
		return n
	}

	if n := p.parseCall(); n != nil {
		return n
	}

	if n := p.parseSymbolExpr(); n != nil {
		return n
	}

	return nil
}

// comparison := (number | symbol) comparison_op expr
func (p *Parser) parseComparison() *ast.Comparison {
	mark := p.mark()

	var left ast.Node
	if n := p.parseNumberExpr(); n != nil {
		left = n
	} else if n := p.parseSymbolExpr(); n != nil {
		left = n
	}

	if left == nil {
		p.reset(mark)
		return nil
	}

	kind, ok := p.parseComparisonOp()
	if !ok {
		p.reset(mark)
		return nil
	}

	right := p.parseExpr()
	if right == nil {
		p.reset(mark)
		return nil
	}

	return &ast.Comparison{Op: kind, Left: left, Right: right}
}

func (p *Parser) parseComparisonOp() (ast.CompareKind, bool) {
	switch {
	case p.matchPunct("=="):
		return ast.Eq, true
	case p.matchPunct("<="):
		return ast.Lte, true
	case p.matchPunct(">="):
		return ast.Gte, true
	case p.matchPunct("<"):
		return ast.Lt, true
	case p.matchPunct(">"):
		return ast.Gt, true
	default:
		return 0, false
	}
}

// call := symbol '(' (expr (',' expr)*)? ')'
func (p *Parser) parseCall() *ast.Call {
	mark := p.mark()

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("(") {
		p.reset(mark)
		return nil
	}

	args := make([]ast.Node, 0)

	if first := p.parseExpr(); first != nil {
		args = append(args, first)

		for {
			argMark := p.mark()

			if !p.matchPunct(",") {
				break
			}

			next := p.parseExpr()
			if next == nil {
				p.reset(argMark)
				break
			}

			args = append(args, next)
		}
	}

	if !p.matchPunct(")") {
		p.reset(mark)
		return nil
	}

	return &ast.Call{Callee: name, Args: args}
}

// initialize := 'let' arg_decl '=' expr
func (p *Parser) parseInitialize() *ast.Initialize {
	mark := p.mark()

	if !p.matchKeyword("let") {
		p.reset(mark)
		return nil
	}

	decl, ok := p.parseArgDecl()
	if !ok {
		p.errorf("No value decleration after 'let'.")
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("=") {
		p.errorf("No assignment after 'let'.")
		p.reset(mark)
		return nil
	}

	value := p.parseExpr()
	if value == nil {
		p.errorf("Missing expression after assignment in value initialization.")
		p.reset(mark)
		return nil
	}

	return &ast.Initialize{Decl: decl, Value: value}
}

// assign := symbol '=' expr
func (p *Parser) parseAssign() *ast.Assign {
	mark := p.mark()

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("=") {
		p.reset(mark)
		return nil
	}

	value := p.parseExpr()
	if value == nil {
		p.reset(mark)
		return nil
	}

	return &ast.Assign{Target: name, Value: value}
}

// object_init := symbol '{' ('.' symbol '=' expr (',' '.' symbol '=' expr)*)? '}'
func (p *Parser) parseObjectInit() *ast.ObjectInit {
	mark := p.mark()

	name, ok := p.parseSymbol()
	if !ok {
		p.reset(mark)
		return nil
	}

	if !p.matchPunct("{") {
		p.reset(mark)
		return nil
	}

	fields := make([]ast.FieldInit, 0)

	if first, ok := p.parseFieldInit(); ok {
		fields = append(fields, first)

		for {
			fieldMark := p.mark()

			if !p.matchPunct(",") {
				break
			}

			next, ok := p.parseFieldInit()
			if !ok {
				p.reset(fieldMark)
				break
			}

			fields = append(fields, next)
		}
	}

	if !p.matchPunct("}") {
		p.errorf("No closing '}' in object initializer.")
		p.reset(mark)
		return nil
	}

	return &ast.ObjectInit{TypeName: name, Fields: fields}
}

func (p *Parser) parseFieldInit() (ast.FieldInit, bool) {
	mark := p.mark()

	if !p.matchPunct(".") {
		p.reset(mark)
		return ast.FieldInit{}, false
	}

	name, ok := p.parseSymbol()
	if !ok {
		p.errorf("No symbol after '.' in object initializer.")
		p.reset(mark)
		return ast.FieldInit{}, false
	}

	if !p.matchPunct("=") {
		p.errorf("No '=' after object field specifier in object initializer.")
		p.reset(mark)
		return ast.FieldInit{}, false
	}

	value := p.parseExpr()
	if value == nil {
		p.errorf("No expression after object field specifier and '='.")
		p.reset(mark)
		return ast.FieldInit{}, false
	}

	return ast.FieldInit{Name: name, Value: value}, true
}

func (p *Parser) parseNumberExpr() *ast.Number {
	value, ok := p.parseNumberToken()
	if !ok {
		return nil
	}

	return &ast.Number{Value: value}
}

func (p *Parser) parseStringExpr() *ast.String {
	value, ok := p.parseStringToken()
	if !ok {
		return nil
	}

	return &ast.String{Value: value}
}

func (p *Parser) parseSymbolExpr() *ast.Symbol {
	name, ok := p.parseSymbol()
	if !ok {
		return nil
	}

	return &ast.Symbol{Name: name}
}
