// Package ast defines the syntax tree produced by internal/lang/parser.
//
// Every node kind is its own Go type implementing the sealed Node interface
// instead of a single struct carrying every possible payload at once. Node
// identity is by pointer; a Library owns every node reachable from it and
// node trees are never shared across two different Library values.
package ast

var (
	_ Node = (*Number)(nil)
	_ Node = (*String)(nil)
	_ Node = (*Symbol)(nil)
	_ Node = (*BinOp)(nil)
	_ Node = (*Comparison)(nil)
	_ Node = (*Sequence)(nil)
	_ Node = (*Call)(nil)
	_ Node = (*Lambda)(nil)
	_ Node = (*Function)(nil)
	_ Node = (*Assign)(nil)
	_ Node = (*Initialize)(nil)
	_ Node = (*If)(nil)
	_ Node = (*Loop)(nil)
	_ Node = (*ObjectInit)(nil)

	_ TypeDecl = (*ObjectType)(nil)
	_ TypeDecl = (*EnumDef)(nil)
)

// Node is implemented by every expression and statement in the tree.
type Node interface {
	isNode()
}

// TypeDecl is implemented by the two kinds of top-level type declaration.
type TypeDecl interface {
	isTypeDecl()
	TypeName() string
}

// BinOpKind identifies an arithmetic binary operator.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
)

// CompareKind identifies a comparison operator.
type CompareKind int

const (
	Eq CompareKind = iota
	Lt
	Gt
	Lte
	Gte
)

// Param is an argument/member declaration: a name with an optional type
// name. Type == "" means no annotation was given.
type Param struct {
	Name string
	Type string
}

type (
	// Number is an integer literal.
	Number struct {
		Value int64
	}

	// String is a string literal.
	String struct {
		Value string
	}

	// Symbol is an identifier reference, possibly dotted (e.g. "a.b.c").
	Symbol struct {
		Name string
	}

	// BinOp is an arithmetic binary operation.
	BinOp struct {
		Op    BinOpKind
		Left  Node
		Right Node
	}

	// Comparison is a relational binary operation; it always yields i64.
	Comparison struct {
		Op    CompareKind
		Left  Node
		Right Node
	}

	// Sequence is an ordered list of statements: the body of a scope.
	Sequence struct {
		Statements []Node
	}

	// Call is a named function invocation with positional arguments.
	Call struct {
		Callee string
		Args   []Node
	}

	// Lambda is an unnamed function value: parameters plus a body.
	Lambda struct {
		Params     []Param
		ReturnType string
		Body       *Sequence
	}

	// Function binds a name to a Lambda.
	Function struct {
		Name   string
		Lambda *Lambda
	}

	// Assign overwrites an existing binding, possibly through a dotted path.
	Assign struct {
		Target string
		Value  Node
	}

	// Initialize declares a new binding in the innermost scope. Decl.Type is
	// backfilled by the type checker when the source left it empty.
	Initialize struct {
		Decl  Param
		Value Node
	}

	// If is a conditional; Else is nil when no else-branch was parsed.
	If struct {
		Cond Node
		Then *Sequence
		Else *Sequence
	}

	// Loop is a while loop. fnlang has only one loop kind, so the type
	// carries no separate kind field.
	Loop struct {
		Cond Node
		Body *Sequence
	}

	// ObjectType declares a record type. Member.Type == "" means the source
	// left the member untyped; the parser keeps it as-is. The type checker
	// reports the error and drops it from the type's schema.
	ObjectType struct {
		Name    string
		Members []Param
	}

	// FieldInit is one `.field = expr` initializer inside an ObjectInit.
	FieldInit struct {
		Name  string
		Value Node
	}

	// ObjectInit constructs a record value.
	ObjectInit struct {
		TypeName string
		Fields   []FieldInit
	}

	// EnumDef declares a namespaced set of integer constants.
	EnumDef struct {
		Name     string
		Variants []string
	}
)

func (*Number) isNode()     {}
func (*String) isNode()     {}
func (*Symbol) isNode()     {}
func (*BinOp) isNode()      {}
func (*Comparison) isNode() {}
func (*Sequence) isNode()   {}
func (*Call) isNode()       {}
func (*Lambda) isNode()     {}
func (*Function) isNode()   {}
func (*Assign) isNode()     {}
func (*Initialize) isNode() {}
func (*If) isNode()         {}
func (*Loop) isNode()       {}
func (*ObjectInit) isNode() {}

func (*ObjectType) isTypeDecl() {}
func (*EnumDef) isTypeDecl()    {}

func (t *ObjectType) TypeName() string { return t.Name }
func (t *EnumDef) TypeName() string    { return t.Name }

// Library is a parsed compilation unit: the declarations a single source
// file contributes, in declaration order.
type Library struct {
	Functions []*Function
	Types     []TypeDecl
}

// FindFunction returns the function bound to name, or nil.
func (l *Library) FindFunction(name string) *Function {
	for _, fn := range l.Functions {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}

// FindType returns the type declaration named name, or nil.
func (l *Library) FindType(name string) TypeDecl {
	for _, t := range l.Types {
		if t.TypeName() == name {
			return t
		}
	}

	return nil
}
