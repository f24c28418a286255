// Package eval tree-walks a checked Library and produces the integer result
// of calling its main function.
//
// Every eval call returns its Value directly, rather than threading a single
// mutable "return slot" through every step. This is observably equivalent
// everywhere except host-function call-outs, where Context.call still has
// to gather argument values before handing them to a callee.
package eval

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/artuross/fnlang/internal/lang/ast"
)

var (
	_ Value = I64{}
	_ Value = String{}
	_ Value = Function{}
	_ Value = Object{}
	_ Value = Unknown{}
)

// Value is the sealed set of runtime value kinds.
type Value interface {
	isValue()
}

type (
	// I64 is a 64-bit signed integer. Arithmetic wraps on overflow, plain
	// Go int64 semantics, matching unchecked two's-complement behavior.
	I64 struct {
		Value int64
	}

	// String is a text value.
	String struct {
		Value string
	}

	// Function is a non-owning reference to a lambda's AST node.
	Function struct {
		Lambda *ast.Lambda
	}

	// ObjectMember is one (name, value) pair of an Object, in declaration
	// order.
	ObjectMember struct {
		Name  string
		Value Value
	}

	// Object is a constructed record or enum-variant value.
	Object struct {
		TypeName string
		Members  []ObjectMember
	}

	// Unknown is the zero value: the sentinel a binding holds before it is
	// ever written, and the result of a statement that produces nothing
	// meaningful (an if with no taken branch, an empty sequence).
	Unknown struct{}
)

func (I64) isValue()      {}
func (String) isValue()   {}
func (Function) isValue() {}
func (Object) isValue()   {}
func (Unknown) isValue()  {}

// Fault is a fatal runtime condition, the Go analogue of an assertion
// failure. Evaluation never recovers from one internally; it unwinds
// straight out of Run.
type Fault struct {
	Message string
}

func (f *Fault) Error() string {
	return f.Message
}

func fault(format string, args ...any) {
	panic(&Fault{Message: fmt.Sprintf(format, args...)})
}

// Binding is a (name, value) pair recorded in a Scope.
type Binding struct {
	Name  string
	Value Value
}

// Scope is an ordered list of bindings, searched linearly.
type Scope []Binding

// Context carries the scope stack and host-function table for one run.
type Context struct {
	lib         *ast.Library
	scopes      []Scope
	internalFns map[string]func(*Context, []Value) Value
	out         io.Writer
}

// Run evaluates lib starting from its main function and returns main's
// final I64 result. Fatal runtime conditions surface as a non-nil error
// whose concrete type is *Fault.
func Run(lib *ast.Library, out io.Writer) (result int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			f, ok := r.(*Fault)
			if !ok {
				panic(r)
			}

			err = f
		}
	}()

	ctx := &Context{
		lib: lib,
		out: out,
	}
	ctx.registerBuiltins()
	ctx.scopes = []Scope{{}}

	for _, decl := range lib.Types {
		enumDef, ok := decl.(*ast.EnumDef)
		if !ok {
			continue
		}

		ctx.scopes[0] = append(ctx.scopes[0], Binding{Name: enumDef.Name, Value: enumObject(enumDef)})
	}

	for _, fn := range lib.Functions {
		ctx.assign(fn.Name, Function{Lambda: fn.Lambda})
	}

	main := lib.FindFunction("main")
	if main == nil {
		fault("no 'main' function declared")
	}

	// Bypasses the call protocol entirely: no scope pushed, no arguments
	// bound, evaluated directly in the root scope.
	final := ctx.evalSequence(main.Lambda.Body)

	i64v, ok := final.(I64)
	if !ok {
		fault("main returned %s, want i64", valueTypeName(final))
	}

	return i64v.Value, nil
}

func enumObject(def *ast.EnumDef) Object {
	members := make([]ObjectMember, 0, len(def.Variants))
	for i, variant := range def.Variants {
		members = append(members, ObjectMember{Name: variant, Value: I64{Value: int64(i)}})
	}

	return Object{TypeName: def.Name, Members: members}
}

func (c *Context) eval(node ast.Node) Value {
	switch n := node.(type) {
	case *ast.Number:
		return I64{Value: n.Value}

	case *ast.String:
		return String{Value: n.Value}

	case *ast.Symbol:
		return c.lookup(n.Name)

	case *ast.BinOp:
		return c.binOp(n.Op, c.eval(n.Left), c.eval(n.Right))

	case *ast.Comparison:
		return c.compare(n.Op, c.eval(n.Left), c.eval(n.Right))

	case *ast.Sequence:
		return c.evalSequence(n)

	case *ast.Call:
		return c.call(n)

	case *ast.Lambda:
		return Function{Lambda: n}

	case *ast.Function:
		c.assign(n.Name, Function{Lambda: n.Lambda})
		return Unknown{}

	case *ast.Assign:
		v := c.eval(n.Value)
		c.assign(n.Target, v)
		return v

	case *ast.Initialize:
		v := c.eval(n.Value)

		if n.Decl.Type != "" && n.Decl.Type != valueTypeName(v) {
			fault("initialize: declared type %q does not match value type %q", n.Decl.Type, valueTypeName(v))
		}

		c.initBinding(n.Decl.Name, v)

		return v

	case *ast.If:
		cond, ok := c.eval(n.Cond).(I64)
		if !ok {
			fault("if condition is not i64")
		}

		if cond.Value > 0 {
			return c.evalSequence(n.Then)
		}

		if n.Else != nil {
			return c.evalSequence(n.Else)
		}

		return Unknown{}

	case *ast.Loop:
		for {
			cond, ok := c.eval(n.Cond).(I64)
			if !ok {
				fault("loop condition is not i64")
			}

			if cond.Value == 0 {
				break
			}

			c.pushScope()
			c.evalSequence(n.Body)
			c.popScope()
		}

		return Unknown{}

	case *ast.ObjectInit:
		return c.constructObject(n)

	default:
		fault("eval: unhandled node type %T", node)
		return nil
	}
}

func (c *Context) evalSequence(seq *ast.Sequence) Value {
	var last Value = Unknown{}

	for _, stmt := range seq.Statements {
		last = c.eval(stmt)
	}

	return last
}

func (c *Context) binOp(op ast.BinOpKind, lhs, rhs Value) Value {
	l, lok := lhs.(I64)
	r, rok := rhs.(I64)

	if !lok || !rok {
		fault("binary operator requires two i64 operands, got %s and %s", valueTypeName(lhs), valueTypeName(rhs))
	}

	switch op {
	case ast.Add:
		return I64{Value: l.Value + r.Value}
	case ast.Sub:
		return I64{Value: l.Value - r.Value}
	case ast.Mul:
		return I64{Value: l.Value * r.Value}
	case ast.Div:
		if r.Value == 0 {
			fault("division by zero")
		}

		return I64{Value: l.Value / r.Value}
	default:
		fault("unknown binary operator %v", op)
		return nil
	}
}

// compare reads both operands as I64, treating anything else as 0. A
// non-I64 operand is never a fault here; it silently compares as 0.
func (c *Context) compare(op ast.CompareKind, lhs, rhs Value) Value {
	l := asI64(lhs)
	r := asI64(rhs)

	var result bool
	switch op {
	case ast.Eq:
		result = l == r
	case ast.Lt:
		result = l < r
	case ast.Gt:
		result = l > r
	case ast.Lte:
		result = l <= r
	case ast.Gte:
		result = l >= r
	default:
		fault("unknown comparison operator %v", op)
	}

	if result {
		return I64{Value: 1}
	}

	return I64{Value: 0}
}

func asI64(v Value) int64 {
	if i, ok := v.(I64); ok {
		return i.Value
	}

	return 0
}

func (c *Context) call(n *ast.Call) Value {
	args := make([]Value, len(n.Args))
	for i, arg := range n.Args {
		args[i] = c.eval(arg)
	}

	if fn, ok := c.internalFns[n.Callee]; ok {
		return fn(c, args)
	}

	callee := c.lookup(n.Callee)

	fnVal, ok := callee.(Function)
	if !ok {
		fault("%q is not callable", n.Callee)
	}

	if len(fnVal.Lambda.Params) != len(args) {
		fault("call to %q: expected %d argument(s), got %d", n.Callee, len(fnVal.Lambda.Params), len(args))
	}

	c.pushScope()

	c.initBinding("this", fnVal)

	for i, param := range fnVal.Lambda.Params {
		if param.Type != "" && param.Type != valueTypeName(args[i]) {
			fault("call to %q: argument %d has type %s, want %s", n.Callee, i, valueTypeName(args[i]), param.Type)
		}

		c.initBinding(param.Name, args[i])
	}

	result := c.evalSequence(fnVal.Lambda.Body)

	c.popScope()

	return result
}

func (c *Context) constructObject(n *ast.ObjectInit) Value {
	values := make(map[string]Value, len(n.Fields))
	order := make([]string, 0, len(n.Fields))

	for _, field := range n.Fields {
		values[field.Name] = c.eval(field.Value)
		order = append(order, field.Name)
	}

	switch n.TypeName {
	case "i64", "string":
		if len(order) == 0 {
			fault("object initializer for %q requires at least one field", n.TypeName)
		}

		// Built-in "types" aren't real object types: constructing one just
		// unwraps to the first field's value, whatever its name.
		return values[order[0]]
	}

	decl := c.lib.FindType(n.TypeName)

	objType, ok := decl.(*ast.ObjectType)
	if !ok {
		fault("unknown object type %q", n.TypeName)
	}

	members := make([]ObjectMember, 0, len(objType.Members))
	for _, m := range objType.Members {
		v, found := values[m.Name]
		if !found {
			v = Unknown{}
		}

		members = append(members, ObjectMember{Name: m.Name, Value: v})
	}

	return Object{TypeName: n.TypeName, Members: members}
}

// lookup resolves a possibly-dotted name: the first segment is searched for
// in the scope stack innermost-first, then each remaining segment walks one
// level of member access.
func (c *Context) lookup(name string) Value {
	head, rest, hasRest := splitFirst(name)

	for i := len(c.scopes) - 1; i >= 0; i-- {
		for _, b := range c.scopes[i] {
			if b.Name == head {
				if hasRest {
					return getMember(b.Value, rest)
				}

				return b.Value
			}
		}
	}

	fault("undefined symbol %q", name)

	return nil
}

// getMember walks path one segment at a time through v's members. Dotting
// into a non-object, or a member name with no match, is a silent no-op that
// yields v unchanged rather than an error.
func getMember(v Value, path string) Value {
	obj, ok := v.(Object)
	if !ok {
		return v
	}

	head, rest, hasRest := splitFirst(path)

	for _, m := range obj.Members {
		if m.Name == head {
			if hasRest {
				return getMember(m.Value, rest)
			}

			return m.Value
		}
	}

	return v
}

// assign searches every scope innermost-first for name's first segment. If
// found, it overwrites it (walking through Object members for the
// remaining segments). If not found anywhere, it creates a new binding,
// under the full, still-dotted name, in the current innermost scope. No
// shadow-check, no declaration required.
func (c *Context) assign(name string, v Value) {
	head, rest, hasRest := splitFirst(name)

	for i := len(c.scopes) - 1; i >= 0; i-- {
		for j := range c.scopes[i] {
			if c.scopes[i][j].Name != head {
				continue
			}

			if hasRest {
				c.scopes[i][j].Value = setMember(c.scopes[i][j].Value, rest, v)
			} else {
				c.scopes[i][j].Value = v
			}

			return
		}
	}

	last := len(c.scopes) - 1
	c.scopes[last] = append(c.scopes[last], Binding{Name: name, Value: v})
}

// setMember mutates one member of target, walking further segments of path
// as needed. Reaching a non-object target is fatal; a path segment with no
// matching member name is a silent no-op.
func setMember(target Value, path string, v Value) Value {
	obj, ok := target.(Object)
	if !ok {
		fault("cannot assign into a non-object value (%s)", valueTypeName(target))
	}

	head, rest, hasRest := splitFirst(path)

	for i, m := range obj.Members {
		if m.Name != head {
			continue
		}

		if hasRest {
			obj.Members[i].Value = setMember(m.Value, rest, v)
		} else {
			obj.Members[i].Value = v
		}

		return obj
	}

	return obj
}

func splitFirst(name string) (head, rest string, hasRest bool) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:], true
	}

	return name, "", false
}

// initBinding always appends, unconditionally, into the innermost scope.
// Used by Initialize and by call argument binding. Unlike assign, it never
// searches for or overwrites an existing binding of the same name.
func (c *Context) initBinding(name string, v Value) {
	last := len(c.scopes) - 1
	c.scopes[last] = append(c.scopes[last], Binding{Name: name, Value: v})
}

func (c *Context) pushScope() {
	c.scopes = append(c.scopes, Scope{})
}

func (c *Context) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func valueTypeName(v Value) string {
	switch t := v.(type) {
	case I64:
		return "i64"
	case String:
		return "string"
	case Function:
		return "fn"
	case Object:
		return t.TypeName
	default:
		return "???"
	}
}

// registerBuiltins wires print and println. Both concatenate their
// arguments with no separator at all, not even a space.
func (c *Context) registerBuiltins() {
	c.internalFns = map[string]func(*Context, []Value) Value{
		"print": func(ctx *Context, args []Value) Value {
			ctx.printValues(args)
			return I64{Value: 0}
		},
		"println": func(ctx *Context, args []Value) Value {
			ctx.printValues(args)
			io.WriteString(ctx.out, "\n")
			return I64{Value: 0}
		},
	}
}

func (c *Context) printValues(vals []Value) {
	for _, v := range vals {
		c.printOne(v)
	}
}

func (c *Context) printOne(v Value) {
	switch t := v.(type) {
	case String:
		io.WriteString(c.out, t.Value)
	case I64:
		io.WriteString(c.out, strconv.FormatInt(t.Value, 10))
	case Object:
		io.WriteString(c.out, t.TypeName+" { ")

		for i, m := range t.Members {
			if i > 0 {
				io.WriteString(c.out, " , ")
			}

			io.WriteString(c.out, "."+m.Name+" = ")
			c.printOne(m.Value)
		}

		io.WriteString(c.out, " }")
	default:
		io.WriteString(c.out, "[unknown]")
	}
}
