// Package typecheck walks a parsed Library and annotates it with inferred
// types, collecting a list of error strings along the way.
//
// Checking is non-fatal: every error is recorded and checking continues, and
// the caller is free to evaluate a Library that failed type checking.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/artuross/fnlang/internal/lang/ast"
)

// Binding is a (name, type name) pair recorded in a Scope.
type Binding struct {
	Name string
	Type string
}

// Scope is an ordered list of bindings, searched linearly.
type Scope []Binding

// Checker carries the state threaded through one Check call.
type Checker struct {
	errors  []string
	types   []string
	members map[string][]ast.Param
	scopes  []Scope
}

// Check builds the declared-type table, binds the root scope, and checks
// every function body in declaration order. It returns the accumulated
// error strings, in the order they were reported.
func Check(lib *ast.Library) []string {
	c := &Checker{
		types:   []string{"i64", "string"},
		members: make(map[string][]ast.Param),
	}

	c.buildTypeTable(lib)

	c.scopes = []Scope{{}}

	for _, fn := range lib.Functions {
		c.bindInnermost(fn.Name, "fn")
	}

	for _, fn := range lib.Functions {
		c.pushScope()

		for _, param := range fn.Lambda.Params {
			if param.Type == "" {
				c.errorf("Function '%s' arg '%s' doesn't have a type.", fn.Name, param.Name)
				continue
			}

			// Parameters join the root scope, not the fresh scope just
			// pushed for this body, so two functions can see each other's
			// parameter bindings here even though the evaluator keeps each
			// call's scope separate.
			c.scopes[0] = append(c.scopes[0], Binding{Name: param.Name, Type: param.Type})
		}

		for _, stmt := range fn.Lambda.Body.Statements {
			c.check(stmt)
		}

		c.popScope()
	}

	return c.errors
}

// buildTypeTable registers every declared type's name and member schema.
// Members without a type annotation are reported and excluded from the
// schema; an enum contributes one pseudo-member per variant, typed as the
// enum itself.
func (c *Checker) buildTypeTable(lib *ast.Library) {
	for _, decl := range lib.Types {
		switch t := decl.(type) {
		case *ast.ObjectType:
			c.types = append(c.types, t.Name)

			members := make([]ast.Param, 0, len(t.Members))
			for _, m := range t.Members {
				if m.Type == "" {
					c.errorf("Object doesn't have type definition.")
					continue
				}

				if !c.isTypeName(m.Type) {
					c.errorf("(Unknown type) '%s'", m.Type)
				}

				members = append(members, m)
			}

			c.members[t.Name] = members

		case *ast.EnumDef:
			c.types = append(c.types, t.Name)

			members := make([]ast.Param, 0, len(t.Variants))
			for _, variant := range t.Variants {
				members = append(members, ast.Param{Name: variant, Type: t.Name})
			}

			c.members[t.Name] = members
		}
	}
}

// check dispatches on node's concrete type and returns its inferred type
// name, or "" for statements that carry no meaningful type.
//
// *ast.If is deliberately unhandled: conditionals are never type-checked,
// branches are neither visited nor type-compared. Bindings made only inside
// an if-branch are invisible to the checker, though the evaluator still
// sees them at runtime.
func (c *Checker) check(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Number:
		return "i64"

	case *ast.String:
		return "string"

	case *ast.Symbol:
		return c.resolveSymbolType(n.Name)

	case *ast.BinOp:
		lhs := c.check(n.Left)
		rhs := c.check(n.Right)

		if lhs != rhs {
			c.errorf("(Binary Op) Type mismatch: '%s' != '%s'.", lhs, rhs)
		}

		return lhs

	case *ast.Comparison:
		lhs := c.check(n.Left)
		rhs := c.check(n.Right)

		if lhs != rhs {
			c.errorf("(Comparison) Type mismatch: '%s' != '%s'.", lhs, rhs)
		}

		return "i64"

	case *ast.Initialize:
		valueType := c.check(n.Value)

		if n.Decl.Type != "" && n.Decl.Type != valueType {
			c.errorf("(Initialize) Type mismatch: '%s' != '%s'.", n.Decl.Type, valueType)
			return ""
		}

		n.Decl.Type = valueType
		c.bindInnermost(n.Decl.Name, valueType)

		return ""

	case *ast.Assign:
		lhsType := c.resolveSymbolType(n.Target)
		rhsType := c.check(n.Value)

		if lhsType != rhsType {
			c.errorf("(Assign) Type mismatch in assign: '%s' != '%s'.", lhsType, rhsType)
		}

		return ""

	case *ast.Call:
		// Never checked against the callee's declared return type. An
		// intentional wildcard matching nothing, tolerated only where the
		// caller discards the result or compares it against another "?".
		return "?"

	case *ast.ObjectInit:
		if !c.isTypeName(n.TypeName) {
			c.errorf("(Object Init) Unknown type name '%s'.", n.TypeName)
		}

		for _, field := range n.Fields {
			rhsType := c.check(field.Value)
			lhsType := c.memberType(n.TypeName, field.Name)

			if lhsType != rhsType {
				c.errorf("(Object Init) Member type doesn't match type defined. '%s' != '%s'.", lhsType, rhsType)
			}
		}

		return n.TypeName

	case *ast.Loop:
		if n.Cond != nil {
			c.check(n.Cond)
		}

		c.pushScope()
		for _, stmt := range n.Body.Statements {
			c.check(stmt)
		}
		c.popScope()

		return ""

	default:
		return ""
	}
}

// resolveSymbolType resolves a possibly-dotted name. Everything before the
// first '.' is resolved on its own; everything after it is used verbatim as
// a single member name, even if it itself contains further dots. A chain
// like "a.b.c" only ever does one level of member lookup past "a" (the
// dot-splitting is not recursive).
func (c *Checker) resolveSymbolType(name string) string {
	dot := strings.IndexByte(name, '.')
	if dot < 0 {
		for _, scope := range c.scopes {
			for _, binding := range scope {
				if binding.Name == name {
					return binding.Type
				}
			}
		}

		return ""
	}

	head := name[:dot]
	rest := name[dot+1:]

	if c.isTypeName(head) {
		return c.memberType(head, rest)
	}

	return c.memberType(c.resolveSymbolType(head), rest)
}

func (c *Checker) isTypeName(name string) bool {
	for _, t := range c.types {
		if t == name {
			return true
		}
	}

	return false
}

func (c *Checker) memberType(typeName, member string) string {
	for _, p := range c.members[typeName] {
		if p.Name == member {
			return p.Type
		}
	}

	return ""
}

func (c *Checker) bindInnermost(name, typeName string) {
	last := len(c.scopes) - 1
	c.scopes[last] = append(c.scopes[last], Binding{Name: name, Type: typeName})
}

func (c *Checker) pushScope() {
	c.scopes = append(c.scopes, Scope{})
}

func (c *Checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) errorf(format string, args ...any) {
	c.errors = append(c.errors, fmt.Sprintf(format, args...))
}
