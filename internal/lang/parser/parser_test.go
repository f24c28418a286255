package parser_test

import (
	"testing"

	"github.com/artuross/fnlang/internal/lang/ast"
	"github.com/artuross/fnlang/internal/lang/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SimpleFunction(t *testing.T) {
	lib, errs := parser.Parse(`fn main() -> i64 { 0; }`)

	require.Empty(t, errs)
	require.Len(t, lib.Functions, 1)

	fn := lib.Functions[0]
	assert.Equal(t, "main", fn.Name)
	assert.Equal(t, "i64", fn.Lambda.ReturnType)
	require.Len(t, fn.Lambda.Body.Statements, 1)
	assert.Equal(t, &ast.Number{Value: 0}, fn.Lambda.Body.Statements[0])
}

func TestParse_ArithmeticGrouping(t *testing.T) {
	lib, errs := parser.Parse(`fn main() -> i64 { let x: i64 = 2 + 3 * 4; x; }`)

	require.Empty(t, errs)
	require.Len(t, lib.Functions, 1)

	body := lib.Functions[0].Lambda.Body.Statements
	require.Len(t, body, 2)

	init, ok := body[0].(*ast.Initialize)
	require.True(t, ok)
	assert.Equal(t, "x", init.Decl.Name)
	assert.Equal(t, "i64", init.Decl.Type)

	add, ok := init.Value.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, add.Op)
	assert.Equal(t, &ast.Number{Value: 2}, add.Left)

	mul, ok := add.Right.(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, mul.Op)
	assert.Equal(t, &ast.Number{Value: 3}, mul.Left)
	assert.Equal(t, &ast.Number{Value: 4}, mul.Right)
}

func TestParse_RecursiveFibonacci(t *testing.T) {
	src := `
		fn fib(n: i64) -> i64 {
			if (n < 2) {
				n;
			} else {
				fib(n - 1) + fib(n - 2);
			}
		}
		fn main() -> i64 {
			fib(10);
		}
	`

	lib, errs := parser.Parse(src)

	require.Empty(t, errs)
	require.Len(t, lib.Functions, 2)

	fib := lib.Functions[0]
	assert.Equal(t, "fib", fib.Name)
	require.Len(t, fib.Lambda.Params, 1)
	assert.Equal(t, ast.Param{Name: "n", Type: "i64"}, fib.Lambda.Params[0])

	ifStmt, ok := fib.Lambda.Body.Statements[0].(*ast.If)
	require.True(t, ok)

	cmp, ok := ifStmt.Cond.(*ast.Comparison)
	require.True(t, ok)
	assert.Equal(t, ast.Lt, cmp.Op)

	require.NotNil(t, ifStmt.Else)
	addExpr, ok := ifStmt.Else.Statements[0].(*ast.BinOp)
	require.True(t, ok)
	assert.Equal(t, ast.Add, addExpr.Op)

	leftCall, ok := addExpr.Left.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "fib", leftCall.Callee)
	require.Len(t, leftCall.Args, 1)
}

func TestParse_WhileLoop(t *testing.T) {
	src := `
		fn main() -> i64 {
			let a: i64 = 0;
			let i: i64 = 0;
			while (i < 10) {
				a = a + 1;
				i = i + 1;
			}
			a;
		}
	`

	lib, errs := parser.Parse(src)

	require.Empty(t, errs)
	require.Len(t, lib.Functions, 1)

	body := lib.Functions[0].Lambda.Body.Statements
	loop, ok := body[2].(*ast.Loop)
	require.True(t, ok)
	require.Len(t, loop.Body.Statements, 2)

	assign, ok := loop.Body.Statements[0].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "a", assign.Target)
}

func TestParse_EnumDecl(t *testing.T) {
	lib, errs := parser.Parse(`enum Color { Red, Green, Blue } fn main() -> i64 { Color.Blue; }`)

	require.Empty(t, errs)
	require.Len(t, lib.Types, 1)

	enum, ok := lib.Types[0].(*ast.EnumDef)
	require.True(t, ok)
	assert.Equal(t, "Color", enum.Name)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, enum.Variants)

	sym, ok := lib.Functions[0].Lambda.Body.Statements[0].(*ast.Symbol)
	require.True(t, ok)
	assert.Equal(t, "Color.Blue", sym.Name)
}

func TestParse_ObjectTypeAndInit(t *testing.T) {
	src := `
		object P { x: i64 y: i64 }
		fn main() -> i64 {
			let p: P = P { .x = 3, .y = 4 };
			p.x + p.y;
		}
	`

	lib, errs := parser.Parse(src)

	require.Empty(t, errs)
	require.Len(t, lib.Types, 1)

	obj, ok := lib.Types[0].(*ast.ObjectType)
	require.True(t, ok)
	assert.Equal(t, "P", obj.Name)
	assert.Equal(t, []ast.Param{{Name: "x", Type: "i64"}, {Name: "y", Type: "i64"}}, obj.Members)

	body := lib.Functions[0].Lambda.Body.Statements
	init, ok := body[0].(*ast.Initialize)
	require.True(t, ok)

	objInit, ok := init.Value.(*ast.ObjectInit)
	require.True(t, ok)
	assert.Equal(t, "P", objInit.TypeName)
	require.Len(t, objInit.Fields, 2)
	assert.Equal(t, "x", objInit.Fields[0].Name)
	assert.Equal(t, &ast.Number{Value: 3}, objInit.Fields[0].Value)
}

func TestParse_EmptyCallArgs(t *testing.T) {
	lib, errs := parser.Parse(`fn main() -> i64 { print(); 0; }`)

	require.Empty(t, errs)
	call, ok := lib.Functions[0].Lambda.Body.Statements[0].(*ast.Call)
	require.True(t, ok)
	assert.Empty(t, call.Args)
}

func TestParse_LambdaValue(t *testing.T) {
	lib, errs := parser.Parse(`fn main() -> i64 { let f: fn = (x: i64) -> i64 { x; }; 0; }`)

	require.Empty(t, errs)
	init, ok := lib.Functions[0].Lambda.Body.Statements[0].(*ast.Initialize)
	require.True(t, ok)

	lambda, ok := init.Value.(*ast.Lambda)
	require.True(t, ok)
	assert.Equal(t, "i64", lambda.ReturnType)
}

func TestParse_ErrorMessages(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "let without identifier",
			src:  `fn main() -> i64 { let = 1; 0; }`,
			want: "No value decleration after 'let'.",
		},
		{
			name: "let without assignment",
			src:  `fn main() -> i64 { let x: i64 1; 0; }`,
			want: "No assignment after 'let'.",
		},
		{
			name: "let without expression",
			src:  `fn main() -> i64 { let x: i64 = ; 0; }`,
			want: "Missing expression after assignment in value initialization.",
		},
		{
			name: "object init missing symbol after dot",
			src:  `fn main() -> i64 { let p: P = P { . = 1 }; 0; }`,
			want: "No symbol after '.' in object initializer.",
		},
		{
			name: "object init missing equals",
			src:  `fn main() -> i64 { let p: P = P { .x 1 }; 0; }`,
			want: "No '=' after object field specifier in object initializer.",
		},
		{
			name: "object init missing expression",
			src:  `fn main() -> i64 { let p: P = P { .x = }; 0; }`,
			want: "No expression after object field specifier and '='.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, errs := parser.Parse(tc.src)
			assert.Contains(t, errs, tc.want)
		})
	}
}

func TestParse_TrailingGarbageIgnored(t *testing.T) {
	lib, errs := parser.Parse(`fn main() -> i64 { 0; } &&& not valid`)

	require.Empty(t, errs)
	require.Len(t, lib.Functions, 1)
}
