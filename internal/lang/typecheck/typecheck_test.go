package typecheck_test

import (
	"testing"

	"github.com/artuross/fnlang/internal/lang/ast"
	"github.com/artuross/fnlang/internal/lang/parser"
	"github.com/artuross/fnlang/internal/lang/typecheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func check(t *testing.T, src string) []string {
	t.Helper()

	lib, parseErrs := parser.Parse(src)
	require.Empty(t, parseErrs)

	return typecheck.Check(lib)
}

func TestCheck_CleanProgram(t *testing.T) {
	errs := check(t, `fn main() -> i64 { let x: i64 = 1 + 2; x; }`)

	assert.Empty(t, errs)
}

func TestCheck_InitializeMismatch(t *testing.T) {
	errs := check(t, `fn main() -> i64 { let x: string = 1; 0; }`)

	assert.Contains(t, errs, "(Initialize) Type mismatch: 'string' != 'i64'.")
}

func TestCheck_InitializeBackfillsMissingAnnotation(t *testing.T) {
	lib, parseErrs := parser.Parse(`fn main() -> i64 { let x = 1; x; }`)
	require.Empty(t, parseErrs)

	errs := typecheck.Check(lib)
	require.Empty(t, errs)

	init, ok := lib.Functions[0].Lambda.Body.Statements[0].(*ast.Initialize)
	require.True(t, ok)
	assert.Equal(t, "i64", init.Decl.Type)
}

func TestCheck_BinOpMismatch(t *testing.T) {
	errs := check(t, `fn main() -> i64 { let x: string = "a"; let y: i64 = 1; x + y; 0; }`)

	assert.Contains(t, errs, "(Binary Op) Type mismatch: 'string' != 'i64'.")
}

func TestCheck_ComparisonMismatch(t *testing.T) {
	errs := check(t, `fn main() -> i64 { let x: string = "a"; if (x < 1) { 0; } else { 1; } }`)

	assert.Contains(t, errs, "(Comparison) Type mismatch: 'string' != 'i64'.")
}

func TestCheck_AssignMismatch(t *testing.T) {
	errs := check(t, `
		fn main() -> i64 {
			let x: i64 = 0;
			x = "no";
			x;
		}
	`)

	assert.Contains(t, errs, "(Assign) Type mismatch in assign: 'i64' != 'string'.")
}

func TestCheck_ObjectInitUnknownType(t *testing.T) {
	errs := check(t, `fn main() -> i64 { let p: i64 = NoSuchType { .x = 1 }; 0; }`)

	assert.Contains(t, errs, "(Object Init) Unknown type name 'NoSuchType'.")
}

func TestCheck_ObjectInitMemberMismatch(t *testing.T) {
	errs := check(t, `
		object P { x: i64 }
		fn main() -> i64 {
			let p: P = P { .x = "oops" };
			0;
		}
	`)

	assert.Contains(t, errs, "(Object Init) Member type doesn't match type defined. 'i64' != 'string'.")
}

func TestCheck_ObjectMemberMissingType(t *testing.T) {
	errs := check(t, `
		object P { x: i64 y }
		fn main() -> i64 { 0; }
	`)

	assert.Contains(t, errs, "Object doesn't have type definition.")
}

func TestCheck_ObjectMemberUnknownTypeIsReportedButKept(t *testing.T) {
	errs := check(t, `
		object P { x: Bogus }
		fn main() -> i64 { let p: P = P { .x = 1 }; 0; }
	`)

	assert.Contains(t, errs, "(Unknown type) 'Bogus'")
	assert.Contains(t, errs, "(Object Init) Member type doesn't match type defined. 'Bogus' != 'i64'.")
}

func TestCheck_EnumVariantTypesAsEnum(t *testing.T) {
	errs := check(t, `
		enum Color { Red, Green, Blue }
		fn main() -> i64 {
			let c: Color = Color.Blue;
			0;
		}
	`)

	assert.Empty(t, errs)
}

func TestCheck_FunctionArgMissingType(t *testing.T) {
	errs := check(t, `fn f(n) -> i64 { n; } fn main() -> i64 { f(1); }`)

	assert.Contains(t, errs, "Function 'f' arg 'n' doesn't have a type.")
}

func TestCheck_CallResultIsWildcard(t *testing.T) {
	// Two calls compared against each other never mismatch: both report "?".
	errs := check(t, `
		fn f() -> i64 { 1; }
		fn g() -> i64 { 2; }
		fn main() -> i64 { f() + g(); }
	`)

	assert.Empty(t, errs)
}

func TestCheck_IfBranchesNeverChecked(t *testing.T) {
	// A mismatch hidden inside an if-branch is never reported: conditionals
	// are not walked by the checker at all.
	errs := check(t, `
		fn main() -> i64 {
			if (1 < 2) {
				let x: string = 1;
				0;
			} else {
				0;
			}
		}
	`)

	assert.Empty(t, errs)
}

func TestCheck_NonFatalContinuesPastErrors(t *testing.T) {
	errs := check(t, `
		fn main() -> i64 {
			let a: string = 1;
			let b: string = 2;
			0;
		}
	`)

	require.Len(t, errs, 2)
	assert.Contains(t, errs, "(Initialize) Type mismatch: 'string' != 'i64'.")
}
