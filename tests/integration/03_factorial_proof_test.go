package integration_test

import (
	"strings"
	"testing"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/pkg/tasmc"
)

// Test03_BoundedLoopFactorialCompiles grounds spec.md §8's bounded-loop
// scenario: a `for` statement whose count is the runtime parameter n must
// lower to the tail-recursive subroutine pattern, not an unrolled body.
func Test03_BoundedLoopFactorialCompiles(t *testing.T) {
	t.Log("=== Test 03: Bounded-Loop Factorial Compilation ===")

	t.Log("Step 1: Building a for-loop whose body runs n times, body isolated per spec.md §4.3's loop-subroutine model...")
	fn := &ast.FnDef{
		Name:   "factorial",
		Params: []ast.Param{{Name: "n", Type: ast.FieldType{}}},
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.ForStmt{
					Var: "i",
					End: ast.VarExpr{Name: "n"},
					Body: ast.Block{Stmts: []ast.Stmt{
						&ast.ExprStmt{Expr: ast.CallExpr{Path: []string{"assert_eq"}, Args: []ast.Expr{
							ast.LiteralExpr{Value: ast.Literal{Integer: 1}},
							ast.LiteralExpr{Value: ast.Literal{Integer: 1}},
						}}},
					}},
				},
			},
		},
	}
	file := &ast.File{Name: "factorial", Kind: ast.FileKindModule, Items: []ast.Item{fn}}

	t.Log("Step 2: Compiling for the Triton backend...")
	res, err := tasmc.Compile(file, tasmc.DefaultCompileOptions().WithTarget("triton"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	t.Logf("  Emitted assembly:\n%s", res.Assembly)
	for _, want := range []string{"__factorial:", "loop_1:", "recurse", "assert"} {
		if !strings.Contains(res.Assembly, want) {
			t.Fatalf("expected %q in assembly:\n%s", want, res.Assembly)
		}
	}
	if strings.Count(res.Assembly, "assert") != 1 {
		t.Fatalf("a bounded loop must emit its body once as a subroutine, not unrolled; got:\n%s", res.Assembly)
	}
	t.Log("  Loop body compiles to a single subroutine regardless of the bound")
}
