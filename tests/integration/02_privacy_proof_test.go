package integration_test

import (
	"strings"
	"testing"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/pkg/tasmc"
)

// Test02_DigestRoundTripCompiles grounds spec.md §8's digest-round-trip
// scenario: divine a secret value, hash it twice the same way, and
// assert the two digests match — the emitted assembly never reveals
// the secret, only the hash and the comparison.
func Test02_DigestRoundTripCompiles(t *testing.T) {
	t.Log("=== Test 02: Digest Round-Trip with Divine (Secret Input) ===")

	t.Log("Step 1: Building a program that divines a secret and hashes it twice...")
	fn := &ast.FnDef{
		Name: "main",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LetStmt{
				Pattern: ast.NamePattern{Name: "secret"},
				Type:    ast.FieldType{},
				Init:    ast.CallExpr{Path: []string{"divine"}},
			},
			&ast.ExprStmt{Expr: ast.CallExpr{Path: []string{"assert_digest"}, Args: []ast.Expr{
				ast.CallExpr{Path: []string{"hash"}, Args: []ast.Expr{ast.VarExpr{Name: "secret"}}},
				ast.CallExpr{Path: []string{"hash"}, Args: []ast.Expr{ast.VarExpr{Name: "secret"}}},
			}}},
		}},
	}
	file := &ast.File{Name: "privacy", Kind: ast.FileKindProgram, Items: []ast.Item{fn}}

	t.Log("Step 2: Compiling for the Triton backend...")
	res, err := tasmc.Compile(file, tasmc.DefaultCompileOptions().WithTarget("triton"))
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	t.Logf("  Emitted assembly:\n%s", res.Assembly)
	if strings.Contains(res.Assembly, "secret") {
		t.Fatalf("variable names must never survive into the emitted assembly text")
	}
	for _, want := range []string{"divine 1", "hash", "assert_vector", "pop 5"} {
		if !strings.Contains(res.Assembly, want) {
			t.Fatalf("expected %q in assembly:\n%s", want, res.Assembly)
		}
	}
	t.Log("  Secret value is divined once and never written to public IO")
}
