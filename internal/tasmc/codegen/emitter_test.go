package codegen

import (
	"strings"
	"testing"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/internal/tasmc/target"
)

func mustTriton(t *testing.T) target.Backend {
	t.Helper()
	b, err := target.New("triton")
	if err != nil {
		t.Fatalf("target.New(triton): %v", err)
	}
	return b
}

func programOf(fn *ast.FnDef) *ast.File {
	return &ast.File{Name: "main", Kind: ast.FileKindProgram, Items: []ast.Item{fn}}
}

// TestEmitFileWrapsProgramEntry covers the "program" FileKind wrapper:
// a call to __main followed by halt must precede every item's code.
func TestEmitFileWrapsProgramEntry(t *testing.T) {
	fn := &ast.FnDef{
		Name: "main",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.LetStmt{Pattern: ast.NamePattern{Name: "x"}, Init: ast.LiteralExpr{Value: ast.Literal{Integer: 1}}},
		}},
	}
	out := New(mustTriton(t)).EmitFile(programOf(fn))

	if !strings.Contains(out, "call __main") {
		t.Fatalf("expected entry wrapper to call __main, got:\n%s", out)
	}
	if !strings.Contains(out, "halt") {
		t.Fatalf("expected entry wrapper to halt, got:\n%s", out)
	}
	if idx := strings.Index(out, "call __main"); idx > strings.Index(out, "__main:") && strings.Index(out, "__main:") != -1 {
		t.Fatalf("entry wrapper must precede function bodies")
	}
}

// TestFieldSumEmitsAddAndReturnsWidthOne grounds spec.md §8's "field sum"
// end-to-end scenario: two field params added, function returns one word.
func TestFieldSumEmitsAddAndReturnsWidthOne(t *testing.T) {
	fn := &ast.FnDef{
		Name:       "add_two",
		Params:     []ast.Param{{Name: "a", Type: ast.FieldType{}}, {Name: "b", Type: ast.FieldType{}}},
		ReturnType: ast.FieldType{},
		Body: &ast.Block{
			Tail: ast.BinOpExpr{Op: ast.OpAdd, Lhs: ast.VarExpr{Name: "a"}, Rhs: ast.VarExpr{Name: "b"}},
		},
	}
	file := &ast.File{Name: "m", Kind: ast.FileKindModule, Items: []ast.Item{fn}}
	out := New(mustTriton(t)).EmitFile(file)

	if !strings.Contains(out, "__add_two:") {
		t.Fatalf("expected function label, got:\n%s", out)
	}
	if !strings.Contains(out, "add") {
		t.Fatalf("expected add instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "return") {
		t.Fatalf("expected return instruction, got:\n%s", out)
	}
	if got := strings.Count(out, "pop 1"); got != 2 {
		t.Fatalf("expected the epilogue to drop both params and keep the one-word sum (2 pops), got %d:\n%s", got, out)
	}
}

// TestIfElseEmitsDeferredFlagPattern grounds the branch scenario: a
// two-armed if must use the push-1/swap/skiz/call guard for both arms
// and queue each arm as its own subroutine.
func TestIfElseEmitsDeferredFlagPattern(t *testing.T) {
	fn := &ast.FnDef{
		Name:   "choose",
		Params: []ast.Param{{Name: "c", Type: ast.BoolType{}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: ast.VarExpr{Name: "c"},
				Then: ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{Expr: ast.LiteralExpr{Value: ast.Literal{Integer: 1}}}}},
				Else: &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{Expr: ast.LiteralExpr{Value: ast.Literal{Integer: 2}}}}},
			},
		}},
	}
	file := &ast.File{Name: "m", Kind: ast.FileKindModule, Items: []ast.Item{fn}}
	out := New(mustTriton(t)).EmitFile(file)

	for _, want := range []string{"swap 1", "skiz", "call then_", "call else_", "then_1:", "else_2:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

// TestBoundedLoopEmitsTailRecursiveSubroutine grounds the "bounded loop
// sum" scenario: a for statement must emit a labelled subroutine that
// checks zero, decrements, runs the body, and recurses.
func TestBoundedLoopEmitsTailRecursiveSubroutine(t *testing.T) {
	fn := &ast.FnDef{
		Name: "sum_to",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ForStmt{
				Var: "i",
				End: ast.LiteralExpr{Value: ast.Literal{Integer: 3}},
				Body: ast.Block{Stmts: []ast.Stmt{
					&ast.ExprStmt{Expr: ast.LiteralExpr{Value: ast.Literal{Integer: 0}}},
				}},
			},
		}},
	}
	file := &ast.File{Name: "m", Kind: ast.FileKindModule, Items: []ast.Item{fn}}
	out := New(mustTriton(t)).EmitFile(file)

	for _, want := range []string{"loop_1:", "recurse", "eq", "push -1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q (loop decrement/guard) in output:\n%s", want, out)
		}
	}
}

// TestDigestRoundTripEmitsHashAndAssertVector grounds the digest
// scenario: hash produces DigestWidth words, assert_digest consumes
// DigestWidth words via assert_vector then pops them.
func TestDigestRoundTripEmitsHashAndAssertVector(t *testing.T) {
	fn := &ast.FnDef{
		Name: "check_digest",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{Expr: ast.CallExpr{Path: []string{"assert_digest"}, Args: []ast.Expr{
				ast.CallExpr{Path: []string{"hash"}, Args: []ast.Expr{ast.LiteralExpr{Value: ast.Literal{Integer: 1}}}},
				ast.CallExpr{Path: []string{"hash"}, Args: []ast.Expr{ast.LiteralExpr{Value: ast.Literal{Integer: 1}}}},
			}}},
		}},
	}
	file := &ast.File{Name: "m", Kind: ast.FileKindModule, Items: []ast.Item{fn}}
	out := New(mustTriton(t)).EmitFile(file)

	if !strings.Contains(out, "hash") {
		t.Fatalf("expected hash instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "assert_vector") {
		t.Fatalf("expected assert_vector instruction, got:\n%s", out)
	}
	if !strings.Contains(out, "pop 5") {
		t.Fatalf("expected assert_digest to pop the 5-word Triton digest, got:\n%s", out)
	}
}

// TestEmitVsSealDiffer grounds the "emit vs seal" scenario: emit writes
// a tag then each field directly to IO, seal pads to the hash rate and
// writes a hashed digest instead.
func TestEmitVsSealDiffer(t *testing.T) {
	event := &ast.EventDef{Name: "Tick", Fields: []ast.StructField{{Name: "n", Type: ast.FieldType{}}}}

	emitFn := &ast.FnDef{Name: "emit_it", Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.EmitStmt{Event: "Tick", Fields: []ast.FieldInit{{Name: "n", Value: ast.LiteralExpr{Value: ast.Literal{Integer: 7}}}}},
	}}}
	sealFn := &ast.FnDef{Name: "seal_it", Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.SealStmt{Event: "Tick", Fields: []ast.FieldInit{{Name: "n", Value: ast.LiteralExpr{Value: ast.Literal{Integer: 7}}}}},
	}}}

	emitOut := New(mustTriton(t)).EmitFile(&ast.File{Name: "m", Items: []ast.Item{event, emitFn}})
	sealOut := New(mustTriton(t)).EmitFile(&ast.File{Name: "m", Items: []ast.Item{event, sealFn}})

	if !strings.Contains(emitOut, "write_io 1") || strings.Contains(emitOut, "hash") {
		t.Fatalf("expected emit to write_io without hashing, got:\n%s", emitOut)
	}
	if !strings.Contains(sealOut, "hash") {
		t.Fatalf("expected seal to hash its padded fields, got:\n%s", sealOut)
	}
}

// TestMatchLiteralArmGuardsWithDupAndEq grounds the match statement on
// the literal-pattern flag pattern: dup the scrutinee, compare, and
// guard the arm call the same way an if/else does.
func TestMatchLiteralArmGuardsWithDupAndEq(t *testing.T) {
	fn := &ast.FnDef{
		Name: "classify",
		Params: []ast.Param{{Name: "x", Type: ast.FieldType{}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.MatchStmt{
				Scrutinee: ast.VarExpr{Name: "x"},
				Arms: []ast.MatchArm{
					{Pattern: ast.LiteralPattern{Value: ast.Literal{Integer: 0}}, Body: ast.Block{
						Stmts: []ast.Stmt{&ast.ExprStmt{Expr: ast.LiteralExpr{Value: ast.Literal{Integer: 1}}}},
					}},
					{Pattern: ast.WildcardPattern{}, Body: ast.Block{
						Stmts: []ast.Stmt{&ast.ExprStmt{Expr: ast.LiteralExpr{Value: ast.Literal{Integer: 2}}}},
					}},
				},
			},
		}},
	}
	file := &ast.File{Name: "m", Kind: ast.FileKindModule, Items: []ast.Item{fn}}
	out := New(mustTriton(t)).EmitFile(file)

	for _, want := range []string{"eq", "match_arm_", "match_wild_", "call match_arm_", "call match_wild_"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in match output:\n%s", want, out)
		}
	}
}

// TestGenericFirstMonomorphizesOncePerSizeArg grounds the monomorphizer
// scenario: calling a size-generic function with two distinct literal
// size arguments must produce exactly two distinct mangled labels.
func TestGenericFirstMonomorphizesOncePerSizeArg(t *testing.T) {
	first := &ast.FnDef{
		Name:       "first",
		TypeParams: []string{"N"},
		Params:     []ast.Param{{Name: "arr", Type: ast.ArrayType{Elem: ast.FieldType{}, Size: ast.ParamSize("N")}}},
		ReturnType: ast.FieldType{},
		Body: &ast.Block{
			Tail: ast.IndexExpr{Expr: ast.VarExpr{Name: "arr"}, Index: ast.LiteralExpr{Value: ast.Literal{Integer: 0}}},
		},
	}
	caller := &ast.FnDef{
		Name: "main",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{Expr: ast.CallExpr{
				Path:        []string{"first"},
				GenericArgs: []ast.ArraySize{ast.LiteralSize(3)},
				Args:        []ast.Expr{ast.ArrayInitExpr{Elements: []ast.Expr{ast.LiteralExpr{Value: ast.Literal{Integer: 9}}}}},
			}},
			&ast.ExprStmt{Expr: ast.CallExpr{
				Path:        []string{"first"},
				GenericArgs: []ast.ArraySize{ast.LiteralSize(5)},
				Args:        []ast.Expr{ast.ArrayInitExpr{Elements: []ast.Expr{ast.LiteralExpr{Value: ast.Literal{Integer: 9}}}}},
			}},
		}},
	}
	file := &ast.File{Name: "m", Kind: ast.FileKindProgram, Items: []ast.Item{first, caller}}
	out := New(mustTriton(t)).EmitFile(file)

	if !strings.Contains(out, "__first__N3:") {
		t.Fatalf("expected mangled label for N=3, got:\n%s", out)
	}
	if !strings.Contains(out, "__first__N5:") {
		t.Fatalf("expected mangled label for N=5, got:\n%s", out)
	}
}
