package tasmc_test

import (
	"strings"
	"testing"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/pkg/tasmc"
)

func TestCompileRejectsUnknownTarget(t *testing.T) {
	file := &ast.File{Name: "m", Items: []ast.Item{}}
	_, err := tasmc.Compile(file, tasmc.DefaultCompileOptions().WithTarget("cairo"))
	if err == nil {
		t.Fatal("expected an error for an unimplemented backend")
	}
	var ce *tasmc.CompileError
	if !errorsAs(err, &ce) {
		t.Fatalf("expected *tasmc.CompileError, got %T", err)
	}
	if ce.Code != tasmc.ErrUnknownTarget {
		t.Fatalf("expected ErrUnknownTarget, got %d", ce.Code)
	}
}

func TestCompileEmitsAssemblyForKnownTargets(t *testing.T) {
	fn := &ast.FnDef{
		Name:       "identity",
		Params:     []ast.Param{{Name: "a", Type: ast.FieldType{}}},
		ReturnType: ast.FieldType{},
		Body:       &ast.Block{Tail: ast.VarExpr{Name: "a"}},
	}
	file := &ast.File{Name: "m", Items: []ast.Item{fn}}

	for _, target := range []string{"triton", "miden", "openvm"} {
		res, err := tasmc.Compile(file, tasmc.DefaultCompileOptions().WithTarget(target))
		if err != nil {
			t.Fatalf("Compile(%s): %v", target, err)
		}
		if res.Target != target {
			t.Fatalf("expected Target %q, got %q", target, res.Target)
		}
		if !strings.Contains(res.Assembly, "__identity:") {
			t.Fatalf("%s: expected function label, got:\n%s", target, res.Assembly)
		}
	}
}

func TestLinkAppendsModuleDigestWhenRequested(t *testing.T) {
	listings := map[string]string{"shapes": "__shapes_area:\n    return"}
	without := tasmc.Link("__main", listings, tasmc.DefaultCompileOptions())
	with := tasmc.Link("__main", listings, tasmc.DefaultCompileOptions().WithModuleDigest(true))

	if strings.Contains(without.Assembly, "module-digest") {
		t.Fatalf("expected no digest by default, got:\n%s", without.Assembly)
	}
	if !strings.Contains(with.Assembly, "module-digest") {
		t.Fatalf("expected a module-digest comment, got:\n%s", with.Assembly)
	}
	if !strings.Contains(with.Assembly, "call __main") {
		t.Fatalf("expected entry wrapper, got:\n%s", with.Assembly)
	}
}

func TestCompileStrictModeSurfacesUnresolvedVariable(t *testing.T) {
	fn := &ast.FnDef{
		Name: "broken",
		Body: &ast.Block{Tail: ast.VarExpr{Name: "nope"}},
	}
	file := &ast.File{Name: "m", Items: []ast.Item{fn}}

	lenient, err := tasmc.Compile(file, tasmc.DefaultCompileOptions())
	if err != nil {
		t.Fatalf("non-strict compile should not error, got: %v", err)
	}
	if len(lenient.Diagnostics) == 0 {
		t.Fatal("expected a diagnostic for the unresolved variable even without strict mode")
	}

	_, err = tasmc.Compile(file, tasmc.DefaultCompileOptions().WithStrictMode(true))
	if err == nil {
		t.Fatal("expected strict mode to surface the unresolved variable as an error")
	}
	var ce *tasmc.CompileError
	if !errorsAs(err, &ce) || ce.Code != tasmc.ErrCompilerBug {
		t.Fatalf("expected ErrCompilerBug, got %v", err)
	}
}

// errorsAs avoids importing errors just for this cast in a small test file.
func errorsAs(err error, target **tasmc.CompileError) bool {
	ce, ok := err.(*tasmc.CompileError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
