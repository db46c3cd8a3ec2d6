package mono

import (
	"testing"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

func TestMangledNameMatchesSpecFormat(t *testing.T) {
	inst := Instance{Name: "sum_array", SizeArgs: []uint64{4, 8}}
	if got, want := inst.MangledName(), "__sum_array__N4_8"; got != want {
		t.Errorf("MangledName() = %q, want %q", got, want)
	}
}

func TestMangledNamePassesThroughNonGeneric(t *testing.T) {
	inst := Instance{Name: "plain_fn"}
	if got := inst.MangledName(); got != "plain_fn" {
		t.Errorf("MangledName() = %q, want unmangled name", got)
	}
}

func TestTableDeduplicatesSameInstance(t *testing.T) {
	tab := NewTable()
	a := Instance{Name: "f", SizeArgs: []uint64{4}}
	b := Instance{Name: "f", SizeArgs: []uint64{4}}
	c := Instance{Name: "f", SizeArgs: []uint64{8}}

	if !tab.Request(a) {
		t.Fatalf("first request of a should be new")
	}
	if tab.Request(b) {
		t.Fatalf("second request of an equal instance should be deduplicated")
	}
	if !tab.Request(c) {
		t.Fatalf("request of a distinct size-arg set should be new")
	}
	if len(tab.Instances()) != 2 {
		t.Fatalf("Instances() = %v, want 2 entries", tab.Instances())
	}
}

func TestResolveCallRejectsArityMismatch(t *testing.T) {
	fn := &ast.FnDef{Name: "sum_array", TypeParams: []string{"N"}}
	call := &ast.CallExpr{Path: []string{"sum_array"}}
	if _, err := ResolveCall(fn, call); err == nil {
		t.Fatalf("expected an arity mismatch error")
	}
}

func TestResolveCallRejectsNonLiteralSizeArg(t *testing.T) {
	fn := &ast.FnDef{Name: "sum_array", TypeParams: []string{"N"}}
	call := &ast.CallExpr{Path: []string{"sum_array"}, GenericArgs: []ast.ArraySize{ast.ParamSize("M")}}
	if _, err := ResolveCall(fn, call); err == nil {
		t.Fatalf("expected a non-literal size argument error")
	}
}

func TestResolveCallProducesExpectedInstance(t *testing.T) {
	fn := &ast.FnDef{Name: "sum_array", TypeParams: []string{"N"}}
	call := &ast.CallExpr{Path: []string{"sum_array"}, GenericArgs: []ast.ArraySize{ast.LiteralSize(4)}}
	inst, err := ResolveCall(fn, call)
	if err != nil {
		t.Fatalf("ResolveCall: %v", err)
	}
	if inst.MangledName() != "__sum_array__N4" {
		t.Errorf("MangledName() = %q", inst.MangledName())
	}
}

func TestSubstitutionsMapsTypeParamsToSizeArgs(t *testing.T) {
	fn := &ast.FnDef{Name: "pair", TypeParams: []string{"N", "M"}}
	inst := Instance{Name: "pair", SizeArgs: []uint64{3, 5}}
	subs := inst.Substitutions(fn)
	if subs["N"] != 3 || subs["M"] != 5 {
		t.Errorf("Substitutions() = %v", subs)
	}
}
