// Package mono implements the Monomorphizer (spec.md §4.4): it resolves
// each call site of a size-generic function to a concrete instance,
// keyed by the function's name and its size arguments, and produces the
// mangled label the Emitter and Linker use for that instance.
package mono

import (
	"fmt"
	"strings"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

// Instance identifies one concrete specialization of a size-generic
// function: the function's name together with the resolved value of
// each of its TypeParams, in declaration order.
type Instance struct {
	Name     string
	SizeArgs []uint64
}

// key turns an Instance into a map key; SizeArgs are joined verbatim so
// two instances with the same name but different argument counts (an
// upstream checker bug) never collide.
func (i Instance) key() string {
	parts := make([]string, len(i.SizeArgs))
	for k, v := range i.SizeArgs {
		parts[k] = fmt.Sprintf("%d", v)
	}
	return i.Name + "\x00" + strings.Join(parts, ",")
}

// MangledName produces the label spec.md §4.4 mandates:
// __<name>__N<s1>_<s2>_… . A non-generic function (no size args) is
// returned unmangled.
func (i Instance) MangledName() string {
	if len(i.SizeArgs) == 0 {
		return i.Name
	}
	parts := make([]string, len(i.SizeArgs))
	for k, v := range i.SizeArgs {
		parts[k] = fmt.Sprintf("%d", v)
	}
	return "__" + i.Name + "__N" + strings.Join(parts, "_")
}

// Substitutions returns the TypeParams-to-value map emit_mono_fn needs
// to resolve ArraySize.Eval and any size-generic asm blocks.
func (i Instance) Substitutions(fn *ast.FnDef) map[string]uint64 {
	subs := make(map[string]uint64, len(fn.TypeParams))
	for k, name := range fn.TypeParams {
		if k < len(i.SizeArgs) {
			subs[name] = i.SizeArgs[k]
		}
	}
	return subs
}

// Table tracks every Instance discovered while walking a File's call
// graph and assigns each one a stable emission order (first-seen).
type Table struct {
	order []Instance
	seen  map[string]bool
}

func NewTable() *Table {
	return &Table{seen: make(map[string]bool)}
}

// Request records that inst must be emitted, returning true the first
// time a given (name, size-args) pair is seen. Later requests for the
// same pair are deduplicated — spec.md §4.4 requires each unique
// instance be emitted exactly once regardless of how many call sites
// reference it.
func (t *Table) Request(inst Instance) bool {
	k := inst.key()
	if t.seen[k] {
		return false
	}
	t.seen[k] = true
	t.order = append(t.order, inst)
	return true
}

// Instances returns every requested instance in first-seen order.
func (t *Table) Instances() []Instance {
	return t.order
}

// ResolveCall inspects a CallExpr's generic arguments against a
// generic function definition and produces the Instance it denotes.
// GenericArgs must already have been reduced to literals by the
// upstream checker (spec.md's Non-goals exclude generic-argument
// inference); ResolveCall rejects anything still symbolic.
func ResolveCall(fn *ast.FnDef, call *ast.CallExpr) (Instance, error) {
	if len(call.GenericArgs) != len(fn.TypeParams) {
		return Instance{}, fmt.Errorf("mono: %s expects %d size argument(s), call site has %d",
			fn.Name, len(fn.TypeParams), len(call.GenericArgs))
	}
	args := make([]uint64, len(call.GenericArgs))
	for i, a := range call.GenericArgs {
		lit, ok := a.AsLiteral()
		if !ok {
			return Instance{}, fmt.Errorf("mono: %s's size argument %d is not a literal at emission time", fn.Name, i)
		}
		args[i] = lit
	}
	return Instance{Name: fn.Name, SizeArgs: args}, nil
}
