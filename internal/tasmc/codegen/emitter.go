// Package codegen implements the Codegen Emitter (spec.md §4.3): a
// recursive walk over a type-checked ast.File that produces target
// assembly text. The Emitter never addresses the physical operand
// stack directly — every access goes through a stack.Manager — and
// never hard-codes an instruction spelling — every mnemonic comes from
// a target.Backend.
package codegen

import (
	"fmt"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/internal/tasmc/mono"
	"github.com/vybium/tasmc/internal/tasmc/stack"
	"github.com/vybium/tasmc/internal/tasmc/target"
)

// deferredBlock is a branch/loop/match-arm body queued for emission as
// its own subroutine after the function currently being walked
// finishes (spec.md §4.3, "deferred emission").
type deferredBlock struct {
	label      string
	block      ast.Block
	clearsFlag bool
}

type fieldLayout struct {
	offsetFromTop uint32
	width         uint32
}

// Emitter walks one ast.File and accumulates its target-assembly text.
type Emitter struct {
	backend target.Backend

	output       []string
	labelCounter uint32
	stack        *stack.Manager
	deferred     []deferredBlock

	structLayouts map[string]map[string]fieldLayout
	fnReturnWidths map[string]uint32
	eventTags     map[string]uint64
	eventDefs     map[string][]string
	structTypes   map[string]*ast.StructDef
	constants     map[string]uint64
	tempRAMAddr   uint64

	intrinsicMap  map[string]string
	moduleAliases map[string]string

	monoTable         *mono.Table
	genericFnDefs     map[string]*ast.FnDef
	currentSubs       map[string]uint64
	callResolutions   []mono.Instance
	callResolutionIdx int

	cfgFlags map[string]bool

	strictMode  bool
	diagnostics []string
}

// New builds an Emitter targeting backend, ready to emit a single File.
func New(backend target.Backend) *Emitter {
	cfg := backend.Config()
	return &Emitter{
		backend:        backend,
		stack:          stack.NewManager(backend),
		structLayouts:  make(map[string]map[string]fieldLayout),
		fnReturnWidths: make(map[string]uint32),
		eventTags:      make(map[string]uint64),
		eventDefs:      make(map[string][]string),
		structTypes:    make(map[string]*ast.StructDef),
		constants:      make(map[string]uint64),
		tempRAMAddr:    cfg.SpillRAMBase / 2,
		intrinsicMap:   make(map[string]string),
		moduleAliases:  make(map[string]string),
		monoTable:      mono.NewTable(),
		genericFnDefs:  make(map[string]*ast.FnDef),
		currentSubs:    make(map[string]uint64),
		cfgFlags:       map[string]bool{"debug": true},
	}
}

func (e *Emitter) WithCfgFlags(flags map[string]bool) *Emitter {
	e.cfgFlags = flags
	return e
}

func (e *Emitter) WithModuleAliases(aliases map[string]string) *Emitter {
	for k, v := range aliases {
		e.moduleAliases[k] = v
	}
	return e
}

func (e *Emitter) WithConstants(consts map[string]uint64) *Emitter {
	for k, v := range consts {
		e.constants[k] = v
	}
	return e
}

func (e *Emitter) WithCallResolutions(res []mono.Instance) *Emitter {
	e.callResolutions = res
	return e
}

// WithStrictMode makes Diagnostics() non-empty mean "this file contains
// an emission-time compiler-bug signal" (spec.md §7's three
// categories: unresolved field, unreachable variable, unknown
// intrinsic) in addition to the inline `// BUG:`/`// ERROR:` comment
// the Emitter always produces regardless of this flag.
func (e *Emitter) WithStrictMode(on bool) *Emitter {
	e.strictMode = on
	return e
}

// Diagnostics returns every compiler-bug signal recorded while emitting
// the most recent EmitFile call.
func (e *Emitter) Diagnostics() []string {
	return e.diagnostics
}

func (e *Emitter) diagnose(msg string) {
	e.diagnostics = append(e.diagnostics, msg)
}

func (e *Emitter) isCfgActive(cfg string) bool {
	if cfg == "" {
		return true
	}
	return e.cfgFlags[cfg]
}

func (e *Emitter) isItemCfgActive(item ast.Item) bool {
	switch v := item.(type) {
	case *ast.FnDef:
		return e.isCfgActive(v.Cfg)
	case *ast.ConstDef:
		return e.isCfgActive(v.Cfg)
	case *ast.StructDef:
		return e.isCfgActive(v.Cfg)
	case *ast.EventDef:
		return e.isCfgActive(v.Cfg)
	}
	return true
}

// EmitFile walks file and returns its complete target-assembly text.
func (e *Emitter) EmitFile(file *ast.File) string {
	e.diagnostics = nil

	// Pre-scan: index return widths, generic defs, intrinsics, structs,
	// constants, and event tags before emitting a single instruction —
	// every one of these may be referenced by a call site that appears
	// textually earlier than its definition.
	for _, item := range file.Items {
		if !e.isItemCfgActive(item) {
			continue
		}
		if fn, ok := item.(*ast.FnDef); ok {
			if len(fn.TypeParams) > 0 {
				e.genericFnDefs[fn.Name] = fn
			} else {
				e.fnReturnWidths[fn.Name] = resolveTypeWidth(fn.ReturnType, e.backend.Config())
			}
		}
	}
	for _, inst := range e.monoTable.Instances() {
		e.registerMonoReturnWidth(inst)
	}
	for _, item := range file.Items {
		if !e.isItemCfgActive(item) {
			continue
		}
		if fn, ok := item.(*ast.FnDef); ok && fn.Intrinsic != "" {
			e.intrinsicMap[fn.Name] = fn.Intrinsic
		}
	}
	for _, item := range file.Items {
		if !e.isItemCfgActive(item) {
			continue
		}
		if sd, ok := item.(*ast.StructDef); ok {
			e.structTypes[sd.Name] = sd
		}
	}
	for _, item := range file.Items {
		if !e.isItemCfgActive(item) {
			continue
		}
		if cd, ok := item.(*ast.ConstDef); ok {
			if lit, ok := cd.Value.(ast.LiteralExpr); ok && !lit.Value.IsBool {
				e.constants[cd.Name] = lit.Value.Integer
			}
		}
	}
	var tag uint64
	for _, item := range file.Items {
		if !e.isItemCfgActive(item) {
			continue
		}
		if ed, ok := item.(*ast.EventDef); ok {
			e.eventTags[ed.Name] = tag
			names := make([]string, len(ed.Fields))
			for i, f := range ed.Fields {
				names[i] = f.Name
			}
			e.eventDefs[ed.Name] = names
			tag++
		}
	}

	for _, decl := range file.Declarations {
		if sr, ok := decl.(*ast.SecRamDecl); ok {
			e.raw("// sec ram: prover-initialized RAM slots")
			for _, entry := range sr.Entries {
				w := resolveTypeWidth(entry.Type, e.backend.Config())
				plural := "s"
				if w == 1 {
					plural = ""
				}
				e.raw(fmt.Sprintf("// ram[%d]: %s (%d field element%s)", entry.Addr, ast.FormatTypeName(entry.Type), w, plural))
			}
			e.raw("")
		}
	}

	if file.Kind == ast.FileKindProgram {
		e.raw("    " + e.backend.InstCall("__main"))
		e.raw("    " + e.backend.InstHalt())
		e.raw("")
	}

	for _, item := range file.Items {
		if !e.isItemCfgActive(item) {
			continue
		}
		if fn, ok := item.(*ast.FnDef); ok && len(fn.TypeParams) == 0 && !fn.IsTest {
			e.emitFn(fn)
		}
	}

	for i := 0; i < len(e.monoTable.Instances()); i++ {
		inst := e.monoTable.Instances()[i]
		if gdef, ok := e.genericFnDefs[inst.Name]; ok {
			e.emitMonoFn(gdef, inst)
		}
	}

	out := ""
	for i, l := range e.output {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}

// RequestMonoInstance registers a monomorphized instance to be emitted
// after every plain function. A call site may request an instance
// mid-emission (before the instance itself has been walked), so its
// return width is registered immediately rather than relying on the
// pre-scan, which only sees instances requested by earlier call sites.
func (e *Emitter) RequestMonoInstance(inst mono.Instance) bool {
	fresh := e.monoTable.Request(inst)
	if fresh {
		e.registerMonoReturnWidth(inst)
	}
	return fresh
}

func (e *Emitter) registerMonoReturnWidth(inst mono.Instance) {
	gdef, ok := e.genericFnDefs[inst.Name]
	if !ok {
		return
	}
	subs := inst.Substitutions(gdef)
	width := resolveTypeWidthWithSubs(gdef.ReturnType, subs, e.backend.Config())
	mangled := inst.MangledName()
	e.fnReturnWidths[mangled] = width
}

func (e *Emitter) emitFn(fn *ast.FnDef) {
	if fn.Body == nil {
		return
	}
	label := "__" + fn.Name
	if fn.Name == "main" {
		label = "__main"
	}
	e.emitLabel(label)
	e.stack.Clear()
	e.deferred = e.deferred[:0]

	for _, p := range fn.Params {
		w := resolveTypeWidth(p.Type, e.backend.Config())
		e.stack.PushNamed(p.Name, w)
		e.flushStackEffects()
	}

	e.emitBlock(fn.Body)
	e.emitEpilogue(fn.ReturnType != nil, resolveTypeWidth(fn.ReturnType, e.backend.Config()))
	e.backendReturn()
	e.raw("")

	e.flushDeferred()
	e.stack.Clear()
}

func (e *Emitter) emitMonoFn(fn *ast.FnDef, inst mono.Instance) {
	if fn.Body == nil {
		return
	}
	e.currentSubs = inst.Substitutions(fn)

	label := inst.MangledName()
	e.emitLabel(label)
	e.stack.Clear()
	e.deferred = e.deferred[:0]

	for _, p := range fn.Params {
		w := resolveTypeWidthWithSubs(p.Type, e.currentSubs, e.backend.Config())
		e.stack.PushNamed(p.Name, w)
		e.flushStackEffects()
	}

	e.emitBlock(fn.Body)
	retW := resolveTypeWidthWithSubs(fn.ReturnType, e.currentSubs, e.backend.Config())
	e.emitEpilogue(fn.ReturnType != nil, retW)
	e.backendReturn()
	e.raw("")

	e.flushDeferred()
	e.stack.Clear()
	e.currentSubs = make(map[string]uint64)
}

// emitEpilogue pops every live entry down to exactly retWidth elements
// (or everything, for a function with no return value) — spec.md
// §4.3's "function cleanup".
func (e *Emitter) emitEpilogue(hasReturn bool, retWidth uint32) {
	total := e.stack.PhysicalDepth()
	if hasReturn && total > 0 {
		toPop := total
		if toPop > retWidth {
			toPop -= retWidth
		} else {
			toPop = 0
		}
		for i := uint32(0); i < toPop; i++ {
			e.inst(e.backend.InstSwap(1))
			e.inst(e.backend.InstPop(1))
		}
	} else if !hasReturn {
		e.emitPop(total)
	}
}

func (e *Emitter) flushDeferred() {
	for len(e.deferred) > 0 {
		batch := e.deferred
		e.deferred = nil
		for _, b := range batch {
			e.emitLabel(b.label)
			if b.clearsFlag {
				e.inst(e.backend.InstPop(1))
			}
			e.emitBlock(&b.block)
			if b.clearsFlag {
				e.inst(e.backend.InstPush(0))
			}
			e.backendReturn()
			e.raw("")
		}
	}
}

// --- low-level output helpers ---

func (e *Emitter) raw(line string) { e.output = append(e.output, line) }

func (e *Emitter) inst(text string) { e.output = append(e.output, "    "+text) }

func (e *Emitter) emitLabel(label string) { e.raw(label + ":") }

func (e *Emitter) backendReturn() { e.inst(e.backend.InstReturn()) }

func (e *Emitter) freshLabel(prefix string) string {
	e.labelCounter++
	return fmt.Sprintf("%s_%d", prefix, e.labelCounter)
}

func (e *Emitter) flushStackEffects() {
	for _, s := range e.stack.DrainSideEffects() {
		e.output = append(e.output, "    "+s)
	}
}

// emitAndPush ensures room for result_width, flushes any resulting
// spill code, emits instruction, then records the result as an
// anonymous temp — the ordering spec.md §4.2 requires: spill BEFORE
// the physical instruction that needs the freed room.
func (e *Emitter) emitAndPush(instruction string, resultWidth uint32) {
	if resultWidth > 0 {
		e.stack.EnsureSpace(resultWidth)
		e.flushStackEffects()
	}
	e.inst(instruction)
	e.stack.PushTemp(resultWidth)
}

func (e *Emitter) pushTemp(width uint32) {
	e.stack.PushTemp(width)
	e.flushStackEffects()
}

func (e *Emitter) emitPop(n uint32) {
	if n == 0 {
		return
	}
	e.inst(e.backend.InstPop(n))
}

func (e *Emitter) findVarDepth(name string) uint32 {
	d, _ := e.stack.FindVarDepth(name)
	e.flushStackEffects()
	return d
}
