package codegen

import (
	"strings"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/internal/tasmc/linker"
	"github.com/vybium/tasmc/internal/tasmc/mono"
)

// emitCall resolves name to either a backend intrinsic (spec.md §4.3's
// intrinsic table) or a user-defined function, emitting its arguments
// first and leaving exactly one result entry (possibly width 0) on the
// model.
func (e *Emitter) emitCall(name string, genericArgs []ast.ArraySize, args []ast.Expr) {
	for _, a := range args {
		e.emitExpr(a)
	}
	for range args {
		e.stack.Pop()
	}

	resolved, ok := e.intrinsicMap[name]
	if !ok {
		if short := lastDotted(name); short != name {
			resolved, ok = e.intrinsicMap[short]
		}
	}
	effective := name
	if ok {
		effective = resolved
	}

	if e.emitIntrinsic(effective) {
		return
	}
	e.emitUserCall(name, genericArgs)
}

func lastDotted(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 {
		return name
	}
	return name[idx+1:]
}

// emitIntrinsic emits one entry of spec.md's intrinsic table. Returns
// false if name isn't an intrinsic, leaving emitCall to fall through to
// user-defined function resolution.
func (e *Emitter) emitIntrinsic(name string) bool {
	b := e.backend
	switch name {
	case "pub_read":
		e.emitAndPush(b.InstReadIO(1), 1)
	case "pub_read2":
		e.emitAndPush(b.InstReadIO(2), 2)
	case "pub_read3":
		e.emitAndPush(b.InstReadIO(3), 3)
	case "pub_read4":
		e.emitAndPush(b.InstReadIO(4), 4)
	case "pub_read5":
		e.emitAndPush(b.InstReadIO(5), 5)
	case "pub_write":
		e.inst(b.InstWriteIO(1))
		e.pushTemp(0)
	case "pub_write2":
		e.inst(b.InstWriteIO(2))
		e.pushTemp(0)
	case "pub_write3":
		e.inst(b.InstWriteIO(3))
		e.pushTemp(0)
	case "pub_write4":
		e.inst(b.InstWriteIO(4))
		e.pushTemp(0)
	case "pub_write5":
		e.inst(b.InstWriteIO(5))
		e.pushTemp(0)

	case "divine":
		e.emitAndPush(b.InstDivine(1), 1)
	case "divine3":
		e.emitAndPush(b.InstDivine(3), 3)
	case "divine5":
		e.emitAndPush(b.InstDivine(5), 5)

	case "assert":
		e.inst(b.InstAssert())
		e.pushTemp(0)
	case "assert_eq":
		e.inst(b.InstEq())
		e.inst(b.InstAssert())
		e.pushTemp(0)
	case "assert_digest":
		e.inst(b.InstAssertVector())
		e.inst(b.InstPop(b.Config().DigestWidth))
		e.pushTemp(0)

	case "field_add":
		e.inst(b.InstAdd())
		e.pushTemp(1)
	case "field_mul":
		e.inst(b.InstMul())
		e.pushTemp(1)
	case "inv":
		e.inst(b.InstInvert())
		e.pushTemp(1)
	case "neg":
		e.inst(b.InstPushNegOne())
		e.inst(b.InstMul())
		e.pushTemp(1)
	case "sub":
		e.inst(b.InstPushNegOne())
		e.inst(b.InstMul())
		e.inst(b.InstAdd())
		e.pushTemp(1)

	case "split":
		e.inst(b.InstSplit())
		e.pushTemp(b.Config().FieldLimbs)
	case "log2":
		e.inst(b.InstLog2())
		e.pushTemp(1)
	case "pow":
		e.inst(b.InstPow())
		e.pushTemp(1)
	case "popcount":
		e.inst(b.InstPopCount())
		e.pushTemp(1)

	case "hash":
		e.inst(b.InstHash())
		e.pushTemp(b.Config().DigestWidth)
	case "sponge_init":
		e.inst(b.InstSpongeInit())
		e.pushTemp(0)
	case "sponge_absorb":
		e.inst(b.InstSpongeAbsorb())
		e.pushTemp(0)
	case "sponge_squeeze":
		e.emitAndPush(b.InstSpongeSqueeze(), b.Config().HashRate)
	case "sponge_absorb_mem":
		e.inst(b.InstSpongeAbsorbMem())
		e.pushTemp(0)

	case "merkle_step":
		e.emitAndPush(b.InstMerkleStep(), b.Config().DigestWidth+1)
	case "merkle_step_mem":
		e.emitAndPush(b.InstMerkleStepMem(), b.Config().DigestWidth+2)

	case "ram_read":
		e.inst(b.InstReadMem(1))
		e.inst(b.InstPop(1))
		e.pushTemp(1)
	case "ram_write":
		e.inst(b.InstWriteMem(1))
		e.inst(b.InstPop(1))
		e.pushTemp(0)
	case "ram_read_block":
		e.inst(b.InstReadMem(b.Config().DigestWidth))
		e.inst(b.InstPop(1))
		e.pushTemp(b.Config().DigestWidth)
	case "ram_write_block":
		e.inst(b.InstWriteMem(b.Config().DigestWidth))
		e.inst(b.InstPop(1))
		e.pushTemp(0)

	case "as_u32":
		e.inst(b.InstSplit())
		e.inst(b.InstPop(1))
		e.pushTemp(1)
	case "as_field":
		e.pushTemp(1)

	case "xfield":
		e.pushTemp(b.Config().XFieldWidth)
	case "xinvert":
		e.inst(b.InstXInvert())
		e.pushTemp(b.Config().XFieldWidth)
	case "xx_dot_step":
		e.emitAndPush(b.InstXXDotStep(), 5)
	case "xb_dot_step":
		e.emitAndPush(b.InstXBDotStep(), 5)

	default:
		return false
	}
	return true
}

// emitUserCall resolves a non-intrinsic call site to a generic
// (monomorphized), cross-module, or plain label and emits the call,
// pushing a result entry sized from fnReturnWidths.
func (e *Emitter) emitUserCall(name string, genericArgs []ast.ArraySize) {
	var label, baseName string

	if gdef, isGeneric := e.genericFnDefs[name]; isGeneric {
		var sizeArgs []uint64
		switch {
		case len(genericArgs) > 0 && len(e.currentSubs) == 0:
			// A call site outside any monomorphized body: its generic
			// arguments must already be literals (spec.md's Non-goals
			// exclude generic-argument inference), so route through
			// mono.ResolveCall for arity and literal-ness validation
			// instead of silently evaluating an unresolved param to 0.
			inst, err := mono.ResolveCall(gdef, &ast.CallExpr{Path: []string{name}, GenericArgs: genericArgs})
			if err != nil {
				e.diagnose(err.Error())
				e.inst("// ERROR: " + err.Error())
				sizeArgs = make([]uint64, len(genericArgs))
			} else {
				sizeArgs = inst.SizeArgs
			}
		case len(genericArgs) > 0:
			sizeArgs = make([]uint64, len(genericArgs))
			for i, ga := range genericArgs {
				sizeArgs[i] = ga.Eval(e.currentSubs)
			}
		case len(e.currentSubs) > 0:
			sizeArgs = make([]uint64, len(gdef.TypeParams))
			for i, p := range gdef.TypeParams {
				sizeArgs[i] = e.currentSubs[p]
			}
		default:
			sizeArgs = e.nextCallResolution(name)
		}
		inst := mono.Instance{Name: name, SizeArgs: sizeArgs}
		e.RequestMonoInstance(inst)
		label = inst.MangledName()
		baseName = label
	} else if strings.Contains(name, ".") {
		idx := strings.LastIndex(name, ".")
		shortModule, fnName := name[:idx], name[idx+1:]
		fullModule := shortModule
		if alias, ok := e.moduleAliases[shortModule]; ok {
			fullModule = alias
		}
		label = linker.Mangle(fullModule, fnName)
		baseName = fnName
	} else {
		label = "__" + name
		baseName = name
		if _, known := e.fnReturnWidths[baseName]; !known {
			e.diagnose("unknown intrinsic or function '" + name + "'")
			e.inst("// ERROR: unknown intrinsic or function '" + name + "'")
		}
	}

	retWidth := e.fnReturnWidths[baseName]
	callInst := e.backend.InstCall(label)
	if retWidth > 0 {
		e.emitAndPush(callInst, retWidth)
	} else {
		e.inst(callInst)
		e.pushTemp(0)
	}
}

// nextCallResolution consumes the next checker-provided size-argument
// resolution for an inferred generic call (one with no explicit
// generic arguments and not inside a monomorphized body).
func (e *Emitter) nextCallResolution(name string) []uint64 {
	for i := e.callResolutionIdx; i < len(e.callResolutions); i++ {
		if e.callResolutions[i].Name == name {
			e.callResolutionIdx = i + 1
			return e.callResolutions[i].SizeArgs
		}
	}
	return nil
}
