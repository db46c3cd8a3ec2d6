package codegen

import (
	"fmt"
	"strings"

	"github.com/vybium/tasmc/internal/tasmc/ast"
	"github.com/vybium/tasmc/internal/tasmc/stack"
)

// emitExpr always pushes exactly one anonymous entry onto the stack
// model (spec.md §4.3.3) whose width is the expression's type width.
func (e *Emitter) emitExpr(expr ast.Expr) {
	switch v := expr.(type) {
	case ast.LiteralExpr:
		e.emitLiteral(v)
	case ast.VarExpr:
		e.emitVar(v)
	case ast.BinOpExpr:
		e.emitBinOp(v)
	case ast.CallExpr:
		e.emitCall(ast.DottedPath(v.Path), v.GenericArgs, v.Args)
	case ast.TupleExpr:
		e.emitMerge(v.Elements)
	case ast.ArrayInitExpr:
		e.emitArrayInit(v)
	case ast.FieldAccessExpr:
		e.emitFieldAccess(v)
	case ast.IndexExpr:
		e.emitIndex(v)
	case ast.StructInitExpr:
		e.emitStructInit(v)
	default:
		e.stack.PushTemp(1)
		e.flushStackEffects()
	}
}

func (e *Emitter) emitLiteral(v ast.LiteralExpr) {
	val := v.Value.Integer
	if v.Value.IsBool {
		val = 0
		if v.Value.Bool {
			val = 1
		}
	}
	e.emitAndPush(e.backend.InstPush(val), 1)
}

func (e *Emitter) emitVar(v ast.VarExpr) {
	name := v.Name
	if strings.Contains(name, ".") {
		e.emitDottedVar(name)
		return
	}

	if _, ok := e.stack.AccessVar(name); !ok {
		// Unresolved name — shouldn't happen past type-checking, but
		// emission must still produce something of the right shape.
		e.diagnose("unresolved variable '" + name + "'")
		e.inst("// ERROR: unresolved variable '" + name + "'")
		e.inst(e.backend.InstDup(0))
		e.stack.PushTemp(1)
		return
	}
	e.flushStackEffects()

	_, width, _ := e.stack.FindVarDepthAndWidth(name)
	e.flushStackEffects()

	e.stack.EnsureSpace(width)
	e.flushStackEffects()
	depth, _ := e.stack.FindVarDepth(name)
	e.flushStackEffects()

	if depth+width-1 <= 15 {
		for i := uint32(0); i < width; i++ {
			e.inst(e.backend.InstDup(depth + width - 1))
		}
	} else {
		e.diagnose("variable unreachable at depth " + fmt.Sprint(depth+width-1))
		e.inst("// BUG: variable unreachable, aborting")
		e.inst(e.backend.InstPush(0))
		e.inst(e.backend.InstAssert())
	}
	e.stack.PushTemp(width)
}

func (e *Emitter) emitDottedVar(name string) {
	dot := strings.LastIndex(name, ".")
	prefix, suffix := name[:dot], name[dot+1:]

	if _, width, ok := e.stack.FindVarDepthAndWidth(prefix); ok {
		baseDepth, _ := e.stack.FindVarDepth(prefix)
		if fl, ok := e.fieldOffsetInVar(prefix, suffix); ok {
			realDepth := baseDepth + fl.offsetFromTop
			e.stack.EnsureSpace(fl.width)
			e.flushStackEffects()
			for i := uint32(0); i < fl.width; i++ {
				e.inst(e.backend.InstDup(realDepth + fl.width - 1))
			}
			e.stack.PushTemp(fl.width)
			return
		}
		e.emitAndPush(e.backend.InstDup(baseDepth), 1)
		_ = width
		return
	}

	if val, ok := e.constants[name]; ok {
		e.emitAndPush(e.backend.InstPush(val), 1)
		return
	}
	if val, ok := e.constants[suffix]; ok {
		e.emitAndPush(e.backend.InstPush(val), 1)
		return
	}
	e.diagnose("unresolved constant '" + name + "'")
	e.inst("// ERROR: unresolved constant '" + name + "'")
	e.emitAndPush(e.backend.InstPush(0), 1)
}

func (e *Emitter) emitBinOp(v ast.BinOpExpr) {
	e.emitExpr(v.Lhs)
	e.emitExpr(v.Rhs)

	switch v.Op {
	case ast.OpAdd:
		e.inst(e.backend.InstAdd())
	case ast.OpMul:
		e.inst(e.backend.InstMul())
	case ast.OpEq:
		e.inst(e.backend.InstEq())
	case ast.OpLt:
		e.inst(e.backend.InstLt())
	case ast.OpBitAnd:
		e.inst(e.backend.InstAnd())
	case ast.OpBitXor:
		e.inst(e.backend.InstXor())
	case ast.OpDivMod:
		e.inst(e.backend.InstDivMod())
	case ast.OpXFieldMul:
		e.inst(e.backend.InstXbMul())
	}

	e.stack.Pop() // rhs temp
	e.stack.Pop() // lhs temp

	resultWidth := uint32(1)
	switch v.Op {
	case ast.OpDivMod:
		resultWidth = 2
	case ast.OpXFieldMul:
		resultWidth = e.backend.Config().XFieldWidth
	}
	e.stack.PushTemp(resultWidth)
	e.flushStackEffects()
}

func (e *Emitter) emitMerge(elements []ast.Expr) {
	for _, elem := range elements {
		e.emitExpr(elem)
	}
	var total uint32
	for range elements {
		total += e.stack.Pop().Width
	}
	e.stack.PushTemp(total)
	e.flushStackEffects()
}

func (e *Emitter) emitArrayInit(v ast.ArrayInitExpr) {
	for _, elem := range v.Elements {
		e.emitExpr(elem)
	}
	n := uint32(len(v.Elements))
	var total uint32
	for range v.Elements {
		total += e.stack.Pop().Width
	}
	e.stack.PushTemp(total)
	if n > 0 {
		if top := e.stack.Top(); top != nil {
			top.ElemWidth = total / n
			top.HasElem = true
		}
	}
	e.flushStackEffects()
}

func (e *Emitter) emitStructInit(v ast.StructInitExpr) {
	var total uint32
	for _, f := range v.Fields {
		e.emitExpr(f.Value)
		total += e.stack.Pop().Width
	}
	e.stack.PushTemp(total)
	e.flushStackEffects()
}

func (e *Emitter) emitFieldAccess(v ast.FieldAccessExpr) {
	e.emitExpr(v.Expr)
	entry := e.stack.Top()
	if entry == nil {
		e.stack.PushTemp(1)
		e.flushStackEffects()
		return
	}
	structWidth := entry.Width

	fl, ok := e.fieldOffsetByShape(structWidth, v.Field)
	if !ok {
		e.diagnose("unresolved field '" + v.Field + "'")
		e.inst("// ERROR: unresolved field '" + v.Field + "'")
		e.stack.Pop()
		e.stack.PushTemp(1)
		e.flushStackEffects()
		return
	}

	for i := uint32(0); i < fl.width; i++ {
		e.inst(e.backend.InstDup(fl.offsetFromTop + (fl.width - 1 - i)))
	}
	e.stack.Pop()
	for i := uint32(0); i < fl.width; i++ {
		e.inst(e.backend.InstSwap(fl.width + structWidth - 1))
	}
	e.emitPop(structWidth)
	e.stack.PushTemp(fl.width)
	e.flushStackEffects()
}

func (e *Emitter) emitIndex(v ast.IndexExpr) {
	e.emitExpr(v.Expr)
	entry := e.stack.Top()

	if lit, ok := v.Index.(ast.LiteralExpr); ok && !lit.Value.IsBool {
		idx := uint32(lit.Value.Integer)
		if entry == nil {
			e.stack.PushTemp(1)
			e.flushStackEffects()
			return
		}
		arrayWidth := entry.Width
		elemWidth := uint32(1)
		if entry.HasElem {
			elemWidth = entry.ElemWidth
		}
		baseOffset := arrayWidth - (idx+1)*elemWidth

		for i := uint32(0); i < elemWidth; i++ {
			e.inst(e.backend.InstDup(baseOffset + (elemWidth - 1 - i)))
		}
		e.stack.Pop()
		for i := uint32(0); i < elemWidth; i++ {
			e.inst(e.backend.InstSwap(elemWidth + arrayWidth - 1))
		}
		e.emitPop(arrayWidth)
		e.stack.PushTemp(elemWidth)
		e.flushStackEffects()
		return
	}

	e.emitRuntimeIndex(v, entry)
}

// emitRuntimeIndex handles a non-literal index by spilling the array to
// a scratch RAM block and computing base + idx*elem_width at runtime —
// the only case the Stack Manager's direct-access model can't serve
// (spec.md §4.3.3, "runtime indexing").
func (e *Emitter) emitRuntimeIndex(v ast.IndexExpr, _ *stack.Entry) {
	e.emitExpr(v.Index)
	e.stack.Pop() // index temp
	arr := e.stack.Pop()

	arrayWidth := arr.Width
	elemWidth := uint32(1)
	if arr.HasElem {
		elemWidth = arr.ElemWidth
	}
	base := e.tempRAMAddr
	e.tempRAMAddr += uint64(arrayWidth)

	e.inst(e.backend.InstSwap(1))
	for i := uint32(0); i < arrayWidth; i++ {
		addr := base + uint64(i)
		e.inst(e.backend.InstPush(addr))
		e.inst(e.backend.InstSwap(1))
		e.inst(e.backend.InstWriteMem(1))
		e.inst(e.backend.InstPop(1))
		if i+1 < arrayWidth {
			e.inst(e.backend.InstSwap(1))
		}
	}

	if elemWidth > 1 {
		e.inst(e.backend.InstPush(uint64(elemWidth)))
		e.inst(e.backend.InstMul())
	}
	e.inst(e.backend.InstPush(base))
	e.inst(e.backend.InstAdd())

	for i := uint32(0); i < elemWidth; i++ {
		e.inst(e.backend.InstDup(0))
		if i > 0 {
			e.inst(e.backend.InstPush(uint64(i)))
			e.inst(e.backend.InstAdd())
		}
		e.inst(e.backend.InstReadMem(1))
		e.inst(e.backend.InstPop(1))
		e.inst(e.backend.InstSwap(1))
	}
	e.inst(e.backend.InstPop(1)) // pop address

	e.stack.PushTemp(elemWidth)
	e.flushStackEffects()
}
