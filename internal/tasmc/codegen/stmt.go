package codegen

import (
	"fmt"
	"strings"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

func (e *Emitter) emitBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		e.emitStmt(s)
	}
	if b.Tail != nil {
		e.emitExpr(b.Tail)
	}
}

func (e *Emitter) emitStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		e.emitLet(s)
	case *ast.AssignStmt:
		e.emitAssign(s)
	case *ast.TupleAssignStmt:
		e.emitTupleAssign(s)
	case *ast.IfStmt:
		e.emitIf(s)
	case *ast.ForStmt:
		e.emitFor(s)
	case *ast.ExprStmt:
		e.emitExprStmt(s)
	case *ast.ReturnStmt:
		if s.Value != nil {
			e.emitExpr(s.Value)
		}
	case *ast.EmitStmt:
		e.emitEmit(s)
	case *ast.SealStmt:
		e.emitSeal(s)
	case *ast.AsmStmt:
		e.emitAsm(s)
	case *ast.MatchStmt:
		e.emitMatch(s)
	}
}

func (e *Emitter) emitLet(s *ast.LetStmt) {
	e.emitExpr(s.Init)

	switch pat := s.Pattern.(type) {
	case ast.NamePattern:
		if pat.Name == "_" {
			return
		}
		if top := e.stack.Top(); top != nil {
			top.Name = pat.Name
		}
		if at, ok := s.Type.(ast.ArrayType); ok {
			ew := resolveTypeWidth(at.Elem, e.backend.Config())
			if top := e.stack.Top(); top != nil {
				top.ElemWidth = ew
				top.HasElem = true
			}
		}
		if si, ok := s.Init.(ast.StructInitExpr); ok {
			e.registerStructInitLayout(pat.Name, s.Type, si.Fields)
		} else if s.Type != nil {
			e.registerStructLayout(pat.Name, s.Type)
		}

	case ast.TuplePattern:
		top := e.stack.Pop()
		n := uint32(len(pat.Names))
		elemWidth := uint32(1)
		if n > 0 {
			elemWidth = top.Width / n
		}
		for _, name := range pat.Names {
			varName := name
			if varName == "_" {
				varName = "__anon"
			}
			e.stack.PushNamed(varName, elemWidth)
			e.flushStackEffects()
		}
	}
}

func (e *Emitter) emitAssign(s *ast.AssignStmt) {
	e.emitExpr(s.Value)
	e.stack.EnsureSpace(1)
	e.flushStackEffects()
	depth := e.findVarDepth(s.Name)
	if depth <= 15 {
		e.inst(e.backend.InstSwap(depth))
		e.inst(e.backend.InstPop(1))
	} else {
		e.diagnose("variable '" + s.Name + "' unreachable at depth " + fmt.Sprint(depth) + " for assignment")
		e.inst("// BUG: assignment target unreachable, aborting")
		e.inst(e.backend.InstPush(0))
		e.inst(e.backend.InstAssert())
	}
	e.stack.Pop()
}

func (e *Emitter) emitTupleAssign(s *ast.TupleAssignStmt) {
	e.emitExpr(s.Value)
	top := e.stack.Pop()
	n := uint32(len(s.Names))
	elemWidth := uint32(1)
	if n > 0 {
		elemWidth = top.Width / n
	}
	for i := len(s.Names) - 1; i >= 0; i-- {
		if elemWidth != 1 {
			continue
		}
		e.stack.EnsureSpace(1)
		e.flushStackEffects()
		depth := e.findVarDepth(s.Names[i])
		if depth <= 15 {
			e.inst(e.backend.InstSwap(depth))
			e.inst(e.backend.InstPop(1))
		} else {
			e.diagnose("variable '" + s.Names[i] + "' unreachable at depth " + fmt.Sprint(depth) + " for assignment")
			e.inst("// BUG: assignment target unreachable, aborting")
			e.inst(e.backend.InstPush(0))
			e.inst(e.backend.InstAssert())
		}
	}
}

func (e *Emitter) emitIf(s *ast.IfStmt) {
	e.emitExpr(s.Cond)
	e.stack.Pop() // cond consumed by skiz

	if s.Else != nil {
		thenLabel := e.freshLabel("then")
		elseLabel := e.freshLabel("else")

		e.inst(e.backend.InstPush(1))
		e.inst(e.backend.InstSwap(1))
		e.inst(e.backend.InstSkiz())
		e.inst(e.backend.InstCall(thenLabel))
		e.inst(e.backend.InstSkiz())
		e.inst(e.backend.InstCall(elseLabel))

		e.deferred = append(e.deferred,
			deferredBlock{label: thenLabel, block: s.Then, clearsFlag: true},
			deferredBlock{label: elseLabel, block: *s.Else, clearsFlag: false},
		)
	} else {
		thenLabel := e.freshLabel("then")
		e.inst(e.backend.InstSkiz())
		e.inst(e.backend.InstCall(thenLabel))
		e.deferred = append(e.deferred, deferredBlock{label: thenLabel, block: s.Then, clearsFlag: false})
	}
}

func (e *Emitter) emitFor(s *ast.ForStmt) {
	loopLabel := e.freshLabel("loop")

	e.emitExpr(s.End) // counter pushed as temp

	e.inst(e.backend.InstCall(loopLabel))
	e.inst(e.backend.InstPop(1))
	e.stack.Pop()

	e.emitLoopSubroutine(loopLabel, &s.Body)
}

// emitLoopSubroutine emits the bounded-loop subroutine pattern spec.md
// §4.3 describes: a tail-recursive label that returns once the counter
// hits zero, decrements otherwise, runs the body in an isolated stack
// context, then recurses.
func (e *Emitter) emitLoopSubroutine(label string, body *ast.Block) {
	e.emitLabel(label)
	e.inst(e.backend.InstDup(0))
	e.inst(e.backend.InstPush(0))
	e.inst(e.backend.InstEq())
	e.inst(e.backend.InstSkiz())
	e.inst(e.backend.InstReturn())
	e.inst(e.backend.InstPushNegOne())
	e.inst(e.backend.InstAdd())

	saved := e.stack.SaveState()
	e.stack.Clear()
	e.emitBlock(body)
	e.stack.RestoreState(saved)

	e.inst(e.backend.InstRecurse())
	e.raw("")
}

func (e *Emitter) emitExprStmt(s *ast.ExprStmt) {
	before := e.stack.Len()
	e.emitExpr(s.Expr)
	for e.stack.Len() > before {
		if top := e.stack.Top(); top != nil && top.Width > 0 {
			e.emitPop(top.Width)
		}
		e.stack.Pop()
	}
}

func (e *Emitter) emitEmit(s *ast.EmitStmt) {
	tag := e.eventTags[s.Event]
	order := e.eventDefs[s.Event]

	e.inst(e.backend.InstPush(tag))
	e.inst(e.backend.InstWriteIO(1))

	for _, name := range order {
		for _, f := range s.Fields {
			if f.Name == name {
				e.emitExpr(f.Value)
				e.stack.Pop()
				e.inst(e.backend.InstWriteIO(1))
				break
			}
		}
	}
}

func (e *Emitter) emitSeal(s *ast.SealStmt) {
	tag := e.eventTags[s.Event]
	order := e.eventDefs[s.Event]
	numFields := len(order)

	rate := int(e.backend.Config().HashRate)
	padding := rate - 1 - numFields
	if padding < 0 {
		padding = 0
	}
	for i := 0; i < padding; i++ {
		e.inst(e.backend.InstPush(0))
	}

	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		for _, f := range s.Fields {
			if f.Name == name {
				e.emitExpr(f.Value)
				e.stack.Pop()
				break
			}
		}
	}

	e.inst(e.backend.InstPush(tag))
	e.inst(e.backend.InstHash())
	e.inst(e.backend.InstWriteIO(e.backend.Config().DigestWidth))
}

func (e *Emitter) emitAsm(s *ast.AsmStmt) {
	if s.Target != "" && s.Target != e.backend.Config().Name {
		return
	}

	e.stack.SpillAllNamed()
	e.flushStackEffects()

	for _, line := range strings.Split(s.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		e.inst(trimmed)
	}

	if s.Effect > 0 {
		for i := 0; i < s.Effect; i++ {
			e.stack.PushTemp(1)
		}
	} else if s.Effect < 0 {
		for i := 0; i < -s.Effect; i++ {
			e.stack.Pop()
		}
	}
}
