package codegen

import "github.com/vybium/tasmc/internal/tasmc/ast"

// emitMatch lowers a match statement to the deferred-subroutine flag
// pattern (spec.md §4.3.4): each literal arm gets a guarded call, the
// wildcard arm an unconditional one, and a struct arm is entered
// unconditionally with synthesized let/assert statements decomposing
// its fields — the upstream checker guarantees a struct pattern always
// matches its scrutinee's runtime shape.
func (e *Emitter) emitMatch(s *ast.MatchStmt) {
	e.emitExpr(s.Scrutinee)
	if top := e.stack.Top(); top != nil {
		top.Name = "__match_scrutinee"
	}

	type pendingArm struct {
		label      string
		block      ast.Block
		clearsFlag bool
	}
	var pending []pendingArm

	popScrutineeStmt := &ast.AsmStmt{Body: e.backend.InstPop(1), Effect: -1}

	for _, arm := range s.Arms {
		switch pat := arm.Pattern.(type) {
		case ast.LiteralPattern:
			armLabel := e.freshLabel("match_arm")
			restLabel := e.freshLabel("match_rest")

			depth := e.findVarDepth("__match_scrutinee")
			e.inst(e.backend.InstDup(depth))

			val := pat.Value.Integer
			if pat.Value.IsBool {
				val = 0
				if pat.Value.Bool {
					val = 1
				}
			}
			e.inst(e.backend.InstPush(val))
			e.inst(e.backend.InstEq())

			e.inst(e.backend.InstPush(1))
			e.inst(e.backend.InstSwap(1))
			e.inst(e.backend.InstSkiz())
			e.inst(e.backend.InstCall(armLabel))
			e.inst(e.backend.InstSkiz())
			e.inst(e.backend.InstCall(restLabel))

			armBody := ast.Block{Stmts: append([]ast.Stmt{popScrutineeStmt}, arm.Body.Stmts...), Tail: arm.Body.Tail}
			pending = append(pending, pendingArm{label: armLabel, block: armBody, clearsFlag: true})
			pending = append(pending, pendingArm{label: restLabel, block: ast.Block{}, clearsFlag: false})

		case ast.WildcardPattern:
			wLabel := e.freshLabel("match_wild")
			e.inst(e.backend.InstCall(wLabel))

			armBody := ast.Block{Stmts: append([]ast.Stmt{popScrutineeStmt}, arm.Body.Stmts...), Tail: arm.Body.Tail}
			pending = append(pending, pendingArm{label: wLabel, block: armBody, clearsFlag: false})

		case ast.StructPattern:
			sLabel := e.freshLabel("match_struct")
			e.inst(e.backend.InstCall(sLabel))

			stmts := []ast.Stmt{popScrutineeStmt}
			for _, spf := range pat.Fields {
				access := ast.FieldAccessExpr{Expr: s.Scrutinee, Field: spf.Field}
				switch spf.Kind {
				case ast.FieldPatternBinding:
					var fieldType ast.Type
					if sdef, ok := e.structTypes[pat.StructName]; ok {
						for _, f := range sdef.Fields {
							if f.Name == spf.Field {
								fieldType = f.Type
							}
						}
					}
					stmts = append(stmts, &ast.LetStmt{Pattern: ast.NamePattern{Name: spf.Binding}, Type: fieldType, Init: access})
				case ast.FieldPatternLiteral:
					eq := ast.BinOpExpr{Op: ast.OpEq, Lhs: access, Rhs: ast.LiteralExpr{Value: spf.Literal}}
					stmts = append(stmts, &ast.ExprStmt{Expr: ast.CallExpr{Path: []string{"assert"}, Args: []ast.Expr{eq}}})
				}
			}
			armBody := ast.Block{Stmts: append(stmts, arm.Body.Stmts...), Tail: arm.Body.Tail}
			pending = append(pending, pendingArm{label: sLabel, block: armBody, clearsFlag: false})
		}
	}

	e.stack.Pop()
	e.inst(e.backend.InstPop(1))

	for _, p := range pending {
		e.deferred = append(e.deferred, deferredBlock{label: p.label, block: p.block, clearsFlag: p.clearsFlag})
	}
}
