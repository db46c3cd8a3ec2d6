package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

type rawBlock struct {
	Stmts []json.RawMessage `json:"stmts"`
	Tail  json.RawMessage   `json:"tail"`
}

func decodeBlock(raw json.RawMessage) (*ast.Block, error) {
	var r rawBlock
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	out, err := decodeBlockValue(r)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func decodeBlockValue(r rawBlock) (ast.Block, error) {
	stmts := make([]ast.Stmt, len(r.Stmts))
	for i, sr := range r.Stmts {
		s, err := decodeStmt(sr)
		if err != nil {
			return ast.Block{}, fmt.Errorf("stmt %d: %w", i, err)
		}
		stmts[i] = s
	}
	var tail ast.Expr
	if len(r.Tail) > 0 {
		t, err := decodeExpr(r.Tail)
		if err != nil {
			return ast.Block{}, fmt.Errorf("tail: %w", err)
		}
		tail = t
	}
	return ast.Block{Stmts: stmts, Tail: tail}, nil
}

type rawPattern struct {
	Kind  string   `json:"kind"`
	Name  string   `json:"name"`
	Names []string `json:"names"`
}

func decodePattern(raw json.RawMessage) (ast.Pattern, error) {
	var r rawPattern
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	switch r.Kind {
	case "name":
		return ast.NamePattern{Name: r.Name}, nil
	case "tuple":
		return ast.TuplePattern{Names: r.Names}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown pattern kind %q", r.Kind)
	}
}

type rawStructFieldPattern struct {
	Field   string     `json:"field"`
	Kind    string     `json:"kind"`
	Binding string     `json:"binding"`
	Literal rawLiteral `json:"literal"`
}

type rawMatchPattern struct {
	Kind       string                  `json:"kind"`
	Value      rawLiteral              `json:"value"`
	StructName string                  `json:"struct_name"`
	Fields     []rawStructFieldPattern `json:"fields"`
}

func decodeMatchPattern(raw json.RawMessage) (ast.MatchPattern, error) {
	var r rawMatchPattern
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	switch r.Kind {
	case "literal":
		return ast.LiteralPattern{Value: r.Value.toAST()}, nil
	case "wildcard":
		return ast.WildcardPattern{}, nil
	case "struct":
		fields := make([]ast.StructFieldPattern, len(r.Fields))
		for i, f := range r.Fields {
			var kind ast.FieldPatternKind
			switch f.Kind {
			case "binding":
				kind = ast.FieldPatternBinding
			case "literal":
				kind = ast.FieldPatternLiteral
			case "wildcard":
				kind = ast.FieldPatternWildcard
			default:
				return nil, fmt.Errorf("astjson: unknown struct field pattern kind %q", f.Kind)
			}
			fields[i] = ast.StructFieldPattern{
				Field:   f.Field,
				Kind:    kind,
				Binding: f.Binding,
				Literal: f.Literal.toAST(),
			}
		}
		return ast.StructPattern{StructName: r.StructName, Fields: fields}, nil
	default:
		return nil, fmt.Errorf("astjson: unknown match pattern kind %q", r.Kind)
	}
}

type rawMatchArm struct {
	Pattern json.RawMessage `json:"pattern"`
	Body    rawBlock        `json:"body"`
}

type rawStmt struct {
	Kind string `json:"kind"`

	Pattern json.RawMessage `json:"pattern"`
	Type    json.RawMessage `json:"type"`
	Init    json.RawMessage `json:"init"`

	Name  string   `json:"name"`
	Names []string `json:"names"`
	Value json.RawMessage `json:"value"`

	Cond json.RawMessage `json:"cond"`
	Then rawBlock        `json:"then"`
	Else *rawBlock       `json:"else"`

	Var  string   `json:"var"`
	End  json.RawMessage `json:"end"`
	Body rawBlock `json:"body"`

	Expr json.RawMessage `json:"expr"`

	Event  string         `json:"event"`
	Fields []rawFieldInit `json:"fields"`

	AsmBody string `json:"asm_body"`
	Effect  int    `json:"effect"`
	Target  string `json:"target"`

	Scrutinee json.RawMessage `json:"scrutinee"`
	Arms      []rawMatchArm   `json:"arms"`
}

func decodeStmt(raw json.RawMessage) (ast.Stmt, error) {
	var r rawStmt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	switch r.Kind {
	case "let":
		pat, err := decodePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("let pattern: %w", err)
		}
		var typ ast.Type
		if len(r.Type) > 0 {
			typ, err = decodeType(r.Type)
			if err != nil {
				return nil, fmt.Errorf("let type: %w", err)
			}
		}
		init, err := decodeExpr(r.Init)
		if err != nil {
			return nil, fmt.Errorf("let init: %w", err)
		}
		return &ast.LetStmt{Pattern: pat, Type: typ, Init: init}, nil

	case "assign":
		val, err := decodeExpr(r.Value)
		if err != nil {
			return nil, fmt.Errorf("assign %s: %w", r.Name, err)
		}
		return &ast.AssignStmt{Name: r.Name, Value: val}, nil

	case "tuple_assign":
		val, err := decodeExpr(r.Value)
		if err != nil {
			return nil, fmt.Errorf("tuple_assign: %w", err)
		}
		return &ast.TupleAssignStmt{Names: r.Names, Value: val}, nil

	case "if":
		cond, err := decodeExpr(r.Cond)
		if err != nil {
			return nil, fmt.Errorf("if cond: %w", err)
		}
		then, err := decodeBlockValue(r.Then)
		if err != nil {
			return nil, fmt.Errorf("if then: %w", err)
		}
		var elseBlock *ast.Block
		if r.Else != nil {
			eb, err := decodeBlockValue(*r.Else)
			if err != nil {
				return nil, fmt.Errorf("if else: %w", err)
			}
			elseBlock = &eb
		}
		return &ast.IfStmt{Cond: cond, Then: then, Else: elseBlock}, nil

	case "for":
		end, err := decodeExpr(r.End)
		if err != nil {
			return nil, fmt.Errorf("for end: %w", err)
		}
		body, err := decodeBlockValue(r.Body)
		if err != nil {
			return nil, fmt.Errorf("for body: %w", err)
		}
		return &ast.ForStmt{Var: r.Var, End: end, Body: body}, nil

	case "expr":
		e, err := decodeExpr(r.Expr)
		if err != nil {
			return nil, fmt.Errorf("expr stmt: %w", err)
		}
		return &ast.ExprStmt{Expr: e}, nil

	case "return":
		if len(r.Value) == 0 {
			return &ast.ReturnStmt{}, nil
		}
		v, err := decodeExpr(r.Value)
		if err != nil {
			return nil, fmt.Errorf("return value: %w", err)
		}
		return &ast.ReturnStmt{Value: v}, nil

	case "emit":
		fields, err := decodeFieldInits(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("emit %s: %w", r.Event, err)
		}
		return &ast.EmitStmt{Event: r.Event, Fields: fields}, nil

	case "seal":
		fields, err := decodeFieldInits(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("seal %s: %w", r.Event, err)
		}
		return &ast.SealStmt{Event: r.Event, Fields: fields}, nil

	case "asm":
		return &ast.AsmStmt{Body: r.AsmBody, Effect: r.Effect, Target: r.Target}, nil

	case "match":
		scrutinee, err := decodeExpr(r.Scrutinee)
		if err != nil {
			return nil, fmt.Errorf("match scrutinee: %w", err)
		}
		arms := make([]ast.MatchArm, len(r.Arms))
		for i, a := range r.Arms {
			pat, err := decodeMatchPattern(a.Pattern)
			if err != nil {
				return nil, fmt.Errorf("match arm %d pattern: %w", i, err)
			}
			body, err := decodeBlockValue(a.Body)
			if err != nil {
				return nil, fmt.Errorf("match arm %d body: %w", i, err)
			}
			arms[i] = ast.MatchArm{Pattern: pat, Body: body}
		}
		return &ast.MatchStmt{Scrutinee: scrutinee, Arms: arms}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown stmt kind %q", r.Kind)
	}
}
