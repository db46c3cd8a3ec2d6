package astjson

import (
	"encoding/json"
	"fmt"

	"github.com/vybium/tasmc/internal/tasmc/ast"
)

type rawLiteral struct {
	IsBool  bool   `json:"is_bool"`
	Bool    bool   `json:"bool"`
	Integer uint64 `json:"integer"`
}

func (r rawLiteral) toAST() ast.Literal {
	return ast.Literal{IsBool: r.IsBool, Bool: r.Bool, Integer: r.Integer}
}

type rawFieldInit struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func decodeFieldInits(raw []rawFieldInit) ([]ast.FieldInit, error) {
	out := make([]ast.FieldInit, len(raw))
	for i, f := range raw {
		v, err := decodeExpr(f.Value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[i] = ast.FieldInit{Name: f.Name, Value: v}
	}
	return out, nil
}

type rawExpr struct {
	Kind string `json:"kind"`

	Value       rawLiteral        `json:"value"`
	Name        string            `json:"name"`
	Op          string            `json:"op"`
	Lhs         json.RawMessage   `json:"lhs"`
	Rhs         json.RawMessage   `json:"rhs"`
	Path        []string          `json:"path"`
	GenericArgs []rawArraySize    `json:"generic_args"`
	Args        []json.RawMessage `json:"args"`
	Elements    []json.RawMessage `json:"elements"`
	Expr        json.RawMessage   `json:"expr"`
	Field       string            `json:"field"`
	Index       json.RawMessage   `json:"index"`
	Fields      []rawFieldInit    `json:"fields"`
}

var binOps = map[string]ast.BinOp{
	"add":      ast.OpAdd,
	"mul":      ast.OpMul,
	"eq":       ast.OpEq,
	"lt":       ast.OpLt,
	"bit_and":  ast.OpBitAnd,
	"bit_xor":  ast.OpBitXor,
	"div_mod":  ast.OpDivMod,
	"xfield_mul": ast.OpXFieldMul,
}

func decodeExpr(raw json.RawMessage) (ast.Expr, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("astjson: empty expression")
	}
	var r rawExpr
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	switch r.Kind {
	case "literal":
		return ast.LiteralExpr{Value: r.Value.toAST()}, nil

	case "var":
		return ast.VarExpr{Name: r.Name}, nil

	case "binop":
		op, ok := binOps[r.Op]
		if !ok {
			return nil, fmt.Errorf("astjson: unknown binop %q", r.Op)
		}
		lhs, err := decodeExpr(r.Lhs)
		if err != nil {
			return nil, fmt.Errorf("binop lhs: %w", err)
		}
		rhs, err := decodeExpr(r.Rhs)
		if err != nil {
			return nil, fmt.Errorf("binop rhs: %w", err)
		}
		return ast.BinOpExpr{Op: op, Lhs: lhs, Rhs: rhs}, nil

	case "call":
		genericArgs := make([]ast.ArraySize, len(r.GenericArgs))
		for i, g := range r.GenericArgs {
			genericArgs[i] = g.toAST()
		}
		args, err := decodeExprs(r.Args)
		if err != nil {
			return nil, fmt.Errorf("call %s args: %w", ast.DottedPath(r.Path), err)
		}
		return ast.CallExpr{Path: r.Path, GenericArgs: genericArgs, Args: args}, nil

	case "tuple":
		elems, err := decodeExprs(r.Elements)
		if err != nil {
			return nil, fmt.Errorf("tuple: %w", err)
		}
		return ast.TupleExpr{Elements: elems}, nil

	case "array_init":
		elems, err := decodeExprs(r.Elements)
		if err != nil {
			return nil, fmt.Errorf("array_init: %w", err)
		}
		return ast.ArrayInitExpr{Elements: elems}, nil

	case "field_access":
		inner, err := decodeExpr(r.Expr)
		if err != nil {
			return nil, fmt.Errorf("field_access base: %w", err)
		}
		return ast.FieldAccessExpr{Expr: inner, Field: r.Field}, nil

	case "index":
		inner, err := decodeExpr(r.Expr)
		if err != nil {
			return nil, fmt.Errorf("index base: %w", err)
		}
		idx, err := decodeExpr(r.Index)
		if err != nil {
			return nil, fmt.Errorf("index expr: %w", err)
		}
		return ast.IndexExpr{Expr: inner, Index: idx}, nil

	case "struct_init":
		fields, err := decodeFieldInits(r.Fields)
		if err != nil {
			return nil, fmt.Errorf("struct_init: %w", err)
		}
		return ast.StructInitExpr{Path: r.Path, Fields: fields}, nil

	default:
		return nil, fmt.Errorf("astjson: unknown expr kind %q", r.Kind)
	}
}

func decodeExprs(raw []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, len(raw))
	for i, er := range raw {
		e, err := decodeExpr(er)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
