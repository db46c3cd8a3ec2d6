// Package ast defines the typed, checker-produced abstract syntax tree that
// the compiler core consumes. Lexing, parsing, type checking, conditional
// compilation filtering, and recursion detection all happen upstream; by
// the time a *File reaches this package every name has been resolved to a
// concrete type and every generic call site has either explicit size
// arguments or an entry in the parallel MonoInstance resolution list.
package ast

// FileKind distinguishes a program (has a main function and gets the
// call/halt entry wrapper) from a library module.
type FileKind int

const (
	FileKindModule FileKind = iota
	FileKindProgram
)

// File is the root of one compilation unit.
type File struct {
	Name         string
	Kind         FileKind
	Items        []Item
	Declarations []Declaration
}

// Item is a top-level definition: a function, struct, event, or constant.
type Item interface{ isItem() }

type FnDef struct {
	Name       string
	TypeParams []string // size-generic parameters, e.g. ["N"]
	Params     []Param
	ReturnType Type // nil if the function returns nothing
	Body       *Block
	Intrinsic  string // non-empty if #[intrinsic(NAME)] was attached
	Cfg        string // non-empty if gated by a cfg flag
	IsPub      bool
	IsTest     bool
}

func (*FnDef) isItem() {}

type Param struct {
	Name string
	Type Type
}

type StructDef struct {
	Name   string
	Fields []StructField
	Cfg    string
}

func (*StructDef) isItem() {}

type StructField struct {
	Name string
	Type Type
}

type EventDef struct {
	Name   string
	Fields []StructField
	Cfg    string
}

func (*EventDef) isItem() {}

type ConstDef struct {
	Name  string
	Value Expr
	Cfg   string
}

func (*ConstDef) isItem() {}

// Declaration captures the file-level pub/sec input-output and sec-ram
// declarations. Only SecRam materially affects emission (as metadata
// comments); the others are recorded for completeness and for the
// external checker/linker's consumption.
type Declaration interface{ isDeclaration() }

type SecRamEntry struct {
	Addr uint64
	Type Type
}

type SecRamDecl struct {
	Entries []SecRamEntry
}

func (*SecRamDecl) isDeclaration() {}

type IODecl struct {
	Public bool // false => secret
	Input  bool // false => output
	Types  []Type
}

func (*IODecl) isDeclaration() {}

// Type is the checked type of a value.
type Type interface{ isType() }

type (
	FieldType  struct{}
	BoolType   struct{}
	U32Type    struct{}
	XFieldType struct{}
	DigestType struct{}
)

func (FieldType) isType()  {}
func (BoolType) isType()   {}
func (U32Type) isType()    {}
func (XFieldType) isType() {}
func (DigestType) isType() {}

// ArraySize is a compile-time size expression: either a literal or a sum
// of size-generic parameter names (covers both `Array<T, N>` and
// `Array<T, M+K>` from spec.md §4.4).
type ArraySize struct {
	Literal *uint64
	Params  []string
}

func LiteralSize(n uint64) ArraySize { return ArraySize{Literal: &n} }
func ParamSize(name string) ArraySize { return ArraySize{Params: []string{name}} }

// AsLiteral returns the size as a literal if it is one.
func (a ArraySize) AsLiteral() (uint64, bool) {
	if a.Literal != nil {
		return *a.Literal, true
	}
	return 0, false
}

// Eval resolves the size against a substitution map (used during
// monomorphized emission); literal sizes ignore subs entirely.
func (a ArraySize) Eval(subs map[string]uint64) uint64 {
	if a.Literal != nil {
		return *a.Literal
	}
	var total uint64
	for _, p := range a.Params {
		total += subs[p]
	}
	return total
}

type ArrayType struct {
	Elem Type
	Size ArraySize
}

func (ArrayType) isType() {}

type TupleType struct {
	Elems []Type
}

func (TupleType) isType() {}

// NamedType is a user struct type (or an unresolved qualified constant
// prefix — the emitter disambiguates at use site).
type NamedType struct {
	Path []string
}

func (NamedType) isType() {}

// FormatTypeName renders a type the way metadata comments expect it.
func FormatTypeName(t Type) string {
	switch v := t.(type) {
	case FieldType:
		return "Field"
	case BoolType:
		return "Bool"
	case U32Type:
		return "U32"
	case XFieldType:
		return "XField"
	case DigestType:
		return "Digest"
	case ArrayType:
		n := "N"
		if lit, ok := v.Size.AsLiteral(); ok {
			n = itoa(lit)
		}
		return "[" + FormatTypeName(v.Elem) + "; " + n + "]"
	case TupleType:
		s := "("
		for i, e := range v.Elems {
			if i > 0 {
				s += ", "
			}
			s += FormatTypeName(e)
		}
		return s + ")"
	case NamedType:
		s := ""
		for i, p := range v.Path {
			if i > 0 {
				s += "."
			}
			s += p
		}
		return s
	default:
		return "?"
	}
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Pattern is a let-binding pattern.
type Pattern interface{ isPattern() }

type NamePattern struct{ Name string }

func (NamePattern) isPattern() {}

type TuplePattern struct{ Names []string }

func (TuplePattern) isPattern() {}

// Block is a sequence of statements with an optional trailing expression
// whose value becomes the block's value.
type Block struct {
	Stmts []Stmt
	Tail  Expr // nil if the block has no tail expression
}

// Stmt is a statement inside a function or deferred block body.
type Stmt interface{ isStmt() }

type LetStmt struct {
	Pattern Pattern
	Type    Type // may be nil when inferred
	Init    Expr
}

func (*LetStmt) isStmt() {}

type AssignStmt struct {
	Name  string
	Value Expr
}

func (*AssignStmt) isStmt() {}

type TupleAssignStmt struct {
	Names []string
	Value Expr
}

func (*TupleAssignStmt) isStmt() {}

type IfStmt struct {
	Cond Expr
	Then Block
	Else *Block // nil for single-armed if
}

func (*IfStmt) isStmt() {}

type ForStmt struct {
	Var  string
	End  Expr
	Body Block
}

func (*ForStmt) isStmt() {}

type ExprStmt struct{ Expr Expr }

func (*ExprStmt) isStmt() {}

type ReturnStmt struct{ Value Expr } // nil Value means bare `return`

func (*ReturnStmt) isStmt() {}

type FieldInit struct {
	Name  string
	Value Expr
}

type EmitStmt struct {
	Event  string
	Fields []FieldInit
}

func (*EmitStmt) isStmt() {}

type SealStmt struct {
	Event  string
	Fields []FieldInit
}

func (*SealStmt) isStmt() {}

type AsmStmt struct {
	Body   string
	Effect int  // net stack effect declared by the source
	Target string // non-empty => only emitted for this target name
}

func (*AsmStmt) isStmt() {}

type MatchStmt struct {
	Scrutinee Expr
	Arms      []MatchArm
}

func (*MatchStmt) isStmt() {}

type MatchArm struct {
	Pattern MatchPattern
	Body    Block
}

type MatchPattern interface{ isMatchPattern() }

type LiteralPattern struct{ Value Literal }

func (LiteralPattern) isMatchPattern() {}

type WildcardPattern struct{}

func (WildcardPattern) isMatchPattern() {}

type StructPattern struct {
	StructName string
	Fields     []StructFieldPattern
}

func (StructPattern) isMatchPattern() {}

type FieldPatternKind int

const (
	FieldPatternBinding FieldPatternKind = iota
	FieldPatternLiteral
	FieldPatternWildcard
)

type StructFieldPattern struct {
	Field   string
	Kind    FieldPatternKind
	Binding string  // valid when Kind == FieldPatternBinding
	Literal Literal // valid when Kind == FieldPatternLiteral
}

// Literal is an integer or boolean literal value.
type Literal struct {
	IsBool  bool
	Bool    bool
	Integer uint64
}

// Expr is an expression; every expression emits to exactly one stack
// entry of its type's width (spec.md §4.3.3).
type Expr interface{ isExpr() }

type LiteralExpr struct{ Value Literal }

func (LiteralExpr) isExpr() {}

type VarExpr struct{ Name string } // may contain '.' for field/const access

func (VarExpr) isExpr() {}

type BinOp int

const (
	OpAdd BinOp = iota
	OpMul
	OpEq
	OpLt
	OpBitAnd
	OpBitXor
	OpDivMod
	OpXFieldMul
)

type BinOpExpr struct {
	Op       BinOp
	Lhs, Rhs Expr
}

func (BinOpExpr) isExpr() {}

type CallExpr struct {
	Path        []string // dotted segments, e.g. ["std_hash", "tip5"]
	GenericArgs []ArraySize
	Args        []Expr
}

func (CallExpr) isExpr() {}

type TupleExpr struct{ Elements []Expr }

func (TupleExpr) isExpr() {}

type ArrayInitExpr struct{ Elements []Expr }

func (ArrayInitExpr) isExpr() {}

type FieldAccessExpr struct {
	Expr  Expr
	Field string
}

func (FieldAccessExpr) isExpr() {}

type IndexExpr struct {
	Expr  Expr
	Index Expr
}

func (IndexExpr) isExpr() {}

type StructInitExpr struct {
	Path   []string
	Fields []FieldInit
}

func (StructInitExpr) isExpr() {}

// DottedPath joins a dotted path the way the parser would have written it.
func DottedPath(parts []string) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += "."
		}
		s += p
	}
	return s
}
