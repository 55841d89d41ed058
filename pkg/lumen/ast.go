package lumen

// This file defines the AST (spec §3, "AST"): a single closed sum of
// expression variants, plus patterns and type expressions. Dispatch over
// the sum happens by type switch in infer.go (Inferencer.infer) and eval.go
// (Evaluator.eval), rather than by a method on every node type — the same
// switch-dispatch shape used by several tree-walking interpreters in this
// module's retrieval pack.

// Expr is the interface implemented by every expression node.
type Expr interface {
	Span() Span
}

type exprBase struct {
	span Span
}

func (e exprBase) Span() Span { return e.span }

// Program is the top-level sequence of expressions (spec §6 grammar,
// `program := top_stmt (';'? top_stmt)* ';'?`).
type Program struct {
	Items []Expr
}

// ---- Literals ----

type NumberLit struct {
	exprBase
	Value float64
}

type StringLit struct {
	exprBase
	Value string
}

type BoolLit struct {
	exprBase
	Value bool
}

type NullLit struct{ exprBase }

type UndefinedLit struct{ exprBase }

// Identifier references a bound name.
type Identifier struct {
	exprBase
	Name string
}

// ---- Collections ----

// ArrayLit is an ordered array literal.
type ArrayLit struct {
	exprBase
	Elements []Expr
}

// DictEntry is one key/value pair of a dictionary literal.
type DictEntry struct {
	Key   Expr
	Value Expr
}

// DictLit is an ordered sequence of key/value expression pairs.
type DictLit struct {
	exprBase
	Entries []DictEntry
}

// RecordField is one name/value pair of a record literal. Names are unique
// within a literal (spec §3 invariant).
type RecordField struct {
	Name  string
	Value Expr
}

// RecordLit is an ordered sequence of name/value pairs.
type RecordLit struct {
	exprBase
	Fields []RecordField
}

// ---- Access ----

// Member is `object.field`.
type Member struct {
	exprBase
	Object Expr
	Field  string
}

// Index is `container[index]`.
type Index struct {
	exprBase
	Container Expr
	IndexExpr Expr
}

// ---- Functions ----

// Param is one parameter of a function literal: a name and an optional
// type annotation.
type Param struct {
	Name string
	Type TypeExpr // nil if unannotated
}

// FuncLit is a function literal (spec §3, "function literal").
type FuncLit struct {
	exprBase
	Params     []Param
	ReturnType TypeExpr // nil if unannotated
	Body       Expr
}

// Call is a function application.
type Call struct {
	exprBase
	Callee Expr
	Args   []Expr
}

// ---- Operators ----

type BinaryOp string

const (
	OpAdd   BinaryOp = "+"
	OpSub   BinaryOp = "-"
	OpMul   BinaryOp = "*"
	OpDiv   BinaryOp = "/"
	OpMod   BinaryOp = "%"
	OpEq    BinaryOp = "=="
	OpNotEq BinaryOp = "!="
	OpLt    BinaryOp = "<"
	OpLe    BinaryOp = "<="
	OpGt    BinaryOp = ">"
	OpGe    BinaryOp = ">="
	OpAnd   BinaryOp = "&&"
	OpOr    BinaryOp = "||"
)

type Binary struct {
	exprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

type UnaryOp string

const (
	OpNeg UnaryOp = "-"
	OpNot UnaryOp = "!"
)

type Unary struct {
	exprBase
	Op      UnaryOp
	Operand Expr
}

// ---- Control flow ----

// Conditional is `if (cond) then [else elseBranch]`. Else may be nil.
type Conditional struct {
	exprBase
	Cond Expr
	Then Expr
	Else Expr // nil if absent
}

// Stmt is one statement inside a Block: either a LetGroup or an expression
// evaluated for side effects and discarded (spec §3, "Block").
type Stmt struct {
	Let  *LetGroup // non-nil for a let-binding statement
	Expr Expr      // non-nil for a discarded-expression statement
}

// Block is `{ statements… final_expression }`.
type Block struct {
	exprBase
	Stmts []Stmt
	Final Expr
}

// Binding is one name/initializer pair inside a let binding group.
type Binding struct {
	Name string
	Type TypeExpr // nil if unannotated
	Init Expr
}

// LetGroup is `let` followed by comma-joined bindings and zero or more
// `and`-joined mutually-recursive bindings (spec §4.2 disambiguation rules,
// §4.4.1 "Binding groups and mutual recursion"). Evaluated as an
// expression, a LetGroup yields the value (and, during inference, the type)
// of its last binding.
type LetGroup struct {
	exprBase
	Bindings []Binding
}

// valueSpan returns the span the parser recorded for the whole group.
func (l *LetGroup) valueSpan() Span { return l.span }

// MatchCase is one arm of a match expression: pattern, optional guard, body.
type MatchCase struct {
	Pattern Pattern
	Guard   Expr // nil if absent
	Body    Expr
}

// Match is `match discriminant { case, case, … }`.
type Match struct {
	exprBase
	Discriminant Expr
	Cases        []MatchCase
}

// ---- Patterns ----

// Pattern is implemented by PatternLiteral, PatternIdent, PatternWildcard
// (spec §3, "Patterns").
type Pattern interface {
	isPattern()
}

type PatternLiteral struct {
	Value Expr // NumberLit, StringLit, BoolLit, or NullLit
}

type PatternIdent struct {
	Name string
}

type PatternWildcard struct{}

func (PatternLiteral) isPattern()  {}
func (PatternIdent) isPattern()    {}
func (PatternWildcard) isPattern() {}
