// Package typed is the fully-resolved, typed AST the linter produces
// and the instruction generator walks. Unlike internal/ast's plain
// type-switched data, typed nodes carry Accept(Visitor) — the teacher's
// internal/parser/ast.go ExprVisitor/ast.go pattern — because
// internal/codegen's lowering is exactly the per-node-dispatch walk
// that pattern is for (see internal/compiler/compiler.go).
package typed

import (
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/variant"
)

// Expr is a fully-typed, resolved expression node: every Expr knows
// its own result Kind and, for record-kinded results, its type name.
type Expr interface {
	Pos() diag.Pos
	ResultKind() variant.Kind
	Accept(v ExprVisitor) error
}

// ExprVisitor is implemented by the instruction generator.
type ExprVisitor interface {
	VisitConstExpr(*ConstExpr) error
	VisitVarExpr(*VarExpr) error
	VisitBinaryExpr(*BinaryExpr) error
	VisitUnaryExpr(*UnaryExpr) error
	VisitCastExpr(*CastExpr) error
	VisitArrayIndexExpr(*ArrayIndexExpr) error
	VisitFieldExpr(*FieldExpr) error
	VisitFunctionCallExpr(*FunctionCallExpr) error
	VisitBuiltinCallExpr(*BuiltinCallExpr) error
}

type base struct {
	At   diag.Pos
	Kind variant.Kind
}

func (b base) Pos() diag.Pos            { return b.At }
func (b base) ResultKind() variant.Kind { return b.Kind }

// ConstExpr is a literal value already reduced to a Variant at lint
// time (numeric/string literals, and CONST references inlined by the
// linter's constant chain).
type ConstExpr struct {
	base
	Value variant.Value
}

func (e *ConstExpr) Accept(v ExprVisitor) error { return v.VisitConstExpr(e) }

// VarExpr is a resolved variable reference: ResolvedName is the
// interpreter's storage key (case-folded bare name + qualifier byte,
// 0 when unqualified), and Scope says where the variable lives.
type VarExpr struct {
	base
	ResolvedName string
	Scope        Scope
	TypeName     string // set when Kind == variant.KindRecord
}

type Scope int

const (
	ScopeLocal Scope = iota
	ScopeGlobalShared
	ScopeParameter
)

func (e *VarExpr) Accept(v ExprVisitor) error { return v.VisitVarExpr(e) }

// BinaryExpr is a resolved binary operator; its Kind is the result
// kind. The children are not cast: the interpreter's arithmetic
// promotes the operands at run time.
type BinaryExpr struct {
	base
	Op          string
	Left, Right Expr
}

func (e *BinaryExpr) Accept(v ExprVisitor) error { return v.VisitBinaryExpr(e) }

type UnaryExpr struct {
	base
	Op      string
	Operand Expr
}

func (e *UnaryExpr) Accept(v ExprVisitor) error { return v.VisitUnaryExpr(e) }

// CastExpr makes an implicit or explicit numeric cast an explicit node
// in the typed tree, so the generator can emit CastTo directly instead
// of re-deriving when a cast is needed.
type CastExpr struct {
	base
	Inner Expr
}

func (e *CastExpr) Accept(v ExprVisitor) error { return v.VisitCastExpr(e) }

// ArrayIndexExpr is a resolved array-element access.
type ArrayIndexExpr struct {
	base
	Array   *VarExpr
	Indices []Expr
}

func (e *ArrayIndexExpr) Accept(v ExprVisitor) error { return v.VisitArrayIndexExpr(e) }

// FieldExpr is a resolved owner.field access on a record-typed
// expression.
type FieldExpr struct {
	base
	Object   Expr
	Field    string
	TypeName string // set when Kind == variant.KindRecord
}

func (e *FieldExpr) Accept(v ExprVisitor) error { return v.VisitFieldExpr(e) }

// FunctionCallExpr is a resolved call to a user-defined FUNCTION.
type FunctionCallExpr struct {
	base
	Name string
	Args []Arg
}

func (e *FunctionCallExpr) Accept(v ExprVisitor) error { return v.VisitFunctionCallExpr(e) }

// Arg pairs a prepared argument expression with its binding mode.
type Arg struct {
	Value Expr
	ByRef bool
}

// BuiltinCallExpr is a resolved call to a built-in function (LEN,
// MID$, LBOUND, ...); ID is the dispatch identifier the interpreter's
// built-in table is keyed on, assigned by the linter per Design
// Notes' "dispatch over built-ins: a single integer identifier".
type BuiltinCallExpr struct {
	base
	ID   int
	Name string
	Args []Arg
}

func (e *BuiltinCallExpr) Accept(v ExprVisitor) error { return v.VisitBuiltinCallExpr(e) }
