// Package ast is the raw, untyped, positioned parse tree that spec.md
// §1 treats as an external contract: "we assume [the tokenizer and
// parser] deliver a positioned AST matching §3." Every node carries a
// diag.Pos used exclusively for diagnostics (spec.md §3 "Positioning").
//
// Unlike the teacher's parser.Expr/parser.Stmt (an open Accept(visitor)
// hierarchy, because the teacher's compiler walks this exact tree), the
// raw AST here is plain data: the linter in internal/linter dispatches
// over it with a single type switch per Design Note 1 ("a closed set of
// AST node variants and a single convert(node, ctx, aux) dispatch").
// internal/typed carries the Accept(visitor) pattern instead, for the
// instruction generator that walks the post-lint tree.
package ast

import "github.com/ngeor/gobasic/internal/diag"

// Expr is any raw expression node.
type Expr interface {
	Pos() diag.Pos
	exprNode()
}

type base struct{ At diag.Pos }

func (b base) Pos() diag.Pos { return b.At }

// Literal is a numeric or string literal.
type Literal struct {
	base
	Value interface{} // int64, float64, or string — the lexer's raw literal payload
	IsStr bool
}

func (*Literal) exprNode() {}

// Name is a bare-or-qualified name use: A, A%, A$, Foo.Bar (dotted bare
// names, per spec.md §3 "dots are significant").
type Name struct {
	base
	Bare      string
	Qualifier byte // 0, or one of $ % & ! #
}

func (*Name) exprNode() {}

// Paren marks a parenthesized sub-expression. Its presence is
// semantically significant: spec.md §3 "Parameters are pass-by-reference
// by default (by-value only for parenthesised expression arguments)".
type Paren struct {
	base
	Inner Expr
}

func (*Paren) exprNode() {}

// Binary is a binary operator expression.
type Binary struct {
	base
	Op          string
	Left, Right Expr
}

func (*Binary) exprNode() {}

// Unary is a unary operator expression (NOT, unary -).
type Unary struct {
	base
	Op      string
	Operand Expr
}

func (*Unary) exprNode() {}

// Property is owner.field access.
type Property struct {
	base
	Object Expr
	Field  string
}

func (*Property) exprNode() {}

// IndexOrCall is syntactically ambiguous call-or-index syntax:
// Callee(Args...). The linter resolves it in order to a user-defined
// function call, a built-in call, or array indexing (spec.md §4.C,
// expression resolution step 5).
type IndexOrCall struct {
	base
	Callee Expr
	Args   []Expr
}

func (*IndexOrCall) exprNode() {}
