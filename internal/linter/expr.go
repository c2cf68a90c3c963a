package linter

import (
	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/builtin"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/typed"
	"github.com/ngeor/gobasic/internal/variant"
)

// ExprCtx is the auxiliary "resolving in which role" tag spec.md §4.C
// calls out alongside the node itself: default, assignment target,
// argument, or the owner half of a property access.
type ExprCtx int

const (
	CtxDefault ExprCtx = iota
	CtxAssignment
	CtxArgument
	CtxPropertyOwner
)

func resolveKey(bare string, qual byte) string {
	return variant.CaseFold(bare) + string(rune(qual))
}

// convertExpr is the post-order conversion dispatch (Design Note 1's
// "single convert(node, ctx, aux) dispatch") for expressions.
func (l *Linter) convertExpr(ctx *Context, e ast.Expr, ectx ExprCtx) (typed.Expr, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return l.convertLiteral(n)
	case *ast.Name:
		return l.convertName(ctx, n, ectx)
	case *ast.Paren:
		return l.convertExpr(ctx, n.Inner, CtxArgument)
	case *ast.Binary:
		return l.convertBinary(ctx, n)
	case *ast.Unary:
		return l.convertUnary(ctx, n)
	case *ast.Property:
		return l.convertProperty(ctx, n)
	case *ast.IndexOrCall:
		return l.convertIndexOrCall(ctx, n)
	}
	return nil, newErr(TypeMismatch, e.Pos(), "unrecognized expression")
}

func (l *Linter) convertLiteral(n *ast.Literal) (typed.Expr, error) {
	var v variant.Value
	if n.IsStr {
		v = variant.NewString(n.Value.(string))
	} else {
		switch val := n.Value.(type) {
		case int64:
			v = variant.FitInt64(val)
		case float64:
			v = variant.FitFloat64(val)
		}
	}
	return typed.NewConst(v, n.Pos()), nil
}

// convertName implements spec.md §4.C's name-resolution order: the
// enclosing constant chain first (unless resolving an assignment
// target, which can never land on a constant), then the current
// scope's variables (locals, parameters and SHARED globals are all
// merged into ctx.Vars by scope entry), otherwise an implicit local
// definition using the default-type map.
func (l *Linter) convertName(ctx *Context, n *ast.Name, ectx ExprCtx) (typed.Expr, error) {
	if ectx != CtxAssignment {
		if v, ok := ctx.LookupConst(variant.CaseFold, n.Bare); ok {
			return typed.NewConst(v, n.Pos()), nil
		}
	}
	key := resolveKey(n.Bare, n.Qualifier)
	if ctx.InFunction && variant.CaseFold(n.Bare) == variant.CaseFold(ctx.SubName) {
		// The function's own name, with or without its suffix, is its return-value slot.
		key = resolveKey(n.Bare, 0)
	}
	if vi, ok := ctx.Vars[key]; ok {
		return typed.NewVar(key, scopeOf(vi), vi.Kind, vi.TypeName, n.Pos()), nil
	}
	kind := ctx.Defaults.KindFor(n.Bare)
	if n.Qualifier != 0 {
		if k, ok := variant.KindForSuffix(n.Qualifier); ok {
			kind = k
		}
	}
	vi := &VarInfo{Name: n.Bare, Kind: kind}
	ctx.DefineVar(key, vi)
	return typed.NewVar(key, typed.ScopeLocal, kind, "", n.Pos()), nil
}

func scopeOf(vi *VarInfo) typed.Scope {
	if vi.Shared {
		return typed.ScopeGlobalShared
	}
	if vi.IsParam {
		return typed.ScopeParameter
	}
	return typed.ScopeLocal
}

func (l *Linter) convertBinary(ctx *Context, n *ast.Binary) (typed.Expr, error) {
	left, err := l.convertExpr(ctx, n.Left, CtxDefault)
	if err != nil {
		return nil, err
	}
	right, err := l.convertExpr(ctx, n.Right, CtxDefault)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "<", "<=", ">", ">=", "=", "<>":
		if err := l.checkComparable(n.Pos(), left.ResultKind(), right.ResultKind()); err != nil {
			return nil, err
		}
		return typed.NewBinary(n.Op, left, right, variant.KindInteger, n.Pos()), nil
	case "AND", "OR", "XOR", "EQV", "IMP":
		return typed.NewBinary(n.Op, left, right, variant.KindInteger, n.Pos()), nil
	case "/":
		if err := l.checkNumeric(n.Pos(), left.ResultKind(), right.ResultKind()); err != nil {
			return nil, err
		}
		resultKind := variant.KindSingle
		if variant.Widen(left.ResultKind(), right.ResultKind()) == variant.KindDouble {
			resultKind = variant.KindDouble
		}
		return typed.NewBinary(n.Op, left, right, resultKind, n.Pos()), nil
	case "\\", "MOD":
		if err := l.checkNumeric(n.Pos(), left.ResultKind(), right.ResultKind()); err != nil {
			return nil, err
		}
		return typed.NewBinary(n.Op, left, right, variant.Widen(left.ResultKind(), right.ResultKind()), n.Pos()), nil
	case "+":
		// "+" also concatenates strings, per spec.md §4.A.
		if left.ResultKind() == variant.KindString && right.ResultKind() == variant.KindString {
			return typed.NewBinary(n.Op, left, right, variant.KindString, n.Pos()), nil
		}
		if err := l.checkNumeric(n.Pos(), left.ResultKind(), right.ResultKind()); err != nil {
			return nil, err
		}
		return typed.NewBinary(n.Op, left, right, variant.Widen(left.ResultKind(), right.ResultKind()), n.Pos()), nil
	default: // - *
		if err := l.checkNumeric(n.Pos(), left.ResultKind(), right.ResultKind()); err != nil {
			return nil, err
		}
		return typed.NewBinary(n.Op, left, right, variant.Widen(left.ResultKind(), right.ResultKind()), n.Pos()), nil
	}
}

func isNumericKind(k variant.Kind) bool {
	switch k {
	case variant.KindInteger, variant.KindLong, variant.KindSingle, variant.KindDouble:
		return true
	}
	return false
}

func (l *Linter) checkNumeric(at diag.Pos, a, b variant.Kind) error {
	if !isNumericKind(a) || !isNumericKind(b) {
		return newErr(TypeMismatch, at, "expected numeric operands, got %s and %s", a, b)
	}
	return nil
}

func (l *Linter) checkComparable(at diag.Pos, a, b variant.Kind) error {
	if a == variant.KindString && b == variant.KindString {
		return nil
	}
	return l.checkNumeric(at, a, b)
}

func (l *Linter) convertUnary(ctx *Context, n *ast.Unary) (typed.Expr, error) {
	operand, err := l.convertExpr(ctx, n.Operand, CtxDefault)
	if err != nil {
		return nil, err
	}
	kind := operand.ResultKind()
	if n.Op == "NOT" {
		kind = variant.KindInteger
	} else if !isNumericKind(kind) {
		return nil, newErr(TypeMismatch, n.Pos(), "unary %s requires a numeric operand", n.Op)
	}
	return typed.NewUnary(n.Op, operand, kind, n.Pos()), nil
}

func (l *Linter) convertProperty(ctx *Context, n *ast.Property) (typed.Expr, error) {
	obj, err := l.convertExpr(ctx, n.Object, CtxPropertyOwner)
	if err != nil {
		return nil, err
	}
	if obj.ResultKind() != variant.KindRecord {
		return nil, newErr(DotClash, n.Pos(), "%s is not a record field owner", n.Field)
	}
	rt := l.typeOf(obj)
	if rt == nil {
		return nil, newErr(TypeNotDefined, n.Pos(), "field %s: owner type not resolved", n.Field)
	}
	ft, ok := rt.FieldByName(n.Field)
	if !ok {
		return nil, newErr(ElementNotDefined, n.Pos(), "field %s not defined on %s", n.Field, rt.Name)
	}
	return typed.NewField(obj, n.Field, ft.Kind, ft.TypeName, n.Pos()), nil
}

func (l *Linter) typeOf(e typed.Expr) *variant.RecordType {
	var typeName string
	switch v := e.(type) {
	case *typed.VarExpr:
		typeName = v.TypeName
	case *typed.FieldExpr:
		typeName = v.TypeName
	}
	if typeName == "" {
		return nil
	}
	return l.recordTypes[variant.CaseFold(typeName)]
}

// convertIndexOrCall resolves the three-way ambiguity from spec.md
// §4.C rule 5: user-defined function, built-in function, or array
// indexing, in that order. Failing all three, the call is folded to
// IntegerLiteral(0) (spec.md §8's undefined-function scenario) after
// its arguments have been converted; no diagnostic is recorded for it.
func (l *Linter) convertIndexOrCall(ctx *Context, n *ast.IndexOrCall) (typed.Expr, error) {
	name, ok := n.Callee.(*ast.Name)
	if !ok {
		return nil, newErr(TypeMismatch, n.Pos(), "callee is not a name")
	}
	upper := variant.CaseFold(name.Bare)

	args := make([]typed.Arg, 0, len(n.Args))
	for _, a := range n.Args {
		byRef := true
		inner := a
		if p, isParen := a.(*ast.Paren); isParen {
			byRef = false
			inner = p.Inner
		}
		ce, err := l.convertExpr(ctx, inner, CtxArgument)
		if err != nil {
			return nil, err
		}
		args = append(args, typed.Arg{Value: ce, ByRef: byRef})
	}

	if sig, ok := l.pre.Functions[upper]; ok {
		if err := l.checkArgCount(n.Pos(), name.Bare, len(sig.Params), len(args)); err != nil {
			return nil, err
		}
		return typed.NewFunctionCall(name.Bare, args, sig.Kind, n.Pos()), nil
	}
	dispatchName := upper
	if name.Qualifier != 0 {
		if k, ok := variant.KindForSuffix(name.Qualifier); ok && k == variant.KindString {
			dispatchName = upper + "$"
		}
	}
	if id, info, ok := builtin.Lookup(dispatchName); ok && info.IsFunction {
		if err := l.checkBuiltinArity(n.Pos(), info, len(args)); err != nil {
			return nil, err
		}
		return typed.NewBuiltinCall(int(id), info.Name, args, builtinResultKind(id), n.Pos()), nil
	}
	if vi, ok := ctx.Vars[resolveKey(name.Bare, name.Qualifier)]; ok && vi.IsArray {
		if len(args) != len(vi.Dims) {
			return nil, newErr(WrongNumberOfDimensions, n.Pos(), "%s has %d dimensions, got %d", name.Bare, len(vi.Dims), len(args))
		}
		idx := make([]typed.Expr, len(args))
		for i, a := range args {
			idx[i] = a.Value
		}
		ve := typed.NewVar(resolveKey(name.Bare, name.Qualifier), scopeOf(vi), vi.Kind, vi.TypeName, n.Pos())
		return typed.NewArrayIndex(ve, idx, vi.Kind, n.Pos()), nil
	}
	return typed.NewConst(variant.Integer(0), n.Pos()), nil
}

func (l *Linter) checkArgCount(at diag.Pos, name string, want, got int) error {
	if want != got {
		return newErr(ArgumentCountMismatch, at, "%s expects %d argument(s), got %d", name, want, got)
	}
	return nil
}

func (l *Linter) checkBuiltinArity(at diag.Pos, info builtin.Info, got int) error {
	if got < info.MinArgs || (info.MaxArgs >= 0 && got > info.MaxArgs) {
		return newErr(ArgumentCountMismatch, at, "%s expects between %d and %d argument(s), got %d", info.Name, info.MinArgs, info.MaxArgs, got)
	}
	return nil
}

func builtinResultKind(id builtin.ID) variant.Kind {
	switch id {
	case builtin.Len, builtin.Asc, builtin.Instr, builtin.LBound, builtin.UBound, builtin.Err, builtin.Erl:
		return variant.KindLong
	case builtin.Val:
		return variant.KindDouble
	default:
		return variant.KindString
	}
}
