package linter

import (
	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/builtin"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/typed"
	"github.com/ngeor/gobasic/internal/variant"
)

// convertBlock converts a statement list in order, collecting every
// produced node and accumulating errors without aborting the walk —
// one bad statement shouldn't hide every sibling's diagnostics.
func (l *Linter) convertBlock(ctx *Context, stmts []ast.Stmt) []typed.Stmt {
	out := make([]typed.Stmt, 0, len(stmts))
	for _, st := range stmts {
		ts, err := l.convertStmt(ctx, st)
		if err != nil {
			l.fail(err)
			continue
		}
		if ts != nil {
			out = append(out, ts)
		}
	}
	return out
}

func (l *Linter) convertStmt(ctx *Context, st ast.Stmt) (typed.Stmt, error) {
	switch n := st.(type) {
	case *ast.TypeStmt, *ast.SubStmt, *ast.FunctionStmt, *ast.DeclareStmt:
		// Signatures and bodies are handled out of band by Lint via the
		// pre-linter's collected tables.
		return nil, nil
	case *ast.Label:
		key := variant.CaseFold(n.Name)
		if _, dup := l.allLabels[key]; dup {
			l.fail(newErr(DuplicateLabel, n.Pos(), "label %s is already defined", n.Name))
		} else {
			l.allLabels[key] = n.Pos()
		}
		ctx.Labels[key] = n.Pos()
		return typed.NewLabel(n.Name, n.Pos()), nil
	case *ast.LetStmt:
		return l.convertLet(ctx, n)
	case *ast.DimStmt:
		return l.convertDim(ctx, n)
	case *ast.ConstStmt:
		return l.convertConst(ctx, n)
	case *ast.IfStmt:
		return l.convertIf(ctx, n)
	case *ast.ForStmt:
		return l.convertFor(ctx, n)
	case *ast.WhileStmt:
		return l.convertWhile(ctx, n)
	case *ast.SelectCaseStmt:
		return l.convertSelectCase(ctx, n)
	case *ast.GotoStmt:
		ctx.LabelRefs = append(ctx.LabelRefs, LabelRef{Name: n.Label, At: n.Pos()})
		return typed.NewGoto(n.Label, n.Pos()), nil
	case *ast.GosubStmt:
		if ctx.IsGlobal {
			return nil, newErr(IllegalOutsideSubFunction, n.Pos(), "GOSUB requires a subroutine context")
		}
		ctx.LabelRefs = append(ctx.LabelRefs, LabelRef{Name: n.Label, At: n.Pos()})
		return typed.NewGosub(n.Label, n.Pos()), nil
	case *ast.ReturnStmt:
		return typed.NewReturn(n.Pos()), nil
	case *ast.OnErrorGotoStmt:
		if !n.Zero {
			ctx.LabelRefs = append(ctx.LabelRefs, LabelRef{Name: n.Label, At: n.Pos(), Global: true})
		}
		return typed.NewOnErrorGoto(n.Label, n.Zero, n.Pos()), nil
	case *ast.ResumeStmt:
		if n.Kind == ast.ResumeLabel {
			ctx.LabelRefs = append(ctx.LabelRefs, LabelRef{Name: n.Label, At: n.Pos(), Global: true})
		}
		return typed.NewResume(typed.ResumeKind(n.Kind), n.Label, n.Pos()), nil
	case *ast.ExitStmt:
		return l.convertExit(ctx, n)
	case *ast.PrintStmt:
		return l.convertPrint(ctx, n)
	case *ast.InputStmt:
		return l.convertInput(ctx, n)
	case *ast.DataStmt:
		return l.convertData(ctx, n)
	case *ast.ReadStmt:
		return l.convertRead(ctx, n)
	case *ast.CallStmt:
		return l.convertCall(ctx, n)
	case *ast.ExprStmt:
		v, err := l.convertExpr(ctx, n.Value, CtxDefault)
		if err != nil {
			return nil, err
		}
		return typed.NewExprStmt(v, n.Pos()), nil
	case *ast.EndStmt:
		return typed.NewEnd(n.System, n.Pos()), nil
	case *ast.DefTypeStmt:
		if k, ok := variant.KindForSuffix(n.Kind); ok {
			ctx.Defaults.Bind(n.From, n.To, k)
		}
		return nil, nil
	}
	return nil, newErr(TypeMismatch, st.Pos(), "unrecognized statement")
}

// convertLet resolves the target first (in CtxAssignment, so a bare
// name never silently resolves to a same-named constant), then casts
// the value to the target's kind, wrapping it in a CastExpr when
// narrowing is required.
func (l *Linter) convertLet(ctx *Context, n *ast.LetStmt) (typed.Stmt, error) {
	target, err := l.convertExpr(ctx, n.Target, CtxAssignment)
	if err != nil {
		return nil, err
	}
	value, err := l.convertExpr(ctx, n.Value, CtxDefault)
	if err != nil {
		return nil, err
	}
	if target.ResultKind() != value.ResultKind() {
		if !variant.CanCast(value.ResultKind(), target.ResultKind()) {
			return nil, newErr(TypeMismatch, n.Pos(), "cannot assign %s to %s", value.ResultKind(), target.ResultKind())
		}
		value = typed.NewCast(value, target.ResultKind(), n.Pos())
	}
	return typed.NewAssign(target, value, n.Pos()), nil
}

func (l *Linter) convertDim(ctx *Context, n *ast.DimStmt) (typed.Stmt, error) {
	vars := make([]typed.DimVar, 0, len(n.Decls))
	for _, d := range n.Decls {
		kind, typeName, err := l.resolveAsType(d.Qualifier, d.AsType, n.Pos())
		if err != nil {
			l.fail(err)
			continue
		}
		strLen := 0
		if kind == variant.KindString && d.StringLen != nil {
			if v, ok := constIntOf(d.StringLen); ok {
				strLen = v
			}
		}
		var dims []variant.Dim
		for _, ad := range d.Dims {
			lo, hi := 0, 10
			if ad.Lower != nil {
				if v, ok := constIntOf(ad.Lower); ok {
					lo = v
				}
			}
			if ad.Upper != nil {
				if v, ok := constIntOf(ad.Upper); ok {
					hi = v
				}
			}
			dims = append(dims, variant.Dim{Lower: lo, Upper: hi})
		}
		key := resolveKey(d.Name, d.Qualifier)
		prior, exists := ctx.Vars[key]
		if exists && len(dims) > 0 && !n.Redim {
			l.fail(newErr(ArrayAlreadyDimensioned, n.Pos(), "%s is already dimensioned", d.Name))
			continue
		}
		if n.Redim && exists {
			if !prior.IsArray {
				l.fail(newErr(TypeMismatch, n.Pos(), "REDIM %s conflicts with its non-array declaration", d.Name))
				continue
			}
			if prior.Kind != kind || prior.TypeName != typeName || len(prior.Dims) != len(dims) {
				l.fail(newErr(TypeMismatch, n.Pos(), "REDIM %s is incompatible with its previous dimensions", d.Name))
				continue
			}
		}
		vi := &VarInfo{Name: d.Name, Kind: kind, TypeName: typeName, Extended: d.AsType != "", Shared: d.Shared, Redim: n.Redim, Dims: dims, IsArray: len(dims) > 0}
		ctx.DefineVar(key, vi)
		vars = append(vars, typed.DimVar{Name: key, Kind: kind, TypeName: typeName, StrLen: strLen, Dims: dims, Shared: d.Shared, Redim: n.Redim})
	}
	return typed.NewDim(vars, n.Pos()), nil
}

// convertConst handles a CONST that appears inside a subprogram body
// (global CONSTs are already folded in by the pre-linter, so a global
// CONST statement is skipped here rather than re-evaluated).
func (l *Linter) convertConst(ctx *Context, n *ast.ConstStmt) (typed.Stmt, error) {
	if ctx.IsGlobal {
		return nil, nil
	}
	for i, name := range n.Names {
		v, err := l.evalLocalConst(ctx, n.Values[i])
		if err != nil {
			return nil, err
		}
		if n.Qualifiers[i] != 0 {
			if k, ok := variant.KindForSuffix(n.Qualifiers[i]); ok {
				if cast, cerr := variant.Cast(v, k); cerr == nil {
					v = cast
				}
			}
		}
		key := variant.CaseFold(name)
		if _, dup := ctx.Consts[key]; dup {
			return nil, newErr(DuplicateDefinition, n.Pos(), "%s already defined", name)
		}
		ctx.Consts[key] = v
	}
	return nil, nil
}

func (l *Linter) evalLocalConst(ctx *Context, e ast.Expr) (variant.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		if n.IsStr {
			return variant.NewString(n.Value.(string)), nil
		}
		switch v := n.Value.(type) {
		case int64:
			return variant.FitInt64(v), nil
		case float64:
			return variant.FitFloat64(v), nil
		}
	case *ast.Name:
		if v, ok := ctx.LookupConst(variant.CaseFold, n.Bare); ok {
			return v, nil
		}
	case *ast.Unary:
		inner, err := l.evalLocalConst(ctx, n.Operand)
		if err != nil {
			return nil, err
		}
		if n.Op == "-" {
			return variant.Neg(inner)
		}
		return inner, nil
	case *ast.Binary:
		left, err := l.evalLocalConst(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := l.evalLocalConst(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "+":
			return variant.Add(left, right)
		case "-":
			return variant.Sub(left, right)
		case "*":
			return variant.Mul(left, right)
		case "/":
			return variant.Div(left, right)
		case "\\":
			return variant.IDiv(left, right)
		case "MOD":
			return variant.Mod(left, right)
		default:
			return variant.Compare(n.Op, left, right)
		}
	case *ast.Paren:
		return l.evalLocalConst(ctx, n.Inner)
	}
	return nil, newErr(InvalidConstant, e.Pos(), "constant expression is not a literal or constant-only expression")
}

func (l *Linter) convertIf(ctx *Context, n *ast.IfStmt) (typed.Stmt, error) {
	branches := make([]typed.IfBranch, 0, len(n.Branches))
	for _, b := range n.Branches {
		cond, err := l.convertExpr(ctx, b.Cond, CtxDefault)
		if err != nil {
			return nil, err
		}
		if !isNumericKind(cond.ResultKind()) {
			return nil, newErr(TypeMismatch, b.Cond.Pos(), "IF condition must be numeric")
		}
		branches = append(branches, typed.IfBranch{Cond: cond, Body: l.convertBlock(ctx, b.Body)})
	}
	return typed.NewIf(branches, l.convertBlock(ctx, n.Else), n.Pos()), nil
}

func (l *Linter) convertFor(ctx *Context, n *ast.ForStmt) (typed.Stmt, error) {
	counterExpr, err := l.convertName(ctx, &ast.Name{Bare: n.Var, Qualifier: n.Qualifier}, CtxDefault)
	if err != nil {
		return nil, err
	}
	counter, ok := counterExpr.(*typed.VarExpr)
	if !ok {
		return nil, newErr(VariableRequired, n.Pos(), "FOR counter must be a variable")
	}
	start, err := l.convertExpr(ctx, n.Start, CtxDefault)
	if err != nil {
		return nil, err
	}
	stop, err := l.convertExpr(ctx, n.Stop, CtxDefault)
	if err != nil {
		return nil, err
	}
	var step typed.Expr
	if n.Step != nil {
		step, err = l.convertExpr(ctx, n.Step, CtxDefault)
		if err != nil {
			return nil, err
		}
	} else {
		step = typed.NewConst(variant.Integer(1), n.Pos())
	}
	ctx.ForStack = append(ctx.ForStack, variant.CaseFold(n.Var))
	body := l.convertBlock(ctx, n.Body)
	ctx.ForStack = ctx.ForStack[:len(ctx.ForStack)-1]
	// The parser already binds NEXT's operand to its own enclosing
	// ForStmt (NEXT always closes the innermost open FOR), so matching
	// it against that FOR's own counter is a local check, not a
	// tree-wide pass — grounded on
	// for_next_counter_match_linter.rs's ensure_for_next_counter_match.
	if n.NextVar != "" && variant.CaseFold(n.NextVar) != variant.CaseFold(n.Var) {
		return nil, newErr(NextWithoutFor, n.NextVarPos, "NEXT %s without matching FOR %s", n.NextVar, n.Var)
	}
	return typed.NewFor(counter, start, stop, step, body, n.Pos()), nil
}

func (l *Linter) convertWhile(ctx *Context, n *ast.WhileStmt) (typed.Stmt, error) {
	cond, err := l.convertExpr(ctx, n.Cond, CtxDefault)
	if err != nil {
		return nil, err
	}
	return typed.NewWhile(cond, l.convertBlock(ctx, n.Body), n.Pos()), nil
}

func (l *Linter) convertSelectCase(ctx *Context, n *ast.SelectCaseStmt) (typed.Stmt, error) {
	sel, err := l.convertExpr(ctx, n.Select, CtxDefault)
	if err != nil {
		return nil, err
	}
	cases := make([]typed.CaseClause, 0, len(n.Cases))
	for _, c := range n.Cases {
		tests := make([]typed.CaseTest, 0, len(c.Tests))
		for _, t := range c.Tests {
			tt, err := l.convertCaseTest(ctx, sel.ResultKind(), t)
			if err != nil {
				return nil, err
			}
			tests = append(tests, tt)
		}
		cases = append(cases, typed.CaseClause{Tests: tests, Body: l.convertBlock(ctx, c.Body)})
	}
	return typed.NewSelectCase(sel, cases, l.convertBlock(ctx, n.CaseElse), n.Pos()), nil
}

// checkCaseCast rejects a CASE test value that cannot cast to the
// SELECT expression's kind, so CASE "x" on a numeric SELECT CASE fails
// at lint time rather than producing a branch that never matches.
func (l *Linter) checkCaseCast(selKind variant.Kind, v typed.Expr) error {
	if v.ResultKind() != selKind && !variant.CanCast(v.ResultKind(), selKind) {
		return newErr(TypeMismatch, v.Pos(), "CASE value of type %s is incompatible with SELECT CASE of type %s", v.ResultKind(), selKind)
	}
	return nil
}

func (l *Linter) convertCaseTest(ctx *Context, selKind variant.Kind, t ast.CaseTest) (typed.CaseTest, error) {
	switch n := t.(type) {
	case ast.CaseSimple:
		v, err := l.convertExpr(ctx, n.Value, CtxDefault)
		if err != nil {
			return nil, err
		}
		if err := l.checkCaseCast(selKind, v); err != nil {
			return nil, err
		}
		return typed.CaseSimple{Value: v}, nil
	case ast.CaseIs:
		v, err := l.convertExpr(ctx, n.Value, CtxDefault)
		if err != nil {
			return nil, err
		}
		if err := l.checkCaseCast(selKind, v); err != nil {
			return nil, err
		}
		return typed.CaseIs{Op: n.Op, Value: v}, nil
	case ast.CaseRange:
		from, err := l.convertExpr(ctx, n.From, CtxDefault)
		if err != nil {
			return nil, err
		}
		if err := l.checkCaseCast(selKind, from); err != nil {
			return nil, err
		}
		to, err := l.convertExpr(ctx, n.To, CtxDefault)
		if err != nil {
			return nil, err
		}
		if err := l.checkCaseCast(selKind, to); err != nil {
			return nil, err
		}
		return typed.CaseRange{From: from, To: to}, nil
	}
	return nil, newErr(TypeMismatch, diag.Pos{}, "unrecognized CASE test")
}

func (l *Linter) convertExit(ctx *Context, n *ast.ExitStmt) (typed.Stmt, error) {
	kind := typed.ExitKind(n.Kind)
	switch n.Kind {
	case ast.ExitSub:
		if !ctx.InSub {
			return nil, newErr(IllegalOutsideSubFunction, n.Pos(), "EXIT SUB outside a SUB")
		}
	case ast.ExitFunction:
		if !ctx.InFunction {
			return nil, newErr(IllegalOutsideSubFunction, n.Pos(), "EXIT FUNCTION outside a FUNCTION")
		}
	case ast.ExitFor:
		if len(ctx.ForStack) == 0 {
			return nil, newErr(NextWithoutFor, n.Pos(), "EXIT FOR outside a FOR loop")
		}
	}
	return typed.NewExit(kind, n.Pos()), nil
}

func (l *Linter) convertPrint(ctx *Context, n *ast.PrintStmt) (typed.Stmt, error) {
	var channel, format typed.Expr
	var err error
	if n.Channel != nil {
		channel, err = l.convertExpr(ctx, n.Channel, CtxArgument)
		if err != nil {
			return nil, err
		}
	}
	if n.Format != nil {
		format, err = l.convertExpr(ctx, n.Format, CtxArgument)
		if err != nil {
			return nil, err
		}
		if format.ResultKind() != variant.KindString {
			return nil, newErr(TypeMismatch, n.Format.Pos(), "PRINT USING format must be a string")
		}
	}
	args := make([]typed.PrintArg, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := l.convertExpr(ctx, a.Value, CtxArgument)
		if err != nil {
			return nil, err
		}
		if v.ResultKind() == variant.KindRecord {
			return nil, newErr(TypeMismatch, a.Value.Pos(), "cannot PRINT a record value")
		}
		args = append(args, typed.PrintArg{Value: v, Sep: a.Sep})
	}
	return typed.NewPrint(channel, format, n.Lprint, args, n.Trailing, n.Pos()), nil
}

func (l *Linter) convertInput(ctx *Context, n *ast.InputStmt) (typed.Stmt, error) {
	var channel, prompt typed.Expr
	var err error
	if n.Channel != nil {
		channel, err = l.convertExpr(ctx, n.Channel, CtxArgument)
		if err != nil {
			return nil, err
		}
	}
	if n.Prompt != nil {
		prompt, err = l.convertExpr(ctx, n.Prompt, CtxArgument)
		if err != nil {
			return nil, err
		}
	}
	vars := make([]typed.Expr, 0, len(n.Vars))
	for _, v := range n.Vars {
		tv, err := l.convertExpr(ctx, v, CtxAssignment)
		if err != nil {
			return nil, err
		}
		vars = append(vars, tv)
	}
	return typed.NewInput(channel, prompt, n.LineInput, n.SuppressQuestionMark, vars, n.Pos()), nil
}

func (l *Linter) convertData(ctx *Context, n *ast.DataStmt) (typed.Stmt, error) {
	if !ctx.IsGlobal {
		return nil, newErr(IllegalInSubFunction, n.Pos(), "DATA is only legal at the top level")
	}
	values := make([]variant.Value, 0, len(n.Values))
	for _, e := range n.Values {
		v, err := l.evalLocalConst(ctx, e)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return typed.NewData(values, n.Pos()), nil
}

func (l *Linter) convertRead(ctx *Context, n *ast.ReadStmt) (typed.Stmt, error) {
	targets := make([]typed.Expr, 0, len(n.Targets))
	for _, t := range n.Targets {
		tv, err := l.convertExpr(ctx, t, CtxAssignment)
		if err != nil {
			return nil, err
		}
		targets = append(targets, tv)
	}
	return typed.NewRead(targets, n.Pos()), nil
}

// convertCall resolves a bare statement-position call: a user SUB, or
// a built-in sub dispatched by ID (Design Notes' built-in dispatch
// table, shared with the linter's expression-call resolution).
func (l *Linter) convertCall(ctx *Context, n *ast.CallStmt) (typed.Stmt, error) {
	upper := variant.CaseFold(n.Name)
	args := make([]typed.Arg, 0, len(n.Args))
	for _, a := range n.Args {
		byRef := true
		inner := a
		if p, isParen := a.(*ast.Paren); isParen {
			byRef = false
			inner = p.Inner
		}
		v, err := l.convertExpr(ctx, inner, CtxArgument)
		if err != nil {
			return nil, err
		}
		args = append(args, typed.Arg{Value: v, ByRef: byRef})
	}
	if sig, ok := l.pre.Subs[upper]; ok {
		if err := l.checkArgCount(n.Pos(), n.Name, len(sig.Params), len(args)); err != nil {
			return nil, err
		}
		return typed.NewCallSub(n.Name, args, n.Pos()), nil
	}
	if id, info, ok := builtin.Lookup(upper); ok {
		if err := l.checkBuiltinArity(n.Pos(), info, len(args)); err != nil {
			return nil, err
		}
		return typed.NewCallBuiltin(int(id), info.Name, args, n.Pos()), nil
	}
	return nil, newErr(SubprogramNotDefined, n.Pos(), "%s is not a SUB or built-in statement", n.Name)
}
