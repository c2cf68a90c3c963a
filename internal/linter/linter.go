package linter

import (
	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/prelint"
	"github.com/ngeor/gobasic/internal/typed"
	"github.com/ngeor/gobasic/internal/variant"
)

// Linter is the conversion driver (component C): it owns the
// pre-linter's signature tables, the resolved record-type table built
// from them, and the default-type map DEFINT/DEFLNG/... mutate as the
// global scope is walked in order.
type Linter struct {
	pre         *prelint.Result
	recordTypes map[string]*variant.RecordType
	defaults    variant.DefaultTypeMap
	errs        []error
	allLabels   map[string]diag.Pos // every label in the program, for DuplicateLabel
	global      *Context            // ON ERROR GOTO / RESUME <label> always target this scope
}

// Lint runs the pre-linter then converts every global statement and
// subprogram body into internal/typed, returning every error
// accumulated along the way (lint continues past an error to report as
// much as it can in one pass, per spec.md §4.C's closed LintError set).
func Lint(prog *ast.Program) (*typed.Program, []error) {
	pre, errs := prelint.Run(prog, variant.CaseFold)
	l := &Linter{pre: pre, defaults: variant.NewDefaultTypeMap(), allLabels: map[string]diag.Pos{}}
	l.errs = append(l.errs, errs...)
	l.recordTypes = l.buildRecordTypes()

	out := &typed.Program{
		Functions: map[string]*typed.FunctionDecl{},
		Subs:      map[string]*typed.SubDecl{},
		Types:     l.recordTypes,
	}

	global := NewGlobalContext(&l.defaults, l.pre)
	global.Consts = l.pre.Consts
	l.global = global
	out.Global = l.convertBlock(global, prog.Statements)
	l.validateLabelRefs(global)

	for name, sig := range l.pre.Functions {
		if !sig.HasBody {
			continue
		}
		out.Functions[name] = l.convertFunction(sig)
	}
	for name, sig := range l.pre.Subs {
		if !sig.HasBody {
			continue
		}
		out.Subs[name] = l.convertSub(sig)
	}

	return out, l.errs
}

// validateLabelRefs checks every GOTO/GOSUB/ON ERROR GOTO/RESUME target
// collected while walking ctx against the label set it must resolve
// in: ctx's own labels for GOTO/GOSUB, the global scope's labels for
// ON ERROR GOTO and RESUME <label> — grounded on
// rusty_linter/src/tests/on_error.rs's on_error_must_use_global_label.
func (l *Linter) validateLabelRefs(ctx *Context) {
	for _, ref := range ctx.LabelRefs {
		target := ctx.Labels
		if ref.Global {
			target = l.global.Labels
		}
		if _, ok := target[variant.CaseFold(ref.Name)]; !ok {
			l.fail(newErr(LabelNotDefined, ref.At, "label %s is not defined", ref.Name))
		}
	}
}

func (l *Linter) fail(err error) { l.errs = append(l.errs, err) }

// buildRecordTypes resolves every TYPE...END TYPE declaration's field
// list into variant.RecordType, following a field's AS clause into
// either a built-in kind or another (already-collected) record type —
// record types cannot cycle (spec.md §3), so a single pass in
// declaration order followed by a fixup pass over nested references is
// enough.
func (l *Linter) buildRecordTypes() map[string]*variant.RecordType {
	out := make(map[string]*variant.RecordType, len(l.pre.Types))
	for key, ts := range l.pre.Types {
		out[key] = &variant.RecordType{Name: ts.Name}
	}
	for key, ts := range l.pre.Types {
		rt := out[key]
		for _, f := range ts.Fields {
			kind, typeName, err := l.resolveAsType(0, f.AsType, ts.Pos())
			if err != nil {
				l.fail(err)
				continue
			}
			fixedLen := 0
			if kind == variant.KindString && f.StringLen != nil {
				if n, ok := constIntOf(f.StringLen); ok {
					fixedLen = n
				}
			}
			rt.Fields = append(rt.Fields, variant.FieldType{Name: f.Name, Kind: kind, FixedLen: fixedLen, TypeName: typeName})
		}
	}
	return out
}

func constIntOf(e ast.Expr) (int, bool) {
	if lit, ok := e.(*ast.Literal); ok && !lit.IsStr {
		if v, ok := lit.Value.(int64); ok {
			return int(v), true
		}
	}
	return 0, false
}

// resolveAsType turns a qualifier byte and/or "AS type" clause into a
// Kind plus, for record fields, the referenced type's name.
func (l *Linter) resolveAsType(qual byte, asType string, at diag.Pos) (variant.Kind, string, error) {
	if qual != 0 {
		if k, ok := variant.KindForSuffix(qual); ok {
			return k, "", nil
		}
	}
	switch asType {
	case "INTEGER":
		return variant.KindInteger, "", nil
	case "LONG":
		return variant.KindLong, "", nil
	case "SINGLE":
		return variant.KindSingle, "", nil
	case "DOUBLE":
		return variant.KindDouble, "", nil
	case "STRING":
		return variant.KindString, "", nil
	case "":
		return variant.KindSingle, "", nil
	}
	if _, ok := l.pre.Types[variant.CaseFold(asType)]; ok {
		return variant.KindRecord, asType, nil
	}
	return variant.KindSingle, "", newErr(TypeNotDefined, at, "type %s is not defined", asType)
}

func (l *Linter) resolveType(typeName string) *variant.RecordType {
	return l.recordTypes[variant.CaseFold(typeName)]
}

func (l *Linter) convertParams(ctx *Context, params []ast.ParamDecl) []typed.ParamSlot {
	out := make([]typed.ParamSlot, 0, len(params))
	for _, p := range params {
		kind, typeName, err := l.resolveAsType(p.Qualifier, p.AsType, diag.Pos{})
		if err != nil {
			l.fail(err)
		}
		key := resolveKey(p.Name, p.Qualifier)
		vi := &VarInfo{Name: p.Name, Kind: kind, TypeName: typeName, IsParam: true, IsArray: p.IsArray}
		ctx.DefineVar(key, vi)
		out = append(out, typed.ParamSlot{Name: key, Kind: kind, ByRef: true, IsArray: p.IsArray})
	}
	return out
}

func (l *Linter) convertFunction(sig *prelint.FuncSig) *typed.FunctionDecl {
	ctx := l.newChildContext(sig.Name)
	params := l.convertParams(ctx, sig.Params)
	// The function's own name is also its return-value slot.
	ctx.DefineVar(resolveKey(sig.Name, 0), &VarInfo{Name: sig.Name, Kind: sig.Kind})
	ctx.InFunction = true
	body := l.convertBlock(ctx, sig.Body)
	l.validateLabelRefs(ctx)
	return &typed.FunctionDecl{Name: sig.Name, Kind: sig.Kind, Params: params, Body: body, At: sig.At}
}

func (l *Linter) convertSub(sig *prelint.SubSig) *typed.SubDecl {
	ctx := l.newChildContext(sig.Name)
	params := l.convertParams(ctx, sig.Params)
	ctx.InSub = true
	body := l.convertBlock(ctx, sig.Body)
	l.validateLabelRefs(ctx)
	return &typed.SubDecl{Name: sig.Name, Params: params, Body: body, At: sig.At}
}

func (l *Linter) newChildContext(subName string) *Context {
	ctx := &Context{
		Defaults:     &l.defaults,
		Vars:         map[string]*VarInfo{},
		Consts:       map[string]variant.Value{},
		ParentConsts: l.pre.Consts,
		Labels:       map[string]diag.Pos{},
		SubName:      subName,
		Pre:          l.pre,
	}
	for key, vi := range l.global.Vars {
		if vi.Shared {
			ctx.Vars[key] = vi
		}
	}
	return ctx
}
