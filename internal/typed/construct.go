package typed

import (
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/variant"
)

// Constructors for every node, so callers outside this package never
// need a keyed literal naming the unexported base/sbase field — they
// just pass position and kind alongside the node's own data.

func NewConst(v variant.Value, at diag.Pos) *ConstExpr {
	k := variant.KindInteger
	if v != nil {
		k = v.Kind()
	}
	return &ConstExpr{base: base{At: at, Kind: k}, Value: v}
}

func NewVar(resolvedName string, scope Scope, kind variant.Kind, typeName string, at diag.Pos) *VarExpr {
	return &VarExpr{base: base{At: at, Kind: kind}, ResolvedName: resolvedName, Scope: scope, TypeName: typeName}
}

func NewBinary(op string, left, right Expr, kind variant.Kind, at diag.Pos) *BinaryExpr {
	return &BinaryExpr{base: base{At: at, Kind: kind}, Op: op, Left: left, Right: right}
}

func NewUnary(op string, operand Expr, kind variant.Kind, at diag.Pos) *UnaryExpr {
	return &UnaryExpr{base: base{At: at, Kind: kind}, Op: op, Operand: operand}
}

func NewCast(inner Expr, kind variant.Kind, at diag.Pos) *CastExpr {
	return &CastExpr{base: base{At: at, Kind: kind}, Inner: inner}
}

func NewArrayIndex(array *VarExpr, indices []Expr, elemKind variant.Kind, at diag.Pos) *ArrayIndexExpr {
	return &ArrayIndexExpr{base: base{At: at, Kind: elemKind}, Array: array, Indices: indices}
}

func NewField(object Expr, field string, kind variant.Kind, typeName string, at diag.Pos) *FieldExpr {
	return &FieldExpr{base: base{At: at, Kind: kind}, Object: object, Field: field, TypeName: typeName}
}

func NewFunctionCall(name string, args []Arg, kind variant.Kind, at diag.Pos) *FunctionCallExpr {
	return &FunctionCallExpr{base: base{At: at, Kind: kind}, Name: name, Args: args}
}

func NewBuiltinCall(id int, name string, args []Arg, kind variant.Kind, at diag.Pos) *BuiltinCallExpr {
	return &BuiltinCallExpr{base: base{At: at, Kind: kind}, ID: id, Name: name, Args: args}
}

func NewLabel(name string, at diag.Pos) *LabelStmt {
	return &LabelStmt{sbase: sbase{At: at}, Name: name}
}

func NewAssign(target, value Expr, at diag.Pos) *AssignStmt {
	return &AssignStmt{sbase: sbase{At: at}, Target: target, Value: value}
}

func NewDim(vars []DimVar, at diag.Pos) *DimStmt {
	return &DimStmt{sbase: sbase{At: at}, Vars: vars}
}

func NewIf(branches []IfBranch, elseBody []Stmt, at diag.Pos) *IfStmt {
	return &IfStmt{sbase: sbase{At: at}, Branches: branches, Else: elseBody}
}

func NewFor(counter *VarExpr, start, stop, step Expr, body []Stmt, at diag.Pos) *ForStmt {
	return &ForStmt{sbase: sbase{At: at}, Counter: counter, Start: start, Stop: stop, Step: step, Body: body}
}

func NewWhile(cond Expr, body []Stmt, at diag.Pos) *WhileStmt {
	return &WhileStmt{sbase: sbase{At: at}, Cond: cond, Body: body}
}

func NewSelectCase(sel Expr, cases []CaseClause, caseElse []Stmt, at diag.Pos) *SelectCaseStmt {
	return &SelectCaseStmt{sbase: sbase{At: at}, Select: sel, Cases: cases, CaseElse: caseElse}
}

func NewGoto(label string, at diag.Pos) *GotoStmt {
	return &GotoStmt{sbase: sbase{At: at}, Label: label}
}

func NewGosub(label string, at diag.Pos) *GosubStmt {
	return &GosubStmt{sbase: sbase{At: at}, Label: label}
}

func NewReturn(at diag.Pos) *ReturnStmt {
	return &ReturnStmt{sbase: sbase{At: at}}
}

func NewOnErrorGoto(label string, zero bool, at diag.Pos) *OnErrorGotoStmt {
	return &OnErrorGotoStmt{sbase: sbase{At: at}, Label: label, Zero: zero}
}

func NewResume(kind ResumeKind, label string, at diag.Pos) *ResumeStmt {
	return &ResumeStmt{sbase: sbase{At: at}, Kind: kind, Label: label}
}

func NewExit(kind ExitKind, at diag.Pos) *ExitStmt {
	return &ExitStmt{sbase: sbase{At: at}, Kind: kind}
}

func NewPrint(channel, format Expr, lprint bool, args []PrintArg, trailing byte, at diag.Pos) *PrintStmt {
	return &PrintStmt{sbase: sbase{At: at}, Channel: channel, Format: format, Lprint: lprint, Args: args, Trailing: trailing}
}

func NewInput(channel, prompt Expr, lineInput, suppressQ bool, vars []Expr, at diag.Pos) *InputStmt {
	return &InputStmt{sbase: sbase{At: at}, Channel: channel, Prompt: prompt, LineInput: lineInput, SuppressQuestionMark: suppressQ, Vars: vars}
}

func NewData(values []variant.Value, at diag.Pos) *DataStmt {
	return &DataStmt{sbase: sbase{At: at}, Values: values}
}

func NewRead(targets []Expr, at diag.Pos) *ReadStmt {
	return &ReadStmt{sbase: sbase{At: at}, Targets: targets}
}

func NewCallSub(name string, args []Arg, at diag.Pos) *CallSubStmt {
	return &CallSubStmt{sbase: sbase{At: at}, Name: name, Args: args}
}

func NewCallBuiltin(id int, name string, args []Arg, at diag.Pos) *CallBuiltinStmt {
	return &CallBuiltinStmt{sbase: sbase{At: at}, ID: id, Name: name, Args: args}
}

func NewExprStmt(value Expr, at diag.Pos) *ExprStmt {
	return &ExprStmt{sbase: sbase{At: at}, Value: value}
}

func NewEnd(system bool, at diag.Pos) *EndStmt {
	return &EndStmt{sbase: sbase{At: at}, System: system}
}
