package codegen

import (
	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/typed"
)

// Every VisitXxxExpr leaves exactly one value on the interpreter's
// value stack — the stack-machine contract the teacher's
// internal/compiler/compiler.go expression lowering follows too.

func toPos(e typed.Expr) bytecode.Pos {
	p := e.Pos()
	return bytecode.Pos{Row: p.Row, Col: p.Col}
}

func (g *Generator) VisitConstExpr(e *typed.ConstExpr) error {
	idx := g.chunk.AddConstant(e.Value)
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: idx, Pos: toPos(e)})
	return nil
}

// scopeFlag packs a VarExpr's Scope into the small int the interpreter
// reads off Slot/Const to pick which variable map a Name resolves
// against: 0 the current call context's locals/parameters, 1 the
// global SHARED table.
func scopeFlag(sc typed.Scope) int {
	if sc == typed.ScopeGlobalShared {
		return 1
	}
	return 0
}

func (g *Generator) VisitVarExpr(e *typed.VarExpr) error {
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: e.ResolvedName, Slot: scopeFlag(e.Scope), Pos: toPos(e)})
	return nil
}

func (g *Generator) VisitBinaryExpr(e *typed.BinaryExpr) error {
	g.genExpr(e.Left)
	g.genExpr(e.Right)
	op, ok := binOps[e.Op]
	if !ok {
		g.fail(toPos(e), "unsupported binary operator %q", e.Op)
		return nil
	}
	g.emit(bytecode.Instruction{Op: op, Pos: toPos(e)})
	return nil
}

var binOps = map[string]bytecode.Op{
	"+": bytecode.OpAdd, "-": bytecode.OpSub, "*": bytecode.OpMul,
	"/": bytecode.OpDiv, "\\": bytecode.OpIDiv, "MOD": bytecode.OpMod,
	"<": bytecode.OpLt, "<=": bytecode.OpLe, "=": bytecode.OpEq,
	"<>": bytecode.OpNe, ">": bytecode.OpGt, ">=": bytecode.OpGe,
	"AND": bytecode.OpAnd, "OR": bytecode.OpOr, "XOR": bytecode.OpXor,
	"EQV": bytecode.OpEqv, "IMP": bytecode.OpImp,
}

func (g *Generator) VisitUnaryExpr(e *typed.UnaryExpr) error {
	g.genExpr(e.Operand)
	switch e.Op {
	case "-":
		g.emit(bytecode.Instruction{Op: bytecode.OpNeg, Pos: toPos(e)})
	case "NOT":
		g.emit(bytecode.Instruction{Op: bytecode.OpNot, Pos: toPos(e)})
	default:
		g.fail(toPos(e), "unsupported unary operator %q", e.Op)
	}
	return nil
}

func (g *Generator) VisitCastExpr(e *typed.CastExpr) error {
	g.genExpr(e.Inner)
	g.emit(bytecode.Instruction{Op: bytecode.OpCastTo, Slot: int(e.ResultKind()), Pos: toPos(e)})
	return nil
}

func (g *Generator) VisitArrayIndexExpr(e *typed.ArrayIndexExpr) error {
	for _, idx := range e.Indices {
		g.genExpr(idx)
	}
	g.emit(bytecode.Instruction{
		Op: bytecode.OpLoadArrayElem, Name: e.Array.ResolvedName,
		Slot: len(e.Indices), Const: scopeFlag(e.Array.Scope), Pos: toPos(e),
	})
	return nil
}

func (g *Generator) VisitFieldExpr(e *typed.FieldExpr) error {
	g.genExpr(e.Object)
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadField, Name: e.Field, Pos: toPos(e)})
	return nil
}

func (g *Generator) VisitFunctionCallExpr(e *typed.FunctionCallExpr) error {
	g.emitArgs(e.Args)
	g.emit(bytecode.Instruction{Op: bytecode.OpEnterFn, Name: e.Name, Pos: toPos(e)})
	return nil
}

func (g *Generator) VisitBuiltinCallExpr(e *typed.BuiltinCallExpr) error {
	for _, a := range e.Args {
		g.genExpr(a.Value)
	}
	g.emit(bytecode.Instruction{
		Op: bytecode.OpCallBuiltin, Slot: e.ID, Name: e.Name,
		Const: len(e.Args), Pos: toPos(e),
	})
	return nil
}

// emitArgs lowers a user SUB/FUNCTION call's argument list: a by-value
// argument (a parenthesized expression, or any non-variable expression)
// is evaluated and bound by value; a by-reference argument — a bare
// variable argument, the default per spec.md §4.C — is bound by the
// caller's resolved storage name so the callee's writes are visible
// back in the caller's scope.
func (g *Generator) emitArgs(args []typed.Arg) {
	for _, a := range args {
		if v, ok := a.Value.(*typed.VarExpr); ok && a.ByRef {
			g.emit(bytecode.Instruction{Op: bytecode.OpBindByRef, Name: v.ResolvedName, Slot: scopeFlag(v.Scope), Pos: toPos(a.Value)})
			continue
		}
		g.genExpr(a.Value)
		g.emit(bytecode.Instruction{Op: bytecode.OpBindByVal, Pos: toPos(a.Value)})
	}
}
