package vm

import (
	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/variant"
)

// binFuncs dispatches the arithmetic/bitwise binary opcodes to their
// internal/variant implementation, mirroring codegen's own binOps
// table so the two stay in lockstep by construction.
var binFuncs = map[bytecode.Op]func(a, b variant.Value) (variant.Value, error){
	bytecode.OpAdd:  variant.Add,
	bytecode.OpSub:  variant.Sub,
	bytecode.OpMul:  variant.Mul,
	bytecode.OpDiv:  variant.Div,
	bytecode.OpIDiv: variant.IDiv,
	bytecode.OpMod:  variant.Mod,
	bytecode.OpAnd:  variant.And,
	bytecode.OpOr:   variant.Or,
	bytecode.OpXor:  variant.Xor,
	bytecode.OpEqv:  variant.Eqv,
	bytecode.OpImp:  variant.Imp,
}

var cmpSymbols = map[bytecode.Op]string{
	bytecode.OpLt: "<", bytecode.OpLe: "<=", bytecode.OpEq: "=",
	bytecode.OpNe: "<>", bytecode.OpGt: ">", bytecode.OpGe: ">=",
}
