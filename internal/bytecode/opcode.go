// Package bytecode is the flat instruction stream the instruction
// generator (internal/codegen) emits and the interpreter (internal/vm)
// executes. Grounded on the teacher's internal/bytecode/opcodes.go and
// chunk.go (constant pool + flat code array + per-instruction debug
// info), generalized from the teacher's raw-byte opcode encoding to
// structured Instruction values — the opcode categories named here
// match spec.md §4.D's table directly, so there's no separate
// operand-decoding step the way the teacher's byte-packed OpCode needs.
package bytecode

type Op int

const (
	// Value
	OpLoadConst Op = iota
	OpLoadVar
	OpStoreVar
	OpLoadArrayElem
	OpStoreArrayElem
	OpLoadField
	OpStoreField

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpIDiv
	OpMod
	OpNeg
	OpNot

	// Compare
	OpLt
	OpLe
	OpEq
	OpNe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpXor
	OpEqv
	OpImp

	// Cast
	OpCastTo

	// Control
	OpJump
	OpJumpIfFalse
	opLabel // lint-time only; erased by the second resolution pass

	// Stack
	OpPush
	OpPop
	OpDup
	OpSwap

	// Call/Return
	OpPushCallContext
	OpPopCallContext
	OpEnterFn
	OpEnterSub
	OpReturn
	OpReturnValue

	// Arg protocol
	OpBindByRef
	OpBindByVal

	// Builtin
	OpCallBuiltin

	// Error
	OpSetErrorHandler
	OpClearErrorHandler
	OpResume
	OpThrow

	// I/O
	OpIoOp

	// Data
	OpDataPush
	OpDataRead

	// Misc
	OpHalt
)

var opNames = map[Op]string{
	OpLoadConst: "LoadConst", OpLoadVar: "LoadVar", OpStoreVar: "StoreVar",
	OpLoadArrayElem: "LoadArrayElem", OpStoreArrayElem: "StoreArrayElem",
	OpLoadField: "LoadField", OpStoreField: "StoreField",
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpIDiv: "IDiv",
	OpMod: "Mod", OpNeg: "Neg", OpNot: "Not",
	OpLt: "Lt", OpLe: "Le", OpEq: "Eq", OpNe: "Ne", OpGt: "Gt", OpGe: "Ge",
	OpAnd: "And", OpOr: "Or", OpXor: "Xor", OpEqv: "Eqv", OpImp: "Imp",
	OpCastTo: "CastTo",
	OpJump:   "Jump", OpJumpIfFalse: "JumpIfFalse", opLabel: "Label",
	OpPush: "Push", OpPop: "Pop", OpDup: "Dup", OpSwap: "Swap",
	OpPushCallContext: "PushCallContext", OpPopCallContext: "PopCallContext",
	OpEnterFn: "EnterFn", OpEnterSub: "EnterSub",
	OpReturn: "Return", OpReturnValue: "ReturnValue",
	OpBindByRef: "BindByRef", OpBindByVal: "BindByVal",
	OpCallBuiltin:       "CallBuiltin",
	OpSetErrorHandler:   "SetErrorHandler",
	OpClearErrorHandler: "ClearErrorHandler",
	OpResume:            "Resume", OpThrow: "Throw",
	OpIoOp:     "IoOp",
	OpDataPush: "DataPush", OpDataRead: "DataRead",
	OpHalt: "Halt",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "Unknown"
}

// ResumeKind mirrors ast.ResumeKind for the Resume opcode's operand.
type ResumeKind int

const (
	ResumeBare ResumeKind = iota
	ResumeNext
	ResumeLabel
)

// Target is an instruction's jump/label target: Symbol before the
// resolution pass, Resolved (with IsAbs set) after it,
// per Design Notes' "intermediate pseudo-instruction Label(name)... a
// second pass replaces every symbolic jump with an absolute index".
type Target struct {
	Symbol   string // valid before resolution
	Resolved int    // valid after resolution
	IsAbs    bool
}

// Instruction is one entry in the flat code stream.
type Instruction struct {
	Op     Op
	Const  int    // constant pool index for OpLoadConst/OpDataPush; argument count for OpCallBuiltin; scope flag for array-element opcodes
	Slot   int    // scope flag for Var/BindByRef; subscript count for array elements; builtin id for OpCallBuiltin; Kind for OpCastTo/INPUT_FIELD; variable count for INPUT_LINE
	Name   string // variable/field/builtin/label name, where a slot alone isn't enough context
	Target Target // jump/call-site target, for Jump/JumpIfFalse/PushCallContext (GOTO/GOSUB jumps and SetErrorHandler carry a label in Name instead)
	Resume ResumeKind
	Flags  int // small opcode-specific bitset, e.g. OpIoOp's PRINT/INPUT modifier bits
	Pos    Pos // source position, for runtime error attribution
}

// Pos mirrors diag.Pos without importing internal/diag, keeping
// bytecode free of a dependency on the diagnostics envelope's error
// rendering — only the bare coordinates are needed here.
type Pos struct{ Row, Col int }

// Label constructs the lint-time-only pseudo-instruction consumed by
// the resolution pass and never seen by the interpreter.
func Label(name string) Instruction {
	return Instruction{Op: opLabel, Target: Target{Symbol: name}}
}

func IsLabel(in Instruction) bool { return in.Op == opLabel }
