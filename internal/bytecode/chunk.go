package bytecode

import "github.com/ngeor/gobasic/internal/variant"

// Chunk is the final, label-resolved instruction stream for one
// program: a constant pool, the code array, and an append-only DATA
// segment populated at generation time by DATA statements. Grounded on
// the teacher's internal/bytecode/chunk.go (Code + Constants +
// per-instruction Debug), generalized with the DATA segment spec.md
// §4.D calls out as VM state the generator populates ahead of time.
type Chunk struct {
	Code      []Instruction
	Constants []variant.Value
	Data      []variant.Value

	// Labels maps a symbolic label name to its resolved absolute index
	// within Code, kept post-resolution for GOTO/GOSUB/RESUME<label>
	// opcodes that still need the mapping at run time (a label reference
	// doesn't get erased to a raw jump the way structured control flow
	// does, since it may be targeted from anywhere in its scope).
	Labels map[string]int

	// FuncEntry/SubEntry map a subprogram's bare name to the absolute
	// instruction index of its body, populated by the two-pass
	// generation scheme (collect signatures, then compile bodies).
	FuncEntry map[string]int
	SubEntry  map[string]int

	// FuncParams/SubParams carry each subprogram's parameter names in
	// declaration order, so EnterFn/EnterSub can bind the interpreter's
	// positionally-staged arguments to the callee's own variable names.
	FuncParams map[string][]string
	SubParams  map[string][]string

	// FuncReturnVar maps a FUNCTION's bare name to the resolved variable
	// key its body assigns to express its return value (internal/linter's
	// resolveKey(name, 0) convention) — EnterFn zero-initializes it,
	// ReturnValue reads it back into the accumulator.
	FuncReturnVar map[string]string

	// FuncReturnZero carries each FUNCTION's declared return Kind, already
	// reduced to its zero Variant, so EnterFn can seed the return slot
	// without the interpreter needing to retain the typed program it was
	// generated from (spec.md §4.E: "a function that never assigns its
	// name returns the type's default").
	FuncReturnZero map[string]variant.Value
}

func NewChunk() *Chunk {
	return &Chunk{
		Labels:         map[string]int{},
		FuncEntry:      map[string]int{},
		SubEntry:       map[string]int{},
		FuncParams:     map[string][]string{},
		SubParams:      map[string][]string{},
		FuncReturnVar:  map[string]string{},
		FuncReturnZero: map[string]variant.Value{},
	}
}

func (c *Chunk) AddConstant(v variant.Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) AddData(v variant.Value) int {
	c.Data = append(c.Data, v)
	return len(c.Data) - 1
}

func (c *Chunk) Emit(in Instruction) int {
	c.Code = append(c.Code, in)
	return len(c.Code) - 1
}

// Patch overwrites the target of a previously emitted jump — the
// jump-patch idiom: emit a placeholder, keep its index, patch once the
// destination is known.
func (c *Chunk) Patch(index int, target Target) {
	c.Code[index].Target = target
}

func (c *Chunk) Here() int { return len(c.Code) }
