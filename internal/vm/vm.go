// Package vm is the interpreter (component E): a stack machine that
// executes one internal/bytecode.Chunk to completion, owns the
// variable-scope stack, the DATA cursor, and the ON ERROR GOTO state
// machine, and delegates screen/file I/O to internal/console and
// internal/fs. Grounded on the teacher's internal/vm/vm.go EnhancedVM
// (register + stack hybrid, a call-frame stack, a DebugHook-free
// dispatch loop) and internal/vm/value.go's interface{}-based Value —
// generalized to this language's closed variant.Value union and its
// GOSUB/SUB/FUNCTION call-frame split instead of the teacher's single
// EnhancedCallFrame kind.
package vm

import (
	"bufio"
	"io"

	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/builtin"
	"github.com/ngeor/gobasic/internal/console"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/fs"
	"github.com/ngeor/gobasic/internal/variant"
)

// runState distinguishes ordinary execution from "inside an ON ERROR
// GOTO handler" — a second fault while Handling is unrecoverable the
// way an error raised inside a signal handler would be.
type runState int

const (
	stateRunning runState = iota
	stateHandling
)

// VM is one program execution: all of its mutable state lives here so
// a fresh VM per run never leaks anything across programs.
type VM struct {
	chunk *bytecode.Chunk
	ip    int

	stack    []variant.Value
	frames   []int
	contexts []*Context

	dataCursor int

	errorHandler int // absolute instruction index, -1 = none active
	state        runState
	faultIP      int
	lastErrNum   int
	lastErl      int

	pendingArgs []*Box

	files   *fs.Table
	console *console.Writer
	stdin   *bufio.Reader

	printChannel  int
	printFormat   string
	inputChannel  int
	inputPrompt   string
	pendingInput  []string
	pendingCursor int

	sessionID string
}

// SessionID tags this run with an id, surfaced to the running program
// through ENVIRON$("GOBASIC_SESSION") and appended as a trailer on
// device I/O errors so a log line can be correlated back to the run
// that produced it.
func (vm *VM) SessionID(id string) { vm.sessionID = id }

// New builds a VM ready to run chunk, writing PRINT output to stdout
// and reading INPUT from stdin.
func New(chunk *bytecode.Chunk, stdout io.Writer, stdin io.Reader) *VM {
	return &VM{
		chunk:        chunk,
		contexts:     []*Context{NewContext()},
		errorHandler: -1,
		files:        fs.NewTable(),
		console:      console.New(stdout),
		stdin:        bufio.NewReader(stdin),
	}
}

// Run executes chunk from instruction 0 until OpHalt or the code
// stream is exhausted, returning the first unhandled runtime error.
func (vm *VM) Run() *diag.Error {
	defer vm.files.CloseAll()
	defer vm.console.Flush()

	for {
		if vm.ip < 0 || vm.ip >= len(vm.chunk.Code) {
			return nil
		}
		instr := vm.chunk.Code[vm.ip]
		if instr.Op == bytecode.OpHalt {
			return nil
		}
		faultIP := vm.ip
		vm.ip++
		if rerr := vm.step(instr); rerr != nil {
			if derr := vm.raise(rerr, faultIP, instr.Pos); derr != nil {
				return derr
			}
		}
	}
}

// raise routes a runtime fault either into the active ON ERROR GOTO
// handler or, if none is active (or the fault happened while already
// Handling one), back out of Run as a fatal diagnostic.
func (vm *VM) raise(rerr *RuntimeError, faultIP int, pos bytecode.Pos) *diag.Error {
	if vm.errorHandler < 0 || vm.state == stateHandling {
		return vm.diagError(rerr, pos)
	}
	vm.lastErrNum = rerr.Num
	vm.lastErl = pos.Row
	vm.faultIP = faultIP
	vm.state = stateHandling
	vm.ip = vm.errorHandler
	return nil
}

func (vm *VM) push(v variant.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() variant.Value {
	n := len(vm.stack) - 1
	v := vm.stack[n]
	vm.stack = vm.stack[:n]
	return v
}

// ctxFor resolves a scope flag (0 = current call's locals/parameters,
// 1 = the global SHARED table) to the Context it addresses.
func (vm *VM) ctxFor(scope int) *Context {
	if scope == 1 {
		return vm.contexts[0]
	}
	return vm.contexts[len(vm.contexts)-1]
}

func (vm *VM) resolveLabel(name string) (int, *RuntimeError) {
	idx, ok := vm.chunk.Labels[name]
	if !ok {
		return 0, rerrf(5, "undefined label %q", name)
	}
	return idx, nil
}

func (vm *VM) jumpTarget(instr bytecode.Instruction) (int, *RuntimeError) {
	if instr.Target.IsAbs {
		return instr.Target.Resolved, nil
	}
	return vm.resolveLabel(instr.Name)
}

func isFalsy(v variant.Value) bool {
	switch t := v.(type) {
	case variant.Integer:
		return t == 0
	case variant.Long:
		return t == 0
	case variant.Single:
		return t == 0
	case variant.Double:
		return t == 0
	}
	return false
}

// step executes one instruction, mutating vm.ip directly for every
// control-flow opcode (the caller has already advanced it to the
// default "next instruction" value beforehand).
func (vm *VM) step(instr bytecode.Instruction) *RuntimeError {
	switch instr.Op {
	case bytecode.OpLoadConst:
		vm.push(vm.chunk.Constants[instr.Const])

	case bytecode.OpLoadVar:
		b := vm.ctxFor(instr.Slot).box(instr.Name)
		if b.V == nil {
			b.V = zeroForName(instr.Name)
		}
		vm.push(b.V)

	case bytecode.OpStoreVar:
		b := vm.ctxFor(instr.Slot).box(instr.Name)
		v := vm.pop()
		if old, ok := b.V.(variant.Str); ok && old.Fixed {
			if s, ok := v.(variant.Str); ok {
				v = variant.NewFixedString(s.S, old.Len)
			}
		}
		b.V = v

	case bytecode.OpLoadArrayElem:
		return vm.loadArrayElem(instr)
	case bytecode.OpStoreArrayElem:
		return vm.storeArrayElem(instr)

	case bytecode.OpLoadField:
		obj := vm.pop()
		rec, ok := obj.(*variant.Record)
		if !ok {
			return rerrf(13, "field access on non-record value")
		}
		v, _ := rec.Get(instr.Name)
		vm.push(v)

	case bytecode.OpStoreField:
		obj := vm.pop()
		val := vm.pop()
		rec, ok := obj.(*variant.Record)
		if !ok {
			return rerrf(13, "field assignment on non-record value")
		}
		if old, ok := rec.Get(instr.Name); ok {
			if of, isStr := old.(variant.Str); isStr && of.Fixed {
				if s, ok := val.(variant.Str); ok {
					val = variant.NewFixedString(s.S, of.Len)
				}
			}
		}
		rec.Set(instr.Name, val)

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpIDiv, bytecode.OpMod,
		bytecode.OpAnd, bytecode.OpOr, bytecode.OpXor, bytecode.OpEqv, bytecode.OpImp:
		b, a := vm.pop(), vm.pop()
		fn := binFuncs[instr.Op]
		result, err := fn(a, b)
		if err != nil {
			return wrapVariantErr(err)
		}
		vm.push(result)

	case bytecode.OpLt, bytecode.OpLe, bytecode.OpEq, bytecode.OpNe, bytecode.OpGt, bytecode.OpGe:
		b, a := vm.pop(), vm.pop()
		result, err := variant.Compare(cmpSymbols[instr.Op], a, b)
		if err != nil {
			return wrapVariantErr(err)
		}
		vm.push(result)

	case bytecode.OpNeg:
		a := vm.pop()
		result, err := variant.Neg(a)
		if err != nil {
			return wrapVariantErr(err)
		}
		vm.push(result)

	case bytecode.OpNot:
		a := vm.pop()
		result, err := variant.Sub(variant.Integer(-1), a)
		if err != nil {
			return wrapVariantErr(err)
		}
		vm.push(result)

	case bytecode.OpCastTo:
		a := vm.pop()
		result, err := variant.Cast(a, variant.Kind(instr.Slot))
		if err != nil {
			return wrapVariantErr(err)
		}
		vm.push(result)

	case bytecode.OpJump:
		idx, err := vm.jumpTarget(instr)
		if err != nil {
			return err
		}
		vm.ip = idx

	case bytecode.OpJumpIfFalse:
		cond := vm.pop()
		if isFalsy(cond) {
			idx, err := vm.jumpTarget(instr)
			if err != nil {
				return err
			}
			vm.ip = idx
		}

	case bytecode.OpPush:
		vm.push(vm.chunk.Constants[instr.Const])
	case bytecode.OpPop:
		vm.pop()
	case bytecode.OpDup:
		top := vm.stack[len(vm.stack)-1]
		vm.push(top)
	case bytecode.OpSwap:
		n := len(vm.stack)
		vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]

	case bytecode.OpPushCallContext:
		vm.frames = append(vm.frames, instr.Target.Resolved)
	case bytecode.OpPopCallContext:
		vm.ip = vm.popFrame()

	case bytecode.OpEnterFn:
		return vm.enterFn(instr.Name)
	case bytecode.OpEnterSub:
		return vm.enterSub(instr.Name)
	case bytecode.OpReturn:
		vm.contexts = vm.contexts[:len(vm.contexts)-1]
		vm.ip = vm.popFrame()
	case bytecode.OpReturnValue:
		top := vm.contexts[len(vm.contexts)-1]
		result := variant.Value(variant.Integer(0))
		if b, ok := top.Vars[top.ReturnKey]; ok && b.V != nil {
			result = b.V
		}
		vm.contexts = vm.contexts[:len(vm.contexts)-1]
		vm.ip = vm.popFrame()
		vm.push(result)

	case bytecode.OpBindByRef:
		vm.pendingArgs = append(vm.pendingArgs, vm.ctxFor(instr.Slot).box(instr.Name))
	case bytecode.OpBindByVal:
		vm.pendingArgs = append(vm.pendingArgs, &Box{V: vm.pop()})

	case bytecode.OpCallBuiltin:
		return vm.callBuiltin(builtin.ID(instr.Slot), instr.Const)

	case bytecode.OpSetErrorHandler:
		idx, err := vm.resolveLabel(instr.Name)
		if err != nil {
			return err
		}
		vm.errorHandler = idx
	case bytecode.OpClearErrorHandler:
		vm.errorHandler = -1

	case bytecode.OpResume:
		return vm.resume(instr)

	case bytecode.OpThrow:
		v := vm.pop()
		num := 5
		if n, ok := v.(variant.Integer); ok {
			num = int(n)
		}
		return rerrf(num, "ERROR %d", num)

	case bytecode.OpIoOp:
		return vm.ioOp(instr)

	case bytecode.OpDataPush:
		vm.chunk.Data = append(vm.chunk.Data, vm.chunk.Constants[instr.Const])
	case bytecode.OpDataRead:
		if vm.dataCursor >= len(vm.chunk.Data) {
			return rerrf(4, "Out of DATA")
		}
		vm.push(vm.chunk.Data[vm.dataCursor])
		vm.dataCursor++

	default:
		return rerrf(5, "unsupported opcode %s", instr.Op)
	}
	return nil
}

func (vm *VM) popFrame() int {
	n := len(vm.frames) - 1
	target := vm.frames[n]
	vm.frames = vm.frames[:n]
	return target
}

func (vm *VM) resume(instr bytecode.Instruction) *RuntimeError {
	switch instr.Resume {
	case bytecode.ResumeBare:
		vm.ip = vm.faultIP
	case bytecode.ResumeNext:
		vm.ip = vm.faultIP + 1
	case bytecode.ResumeLabel:
		idx, err := vm.resolveLabel(instr.Name)
		if err != nil {
			return err
		}
		vm.ip = idx
	}
	vm.state = stateRunning
	return nil
}

func (vm *VM) enterFn(name string) *RuntimeError {
	params := vm.chunk.FuncParams[name]
	entry, ok := vm.chunk.FuncEntry[name]
	if !ok {
		return rerrf(5, "undefined FUNCTION %q", name)
	}
	ctx := vm.bindParams(params)
	ctx.ReturnKey = vm.chunk.FuncReturnVar[name]
	ctx.Vars[ctx.ReturnKey] = &Box{V: vm.chunk.FuncReturnZero[name]}
	vm.frames = append(vm.frames, vm.ip)
	vm.contexts = append(vm.contexts, ctx)
	vm.ip = entry
	return nil
}

func (vm *VM) enterSub(name string) *RuntimeError {
	params := vm.chunk.SubParams[name]
	entry, ok := vm.chunk.SubEntry[name]
	if !ok {
		return rerrf(5, "undefined SUB %q", name)
	}
	ctx := vm.bindParams(params)
	vm.frames = append(vm.frames, vm.ip)
	vm.contexts = append(vm.contexts, ctx)
	vm.ip = entry
	return nil
}

func (vm *VM) bindParams(params []string) *Context {
	ctx := NewContext()
	for i, p := range params {
		if i < len(vm.pendingArgs) {
			ctx.Vars[p] = vm.pendingArgs[i]
		} else {
			ctx.Vars[p] = &Box{}
		}
	}
	vm.pendingArgs = vm.pendingArgs[:0]
	return ctx
}

func (vm *VM) loadArrayElem(instr bytecode.Instruction) *RuntimeError {
	indices, err := vm.popIndices(instr.Slot)
	if err != nil {
		return err
	}
	arrBox := vm.ctxFor(instr.Const).box(instr.Name)
	arr, ok := arrBox.V.(*variant.Array)
	if !ok {
		return rerrf(9, "%s is not an array", instr.Name)
	}
	offset, oerr := arr.Offset(indices)
	if oerr != nil {
		return wrapVariantErr(oerr)
	}
	vm.push(arr.Cells[offset])
	return nil
}

func (vm *VM) storeArrayElem(instr bytecode.Instruction) *RuntimeError {
	value := vm.pop()
	indices, err := vm.popIndices(instr.Slot)
	if err != nil {
		return err
	}
	arrBox := vm.ctxFor(instr.Const).box(instr.Name)
	arr, ok := arrBox.V.(*variant.Array)
	if !ok {
		return rerrf(9, "%s is not an array", instr.Name)
	}
	offset, oerr := arr.Offset(indices)
	if oerr != nil {
		return wrapVariantErr(oerr)
	}
	arr.Cells[offset] = value
	return nil
}

// popIndices pops n subscripts, reversing them back into declaration
// order (the expression walk pushed index 0 first, so it sits deepest).
func (vm *VM) popIndices(n int) ([]int, *RuntimeError) {
	indices := make([]int, n)
	for i := n - 1; i >= 0; i-- {
		v := vm.pop()
		idx, ok := toIndex(v)
		if !ok {
			return nil, rerrf(13, "array subscript must be numeric")
		}
		indices[i] = idx
	}
	return indices, nil
}

func toIndex(v variant.Value) (int, bool) {
	switch t := v.(type) {
	case variant.Integer:
		return int(t), true
	case variant.Long:
		return int(t), true
	case variant.Single:
		return int(t), true
	case variant.Double:
		return int(t), true
	}
	return 0, false
}

// zeroForName falls back to a suffix-derived default for a variable
// read before its first store — codegen's DIM lowering always stores a
// zero value ahead of any read for declared variables, so this path
// only matters for a bare, undeclared reference.
func zeroForName(name string) variant.Value {
	if len(name) == 0 {
		return variant.Integer(0)
	}
	if k, ok := variant.KindForSuffix(name[len(name)-1]); ok {
		return variant.Zero(k)
	}
	return variant.Integer(0)
}
