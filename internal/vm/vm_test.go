package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/variant"
)

func newTestVM(chunk *bytecode.Chunk, stdin string) (*VM, *bytes.Buffer) {
	var out bytes.Buffer
	return New(chunk, &out, strings.NewReader(stdin)), &out
}

func TestArithmeticOps(t *testing.T) {
	tests := []struct {
		name     string
		op       bytecode.Op
		a, b     variant.Value
		expected variant.Value
	}{
		{"add", bytecode.OpAdd, variant.Integer(10), variant.Integer(20), variant.Integer(30)},
		{"sub", bytecode.OpSub, variant.Integer(50), variant.Integer(20), variant.Integer(30)},
		{"mul", bytecode.OpMul, variant.Integer(5), variant.Integer(6), variant.Integer(30)},
		{"idiv", bytecode.OpIDiv, variant.Integer(17), variant.Integer(5), variant.Integer(3)},
		{"mod", bytecode.OpMod, variant.Integer(17), variant.Integer(5), variant.Integer(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk := bytecode.NewChunk()
			chunk.AddConstant(tt.a)
			chunk.AddConstant(tt.b)
			chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 0})
			chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 1})
			chunk.Emit(bytecode.Instruction{Op: tt.op})
			chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

			v, _ := newTestVM(chunk, "")
			if derr := v.Run(); derr != nil {
				t.Fatalf("unexpected error: %v", derr)
			}
			got := v.pop()
			if got != tt.expected {
				t.Fatalf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestVariableLoadStoreRoundTrip(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.AddConstant(variant.Integer(42))
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "X%"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: "X%"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	v, _ := newTestVM(chunk, "")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := v.pop(); got != variant.Integer(42) {
		t.Fatalf("got %v, want 42", got)
	}
}

// TestJumpIfFalseSkipsBranch builds the equivalent of
// IF 0 THEN X% = 1 ELSE X% = 2, checking the false branch executes.
func TestJumpIfFalseSkipsBranch(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.AddConstant(variant.Integer(0))
	chunk.AddConstant(variant.Integer(1))
	chunk.AddConstant(variant.Integer(2))

	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 0}) // cond
	jumpIfFalse := chunk.Emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 1})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "X%"})
	jumpEnd := chunk.Emit(bytecode.Instruction{Op: bytecode.OpJump})
	elseStart := chunk.Here()
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 2})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "X%"})
	end := chunk.Here()
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	chunk.Patch(jumpIfFalse, bytecode.Target{IsAbs: true, Resolved: elseStart})
	chunk.Patch(jumpEnd, bytecode.Target{IsAbs: true, Resolved: end})

	v, _ := newTestVM(chunk, "")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := v.ctxFor(0).box("X%").V; got != variant.Integer(2) {
		t.Fatalf("got %v, want 2 (else branch)", got)
	}
}

func TestPrintItemAndEndWriteConsole(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.AddConstant(variant.NewString("HELLO"))
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "PRINT_ITEM", Flags: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "PRINT_END", Flags: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	v, out := newTestVM(chunk, "")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := out.String(); got != "HELLO\r\n" {
		t.Fatalf("got %q, want %q", got, "HELLO\r\n")
	}
}

func TestInputLineParsesDeclaredKinds(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_LINE", Slot: 2})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_FIELD", Slot: int(variant.KindInteger)})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "A%"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_FIELD", Slot: int(variant.KindString)})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "B$"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	v, _ := newTestVM(chunk, "7,hello\n")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := v.ctxFor(0).box("A%").V; got != variant.Integer(7) {
		t.Fatalf("A%% = %v, want 7", got)
	}
	if got := v.ctxFor(0).box("B$").V; got != variant.NewString("hello") {
		t.Fatalf("B$ = %v, want hello", got)
	}
}

func TestInputLineSemicolonSuppressesQuestionMark(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_LINE", Slot: 1, Flags: 1})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_FIELD", Slot: int(variant.KindInteger)})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "A%"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	v, out := newTestVM(chunk, "7\n")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := out.String(); strings.Contains(got, "?") {
		t.Fatalf("expected no question-mark prompt for INPUT;, got %q", got)
	}
}

func TestInputLineWithoutSuppressPrintsQuestionMark(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_LINE", Slot: 1, Flags: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_FIELD", Slot: int(variant.KindInteger)})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "A%"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	v, out := newTestVM(chunk, "7\n")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := out.String(); !strings.Contains(got, "? ") {
		t.Fatalf("expected a %q prompt for plain INPUT, got %q", "? ", got)
	}
}

// TestOnErrorGotoHandlesDivisionByZero builds:
//
//	ON ERROR GOTO handler
//	X% = 1 / 0
//	GOTO done
//	handler: Y% = 99 : RESUME done
//	done: HALT
func TestOnErrorGotoHandlesDivisionByZero(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.AddConstant(variant.Integer(1))
	chunk.AddConstant(variant.Integer(0))
	chunk.AddConstant(variant.Integer(99))

	chunk.Emit(bytecode.Instruction{Op: bytecode.OpSetErrorHandler, Name: "handler"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 1})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpDiv})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "X%"})
	jumpDone := chunk.Emit(bytecode.Instruction{Op: bytecode.OpJump})

	handlerIdx := chunk.Here()
	chunk.Labels["handler"] = handlerIdx
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 2})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: "Y%"})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpResume, Resume: bytecode.ResumeLabel, Name: "done"})

	doneIdx := chunk.Here()
	chunk.Labels["done"] = doneIdx
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	chunk.Patch(jumpDone, bytecode.Target{IsAbs: true, Resolved: doneIdx})

	v, _ := newTestVM(chunk, "")
	if derr := v.Run(); derr != nil {
		t.Fatalf("unexpected error: %v", derr)
	}
	if got := v.ctxFor(0).box("Y%").V; got != variant.Integer(99) {
		t.Fatalf("Y%% = %v, want 99 (handler ran)", got)
	}
	if v.ctxFor(0).box("X%").V != nil {
		t.Fatalf("X%% should never have been assigned, the faulting statement never completed")
	}
}

func TestUnhandledRuntimeErrorPropagates(t *testing.T) {
	chunk := bytecode.NewChunk()
	chunk.AddConstant(variant.Integer(1))
	chunk.AddConstant(variant.Integer(0))
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 0})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: 1})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpDiv})
	chunk.Emit(bytecode.Instruction{Op: bytecode.OpHalt})

	v, _ := newTestVM(chunk, "")
	derr := v.Run()
	if derr == nil {
		t.Fatal("expected a division-by-zero error")
	}
	if !strings.Contains(derr.Error(), "Division by zero") {
		t.Fatalf("got %q, want it to mention division by zero", derr.Error())
	}
}

func TestSessionIDSurfacedThroughEnvironDollar(t *testing.T) {
	chunk := bytecode.NewChunk()
	v, _ := newTestVM(chunk, "")
	v.SessionID("test-session-id")
	if got := v.environDollar("GOBASIC_SESSION"); got != "test-session-id" {
		t.Fatalf("got %q, want test-session-id", got)
	}
}
