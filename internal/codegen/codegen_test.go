package codegen_test

import (
	"testing"

	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/codegen"
	"github.com/ngeor/gobasic/internal/lexer"
	"github.com/ngeor/gobasic/internal/linter"
	"github.com/ngeor/gobasic/internal/parser"
)

// compile drives the full front end so codegen is exercised against
// real typed programs rather than hand-built typed.Program literals.
func compile(t *testing.T, source string) *bytecode.Chunk {
	t.Helper()
	tokens := lexer.New(source).Scan()
	p := parser.New(tokens)
	prog := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	typedProg, errs := linter.Lint(prog)
	if len(errs) > 0 {
		t.Fatalf("lint errors: %v", errs)
	}
	chunk, err := codegen.Generate(typedProg)
	if err != nil {
		t.Fatalf("codegen error: %v", err)
	}
	return chunk
}

func TestGenerateSimpleAssignmentEndsInHalt(t *testing.T) {
	chunk := compile(t, "X% = 1 + 2\n")
	if len(chunk.Code) == 0 {
		t.Fatal("expected a non-empty instruction stream")
	}
	last := chunk.Code[len(chunk.Code)-1]
	if last.Op != bytecode.OpHalt {
		t.Fatalf("last opcode = %v, want OpHalt", last.Op)
	}
}

func TestGenerateContainsNoUnresolvedLabels(t *testing.T) {
	source := "GOTO skip\nX% = 1\nskip:\nY% = 2\n"
	chunk := compile(t, source)
	for i, in := range chunk.Code {
		if bytecode.IsLabel(in) {
			t.Fatalf("instruction %d is still an unresolved label pseudo-op", i)
		}
	}
}

func TestGenerateForLoopEmitsBackwardJump(t *testing.T) {
	source := "FOR I% = 1 TO 3\nPRINT I%\nNEXT I%\n"
	chunk := compile(t, source)
	sawBackwardJump := false
	for i, in := range chunk.Code {
		if in.Op == bytecode.OpJump && in.Target.IsAbs && in.Target.Resolved < i {
			sawBackwardJump = true
		}
	}
	if !sawBackwardJump {
		t.Fatal("expected a backward jump closing the FOR loop")
	}
}

func TestGenerateFunctionCallWiresEntryAndReturnZero(t *testing.T) {
	source := "FUNCTION ADD% (A%, B%)\nADD% = A% + B%\nEND FUNCTION\nX% = ADD%(1, 2)\n"
	chunk := compile(t, source)
	if _, ok := chunk.FuncEntry["ADD"]; !ok {
		t.Fatal("expected FuncEntry to contain ADD")
	}
	if _, ok := chunk.FuncReturnZero["ADD"]; !ok {
		t.Fatal("expected FuncReturnZero to contain a zero value for ADD")
	}
	if params := chunk.FuncParams["ADD"]; len(params) != 2 {
		t.Fatalf("got %d params for ADD, want 2", len(params))
	}
}
