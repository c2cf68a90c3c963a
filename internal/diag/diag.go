// Package diag implements the positioned-error envelope shared by every
// stage of the pipeline: the lexer, the parser, the pre-linter, the
// linter/converter and the interpreter all report failures through the
// same Error shape so the CLI can render them identically.
package diag

import (
	"fmt"
)

// Pos is a (row, column) source position, 1-based. Every AST node and
// every diagnostic carries one; it is used exclusively for error
// reporting and attribution, never for semantics.
type Pos struct {
	Row int
	Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

// Stage identifies which pipeline component raised the error.
type Stage string

const (
	StageLex        Stage = "SyntaxError"
	StageParse      Stage = "SyntaxError"
	StagePreLint    Stage = "CompileError"
	StageLint       Stage = "CompileError"
	StageCodegen    Stage = "CompileError"
	StageInterpret  Stage = "RuntimeError"
)

// Error is the common diagnostic envelope. Runtime errors wrap a
// concrete Kind (vm.RuntimeError) that carries the closed-set error
// code; parse, lint and codegen errors arrive with a nil Kind and their
// own text as Message, so Stage names them. Error itself only carries
// the position and the rendering.
type Error struct {
	Stage   Stage
	Kind    fmt.Stringer
	Message string
	At      Pos
	File    string
	// Sub is the name of the executing SUB/FUNCTION, if any, per the
	// §7 diagnostic contract ("the executing subprogram name").
	Sub string
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("%s:%s", e.File, e.At)
	if e.Sub != "" {
		loc = fmt.Sprintf("%s (in %s)", loc, e.Sub)
	}
	if e.Kind != nil {
		return fmt.Sprintf("%s: %s at %s", e.Kind.String(), e.Message, loc)
	}
	return fmt.Sprintf("%s: %s at %s", e.Stage, e.Message, loc)
}

// New builds a diagnostic at the given stage and position.
func New(stage Stage, kind fmt.Stringer, message string, at Pos) *Error {
	return &Error{Stage: stage, Kind: kind, Message: message, At: at}
}

// WithFile attaches the source file name, used when the CLI knows the
// path but the error was constructed deeper in the pipeline.
func (e *Error) WithFile(file string) *Error {
	e.File = file
	return e
}

// WithSub attaches the name of the subprogram executing when the error
// was raised.
func (e *Error) WithSub(sub string) *Error {
	e.Sub = sub
	return e
}
