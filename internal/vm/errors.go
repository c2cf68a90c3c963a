package vm

import (
	"fmt"

	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/variant"
)

// RuntimeError is the interpreter's closed-ish error shape: Num is the
// classic QBasic runtime error number (the numbers ON ERROR GOTO's ERR
// builtin reports, e.g. 11 for division by zero), Message is the
// human-readable rendering diag.Error wraps.
type RuntimeError struct {
	Num     int
	Message string
}

func (e *RuntimeError) Error() string  { return e.Message }
func (e *RuntimeError) String() string { return e.Message }

func rerrf(num int, format string, args ...any) *RuntimeError {
	return &RuntimeError{Num: num, Message: fmt.Sprintf(format, args...)}
}

// wrapVariantErr maps internal/variant's small error-code family (and
// Array's subscript error) to a RuntimeError with the matching
// standard error number.
func wrapVariantErr(err error) *RuntimeError {
	switch err {
	case variant.ErrTypeMismatch:
		return &RuntimeError{Num: 13, Message: "Type mismatch"}
	case variant.ErrDivisionByZero:
		return &RuntimeError{Num: 11, Message: "Division by zero"}
	case variant.ErrOverflow:
		return &RuntimeError{Num: 6, Message: "Overflow"}
	}
	if _, ok := err.(*variant.ErrSubscriptOutOfRange); ok {
		return &RuntimeError{Num: 9, Message: err.Error()}
	}
	return &RuntimeError{Num: 5, Message: err.Error()}
}

func toDiagPos(p bytecode.Pos) diag.Pos { return diag.Pos{Row: p.Row, Col: p.Col} }

func (vm *VM) diagError(err *RuntimeError, pos bytecode.Pos) *diag.Error {
	return diag.New(diag.StageInterpret, err, err.Message, toDiagPos(pos))
}
