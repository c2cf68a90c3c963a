// Package linter is the linter/converter (component C): walks every
// subprogram body and every global statement, rewriting the raw
// internal/ast tree into internal/typed, enforcing name/type
// resolution and the closed LintError set. No direct teacher analogue
// (the teacher has no static linter pass); the LintError variant set
// is grounded on original_source/rusty_linter/src/error.rs's LintError
// enum, carried over near one-for-one since spec.md §4.C names the
// same ~25 variants explicitly.
package linter

import (
	"fmt"

	"github.com/ngeor/gobasic/internal/diag"
)

type ErrKind int

const (
	ArgumentCountMismatch ErrKind = iota
	ArgumentTypeMismatch
	DuplicateDefinition
	DuplicateLabel
	InvalidConstant
	LabelNotDefined
	TypeMismatch
	TypeNotDefined
	VariableRequired
	WrongNumberOfDimensions
	OutOfStringSpace
	Overflow
	NextWithoutFor
	IllegalInSubFunction
	IllegalOutsideSubFunction
	DotClash
	SubprogramNotDefined
	ArrayAlreadyDimensioned
	ArrayNotDefined
	ElementNotDefined
	FunctionNeedsArguments
	DivisionByZero
	NotFiniteNumber
	ParserError
)

var kindNames = [...]string{
	"ArgumentCountMismatch", "ArgumentTypeMismatch", "DuplicateDefinition",
	"DuplicateLabel", "InvalidConstant", "LabelNotDefined", "TypeMismatch",
	"TypeNotDefined", "VariableRequired", "WrongNumberOfDimensions",
	"OutOfStringSpace", "Overflow", "NextWithoutFor", "IllegalInSubFunction",
	"IllegalOutsideSubFunction", "DotClash", "SubprogramNotDefined",
	"ArrayAlreadyDimensioned", "ArrayNotDefined", "ElementNotDefined",
	"FunctionNeedsArguments", "DivisionByZero", "NotFiniteNumber", "ParserError",
}

func (k ErrKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "LintError"
}

// Error is the one closed error type the linter raises, always
// positioned, matching spec.md §4.C: "Every error carries a source
// position."
type Error struct {
	Kind    ErrKind
	Message string
	At      diag.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s at %s", e.Kind, e.Message, e.At)
}

func newErr(kind ErrKind, at diag.Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), At: at}
}
