package linter_test

import (
	"testing"

	"github.com/ngeor/gobasic/internal/lexer"
	"github.com/ngeor/gobasic/internal/linter"
	"github.com/ngeor/gobasic/internal/parser"
)

func errKind(t *testing.T, errs []error, i int) linter.ErrKind {
	t.Helper()
	le, ok := errs[i].(*linter.Error)
	if !ok {
		t.Fatalf("error %d is %T, not *linter.Error", i, errs[i])
	}
	return le.Kind
}

func lint(t *testing.T, source string) (ok bool, errs []error) {
	t.Helper()
	tokens := lexer.New(source).Scan()
	p := parser.New(tokens)
	prog := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	typedProg, errs := linter.Lint(prog)
	return typedProg != nil && len(errs) == 0, errs
}

func TestLintAcceptsWellTypedProgram(t *testing.T) {
	ok, errs := lint(t, "X% = 1\nY% = X% + 2\nPRINT Y%\n")
	if !ok {
		t.Fatalf("expected no lint errors, got %v", errs)
	}
}

func TestLintRejectsTypeMismatch(t *testing.T) {
	ok, errs := lint(t, "DIM X AS INTEGER\nX = \"hello\"\n")
	if ok {
		t.Fatal("expected a type mismatch error assigning a string to an INTEGER")
	}
	if len(errs) == 0 {
		t.Fatal("expected at least one error")
	}
}

func TestLintRejectsUndeclaredSubCall(t *testing.T) {
	ok, _ := lint(t, "CALL UNDEFINEDSUB(1, 2)\n")
	if ok {
		t.Fatal("expected an error calling an undeclared SUB")
	}
}

func TestLintResolvesSharedGlobalAcrossSub(t *testing.T) {
	source := "DIM SHARED TOTAL AS INTEGER\nTOTAL = 1\nCALL BUMP\nPRINT TOTAL\nSUB BUMP\n" +
		"SHARED TOTAL AS INTEGER\nTOTAL = TOTAL + 1\nEND SUB\n"
	ok, errs := lint(t, source)
	if !ok {
		t.Fatalf("expected SHARED global resolution to succeed, got %v", errs)
	}
}

func TestLintRejectsMismatchedNextVariable(t *testing.T) {
	ok, errs := lint(t, "FOR I% = 1 TO 3\nPRINT I%\nNEXT J\n")
	if ok {
		t.Fatal("expected a NextWithoutFor error for a mismatched NEXT variable")
	}
	if got := errKind(t, errs, 0); got != linter.NextWithoutFor {
		t.Fatalf("expected NextWithoutFor, got %v", got)
	}
	le := errs[0].(*linter.Error)
	if le.At.Row != 3 || le.At.Col != 6 {
		t.Fatalf("expected error at row 3 col 6, got %s", le.At)
	}
}

func TestLintAcceptsMatchingNextVariable(t *testing.T) {
	ok, errs := lint(t, "FOR I% = 1 TO 3\nPRINT I%\nNEXT I%\n")
	if !ok {
		t.Fatalf("expected a matching NEXT variable to lint cleanly, got %v", errs)
	}
}

func TestLintRejectsDuplicateLabel(t *testing.T) {
	ok, errs := lint(t, "PRINT \"hi\"\nAlpha:\nPRINT \"one\"\nAlpha:\nPRINT \"two\"\n")
	if ok {
		t.Fatal("expected a DuplicateLabel error")
	}
	found := false
	for i := range errs {
		if errKind(t, errs, i) == linter.DuplicateLabel {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DuplicateLabel error, got %v", errs)
	}
}

func TestLintRejectsUndefinedGotoLabel(t *testing.T) {
	ok, errs := lint(t, "GOTO Nowhere\n")
	if ok {
		t.Fatal("expected a LabelNotDefined error")
	}
	if got := errKind(t, errs, 0); got != linter.LabelNotDefined {
		t.Fatalf("expected LabelNotDefined, got %v", got)
	}
}

func TestLintRejectsGotoLabelInDifferentScope(t *testing.T) {
	source := "GOTO Alpha\nSUB Test\nAlpha:\nPRINT \"hi\"\nEND SUB\n"
	ok, errs := lint(t, source)
	if ok {
		t.Fatal("expected GOTO into a SUB's local label to fail")
	}
	if got := errKind(t, errs, 0); got != linter.LabelNotDefined {
		t.Fatalf("expected LabelNotDefined, got %v", got)
	}
}

func TestLintAcceptsRedimOfFreshName(t *testing.T) {
	ok, errs := lint(t, "REDIM Y(10) AS INTEGER\n")
	if !ok {
		t.Fatalf("expected REDIM of a never-declared name to succeed, got %v", errs)
	}
}

func TestLintAcceptsRedimAfterDim(t *testing.T) {
	ok, errs := lint(t, "DIM A(1 TO 2) AS INTEGER\nA(1) = 7\nREDIM A(1 TO 3) AS INTEGER\nPRINT A(1)\n")
	if !ok {
		t.Fatalf("expected REDIM of a matching-rank DIM'd array to succeed, got %v", errs)
	}
}

func TestLintAcceptsRedimAfterRedim(t *testing.T) {
	ok, errs := lint(t, "REDIM X(5) AS INTEGER\nREDIM X(10) AS INTEGER\n")
	if !ok {
		t.Fatalf("expected REDIM after REDIM to succeed, got %v", errs)
	}
}

func TestLintRejectsRedimRankMismatch(t *testing.T) {
	ok, errs := lint(t, "DIM X(5) AS INTEGER\nREDIM X(5, 5) AS INTEGER\n")
	if ok {
		t.Fatal("expected REDIM with a different rank to fail")
	}
	if got := errKind(t, errs, 0); got != linter.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", got)
	}
}

func TestLintRejectsRedimOfScalar(t *testing.T) {
	ok, errs := lint(t, "DIM Z AS INTEGER\nREDIM Z(5) AS INTEGER\n")
	if ok {
		t.Fatal("expected REDIM of a scalar name to fail")
	}
	if got := errKind(t, errs, 0); got != linter.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", got)
	}
}

func TestLintRejectsSelectCaseTypeMismatch(t *testing.T) {
	source := "DIM N AS INTEGER\nSELECT CASE N\nCASE \"x\"\nPRINT \"no\"\nEND SELECT\n"
	ok, errs := lint(t, source)
	if ok {
		t.Fatal("expected a TypeMismatch error for a string CASE on a numeric SELECT")
	}
	if got := errKind(t, errs, 0); got != linter.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", got)
	}
}

func TestLintRejectsPrintRecordArgument(t *testing.T) {
	source := "TYPE Point\nX AS INTEGER\nEND TYPE\nDIM P AS Point\nPRINT P\n"
	ok, errs := lint(t, source)
	if ok {
		t.Fatal("expected PRINT of a record value to fail")
	}
	if got := errKind(t, errs, 0); got != linter.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", got)
	}
}

func TestLintRejectsPrintUsingNonStringFormat(t *testing.T) {
	source := "DIM F AS INTEGER\nPRINT USING F; 1\n"
	ok, errs := lint(t, source)
	if ok {
		t.Fatal("expected PRINT USING with a non-string format to fail")
	}
	if got := errKind(t, errs, 0); got != linter.TypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", got)
	}
}
