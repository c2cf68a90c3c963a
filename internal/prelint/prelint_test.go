package prelint

import (
	"testing"

	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/lexer"
	"github.com/ngeor/gobasic/internal/parser"
	"github.com/ngeor/gobasic/internal/variant"
)

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	toks := lexer.New(src).Scan()
	p := parser.New(toks)
	prog := p.Parse()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	return prog
}

func TestCollectsConstants(t *testing.T) {
	prog := parseProgram(t, "CONST PI = 3\nCONST TWICE = PI * 2\n")
	res, errs := Run(prog, variant.CaseFold)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	v, ok := res.Consts["TWICE"]
	if !ok {
		t.Fatal("TWICE not collected")
	}
	if v.String() != "6" {
		t.Errorf("TWICE = %s, want 6", v.String())
	}
}

func TestDuplicateSubDefinition(t *testing.T) {
	prog := parseProgram(t, "SUB Foo\nEND SUB\nSUB Foo\nEND SUB\n")
	_, errs := Run(prog, variant.CaseFold)
	if len(errs) == 0 {
		t.Fatal("expected DuplicateDefinition error")
	}
}

func TestDoesNotDescendIntoSubBodies(t *testing.T) {
	prog := parseProgram(t, "SUB Foo\nCONST X = 1\nEND SUB\n")
	res, errs := Run(prog, variant.CaseFold)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := res.Consts["X"]; ok {
		t.Error("pre-linter must not collect constants declared inside a SUB body")
	}
}
