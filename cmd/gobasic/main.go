// Command gobasic runs one BASIC source file through the full
// lex → parse → lint → codegen → interpret pipeline. Grounded on the
// teacher's cmd/sentra/main.go: check os.Args against a small literal
// set first, then do the real work, reporting the first failure from
// whichever stage hit it with a one-line diagnostic on stderr.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/ngeor/gobasic/internal/codegen"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/lexer"
	"github.com/ngeor/gobasic/internal/linter"
	"github.com/ngeor/gobasic/internal/parser"
	"github.com/ngeor/gobasic/internal/vm"
)

const version = "gobasic 0.1.0"

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Println(version)
			return
		case "--help", "-h":
			fmt.Fprintln(os.Stderr, "usage: gobasic <source-file.bas>")
			return
		}
	}

	path, err := resolveSourcePath(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		log.Printf("gobasic: could not load %s: %v", path, err)
		os.Exit(2)
	}

	if derr := run(path, string(source)); derr != nil {
		fmt.Fprintln(os.Stderr, derr.Error())
		os.Exit(1)
	}
}

// resolveSourcePath implements spec.md §6's override rule: when the
// host signals it's running under a web server (SERVER_NAME non-empty
// — the usual "no controlling terminal" case), BLR_PROGRAM (optionally
// REDIRECT_-prefixed) replaces the positional argument.
func resolveSourcePath(args []string) (string, error) {
	if os.Getenv("SERVER_NAME") != "" {
		if p := firstNonEmpty(os.Getenv("BLR_PROGRAM"), os.Getenv("REDIRECT_BLR_PROGRAM")); p != "" {
			return p, nil
		}
	}
	if len(args) < 2 {
		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return "", fmt.Errorf("gobasic: no source file given and BLR_PROGRAM is not set")
		}
		return "", fmt.Errorf("usage: gobasic <source-file.bas>")
	}
	return args[1], nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func run(path, source string) *diag.Error {
	sessionID := uuid.New().String()

	tokens := lexer.New(source).Scan()

	p := parser.New(tokens)
	prog := p.Parse()
	if len(p.Errors) > 0 {
		return diag.New(diag.StageParse, nil, p.Errors[0].Error(), diag.Pos{}).WithFile(path)
	}

	typed, errs := linter.Lint(prog)
	if len(errs) > 0 {
		return diag.New(diag.StageLint, nil, errs[0].Error(), diag.Pos{}).WithFile(path)
	}

	chunk, err := codegen.Generate(typed)
	if err != nil {
		return diag.New(diag.StageCodegen, nil, err.Error(), diag.Pos{}).WithFile(path)
	}

	interp := vm.New(chunk, os.Stdout, os.Stdin)
	interp.SessionID(sessionID)
	if derr := interp.Run(); derr != nil {
		return derr.WithFile(path)
	}
	return nil
}
