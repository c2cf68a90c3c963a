// Package codegen is the instruction generator (component D): walks
// internal/typed via its Accept(Visitor) hierarchy and lowers it to a
// flat internal/bytecode.Chunk. Grounded on the teacher's
// internal/compiler/compiler.go (jump-patch If lowering),
// internal/compiler/stmt_compiler.go (statement-level jump-patch for
// While/For) and internal/compiler/hoisting_compiler.go's two-pass
// "collect signatures, then compile bodies" split — generalized here to
// name-indexed SUB/FUNCTION entries rather than hoisting_compiler's
// pre-assigned constant-pool slots, since internal/typed already
// resolved every call target by name during linting.
package codegen

import (
	"fmt"
	"strings"

	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/typed"
	"github.com/ngeor/gobasic/internal/variant"
)

// Generator lowers one typed.Program into one bytecode.Chunk. It
// implements both typed.ExprVisitor and typed.StmtVisitor itself — the
// generation state (current scope, synthetic name counter) is small
// enough that a single visitor suffices, the way the teacher's
// compiler.Compiler implements both visitor interfaces over one Chunk.
type Generator struct {
	chunk   *bytecode.Chunk
	types   map[string]*variant.RecordType
	scope   string // "" at global scope, else the enclosing SUB/FUNCTION name
	synth   int
	err     error
	forExit string // innermost enclosing FOR's end label, for EXIT FOR
}

// Generate runs the two-pass scheme: global code first, then every
// FUNCTION/SUB body, then a final pass resolving every symbolic jump
// target recorded along the way.
func Generate(prog *typed.Program) (*bytecode.Chunk, error) {
	g := &Generator{chunk: bytecode.NewChunk(), types: prog.Types}

	for _, st := range prog.Global {
		g.genStmt(st)
	}
	g.emit(bytecode.Instruction{Op: bytecode.OpHalt})

	for name, fn := range prog.Functions {
		g.scope = name
		g.chunk.FuncParams[name] = paramNames(fn.Params)
		g.chunk.FuncReturnVar[name] = variant.CaseFold(name) + "\x00"
		g.chunk.FuncReturnZero[name] = variant.Zero(fn.Kind)
		g.emitLabel(entryLabel("FN", name))
		for _, st := range fn.Body {
			g.genStmt(st)
		}
		g.emit(bytecode.Instruction{Op: bytecode.OpReturnValue})
	}
	for name, sub := range prog.Subs {
		g.scope = name
		g.chunk.SubParams[name] = paramNames(sub.Params)
		g.emitLabel(entryLabel("SUB", name))
		for _, st := range sub.Body {
			g.genStmt(st)
		}
		g.emit(bytecode.Instruction{Op: bytecode.OpReturn})
	}

	g.resolveLabels(prog)
	return g.chunk, g.err
}

func entryLabel(kind, name string) string { return "\x00" + kind + "\x00" + name }

func paramNames(params []typed.ParamSlot) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

func (g *Generator) fail(pos bytecode.Pos, format string, args ...any) {
	if g.err == nil {
		g.err = fmt.Errorf("codegen %d:%d: %s", pos.Row, pos.Col, fmt.Sprintf(format, args...))
	}
}

func (g *Generator) genExpr(e typed.Expr) { _ = e.Accept(g) }
func (g *Generator) genStmt(s typed.Stmt) { _ = s.Accept(g) }

func (g *Generator) emit(in bytecode.Instruction) int { return g.chunk.Emit(in) }

// emitLabel drops a pseudo Label instruction recording a symbolic
// jump's destination — consumed and erased by resolveLabels.
func (g *Generator) emitLabel(name string) { g.chunk.Emit(bytecode.Label(name)) }

// scopedLabel prefixes a user label with the enclosing subprogram's
// name so GOTO/GOSUB targets in different SUBs never collide — BASIC
// labels are local to their subprogram (spec.md §4.C's label scoping).
// These remain in Chunk.Labels after resolution for the interpreter's
// OpJump/PushCallContext-by-Name lookup.
func (g *Generator) scopedLabel(name string) string { return g.scope + "::" + strings.ToUpper(name) }

// newSynthLabel names an internal control-flow target (if/while/for/
// select-case branch points). The "@" prefix marks it as synthetic so
// resolveLabels folds it into an absolute Target rather than leaving it
// in the public Labels map the interpreter uses for user GOTO/GOSUB.
func (g *Generator) newSynthLabel(prefix string) string {
	g.synth++
	return fmt.Sprintf("@%s$%d", prefix, g.synth)
}

func (g *Generator) newSynthVar(prefix string) string {
	g.synth++
	return fmt.Sprintf("@%s$%d", prefix, g.synth)
}

func isSynthLabel(name string) bool { return strings.HasPrefix(name, "@") }

// resolveLabels runs the Design Notes' second pass: strip every pseudo
// Label instruction from the code stream, recording its final index,
// then rewrite every unresolved jump Target that named a synthetic
// symbol into an absolute index. Function/sub entry labels are folded
// into Chunk.FuncEntry/SubEntry; user label symbols are left in
// Chunk.Labels, keyed by name, for the interpreter's runtime GOTO/
// GOSUB/RESUME<label> lookup (Design Notes: "a label reference doesn't
// get erased to a raw jump... may be targeted from anywhere in scope").
func (g *Generator) resolveLabels(prog *typed.Program) {
	out := make([]bytecode.Instruction, 0, len(g.chunk.Code))
	index := map[string]int{}
	for _, in := range g.chunk.Code {
		if bytecode.IsLabel(in) {
			index[in.Target.Symbol] = len(out)
			continue
		}
		out = append(out, in)
	}
	for i := range out {
		t := out[i].Target
		if t.Symbol != "" && !t.IsAbs {
			if idx, ok := index[t.Symbol]; ok {
				out[i].Target = bytecode.Target{Resolved: idx, IsAbs: true}
			}
		}
	}
	g.chunk.Code = out

	for name := range prog.Functions {
		if idx, ok := index[entryLabel("FN", name)]; ok {
			g.chunk.FuncEntry[name] = idx
		}
		delete(index, entryLabel("FN", name))
	}
	for name := range prog.Subs {
		if idx, ok := index[entryLabel("SUB", name)]; ok {
			g.chunk.SubEntry[name] = idx
		}
		delete(index, entryLabel("SUB", name))
	}
	for name := range index {
		if isSynthLabel(name) {
			delete(index, name)
		}
	}
	g.chunk.Labels = index
}
