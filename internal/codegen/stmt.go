package codegen

import (
	"github.com/ngeor/gobasic/internal/bytecode"
	"github.com/ngeor/gobasic/internal/typed"
	"github.com/ngeor/gobasic/internal/variant"
)

func integerZero() variant.Value { return variant.Integer(0) }

func stmtPos(s typed.Stmt) bytecode.Pos {
	p := s.Pos()
	return bytecode.Pos{Row: p.Row, Col: p.Col}
}

func (g *Generator) genBlock(body []typed.Stmt) {
	for _, s := range body {
		g.genStmt(s)
	}
}

func (g *Generator) VisitLabelStmt(s *typed.LabelStmt) error {
	g.emitLabel(g.scopedLabel(s.Name))
	return nil
}

func (g *Generator) VisitAssignStmt(s *typed.AssignStmt) error {
	g.genExpr(s.Value)
	g.emitStore(s.Target)
	return nil
}

// emitStore lowers an assignment target, which the linter guarantees is
// one of VarExpr/ArrayIndexExpr/FieldExpr, into the matching Store
// opcode; the value to store is already on top of the stack.
func (g *Generator) emitStore(target typed.Expr) {
	switch t := target.(type) {
	case *typed.VarExpr:
		g.emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: t.ResolvedName, Slot: scopeFlag(t.Scope), Pos: toPos(t)})
	case *typed.ArrayIndexExpr:
		for _, idx := range t.Indices {
			g.genExpr(idx)
		}
		g.emit(bytecode.Instruction{
			Op: bytecode.OpStoreArrayElem, Name: t.Array.ResolvedName,
			Slot: len(t.Indices), Const: scopeFlag(t.Array.Scope), Pos: toPos(t),
		})
	case *typed.FieldExpr:
		g.genExpr(t.Object)
		g.emit(bytecode.Instruction{Op: bytecode.OpStoreField, Name: t.Field, Pos: toPos(t)})
	default:
		g.fail(toPos(target), "unsupported assignment target")
	}
}

// VisitDimStmt materializes each declared variable's zero value as a
// constant (per variant.Zero's "function never assigns -> type's
// default" rule, reused here for DIM's initial value) and stores it —
// array and record cells are themselves built zeroed by
// variant.NewArray/NewZeroRecord, so a freshly DIMmed array or record
// starts with every element/field already at its own type's default.
func (g *Generator) VisitDimStmt(s *typed.DimStmt) error {
	for _, v := range s.Vars {
		zero := g.zeroValueFor(v)
		idx := g.chunk.AddConstant(zero)
		g.emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: idx, Pos: stmtPos(s)})
		g.emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: v.Name, Slot: boolToInt(v.Shared), Pos: stmtPos(s)})
	}
	return nil
}

func (g *Generator) zeroValueFor(v typed.DimVar) variant.Value {
	resolve := func(name string) *variant.RecordType { return g.types[name] }
	switch {
	case len(v.Dims) > 0:
		return variant.NewArray(v.Kind, v.TypeName, v.Dims, resolve)
	case v.Kind == variant.KindRecord:
		return variant.NewZeroRecord(resolve(v.TypeName), resolve)
	case v.Kind == variant.KindString && v.StrLen > 0:
		return variant.NewFixedString("", v.StrLen)
	default:
		return variant.Zero(v.Kind)
	}
}

// VisitIfStmt lowers IF/ELSEIF/ELSE via the teacher's jump-patch idiom
// (internal/compiler/stmt_compiler.go's VisitIfStmt): each branch emits
// its condition, a placeholder JumpIfFalse to the next branch, its
// body, and a placeholder Jump past every remaining branch to the
// statement's end; both placeholder kinds are patched once the real
// targets are known.
func (g *Generator) VisitIfStmt(s *typed.IfStmt) error {
	end := g.newSynthLabel("if_end")
	for _, br := range s.Branches {
		next := g.newSynthLabel("if_next")
		g.genExpr(br.Cond)
		g.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Target: bytecode.Target{Symbol: next}, Pos: stmtPos(s)})
		g.genBlock(br.Body)
		g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: bytecode.Target{Symbol: end}, Pos: stmtPos(s)})
		g.emitLabel(next)
	}
	g.genBlock(s.Else)
	g.emitLabel(end)
	return nil
}

// VisitForStmt lowers FOR/NEXT to a counted loop whose direction (step
// sign) is decided once per iteration from a stored step value, rather
// than assuming an ascending loop — STEP can be a negative runtime
// expression (spec.md §4.C), so the comparison operator can't be fixed
// at generation time the way a constant-step loop could.
func (g *Generator) VisitForStmt(s *typed.ForStmt) error {
	stepVar := g.newSynthVar("forstep")
	start := g.newSynthLabel("for_start")
	negCmp := g.newSynthLabel("for_neg")
	test := g.newSynthLabel("for_test")
	cont := g.newSynthLabel("for_cont")
	end := g.newSynthLabel("for_end")

	outerExit := g.forExit
	g.forExit = end
	defer func() { g.forExit = outerExit }()

	g.genExpr(s.Start)
	g.emitStore(s.Counter)
	g.genExpr(s.Step)
	g.emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: stepVar, Pos: stmtPos(s)})

	g.emitLabel(start)
	// direction := step >= 0
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: stepVar, Pos: stmtPos(s)})
	zero := g.chunk.AddConstant(zeroValue)
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadConst, Const: zero, Pos: stmtPos(s)})
	g.emit(bytecode.Instruction{Op: bytecode.OpGe, Pos: stmtPos(s)})
	g.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Target: bytecode.Target{Symbol: negCmp}, Pos: stmtPos(s)})
	g.genExpr(s.Counter)
	g.genExpr(s.Stop)
	g.emit(bytecode.Instruction{Op: bytecode.OpLe, Pos: stmtPos(s)})
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: bytecode.Target{Symbol: test}, Pos: stmtPos(s)})
	g.emitLabel(negCmp)
	g.genExpr(s.Counter)
	g.genExpr(s.Stop)
	g.emit(bytecode.Instruction{Op: bytecode.OpGe, Pos: stmtPos(s)})
	g.emitLabel(test)
	g.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Target: bytecode.Target{Symbol: end}, Pos: stmtPos(s)})

	g.genBlock(s.Body)

	g.emitLabel(cont)
	g.genExpr(s.Counter)
	g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: stepVar, Pos: stmtPos(s)})
	g.emit(bytecode.Instruction{Op: bytecode.OpAdd, Pos: stmtPos(s)})
	g.emitStore(s.Counter)
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: bytecode.Target{Symbol: start}, Pos: stmtPos(s)})
	g.emitLabel(end)
	return nil
}

// zeroValue is the Integer 0 that VisitForStmt compares the step
// against to pick the loop's direction.
var zeroValue = integerZero()

func (g *Generator) VisitWhileStmt(s *typed.WhileStmt) error {
	start := g.newSynthLabel("while_start")
	end := g.newSynthLabel("while_end")
	g.emitLabel(start)
	g.genExpr(s.Cond)
	g.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Target: bytecode.Target{Symbol: end}, Pos: stmtPos(s)})
	g.genBlock(s.Body)
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: bytecode.Target{Symbol: start}, Pos: stmtPos(s)})
	g.emitLabel(end)
	return nil
}

// VisitSelectCaseStmt evaluates the selector once into a synthetic
// temporary, then lowers every CASE clause into a chain of comparisons
// against that temporary — CaseSimple tests equality, CaseIs applies
// its relational operator, CaseRange tests an inclusive bound — ORed
// together within a clause, jump-patched past the clause on failure.
func (g *Generator) VisitSelectCaseStmt(s *typed.SelectCaseStmt) error {
	selVar := g.newSynthVar("select")
	g.genExpr(s.Select)
	g.emit(bytecode.Instruction{Op: bytecode.OpStoreVar, Name: selVar, Pos: stmtPos(s)})

	end := g.newSynthLabel("select_end")
	for _, clause := range s.Cases {
		nextClause := g.newSynthLabel("case_next")
		for i, t := range clause.Tests {
			g.emitCaseTest(selVar, t, stmtPos(s))
			if i > 0 {
				g.emit(bytecode.Instruction{Op: bytecode.OpOr, Pos: stmtPos(s)})
			}
		}
		g.emit(bytecode.Instruction{Op: bytecode.OpJumpIfFalse, Target: bytecode.Target{Symbol: nextClause}, Pos: stmtPos(s)})
		g.genBlock(clause.Body)
		g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: bytecode.Target{Symbol: end}, Pos: stmtPos(s)})
		g.emitLabel(nextClause)
	}
	g.genBlock(s.CaseElse)
	g.emitLabel(end)
	return nil
}

func (g *Generator) emitCaseTest(selVar string, t typed.CaseTest, pos bytecode.Pos) {
	switch tt := t.(type) {
	case typed.CaseSimple:
		g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: selVar, Pos: pos})
		g.genExpr(tt.Value)
		g.emit(bytecode.Instruction{Op: bytecode.OpEq, Pos: pos})
	case typed.CaseIs:
		g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: selVar, Pos: pos})
		g.genExpr(tt.Value)
		op, ok := binOps[tt.Op]
		if !ok {
			g.fail(pos, "unsupported CASE IS operator %q", tt.Op)
			return
		}
		g.emit(bytecode.Instruction{Op: op, Pos: pos})
	case typed.CaseRange:
		g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: selVar, Pos: pos})
		g.genExpr(tt.From)
		g.emit(bytecode.Instruction{Op: bytecode.OpGe, Pos: pos})
		g.emit(bytecode.Instruction{Op: bytecode.OpLoadVar, Name: selVar, Pos: pos})
		g.genExpr(tt.To)
		g.emit(bytecode.Instruction{Op: bytecode.OpLe, Pos: pos})
		g.emit(bytecode.Instruction{Op: bytecode.OpAnd, Pos: pos})
	}
}

func (g *Generator) VisitGotoStmt(s *typed.GotoStmt) error {
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Name: g.scopedLabel(s.Label), Pos: stmtPos(s)})
	return nil
}

// VisitGosubStmt pushes a call context carrying the return point (the
// instruction right after this GOSUB) before jumping, so RETURN can
// pop it; the return point is itself a synthetic label resolved in the
// same pass as every other jump target.
func (g *Generator) VisitGosubStmt(s *typed.GosubStmt) error {
	ret := g.newSynthLabel("gosub_ret")
	g.emit(bytecode.Instruction{Op: bytecode.OpPushCallContext, Target: bytecode.Target{Symbol: ret}, Pos: stmtPos(s)})
	g.emit(bytecode.Instruction{Op: bytecode.OpJump, Name: g.scopedLabel(s.Label), Pos: stmtPos(s)})
	g.emitLabel(ret)
	return nil
}

func (g *Generator) VisitReturnStmt(s *typed.ReturnStmt) error {
	g.emit(bytecode.Instruction{Op: bytecode.OpPopCallContext, Pos: stmtPos(s)})
	return nil
}

func (g *Generator) VisitOnErrorGotoStmt(s *typed.OnErrorGotoStmt) error {
	if s.Zero {
		g.emit(bytecode.Instruction{Op: bytecode.OpClearErrorHandler, Pos: stmtPos(s)})
		return nil
	}
	g.emit(bytecode.Instruction{Op: bytecode.OpSetErrorHandler, Name: g.scopedLabel(s.Label), Pos: stmtPos(s)})
	return nil
}

func (g *Generator) VisitResumeStmt(s *typed.ResumeStmt) error {
	in := bytecode.Instruction{Op: bytecode.OpResume, Resume: bytecode.ResumeKind(s.Kind), Pos: stmtPos(s)}
	if s.Kind == typed.ResumeLabel {
		in.Name = g.scopedLabel(s.Label)
	}
	g.emit(in)
	return nil
}

func (g *Generator) VisitExitStmt(s *typed.ExitStmt) error {
	switch s.Kind {
	case typed.ExitSub:
		g.emit(bytecode.Instruction{Op: bytecode.OpReturn, Pos: stmtPos(s)})
	case typed.ExitFunction:
		g.emit(bytecode.Instruction{Op: bytecode.OpReturnValue, Pos: stmtPos(s)})
	case typed.ExitFor:
		// Resolved against the innermost enclosing FOR's end label by
		// the parser/linter leaving ExitStmt nested inside ForStmt.Body;
		// the generator reaches it only from within VisitForStmt's own
		// body walk, so the label is threaded via forExit.
		if g.forExit == "" {
			g.fail(stmtPos(s), "EXIT FOR outside a FOR loop")
			return nil
		}
		g.emit(bytecode.Instruction{Op: bytecode.OpJump, Target: bytecode.Target{Symbol: g.forExit}, Pos: stmtPos(s)})
	}
	return nil
}

// VisitPrintStmt emits one OpIoOp per printed item, each carrying its
// trailing separator (";" packs columns, "," advances to the next
// 14-column print zone, none — only possible on the last item — adds
// nothing and leaves the line ending to PRINT_END) —
// console.Writer consumes these one at a time rather than needing the
// whole argument list materialized, mirroring how PRINT streams output
// in the original interpreter rather than building a line buffer.
func (g *Generator) VisitPrintStmt(s *typed.PrintStmt) error {
	if s.Channel != nil {
		g.genExpr(s.Channel)
		g.emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "PRINT_CHANNEL", Pos: stmtPos(s)})
	}
	if s.Format != nil {
		g.genExpr(s.Format)
		g.emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "PRINT_USING", Pos: stmtPos(s)})
	}
	for _, a := range s.Args {
		g.genExpr(a.Value)
		g.emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "PRINT_ITEM", Flags: sepCode(a.Sep), Pos: stmtPos(s)})
	}
	g.emit(bytecode.Instruction{
		Op: bytecode.OpIoOp, Name: "PRINT_END",
		Flags: sepCode(s.Trailing)<<1 | boolToInt(s.Lprint),
		Pos:   stmtPos(s),
	})
	return nil
}

// sepCode maps a print separator byte to a small flag: 0 none (force
// newline), 1 ';', 2 ','.
func sepCode(b byte) int {
	switch b {
	case ';':
		return 1
	case ',':
		return 2
	default:
		return 0
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// VisitInputStmt splits one read line into len(s.Vars) tokens
// (INPUT_LINE), then converts and stores each token in declaration
// order: INPUT_FIELD carries the target's own Kind so the interpreter
// parses "3.14" against a numeric target and leaves a string target
// untouched, without codegen needing a separate CastTo pass.
func (g *Generator) VisitInputStmt(s *typed.InputStmt) error {
	if s.Channel != nil {
		g.genExpr(s.Channel)
		g.emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_CHANNEL", Pos: stmtPos(s)})
	}
	if s.Prompt != nil {
		g.genExpr(s.Prompt)
		g.emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_PROMPT", Pos: stmtPos(s)})
	}
	g.emit(bytecode.Instruction{
		Op: bytecode.OpIoOp, Name: "INPUT_LINE", Slot: len(s.Vars),
		Flags: boolToInt(s.LineInput)<<1 | boolToInt(s.SuppressQuestionMark),
		Pos:   stmtPos(s),
	})
	for _, target := range s.Vars {
		g.emit(bytecode.Instruction{Op: bytecode.OpIoOp, Name: "INPUT_FIELD", Slot: int(target.ResultKind()), Pos: stmtPos(s)})
		g.emitStore(target)
	}
	return nil
}

func (g *Generator) VisitDataStmt(s *typed.DataStmt) error {
	for _, v := range s.Values {
		g.chunk.AddData(v)
	}
	return nil
}

func (g *Generator) VisitReadStmt(s *typed.ReadStmt) error {
	for _, target := range s.Targets {
		g.emit(bytecode.Instruction{Op: bytecode.OpDataRead, Pos: stmtPos(s)})
		g.emitStore(target)
	}
	return nil
}

func (g *Generator) VisitCallSubStmt(s *typed.CallSubStmt) error {
	g.emitArgs(s.Args)
	g.emit(bytecode.Instruction{Op: bytecode.OpEnterSub, Name: s.Name, Pos: stmtPos(s)})
	return nil
}

func (g *Generator) VisitCallBuiltinStmt(s *typed.CallBuiltinStmt) error {
	for _, a := range s.Args {
		g.genExpr(a.Value)
	}
	g.emit(bytecode.Instruction{
		Op: bytecode.OpCallBuiltin, Slot: s.ID, Name: s.Name,
		Const: len(s.Args), Pos: stmtPos(s),
	})
	return nil
}

func (g *Generator) VisitExprStmt(s *typed.ExprStmt) error {
	g.genExpr(s.Value)
	g.emit(bytecode.Instruction{Op: bytecode.OpPop, Pos: stmtPos(s)})
	return nil
}

func (g *Generator) VisitEndStmt(s *typed.EndStmt) error {
	g.emit(bytecode.Instruction{Op: bytecode.OpHalt, Pos: stmtPos(s)})
	return nil
}
