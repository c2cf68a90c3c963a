package typed

import (
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/variant"
)

type Stmt interface {
	Pos() diag.Pos
	Accept(v StmtVisitor) error
}

type StmtVisitor interface {
	VisitLabelStmt(*LabelStmt) error
	VisitAssignStmt(*AssignStmt) error
	VisitDimStmt(*DimStmt) error
	VisitIfStmt(*IfStmt) error
	VisitForStmt(*ForStmt) error
	VisitWhileStmt(*WhileStmt) error
	VisitSelectCaseStmt(*SelectCaseStmt) error
	VisitGotoStmt(*GotoStmt) error
	VisitGosubStmt(*GosubStmt) error
	VisitReturnStmt(*ReturnStmt) error
	VisitOnErrorGotoStmt(*OnErrorGotoStmt) error
	VisitResumeStmt(*ResumeStmt) error
	VisitExitStmt(*ExitStmt) error
	VisitPrintStmt(*PrintStmt) error
	VisitInputStmt(*InputStmt) error
	VisitDataStmt(*DataStmt) error
	VisitReadStmt(*ReadStmt) error
	VisitCallSubStmt(*CallSubStmt) error
	VisitCallBuiltinStmt(*CallBuiltinStmt) error
	VisitExprStmt(*ExprStmt) error
	VisitEndStmt(*EndStmt) error
}

type sbase struct{ At diag.Pos }

func (b sbase) Pos() diag.Pos { return b.At }

// Program is the fully-linted top-level unit: global statements plus
// the collected subprogram and type tables the generator needs for its
// two-pass (collect signatures, then compile bodies) lowering.
type Program struct {
	Global    []Stmt
	Functions map[string]*FunctionDecl
	Subs      map[string]*SubDecl
	Types     map[string]*variant.RecordType
}

type ParamSlot struct {
	Name    string
	Kind    variant.Kind
	ByRef   bool
	IsArray bool
}

type FunctionDecl struct {
	Name   string
	Kind   variant.Kind
	Params []ParamSlot
	Body   []Stmt
	At     diag.Pos
}

type SubDecl struct {
	Name   string
	Params []ParamSlot
	Body   []Stmt
	At     diag.Pos
}

type LabelStmt struct {
	sbase
	Name string
}

func (s *LabelStmt) Accept(v StmtVisitor) error { return v.VisitLabelStmt(s) }

// AssignStmt is a resolved assignment; Target is a VarExpr,
// ArrayIndexExpr, or FieldExpr, and Value has already been cast to the
// target's kind (wrapped in a CastExpr if narrowing was needed).
type AssignStmt struct {
	sbase
	Target Expr
	Value  Expr
}

func (s *AssignStmt) Accept(v StmtVisitor) error { return v.VisitAssignStmt(s) }

type DimVar struct {
	Name     string
	Kind     variant.Kind
	TypeName string
	StrLen   int
	Dims     []variant.Dim
	Shared   bool
	Redim    bool
}

type DimStmt struct {
	sbase
	Vars []DimVar
}

func (s *DimStmt) Accept(v StmtVisitor) error { return v.VisitDimStmt(s) }

type IfBranch struct {
	Cond Expr
	Body []Stmt
}

type IfStmt struct {
	sbase
	Branches []IfBranch
	Else     []Stmt
}

func (s *IfStmt) Accept(v StmtVisitor) error { return v.VisitIfStmt(s) }

type ForStmt struct {
	sbase
	Counter           *VarExpr
	Start, Stop, Step Expr
	Body              []Stmt
}

func (s *ForStmt) Accept(v StmtVisitor) error { return v.VisitForStmt(s) }

type WhileStmt struct {
	sbase
	Cond Expr
	Body []Stmt
}

func (s *WhileStmt) Accept(v StmtVisitor) error { return v.VisitWhileStmt(s) }

type CaseTest interface{ isCaseTest() }

type CaseSimple struct{ Value Expr }

func (CaseSimple) isCaseTest() {}

type CaseIs struct {
	Op    string
	Value Expr
}

func (CaseIs) isCaseTest() {}

type CaseRange struct{ From, To Expr }

func (CaseRange) isCaseTest() {}

type CaseClause struct {
	Tests []CaseTest
	Body  []Stmt
}

type SelectCaseStmt struct {
	sbase
	Select   Expr
	Cases    []CaseClause
	CaseElse []Stmt
}

func (s *SelectCaseStmt) Accept(v StmtVisitor) error { return v.VisitSelectCaseStmt(s) }

type GotoStmt struct {
	sbase
	Label string
}

func (s *GotoStmt) Accept(v StmtVisitor) error { return v.VisitGotoStmt(s) }

type GosubStmt struct {
	sbase
	Label string
}

func (s *GosubStmt) Accept(v StmtVisitor) error { return v.VisitGosubStmt(s) }

type ReturnStmt struct{ sbase }

func (s *ReturnStmt) Accept(v StmtVisitor) error { return v.VisitReturnStmt(s) }

type OnErrorGotoStmt struct {
	sbase
	Label string
	Zero  bool
}

func (s *OnErrorGotoStmt) Accept(v StmtVisitor) error { return v.VisitOnErrorGotoStmt(s) }

type ResumeKind int

const (
	ResumeBare ResumeKind = iota
	ResumeNext
	ResumeLabel
)

type ResumeStmt struct {
	sbase
	Kind  ResumeKind
	Label string
}

func (s *ResumeStmt) Accept(v StmtVisitor) error { return v.VisitResumeStmt(s) }

type ExitKind int

const (
	ExitSub ExitKind = iota
	ExitFunction
	ExitFor
)

type ExitStmt struct {
	sbase
	Kind ExitKind
}

func (s *ExitStmt) Accept(v StmtVisitor) error { return v.VisitExitStmt(s) }

type PrintArg struct {
	Value Expr
	Sep   byte
}

type PrintStmt struct {
	sbase
	Channel  Expr
	Lprint   bool
	Format   Expr
	Args     []PrintArg
	Trailing byte
}

func (s *PrintStmt) Accept(v StmtVisitor) error { return v.VisitPrintStmt(s) }

type InputStmt struct {
	sbase
	Channel              Expr
	LineInput            bool
	Prompt               Expr
	SuppressQuestionMark bool
	Vars                 []Expr
}

func (s *InputStmt) Accept(v StmtVisitor) error { return v.VisitInputStmt(s) }

type DataStmt struct {
	sbase
	Values []variant.Value
}

func (s *DataStmt) Accept(v StmtVisitor) error { return v.VisitDataStmt(s) }

type ReadStmt struct {
	sbase
	Targets []Expr
}

func (s *ReadStmt) Accept(v StmtVisitor) error { return v.VisitReadStmt(s) }

// CallSubStmt is a resolved call to a user-defined SUB.
type CallSubStmt struct {
	sbase
	Name string
	Args []Arg
}

func (s *CallSubStmt) Accept(v StmtVisitor) error { return v.VisitCallSubStmt(s) }

// CallBuiltinStmt is a resolved call to a built-in sub (PRINT's
// siblings: CLS, COLOR, OPEN, ...). PRINT/INPUT/DATA/READ get their own
// node types above since their argument shapes are irregular; every
// other built-in sub funnels through here with ID the linter assigned.
type CallBuiltinStmt struct {
	sbase
	ID   int
	Name string
	Args []Arg
}

func (s *CallBuiltinStmt) Accept(v StmtVisitor) error { return v.VisitCallBuiltinStmt(s) }

type ExprStmt struct {
	sbase
	Value Expr
}

func (s *ExprStmt) Accept(v StmtVisitor) error { return v.VisitExprStmt(s) }

type EndStmt struct {
	sbase
	System bool
}

func (s *EndStmt) Accept(v StmtVisitor) error { return v.VisitEndStmt(s) }
