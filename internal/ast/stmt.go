package ast

import "github.com/ngeor/gobasic/internal/diag"

// Stmt is any raw statement node.
type Stmt interface {
	Pos() diag.Pos
	stmtNode()
}

type Base struct{ At diag.Pos }

func (b Base) Pos() diag.Pos { return b.At }

// Program is the top-level compilation unit: a flat list of global
// statements, with SUB/FUNCTION/TYPE/DECLARE/CONST declarations
// interleaved the way QBasic's source files actually look (a
// subprogram's body can appear anywhere relative to the main code, even
// though by convention it trails it).
type Program struct {
	Statements []Stmt
}

// Label marks a line-label or line-number position in the statement
// stream, the GOTO/GOSUB target unit.
type Label struct {
	Base
	Name string
}

func (*Label) stmtNode() {}

// LetStmt is an assignment, with or without a leading LET keyword.
// Target is a Name, Property, or IndexOrCall (array element).
type LetStmt struct {
	Base
	Target Expr
	Value  Expr
}

func (*LetStmt) stmtNode() {}

// ArrayDim is one dimension of a DIM/REDIM declaration.
type ArrayDim struct {
	Lower Expr // nil => default lower bound 0
	Upper Expr
}

// DimDecl is one name in a DIM/REDIM statement's comma-separated list.
type DimDecl struct {
	Name      string
	Qualifier byte
	AsType    string // "", or a built-in type name, or a user-defined TYPE name
	StringLen Expr   // STRING * n
	Dims      []ArrayDim
	Shared    bool
}

// DimStmt is DIM or REDIM.
type DimStmt struct {
	Base
	Redim bool
	Decls []DimDecl
}

func (*DimStmt) stmtNode() {}

// ConstStmt is CONST name[ = ]expr {, name = expr}.
type ConstStmt struct {
	Base
	Names      []string
	Qualifiers []byte
	Values     []Expr
}

func (*ConstStmt) stmtNode() {}

// TypeField is one field of a TYPE...END TYPE declaration.
type TypeField struct {
	Name      string
	AsType    string
	StringLen Expr
}

// TypeStmt is TYPE name ... END TYPE.
type TypeStmt struct {
	Base
	Name   string
	Fields []TypeField
}

func (*TypeStmt) stmtNode() {}

// ParamDecl is one SUB/FUNCTION/DECLARE parameter.
type ParamDecl struct {
	Name      string
	Qualifier byte
	AsType    string
	IsArray   bool
}

// SubStmt is SUB name(...) ... END SUB.
type SubStmt struct {
	Base
	Name   string
	Params []ParamDecl
	Body   []Stmt
}

func (*SubStmt) stmtNode() {}

// FunctionStmt is FUNCTION name(...) [AS type] ... END FUNCTION.
type FunctionStmt struct {
	Base
	Name      string
	Qualifier byte
	AsType    string
	Params    []ParamDecl
	Body      []Stmt
}

func (*FunctionStmt) stmtNode() {}

// DeclareStmt is a forward DECLARE SUB/DECLARE FUNCTION signature.
type DeclareStmt struct {
	Base
	IsFunction bool
	Name       string
	Qualifier  byte
	AsType     string
	Params     []ParamDecl
}

func (*DeclareStmt) stmtNode() {}

// IfBranch is one IF/ELSEIF arm.
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

// IfStmt covers both single-line and block IF/ELSEIF/ELSE/END IF.
type IfStmt struct {
	Base
	Branches []IfBranch
	Else     []Stmt
}

func (*IfStmt) stmtNode() {}

// ForStmt is FOR var = start TO stop [STEP step] ... NEXT [var].
type ForStmt struct {
	Base
	Var              string
	Qualifier        byte
	Start, Stop, Step Expr
	Body             []Stmt
	NextVar          string   // "" if NEXT had no operand
	NextVarPos       diag.Pos // position of NextVar, for NextWithoutFor reporting
}

func (*ForStmt) stmtNode() {}

// WhileStmt is WHILE cond ... WEND.
type WhileStmt struct {
	Base
	Cond Expr
	Body []Stmt
}

func (*WhileStmt) stmtNode() {}

// CaseTest is one test within a CASE clause: a simple value, an IS
// comparison, or a range.
type CaseTest interface{ caseTestNode() }

type CaseSimple struct{ Value Expr }

func (CaseSimple) caseTestNode() {}

type CaseIs struct {
	Op    string
	Value Expr
}

func (CaseIs) caseTestNode() {}

type CaseRange struct{ From, To Expr }

func (CaseRange) caseTestNode() {}

// CaseClause is one CASE arm of a SELECT CASE.
type CaseClause struct {
	Tests []CaseTest
	Body  []Stmt
}

// SelectCaseStmt is SELECT CASE expr ... END SELECT.
type SelectCaseStmt struct {
	Base
	Select   Expr
	Cases    []CaseClause
	CaseElse []Stmt
}

func (*SelectCaseStmt) stmtNode() {}

type GotoStmt struct {
	Base
	Label string
}

func (*GotoStmt) stmtNode() {}

type GosubStmt struct {
	Base
	Label string
}

func (*GosubStmt) stmtNode() {}

type ReturnStmt struct{ Base }

func (*ReturnStmt) stmtNode() {}

// OnErrorGotoStmt is ON ERROR GOTO label, or ON ERROR GOTO 0 (Zero==true).
type OnErrorGotoStmt struct {
	Base
	Label string
	Zero  bool
}

func (*OnErrorGotoStmt) stmtNode() {}

type ResumeKind int

const (
	ResumeBare ResumeKind = iota
	ResumeNext
	ResumeLabel
)

type ResumeStmt struct {
	Base
	Kind  ResumeKind
	Label string
}

func (*ResumeStmt) stmtNode() {}

type ExitKind int

const (
	ExitSub ExitKind = iota
	ExitFunction
	ExitFor
)

type ExitStmt struct {
	Base
	Kind ExitKind
}

func (*ExitStmt) stmtNode() {}

// PrintArg is one PRINT/LPRINT argument plus the separator that
// followed it (',' advances to the next print zone, ';' suppresses the
// separator, 0 means it was the last argument with no trailing
// separator).
type PrintArg struct {
	Value Expr
	Sep   byte
}

// PrintStmt is PRINT/LPRINT [#chan,] [fmt$;] args... An empty Args with
// Trailing==0 prints a bare newline.
type PrintStmt struct {
	Base
	Channel  Expr // nil if not redirected to a file handle
	Lprint   bool
	Format   Expr // USING format string, nil if absent
	Args     []PrintArg
	Trailing byte // separator after the last arg, or 0
}

func (*PrintStmt) stmtNode() {}

// InputStmt is INPUT/LINE INPUT [#chan,] ["prompt";] var-list.
type InputStmt struct {
	Base
	Channel              Expr
	LineInput            bool
	Prompt               Expr
	SuppressQuestionMark bool
	Vars                 []Expr
}

func (*InputStmt) stmtNode() {}

// DataStmt is DATA v1, v2, ... — legal only at global scope.
type DataStmt struct {
	Base
	Values []Expr
}

func (*DataStmt) stmtNode() {}

// ReadStmt is READ var1, var2, ...
type ReadStmt struct {
	Base
	Targets []Expr
}

func (*ReadStmt) stmtNode() {}

// CallStmt is a bare sub-call statement: a user-defined SUB invocation
// or one of the built-in subs from spec.md §6 (CLS, COLOR, LOCATE,
// OPEN, CLOSE, FIELD, GET, PUT, LSET, NAME, KILL, FILES, CHDIR, MKDIR,
// RMDIR, WIDTH, DEF SEG, VIEW PRINT, ENVIRON). Representing all of
// these uniformly follows Design Notes' "Dispatch over built-ins: a
// single integer identifier plus a table of handler closures" — the
// AST doesn't need a bespoke node per built-in, only the linter's and
// interpreter's built-in tables do.
type CallStmt struct {
	Base
	Name string
	Args []Expr
}

func (*CallStmt) stmtNode() {}

// ExprStmt is a bare expression used as a statement (a function called
// for its side effects, result discarded).
type ExprStmt struct {
	Base
	Value Expr
}

func (*ExprStmt) stmtNode() {}

// EndStmt is END or SYSTEM.
type EndStmt struct {
	Base
	System bool
}

func (*EndStmt) stmtNode() {}

// DefTypeStmt is DEFINT/DEFLNG/DEFSNG/DEFDBL/DEFSTR letter-range ...
type DefTypeStmt struct {
	Base
	Kind     byte // one of the compact qualifier characters
	From, To byte
}

func (*DefTypeStmt) stmtNode() {}
