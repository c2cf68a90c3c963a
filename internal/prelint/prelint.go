// Package prelint is the pre-linter (component B): a single top-level
// pass collecting user-defined TYPE declarations, SUB/FUNCTION
// signatures, and global CONST values, without descending into any
// subprogram body. Grounded on the teacher's
// internal/compiler/hoisting_compiler.go HoistingCompiler, whose
// collectFunctions/precompileFunctions two-pass split is exactly this
// component's "gather signatures before anybody's body is walked"
// contract, generalized to also gather TYPE declarations and constant
// values (hoisting_compiler.go only hoists function signatures).
package prelint

import (
	"fmt"

	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/variant"
)

// DuplicateDefinitionError is raised when two subprograms, two types,
// or two globals share a bare name.
type DuplicateDefinitionError struct {
	Name string
	At   diag.Pos
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("DuplicateDefinition: %q already defined (at %s)", e.Name, e.At)
}

// FuncSig and SubSig are the signatures collected for every declared or
// implemented FUNCTION/SUB — DECLARE and the real definition both
// register here, the real definition's Body populated last-write-wins
// (DECLARE has no body).
type FuncSig struct {
	Name     string
	Kind     variant.Kind
	Params   []ast.ParamDecl
	Body     []ast.Stmt
	At       diag.Pos
	HasBody  bool
}

type SubSig struct {
	Name    string
	Params  []ast.ParamDecl
	Body    []ast.Stmt
	At      diag.Pos
	HasBody bool
}

// Result is the pre-linter's output: the three lookup maps plus the
// evaluated global-constant map, keyed by case-folded bare name.
type Result struct {
	Functions map[string]*FuncSig
	Subs      map[string]*SubSig
	Types     map[string]*ast.TypeStmt
	Consts    map[string]variant.Value
}

// Run performs the single collecting pass over prog's top-level
// statements. It never recurses into SubStmt.Body/FunctionStmt.Body —
// those are walked later, by the linter, once every signature is known.
func Run(prog *ast.Program, fold func(string) string) (*Result, []error) {
	r := &Result{
		Functions: map[string]*FuncSig{},
		Subs:      map[string]*SubSig{},
		Types:     map[string]*ast.TypeStmt{},
		Consts:    map[string]variant.Value{},
	}
	var errs []error

	for _, st := range prog.Statements {
		switch n := st.(type) {
		case *ast.TypeStmt:
			key := fold(n.Name)
			if _, dup := r.Types[key]; dup {
				errs = append(errs, &DuplicateDefinitionError{Name: n.Name, At: n.Pos()})
				continue
			}
			r.Types[key] = n
		case *ast.SubStmt:
			key := fold(n.Name)
			if existing, dup := r.Subs[key]; dup && existing.HasBody {
				errs = append(errs, &DuplicateDefinitionError{Name: n.Name, At: n.Pos()})
				continue
			}
			r.Subs[key] = &SubSig{Name: n.Name, Params: n.Params, Body: n.Body, At: n.Pos(), HasBody: true}
		case *ast.FunctionStmt:
			key := fold(n.Name)
			if existing, dup := r.Functions[key]; dup && existing.HasBody {
				errs = append(errs, &DuplicateDefinitionError{Name: n.Name, At: n.Pos()})
				continue
			}
			r.Functions[key] = &FuncSig{Name: n.Name, Kind: kindForQualifier(n.Qualifier, n.AsType), Params: n.Params, Body: n.Body, At: n.Pos(), HasBody: true}
		case *ast.DeclareStmt:
			key := fold(n.Name)
			if n.IsFunction {
				if _, exists := r.Functions[key]; !exists {
					r.Functions[key] = &FuncSig{Name: n.Name, Kind: kindForQualifier(n.Qualifier, n.AsType), Params: n.Params, At: n.Pos()}
				}
			} else {
				if _, exists := r.Subs[key]; !exists {
					r.Subs[key] = &SubSig{Name: n.Name, Params: n.Params, At: n.Pos()}
				}
			}
		case *ast.ConstStmt:
			for i, name := range n.Names {
				key := fold(name)
				if _, dup := r.Consts[key]; dup {
					errs = append(errs, &DuplicateDefinitionError{Name: name, At: n.Pos()})
					continue
				}
				val, err := evalConstExpr(n.Values[i], r.Consts, fold)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				if n.Qualifiers[i] != 0 {
					if k, ok := variant.KindForSuffix(n.Qualifiers[i]); ok {
						cast, cerr := variant.Cast(val, k)
						if cerr == nil {
							val = cast
						}
					}
				}
				r.Consts[key] = val
			}
		}
	}
	return r, errs
}

func kindForQualifier(qual byte, asType string) variant.Kind {
	if qual != 0 {
		if k, ok := variant.KindForSuffix(qual); ok {
			return k
		}
	}
	switch asType {
	case "INTEGER":
		return variant.KindInteger
	case "LONG":
		return variant.KindLong
	case "SINGLE":
		return variant.KindSingle
	case "DOUBLE":
		return variant.KindDouble
	case "STRING":
		return variant.KindString
	}
	return variant.KindSingle
}

// InvalidConstantError is raised when a CONST right-hand side is not a
// literal or an operator-tree over previously defined constants.
type InvalidConstantError struct {
	At diag.Pos
}

func (e *InvalidConstantError) Error() string {
	return fmt.Sprintf("InvalidConstant: constant expression at %s is not a literal or constant-only expression", e.At)
}

// evalConstExpr evaluates a CONST right-hand side using only literals
// and previously-defined constants — no function calls, no variables.
func evalConstExpr(e ast.Expr, consts map[string]variant.Value, fold func(string) string) (variant.Value, error) {
	switch n := e.(type) {
	case *ast.Literal:
		if n.IsStr {
			return variant.NewString(n.Value.(string)), nil
		}
		switch v := n.Value.(type) {
		case int64:
			return variant.FitInt64(v), nil
		case float64:
			return variant.FitFloat64(v), nil
		}
	case *ast.Name:
		if v, ok := consts[fold(n.Bare)]; ok {
			return v, nil
		}
	case *ast.Unary:
		inner, err := evalConstExpr(n.Operand, consts, fold)
		if err != nil {
			return nil, err
		}
		if n.Op == "-" {
			return variant.Neg(inner)
		}
		return inner, nil
	case *ast.Binary:
		left, err := evalConstExpr(n.Left, consts, fold)
		if err != nil {
			return nil, err
		}
		right, err := evalConstExpr(n.Right, consts, fold)
		if err != nil {
			return nil, err
		}
		return applyConstOp(n.Op, left, right)
	case *ast.Paren:
		return evalConstExpr(n.Inner, consts, fold)
	}
	return nil, &InvalidConstantError{At: e.Pos()}
}

func applyConstOp(op string, a, b variant.Value) (variant.Value, error) {
	switch op {
	case "+":
		return variant.Add(a, b)
	case "-":
		return variant.Sub(a, b)
	case "*":
		return variant.Mul(a, b)
	case "/":
		return variant.Div(a, b)
	case "\\":
		return variant.IDiv(a, b)
	case "MOD":
		return variant.Mod(a, b)
	default:
		return variant.Compare(op, a, b)
	}
}
