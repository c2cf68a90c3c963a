package parser

import (
	"strings"

	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/lexer"
)

// builtinCallNames is the closed set of built-in subs/functions that
// can appear in bare call-statement position (spec.md §6). Everything
// else that looks like `Name arg, arg` or `Name(args)` used as a
// statement is either a user SUB call or a bare function-call
// expression statement — the linter (not the parser) makes that
// distinction, per Design Notes' "dispatch over built-ins" strategy.
var builtinCallNames = map[string]bool{
	"CLS": true, "COLOR": true, "LOCATE": true, "OPEN": true, "CLOSE": true,
	"FIELD": true, "GET": true, "PUT": true, "LSET": true, "NAME": true,
	"KILL": true, "FILES": true, "CHDIR": true, "MKDIR": true, "RMDIR": true,
	"WIDTH": true, "VIEW": true, "ENVIRON": true,
}

// statement dispatches on the leading token of one statement.
func (p *Parser) statement() ast.Stmt {
	tok := p.cur()

	if tok.Type == lexer.Number {
		// Numeric line label, e.g. "100 PRINT X".
		p.advance()
		return &ast.Label{Name: tok.Lexeme, Base: ast.Base{At: tok.At}}
	}
	if tok.Type == lexer.Ident && p.peekIsColon() {
		p.advance()
		p.advance() // consume ':'
		return &ast.Label{Name: tok.Lexeme, Base: ast.Base{At: tok.At}}
	}

	if tok.Type != lexer.Keyword {
		return p.assignmentOrCall()
	}

	switch tok.Lexeme {
	case "LET":
		p.advance()
		return p.assignmentOrCall()
	case "DIM":
		return p.dimStmt(false)
	case "REDIM":
		return p.dimStmt(true)
	case "CONST":
		return p.constStmt()
	case "TYPE":
		return p.typeStmt()
	case "SUB":
		return p.subStmt()
	case "FUNCTION":
		return p.functionStmt()
	case "DECLARE":
		return p.declareStmt()
	case "IF":
		return p.ifStmt()
	case "FOR":
		return p.forStmt()
	case "WHILE":
		return p.whileStmt()
	case "SELECT":
		return p.selectCaseStmt()
	case "GOTO":
		p.advance()
		lbl := p.labelRef()
		return &ast.GotoStmt{Label: lbl.Lexeme, Base: ast.Base{At: tok.At}}
	case "GOSUB":
		p.advance()
		lbl := p.labelRef()
		return &ast.GosubStmt{Label: lbl.Lexeme, Base: ast.Base{At: tok.At}}
	case "RETURN":
		p.advance()
		return &ast.ReturnStmt{Base: ast.Base{At: tok.At}}
	case "ON":
		return p.onErrorGotoStmt()
	case "RESUME":
		return p.resumeStmt()
	case "EXIT":
		return p.exitStmt()
	case "PRINT", "LPRINT":
		return p.printStmt()
	case "INPUT":
		return p.inputStmtAt(false, tok)
	case "LINE":
		p.advance()
		p.expectKeyword("INPUT")
		return p.inputStmtAt(true, tok)
	case "DATA":
		return p.dataStmt()
	case "END":
		p.advance()
		if p.matchKeyword("SUB") || p.matchKeyword("FUNCTION") || p.matchKeyword("IF") ||
			p.matchKeyword("SELECT") || p.matchKeyword("TYPE") {
			// Closing keyword of an enclosing block reached while scanning
			// a body list; the caller's block-reader consumes these, so
			// reaching here means a stray one — treat as a bare END.
			return &ast.EndStmt{Base: ast.Base{At: tok.At}}
		}
		return &ast.EndStmt{Base: ast.Base{At: tok.At}}
	case "SYSTEM":
		p.advance()
		return &ast.EndStmt{System: true, Base: ast.Base{At: tok.At}}
	case "DEFINT", "DEFLNG", "DEFSNG", "DEFDBL", "DEFSTR":
		return p.defTypeStmt()
	case "CALL":
		p.advance()
		return p.callStmt()
	default:
		if builtinCallNames[tok.Lexeme] {
			return p.callStmt()
		}
		p.errorf(tok.At, "unexpected keyword %q", tok.Lexeme)
		p.advance()
		return nil
	}
}

func (p *Parser) peekIsColon() bool {
	return p.pos+1 < len(p.toks) && p.toks[p.pos+1].Type == lexer.Colon
}

// labelRef accepts either a numeric line label or a bare identifier as
// a GOTO/GOSUB/RESUME target.
func (p *Parser) labelRef() lexer.Token {
	if p.check(lexer.Number) || p.check(lexer.Ident) {
		return p.advance()
	}
	p.errorf(p.cur().At, "expected label, got %q", p.cur().Lexeme)
	return p.cur()
}

// block reads statements until one of the given terminator keywords is
// seen (not consumed).
func (p *Parser) block(terminators ...string) []ast.Stmt {
	var out []ast.Stmt
	p.skipNewlines()
	for !p.atEnd() && !p.atTerminator(terminators) {
		before := p.pos
		st := p.statement()
		if st != nil {
			out = append(out, st)
		}
		if p.pos == before {
			p.advance()
		}
		p.endOfStatement()
	}
	return out
}

func (p *Parser) atTerminator(terminators []string) bool {
	if p.cur().Type != lexer.Keyword {
		return false
	}
	for _, t := range terminators {
		if p.cur().Lexeme == t {
			return true
		}
	}
	return false
}

func (p *Parser) assignmentOrCall() ast.Stmt {
	tok := p.cur()
	target := p.postfix()
	if p.check(lexer.Eq) {
		eq := p.advance()
		value := p.Expression()
		return &ast.LetStmt{Target: target, Value: value, Base: ast.Base{At: eq.At}}
	}
	// Not an assignment: either a bare call ("Foo 1, 2") or a bare
	// expression statement (a function invoked for its side effect).
	if name, ok := target.(*ast.Name); ok {
		var args []ast.Expr
		if !p.atStmtEnd() {
			args = append(args, p.Expression())
			for p.match(lexer.Comma) {
				args = append(args, p.Expression())
			}
		}
		return &ast.CallStmt{Name: name.Bare, Args: args, Base: ast.Base{At: tok.At}}
	}
	return &ast.ExprStmt{Value: target, Base: ast.Base{At: tok.At}}
}

func (p *Parser) atStmtEnd() bool {
	return p.check(lexer.Colon) || p.check(lexer.Newline) || p.atEnd()
}

func (p *Parser) callStmt() ast.Stmt {
	tok := p.advance()
	var args []ast.Expr
	paren := p.match(lexer.LParen)
	if !p.atStmtEnd() && !(paren && p.check(lexer.RParen)) {
		args = append(args, p.Expression())
		for p.match(lexer.Comma) {
			args = append(args, p.Expression())
		}
	}
	if paren {
		p.expect(lexer.RParen, ")")
	}
	return &ast.CallStmt{Name: tok.Lexeme, Args: args, Base: ast.Base{At: tok.At}}
}

func (p *Parser) arrayDims() []ast.ArrayDim {
	var dims []ast.ArrayDim
	first := p.Expression()
	if p.matchKeyword("TO") {
		upper := p.Expression()
		dims = append(dims, ast.ArrayDim{Lower: first, Upper: upper})
	} else {
		dims = append(dims, ast.ArrayDim{Upper: first})
	}
	for p.match(lexer.Comma) {
		next := p.Expression()
		if p.matchKeyword("TO") {
			upper := p.Expression()
			dims = append(dims, ast.ArrayDim{Lower: next, Upper: upper})
		} else {
			dims = append(dims, ast.ArrayDim{Upper: next})
		}
	}
	return dims
}

func (p *Parser) asTypeClause() (asType string, strLen ast.Expr) {
	if p.matchKeyword("AS") {
		if p.matchKeyword("STRING") {
			if p.match(lexer.Star) {
				strLen = p.Expression()
			}
			return "STRING", strLen
		}
		name := p.expect(lexer.Ident, "type name")
		return strings.ToUpper(name.Lexeme), nil
	}
	return "", nil
}

func (p *Parser) dimStmt(redim bool) ast.Stmt {
	tok := p.advance()
	var decls []ast.DimDecl
	for {
		shared := p.matchKeyword("SHARED")
		nameTok := p.expect(lexer.Ident, "variable name")
		d := ast.DimDecl{Name: nameTok.Lexeme, Qualifier: nameTok.Qualifier, Shared: shared}
		if p.match(lexer.LParen) {
			d.Dims = p.arrayDims()
			p.expect(lexer.RParen, ")")
		}
		d.AsType, d.StringLen = p.asTypeClause()
		decls = append(decls, d)
		if !p.match(lexer.Comma) {
			break
		}
	}
	return &ast.DimStmt{Redim: redim, Decls: decls, Base: ast.Base{At: tok.At}}
}

func (p *Parser) constStmt() ast.Stmt {
	tok := p.advance()
	var names []string
	var quals []byte
	var values []ast.Expr
	for {
		n := p.expect(lexer.Ident, "constant name")
		names = append(names, n.Lexeme)
		quals = append(quals, n.Qualifier)
		p.expect(lexer.Eq, "=")
		values = append(values, p.Expression())
		if !p.match(lexer.Comma) {
			break
		}
	}
	return &ast.ConstStmt{Names: names, Qualifiers: quals, Values: values, Base: ast.Base{At: tok.At}}
}

func (p *Parser) typeStmt() ast.Stmt {
	tok := p.advance()
	name := p.expect(lexer.Ident, "type name")
	p.skipNewlines()
	var fields []ast.TypeField
	for !p.atEnd() && !p.checkKeyword("END") {
		fn := p.expect(lexer.Ident, "field name")
		asType, strLen := p.asTypeClause()
		fields = append(fields, ast.TypeField{Name: fn.Lexeme, AsType: asType, StringLen: strLen})
		p.endOfStatement()
	}
	p.expectKeyword("END")
	p.expectKeyword("TYPE")
	return &ast.TypeStmt{Name: name.Lexeme, Fields: fields, Base: ast.Base{At: tok.At}}
}

func (p *Parser) paramList() []ast.ParamDecl {
	var params []ast.ParamDecl
	if !p.match(lexer.LParen) {
		return params
	}
	if !p.check(lexer.RParen) {
		for {
			n := p.expect(lexer.Ident, "parameter name")
			pd := ast.ParamDecl{Name: n.Lexeme, Qualifier: n.Qualifier}
			if p.match(lexer.LParen) {
				pd.IsArray = true
				p.expect(lexer.RParen, ")")
			}
			pd.AsType, _ = p.asTypeClause()
			params = append(params, pd)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	p.expect(lexer.RParen, ")")
	return params
}

func (p *Parser) subStmt() ast.Stmt {
	tok := p.advance()
	name := p.expect(lexer.Ident, "sub name")
	params := p.paramList()
	body := p.block("END")
	p.expectKeyword("END")
	p.expectKeyword("SUB")
	return &ast.SubStmt{Name: name.Lexeme, Params: params, Body: body, Base: ast.Base{At: tok.At}}
}

func (p *Parser) functionStmt() ast.Stmt {
	tok := p.advance()
	name := p.expect(lexer.Ident, "function name")
	params := p.paramList()
	asType, _ := p.asTypeClause()
	body := p.block("END")
	p.expectKeyword("END")
	p.expectKeyword("FUNCTION")
	return &ast.FunctionStmt{Name: name.Lexeme, Qualifier: name.Qualifier, AsType: asType, Params: params, Body: body, Base: ast.Base{At: tok.At}}
}

func (p *Parser) declareStmt() ast.Stmt {
	tok := p.advance()
	isFunc := p.matchKeyword("FUNCTION")
	if !isFunc {
		p.expectKeyword("SUB")
	}
	name := p.expect(lexer.Ident, "name")
	params := p.paramList()
	asType := ""
	if isFunc {
		asType, _ = p.asTypeClause()
	}
	return &ast.DeclareStmt{IsFunction: isFunc, Name: name.Lexeme, Qualifier: name.Qualifier, AsType: asType, Params: params, Base: ast.Base{At: tok.At}}
}

func (p *Parser) ifStmt() ast.Stmt {
	tok := p.advance()
	cond := p.Expression()
	p.expectKeyword("THEN")

	var branches []ast.IfBranch
	var elseBody []ast.Stmt

	if p.check(lexer.Newline) {
		// Block IF.
		body := p.block("ELSEIF", "ELSE", "END")
		branches = append(branches, ast.IfBranch{Cond: cond, Body: body})
		for p.checkKeyword("ELSEIF") {
			p.advance()
			c := p.Expression()
			p.expectKeyword("THEN")
			b := p.block("ELSEIF", "ELSE", "END")
			branches = append(branches, ast.IfBranch{Cond: c, Body: b})
		}
		if p.matchKeyword("ELSE") {
			elseBody = p.block("END")
		}
		p.expectKeyword("END")
		p.expectKeyword("IF")
	} else {
		// Single-line IF: body runs to end of physical line, optional ELSE.
		body := p.singleLineBody()
		branches = append(branches, ast.IfBranch{Cond: cond, Body: body})
		if p.matchKeyword("ELSE") {
			elseBody = p.singleLineBody()
		}
	}
	return &ast.IfStmt{Branches: branches, Else: elseBody, Base: ast.Base{At: tok.At}}
}

// singleLineBody reads statements separated by ':' until a Newline,
// ELSE, or end of input — the body of a single-line IF.
func (p *Parser) singleLineBody() []ast.Stmt {
	var out []ast.Stmt
	for !p.check(lexer.Newline) && !p.atEnd() && !p.checkKeyword("ELSE") {
		before := p.pos
		st := p.statement()
		if st != nil {
			out = append(out, st)
		}
		if p.pos == before {
			p.advance()
		}
		if p.check(lexer.Colon) {
			p.advance()
			continue
		}
		break
	}
	return out
}

func (p *Parser) forStmt() ast.Stmt {
	tok := p.advance()
	v := p.expect(lexer.Ident, "loop variable")
	p.expect(lexer.Eq, "=")
	start := p.Expression()
	p.expectKeyword("TO")
	stop := p.Expression()
	var step ast.Expr
	if p.matchKeyword("STEP") {
		step = p.Expression()
	}
	body := p.block("NEXT")
	p.expectKeyword("NEXT")
	nextVar := ""
	var nextVarPos diag.Pos
	if p.check(lexer.Ident) {
		nv := p.advance()
		nextVar = nv.Lexeme
		nextVarPos = nv.At
	}
	return &ast.ForStmt{Var: v.Lexeme, Qualifier: v.Qualifier, Start: start, Stop: stop, Step: step, Body: body, NextVar: nextVar, NextVarPos: nextVarPos, Base: ast.Base{At: tok.At}}
}

func (p *Parser) whileStmt() ast.Stmt {
	tok := p.advance()
	cond := p.Expression()
	body := p.block("WEND")
	p.expectKeyword("WEND")
	return &ast.WhileStmt{Cond: cond, Body: body, Base: ast.Base{At: tok.At}}
}

func (p *Parser) selectCaseStmt() ast.Stmt {
	tok := p.advance()
	p.expectKeyword("CASE")
	sel := p.Expression()
	p.skipNewlines()
	var cases []ast.CaseClause
	var caseElse []ast.Stmt
	for p.checkKeyword("CASE") {
		p.advance()
		if p.matchKeyword("ELSE") {
			caseElse = p.block("CASE", "END")
			continue
		}
		var tests []ast.CaseTest
		tests = append(tests, p.caseTest())
		for p.match(lexer.Comma) {
			tests = append(tests, p.caseTest())
		}
		body := p.block("CASE", "END")
		cases = append(cases, ast.CaseClause{Tests: tests, Body: body})
	}
	p.expectKeyword("END")
	p.expectKeyword("SELECT")
	return &ast.SelectCaseStmt{Select: sel, Cases: cases, CaseElse: caseElse, Base: ast.Base{At: tok.At}}
}

func (p *Parser) caseTest() ast.CaseTest {
	if p.matchKeyword("IS") {
		op := p.advance().Lexeme
		return ast.CaseIs{Op: op, Value: p.Expression()}
	}
	v := p.Expression()
	if p.matchKeyword("TO") {
		to := p.Expression()
		return ast.CaseRange{From: v, To: to}
	}
	return ast.CaseSimple{Value: v}
}

func (p *Parser) onErrorGotoStmt() ast.Stmt {
	tok := p.advance()
	p.expectKeyword("ERROR")
	p.expectKeyword("GOTO")
	if p.check(lexer.Number) && p.cur().Lexeme == "0" {
		p.advance()
		return &ast.OnErrorGotoStmt{Zero: true, Base: ast.Base{At: tok.At}}
	}
	lbl := p.labelRef()
	return &ast.OnErrorGotoStmt{Label: lbl.Lexeme, Base: ast.Base{At: tok.At}}
}

func (p *Parser) resumeStmt() ast.Stmt {
	tok := p.advance()
	if p.matchKeyword("NEXT") {
		return &ast.ResumeStmt{Kind: ast.ResumeNext, Base: ast.Base{At: tok.At}}
	}
	if p.check(lexer.Ident) || p.check(lexer.Number) {
		lbl := p.advance()
		return &ast.ResumeStmt{Kind: ast.ResumeLabel, Label: lbl.Lexeme, Base: ast.Base{At: tok.At}}
	}
	return &ast.ResumeStmt{Kind: ast.ResumeBare, Base: ast.Base{At: tok.At}}
}

func (p *Parser) exitStmt() ast.Stmt {
	tok := p.advance()
	switch {
	case p.matchKeyword("SUB"):
		return &ast.ExitStmt{Kind: ast.ExitSub, Base: ast.Base{At: tok.At}}
	case p.matchKeyword("FUNCTION"):
		return &ast.ExitStmt{Kind: ast.ExitFunction, Base: ast.Base{At: tok.At}}
	case p.matchKeyword("FOR"):
		return &ast.ExitStmt{Kind: ast.ExitFor, Base: ast.Base{At: tok.At}}
	}
	p.errorf(tok.At, "expected SUB, FUNCTION, or FOR after EXIT")
	return &ast.ExitStmt{Kind: ast.ExitSub, Base: ast.Base{At: tok.At}}
}

func (p *Parser) printStmt() ast.Stmt {
	tok := p.advance()
	st := &ast.PrintStmt{Lprint: tok.Lexeme == "LPRINT", Base: ast.Base{At: tok.At}}
	if p.match(lexer.Hash) {
		st.Channel = p.Expression()
		p.match(lexer.Comma)
	}
	if p.matchKeyword("USING") {
		st.Format = p.Expression()
		p.expect(lexer.Semicolon, ";")
	}
	for !p.atStmtEnd() {
		v := p.Expression()
		sep := byte(0)
		if p.match(lexer.Comma) {
			sep = ','
		} else if p.match(lexer.Semicolon) {
			sep = ';'
		}
		st.Args = append(st.Args, ast.PrintArg{Value: v, Sep: sep})
		if sep == 0 {
			break
		}
		st.Trailing = sep
	}
	if len(st.Args) > 0 {
		st.Trailing = st.Args[len(st.Args)-1].Sep
	}
	return st
}

func (p *Parser) inputStmtAt(lineInput bool, tok lexer.Token) ast.Stmt {
	if !lineInput {
		p.advance() // consume INPUT
	}
	st := &ast.InputStmt{LineInput: lineInput, Base: ast.Base{At: tok.At}}
	if p.match(lexer.Hash) {
		st.Channel = p.Expression()
		p.match(lexer.Comma)
	}
	if p.check(lexer.String) {
		promptTok := p.advance()
		st.Prompt = &ast.Literal{Value: promptTok.Lexeme, IsStr: true}
		if p.match(lexer.Semicolon) {
			st.SuppressQuestionMark = true
		} else {
			p.match(lexer.Comma)
		}
	}
	st.Vars = append(st.Vars, p.postfix())
	for p.match(lexer.Comma) {
		st.Vars = append(st.Vars, p.postfix())
	}
	return st
}

func (p *Parser) dataStmt() ast.Stmt {
	tok := p.advance()
	var values []ast.Expr
	values = append(values, p.dataLiteral())
	for p.match(lexer.Comma) {
		values = append(values, p.dataLiteral())
	}
	return &ast.DataStmt{Values: values, Base: ast.Base{At: tok.At}}
}

// dataLiteral parses one DATA literal: a (possibly signed) number or a
// bare/quoted string, never a general expression.
func (p *Parser) dataLiteral() ast.Expr {
	tok := p.cur()
	if p.check(lexer.Minus) {
		p.advance()
		n := p.expect(lexer.Number, "number")
		lit := &ast.Literal{Value: negateLiteral(p.number(n)), IsStr: false}
		lit.At = tok.At
		return lit
	}
	if p.check(lexer.Number) {
		p.advance()
		lit := &ast.Literal{Value: p.number(tok), IsStr: false}
		lit.At = tok.At
		return lit
	}
	if p.check(lexer.String) {
		p.advance()
		lit := &ast.Literal{Value: tok.Lexeme, IsStr: true}
		lit.At = tok.At
		return lit
	}
	// Bare unquoted token sequence (e.g. DATA foo) — treat as a string.
	var b strings.Builder
	for !p.check(lexer.Comma) && !p.atStmtEnd() {
		b.WriteString(p.advance().Lexeme)
		b.WriteByte(' ')
	}
	lit := &ast.Literal{Value: strings.TrimSpace(b.String()), IsStr: true}
	lit.At = tok.At
	return lit
}

func negateLiteral(v interface{}) interface{} {
	switch n := v.(type) {
	case int64:
		return -n
	case float64:
		return -n
	}
	return v
}

func (p *Parser) defTypeStmt() ast.Stmt {
	tok := p.advance()
	var kind byte
	switch tok.Lexeme {
	case "DEFINT":
		kind = '%'
	case "DEFLNG":
		kind = '&'
	case "DEFSNG":
		kind = '!'
	case "DEFDBL":
		kind = '#'
	case "DEFSTR":
		kind = '$'
	}
	from := p.expect(lexer.Ident, "letter")
	to := from
	if p.matchKeyword("TO") {
		to = p.expect(lexer.Ident, "letter")
	}
	f := byte(0)
	t := byte(0)
	if len(from.Lexeme) > 0 {
		f = from.Lexeme[0]
	}
	if len(to.Lexeme) > 0 {
		t = to.Lexeme[0]
	}
	return &ast.DefTypeStmt{Kind: kind, From: f, To: t, Base: ast.Base{At: tok.At}}
}
