// Package parser is a recursive-descent parser turning a lexer.Token
// stream into the raw internal/ast tree. Grounded on the teacher's
// internal/parser/parser.go (a Pratt-ish recursive-descent parser over
// its own token stream), adapted to BASIC's statement-oriented,
// line/colon-terminated grammar rather than Sentra's brace-delimited
// one.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ngeor/gobasic/internal/ast"
	"github.com/ngeor/gobasic/internal/diag"
	"github.com/ngeor/gobasic/internal/lexer"
)

// Parser consumes a flat token slice and produces an ast.Program. It
// never aborts on an error: it records the error and tries to resync
// at the next Newline/Colon so the caller can see every syntax error
// in a source file in a single pass.
type Parser struct {
	toks   []lexer.Token
	pos    int
	Errors []error
}

func New(toks []lexer.Token) *Parser { return &Parser{toks: toks} }

// ParseErr is a syntax error with position, matching spec.md §4.C's
// "wrapper for parser errors propagated upward".
type ParseErr struct {
	Message string
	At      diag.Pos
}

func (e *ParseErr) Error() string { return fmt.Sprintf("SyntaxError: %s at %s", e.Message, e.At) }

func (p *Parser) errorf(at diag.Pos, format string, args ...interface{}) {
	p.Errors = append(p.Errors, &ParseErr{Message: fmt.Sprintf(format, args...), At: at})
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) atEnd() bool       { return p.cur().Type == lexer.EOF }
func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) checkKeyword(kw string) bool {
	return p.cur().Type == lexer.Keyword && p.cur().Lexeme == kw
}

func (p *Parser) matchKeyword(kw string) bool {
	if p.checkKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) match(tt lexer.TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt lexer.TokenType, what string) lexer.Token {
	if !p.check(tt) {
		p.errorf(p.cur().At, "expected %s, got %q", what, p.cur().Lexeme)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) expectKeyword(kw string) {
	if !p.matchKeyword(kw) {
		p.errorf(p.cur().At, "expected %s, got %q", kw, p.cur().Lexeme)
	}
}

func (p *Parser) skipNewlines() {
	for p.check(lexer.Newline) || p.check(lexer.Colon) {
		p.advance()
	}
}

// Parse parses the whole token stream into a Program, resyncing past
// malformed statements at Newline/Colon boundaries.
func (p *Parser) Parse() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for !p.atEnd() {
		before := p.pos
		stmt := p.statement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.pos == before {
			// Guard against a statement parser that consumed nothing:
			// force progress so Parse terminates.
			p.advance()
		}
		p.endOfStatement()
	}
	return prog
}

// endOfStatement consumes exactly one Colon (another statement follows
// on the same line) or one Newline, or resyncs to the next one if the
// statement parser left something unconsumed.
func (p *Parser) endOfStatement() {
	if p.check(lexer.Colon) || p.check(lexer.Newline) {
		for p.check(lexer.Colon) || p.check(lexer.Newline) {
			p.advance()
		}
		return
	}
	if p.atEnd() {
		return
	}
	for !p.check(lexer.Colon) && !p.check(lexer.Newline) && !p.atEnd() {
		p.advance()
	}
	for p.check(lexer.Colon) || p.check(lexer.Newline) {
		p.advance()
	}
}

func (p *Parser) number(tok lexer.Token) interface{} {
	text := tok.Lexeme
	if strings.ContainsAny(text, ".eEdD") {
		text = strings.ReplaceAll(strings.ReplaceAll(text, "D", "E"), "d", "e")
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.errorf(tok.At, "malformed number %q", tok.Lexeme)
			return int64(0)
		}
		return f
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			p.errorf(tok.At, "malformed number %q", tok.Lexeme)
			return int64(0)
		}
		return f
	}
	return i
}
