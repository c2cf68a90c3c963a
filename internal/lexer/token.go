// Package lexer tokenizes BASIC source text into a flat token stream,
// the raw material the parser in internal/parser assembles into
// internal/ast nodes. Grounded on the teacher's hand-rolled
// Scanner (internal/lexer/scanner.go in the retrieved corpus), with
// row+column position tracking added — BASIC diagnostics are
// positioned at (row, col), not merely a line number.
package lexer

import "github.com/ngeor/gobasic/internal/diag"

type TokenType int

const (
	EOF TokenType = iota
	Newline

	Ident  // identifier; Lexeme excludes any qualifier suffix, which goes in Token.Qualifier
	Number // integer or floating literal, exact text kept in Lexeme
	String // string literal, contents already unescaped (there is no escape mechanism)

	// Qualifier suffix tokens, lexed as part of an identifier when
	// immediately adjacent with no space: A%, A$, A&, A!, A#.
	// The lexer attaches these to the preceding Ident rather than
	// emitting a separate token; see Token.Qualifier.

	Keyword // case-insensitively matched reserved word, canonical text in Lexeme

	// Punctuation / operators
	LParen
	RParen
	Comma
	Semicolon
	Colon
	Dot
	Hash // '#' used as a file-channel marker, e.g. PRINT #1
	Plus
	Minus
	Star
	Slash
	Backslash // integer division
	Caret
	Eq
	Lt
	Gt
	Le
	Ge
	Ne
)

// Token is one lexical unit.
type Token struct {
	Type      TokenType
	Lexeme    string
	Qualifier byte // 0, or one of $ % & ! #, attached to an Ident
	At        diag.Pos
}

var keywords = map[string]bool{
	"AND": true, "AS": true, "CALL": true, "CASE": true, "CHDIR": true,
	"CLOSE": true, "CLS": true, "COLOR": true, "CONST": true, "DATA": true,
	"DECLARE": true, "DEF": true, "DEFDBL": true, "DEFINT": true,
	"DEFLNG": true, "DEFSNG": true, "DEFSTR": true, "DIM": true, "DO": true,
	"ELSE": true, "ELSEIF": true, "END": true, "ENVIRON": true, "EQV": true,
	"ERASE": true, "ERL": true, "ERR": true, "ERROR": true, "EXIT": true, "FIELD": true,
	"FILES": true, "FOR": true, "FUNCTION": true, "GET": true, "GOSUB": true,
	"GOTO": true, "IF": true, "IMP": true, "INPUT": true, "IS": true,
	"KILL": true, "LET": true, "LINE": true, "LOCATE": true, "LOOP": true,
	"LPRINT": true, "LSET": true, "MKDIR": true, "MOD": true, "NAME": true,
	"NEXT": true, "NOT": true, "ON": true, "OPEN": true, "OR": true,
	"PRINT": true, "PUT": true, "REDIM": true, "REM": true, "RESUME": true,
	"RETURN": true, "RMDIR": true, "SEG": true, "SELECT": true,
	"SHARED": true, "STEP": true, "STRING": true, "SUB": true, "SYSTEM": true, "THEN": true,
	"TO": true, "TYPE": true, "UNTIL": true, "USING": true, "VIEW": true,
	"WEND": true, "WHILE": true, "WIDTH": true, "XOR": true,
}

func IsKeyword(upper string) bool { return keywords[upper] }
