package lexer

import "testing"

func lexemes(toks []Token) []string {
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Type == EOF {
			continue
		}
		out = append(out, t.Lexeme)
	}
	return out
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"keyword and ident", "PRINT A", []string{"PRINT", "A"}},
		{"qualified ident", "A% = 1", []string{"A", "=", "1"}},
		{"string literal", `PRINT "hi"`, []string{"PRINT", "hi"}},
		{"comment stripped", "PRINT 1 ' trailing comment", []string{"PRINT", "1"}},
		{"rem stripped", "PRINT 1 REM comment", []string{"PRINT", "1"}},
		{"dotted name", "Foo.Bar = 1", []string{"Foo.Bar", "=", "1"}},
		{"operators", "A <= B <> C", []string{"A", "<=", "B", "<>", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := New(tt.input).Scan()
			got := lexemes(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("%s: token %d = %q, want %q", tt.name, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQualifierAttachment(t *testing.T) {
	toks := New("A% B$ C&").Scan()
	want := []byte{'%', '$', '&'}
	var got []byte
	for _, tok := range toks {
		if tok.Type == Ident {
			got = append(got, tok.Qualifier)
		}
	}
	if len(got) != 3 {
		t.Fatalf("got %d idents, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("qualifier %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewlineTracksRow(t *testing.T) {
	toks := New("PRINT 1\nPRINT 2").Scan()
	var lastRow int
	for _, tok := range toks {
		if tok.Type != EOF {
			lastRow = tok.At.Row
		}
	}
	if lastRow != 2 {
		t.Errorf("final token row = %d, want 2", lastRow)
	}
}
