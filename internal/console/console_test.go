package console

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintTracksColumn(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	w.Print("HELLO")
	w.Flush()
	if got := buf.String(); got != "HELLO" {
		t.Fatalf("got %q, want HELLO", got)
	}
}

func TestNextZonePadsToFourteenColumnBoundary(t *testing.T) {
	tests := []struct {
		name       string
		written    string
		wantPadLen int
	}{
		{"empty column", "", 14},
		{"mid zone", "AB", 12},
		{"at boundary", strings.Repeat("X", 14), 14},
		{"one past boundary", strings.Repeat("X", 15), 13},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := New(&buf)
			w.Print(tt.written)
			buf.Reset()
			w.NextZone()
			w.Flush()
			if got := len(buf.String()); got != tt.wantPadLen {
				t.Fatalf("padded %d spaces, want %d", got, tt.wantPadLen)
			}
		})
	}
}

func TestNewlineResetsColumn(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)
	w.Print("ABC")
	w.Newline()
	buf.Reset()
	w.NextZone()
	w.Flush()
	if got := len(buf.String()); got != 14 {
		t.Fatalf("padded %d spaces after newline, want 14", got)
	}
}

func TestClsAndColorAreNoOpsWithoutATerminal(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf) // not an *os.File, so ansi stays false
	w.Cls()
	w.Color(1, 2, true, true)
	w.Locate(5, 5)
	w.Flush()
	if buf.Len() != 0 {
		t.Fatalf("expected no ANSI escapes written to a non-terminal writer, got %q", buf.String())
	}
}
