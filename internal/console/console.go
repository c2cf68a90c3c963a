// Package console implements PRINT's print-zone arithmetic and the
// ANSI-gated screen builtins (CLS/COLOR/LOCATE/WIDTH). Fresh; grounded
// on original_source/src/interpreter/printer.rs's WritePrinter
// (track last_column, move_to_next_print_zone pads to the next
// multiple of 14) and spec.md §6's 14-column print-zone rule. Uses
// github.com/mattn/go-isatty to gate ANSI escape emission to real
// terminals, the way a CLI in this corpus would avoid corrupting a
// redirected-to-a-file program's output with raw escape codes.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const zoneWidth = 14

// Writer tracks the current output column across PRINT statements the
// way a real terminal would, so `,` and `;` separators compose
// correctly across multiple PRINT statements, not just within one.
type Writer struct {
	out        *bufio.Writer
	lastColumn int
	ansi       bool
}

func New(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	ansi := false
	if f, ok := w.(*os.File); ok {
		ansi = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: bw, ansi: ansi}
}

// Print writes s verbatim, advancing the tracked column.
func (w *Writer) Print(s string) {
	w.out.WriteString(s)
	w.lastColumn += len(s)
}

// Newline resets the column and writes a CRLF line terminator, the
// same line ending WritePrinter.println uses.
func (w *Writer) Newline() {
	w.out.WriteString("\r\n")
	w.lastColumn = 0
}

// NextZone pads with spaces to the next multiple of zoneWidth columns,
// the `,` separator's effect.
func (w *Writer) NextZone() {
	pad := zoneWidth - w.lastColumn%zoneWidth
	w.Print(spaces(pad))
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

func (w *Writer) Flush() { w.out.Flush() }

// Cls clears the screen, ANSI-gated so a redirected/piped program's
// captured output isn't polluted with escape codes.
func (w *Writer) Cls() {
	if w.ansi {
		w.out.WriteString("\x1b[2J\x1b[H")
	}
	w.lastColumn = 0
}

// Color sets foreground/background via SGR codes; hasFg/hasBg say which
// of QBasic's optional COLOR arguments were given, and a color whose
// argument was not given is left unchanged.
func (w *Writer) Color(fg, bg int, hasFg, hasBg bool) {
	if !w.ansi {
		return
	}
	if hasFg {
		fmt.Fprintf(w.out, "\x1b[%dm", ansiForeground(fg))
	}
	if hasBg {
		fmt.Fprintf(w.out, "\x1b[%dm", ansiBackground(bg))
	}
}

// ansiForeground/ansiBackground map QBasic's 16-color palette index to
// the nearest basic/bright SGR code.
func ansiForeground(c int) int {
	if c >= 8 {
		return 90 + (c - 8)
	}
	return 30 + c
}

func ansiBackground(c int) int {
	if c >= 8 {
		return 100 + (c - 8)
	}
	return 40 + c
}

// Locate moves the cursor to (row, col), 1-based per spec.md §6.
func (w *Writer) Locate(row, col int) {
	if w.ansi {
		fmt.Fprintf(w.out, "\x1b[%d;%dH", row, col)
	}
}

// Width is a no-op beyond validation on most terminals (screen width
// is the terminal's own business); it exists so WIDTH parses and
// dispatches cleanly rather than being rejected as undefined.
func (w *Writer) Width(int, int) {}
