// Package fs is the file-handle table backing OPEN/CLOSE/GET/PUT/
// FIELD/LSET/NAME/KILL/FILES/CHDIR/MKDIR/RMDIR. Fresh — the teacher's
// internal/filesystem/filesystem.go is a security file-monitoring
// module (integrity baselines, suspicious-path heuristics), not a
// generalizable file-handle abstraction, so nothing from it was
// adapted; this package follows the teacher's habit of wrapping every
// os-package error with github.com/pkg/errors for path context instead
// of returning bare os errors.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Mode is OPEN's access mode (spec.md §6).
type Mode int

const (
	ModeInput Mode = iota
	ModeOutput
	ModeAppend
	ModeRandom
	ModeBinary
)

// FieldSpec is one FIELD-declared slice of a RANDOM record buffer.
type FieldSpec struct {
	Name string
	Len  int
}

// Handle is one open file slot (spec.md §6: "file handles are small
// positive integers 1..255").
type Handle struct {
	Path   string
	Mode   Mode
	File   *os.File
	RecLen int
	Buffer []byte
	Fields []FieldSpec
}

// FieldValue returns the Buffer slice FIELD assigned to name, for
// LSET/GET-side reads of a RANDOM record.
func (h *Handle) FieldValue(name string) ([]byte, bool) {
	off := 0
	for _, f := range h.Fields {
		if f.Name == name {
			return h.Buffer[off : off+f.Len], true
		}
		off += f.Len
	}
	return nil, false
}

// Table is the interpreter's open-handle map, one per running program.
type Table struct {
	handles map[int]*Handle
}

func NewTable() *Table { return &Table{handles: map[int]*Handle{}} }

func (t *Table) Get(num int) (*Handle, error) {
	h, ok := t.handles[num]
	if !ok {
		return nil, errors.Errorf("file handle %d is not open", num)
	}
	return h, nil
}

// Open maps path+mode to num, the BASIC-level file handle. recLen is
// only meaningful for ModeRandom.
func (t *Table) Open(num int, path string, mode Mode, recLen int) error {
	if _, exists := t.handles[num]; exists {
		return errors.Errorf("file handle %d already open", num)
	}
	var flag int
	switch mode {
	case ModeInput:
		flag = os.O_RDONLY
	case ModeOutput:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case ModeRandom, ModeBinary:
		flag = os.O_RDWR | os.O_CREATE
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return errors.Wrapf(err, "OPEN %q", path)
	}
	t.handles[num] = &Handle{Path: path, Mode: mode, File: f, RecLen: recLen}
	return nil
}

func (t *Table) Close(num int) error {
	h, err := t.Get(num)
	if err != nil {
		return err
	}
	delete(t.handles, num)
	if err := h.File.Close(); err != nil {
		return errors.Wrapf(err, "CLOSE #%d", num)
	}
	return nil
}

// CloseAll closes every still-open handle, called when the program
// halts so file descriptors don't leak past interpreter shutdown.
func (t *Table) CloseAll() {
	for num := range t.handles {
		_ = t.Close(num)
	}
}

// Field installs a RANDOM handle's byte layout and (re)allocates its
// record buffer to match the declared total width.
func (t *Table) Field(num int, specs []FieldSpec) error {
	h, err := t.Get(num)
	if err != nil {
		return err
	}
	total := 0
	for _, f := range specs {
		total += f.Len
	}
	h.Fields = specs
	h.Buffer = make([]byte, total)
	return nil
}

// GetRecord reads record recNum (1-based; 0 means "next") into the handle's
// field buffer.
func (t *Table) GetRecord(num, recNum int) error {
	h, err := t.Get(num)
	if err != nil {
		return err
	}
	if recNum > 0 {
		if _, err := h.File.Seek(int64(recNum-1)*int64(h.RecLen), 0); err != nil {
			return errors.Wrapf(err, "GET #%d", num)
		}
	}
	if _, err := h.File.Read(h.Buffer); err != nil {
		return errors.Wrapf(err, "GET #%d", num)
	}
	return nil
}

// PutRecord writes the handle's field buffer to record recNum (0 means
// "next" at the file's current position).
func (t *Table) PutRecord(num, recNum int) error {
	h, err := t.Get(num)
	if err != nil {
		return err
	}
	if recNum > 0 {
		if _, err := h.File.Seek(int64(recNum-1)*int64(h.RecLen), 0); err != nil {
			return errors.Wrapf(err, "PUT #%d", num)
		}
	}
	if _, err := h.File.Write(h.Buffer); err != nil {
		return errors.Wrapf(err, "PUT #%d", num)
	}
	return nil
}

func Name(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return errors.Wrapf(err, "NAME %q AS %q", oldPath, newPath)
	}
	return nil
}

func Kill(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Wrapf(err, "KILL %q", path)
	}
	return nil
}

// Files lists directory entries matching pattern (a glob, defaulting
// to "*" in the current directory), formatted the way FILES prints
// them: one bare name per entry.
func Files(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "FILES %q", pattern)
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	return names, nil
}

func Chdir(path string) error {
	if err := os.Chdir(path); err != nil {
		return errors.Wrapf(err, "CHDIR %q", path)
	}
	return nil
}

func Mkdir(path string) error {
	if err := os.Mkdir(path, 0o755); err != nil {
		return errors.Wrapf(err, "MKDIR %q", path)
	}
	return nil
}

func Rmdir(path string) error {
	if err := os.Remove(path); err != nil {
		return errors.Wrapf(err, "RMDIR %q", path)
	}
	return nil
}

// Lset copies s left-justified (truncated or space-padded) into dst,
// the byte-buffer semantics LSET needs for a FIELD-declared slot.
func Lset(dst []byte, s string) {
	n := copy(dst, s)
	for ; n < len(dst); n++ {
		dst[n] = ' '
	}
}

func (m Mode) String() string {
	switch m {
	case ModeInput:
		return "INPUT"
	case ModeOutput:
		return "OUTPUT"
	case ModeAppend:
		return "APPEND"
	case ModeRandom:
		return "RANDOM"
	case ModeBinary:
		return "BINARY"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
