package fs

import (
	"path/filepath"
	"testing"
)

func TestOpenWriteCloseSequentialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	table := NewTable()
	if err := table.Open(1, path, ModeOutput, 0); err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	h, err := table.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := h.File.WriteString("hello\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := table.Close(1); err != nil {
		t.Fatalf("CLOSE: %v", err)
	}
	if _, err := table.Get(1); err == nil {
		t.Fatal("expected handle 1 to be gone after CLOSE")
	}
}

func TestOpenDuplicateHandleFails(t *testing.T) {
	dir := t.TempDir()
	table := NewTable()
	path := filepath.Join(dir, "a.txt")
	if err := table.Open(1, path, ModeOutput, 0); err != nil {
		t.Fatalf("first OPEN: %v", err)
	}
	defer table.CloseAll()
	if err := table.Open(1, path, ModeOutput, 0); err == nil {
		t.Fatal("expected second OPEN on the same handle number to fail")
	}
}

func TestFieldAllocatesRecordBuffer(t *testing.T) {
	dir := t.TempDir()
	table := NewTable()
	path := filepath.Join(dir, "r.dat")
	if err := table.Open(1, path, ModeRandom, 20); err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	defer table.CloseAll()

	specs := []FieldSpec{{Name: "NAME$", Len: 10}, {Name: "AGE$", Len: 3}}
	if err := table.Field(1, specs); err != nil {
		t.Fatalf("FIELD: %v", err)
	}
	h, _ := table.Get(1)
	if len(h.Buffer) != 13 {
		t.Fatalf("buffer length = %d, want 13", len(h.Buffer))
	}

	Lset(mustField(t, h, "NAME$"), "BOB")
	got, ok := h.FieldValue("NAME$")
	if !ok {
		t.Fatal("FieldValue(NAME$) not found")
	}
	if string(got) != "BOB       " {
		t.Fatalf("got %q, want left-justified, space-padded BOB", string(got))
	}
}

func mustField(t *testing.T, h *Handle, name string) []byte {
	t.Helper()
	v, ok := h.FieldValue(name)
	if !ok {
		t.Fatalf("field %q not found", name)
	}
	return v
}

func TestPutGetRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	table := NewTable()
	path := filepath.Join(dir, "r.dat")
	if err := table.Open(1, path, ModeRandom, 5); err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	defer table.CloseAll()
	if err := table.Field(1, []FieldSpec{{Name: "F$", Len: 5}}); err != nil {
		t.Fatalf("FIELD: %v", err)
	}
	h, _ := table.Get(1)
	Lset(mustField(t, h, "F$"), "HI")
	if err := table.PutRecord(1, 1); err != nil {
		t.Fatalf("PUT: %v", err)
	}

	Lset(mustField(t, h, "F$"), "XXXXX")
	if err := table.GetRecord(1, 1); err != nil {
		t.Fatalf("GET: %v", err)
	}
	got, _ := h.FieldValue("F$")
	if string(got) != "HI   " {
		t.Fatalf("got %q, want %q", string(got), "HI   ")
	}
}

func TestKillRemovesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	table := NewTable()
	if err := table.Open(1, path, ModeOutput, 0); err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	table.Close(1)

	if err := Kill(path); err != nil {
		t.Fatalf("KILL: %v", err)
	}
	if err := Kill(path); err == nil {
		t.Fatal("expected second KILL on a missing file to fail")
	}
}

func TestMkdirRmdir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := Mkdir(sub); err != nil {
		t.Fatalf("MKDIR: %v", err)
	}
	if err := Rmdir(sub); err != nil {
		t.Fatalf("RMDIR: %v", err)
	}
}

func TestFilesListsGlobMatches(t *testing.T) {
	dir := t.TempDir()
	table := NewTable()
	for i, name := range []string{"one.bas", "two.bas"} {
		if err := table.Open(i+1, filepath.Join(dir, name), ModeOutput, 0); err != nil {
			t.Fatalf("OPEN %s: %v", name, err)
		}
	}
	table.CloseAll()

	names, err := Files(filepath.Join(dir, "*.bas"))
	if err != nil {
		t.Fatalf("FILES: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("got %d names, want 2: %v", len(names), names)
	}
}
