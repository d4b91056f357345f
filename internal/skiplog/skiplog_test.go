package skiplog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
)

func TestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skipped", "catalog.csv")

	l, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	l.Add("Basic Specs", 12, "missing make/model", "nan")
	l.Add("Statistics", 3, "missing make/model", "Tesla")
	l.Add("Make-Model-Year", 7, "empty row", "")

	reasons := l.Reasons()
	if reasons["missing make/model"] != 2 || reasons["empty row"] != 1 {
		t.Fatalf("reasons = %v", reasons)
	}

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "sheet" || rows[0][3] != "naming" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[1][0] != "Basic Specs" || rows[1][1] != "12" || rows[1][3] != "nan" {
		t.Fatalf("first row = %v", rows[1])
	}
}

func TestNewBadPath(t *testing.T) {
	dir := t.TempDir()
	// a directory where the file should go
	if _, err := New(dir); err == nil {
		t.Fatal("expected error when the target is a directory")
	}
}
