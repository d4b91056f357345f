// Package skiplog records dropped rows to a CSV artifact so a run's skips
// can be audited after the fact. Skipping is normal operation (sparse
// sheets, junk naming cells); the log exists for the occasional "where did
// my row go" question, not for alerting.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Log writes one CSV line per skipped row and tallies reasons.
type Log struct {
	reasons map[string]int
	w       *csv.Writer
	f       *os.File
}

// New creates (truncating) the skip log at path, creating parent
// directories as needed.
func New(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("skiplog: create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("skiplog: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"sheet", "row_number", "reason", "naming"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("skiplog: write header: %w", err)
	}
	return &Log{reasons: map[string]int{}, w: w, f: f}, nil
}

// Add records one skipped row.
func (l *Log) Add(sheet string, row int, reason, naming string) {
	l.reasons[reason]++
	_ = l.w.Write([]string{sheet, strconv.Itoa(row), reason, naming})
}

// Reasons returns the tally of skip reasons seen so far.
func (l *Log) Reasons() map[string]int {
	out := make(map[string]int, len(l.reasons))
	for k, v := range l.reasons {
		out[k] = v
	}
	return out
}

// Close flushes and closes the underlying file.
func (l *Log) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.f.Close()
		return fmt.Errorf("skiplog: flush: %w", err)
	}
	return l.f.Close()
}
