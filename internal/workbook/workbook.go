// Package workbook reads multi-sheet .xlsx files into header-keyed rows.
//
// Sheets are read eagerly and whole: the source workbooks are catalog-sized
// (thousands of rows, not millions), and the ingestion engine needs complete
// per-key fragment tables before any write happens, so there is nothing to
// gain from streaming.
package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row maps a column name to the raw cell text for one sheet row. Values are
// exactly as the cell renders; cleaning is the normalizer's job.
type Row map[string]string

// Sheet is one worksheet: its name, the trimmed header, and the data rows.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// HasColumn reports whether the header contains the named column.
func (s *Sheet) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Workbook holds all sheets of one .xlsx file, keyed by sheet name.
type Workbook struct {
	names  []string
	sheets map[string]*Sheet
}

// Open reads the workbook at path. A missing or unreadable file is an error;
// the caller decides whether that aborts the run.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("workbook: open %s: %w", path, err)
	}
	defer f.Close()
	return FromFile(f)
}

// FromFile builds a Workbook from an already-open excelize file. Exposed so
// tests can assemble workbooks in memory.
func FromFile(f *excelize.File) (*Workbook, error) {
	wb := &Workbook{sheets: map[string]*Sheet{}}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("workbook: read sheet %q: %w", name, err)
		}
		sh := buildSheet(name, rows)
		wb.names = append(wb.names, name)
		wb.sheets[name] = sh
	}
	return wb, nil
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	out := make([]string, len(wb.names))
	copy(out, wb.names)
	return out
}

// Sheet returns the named sheet and whether it exists.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	s, ok := wb.sheets[name]
	return s, ok
}

// buildSheet turns raw cell rows into a header-keyed Sheet.
//
// Header cells are trimmed; a blank header cell is named "Unnamed: <i>",
// matching the pandas convention the source exports use, so downstream
// placeholder filtering has a consistent name to match. Rows
// shorter than the header are padded with empty cells. Duplicate header
// names resolve last-column-wins.
func buildSheet(name string, raw [][]string) *Sheet {
	sh := &Sheet{Name: name}
	if len(raw) == 0 {
		return sh
	}
	for i, h := range raw[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		sh.Columns = append(sh.Columns, h)
	}
	for _, cells := range raw[1:] {
		row := make(Row, len(sh.Columns))
		for i, col := range sh.Columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		sh.Rows = append(sh.Rows, row)
	}
	return sh
}
