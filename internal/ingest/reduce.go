// Package ingest is the catalog reconciliation engine. It folds the
// workbook's sheets into per-key fragment tables, builds the authoritative
// identity list, synthesizes complete catalog records, and upserts them by
// natural key. Raw sheets flow strictly downstream: normalizer, keyed
// fragment maps, identity builder, synthesizer, upsert writer. Nothing reads
// back from the store mid-run.
package ingest

import (
	"strings"

	"carcatalog/internal/catalog"
	"carcatalog/internal/normalize"
	"carcatalog/internal/workbook"
)

// NamingColumn is the free-text key column on the attribute sheets.
const NamingColumn = "Naming"

// SkipFunc receives every dropped row: the sheet, the 1-based data row
// number, a short reason, and the raw naming cell for context.
type SkipFunc func(sheet string, row int, reason, naming string)

// ReduceAttributes folds an attribute sheet (Basic Specs, Statistics) into a
// map from canonical key to one merged fragment per vehicle. A vehicle
// appearing on several rows assembles its attributes incrementally;
// attribute-name collisions resolve last-write-wins in row order.
//
// A sheet without a Naming column contributes nothing. Rows whose naming
// parses to an empty make or model are skipped, not errors.
func ReduceAttributes(sheet *workbook.Sheet, skip SkipFunc) map[string]*catalog.Fragment {
	out := map[string]*catalog.Fragment{}
	if sheet == nil || !sheet.HasColumn(NamingColumn) {
		return out
	}
	for i, row := range sheet.Rows {
		key, ok := rowKey(sheet.Name, i+1, row, skip)
		if !ok {
			continue
		}
		frag := fragmentFromRow(sheet, row)
		if frag.Len() == 0 {
			continue
		}
		acc, ok := out[key]
		if !ok {
			acc = catalog.NewFragment()
			out[key] = acc
		}
		acc.Merge(frag)
	}
	return out
}

// ReduceEngines folds the engine sheet into a map from canonical key to the
// ordered list of engine-variant fragments. Engines are never merged into
// each other: one vehicle legitimately has multiple distinct engine
// configurations, one per physical row. Empty fragments are dropped.
func ReduceEngines(sheet *workbook.Sheet, skip SkipFunc) map[string][]*catalog.Fragment {
	out := map[string][]*catalog.Fragment{}
	if sheet == nil || !sheet.HasColumn(NamingColumn) {
		return out
	}
	for i, row := range sheet.Rows {
		key, ok := rowKey(sheet.Name, i+1, row, skip)
		if !ok {
			continue
		}
		frag := fragmentFromRow(sheet, row)
		if frag.Len() == 0 {
			continue
		}
		out[key] = append(out[key], frag)
	}
	return out
}

// rowKey derives the canonical join key from the row's naming cell.
func rowKey(sheetName string, rowNum int, row workbook.Row, skip SkipFunc) (string, bool) {
	naming := row[NamingColumn]
	mk, model, year := normalize.ParseNaming(naming)
	if mk == "" || model == "" {
		if skip != nil {
			skip(sheetName, rowNum, "missing make/model", naming)
		}
		return "", false
	}
	return catalog.Key{Make: mk, Model: model, Year: year}.MapKey(), true
}

// fragmentFromRow builds a fragment from every column except the naming
// column and spreadsheet placeholder artifacts, dropping values that
// normalize to empty.
func fragmentFromRow(sheet *workbook.Sheet, row workbook.Row) *catalog.Fragment {
	frag := catalog.NewFragment()
	for _, col := range sheet.Columns {
		if col == NamingColumn || isPlaceholderColumn(col) {
			continue
		}
		v := normalize.Clean(row[col])
		if v == "" {
			continue
		}
		frag.Set(col, v)
	}
	return frag
}

// isPlaceholderColumn matches header artifacts such as "Unnamed: 3" left by
// spreadsheet tools for blank or index columns.
func isPlaceholderColumn(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "unnamed")
}
