package ingest

import (
	"strings"

	"carcatalog/internal/normalize"
	"carcatalog/internal/workbook"
)

// Identity column names on the Make-Model-Year and Make-Model sheets.
const (
	colMake     = "Make"
	colModel    = "Model"
	colYear     = "Year"
	colURL      = "URL"
	colImageURL = "Image URL"
)

// Identity is one row of the authoritative vehicle list. Raw keeps the
// original row so the synthesizer can consult extra columns (Price,
// Currency) that are not identity fields.
type Identity struct {
	Make     string
	Model    string
	Year     *int
	URL      string
	ImageURL string

	Raw workbook.Row
	Row int // 1-based data row number in the primary sheet
}

// BuildIdentity reads the primary identity sheet into the list of vehicles
// to emit. Identity columns absent from the sheet behave as empty so
// downstream code can assume a fixed column set; year is coerced to a
// nullable int with implausible values treated as absent.
//
// When a secondary identity sheet is present, empty URL and image-URL
// fields are backfilled by a left-merge on (make, model); year is excluded
// because the secondary sheet may not carry one. A non-empty value is never
// overwritten. When a make/model pair repeats in the secondary sheet, the
// first occurrence wins.
//
// Rows with an empty make or model are kept: the synthesis loop drops and
// counts them, so all skip accounting lives in one place.
func BuildIdentity(primary *workbook.Sheet, secondary *workbook.Sheet) []Identity {
	fill := buildBackfill(secondary)

	out := make([]Identity, 0, len(primary.Rows))
	for i, row := range primary.Rows {
		id := Identity{
			Make:     normalize.Clean(row[colMake]),
			Model:    normalize.Clean(row[colModel]),
			Year:     normalize.YearOf(row[colYear]),
			URL:      normalize.Clean(row[colURL]),
			ImageURL: normalize.Clean(row[colImageURL]),
			Raw:      row,
			Row:      i + 1,
		}
		if b, ok := fill[backfillKey(id.Make, id.Model)]; ok {
			if id.URL == "" {
				id.URL = b.url
			}
			if id.ImageURL == "" {
				id.ImageURL = b.imageURL
			}
		}
		out = append(out, id)
	}
	return out
}

type backfill struct {
	url      string
	imageURL string
}

func buildBackfill(secondary *workbook.Sheet) map[string]backfill {
	fill := map[string]backfill{}
	if secondary == nil {
		return fill
	}
	for _, row := range secondary.Rows {
		mk := normalize.Clean(row[colMake])
		model := normalize.Clean(row[colModel])
		if mk == "" || model == "" {
			continue
		}
		k := backfillKey(mk, model)
		if _, seen := fill[k]; seen {
			continue // first occurrence wins
		}
		fill[k] = backfill{
			url:      normalize.Clean(row[colURL]),
			imageURL: normalize.Clean(row[colImageURL]),
		}
	}
	return fill
}

func backfillKey(mk, model string) string {
	return strings.ToLower(mk) + "\x1f" + strings.ToLower(model)
}
