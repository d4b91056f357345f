package store

import (
	"encoding/json"
	"fmt"

	"carcatalog/internal/catalog"
)

// Columns is the ordered list of non-identity columns every backend writes.
// Identity columns (make, model, year) are bound separately because updates
// must never touch them.
var Columns = []string{
	"price", "currency", "image_url", "image_urls",
	"rating", "reviews", "specs", "engines", "statistics", "source_sheets",
}

// Args holds a record encoded for SQL parameter binding, shared by all
// backends so the JSON payload shapes cannot drift between them.
type Args struct {
	Make  string
	Model string
	// Year is nil for an absent year and binds to SQL NULL.
	Year any

	Price    float64
	Currency string
	ImageURL string
	// ImageURLs is always a JSON array, "[]" when there is no image.
	ImageURLs string
	Rating    float64
	Reviews   int
	// Specs, Engines, Statistics are JSON text, or nil (SQL NULL) when the
	// source sheets contributed nothing.
	Specs        any
	Engines      any
	Statistics   any
	SourceSheets string
}

// NonIdentity returns the argument values aligned to Columns order.
func (a Args) NonIdentity() []any {
	return []any{
		a.Price, a.Currency, a.ImageURL, a.ImageURLs,
		a.Rating, a.Reviews, a.Specs, a.Engines, a.Statistics, a.SourceSheets,
	}
}

// Encode converts a record into bind-ready arguments.
func Encode(rec *catalog.Record) (Args, error) {
	a := Args{
		Make:     rec.Make,
		Model:    rec.Model,
		Price:    rec.Price,
		Currency: rec.Currency,
		ImageURL: rec.ImageURL,
		Rating:   rec.Rating,
		Reviews:  rec.Reviews,
	}
	if rec.Year != nil {
		a.Year = *rec.Year
	}

	urls := rec.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return Args{}, fmt.Errorf("store: encode image_urls: %w", err)
	}
	a.ImageURLs = string(b)

	if rec.Specs.Len() > 0 {
		b, err := json.Marshal(rec.Specs)
		if err != nil {
			return Args{}, fmt.Errorf("store: encode specs: %w", err)
		}
		a.Specs = string(b)
	}
	if len(rec.Engines) > 0 {
		b, err := json.Marshal(rec.Engines)
		if err != nil {
			return Args{}, fmt.Errorf("store: encode engines: %w", err)
		}
		a.Engines = string(b)
	}
	if rec.Statistics.Len() > 0 {
		b, err := json.Marshal(rec.Statistics)
		if err != nil {
			return Args{}, fmt.Errorf("store: encode statistics: %w", err)
		}
		a.Statistics = string(b)
	}

	sheets := rec.SourceSheets
	if sheets == nil {
		sheets = []string{}
	}
	b, err = json.Marshal(sheets)
	if err != nil {
		return Args{}, fmt.Errorf("store: encode source_sheets: %w", err)
	}
	a.SourceSheets = string(b)

	return a, nil
}
