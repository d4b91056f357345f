package ingest

import (
	"testing"

	"carcatalog/internal/catalog"
	"carcatalog/internal/workbook"
)

func specsSheet(rows ...workbook.Row) *workbook.Sheet {
	return &workbook.Sheet{
		Name:    SheetSpecs,
		Columns: []string{"Naming", "Doors", "Seats", "Unnamed: 3"},
		Rows:    rows,
	}
}

func TestReduceAttributesMergesRows(t *testing.T) {
	sheet := specsSheet(
		workbook.Row{"Naming": "Toyota Camry 2022", "Doors": "4", "Seats": "5"},
		workbook.Row{"Naming": "Toyota Camry 2022", "Doors": "2"},
	)

	out := ReduceAttributes(sheet, nil)
	if len(out) != 1 {
		t.Fatalf("keys = %d, want 1", len(out))
	}

	y := 2022
	frag := out[catalog.Key{Make: "Toyota", Model: "Camry", Year: &y}.MapKey()]
	if frag == nil {
		t.Fatal("fragment missing for Toyota Camry 2022")
	}
	// the later row wins the Doors collision; Seats survives the merge
	if v, _ := frag.Get("Doors"); v != "2" {
		t.Fatalf("Doors = %q, want 2", v)
	}
	if v, _ := frag.Get("Seats"); v != "5" {
		t.Fatalf("Seats = %q, want 5", v)
	}
}

func TestReduceAttributesSkipsBadNaming(t *testing.T) {
	sheet := specsSheet(
		workbook.Row{"Naming": "nan", "Doors": "4"},
		workbook.Row{"Naming": "Tesla", "Doors": "2"}, // make only, no model
		workbook.Row{"Naming": "BMW X5", "Doors": "5"},
	)

	var skipped []string
	out := ReduceAttributes(sheet, func(sh string, row int, reason, naming string) {
		skipped = append(skipped, naming)
	})
	if len(out) != 1 {
		t.Fatalf("keys = %d, want 1", len(out))
	}
	if len(skipped) != 2 {
		t.Fatalf("skipped = %v, want 2 rows", skipped)
	}
}

func TestReduceAttributesDropsEmptyAndPlaceholder(t *testing.T) {
	sheet := specsSheet(
		workbook.Row{"Naming": "BMW X5", "Doors": "none", "Seats": "", "Unnamed: 3": "junk"},
	)
	out := ReduceAttributes(sheet, nil)
	// every value normalized to empty and the placeholder column is excluded,
	// so no fragment is recorded at all
	if len(out) != 0 {
		t.Fatalf("keys = %d, want 0", len(out))
	}
}

func TestReduceAttributesNoNamingColumn(t *testing.T) {
	sheet := &workbook.Sheet{
		Name:    SheetSpecs,
		Columns: []string{"Doors"},
		Rows:    []workbook.Row{{"Doors": "4"}},
	}
	if out := ReduceAttributes(sheet, nil); len(out) != 0 {
		t.Fatalf("keys = %d, want 0", len(out))
	}
	if out := ReduceAttributes(nil, nil); len(out) != 0 {
		t.Fatal("nil sheet must reduce to nothing")
	}
}

func TestReduceEnginesKeepsVariants(t *testing.T) {
	sheet := &workbook.Sheet{
		Name:    SheetEngines,
		Columns: []string{"Naming", "Engine", "Horsepower"},
		Rows: []workbook.Row{
			{"Naming": "BMW X5 2023", "Engine": "3.0L I6", "Horsepower": "375"},
			{"Naming": "BMW X5 2023", "Engine": "4.4L V8", "Horsepower": "523"},
			{"Naming": "BMW X5 2023"}, // all attributes empty, dropped
		},
	}

	out := ReduceEngines(sheet, nil)
	y := 2023
	variants := out[catalog.Key{Make: "BMW", Model: "X5", Year: &y}.MapKey()]
	if len(variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(variants))
	}
	if v, _ := variants[0].Get("Engine"); v != "3.0L I6" {
		t.Fatalf("variant 0 Engine = %q", v)
	}
	if v, _ := variants[1].Get("Horsepower"); v != "523" {
		t.Fatalf("variant 1 Horsepower = %q", v)
	}
}
