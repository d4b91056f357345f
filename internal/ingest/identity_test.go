package ingest

import (
	"testing"

	"carcatalog/internal/workbook"
)

func identitySheet(name string, rows ...workbook.Row) *workbook.Sheet {
	return &workbook.Sheet{
		Name:    name,
		Columns: []string{"Make", "Model", "Year", "URL", "Image URL"},
		Rows:    rows,
	}
}

func TestBuildIdentity(t *testing.T) {
	primary := identitySheet(SheetIdentityPrimary,
		workbook.Row{"Make": " Toyota ", "Model": "Camry", "Year": "2022.0", "URL": "u1", "Image URL": "i1"},
		workbook.Row{"Make": "BMW", "Model": "X5", "Year": "nan"},
		workbook.Row{"Make": "Audi", "Model": "RS6", "Year": "1949"},
	)

	ids := BuildIdentity(primary, nil)
	if len(ids) != 3 {
		t.Fatalf("identities = %d, want 3", len(ids))
	}

	if ids[0].Make != "Toyota" || ids[0].Model != "Camry" {
		t.Fatalf("row 1 = %q %q", ids[0].Make, ids[0].Model)
	}
	if ids[0].Year == nil || *ids[0].Year != 2022 {
		t.Fatalf("row 1 year = %v", ids[0].Year)
	}
	if ids[0].Row != 1 {
		t.Fatalf("row 1 number = %d", ids[0].Row)
	}
	if ids[1].Year != nil {
		t.Fatalf("nan year = %v", *ids[1].Year)
	}
	// out-of-range years are treated as absent, not kept
	if ids[2].Year != nil {
		t.Fatalf("1949 year = %v", *ids[2].Year)
	}
}

func TestBuildIdentityBackfill(t *testing.T) {
	primary := identitySheet(SheetIdentityPrimary,
		workbook.Row{"Make": "Toyota", "Model": "Camry", "Year": "2022", "URL": "", "Image URL": "own"},
		workbook.Row{"Make": "BMW", "Model": "X5", "Year": "2023", "URL": "keep", "Image URL": ""},
	)
	secondary := identitySheet(SheetIdentitySecondary,
		workbook.Row{"Make": "TOYOTA", "Model": "camry", "URL": "filled", "Image URL": "other"},
		workbook.Row{"Make": "Toyota", "Model": "Camry", "URL": "second-copy"},
		workbook.Row{"Make": "BMW", "Model": "X5", "URL": "ignored", "Image URL": "img"},
	)

	ids := BuildIdentity(primary, secondary)

	// empty fields fill from the first matching secondary row, case-insensitive
	if ids[0].URL != "filled" {
		t.Fatalf("URL = %q, want filled", ids[0].URL)
	}
	// a populated field is never overwritten
	if ids[0].ImageURL != "own" {
		t.Fatalf("ImageURL = %q, want own", ids[0].ImageURL)
	}
	if ids[1].URL != "keep" {
		t.Fatalf("URL = %q, want keep", ids[1].URL)
	}
	if ids[1].ImageURL != "img" {
		t.Fatalf("ImageURL = %q, want img", ids[1].ImageURL)
	}
}

func TestBuildIdentityKeepsEmptyRows(t *testing.T) {
	primary := identitySheet(SheetIdentityPrimary,
		workbook.Row{"Make": "none", "Model": "Camry"},
	)
	ids := BuildIdentity(primary, nil)
	if len(ids) != 1 {
		t.Fatalf("identities = %d, want 1", len(ids))
	}
	// invalid rows are kept here; the run loop drops and counts them
	if ids[0].Make != "" {
		t.Fatalf("Make = %q, want empty", ids[0].Make)
	}
}

func TestBuildIdentityMissingColumns(t *testing.T) {
	primary := &workbook.Sheet{
		Name:    SheetIdentityPrimary,
		Columns: []string{"Make", "Model"},
		Rows:    []workbook.Row{{"Make": "Kia", "Model": "Rio"}},
	}
	ids := BuildIdentity(primary, nil)
	if ids[0].Year != nil || ids[0].URL != "" || ids[0].ImageURL != "" {
		t.Fatalf("absent columns must read as empty: %+v", ids[0])
	}
}
