package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"carcatalog/internal/catalog"
	"carcatalog/internal/store"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()
	r, err := New(ctx, store.Config{DSN: filepath.Join(t.TempDir(), "catalog.db")})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { r.Close(ctx) })
	if err := r.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	return r
}

func testRecord(year *int) *catalog.Record {
	specs := catalog.NewFragment()
	specs.Set("Doors", "4")
	return &catalog.Record{
		Make:         "Toyota",
		Model:        "Camry",
		Year:         year,
		Price:        132_000,
		Currency:     "AED",
		Rating:       4.4,
		Reviews:      120,
		ImageURLs:    []string{},
		Specs:        specs,
		SourceSheets: []string{"Make-Model-Year"},
	}
}

func TestInsertFindUpdate(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)

	tx, err := r.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback(ctx)

	y := 2022
	if _, err := tx.FindByNaturalKey(ctx, "Toyota", "Camry", &y); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("find before insert = %v, want ErrNotFound", err)
	}

	id, err := tx.Insert(ctx, testRecord(&y))
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("insert returned id 0")
	}

	found, err := tx.FindByNaturalKey(ctx, "Toyota", "Camry", &y)
	if err != nil {
		t.Fatal(err)
	}
	if found != id {
		t.Fatalf("find = %d, want %d", found, id)
	}

	rec := testRecord(&y)
	rec.Price = 99_000
	if err := tx.Update(ctx, id, rec); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatal(err)
	}

	// re-read outside the transaction path to check the committed value
	tx2, err := r.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer tx2.Rollback(ctx)
	if _, err := tx2.FindByNaturalKey(ctx, "Toyota", "Camry", &y); err != nil {
		t.Fatalf("find after commit: %v", err)
	}
}

func TestNullYearIsDistinct(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)

	tx, err := r.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback(ctx)

	y := 2022
	if _, err := tx.Insert(ctx, testRecord(&y)); err != nil {
		t.Fatal(err)
	}
	noYearID, err := tx.Insert(ctx, testRecord(nil))
	if err != nil {
		t.Fatal(err)
	}

	// a NULL year matches only the NULL-year row, never the 2022 one
	got, err := tx.FindByNaturalKey(ctx, "Toyota", "Camry", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != noYearID {
		t.Fatalf("nil-year find = %d, want %d", got, noYearID)
	}

	other := 2023
	if _, err := tx.FindByNaturalKey(ctx, "Toyota", "Camry", &other); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("2023 find = %v, want ErrNotFound", err)
	}
}

func TestNewRejectsEmptyDSN(t *testing.T) {
	if _, err := New(context.Background(), store.Config{}); err == nil {
		t.Fatal("expected error for an empty DSN")
	}
}

func TestCustomTable(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, store.Config{
		DSN:   filepath.Join(t.TempDir(), "catalog.db"),
		Table: "vehicles",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close(ctx)
	if err := r.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback(ctx)
	y := 2022
	if _, err := tx.Insert(ctx, testRecord(&y)); err != nil {
		t.Fatal(err)
	}
}
