// Package sqlite implements the catalog store on SQLite via database/sql.
// This is the embedded, zero-infrastructure backend: the whole catalog lives
// in one file (or in memory for tests), which fits the read-heavy API the
// catalog feeds.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"carcatalog/internal/catalog"
	"carcatalog/internal/store"
)

func init() {
	store.Register("sqlite", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return New(ctx, cfg)
	})
}

// Repo is the SQLite-backed catalog store.
type Repo struct {
	db    *sql.DB
	table string
}

// New opens the SQLite database at cfg.DSN. DSNs are passed through to the
// driver, e.g. "catalog.db" or "file:catalog.db?cache=shared".
func New(ctx context.Context, cfg store.Config) (*Repo, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")
	return &Repo{db: db, table: cfg.TableOrDefault()}, nil
}

// EnsureSchema creates the catalog table and natural-key index.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		year INTEGER,
		price REAL,
		currency TEXT DEFAULT 'AED',
		image_url TEXT,
		image_urls TEXT,
		rating REAL DEFAULT 0.0,
		reviews INTEGER DEFAULT 0,
		specs TEXT,
		engines TEXT,
		statistics TEXT,
		source_sheets TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(make, model, year);`,
		ident(r.table), ident(r.table+"_natural_key_idx"))
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: ensure schema: %w", err)
	}
	return nil
}

// Begin starts the run's transaction.
func (r *Repo) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: begin: %w", err)
	}
	return &runTx{tx: tx, table: ident(r.table)}, nil
}

// Close closes the underlying handle.
func (r *Repo) Close(ctx context.Context) error { return r.db.Close() }

type runTx struct {
	tx    *sql.Tx
	table string
}

// FindByNaturalKey looks up a stored record id. SQLite's "IS" operator
// gives the NULL-safe year comparison: an absent year matches only NULL.
func (t *runTx) FindByNaturalKey(ctx context.Context, mk, model string, year *int) (int64, error) {
	q := fmt.Sprintf("SELECT id FROM %s WHERE make = ? AND model = ? AND year IS ?", t.table)
	var id int64
	err := t.tx.QueryRowContext(ctx, q, mk, model, yearArg(year)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: find: %w", err)
	}
	return id, nil
}

// Insert stores a new record and returns its id.
func (t *runTx) Insert(ctx context.Context, rec *catalog.Record) (int64, error) {
	a, err := store.Encode(rec)
	if err != nil {
		return 0, err
	}
	cols := append([]string{"make", "model", "year"}, store.Columns...)
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.table, strings.Join(cols, ", "), placeholders(len(cols)),
	)
	args := append([]any{a.Make, a.Model, a.Year}, a.NonIdentity()...)
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: last insert id: %w", err)
	}
	return id, nil
}

// Update overwrites the non-identity fields of an existing record and
// refreshes updated_at. Identity columns are never touched.
func (t *runTx) Update(ctx context.Context, id int64, rec *catalog.Record) error {
	a, err := store.Encode(rec)
	if err != nil {
		return err
	}
	sets := make([]string, len(store.Columns))
	for i, c := range store.Columns {
		sets[i] = c + " = ?"
	}
	q := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		t.table, strings.Join(sets, ", "),
	)
	args := append(a.NonIdentity(), id)
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("sqlite: update id=%d: %w", id, err)
	}
	return nil
}

func (t *runTx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *runTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }

// yearArg binds a nullable year: nil interface means SQL NULL.
func yearArg(y *int) any {
	if y == nil {
		return nil
	}
	return *y
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// ident quotes a single identifier.
func ident(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
