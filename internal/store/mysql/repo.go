// Package mysql implements the catalog store on MySQL/MariaDB via
// database/sql and go-sql-driver.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"carcatalog/internal/catalog"
	"carcatalog/internal/store"
)

func init() {
	store.Register("mysql", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return New(ctx, cfg)
	})
}

// Repo is the MySQL-backed catalog store.
type Repo struct {
	db    *sql.DB
	table string
}

// New opens a MySQL connection for cfg.DSN, e.g.
// "user:pass@tcp(localhost:3306)/catalog?parseTime=true".
func New(ctx context.Context, cfg store.Config) (*Repo, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repo{db: db, table: cfg.TableOrDefault()}, nil
}

// EnsureSchema creates the catalog table and natural-key index.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		make VARCHAR(255) NOT NULL,
		model VARCHAR(255) NOT NULL,
		year INT NULL,
		price DOUBLE,
		currency VARCHAR(8) DEFAULT 'AED',
		image_url TEXT,
		image_urls TEXT,
		rating DOUBLE DEFAULT 0.0,
		reviews INT DEFAULT 0,
		specs TEXT,
		engines TEXT,
		statistics TEXT,
		source_sheets TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX natural_key_idx (make, model, year)
	)`, myIdent(r.table))
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mysql: ensure schema: %w", err)
	}
	return nil
}

// Begin starts the run's transaction.
func (r *Repo) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mysql: begin: %w", err)
	}
	return &runTx{tx: tx, table: myIdent(r.table)}, nil
}

// Close closes the underlying handle.
func (r *Repo) Close(ctx context.Context) error { return r.db.Close() }

type runTx struct {
	tx    *sql.Tx
	table string
}

// FindByNaturalKey uses the NULL-safe equality operator (<=>) for the year
// so an absent year matches only NULL.
func (t *runTx) FindByNaturalKey(ctx context.Context, mk, model string, year *int) (int64, error) {
	q := fmt.Sprintf("SELECT id FROM %s WHERE make = ? AND model = ? AND year <=> ?", t.table)
	var id int64
	err := t.tx.QueryRowContext(ctx, q, mk, model, yearArg(year)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("mysql: find: %w", err)
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
		t.table, strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
	args := append([]any{a.Make, a.Model, a.Year}, a.NonIdentity()...)
	res, err := t.tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("mysql: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mysql: last insert id: %w", err)
	}
	return id, nil
}

// Update overwrites the non-identity fields of an existing record and
// refreshes updated_at.
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
		return fmt.Errorf("mysql: update id=%d: %w", id, err)
	}
	return nil
}

func (t *runTx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *runTx) Rollback(ctx context.Context) error { return t.tx.Rollback() }

func yearArg(y *int) any {
	if y == nil {
		return nil
	}
	return *y
}

// myIdent quotes a single identifier with backticks.
func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
