// Package mssql implements the catalog store on Microsoft SQL Server via
// database/sql and go-mssqldb.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"carcatalog/internal/catalog"
	"carcatalog/internal/store"
)

func init() {
	store.Register("mssql", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return New(ctx, cfg)
	})
}

// Repo is the MSSQL-backed catalog store.
type Repo struct {
	db    *sql.DB
	table string
}

// New opens a SQL Server connection for cfg.DSN. The DSN is validated
// up-front to fail fast on obvious mistakes.
func New(ctx context.Context, cfg store.Config) (*Repo, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql: dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mssql: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mssql: ping: %w", err)
	}
	return &Repo{db: db, table: cfg.TableOrDefault()}, nil
}

// EnsureSchema creates the catalog table and natural-key index.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
	IF OBJECT_ID(N'%[2]s', N'U') IS NULL
	CREATE TABLE %[1]s (
		id BIGINT IDENTITY(1,1) PRIMARY KEY,
		make NVARCHAR(255) NOT NULL,
		model NVARCHAR(255) NOT NULL,
		year INT NULL,
		price FLOAT,
		currency NVARCHAR(8) DEFAULT 'AED',
		image_url NVARCHAR(MAX),
		image_urls NVARCHAR(MAX),
		rating FLOAT DEFAULT 0.0,
		reviews INT DEFAULT 0,
		specs NVARCHAR(MAX),
		engines NVARCHAR(MAX),
		statistics NVARCHAR(MAX),
		source_sheets NVARCHAR(MAX),
		created_at DATETIME2 DEFAULT SYSUTCDATETIME(),
		updated_at DATETIME2 DEFAULT SYSUTCDATETIME(),
		INDEX natural_key_idx (make, model, year)
	)`, msFQN(r.table), strings.ReplaceAll(r.table, "'", "''"))
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mssql: ensure schema: %w", err)
	}
	return nil
}

// Begin starts the run's transaction.
func (r *Repo) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("mssql: begin: %w", err)
	}
	return &runTx{tx: tx, table: msFQN(r.table)}, nil
}

// Close closes the underlying handle.
func (r *Repo) Close(ctx context.Context) error { return r.db.Close() }

type runTx struct {
	tx    *sql.Tx
	table string
}

// FindByNaturalKey spells out the NULL branch explicitly; SQL Server has no
// NULL-safe equality operator.
func (t *runTx) FindByNaturalKey(ctx context.Context, mk, model string, year *int) (int64, error) {
	q := fmt.Sprintf(
		`SELECT id FROM %s
		 WHERE make = @p1 AND model = @p2
		   AND ((year IS NULL AND @p3 IS NULL) OR year = @p3)`,
		t.table,
	)
	var id int64
	err := t.tx.QueryRowContext(ctx, q, mk, model, yearArg(year)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("mssql: find: %w", err)
	}
	return id, nil
}

// Insert stores a new record and returns its id via OUTPUT INSERTED.
func (t *runTx) Insert(ctx context.Context, rec *catalog.Record) (int64, error) {
	a, err := store.Encode(rec)
	if err != nil {
		return 0, err
	}
	cols := append([]string{"make", "model", "year"}, store.Columns...)
	ph := make([]string, len(cols))
	for i := range ph {
		ph[i] = fmt.Sprintf("@p%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) OUTPUT INSERTED.id VALUES (%s)",
		t.table, strings.Join(cols, ", "), strings.Join(ph, ", "),
	)
	args := append([]any{a.Make, a.Model, a.Year}, a.NonIdentity()...)
	var id int64
	if err := t.tx.QueryRowContext(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("mssql: insert: %w", err)
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
		sets[i] = fmt.Sprintf("%s = @p%d", c, i+1)
	}
	q := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = SYSUTCDATETIME() WHERE id = @p%d",
		t.table, strings.Join(sets, ", "), len(store.Columns)+1,
	)
	args := append(a.NonIdentity(), id)
	if _, err := t.tx.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("mssql: update id=%d: %w", id, err)
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

// msIdent quotes a single identifier segment with brackets.
func msIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// msFQN quotes a possibly schema-qualified name like "dbo.cars".
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}
