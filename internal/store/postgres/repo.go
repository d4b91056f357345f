// Package postgres implements the catalog store on PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carcatalog/internal/catalog"
	"carcatalog/internal/store"
)

func init() {
	store.Register("postgres", func(ctx context.Context, cfg store.Config) (store.Store, error) {
		return New(ctx, cfg)
	})
}

// Repo is the Postgres-backed catalog store.
type Repo struct {
	pool  *pgxpool.Pool
	table string
}

// New connects a pgx pool to cfg.DSN.
func New(ctx context.Context, cfg store.Config) (*Repo, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	return &Repo{pool: pool, table: cfg.TableOrDefault()}, nil
}

// EnsureSchema creates the catalog table and natural-key index.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id BIGSERIAL PRIMARY KEY,
		make TEXT NOT NULL,
		model TEXT NOT NULL,
		year INTEGER,
		price DOUBLE PRECISION,
		currency TEXT DEFAULT 'AED',
		image_url TEXT,
		image_urls TEXT,
		rating DOUBLE PRECISION DEFAULT 0.0,
		reviews INTEGER DEFAULT 0,
		specs TEXT,
		engines TEXT,
		statistics TEXT,
		source_sheets TEXT,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (make, model, year);`,
		pgFQN(r.table), pgIdent(r.table+"_natural_key_idx"))
	if _, err := r.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

// Begin starts the run's transaction.
func (r *Repo) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: begin: %w", err)
	}
	return &runTx{tx: tx, table: pgFQN(r.table)}, nil
}

// Close releases the pool.
func (r *Repo) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

type runTx struct {
	tx    pgx.Tx
	table string
}

// FindByNaturalKey uses IS NOT DISTINCT FROM so a NULL year matches only a
// NULL year, never 0 or any concrete value.
func (t *runTx) FindByNaturalKey(ctx context.Context, mk, model string, year *int) (int64, error) {
	q := fmt.Sprintf(
		"SELECT id FROM %s WHERE make = $1 AND model = $2 AND year IS NOT DISTINCT FROM $3",
		t.table,
	)
	var id int64
	err := t.tx.QueryRow(ctx, q, mk, model, year).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: find: %w", err)
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
	ph := make([]string, len(cols))
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		t.table, strings.Join(cols, ", "), strings.Join(ph, ", "),
	)
	args := append([]any{a.Make, a.Model, a.Year}, a.NonIdentity()...)
	var id int64
	if err := t.tx.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres: insert: %w", err)
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
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	q := fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = now() WHERE id = $%d",
		t.table, strings.Join(sets, ", "), len(store.Columns)+1,
	)
	args := append(a.NonIdentity(), id)
	if _, err := t.tx.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("postgres: update id=%d: %w", id, err)
	}
	return nil
}

func (t *runTx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *runTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

// pgIdent safely quotes a single identifier segment.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.cars" to
// "public"."cars".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}
