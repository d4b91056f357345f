// Package store contains the storage-agnostic contract for the catalog
// store plus the backend registry. Concrete backends (postgres, sqlite,
// mysql, mssql) live in subpackages and register themselves at init time;
// importing store/all enables every built-in backend.
//
// The engine's only obligations to the store are idempotent natural-key
// upserts and the lookup that powers them; the HTTP API that reads these
// records is an external collaborator.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"carcatalog/internal/catalog"
)

// ErrNotFound is returned by Tx.FindByNaturalKey when no stored record
// matches the (make, model, year) triple.
var ErrNotFound = errors.New("store: record not found")

// Config selects and configures a backend.
type Config struct {
	// Kind selects the backend: "sqlite", "postgres", "mysql", "mssql".
	Kind string `json:"kind"`

	// DSN is the backend connection string (or file path for sqlite).
	DSN string `json:"dsn"`

	// Table is the destination table name. Empty selects "cars".
	Table string `json:"table"`
}

// TableOrDefault returns the configured table name or "cars".
func (c Config) TableOrDefault() string {
	if c.Table == "" {
		return "cars"
	}
	return c.Table
}

// Store is an open catalog store. One ingestion run owns the connection
// exclusively for its duration; concurrent runs against the same store must
// be serialized by the caller.
type Store interface {
	// EnsureSchema creates the catalog table and its natural-key index if
	// they do not exist yet.
	EnsureSchema(ctx context.Context) error

	// Begin opens the single logical transaction an ingestion run writes in.
	Begin(ctx context.Context) (Tx, error)

	Close(ctx context.Context) error
}

// Tx is the write scope of one ingestion run. All rows commit together at
// the end; a failed run is restarted from scratch.
//
// Year comparison in FindByNaturalKey must distinguish an absent year from
// every concrete year: NULL matches only NULL, never 0.
type Tx interface {
	FindByNaturalKey(ctx context.Context, make, model string, year *int) (int64, error)
	Insert(ctx context.Context, rec *catalog.Record) (int64, error)
	Update(ctx context.Context, id int64, rec *catalog.Record) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory constructs a Store for a backend kind.
type Factory func(ctx context.Context, cfg Config) (Store, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for a backend kind. Called
// from backend packages' init functions.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// Open builds a Store for cfg.Kind. Unknown kinds are an error listing
// nothing but the offending kind; backends available in this binary depend
// on which backend packages were linked in.
func Open(ctx context.Context, cfg Config) (Store, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("store: no backend registered for kind %q", cfg.Kind)
	}
	return fn(ctx, cfg)
}
