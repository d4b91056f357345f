package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"carcatalog/internal/catalog"
	"carcatalog/internal/metrics"
	"carcatalog/internal/store"
	"carcatalog/internal/workbook"
)

// Workbook sheet names. Make-Model-Year is mandatory; the rest are optional.
const (
	SheetIdentityPrimary   = "Make-Model-Year"
	SheetIdentitySecondary = "Make-Model"
	SheetSpecs             = "Basic Specs"
	SheetEngines           = "Engine Specs"
	SheetStatistics        = "Statistics"
)

// Options tunes one ingestion run.
type Options struct {
	// Job names the run in logs and metrics. Empty means "catalog_ingest".
	Job string

	// OnSkip, when set, receives every dropped row (for the skip log).
	// Skips are always counted in the summary regardless.
	OnSkip SkipFunc
}

// Summary reports what one ingestion run did.
type Summary struct {
	IdentityRows  int
	Upserted      int
	Inserted      int
	Updated       int
	Skipped       int
	PersistErrors int
	SkipReasons   map[string]int
	Duration      time.Duration
}

// skipList collects skipped rows inside one reducer goroutine. Each
// goroutine owns its own list; they are folded into the summary after Wait,
// so the shared skip accounting stays single-threaded.
type skipList struct {
	rows []skippedRow
}

type skippedRow struct {
	sheet  string
	row    int
	reason string
	naming string
}

func (l *skipList) add(sheet string, row int, reason, naming string) {
	l.rows = append(l.rows, skippedRow{sheet: sheet, row: row, reason: reason, naming: naming})
}

// Run executes one full ingestion pass: reduce the attribute sheets into
// per-key fragment tables, build the identity list, then synthesize and
// upsert every vehicle inside a single store transaction.
//
// Only input-level failures abort the run: a missing primary sheet, or a
// store that cannot open its transaction. Per-row failures are logged,
// counted, and skipped so one malformed row never sinks the batch.
func Run(ctx context.Context, wb *workbook.Workbook, st store.Store, opts Options) (Summary, error) {
	start := time.Now()
	job := opts.Job
	if job == "" {
		job = "catalog_ingest"
	}

	sum := Summary{SkipReasons: map[string]int{}}
	skip := func(sheet string, row int, reason, naming string) {
		sum.Skipped++
		sum.SkipReasons[reason]++
		if opts.OnSkip != nil {
			opts.OnSkip(sheet, row, reason, naming)
		}
	}

	primary, ok := wb.Sheet(SheetIdentityPrimary)
	if !ok {
		return sum, fmt.Errorf("ingest: mandatory sheet %q not found (have %v)",
			SheetIdentityPrimary, wb.SheetNames())
	}
	secondary, secondaryPresent := wb.Sheet(SheetIdentitySecondary)

	// Phase 1: fold the three attribute sheets into immutable per-key
	// fragment tables. The sheets are independent, so they reduce
	// concurrently; each goroutine owns its own result map and skip list.
	var (
		specs   map[string]*catalog.Fragment
		engines map[string][]*catalog.Fragment
		stats   map[string]*catalog.Fragment

		specSkips, engineSkips, statSkips skipList
	)
	reduceStart := time.Now()
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		sh, _ := wb.Sheet(SheetSpecs)
		specs = ReduceAttributes(sh, specSkips.add)
		return nil
	})
	g.Go(func() error {
		sh, _ := wb.Sheet(SheetEngines)
		engines = ReduceEngines(sh, engineSkips.add)
		return nil
	})
	g.Go(func() error {
		sh, _ := wb.Sheet(SheetStatistics)
		stats = ReduceAttributes(sh, statSkips.add)
		return nil
	})
	_ = g.Wait()
	for _, l := range []*skipList{&specSkips, &engineSkips, &statSkips} {
		for _, r := range l.rows {
			skip(r.sheet, r.row, r.reason, r.naming)
		}
	}
	metrics.RecordStep(job, "reduce", nil, time.Since(reduceStart))
	log.Printf("ingest: reduced specs=%d engines=%d statistics=%d keys",
		len(specs), len(engines), len(stats))

	// Phase 2: authoritative identity list, backfilled from the secondary
	// sheet when it exists.
	identities := BuildIdentity(primary, secondary)
	sum.IdentityRows = len(identities)
	log.Printf("ingest: identity rows=%d (secondary=%v)", len(identities), secondaryPresent)

	// Phase 3: synthesize and upsert sequentially inside one transaction.
	if err := st.EnsureSchema(ctx); err != nil {
		return sum, fmt.Errorf("ingest: ensure schema: %w", err)
	}
	tx, err := st.Begin(ctx)
	if err != nil {
		return sum, fmt.Errorf("ingest: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	writeStart := time.Now()
	for _, id := range identities {
		if id.Make == "" || id.Model == "" {
			skip(SheetIdentityPrimary, id.Row, "missing make/model", id.Raw[colMake]+" "+id.Raw[colModel])
			continue
		}
		rec := Synthesize(id, specs, engines, stats, secondaryPresent)
		inserted, err := upsert(ctx, tx, rec)
		if err != nil {
			sum.PersistErrors++
			log.Printf("ingest: upsert %s: %v", rec.NaturalKey(), err)
			continue
		}
		sum.Upserted++
		if inserted {
			sum.Inserted++
		} else {
			sum.Updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return sum, fmt.Errorf("ingest: commit: %w", err)
	}
	metrics.RecordStep(job, "write", nil, time.Since(writeStart))

	sum.Duration = time.Since(start)
	metrics.RecordRow(job, "identity_rows", int64(sum.IdentityRows))
	metrics.RecordRow(job, "upserted", int64(sum.Upserted))
	metrics.RecordRow(job, "inserted", int64(sum.Inserted))
	metrics.RecordRow(job, "updated", int64(sum.Updated))
	metrics.RecordRow(job, "skipped", int64(sum.Skipped))
	metrics.RecordRow(job, "persist_errors", int64(sum.PersistErrors))

	rps := float64(sum.Upserted) / sum.Duration.Seconds()
	log.Printf("ingest: upserted=%d (inserted=%d updated=%d) skipped=%d persist_errors=%d duration=%s rate_per_second=%.0f",
		sum.Upserted, sum.Inserted, sum.Updated, sum.Skipped, sum.PersistErrors,
		sum.Duration.Round(time.Millisecond), rps)
	return sum, nil
}

// upsert writes one record by natural key: update in place when the triple
// already exists, insert otherwise. The returned bool is true for an insert.
func upsert(ctx context.Context, tx store.Tx, rec *catalog.Record) (bool, error) {
	id, err := tx.FindByNaturalKey(ctx, rec.Make, rec.Model, rec.Year)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if _, err := tx.Insert(ctx, rec); err != nil {
			return false, err
		}
		return true, nil
	case err != nil:
		return false, err
	default:
		return false, tx.Update(ctx, id, rec)
	}
}
