// Command ingest runs one catalog ingestion pass: it reads the workbook,
// reconciles the sheets into complete catalog records, and upserts them
// into the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"carcatalog/internal/config"
	"carcatalog/internal/ingest"
	"carcatalog/internal/metrics"
	"carcatalog/internal/metrics/datadog"
	"carcatalog/internal/metrics/prompush"
	"carcatalog/internal/skiplog"
	"carcatalog/internal/store"
	"carcatalog/internal/workbook"

	// register all store backends; the config selects which one runs.
	_ "carcatalog/internal/store/all"
)

func main() {
	var (
		cfgPath  string
		wbPath   string
		kind     string
		dsn      string
		table    string
		validate bool
	)
	flag.StringVar(&cfgPath, "config", "", "config JSON path (flags override its values)")
	flag.StringVar(&wbPath, "workbook", "", "workbook .xlsx path")
	flag.StringVar(&kind, "driver", "", "store backend: sqlite, postgres, mysql, mssql")
	flag.StringVar(&dsn, "dsn", "", "store DSN (or env CATALOG_DSN)")
	flag.StringVar(&table, "table", "", `destination table (default "cars")`)
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	// .env is a convenience for local runs; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := buildConfig(cfgPath, wbPath, kind, dsn, table)
	if err != nil {
		fatalf("%v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	if validate {
		log.Printf("configuration is valid")
		return
	}

	setupMetrics(cfg)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()

	st, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		fatalf("open store: %v", err)
	}
	defer st.Close(ctx)

	wb, err := workbook.Open(cfg.Workbook)
	if err != nil {
		fatalf("%v", err)
	}

	opts := ingest.Options{Job: cfg.Job}
	var sk *skiplog.Log
	if cfg.SkipLog != "" {
		sk, err = skiplog.New(cfg.SkipLog)
		if err != nil {
			// The skip log is an audit artifact, not a precondition.
			log.Printf("skiplog: disabled: %v", err)
		} else {
			defer sk.Close()
			opts.OnSkip = sk.Add
		}
	}

	sum, err := ingest.Run(ctx, wb, st, opts)
	if err != nil {
		fatalf("ingest: %v", err)
	}
	for reason, n := range sum.SkipReasons {
		log.Printf("ingest: skipped %d rows: %s", n, reason)
	}
}

// buildConfig loads the optional config file and applies flag/env overrides.
func buildConfig(cfgPath, wbPath, kind, dsn, table string) (config.Config, error) {
	var cfg config.Config
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
	}
	if wbPath != "" {
		cfg.Workbook = wbPath
	}
	if kind != "" {
		cfg.Storage.Kind = kind
	}
	if dsn != "" {
		cfg.Storage.DSN = dsn
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = os.Getenv("CATALOG_DSN")
	}
	if table != "" {
		cfg.Storage.Table = table
	}
	return cfg, nil
}

// setupMetrics installs the configured metrics backend; the nop default
// stays in place on any failure.
func setupMetrics(cfg config.Config) {
	switch cfg.Metrics.Backend {
	case "pushgateway":
		url := cfg.Metrics.PushgatewayURL
		if url == "" {
			url = os.Getenv("PUSHGATEWAY_URL")
		}
		if url == "" {
			url = "http://localhost:9091"
		}
		job := cfg.Job
		if job == "" {
			job = "catalog_ingest"
		}
		b, err := prompush.NewBackend(job, url)
		if err != nil {
			log.Printf("metrics: pushgateway init failed: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)

	case "datadog":
		addr := cfg.Metrics.StatsdAddr
		if addr == "" {
			addr = os.Getenv("DD_AGENT_ADDR")
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "carcatalog."})
		if err != nil {
			log.Printf("metrics: datadog init failed: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
