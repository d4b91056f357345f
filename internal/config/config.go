// Package config defines the JSON-serializable configuration for the
// ingestion binary. It is intentionally small and decoded by the standard
// library; field names in Go mirror the JSON structure of config files.
//
// Example:
//
//	{
//	  "workbook": "cars.xlsx",
//	  "storage":  { "kind": "sqlite", "dsn": "catalog.db" },
//	  "skip_log": "skipped/catalog.csv",
//	  "metrics":  { "backend": "pushgateway", "pushgateway_url": "http://localhost:9091" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"carcatalog/internal/store"
)

// Config is the top-level configuration for one ingestion run.
type Config struct {
	// Workbook is the path to the .xlsx file to ingest.
	Workbook string `json:"workbook"`

	// Storage selects and configures the catalog store backend.
	Storage store.Config `json:"storage"`

	// Job names the run in logs and metrics. Empty means "catalog_ingest".
	Job string `json:"job"`

	// SkipLog is the CSV path for dropped-row accounting. Empty disables
	// the artifact; skips are still counted in the run summary.
	SkipLog string `json:"skip_log"`

	// Metrics configures the optional metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Metrics selects a metrics backend: "none" (default), "pushgateway", or
// "datadog".
type Metrics struct {
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`
	StatsdAddr     string `json:"statsd_addr"`
}

// Load reads and decodes a config file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return c, nil
}

// Validate reports every problem it can find, one per line, so a bad config
// is fixed in a single round trip.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Workbook) == "" {
		problems = append(problems, "workbook: path is required")
	}
	switch c.Storage.Kind {
	case "sqlite", "postgres", "mysql", "mssql":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			problems = append(problems, "storage.dsn: required for kind "+c.Storage.Kind)
		}
	case "":
		problems = append(problems, "storage.kind: required (sqlite, postgres, mysql, mssql)")
	default:
		problems = append(problems, fmt.Sprintf("storage.kind: unknown kind %q", c.Storage.Kind))
	}
	switch c.Metrics.Backend {
	case "", "none", "pushgateway", "datadog":
	default:
		problems = append(problems, fmt.Sprintf("metrics.backend: unknown backend %q", c.Metrics.Backend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}
