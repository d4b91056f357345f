package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"workbook": "cars.xlsx",
		"storage":  {"kind": "sqlite", "dsn": "catalog.db", "table": "vehicles"},
		"job":      "nightly",
		"skip_log": "skipped/catalog.csv",
		"metrics":  {"backend": "pushgateway", "pushgateway_url": "http://pg:9091"}
	}`)

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Workbook != "cars.xlsx" || c.Storage.Kind != "sqlite" || c.Storage.Table != "vehicles" {
		t.Fatalf("loaded = %+v", c)
	}
	if c.Metrics.PushgatewayURL != "http://pg:9091" {
		t.Fatalf("metrics = %+v", c.Metrics)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, `{"workbok": "typo.xlsx"}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for an unknown field")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	c := Config{Metrics: Metrics{Backend: "statsite"}}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"workbook", "storage.kind", "metrics.backend"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateDSNRequired(t *testing.T) {
	c := Config{Workbook: "cars.xlsx"}
	c.Storage.Kind = "postgres"
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "storage.dsn") {
		t.Fatalf("err = %v, want storage.dsn problem", err)
	}

	c.Storage.DSN = "postgres://localhost/catalog"
	if err := c.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
