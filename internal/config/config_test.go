package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedstockcore.yaml")
	content := `log_level: debug
data:
  source_path: /srv/feedstock/data
  product_breakdown: /srv/feedstock/data/product_breakdown.csv
  cover_crop_table: /srv/feedstock/data/cover_crop_table.csv
  unit_conversions: /srv/feedstock/data/unit_conversions.csv
soil_temperature_api:
  url: https://archive-api.open-meteo.com/v1/archive
store:
  driver: sqlite
  root: /srv/feedstock/reports.db
merge:
  append_only_sources:
    - granular
    - ldb
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level %q", cfg.LogLevel)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Root != "/srv/feedstock/reports.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if cfg.SoilAPI.URL != "https://archive-api.open-meteo.com/v1/archive" {
		t.Fatalf("unexpected soil API config %+v", cfg.SoilAPI)
	}
	if !reflect.DeepEqual(cfg.Merge.AppendOnlySources, []string{"granular", "ldb"}) {
		t.Fatalf("unexpected merge config %+v", cfg.Merge)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Config{}) {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("store: [not a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
