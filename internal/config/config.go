// Package config loads the application configuration from a YAML file into a
// plain struct. Drivers and credentials can additionally be overridden
// through FEEDSTOCK_* environment variables at the store factories.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for the config file when no flag is
// given.
const DefaultPath = "feedstockcore.yaml"

// Config is the full application configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`

	Data    Data    `yaml:"data"`
	SoilAPI SoilAPI `yaml:"soil_temperature_api"`
	Store   Store   `yaml:"store"`
	Merge   Merge   `yaml:"merge"`
}

// Data points at the reference tables and grower input files.
type Data struct {
	// SourcePath is the root directory holding per-grower input files.
	SourcePath string `yaml:"source_path"`
	// ProductBreakdown is the chemical product breakdown table CSV.
	ProductBreakdown string `yaml:"product_breakdown"`
	// CoverCropTable is the FD-CIC cover-crop reference table CSV.
	CoverCropTable string `yaml:"cover_crop_table"`
	// UnitConversions is the unit conversion table CSV.
	UnitConversions string `yaml:"unit_conversions"`
}

// SoilAPI configures the soil-temperature archive endpoint.
type SoilAPI struct {
	URL string `yaml:"url"`
}

// Store selects and configures the report artifact backend.
type Store struct {
	// Driver is one of blob-fs, blob-s3, blob-memory, sqlite, postgres.
	Driver string `yaml:"driver"`

	// Root is the filesystem root for the blob-fs driver and the database
	// path for the sqlite driver.
	Root string `yaml:"root"`

	// Prefix namespaces blob keys, letting one bucket host several
	// environments.
	Prefix string `yaml:"prefix"`

	S3 S3 `yaml:"s3"`

	// PostgresDSN is the connection string for the postgres driver.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// S3 configures the blob-s3 driver.
type S3 struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// Merge configures the comprehensive-inputs merge stage.
type Merge struct {
	// AppendOnlySources lists data sources whose rows are appended without
	// discrepancy reconciliation.
	AppendOnlySources []string `yaml:"append_only_sources"`
}

// Load reads and parses the config file at path. A missing file yields the
// zero config so every setting falls back to its default.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
