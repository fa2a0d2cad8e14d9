// Package blob selects and constructs the configured blob storage backend.
package blob

import (
	"context"
	"fmt"
	"os"

	"feedstockcore/internal/blob/core"
	fsstore "feedstockcore/internal/infra/blob/fs"
	memstore "feedstockcore/internal/infra/blob/memory"
	s3store "feedstockcore/internal/infra/blob/s3"
)

// S3Config configures the s3 driver. Aliased here so callers configure every
// driver through this package alone.
type S3Config = s3store.Config

// Config selects a driver and its parameters.
type Config struct {
	Driver core.Driver
	Root   string // filesystem root, fs driver only
	S3     S3Config
}

// Open constructs the blob store for the configured driver. An empty driver
// defaults to the filesystem.
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	switch cfg.Driver {
	case core.DriverFilesystem, "":
		return fsstore.New(cfg.Root)
	case core.DriverMemory:
		return memstore.New(), nil
	case core.DriverS3:
		return s3store.New(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}

// OpenFromEnv constructs a blob store from FEEDSTOCK_BLOB_DRIVER and the
// driver's own environment variables.
func OpenFromEnv(ctx context.Context) (core.Store, error) {
	switch driver := core.Driver(os.Getenv("FEEDSTOCK_BLOB_DRIVER")); driver {
	case core.DriverS3:
		return s3store.OpenFromEnv(ctx)
	case core.DriverMemory:
		return memstore.New(), nil
	case core.DriverFilesystem, "":
		return fsstore.New(os.Getenv("FEEDSTOCK_BLOB_FS_ROOT"))
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
