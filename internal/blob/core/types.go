// Package core defines the blob storage abstraction the report store writes
// its artifacts through. Artifacts are immutable: a key is written once and
// new revisions get new keys.
package core

import (
	"context"
	"errors"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem is the local filesystem implementation (default, dev).
	DriverFilesystem Driver = "fs"
	// DriverS3 is an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3"
	// DriverMemory is an in-memory implementation used in tests.
	DriverMemory Driver = "memory"
)

// Object describes a stored artifact.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the minimal object-store surface the report layer needs. Put is
// create-only; writing an existing key is an error.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (Object, error)
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Object, error)
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("blob: object not found")

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("blob: object already exists")
