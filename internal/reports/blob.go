package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	blobcore "feedstockcore/internal/blob/core"
	"feedstockcore/pkg/domain"
)

// BlobArtifacts stores report payloads in a blob store. Blob objects are
// immutable, so every save writes a new revision object and loads pick the
// newest one under the key prefix.
type BlobArtifacts struct {
	Blobs  blobcore.Store
	Prefix string
}

// NewBlobArtifacts returns a blob-backed payload store. The optional prefix
// namespaces all keys, letting one bucket host several environments.
func NewBlobArtifacts(blobs blobcore.Store, prefix string) *BlobArtifacts {
	return &BlobArtifacts{Blobs: blobs, Prefix: strings.Trim(prefix, "/")}
}

var _ Artifacts = (*BlobArtifacts)(nil)

func (b *BlobArtifacts) keyPrefix(key domain.ReportKey) string {
	p := fmt.Sprintf("%s/%d/%s/", key.Grower, key.GrowingCycle, key.Type)
	if b.Prefix != "" {
		return b.Prefix + "/" + p
	}
	return p
}

func (b *BlobArtifacts) Save(ctx context.Context, key domain.ReportKey, data []byte) error {
	if key.Grower == "" {
		return fmt.Errorf("report key missing grower")
	}
	objectKey := b.keyPrefix(key) + uuid.NewString() + ".csv"
	if _, err := b.Blobs.Put(ctx, objectKey, data); err != nil {
		return fmt.Errorf("put %s: %w", objectKey, err)
	}
	return nil
}

func (b *BlobArtifacts) Load(ctx context.Context, key domain.ReportKey) ([]byte, error) {
	prefix := b.keyPrefix(key)
	objects, err := b.Blobs.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	latest := objects[0]
	for _, obj := range objects[1:] {
		if obj.LastModified.After(latest.LastModified) ||
			(obj.LastModified.Equal(latest.LastModified) && obj.Key > latest.Key) {
			latest = obj
		}
	}
	data, err := b.Blobs.Get(ctx, latest.Key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", latest.Key, err)
	}
	return data, nil
}
