// Package storage uploads function archives to object storage.
//
// The S3 implementation verifies upload integrity by attaching the
// archive's content checksum to the put request, so a corrupted
// transfer is rejected by the service rather than discovered at invoke
// time.
package storage

import (
	"context"
	"errors"

	"github.com/opencontainers/go-digest"
)

var (
	ErrStorage = errors.New("object storage operation failed")
	ErrTimeout = errors.New("object storage call timed out")
)

// Uploads archives and checks object existence.
//
// Implementations must be safe for concurrent use: one store is shared
// by all target workers. The region parameter overrides the ambient
// default per call, since each target may deploy to a different region.
type ObjectStore interface {
	Exists(ctx context.Context, region, bucket, key string) (bool, error)
	Put(ctx context.Context, region, bucket, key string, data []byte, checksum digest.Digest) error
}
