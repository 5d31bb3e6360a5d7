package interfaces

import (
	"context"
	"io"

	domaintypes "cloudpick/internal/domain/types"
)

// ObjectStore is the storage domain's view of an S3-compatible service.
// Object entities carry "Key" as identifier; bucket entities carry "Name".
type ObjectStore interface {
	ListBuckets(ctx context.Context) ([]domaintypes.Entity, error)
	ListObjectsPage(
		ctx context.Context,
		bucket, prefix, token string,
	) (domaintypes.Page[domaintypes.Entity], error)
	StatObject(ctx context.Context, bucket, key string) (domaintypes.Entity, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	RemoveObject(ctx context.Context, bucket, key string) error
}

// FileWriter lands downloaded content on local disk.
type FileWriter interface {
	WriteFrom(path string, r io.Reader) (int64, error)
}
