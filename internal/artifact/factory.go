package artifact

import (
	"context"
	"strings"
)

// NewStore picks Postgres, then Mongo, then in-memory, by which URL is set.
func NewStore(ctx context.Context, databaseURL, mongoURI string) (Store, error) {
	switch {
	case strings.TrimSpace(databaseURL) != "":
		return NewPostgresStore(ctx, databaseURL)
	case strings.TrimSpace(mongoURI) != "":
		return NewMongoStore(ctx, mongoURI)
	default:
		return NewMemoryStore(), nil
	}
}

// NewBlobs uses S3 when a bucket is configured, otherwise in-memory.
func NewBlobs(ctx context.Context, cfg S3Config) (Blobs, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return NewMemoryBlobs(), nil
	}
	return NewS3Blobs(ctx, cfg)
}
