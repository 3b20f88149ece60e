package ports

import (
	"context"
	"time"
)

// S3Storage : для аватаров
type S3Storage interface {
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
}
