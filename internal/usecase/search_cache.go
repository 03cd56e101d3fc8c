package usecase

import (
	"context"
	"time"
)

// SearchCache is the best-effort cache in front of the catalog store. A
// failing cache degrades to a miss and never changes results.
type SearchCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	EvictAll(ctx context.Context) error
}
