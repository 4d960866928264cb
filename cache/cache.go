package cache

import (
	"context"
	"time"
)

// Cache stores serialized statistics views. Generation returns an opaque token
// that changes whenever Bump is called for the department, or for every
// department when Bump is called with an empty id.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Generation(ctx context.Context, departmentID string) (string, error)
	Bump(ctx context.Context, departmentID string) error
}
