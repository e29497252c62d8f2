package storage

import (
	"context"
	"errors"
)

// KV is string-keyed byte storage with best-effort durability.
// Get returns nil, nil for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// ErrUnknownDriver is returned for an unsupported storage driver.
var ErrUnknownDriver = errors.New("unknown storage driver")

var (
	_ KV = (*DB)(nil)
	_ KV = (*MongoKV)(nil)
)
