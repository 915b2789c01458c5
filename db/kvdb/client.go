package kvdb

import (
	"context"
	"errors"
	"time"
)

var ErrNotSupported = errors.New("kvdb: operation not supported")

// Client is the key-value backend used for volatile state like web sessions.
type Client interface {
	Init() error
	Close() error

	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) (int64, error)
	// Expire sets/updates expiration for a key
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error) // found & updated, err

	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error) // val, found, err
}
