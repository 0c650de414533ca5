package redis

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by HGetAll when the key does not exist
var ErrNotFound = errors.New("redis key not found")

// Client represents the subset of Redis the daylight agent relies on
type Client interface {
	// HSet sets several fields of a hash at once
	HSet(ctx context.Context, key string, values map[string]interface{}) error

	// HGetAll gets all fields from a hash
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Expire sets a TTL on a key
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping checks the connection to Redis
	Ping(ctx context.Context) error

	// Close closes the Redis connection
	Close() error
}
