// Package redistest provides an in-memory redis.Client for tests
package redistest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saaga0h/daylight-platform/pkg/redis"
)

// Client keeps hashes in maps. TTLs are recorded, not enforced.
type Client struct {
	mu     sync.Mutex
	hashes map[string]map[string]string
	ttls   map[string]time.Duration

	PingErr error
	SetErr  error
}

// NewClient returns an empty fake
func NewClient() *Client {
	return &Client{
		hashes: make(map[string]map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (c *Client) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	if c.SetErr != nil {
		return c.SetErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok {
		h = make(map[string]string)
		c.hashes[key] = h
	}
	for field, v := range values {
		h[field] = fmt.Sprint(v)
	}
	return nil
}

func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.hashes[key]
	if !ok || len(h) == 0 {
		return nil, fmt.Errorf("hash %s: %w", key, redis.ErrNotFound)
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out, nil
}

func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttls[key] = ttl
	return nil
}

func (c *Client) Ping(ctx context.Context) error { return c.PingErr }

func (c *Client) Close() error { return nil }

// TTL returns the last TTL set on key
func (c *Client) TTL(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

// SetHash replaces a hash wholesale, for seeding
func (c *Client) SetHash(key string, fields map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hashes[key] = fields
}
