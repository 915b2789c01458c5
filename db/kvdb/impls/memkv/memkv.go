package memkv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeptools/invoicing-core/db/kvdb"
)

type entry struct {
	val       string
	expiresAt time.Time // zero = no expiration
}

// Client is a process-local kvdb backend for tests and storage-less
// deployments. Expiration is checked lazily on access.
type Client struct {
	mu   sync.RWMutex
	data map[string]entry
}

// Ensure memkv.Client implements kvdb.Client interface
var _ kvdb.Client = (*Client)(nil)

func New() *Client {
	return &Client{data: make(map[string]entry)}
}

func (c *Client) Init() error {
	if c.data == nil {
		c.data = make(map[string]entry)
	}
	return nil
}

func (c *Client) Close() error {
	return nil
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

func (c *Client) Delete(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := c.data[key]; ok {
			delete(c.data, key)
			n++
		}
	}
	return n, nil
}

func (c *Client) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if !ok || e.expired(time.Now()) {
		return false, nil
	}
	e.expiresAt = time.Now().Add(expiration)
	c.data[key] = e
	return true, nil
}

func (c *Client) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{val: fmt.Sprint(value)}
	if expiration > 0 {
		e.expiresAt = time.Now().Add(expiration)
	}
	c.data[key] = e
	return nil
}

func (c *Client) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.data[key]
	if !ok || e.expired(time.Now()) {
		return "", false, nil
	}
	return e.val, true, nil
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
