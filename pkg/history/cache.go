// Package history keeps previously entered parameter values, keyed by
// fully-qualified parameter name, so input fields can offer them again.
package history

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Store persists recorded values across processes. The cache itself is the
// source of truth while the process runs; the store only seeds and mirrors it.
type Store interface {
	Load(ctx context.Context) (map[string][]string, error)
	Append(ctx context.Context, key, value string) error
}

// Option configures a Cache.
type Option func(*Cache)

// WithStore mirrors every recorded value into store.
func WithStore(store Store) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithLogger sets the logger used to report store failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Cache maps a fully-qualified name to its ordered, duplicate-free values.
// It is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	values map[string][]string
	store  Store
	logger *zap.Logger
}

// New constructs an empty cache.
func New(options ...Option) *Cache {
	c := &Cache{
		values: make(map[string][]string),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Restore merges the values held by the configured store into the cache.
func (c *Cache) Restore(ctx context.Context) error {
	if c == nil || c.store == nil {
		return nil
	}
	loaded, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, values := range loaded {
		for _, value := range values {
			c.appendLocked(key, value)
		}
	}
	return nil
}

// Record appends value under key unless it is empty or already present.
func (c *Cache) Record(key, value string) {
	if c == nil || value == "" {
		return
	}
	c.mu.Lock()
	added := c.appendLocked(key, value)
	c.mu.Unlock()

	if !added || c.store == nil {
		return
	}
	if err := c.store.Append(context.Background(), key, value); err != nil {
		c.logger.Warn("history store append failed",
			zap.String("key", key),
			zap.Error(err))
	}
}

// Lookup returns a copy of the values recorded under key.
func (c *Cache) Lookup(key string) []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	values := c.values[key]
	if len(values) == 0 {
		return []string{}
	}
	return append([]string(nil), values...)
}

// Keys returns the recorded keys in sorted order.
func (c *Cache) Keys() []string {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for key := range c.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (c *Cache) appendLocked(key, value string) bool {
	if value == "" {
		return false
	}
	for _, existing := range c.values[key] {
		if existing == value {
			return false
		}
	}
	c.values[key] = append(c.values[key], value)
	return true
}
