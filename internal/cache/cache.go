package cache

import (
	"fmt"
	"sync"
	"time"
)

// Key is a structured cache key. Building keys from fields instead of
// string concatenation prevents collisions between operations that share
// a symbol.
type Key struct {
	Op      string
	Symbol  string
	Options string
}

func (k Key) String() string {
	if k.Options == "" {
		return fmt.Sprintf("%s:%s", k.Op, k.Symbol)
	}
	return fmt.Sprintf("%s:%s:%s", k.Op, k.Symbol, k.Options)
}

type entry struct {
	value   any
	created time.Time
	timeout time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.created) >= e.timeout
}

// Cache is a process-wide key/value store with per-entry expiry. Expired
// entries are treated as absent and removed lazily on the next lookup;
// there is no sweeper and no eviction beyond expiry. The tracked key space
// is small, so unbounded growth within a TTL window is accepted.
//
// The cache is best-effort and read-through: concurrent cold lookups for
// the same key may both go upstream. Not a correctness source of truth.
type Cache struct {
	mu         sync.Mutex
	items      map[string]entry
	defaultTTL time.Duration
	// now is swappable in tests.
	now func() time.Time
}

// New creates a Cache with the given default entry timeout.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		items:      make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// Get returns the value for k, or absent when the key was never set or its
// timeout has elapsed. An elapsed entry is removed as a side effect.
func (c *Cache) Get(k Key) (any, bool) {
	key := k.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.items, key)
		return nil, false
	}
	return e.value, true
}

// Set stores v under k with the default timeout.
func (c *Cache) Set(k Key, v any) {
	c.SetTTL(k, v, c.defaultTTL)
}

// SetTTL stores v under k with a per-entry timeout override.
func (c *Cache) SetTTL(k Key, v any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[k.String()] = entry{value: v, created: c.now(), timeout: ttl}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}

// Size returns the current entry count, expired entries included until
// their next lookup purges them.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Lookup fetches k and type-asserts the value. A stored value of the wrong
// type counts as a miss.
func Lookup[T any](c *Cache, k Key) (T, bool) {
	var zero T
	v, ok := c.Get(k)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
