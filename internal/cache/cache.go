// Package cache keeps loaded corpora in memory between calls and drops an
// entry as soon as the documents behind it change.
package cache

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/zeebo/blake3"
)

// Cache maps a key, usually a corpus root, to a value built from a
// particular state of the files under it.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time
}

type entry[V any] struct {
	hash   string
	stored time.Time
	value  V
}

// New creates a cache. Entries older than ttl are dropped on lookup; a
// non-positive ttl keeps them until they are replaced.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// GetWithHash returns the value for key only if it was stored with hash.
func (c *Cache[V]) GetWithHash(key, hash string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok || e.hash != hash {
		return zero, false
	}
	if c.ttl > 0 && c.now().Sub(e.stored) > c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// SetWithHash stores value for key, replacing any older state.
func (c *Cache[V]) SetWithHash(key, hash string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{hash: hash, stored: c.now(), value: value}
}

// Invalidate removes a cache entry.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Fingerprint hashes the path, size and modification time of every file.
// Any edit, addition, removal or rename changes the result.
func Fingerprint(files []string) (string, error) {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	h := blake3.New()
	for _, path := range sorted {
		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(h, "%s\x00%d\x00%d\n", path, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
