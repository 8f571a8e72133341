// Package cache implements the task-scoped, content-addressed module
// result cache (§4.4): the first successful execution of a canonicalized
// key stores its result; later identical requests return the stored value
// without invoking the module. Failures are never cached.
package cache

import (
	"fmt"
	"sync"

	"github.com/taskforge/taskforge/pkg/modrequest"
)

// Key identifies one cache entry.
type Key struct {
	TaskID string
	Module string
	Action string
	Args   map[string]string
}

func (k Key) canonical() string {
	return fmt.Sprintf("%s|%s", k.TaskID, modrequest.Canonicalize(k.Module, k.Action, k.Args))
}

// Cache is a task-scoped module-result cache. Safe for concurrent use,
// though a serial role engine never actually contends on it.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the cached result for key, if present.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key.canonical()]
	return v, ok
}

// Store records a successful result under key. Calling Store twice for the
// same key is a no-op beyond the first (the spec requires the first
// caller's result to win for any concurrent duplicate).
func (c *Cache) Store(key Key, result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key.canonical()]; exists {
		return
	}
	c.entries[key.canonical()] = result
}

// Len reports the number of distinct cached entries, primarily for tests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
