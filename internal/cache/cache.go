// Package cache holds the process-wide lookup tables: static file ETags,
// generated syntax stylesheets and the content hashes the watcher compares.
package cache

import (
	"html/template"
	"sync"
)

// Cache is a map guarded by a read/write mutex.
type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: map[K]V{}}
}

func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.mu.RLock()
	value, ok = c.items[key]
	c.mu.RUnlock()
	return value, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	c.items[key] = value
	c.mu.Unlock()
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Keys returns the current keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// SetTo replaces the whole contents with items. The cache takes ownership
// of the map.
func (c *Cache[K, V]) SetTo(items map[K]V) {
	if items == nil {
		items = map[K]V{}
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
}

var (
	staticHashes = NewCache[string, string]()
	syntaxSheets = NewCache[string, template.CSS]()
)

// GetStaticHash returns the ETag recorded for a static URL path.
func GetStaticHash(path string) (string, bool) {
	return staticHashes.Get(path)
}

func SetStaticHash(path, hash string) {
	staticHashes.Set(path, hash)
}

func GetSyntaxCSS(style string) (template.CSS, bool) {
	return syntaxSheets.Get(style)
}

func SetSyntaxCSS(style string, css template.CSS) {
	syntaxSheets.Set(style, css)
}
