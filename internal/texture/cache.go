package texture

import (
	"image"
	"log/slog"
	"sync"
)

// Resolver resolves a texture path to a decoded RGBA image.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*image.NRGBA // nil value: load attempted and failed
	index *Index
	log   *slog.Logger
}

// NewCache creates a new texture cache backed by the given index. Load
// failures are reported to logger once per file; nil discards them.
func NewCache(index *Index, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		items: make(map[string]*image.NRGBA),
		index: index,
		log:   logger,
	}
}

// Resolve loads and caches a texture by name. Returns nil if not found.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	img, exists := c.items[path]
	c.mu.RUnlock()
	if exists {
		return img
	}

	// Slow path: load from disk
	img, err := LoadTexture(path)
	if err != nil {
		img = nil
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, exists := c.items[path]; exists {
		return cached
	}
	if err != nil {
		c.log.Warn("texture load failed", "path", path, "err", err)
	}
	c.items[path] = img
	return img
}

// Len returns the number of paths the cache has tried to load.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
