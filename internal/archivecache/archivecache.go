// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package archivecache keeps recently used parsed archives in memory.
package archivecache

import (
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-tinylfu"
	"github.com/elliotnunn/memtar/tar"
	"golang.org/x/sync/singleflight"
)

// A Cache is safe for concurrent use by multiple goroutines.
type Cache struct {
	mu    sync.Mutex // tinylfu is not goroutine-safe
	lfu   *tinylfu.T[string, *tar.Archive]
	group singleflight.Group
}

// New returns a cache holding up to n archives.
func New(n int) *Cache {
	n = max(n, 1)
	return &Cache{
		lfu: tinylfu.New[string, *tar.Archive](n, n*10, xxhash.Sum64String,
			tinylfu.OnEvict(func(key string, a *tar.Archive) {
				slog.Debug("archiveEvicted", "key", key, "entries", a.Len())
			})),
	}
}

// Get returns the archive cached under key, calling load on a miss.
// Concurrent misses on one key share a single call to load.
// Failures are returned to every waiter and are not cached.
func (c *Cache) Get(key string, load func() (*tar.Archive, error)) (*tar.Archive, error) {
	if a, ok := c.lookup(key); ok {
		return a, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// a previous flight may have finished since the lookup above
		if a, ok := c.lookup(key); ok {
			return a, nil
		}
		a, err := load()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.lfu.Add(key, a)
		c.mu.Unlock()
		return a, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*tar.Archive), nil
}

func (c *Cache) lookup(key string) (*tar.Archive, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lfu.Get(key)
}
