// Package menucache maps (peer, object-path) pairs to live menu-tree
// handles: an interface plus a default mutex-protected implementation.
package menucache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ayatana-go/menuhud/pkg/menumodel"
)

// Builder constructs a new MenuHandle for a (peer, path) the cache has not
// seen before. internal/dbusmenu.Client.New satisfies this.
type Builder func(ctx context.Context, peer, path string) (menumodel.MenuHandle, error)

// Cache defines the menu model cache operations: populate on a layout
// notification, and look a handle up by key. Implementations must be safe
// for concurrent use: a Cache may be shared across goroutines handling
// bus signals and search requests concurrently.
type Cache interface {
	// Observe is called once per LayoutUpdated signal. If no entry exists
	// for key, it builds one; an existing entry is left untouched and is
	// neither rebuilt nor refreshed.
	Observe(ctx context.Context, peer, path string) error

	// Lookup returns the handle for key, or ok=false if the cache has never
	// seen a LayoutUpdated for it.
	Lookup(key menumodel.MenuKey) (menumodel.MenuHandle, bool)

	// Len reports the number of live entries (diagnostic use only).
	Len() int
}

type defaultCache struct {
	mu      sync.RWMutex
	entries map[menumodel.MenuKey]menumodel.MenuHandle
	build   Builder
	group   singleflight.Group
}

// New returns a Cache that builds missing entries with build. The cache is
// unbounded and purged only when the process drops its reference to it —
// there is no eviction on peer disappearance, and no supported eviction
// path at all.
func New(build Builder) Cache {
	return &defaultCache{
		entries: make(map[menumodel.MenuKey]menumodel.MenuHandle),
		build:   build,
	}
}

func (c *defaultCache) Observe(ctx context.Context, peer, path string) error {
	key := menumodel.MenuKey{Peer: peer, Path: path}

	c.mu.RLock()
	_, exists := c.entries[key]
	c.mu.RUnlock()
	if exists {
		return nil
	}

	// Concurrent LayoutUpdated signals for the same never-seen key must
	// not race to build two clients for it; singleflight collapses them
	// into one Builder call.
	_, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		c.mu.RLock()
		_, exists := c.entries[key]
		c.mu.RUnlock()
		if exists {
			return nil, nil
		}

		handle, err := c.build(ctx, peer, path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = handle
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *defaultCache) Lookup(key menumodel.MenuKey) (menumodel.MenuHandle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.entries[key]
	return h, ok
}

func (c *defaultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
