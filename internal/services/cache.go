package services

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hitscope/internal/models"
)

// InfoStore persists projections across restarts.
type InfoStore interface {
	Load(name string) (models.ArtistInfo, bool, error)
	Save(info models.ArtistInfo) error
	Clear() error
}

// InfoCache memoizes [InfoProvider] results by exact artist name.
//
// Entries live until [InfoCache.Clear]. There is no TTL and no eviction. Concurrent misses
// for the same name are not coalesced: each one queries the provider and the last write
// wins, which is harmless because results are equivalent.
type InfoCache struct {
	mu       sync.RWMutex
	entries  map[string]models.ArtistInfo
	provider InfoProvider
	store    InfoStore
	logger   *log.Logger
}

// NewInfoCache creates an empty cache in front of provider. store may be nil.
func NewInfoCache(provider InfoProvider, store InfoStore, logger *log.Logger) *InfoCache {
	return &InfoCache{
		entries:  make(map[string]models.ArtistInfo),
		provider: provider,
		store:    store,
		logger:   logger,
	}
}

// Cached returns the stored projection for name, computing and storing it on a miss.
// A miss whose context ends during the lookup returns the provider's result uncached.
func (c *InfoCache) Cached(ctx context.Context, name string) models.ArtistInfo {
	if info, ok := c.Peek(name); ok {
		infoCacheEvents.WithLabelValues("hit").Inc()
		return info
	}

	if c.store != nil {
		info, ok, err := c.store.Load(name)
		if err != nil {
			c.logger.Warn("info store read failed", "artist", name, "error", err)
		} else if ok {
			infoCacheEvents.WithLabelValues("store_hit").Inc()
			c.put(name, info)
			return info
		}
	}

	infoCacheEvents.WithLabelValues("miss").Inc()
	info := c.provider.Info(ctx, name)
	if ctx.Err() != nil {
		// a canceled lookup says nothing about the artist
		infoCacheEvents.WithLabelValues("canceled").Inc()
		return info
	}
	c.put(name, info)

	// Only matches are persisted so a transient failure is not remembered across restarts.
	if c.store != nil && info.Found {
		if err := c.store.Save(info); err != nil {
			c.logger.Warn("info store write failed", "artist", name, "error", err)
		}
	}
	return info
}

// Peek returns a cached entry without computing one.
func (c *InfoCache) Peek(name string) (models.ArtistInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.entries[name]
	return info, ok
}

func (c *InfoCache) put(name string, info models.ArtistInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = info
}

// Len is the number of cached entries.
func (c *InfoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear empties the cache unconditionally. The returned error only reports a failure to
// clear the persistent store.
func (c *InfoCache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[string]models.ArtistInfo)
	c.mu.Unlock()
	infoCacheEvents.WithLabelValues("clear").Inc()

	if c.store != nil {
		return c.store.Clear()
	}
	return nil
}
