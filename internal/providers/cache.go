package providers

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/payloadcache"
)

const fetchTimeout = 2 * time.Minute

type (
	// rawFetcher retrieves the provider's raw payload.
	rawFetcher func(ctx context.Context) ([]byte, error)
	// converter turns a raw payload into normalized records.
	converter func(ctx context.Context, raw []byte) ([]entities.FontRecord, error)
)

// CatalogCache memoizes one provider's catalog. Concurrent fetches share a
// single upstream request; a failed refresh keeps the last good list.
type CatalogCache struct {
	name     entities.ProviderName
	ttl      time.Duration
	payloads payloadcache.Store
	onUpdate func(records []entities.FontRecord)

	group singleflight.Group

	mu        sync.RWMutex
	raw       []byte
	records   []entities.FontRecord
	loading   bool
	loaded    bool
	expired   bool
	fetchedAt time.Time
	fetches   int

	now func() time.Time
}

// NewCatalogCache creates a cache for provider name. A zero ttl never expires.
// payloads may be nil.
func NewCatalogCache(name entities.ProviderName, ttl time.Duration, payloads payloadcache.Store) *CatalogCache {
	return &CatalogCache{
		name:     name,
		ttl:      ttl,
		payloads: payloads,
		now:      time.Now,
	}
}

// OnUpdate registers fn to run after every successful refresh.
func (c *CatalogCache) OnUpdate(fn func(records []entities.FontRecord)) {
	c.onUpdate = fn
}

func (c *CatalogCache) payloadKey() string {
	return "provider:" + string(c.name)
}

// Get returns the cached list, refreshing it first when it has never been
// loaded or has expired.
func (c *CatalogCache) Get(ctx context.Context, fetch rawFetcher, convert converter) []entities.FontRecord {
	if !c.Stale() {
		return c.Snapshot()
	}

	ch := c.group.DoChan(string(c.name), func() (interface{}, error) {
		c.refresh(fetch, convert)
		return nil, nil
	})

	select {
	case <-ch:
	case <-ctx.Done():
	}
	return c.Snapshot()
}

// refresh runs detached from any single caller's context since its result is
// shared by every waiter.
func (c *CatalogCache) refresh(fetch rawFetcher, convert converter) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	c.setLoading(true)
	defer c.setLoading(false)

	log := logrus.WithField("provider", c.name)

	raw, fromStore := c.cachedPayload(ctx)
	if !fromStore {
		var err error
		raw, err = fetch(ctx)
		c.mu.Lock()
		c.fetches++
		c.mu.Unlock()
		if err != nil {
			log.WithError(err).Warn("Catalog fetch failed, keeping last known list")
			return
		}
	}

	records, err := convert(ctx, raw)
	if err != nil {
		log.WithError(err).Warn("Catalog conversion failed, keeping last known list")
		if fromStore && c.payloads != nil {
			_ = c.payloads.Delete(ctx, c.payloadKey())
		}
		return
	}

	if !fromStore && c.payloads != nil {
		if err := c.payloads.Set(ctx, c.payloadKey(), raw, c.ttl); err != nil {
			log.WithError(err).Debug("Failed to store raw payload")
		}
	}

	c.mu.Lock()
	c.raw = raw
	c.records = records
	c.loaded = true
	c.expired = false
	c.fetchedAt = c.now()
	c.mu.Unlock()

	log.WithField("count", len(records)).Info("Catalog loaded")

	if c.onUpdate != nil {
		c.onUpdate(records)
	}
}

func (c *CatalogCache) cachedPayload(ctx context.Context) ([]byte, bool) {
	if c.payloads == nil {
		return nil, false
	}
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	// An expired in-memory list means the stored payload expired too.
	if loaded {
		return nil, false
	}
	return c.payloads.Get(ctx, c.payloadKey())
}

func (c *CatalogCache) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// Snapshot returns the current list without blocking.
func (c *CatalogCache) Snapshot() []entities.FontRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records
}

// Stale reports whether the next Get has to refresh.
func (c *CatalogCache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded || c.expired {
		return true
	}
	return c.ttl > 0 && c.now().Sub(c.fetchedAt) > c.ttl
}

// Expire forces the next Get to refresh. The current list stays available.
func (c *CatalogCache) Expire() {
	c.mu.Lock()
	c.expired = true
	c.mu.Unlock()
}

// Status reports the loading flags.
func (c *CatalogCache) Status() (loaded, loading bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.loading
}

// Fetches returns how many upstream fetches have been made.
func (c *CatalogCache) Fetches() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches
}

// TTL returns the cache lifetime; zero means it never expires on its own.
func (c *CatalogCache) TTL() time.Duration {
	return c.ttl
}
