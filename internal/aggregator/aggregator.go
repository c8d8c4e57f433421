// Package aggregator merges every provider's catalog into one queryable list.
//
// Derived lists are cached by key and rebuilt lazily; the cache is never
// authoritative and is cleared whenever a provider publishes new data.
package aggregator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
	"github.com/mrlokans/wordmark/internal/providers"
)

// AllKey is the cache key of the full union.
const AllKey = "all"

// DefaultStagger separates the loading tiers when no task queue is used.
const DefaultStagger = 2 * time.Second

// LoadScheduler defers a provider load, e.g. onto a background task queue.
type LoadScheduler interface {
	ScheduleLoad(name entities.ProviderName, delay time.Duration) error
}

// ProviderStatus summarises one provider's availability.
type ProviderStatus struct {
	Name    entities.ProviderName `json:"name"`
	Count   int                   `json:"count"`
	Loaded  bool                  `json:"loaded"`
	Loading bool                  `json:"loading"`
	Total   int                   `json:"total,omitempty"`
}

// Aggregator is the single entry point for font lists.
type Aggregator struct {
	providers map[entities.ProviderName]providers.Provider
	order     []entities.ProviderName
	scheduler LoadScheduler
	stagger   time.Duration
	unsubs    []func()

	mu           sync.RWMutex
	cache        map[string][]entities.FontRecord
	availability []ProviderStatus
	// generation advances on every ClearCache; a build started under an
	// older generation is returned but not stored.
	generation uint64
}

// New creates an aggregator over ps and subscribes it to provider updates.
// Providers are ordered by entities.AllProviders regardless of argument order.
func New(bus *events.Bus, ps ...providers.Provider) *Aggregator {
	a := &Aggregator{
		providers: make(map[entities.ProviderName]providers.Provider, len(ps)),
		stagger:   DefaultStagger,
		cache:     make(map[string][]entities.FontRecord),
	}
	for _, p := range ps {
		a.providers[p.Name()] = p
	}
	for _, name := range entities.AllProviders {
		if _, ok := a.providers[name]; ok {
			a.order = append(a.order, name)
		}
	}

	if bus != nil {
		for _, t := range events.Types {
			t := t
			a.unsubs = append(a.unsubs, bus.Subscribe(t, func(events.Event) {
				logrus.WithField("event", t).Debug("Clearing aggregate cache")
				a.ClearCache("")
			}))
		}
	}
	return a
}

// SetScheduler routes LoadAllProviders through s instead of local timers.
func (a *Aggregator) SetScheduler(s LoadScheduler) {
	a.scheduler = s
}

// SetStagger sets the delay between loading tiers.
func (a *Aggregator) SetStagger(d time.Duration) {
	a.stagger = d
}

// Provider returns the adapter registered under name.
func (a *Aggregator) Provider(name entities.ProviderName) (providers.Provider, bool) {
	p, ok := a.providers[name]
	return p, ok
}

// GetAll returns the union of every provider's current list in priority order.
func (a *Aggregator) GetAll() []entities.FontRecord {
	return a.cached(AllKey, func() []entities.FontRecord {
		var all []entities.FontRecord
		for _, name := range a.order {
			all = append(all, a.providers[name].Snapshot()...)
		}
		return all
	})
}

// GetByProvider returns one provider's current list.
func (a *Aggregator) GetByProvider(name entities.ProviderName) []entities.FontRecord {
	p, ok := a.providers[name]
	if !ok {
		return nil
	}
	return a.cached("provider_"+string(name), func() []entities.FontRecord {
		return append([]entities.FontRecord(nil), p.Snapshot()...)
	})
}

// GetSubset returns count records of provider starting at start.
func (a *Aggregator) GetSubset(name entities.ProviderName, start, count int) []entities.FontRecord {
	key := fmt.Sprintf("%s_%d_%d", name, start, count)
	return a.cached(key, func() []entities.FontRecord {
		list := a.GetByProvider(name)
		if start < 0 || start >= len(list) || count <= 0 {
			return []entities.FontRecord{}
		}
		end := start + count
		if end > len(list) {
			end = len(list)
		}
		return append([]entities.FontRecord(nil), list[start:end]...)
	})
}

// Search matches family names case-insensitively over the union. An empty
// category matches all categories; limit <= 0 means no limit.
func (a *Aggregator) Search(query string, category entities.Category, limit int) []entities.FontRecord {
	query = strings.ToLower(strings.TrimSpace(query))
	var out []entities.FontRecord
	for _, r := range a.GetAll() {
		if category != "" && r.Category != category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(r.Family), query) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func (a *Aggregator) cached(key string, build func() []entities.FontRecord) []entities.FontRecord {
	a.mu.RLock()
	list, ok := a.cache[key]
	gen := a.generation
	a.mu.RUnlock()
	if ok {
		return list
	}

	list = build()

	a.mu.Lock()
	if a.generation == gen {
		a.cache[key] = list
	}
	a.mu.Unlock()
	return list
}

// ClearCache removes key, or every entry and the availability summary when
// key is empty.
func (a *Aggregator) ClearCache(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	if key == "" {
		a.cache = make(map[string][]entities.FontRecord)
		a.availability = nil
		return
	}
	delete(a.cache, key)
}

// CacheKeys returns the keys currently cached.
func (a *Aggregator) CacheKeys() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	keys := make([]string, 0, len(a.cache))
	for k := range a.cache {
		keys = append(keys, k)
	}
	return keys
}

// Providers summarises every registered provider.
func (a *Aggregator) Providers() []ProviderStatus {
	a.mu.RLock()
	cached := a.availability
	gen := a.generation
	a.mu.RUnlock()
	if cached != nil {
		return cached
	}

	statuses := make([]ProviderStatus, 0, len(a.order))
	for _, name := range a.order {
		p := a.providers[name]
		loaded, loading := p.Status()
		status := ProviderStatus{
			Name:    name,
			Count:   len(p.Snapshot()),
			Loaded:  loaded,
			Loading: loading,
		}
		if t, ok := p.(interface{ Total() int }); ok {
			status.Total = t.Total()
		}
		statuses = append(statuses, status)
	}

	a.mu.Lock()
	if a.generation == gen {
		a.availability = statuses
	}
	a.mu.Unlock()
	return statuses
}

// LoadProvider triggers a background load of one provider.
func (a *Aggregator) LoadProvider(ctx context.Context, name entities.ProviderName) error {
	p, ok := a.providers[name]
	if !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	p.Load(ctx)
	return nil
}

// LoadMore grows a paginated provider's list by n records.
func (a *Aggregator) LoadMore(ctx context.Context, name entities.ProviderName, n int) (int, error) {
	p, ok := a.providers[name]
	if !ok {
		return 0, fmt.Errorf("unknown provider %q", name)
	}
	pager, ok := p.(providers.Pager)
	if !ok {
		return 0, fmt.Errorf("provider %q does not support paging", name)
	}
	added := pager.LoadMore(ctx, n)
	if added > 0 {
		a.ClearCache("")
	}
	return added, nil
}

// loadTier groups providers: local catalogs, then secondary remote catalogs,
// then the large one.
func loadTier(name entities.ProviderName) int {
	switch name {
	case entities.ProviderCustom, entities.ProviderGoogle, entities.ProviderAdobe:
		return 0
	case entities.ProviderOpenFoundry, entities.ProviderFontSquirrel:
		return 1
	}
	return 2
}

// LoadAllProviders loads local providers now and staggers the rest by tier.
func (a *Aggregator) LoadAllProviders(ctx context.Context) {
	for _, name := range a.order {
		delay := time.Duration(loadTier(name)) * a.stagger
		if delay == 0 {
			_ = a.LoadProvider(ctx, name)
			continue
		}

		if a.scheduler != nil {
			err := a.scheduler.ScheduleLoad(name, delay)
			if err == nil {
				continue
			}
			logrus.WithField("provider", name).WithError(err).Warn("Failed to queue provider load, using timer")
		}

		name := name
		time.AfterFunc(delay, func() {
			_ = a.LoadProvider(context.Background(), name)
		})
	}
}

// Close unsubscribes from the event bus.
func (a *Aggregator) Close() {
	for _, unsub := range a.unsubs {
		unsub()
	}
	a.unsubs = nil
}
