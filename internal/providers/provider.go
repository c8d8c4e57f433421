// Package providers adapts each font source to the normalized FontRecord
// model.
//
// Every adapter memoizes its catalog, coalesces concurrent fetches and keeps
// serving the last good list when a refresh fails. Failures are logged with
// the provider name and never returned to callers.
package providers

import (
	"context"
	"sync"

	"github.com/mrlokans/wordmark/internal/entities"
)

// Provider is a font catalog source.
type Provider interface {
	Name() entities.ProviderName
	// Fetch returns the catalog, loading it first if needed.
	Fetch(ctx context.Context) []entities.FontRecord
	// Load starts loading in the background. It is a no-op once loaded.
	Load(ctx context.Context)
	// Snapshot returns whatever is currently available without blocking.
	Snapshot() []entities.FontRecord
	// Status reports whether the catalog is loaded and whether a load is in flight.
	Status() (loaded, loading bool)
}

// Pager is implemented by providers whose public list grows page by page.
type Pager interface {
	LoadMore(ctx context.Context, n int) int
}

// Refresher is implemented by providers with an expiring remote catalog.
type Refresher interface {
	// Expired reports whether the catalog is due for a refresh.
	Expired() bool
	// Refresh expires the catalog and fetches it again.
	Refresh(ctx context.Context) []entities.FontRecord
}

// backgroundLoader runs a provider's Fetch once in the background.
type backgroundLoader struct {
	mu      sync.Mutex
	running bool
}

func (b *backgroundLoader) start(loaded bool, fetch func(ctx context.Context)) {
	if loaded {
		return
	}
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	go func() {
		defer func() {
			b.mu.Lock()
			b.running = false
			b.mu.Unlock()
		}()
		fetch(context.Background())
	}()
}

func filterValid(records []entities.FontRecord) []entities.FontRecord {
	out := records[:0]
	for _, r := range records {
		if r.Valid() {
			r.Variants = entities.SortVariants(r.Variants)
			out = append(out, r)
		}
	}
	return out
}
