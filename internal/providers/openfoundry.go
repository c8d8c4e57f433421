package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
	"github.com/mrlokans/wordmark/internal/payloadcache"
)

// OpenFoundryTTL is how long the Open Foundry catalog stays fresh.
const OpenFoundryTTL = time.Hour

// OpenFoundryResponse is the body served by the catalog proxy route.
type OpenFoundryResponse struct {
	Success bool                  `json:"success"`
	Count   int                   `json:"count"`
	Fonts   []entities.FontRecord `json:"fonts"`
	Error   string                `json:"error,omitempty"`
}

// OpenFoundry reads the Open Foundry catalog through the service's own proxy
// route, which does the scraping.
type OpenFoundry struct {
	url     string
	fetcher *Fetcher
	cache   *CatalogCache
	loader  backgroundLoader
}

// NewOpenFoundry creates the adapter for the proxy at url.
func NewOpenFoundry(url string, fetcher *Fetcher, payloads payloadcache.Store, bus *events.Bus) *OpenFoundry {
	of := &OpenFoundry{
		url:     url,
		fetcher: fetcher,
		cache:   NewCatalogCache(entities.ProviderOpenFoundry, OpenFoundryTTL, payloads),
	}
	of.cache.OnUpdate(func(records []entities.FontRecord) {
		if bus != nil {
			bus.Publish(events.OpenFoundryUpdated, records)
		}
	})
	return of
}

func (of *OpenFoundry) Name() entities.ProviderName { return entities.ProviderOpenFoundry }

func (of *OpenFoundry) Fetch(ctx context.Context) []entities.FontRecord {
	return of.cache.Get(ctx, of.fetchRaw, of.convert)
}

func (of *OpenFoundry) Load(context.Context) {
	of.loader.start(!of.cache.Stale(), func(ctx context.Context) { of.Fetch(ctx) })
}

func (of *OpenFoundry) Snapshot() []entities.FontRecord { return of.cache.Snapshot() }

func (of *OpenFoundry) Status() (loaded, loading bool) { return of.cache.Status() }

func (of *OpenFoundry) Expired() bool { return of.cache.Stale() }

func (of *OpenFoundry) Refresh(ctx context.Context) []entities.FontRecord {
	of.cache.Expire()
	return of.Fetch(ctx)
}

func (of *OpenFoundry) fetchRaw(ctx context.Context) ([]byte, error) {
	return of.fetcher.Get(ctx, of.url)
}

func (of *OpenFoundry) convert(_ context.Context, raw []byte) ([]entities.FontRecord, error) {
	var resp OpenFoundryResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("open foundry proxy: %s", resp.Error)
	}

	records := make([]entities.FontRecord, 0, len(resp.Fonts))
	for _, f := range resp.Fonts {
		f.Provider = entities.ProviderOpenFoundry
		if f.Category == "" {
			f.Category = entities.ParseCategory(f.Classification)
		}
		records = append(records, f)
	}
	return filterValid(records), nil
}
