package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/assets"
	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
	"github.com/mrlokans/wordmark/internal/payloadcache"
)

const (
	DefaultFontSquirrelBaseURL = "https://www.fontsquirrel.com/api"
	fontSquirrelTTL            = 24 * time.Hour
)

// fontSquirrelFamily is one item of the fontlist endpoint.
type fontSquirrelFamily struct {
	ID             json.Number `json:"id"`
	FamilyName     string      `json:"family_name" validate:"required"`
	FamilyURLName  string      `json:"family_urlname" validate:"required"`
	Classification string      `json:"classification"`
	FoundryName    string      `json:"foundry_name"`
	FontFilename   string      `json:"font_filename"`
}

// FontSquirrelConfig configures the Font Squirrel adapter.
type FontSquirrelConfig struct {
	BaseURL        string
	Classification string   // fontlist filter, "all" when empty
	Popular        []string // families preloaded immediately
	TTL            time.Duration
}

// FontSquirrel fetches the Font Squirrel family list and preloads its assets
// in tiers.
type FontSquirrel struct {
	cfg       FontSquirrelConfig
	fetcher   *Fetcher
	cache     *CatalogCache
	preloader *assets.Preloader
	validate  *validator.Validate
	loader    backgroundLoader
}

// NewFontSquirrel creates the adapter. preloader and payloads may be nil.
func NewFontSquirrel(cfg FontSquirrelConfig, fetcher *Fetcher, payloads payloadcache.Store, preloader *assets.Preloader, bus *events.Bus) *FontSquirrel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultFontSquirrelBaseURL
	}
	if cfg.Classification == "" {
		cfg.Classification = "all"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = fontSquirrelTTL
	}

	fs := &FontSquirrel{
		cfg:       cfg,
		fetcher:   fetcher,
		cache:     NewCatalogCache(entities.ProviderFontSquirrel, cfg.TTL, payloads),
		preloader: preloader,
		validate:  validator.New(),
	}
	fs.cache.OnUpdate(func(records []entities.FontRecord) {
		if bus != nil {
			bus.Publish(events.FontSquirrelUpdated, records)
		}
		// Immediate-tier downloads must not hold up Fetch callers.
		if fs.preloader != nil {
			go fs.preloader.Plan(context.Background(), records, fs.cfg.Popular)
		}
	})
	return fs
}

func (fs *FontSquirrel) Name() entities.ProviderName { return entities.ProviderFontSquirrel }

func (fs *FontSquirrel) Fetch(ctx context.Context) []entities.FontRecord {
	return fs.cache.Get(ctx, fs.fetchRaw, fs.convert)
}

func (fs *FontSquirrel) Load(context.Context) {
	fs.loader.start(!fs.cache.Stale(), func(ctx context.Context) { fs.Fetch(ctx) })
}

func (fs *FontSquirrel) Snapshot() []entities.FontRecord { return fs.cache.Snapshot() }

func (fs *FontSquirrel) Status() (loaded, loading bool) { return fs.cache.Status() }

func (fs *FontSquirrel) Expired() bool { return fs.cache.Stale() }

func (fs *FontSquirrel) Refresh(ctx context.Context) []entities.FontRecord {
	fs.cache.Expire()
	return fs.Fetch(ctx)
}

func (fs *FontSquirrel) fetchRaw(ctx context.Context) ([]byte, error) {
	url := fmt.Sprintf("%s/fontlist/%s", strings.TrimRight(fs.cfg.BaseURL, "/"), fs.cfg.Classification)
	return fs.fetcher.Get(ctx, url)
}

func (fs *FontSquirrel) convert(_ context.Context, raw []byte) ([]entities.FontRecord, error) {
	var items []fontSquirrelFamily
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	for i := range items {
		if err := fs.validate.Struct(items[i]); err != nil {
			logrus.WithFields(logrus.Fields{
				"provider": entities.ProviderFontSquirrel,
				"index":    i,
			}).WithError(err).Warn("Rejecting catalog batch")
			return nil, fmt.Errorf("%w: item %d: %v", ErrSchemaValidation, i, err)
		}
	}

	records := make([]entities.FontRecord, 0, len(items))
	for _, item := range items {
		records = append(records, entities.FontRecord{
			Family:   item.FamilyName,
			Variants: []entities.Variant{entities.VariantRegular},
			Subsets:  []string{"latin"},
			Files: map[entities.Variant]string{
				entities.VariantRegular: GoogleCSSURL(item.FamilyName, entities.VariantRegular),
			},
			Category: entities.ParseCategory(item.Classification),
			Provider: entities.ProviderFontSquirrel,
			ProviderMeta: entities.ProviderMeta{
				SourceID:       item.FamilyURLName,
				Classification: item.Classification,
				Creator:        item.FoundryName,
			},
		})
	}
	return filterValid(records), nil
}
