package entrypoint

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/aggregator"
	"github.com/mrlokans/wordmark/internal/assets"
	"github.com/mrlokans/wordmark/internal/config"
	"github.com/mrlokans/wordmark/internal/events"
	"github.com/mrlokans/wordmark/internal/openfoundry"
	"github.com/mrlokans/wordmark/internal/payloadcache"
	"github.com/mrlokans/wordmark/internal/providers"
)

// openFoundryRoute is where the router serves the scraped catalog.
const openFoundryRoute = "/api/fonts/openFoundry"

// FontStack is every font-side component, wired together.
type FontStack struct {
	Bus        *events.Bus
	Payloads   payloadcache.Store
	Network    *assets.NetworkQuality
	Registry   *assets.Registry
	Preloader  *assets.Preloader
	Adobe      *providers.Adobe
	Scraper    *openfoundry.Scraper
	Aggregator *aggregator.Aggregator
	Providers  []providers.Provider

	closers []func()
}

// NewFontStack builds the providers and the aggregator over them. Nothing is
// loaded yet.
func NewFontStack(ctx context.Context, cfg *config.Config) (*FontStack, error) {
	s := &FontStack{Bus: events.NewBus()}

	s.Payloads = payloadcache.NewMemory()
	if cfg.Redis.URL != "" {
		redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		store, err := payloadcache.NewRedisFromURL(redisCtx, cfg.Redis.URL)
		cancel()
		if err != nil {
			logrus.WithError(err).Warn("Redis unavailable, caching provider payloads in memory")
		} else {
			s.Payloads = store
			s.closers = append(s.closers, func() { _ = store.Close() })
			logrus.Info("Caching provider payloads in Redis")
		}
	}

	cache, err := assets.NewCache(cfg.Assets.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("font cache: %w", err)
	}
	s.Registry = assets.NewRegistry(cache)
	s.Network = assets.NewNetworkQuality(cfg.Assets.BasePace)
	s.Preloader = assets.NewPreloader(s.Registry, s.Network, assets.PreloaderConfig{
		ImmediateCount: cfg.Assets.ImmediateCount,
		ChunkSize:      cfg.Assets.ChunkSize,
		Concurrency:    cfg.Assets.Concurrency,
	})

	fetcher := providers.NewFetcher(providers.FetcherConfig{
		Timeout:    cfg.Fonts.FetchTimeout,
		Proxies:    cfg.Fonts.Proxies,
		MaxRetries: cfg.Fonts.MaxRetries,
		BaseDelay:  cfg.Fonts.RetryBase,
		MaxDelay:   cfg.Fonts.RetryMax,
	})

	custom, err := providers.NewCustom(cfg.Custom.Dir, cfg.Custom.PublicBase, s.Registry, s.Bus)
	if err != nil {
		return nil, fmt.Errorf("custom fonts: %w", err)
	}
	s.Adobe = providers.NewAdobe(cfg.Adobe.KitID)

	s.Scraper = openfoundry.NewScraper(openfoundry.Config{
		CSSURL:      cfg.OpenFoundry.CSSURL,
		MetadataURL: cfg.OpenFoundry.MetadataURL,
		FilesURL:    cfg.OpenFoundry.FilesURL,
		PublicPath:  openFoundryRoute,
	})

	s.Providers = []providers.Provider{
		custom,
		providers.NewGoogle(),
		s.Adobe,
		providers.NewOpenFoundry(cfg.OpenFoundryProviderURL(), fetcher, s.Payloads, s.Bus),
		providers.NewFontSquirrel(providers.FontSquirrelConfig{
			BaseURL:        cfg.FontSquirrel.BaseURL,
			Classification: cfg.FontSquirrel.Classification,
			Popular:        cfg.FontSquirrel.Popular,
			TTL:            cfg.FontSquirrel.TTL,
		}, fetcher, s.Payloads, s.Preloader, s.Bus),
		providers.NewFontsource(providers.FontsourceConfig{
			URL:      cfg.Fontsource.URL,
			PageSize: cfg.Fontsource.PageSize,
			TTL:      cfg.Fontsource.TTL,
		}, fetcher, s.Payloads, s.Bus),
	}

	s.Aggregator = aggregator.New(s.Bus, s.Providers...)
	if cfg.Fonts.LoadStagger > 0 {
		s.Aggregator.SetStagger(cfg.Fonts.LoadStagger)
	}
	s.closers = append(s.closers, s.Aggregator.Close)

	return s, nil
}

// Close releases the aggregator subscriptions and the payload store.
func (s *FontStack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
