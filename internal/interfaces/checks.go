package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/wordmark/internal/aggregator"
	"github.com/mrlokans/wordmark/internal/assets"
	"github.com/mrlokans/wordmark/internal/database/favorites"
	"github.com/mrlokans/wordmark/internal/exporters"
	"github.com/mrlokans/wordmark/internal/history"
	"github.com/mrlokans/wordmark/internal/http"
	"github.com/mrlokans/wordmark/internal/importers"
	"github.com/mrlokans/wordmark/internal/openfoundry"
	"github.com/mrlokans/wordmark/internal/payloadcache"
	"github.com/mrlokans/wordmark/internal/providers"
	"github.com/mrlokans/wordmark/internal/scheduler"
	"github.com/mrlokans/wordmark/internal/settingsstore"
	"github.com/mrlokans/wordmark/internal/tasks"
	"github.com/mrlokans/wordmark/internal/thumbnail"
)

// =============================================================================
// Font Providers
// =============================================================================

var _ providers.Provider = (*providers.Custom)(nil)
var _ providers.Provider = (*providers.Google)(nil)
var _ providers.Provider = (*providers.Adobe)(nil)
var _ providers.Provider = (*providers.OpenFoundry)(nil)
var _ providers.Provider = (*providers.FontSquirrel)(nil)
var _ providers.Provider = (*providers.Fontsource)(nil)

// Paginated and expiring catalogs
var _ providers.Pager = (*providers.Fontsource)(nil)
var _ providers.Refresher = (*providers.OpenFoundry)(nil)
var _ providers.Refresher = (*providers.FontSquirrel)(nil)
var _ providers.Refresher = (*providers.Fontsource)(nil)

// Payload caches
var _ payloadcache.Store = (*payloadcache.Memory)(nil)
var _ payloadcache.Store = (*payloadcache.Redis)(nil)

// =============================================================================
// Assets and Scheduling
// =============================================================================

var _ assets.Registrar = (*assets.Registry)(nil)
var _ assets.ChunkScheduler = (*tasks.ChunkScheduler)(nil)
var _ aggregator.LoadScheduler = (*tasks.LoadScheduler)(nil)
var _ tasks.ProviderLoader = (*aggregator.Aggregator)(nil)
var _ tasks.FamilyLoader = (*assets.Preloader)(nil)
var _ scheduler.RefreshRecorder = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// History and Favorites
// =============================================================================

var _ history.Capturer = (*thumbnail.PreviewCapturer)(nil)
var _ history.FavoritesStore = (*favorites.Repository)(nil)

var _ exporters.HistorySource = (*history.Engine)(nil)
var _ exporters.FavoritesSource = (*favorites.Repository)(nil)
var _ importers.HistoryTarget = (*history.Engine)(nil)
var _ importers.FavoritesTarget = (*favorites.Repository)(nil)

// =============================================================================
// HTTP Dependencies
// =============================================================================

var _ http.FontCatalog = (*aggregator.Aggregator)(nil)
var _ http.FontPreloader = (*assets.Preloader)(nil)
var _ http.AdobeKit = (*providers.Adobe)(nil)
var _ http.FoundrySource = (*openfoundry.Scraper)(nil)
var _ http.CatalogRefresher = (*scheduler.CatalogRefreshScheduler)(nil)
var _ http.DesignHistory = (*history.Engine)(nil)
var _ http.FavoritesManager = (*history.Engine)(nil)
var _ http.DocumentExporter = (*exporters.Exporter)(nil)
var _ http.DocumentImporter = (*importers.Importer)(nil)
var _ http.OnboardingStore = (*settingsstore.SettingsStore)(nil)
