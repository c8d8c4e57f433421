package http

import (
	"github.com/mrlokans/wordmark/internal/assets"
	"github.com/mrlokans/wordmark/internal/database"
	"github.com/mrlokans/wordmark/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Font catalog
	Catalog   FontCatalog
	Preloader FontPreloader
	Network   *assets.NetworkQuality
	Adobe     AdobeKit
	Foundry   FoundrySource
	Refresher CatalogRefresher // optional

	// Design editing
	History   DesignHistory
	Favorites FavoritesManager

	// Export / import
	Exporter DocumentExporter
	Importer DocumentImporter

	// Settings
	Onboarding OnboardingStore
	Database   *database.Database

	// Health probes beyond the database
	HealthChecks map[string]HealthCheck

	// Custom fonts served from disk
	CustomFontsDir    string
	CustomFontsPublic string

	// CORS origins for the SPA
	AllowedOrigins []string

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
