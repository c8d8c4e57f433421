// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help contributors find
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Font Catalog Interfaces
//
//   - Provider: A font source converted to FontRecords (internal/providers/provider.go)
//   - Pager: Providers whose public list grows page by page (internal/providers/provider.go)
//   - Refresher: Providers with an expiring remote catalog (internal/providers/provider.go)
//   - Store: Raw payload cache, memory or Redis (internal/payloadcache/store.go)
//
// ## Asset Interfaces
//
//   - Registrar: Makes a font file available for rendering (internal/assets/registry.go)
//   - ChunkScheduler: Runs deferred preload chunks (internal/assets/preloader.go)
//   - LoadScheduler: Runs staggered provider loads (internal/aggregator/aggregator.go)
//
// ## History Interfaces
//
//   - Capturer: Renders version thumbnails (internal/history/engine.go)
//   - FavoritesStore: Persists favorites (internal/history/engine.go)
//   - HistorySource / FavoritesSource: Export inputs (internal/exporters/export.go)
//   - HistoryTarget / FavoritesTarget: Import outputs (internal/importers/import.go)
//
// # Adding a New Font Provider
//
// To add a new catalog source (e.g., Bunny Fonts):
//
//  1. Implement Provider in internal/providers/
//
//     type Bunny struct {
//         fetcher *Fetcher
//         cache   *CatalogCache
//         loader  backgroundLoader
//     }
//
//     func (b *Bunny) Name() entities.ProviderName
//     func (b *Bunny) Fetch(ctx context.Context) []entities.FontRecord
//     func (b *Bunny) Load(ctx context.Context)
//     func (b *Bunny) Snapshot() []entities.FontRecord
//     func (b *Bunny) Status() (loaded, loading bool)
//
//  2. Add its name to entities.AllProviders, which fixes the priority order
//
//  3. Implement Refresher when the catalog expires, so the refresh scheduler
//     picks it up
//
//  4. Construct it in entrypoint.NewFontStack
//
// # Adding a New Payload Cache
//
//  1. Implement Store in internal/payloadcache/
//
//  2. Select it in entrypoint.NewFontStack
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
