// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── favorites/       # Pinned design versions
//	└── settings/        # Application settings (onboarding flag, refresh bookkeeping)
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./wordmark.db", false)
//
//	favoritesRepo := favorites.NewRepository(db.DB)
//	settingsRepo := settings.NewRepository(db.DB)
//
//	list, err := favoritesRepo.ListFavorites(ctx)
package database
