package config

// Default on-disk locations
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./wordmark.db"

	// DefaultFontCacheDir holds downloaded font binaries
	DefaultFontCacheDir = "./font-cache"

	// DefaultCustomFontsDir holds self-hosted fonts and their fonts.json manifest
	DefaultCustomFontsDir = "./fonts"
)
