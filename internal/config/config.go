package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Fonts
		FontSquirrel
		Fontsource
		OpenFoundry
		Adobe
		Custom
		Assets
		History
		Tasks
		Refresh
		Redis
		CORS
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
		LogLevel                 string
		Debug                    bool
	}
	Database struct {
		Path string
	}
	// Fonts configures the shared upstream fetcher.
	Fonts struct {
		FetchTimeout time.Duration
		Proxies      []string // templates containing {url}
		MaxRetries   int
		RetryBase    time.Duration
		RetryMax     time.Duration
		LoadStagger  time.Duration
	}
	FontSquirrel struct {
		BaseURL        string
		Classification string
		Popular        []string
		TTL            time.Duration
	}
	Fontsource struct {
		URL      string
		PageSize int
		TTL      time.Duration
	}
	OpenFoundry struct {
		CSSURL      string
		MetadataURL string
		FilesURL    string
		// ProviderURL is where the provider reads the catalog proxy route.
		// Empty means this server's own route.
		ProviderURL string
	}
	Adobe struct {
		KitID string
	}
	Custom struct {
		Dir        string
		PublicBase string
	}
	Assets struct {
		CacheDir       string
		ImmediateCount int
		ChunkSize      int
		Concurrency    int
		BasePace       time.Duration
	}
	History struct {
		Capacity       int
		ThumbnailWidth int
		TextWindow     time.Duration
		CardWindow     time.Duration
		StyleWindow    time.Duration
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Refresh struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Redis struct {
		URL string // empty keeps upstream payloads in memory
	}
	CORS struct {
		AllowedOrigins []string
	}
)

// OpenFoundryProviderURL returns the catalog route the Open Foundry provider
// reads from.
func (c *Config) OpenFoundryProviderURL() string {
	if c.OpenFoundry.ProviderURL != "" {
		return c.OpenFoundry.ProviderURL
	}
	host := c.HTTP.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d/api/fonts/openFoundry", host, c.HTTP.Port)
}

// LoadDotEnv loads variables from the given .env files (default ".env").
// Missing files are ignored; existing environment variables win.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			logrus.WithField("file", f).Debug("Loaded environment file")
		}
	}
}

// splitList reads a comma separated env value into a trimmed slice.
func splitList(v *viper.Viper, key string) []string {
	var out []string
	for _, part := range strings.Split(v.GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("log_level", "info")
	v.SetDefault("debug", false)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Upstream fetching
	v.SetDefault("font_fetch_timeout", "30s")
	v.SetDefault("font_proxies", "")
	v.SetDefault("font_max_retries", 3)
	v.SetDefault("font_retry_base", "1s")
	v.SetDefault("font_retry_max", "30s")
	v.SetDefault("font_load_stagger", "2s")

	v.SetDefault("fontsquirrel_base_url", "https://www.fontsquirrel.com/api")
	v.SetDefault("fontsquirrel_classification", "all")
	v.SetDefault("fontsquirrel_popular", "Open Sans,Lato,Roboto,Montserrat,Raleway")
	v.SetDefault("fontsquirrel_ttl", "24h")

	v.SetDefault("fontsource_url", "https://api.fontsource.org/v1/fonts")
	v.SetDefault("fontsource_page_size", 100)
	v.SetDefault("fontsource_ttl", "24h")

	v.SetDefault("openfoundry_css_url", "https://open-foundry.com/fonts/fonts.css")
	v.SetDefault("openfoundry_metadata_url", "https://open-foundry.com/data/fonts.json")
	v.SetDefault("openfoundry_files_url", "https://open-foundry.com/fonts/")
	v.SetDefault("openfoundry_provider_url", "")

	v.SetDefault("adobe_kit_id", "")
	v.SetDefault("custom_fonts_dir", DefaultCustomFontsDir)
	v.SetDefault("custom_fonts_public_base", "/fonts")

	v.SetDefault("font_cache_dir", DefaultFontCacheDir)
	v.SetDefault("preload_immediate_count", 10)
	v.SetDefault("preload_chunk_size", 5)
	v.SetDefault("preload_concurrency", 4)
	v.SetDefault("preload_base_pace", "250ms")

	v.SetDefault("history_capacity", 30)
	v.SetDefault("history_thumbnail_width", 160)
	v.SetDefault("history_text_window", "800ms")
	v.SetDefault("history_card_window", "500ms")
	v.SetDefault("history_style_window", "500ms")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "5m")
	v.SetDefault("task_cleanup_interval", "30m")

	v.SetDefault("catalog_refresh_enabled", true)
	v.SetDefault("catalog_refresh_schedule", "0 */6 * * *") // Every 6 hours

	v.SetDefault("redis_url", "")
	v.SetDefault("cors_allowed_origins", "http://localhost:5173")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			LogLevel:                 v.GetString("LOG_LEVEL"),
			Debug:                    v.GetBool("DEBUG"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Fonts: Fonts{
			FetchTimeout: v.GetDuration("FONT_FETCH_TIMEOUT"),
			Proxies:      splitList(v, "FONT_PROXIES"),
			MaxRetries:   v.GetInt("FONT_MAX_RETRIES"),
			RetryBase:    v.GetDuration("FONT_RETRY_BASE"),
			RetryMax:     v.GetDuration("FONT_RETRY_MAX"),
			LoadStagger:  v.GetDuration("FONT_LOAD_STAGGER"),
		},
		FontSquirrel: FontSquirrel{
			BaseURL:        v.GetString("FONTSQUIRREL_BASE_URL"),
			Classification: v.GetString("FONTSQUIRREL_CLASSIFICATION"),
			Popular:        splitList(v, "FONTSQUIRREL_POPULAR"),
			TTL:            v.GetDuration("FONTSQUIRREL_TTL"),
		},
		Fontsource: Fontsource{
			URL:      v.GetString("FONTSOURCE_URL"),
			PageSize: v.GetInt("FONTSOURCE_PAGE_SIZE"),
			TTL:      v.GetDuration("FONTSOURCE_TTL"),
		},
		OpenFoundry: OpenFoundry{
			CSSURL:      v.GetString("OPENFOUNDRY_CSS_URL"),
			MetadataURL: v.GetString("OPENFOUNDRY_METADATA_URL"),
			FilesURL:    v.GetString("OPENFOUNDRY_FILES_URL"),
			ProviderURL: v.GetString("OPENFOUNDRY_PROVIDER_URL"),
		},
		Adobe: Adobe{
			KitID: v.GetString("ADOBE_KIT_ID"),
		},
		Custom: Custom{
			Dir:        v.GetString("CUSTOM_FONTS_DIR"),
			PublicBase: v.GetString("CUSTOM_FONTS_PUBLIC_BASE"),
		},
		Assets: Assets{
			CacheDir:       v.GetString("FONT_CACHE_DIR"),
			ImmediateCount: v.GetInt("PRELOAD_IMMEDIATE_COUNT"),
			ChunkSize:      v.GetInt("PRELOAD_CHUNK_SIZE"),
			Concurrency:    v.GetInt("PRELOAD_CONCURRENCY"),
			BasePace:       v.GetDuration("PRELOAD_BASE_PACE"),
		},
		History: History{
			Capacity:       v.GetInt("HISTORY_CAPACITY"),
			ThumbnailWidth: v.GetInt("HISTORY_THUMBNAIL_WIDTH"),
			TextWindow:     v.GetDuration("HISTORY_TEXT_WINDOW"),
			CardWindow:     v.GetDuration("HISTORY_CARD_WINDOW"),
			StyleWindow:    v.GetDuration("HISTORY_STYLE_WINDOW"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Refresh: Refresh{
			Enabled:  v.GetBool("CATALOG_REFRESH_ENABLED"),
			Schedule: v.GetString("CATALOG_REFRESH_SCHEDULE"),
		},
		Redis: Redis{
			URL: v.GetString("REDIS_URL"),
		},
		CORS: CORS{
			AllowedOrigins: splitList(v, "CORS_ALLOWED_ORIGINS"),
		},
	}
}
