// Package openfoundry builds the Open Foundry catalog by scraping the
// foundry's stylesheet and metadata sheet, and proxies the font binaries.
package openfoundry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mrlokans/wordmark/internal/entities"
)

const (
	DefaultCSSURL      = "https://open-foundry.com/fonts/fonts.css"
	DefaultMetadataURL = "https://open-foundry.com/data/fonts.json"
	DefaultFilesURL    = "https://open-foundry.com/fonts/"
	CatalogTTL         = time.Hour

	primaryExtension  = ".otf"
	fallbackExtension = ".ttf"
)

// filenameOverrides lists fonts whose files do not follow the PascalCase rule.
var filenameOverrides = map[string]string{
	"ibm-plex-sans":   "IBMPlexSans-Regular.otf",
	"ibm-plex-serif":  "IBMPlexSerif-Regular.otf",
	"eb-garamond":     "EBGaramond12-Regular.otf",
	"space-mono":      "SpaceMono-Regular.ttf",
	"league-gothic":   "LeagueGothic-Regular.otf",
	"cormorant-sc":    "CormorantSC-Regular.otf",
	"fira-sans-extra": "FiraSansExtraCondensed-Regular.otf",
}

var (
	fontFaceBlock  = regexp.MustCompile(`(?s)@font-face\s*\{([^}]*)\}`)
	fontFamilyDecl = regexp.MustCompile(`font-family\s*:\s*['"]?([^;'"]+)['"]?\s*;`)
	fontSrcDecl    = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)
	fontIDPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// metadataEntry is one row of the metadata sheet.
type metadataEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Creator        string `json:"creator"`
	Foundry        string `json:"foundry"`
	License        string `json:"license"`
	Classification string `json:"classification"`
	Version        string `json:"version"`
}

// Config configures the scraper.
type Config struct {
	CSSURL      string
	MetadataURL string
	FilesURL    string
	// PublicPath is the route the binaries are served from, e.g.
	// "/api/fonts/openFoundry".
	PublicPath string
}

// Scraper builds and caches the catalog.
type Scraper struct {
	cfg        Config
	httpClient *http.Client
	group      singleflight.Group

	mu        sync.RWMutex
	records   []entities.FontRecord
	filenames map[string]string // font id -> file name
	fetchedAt time.Time

	now func() time.Time
}

// NewScraper creates a scraper with defaults for empty config fields.
func NewScraper(cfg Config) *Scraper {
	if cfg.CSSURL == "" {
		cfg.CSSURL = DefaultCSSURL
	}
	if cfg.MetadataURL == "" {
		cfg.MetadataURL = DefaultMetadataURL
	}
	if cfg.FilesURL == "" {
		cfg.FilesURL = DefaultFilesURL
	}
	if !strings.HasSuffix(cfg.FilesURL, "/") {
		cfg.FilesURL += "/"
	}
	cfg.PublicPath = strings.TrimRight(cfg.PublicPath, "/")

	return &Scraper{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		filenames:  make(map[string]string),
		now:        time.Now,
	}
}

// Catalog returns the scraped catalog, rebuilding it once the cached copy is
// older than CatalogTTL.
func (s *Scraper) Catalog(ctx context.Context) ([]entities.FontRecord, error) {
	s.mu.RLock()
	fresh := !s.fetchedAt.IsZero() && s.now().Sub(s.fetchedAt) < CatalogTTL
	records := s.records
	s.mu.RUnlock()
	if fresh {
		return records, nil
	}

	v, err, _ := s.group.Do("catalog", func() (interface{}, error) {
		return s.scrape(ctx)
	})
	if err != nil {
		if len(records) > 0 {
			logrus.WithField("provider", entities.ProviderOpenFoundry).WithError(err).
				Warn("Catalog scrape failed, serving stale copy")
			return records, nil
		}
		return nil, err
	}
	return v.([]entities.FontRecord), nil
}

func (s *Scraper) scrape(ctx context.Context) ([]entities.FontRecord, error) {
	css, err := s.get(ctx, s.cfg.CSSURL)
	if err != nil {
		return nil, fmt.Errorf("fetch stylesheet: %w", err)
	}
	sheet, err := s.get(ctx, s.cfg.MetadataURL)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	var entries []metadataEntry
	if err := json.Unmarshal(sheet, &entries); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	byFamily := ParseFontFaces(string(css))
	filenames := make(map[string]string, len(entries))
	records := make([]entities.FontRecord, 0, len(entries))

	for _, e := range entries {
		id := strings.ToLower(strings.TrimSpace(e.ID))
		if !fontIDPattern.MatchString(id) || e.Name == "" {
			continue
		}

		filename := byFamily[e.Name]
		if filename == "" {
			filename = Filename(id)
		}
		filenames[id] = filename

		creator := e.Creator
		if creator == "" {
			creator = e.Foundry
		}
		records = append(records, entities.FontRecord{
			Family:   e.Name,
			Variants: []entities.Variant{entities.VariantRegular},
			Subsets:  []string{"latin"},
			Version:  e.Version,
			Files: map[entities.Variant]string{
				entities.VariantRegular: s.cfg.PublicPath + "/" + id,
			},
			Category: entities.ParseCategory(e.Classification),
			Provider: entities.ProviderOpenFoundry,
			ProviderMeta: entities.ProviderMeta{
				SourceID:       id,
				License:        e.License,
				Classification: e.Classification,
				Creator:        creator,
			},
		})
	}

	s.mu.Lock()
	s.records = records
	s.filenames = filenames
	s.fetchedAt = s.now()
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"provider": entities.ProviderOpenFoundry,
		"count":    len(records),
	}).Info("Open Foundry catalog scraped")

	return records, nil
}

// ParseFontFaces maps each @font-face family in css to the base name of its
// first source file.
func ParseFontFaces(css string) map[string]string {
	out := make(map[string]string)
	for _, block := range fontFaceBlock.FindAllStringSubmatch(css, -1) {
		family := fontFamilyDecl.FindStringSubmatch(block[1])
		src := fontSrcDecl.FindStringSubmatch(block[1])
		if family == nil || src == nil {
			continue
		}
		name := strings.TrimSpace(family[1])
		file := src[1]
		if i := strings.LastIndex(file, "/"); i >= 0 {
			file = file[i+1:]
		}
		if _, seen := out[name]; !seen {
			out[name] = file
		}
	}
	return out
}

// Filename derives the file name for a font id: kebab-case becomes PascalCase
// with the primary extension, unless the id has an override.
func Filename(id string) string {
	if f, ok := filenameOverrides[id]; ok {
		return f
	}
	caser := cases.Title(language.Und)
	var b strings.Builder
	for _, part := range strings.Split(id, "-") {
		b.WriteString(caser.String(part))
	}
	return b.String() + primaryExtension
}

func (s *Scraper) filename(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.filenames[id]; ok {
		return f
	}
	return Filename(id)
}

func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Wordmark/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, URL: url}
	}
	return io.ReadAll(resp.Body)
}
