package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
	"github.com/mrlokans/wordmark/internal/payloadcache"
)

const (
	DefaultFontsourceURL = "https://api.fontsource.org/v1/fonts"
	fontsourceChunkSize  = 200
	fontsourceTTL        = 24 * time.Hour
	fontsourcePageSize   = 100
)

// fontsourceFiles maps a format (woff2, woff, ttf) to a URL. The API nests the
// formats under "url"; the bare map form is accepted too.
type fontsourceFiles map[string]string

func (f *fontsourceFiles) UnmarshalJSON(data []byte) error {
	var nested struct {
		URL map[string]string `json:"url"`
	}
	if err := json.Unmarshal(data, &nested); err == nil && nested.URL != nil {
		*f = nested.URL
		return nil
	}
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*f = flat
	return nil
}

// fontsourceFont is one item of the bulk fonts endpoint. Variants is
// weight -> style -> subset -> format.
type fontsourceFont struct {
	ID           string                                           `json:"id"`
	Family       string                                           `json:"family"`
	Subsets      []string                                         `json:"subsets"`
	Weights      []int                                            `json:"weights"`
	Styles       []string                                         `json:"styles"`
	DefSubset    string                                           `json:"defSubset"`
	Category     string                                           `json:"category"`
	License      string                                           `json:"license"`
	Version      string                                           `json:"version"`
	LastModified string                                           `json:"lastModified"`
	Variants     map[string]map[string]map[string]fontsourceFiles `json:"variants"`
}

// FontsourceConfig configures the Fontsource adapter.
type FontsourceConfig struct {
	URL      string
	PageSize int // records published before the first LoadMore
	TTL      time.Duration
}

// Fontsource converts the Fontsource bulk API. The full list is converted up
// front and published page by page.
type Fontsource struct {
	cfg     FontsourceConfig
	fetcher *Fetcher
	cache   *CatalogCache
	bus     *events.Bus
	loader  backgroundLoader

	mu      sync.Mutex
	visible int
}

// NewFontsource creates the adapter. payloads and bus may be nil.
func NewFontsource(cfg FontsourceConfig, fetcher *Fetcher, payloads payloadcache.Store, bus *events.Bus) *Fontsource {
	if cfg.URL == "" {
		cfg.URL = DefaultFontsourceURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = fontsourcePageSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = fontsourceTTL
	}

	fs := &Fontsource{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   NewCatalogCache(entities.ProviderFontsource, cfg.TTL, payloads),
		bus:     bus,
		visible: cfg.PageSize,
	}
	fs.cache.OnUpdate(func([]entities.FontRecord) {
		fs.publish()
	})
	return fs
}

func (fs *Fontsource) publish() {
	if fs.bus != nil {
		fs.bus.Publish(events.FontsourceUpdated, fs.Snapshot())
	}
}

func (fs *Fontsource) Name() entities.ProviderName { return entities.ProviderFontsource }

func (fs *Fontsource) Fetch(ctx context.Context) []entities.FontRecord {
	fs.cache.Get(ctx, fs.fetchRaw, fs.convert)
	return fs.Snapshot()
}

func (fs *Fontsource) Load(context.Context) {
	fs.loader.start(!fs.cache.Stale(), func(ctx context.Context) { fs.Fetch(ctx) })
}

// Snapshot returns the published page of the catalog.
func (fs *Fontsource) Snapshot() []entities.FontRecord {
	all := fs.cache.Snapshot()
	fs.mu.Lock()
	n := fs.visible
	fs.mu.Unlock()
	if n > len(all) {
		n = len(all)
	}
	return all[:n]
}

func (fs *Fontsource) Status() (loaded, loading bool) { return fs.cache.Status() }

// LoadMore publishes up to n more records and returns how many were added.
func (fs *Fontsource) LoadMore(ctx context.Context, n int) int {
	if n <= 0 {
		n = fs.cfg.PageSize
	}
	all := fs.cache.Get(ctx, fs.fetchRaw, fs.convert)

	fs.mu.Lock()
	before := fs.visible
	if before > len(all) {
		before = len(all)
	}
	after := before + n
	if after > len(all) {
		after = len(all)
	}
	fs.visible = after
	fs.mu.Unlock()

	added := after - before
	if added > 0 {
		fs.publish()
	}
	return added
}

// Total returns the size of the converted catalog, published or not.
func (fs *Fontsource) Total() int { return len(fs.cache.Snapshot()) }

func (fs *Fontsource) Expired() bool { return fs.cache.Stale() }

func (fs *Fontsource) Refresh(ctx context.Context) []entities.FontRecord {
	fs.cache.Expire()
	return fs.Fetch(ctx)
}

func (fs *Fontsource) fetchRaw(ctx context.Context) ([]byte, error) {
	return fs.fetcher.Get(ctx, fs.cfg.URL)
}

// convert processes items in fixed chunks and yields between them so a large
// catalog does not monopolise the scheduler.
func (fs *Fontsource) convert(ctx context.Context, raw []byte) ([]entities.FontRecord, error) {
	var items []fontsourceFont
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}

	records := make([]entities.FontRecord, 0, len(items))
	for start := 0; start < len(items); start += fontsourceChunkSize {
		end := start + fontsourceChunkSize
		if end > len(items) {
			end = len(items)
		}
		for _, item := range items[start:end] {
			if item.Family == "" {
				continue
			}
			records = append(records, convertFontsource(item))
		}
		if end < len(items) {
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("conversion interrupted: %w", err)
			}
		}
	}
	return filterValid(records), nil
}

func convertFontsource(item fontsourceFont) entities.FontRecord {
	hasStyle := func(s string) bool {
		for _, have := range item.Styles {
			if have == s {
				return true
			}
		}
		return false
	}
	boldWeight := 0
	for _, w := range item.Weights {
		if w >= 600 && (boldWeight == 0 || abs(w-700) < abs(boldWeight-700)) {
			boldWeight = w
		}
	}

	var variants []entities.Variant
	if hasStyle("normal") {
		variants = append(variants, entities.VariantRegular)
	}
	if hasStyle("italic") {
		variants = append(variants, entities.VariantItalic)
	}
	if boldWeight > 0 {
		variants = append(variants, entities.VariantBold)
		if hasStyle("italic") {
			variants = append(variants, entities.VariantBoldItalic)
		}
	}

	regularWeight := closestWeight(item.Weights, 400)
	files := make(map[entities.Variant]string, len(variants))
	for _, v := range variants {
		weight, style := regularWeight, "normal"
		if v == entities.VariantBold || v == entities.VariantBoldItalic {
			weight = boldWeight
		}
		if v == entities.VariantItalic || v == entities.VariantBoldItalic {
			style = "italic"
		}
		if u := item.fileURL(weight, style); u != "" {
			files[v] = u
		} else {
			files[v] = GoogleCSSURL(item.Family, v)
		}
	}

	return entities.FontRecord{
		Family:       item.Family,
		Variants:     variants,
		Subsets:      item.Subsets,
		Version:      item.Version,
		LastModified: item.LastModified,
		Files:        files,
		Category:     entities.ParseCategory(item.Category),
		Provider:     entities.ProviderFontsource,
		ProviderMeta: entities.ProviderMeta{
			SourceID: item.ID,
			License:  item.License,
		},
	}
}

var fontsourceFormats = []string{"woff2", "woff", "ttf"}

// fileURL picks the file for weight and style, preferring the latin subset
// and compact formats.
func (item fontsourceFont) fileURL(weight int, style string) string {
	subsets := item.Variants[strconv.Itoa(weight)][style]
	if len(subsets) == 0 {
		return ""
	}

	files, ok := subsets["latin"]
	if !ok {
		files, ok = subsets[item.DefSubset]
	}
	if !ok {
		names := make([]string, 0, len(subsets))
		for name := range subsets {
			names = append(names, name)
		}
		sort.Strings(names)
		files = subsets[names[0]]
	}

	for _, format := range fontsourceFormats {
		if u := files[format]; u != "" {
			return u
		}
	}
	return ""
}

func closestWeight(weights []int, target int) int {
	best := target
	for i, w := range weights {
		if i == 0 || abs(w-target) < abs(best-target) {
			best = w
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
