package providers

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/assets"
	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
)

//go:embed data/custom_fonts.json
var customCatalog []byte

// CustomManifest is the optional file in the font directory that declares
// additional local fonts.
const CustomManifest = "fonts.json"

// CustomFont declares one locally shipped family.
type CustomFont struct {
	Family   string                      `json:"family"`
	Category string                      `json:"category"`
	License  string                      `json:"license"`
	Creator  string                      `json:"creator"`
	Files    map[entities.Variant]string `json:"files"`
}

// Custom serves fonts shipped next to the service. Files live in dir and are
// published to clients under publicBase.
type Custom struct {
	dir        string
	publicBase string
	registrar  assets.Registrar
	bus        *events.Bus

	declared []CustomFont
	records  []entities.FontRecord
	loader   backgroundLoader

	mu      sync.RWMutex
	loaded  bool
	loading bool
}

// NewCustom creates the adapter. Declared fonts come from the bundled list and
// from dir/fonts.json when present.
func NewCustom(dir, publicBase string, registrar assets.Registrar, bus *events.Bus) (*Custom, error) {
	declared, err := parseCustomFonts(customCatalog)
	if err != nil {
		return nil, err
	}

	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, CustomManifest))
		switch {
		case err == nil:
			extra, err := parseCustomFonts(data)
			if err != nil {
				return nil, fmt.Errorf("custom manifest: %w", err)
			}
			declared = append(declared, extra...)
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read custom manifest: %w", err)
		}
	}

	c := &Custom{
		dir:        dir,
		publicBase: strings.TrimRight(publicBase, "/"),
		registrar:  registrar,
		bus:        bus,
		declared:   declared,
	}
	c.records = c.convert()
	return c, nil
}

func parseCustomFonts(data []byte) ([]CustomFont, error) {
	var fonts []CustomFont
	if err := json.Unmarshal(data, &fonts); err != nil {
		return nil, fmt.Errorf("decode custom fonts: %w", err)
	}
	return fonts, nil
}

func (c *Custom) convert() []entities.FontRecord {
	records := make([]entities.FontRecord, 0, len(c.declared))
	for _, font := range c.declared {
		files := make(map[entities.Variant]string, len(font.Files))
		variants := make([]entities.Variant, 0, len(font.Files))
		for v, file := range font.Files {
			files[v] = c.publicBase + "/" + file
			variants = append(variants, v)
		}
		records = append(records, entities.FontRecord{
			Family:   font.Family,
			Variants: variants,
			Subsets:  []string{"latin"},
			Files:    files,
			Category: entities.ParseCategory(font.Category),
			Provider: entities.ProviderCustom,
			ProviderMeta: entities.ProviderMeta{
				License: font.License,
				Creator: font.Creator,
			},
		})
	}
	return filterValid(records)
}

func (c *Custom) Name() entities.ProviderName { return entities.ProviderCustom }

// Fetch registers the declared files on first use and returns the catalog.
func (c *Custom) Fetch(ctx context.Context) []entities.FontRecord {
	c.register(ctx)
	return c.records
}

func (c *Custom) Load(ctx context.Context) {
	loaded, _ := c.Status()
	c.loader.start(loaded, func(ctx context.Context) { c.register(ctx) })
}

func (c *Custom) Snapshot() []entities.FontRecord { return c.records }

func (c *Custom) Status() (loaded, loading bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded, c.loading
}

// Path returns the local file for a public file name, or "" if no declared
// font uses it.
func (c *Custom) Path(file string) string {
	for _, font := range c.declared {
		for _, f := range font.Files {
			if f == file {
				return filepath.Join(c.dir, f)
			}
		}
	}
	return ""
}

func (c *Custom) register(ctx context.Context) {
	c.mu.Lock()
	if c.loaded || c.loading {
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.mu.Unlock()

	registered := 0
	for _, font := range c.declared {
		for _, v := range entities.SortVariants(variantsOf(font.Files)) {
			path := filepath.Join(c.dir, font.Files[v])
			err := c.registrar.RegisterFont(ctx, font.Family, path, descriptorFor(v))
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"provider": entities.ProviderCustom,
					"family":   font.Family,
					"variant":  v,
				}).WithError(err).Warn("Failed to register custom font")
				continue
			}
			registered++
		}
	}

	c.mu.Lock()
	c.loading = false
	c.loaded = true
	c.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"provider": entities.ProviderCustom,
		"faces":    registered,
	}).Info("Custom fonts registered")

	if c.bus != nil {
		c.bus.Publish(events.CustomUpdated, c.records)
	}
}

func variantsOf(files map[entities.Variant]string) []entities.Variant {
	out := make([]entities.Variant, 0, len(files))
	for v := range files {
		out = append(out, v)
	}
	return out
}

func descriptorFor(v entities.Variant) assets.Descriptor {
	d := assets.Descriptor{Style: "normal", Weight: 400}
	if v == entities.VariantItalic || v == entities.VariantBoldItalic {
		d.Style = "italic"
	}
	if v == entities.VariantBold || v == entities.VariantBoldItalic {
		d.Weight = 700
	}
	return d
}
