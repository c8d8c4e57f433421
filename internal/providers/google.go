package providers

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
)

//go:embed data/google_fonts.json
var googleCatalog []byte

const googleCSSBase = "https://fonts.googleapis.com/css2"

// googleWebfont is one item of the Google Fonts developer API list format.
type googleWebfont struct {
	Family       string   `json:"family"`
	Category     string   `json:"category"`
	Variants     []string `json:"variants"`
	Subsets      []string `json:"subsets"`
	Version      string   `json:"version"`
	LastModified string   `json:"lastModified"`
}

type googleWebfontList struct {
	Items []googleWebfont `json:"items"`
}

// Google serves the static Google Fonts list bundled with the binary.
type Google struct {
	records []entities.FontRecord
}

// NewGoogle parses the embedded catalog. A broken catalog leaves the
// provider empty.
func NewGoogle() *Google {
	records, err := parseGoogleCatalog(googleCatalog)
	if err != nil {
		logrus.WithField("provider", entities.ProviderGoogle).WithError(err).Error("Failed to parse embedded catalog")
	}
	return &Google{records: records}
}

func parseGoogleCatalog(data []byte) ([]entities.FontRecord, error) {
	var list googleWebfontList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode google catalog: %w", err)
	}

	records := make([]entities.FontRecord, 0, len(list.Items))
	for _, item := range list.Items {
		variants := make([]entities.Variant, 0, len(item.Variants))
		for _, v := range item.Variants {
			if variant, ok := googleVariant(v); ok {
				variants = append(variants, variant)
			}
		}
		files := make(map[entities.Variant]string, len(variants))
		for _, v := range variants {
			files[v] = GoogleCSSURL(item.Family, v)
		}
		records = append(records, entities.FontRecord{
			Family:       item.Family,
			Variants:     variants,
			Subsets:      item.Subsets,
			Version:      item.Version,
			LastModified: item.LastModified,
			Files:        files,
			Category:     entities.ParseCategory(item.Category),
			Provider:     entities.ProviderGoogle,
		})
	}
	return filterValid(records), nil
}

func googleVariant(v string) (entities.Variant, bool) {
	switch v {
	case "regular", "400":
		return entities.VariantRegular, true
	case "italic", "400italic":
		return entities.VariantItalic, true
	case "700":
		return entities.VariantBold, true
	case "700italic":
		return entities.VariantBoldItalic, true
	}
	return "", false
}

// GoogleCSSURL is the css2 stylesheet URL for one variant of family.
func GoogleCSSURL(family string, v entities.Variant) string {
	ital, wght := "0", "400"
	switch v {
	case entities.VariantItalic:
		ital = "1"
	case entities.VariantBold:
		wght = "700"
	case entities.VariantBoldItalic:
		ital, wght = "1", "700"
	}
	return fmt.Sprintf("%s?family=%s:ital,wght@%s,%s&display=swap", googleCSSBase, url.QueryEscape(family), ital, wght)
}

func (g *Google) Name() entities.ProviderName { return entities.ProviderGoogle }

func (g *Google) Fetch(context.Context) []entities.FontRecord { return g.records }

func (g *Google) Load(context.Context) {}

func (g *Google) Snapshot() []entities.FontRecord { return g.records }

func (g *Google) Status() (loaded, loading bool) { return true, false }
