package entities

import "strings"

// ProviderName identifies where a font record came from.
type ProviderName string

const (
	ProviderGoogle       ProviderName = "google"
	ProviderAdobe        ProviderName = "adobe"
	ProviderCustom       ProviderName = "custom"
	ProviderFontSquirrel ProviderName = "fontsquirrel"
	ProviderFontsource   ProviderName = "fontsource"
	ProviderOpenFoundry  ProviderName = "openfoundry"
)

// AllProviders lists every known provider in load priority order:
// local catalogs first, then secondary remote catalogs, then the large one.
var AllProviders = []ProviderName{
	ProviderCustom,
	ProviderGoogle,
	ProviderAdobe,
	ProviderOpenFoundry,
	ProviderFontSquirrel,
	ProviderFontsource,
}

// ParseProviderName returns the provider for a name, accepting the camelCase
// spellings the web client uses (e.g. "openFoundry", "fontSquirrel").
func ParseProviderName(s string) (ProviderName, bool) {
	n := ProviderName(strings.ToLower(strings.TrimSpace(s)))
	for _, p := range AllProviders {
		if p == n {
			return p, true
		}
	}
	return "", false
}

// Variant is one of the four style tags a font record can expose.
type Variant string

const (
	VariantRegular    Variant = "regular"
	VariantItalic     Variant = "italic"
	VariantBold       Variant = "bold"
	VariantBoldItalic Variant = "bold-italic"
)

// VariantOrder is the canonical ordering of variants within a record.
var VariantOrder = []Variant{VariantRegular, VariantItalic, VariantBold, VariantBoldItalic}

// Category is the coarse classification shared by all providers.
type Category string

const (
	CategorySansSerif Category = "sans-serif"
	CategorySerif     Category = "serif"
	CategoryMonospace Category = "monospace"
	CategoryDisplay   Category = "display"
)

// ParseCategory maps a provider's free-text classification onto a Category.
// Monospace wins over sans ("Sans Mono"), and sans over serif ("sans-serif").
// Anything unrecognised is sans-serif.
func ParseCategory(s string) Category {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "mono"), strings.Contains(s, "programming"):
		return CategoryMonospace
	case strings.Contains(s, "sans"):
		return CategorySansSerif
	case strings.Contains(s, "serif"), strings.Contains(s, "slab"):
		return CategorySerif
	case strings.Contains(s, "display"), strings.Contains(s, "handwriting"),
		strings.Contains(s, "script"), strings.Contains(s, "decorative"):
		return CategoryDisplay
	}
	return CategorySansSerif
}

// ProviderMeta carries the provider-specific fields of a record.
type ProviderMeta struct {
	SourceID       string `json:"sourceId,omitempty"`
	License        string `json:"license,omitempty"`
	Classification string `json:"classification,omitempty"`
	Creator        string `json:"creator,omitempty"`
}

// FontRecord is the normalized font descriptor every provider converts into.
type FontRecord struct {
	Family       string             `json:"family"`
	Variants     []Variant          `json:"variants"`
	Subsets      []string           `json:"subsets"`
	Version      string             `json:"version"`
	LastModified string             `json:"lastModified"`
	Files        map[Variant]string `json:"files"`
	Category     Category           `json:"category"`
	Provider     ProviderName       `json:"provider"`
	ProviderMeta
}

// Valid reports whether the record can be published: it needs a family and a
// resolvable regular file.
func (f FontRecord) Valid() bool {
	return f.Family != "" && f.Files[VariantRegular] != ""
}

// Clone returns a deep copy of f, or nil when f is nil.
func (f *FontRecord) Clone() *FontRecord {
	if f == nil {
		return nil
	}
	c := *f
	if f.Variants != nil {
		c.Variants = append([]Variant(nil), f.Variants...)
	}
	if f.Subsets != nil {
		c.Subsets = append([]string(nil), f.Subsets...)
	}
	if f.Files != nil {
		c.Files = make(map[Variant]string, len(f.Files))
		for v, url := range f.Files {
			c.Files[v] = url
		}
	}
	return &c
}

// HasVariant reports whether v is among the record's variants.
func (f FontRecord) HasVariant(v Variant) bool {
	for _, have := range f.Variants {
		if have == v {
			return true
		}
	}
	return false
}

// SortVariants returns vs deduplicated and in canonical order.
func SortVariants(vs []Variant) []Variant {
	seen := make(map[Variant]bool, len(vs))
	for _, v := range vs {
		seen[v] = true
	}
	out := make([]Variant, 0, len(seen))
	for _, v := range VariantOrder {
		if seen[v] {
			out = append(out, v)
		}
	}
	return out
}
