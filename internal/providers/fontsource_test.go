package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/events"
)

const fontsourceItems = `[
	{
		"id": "inter",
		"family": "Inter",
		"subsets": ["latin", "latin-ext"],
		"weights": [300, 400, 700],
		"styles": ["normal", "italic"],
		"defSubset": "latin",
		"category": "sans-serif",
		"license": "OFL-1.1",
		"version": "v13",
		"lastModified": "2024-01-01",
		"variants": {
			"400": {
				"normal": {"latin": {"url": {"woff2": "https://cdn.example/inter-400.woff2", "woff": "https://cdn.example/inter-400.woff"}}},
				"italic": {"latin-ext": {"url": {"woff": "https://cdn.example/inter-400i-ext.woff"}}, "vietnamese": {"url": {"ttf": "https://cdn.example/inter-400i-vi.ttf"}}}
			},
			"700": {
				"normal": {"latin": {"woff2": "https://cdn.example/inter-700.woff2"}}
			}
		}
	},
	{
		"id": "italic-only",
		"family": "Italic Only",
		"weights": [400],
		"styles": ["italic"],
		"category": "serif"
	},
	{
		"id": "semi",
		"family": "Semi Sans",
		"weights": [400, 600],
		"styles": ["normal"],
		"category": "display"
	}
]`

func TestFontsource_Convert(t *testing.T) {
	fs := NewFontsource(FontsourceConfig{}, nil, nil, nil)

	records, err := fs.convert(context.Background(), []byte(fontsourceItems))
	require.NoError(t, err)
	require.Len(t, records, 2)

	inter := records[0]
	assert.Equal(t, "Inter", inter.Family)
	assert.Equal(t, []entities.Variant{
		entities.VariantRegular, entities.VariantItalic, entities.VariantBold, entities.VariantBoldItalic,
	}, inter.Variants)
	assert.Equal(t, "https://cdn.example/inter-400.woff2", inter.Files[entities.VariantRegular])
	assert.Equal(t, "https://cdn.example/inter-400i-ext.woff", inter.Files[entities.VariantItalic])
	assert.Equal(t, "https://cdn.example/inter-700.woff2", inter.Files[entities.VariantBold])
	assert.Equal(t, GoogleCSSURL("Inter", entities.VariantBoldItalic), inter.Files[entities.VariantBoldItalic])
	assert.Equal(t, "OFL-1.1", inter.License)
	assert.Equal(t, "inter", inter.SourceID)
	assert.Equal(t, entities.ProviderFontsource, inter.Provider)

	semi := records[1]
	assert.Equal(t, []entities.Variant{entities.VariantRegular, entities.VariantBold}, semi.Variants)
	assert.Equal(t, GoogleCSSURL("Semi Sans", entities.VariantRegular), semi.Files[entities.VariantRegular])
	assert.Equal(t, entities.CategoryDisplay, semi.Category)
}

func TestFontsource_ConvertProcessesAllChunks(t *testing.T) {
	items := make([]map[string]any, 450)
	for i := range items {
		items[i] = map[string]any{
			"id":      fmt.Sprintf("font-%d", i),
			"family":  fmt.Sprintf("Font %d", i),
			"weights": []int{400},
			"styles":  []string{"normal"},
		}
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)

	fs := NewFontsource(FontsourceConfig{}, nil, nil, nil)
	records, err := fs.convert(context.Background(), raw)
	require.NoError(t, err)
	assert.Len(t, records, 450)
	assert.Equal(t, "Font 449", records[449].Family)
}

func TestFontsource_ConvertStopsOnCancel(t *testing.T) {
	items := make([]map[string]any, 250)
	for i := range items {
		items[i] = map[string]any{"family": fmt.Sprintf("Font %d", i), "styles": []string{"normal"}}
	}
	raw, err := json.Marshal(items)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fs := NewFontsource(FontsourceConfig{}, nil, nil, nil)
	_, err = fs.convert(ctx, raw)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFontsource_LoadMore(t *testing.T) {
	items := make([]map[string]any, 5)
	for i := range items {
		items[i] = map[string]any{"family": fmt.Sprintf("Font %d", i), "styles": []string{"normal"}, "weights": []int{400}}
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(items)
	}))
	defer server.Close()

	bus := events.NewBus()
	var published int
	bus.Subscribe(events.FontsourceUpdated, func(events.Event) { published++ })

	f, _ := newTestFetcher()
	fs := NewFontsource(FontsourceConfig{URL: server.URL, PageSize: 2}, f, nil, bus)
	ctx := context.Background()

	assert.Len(t, fs.Fetch(ctx), 2)
	assert.Equal(t, 5, fs.Total())
	assert.Equal(t, 1, published)

	assert.Equal(t, 2, fs.LoadMore(ctx, 2))
	assert.Len(t, fs.Snapshot(), 4)
	assert.Equal(t, 1, fs.LoadMore(ctx, 5))
	assert.Equal(t, 0, fs.LoadMore(ctx, 5))
	assert.Len(t, fs.Snapshot(), 5)
	assert.Equal(t, 3, published)
}
