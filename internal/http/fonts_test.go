package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/aggregator"
	"github.com/mrlokans/wordmark/internal/entities"
)

type stubCatalog struct {
	byProvider map[entities.ProviderName][]entities.FontRecord
	loaded     []entities.ProviderName
	searched   string
}

func (s *stubCatalog) GetAll() []entities.FontRecord {
	var all []entities.FontRecord
	for _, p := range entities.AllProviders {
		all = append(all, s.byProvider[p]...)
	}
	return all
}

func (s *stubCatalog) GetByProvider(name entities.ProviderName) []entities.FontRecord {
	return s.byProvider[name]
}

func (s *stubCatalog) GetSubset(name entities.ProviderName, start, count int) []entities.FontRecord {
	list := s.byProvider[name]
	if start >= len(list) {
		return []entities.FontRecord{}
	}
	end := start + count
	if end > len(list) {
		end = len(list)
	}
	return list[start:end]
}

func (s *stubCatalog) Search(query string, category entities.Category, limit int) []entities.FontRecord {
	s.searched = query
	var out []entities.FontRecord
	for _, r := range s.GetAll() {
		if category != "" && r.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Family), strings.ToLower(query)) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *stubCatalog) Providers() []aggregator.ProviderStatus {
	return []aggregator.ProviderStatus{{Name: entities.ProviderGoogle, Count: len(s.byProvider[entities.ProviderGoogle]), Loaded: true}}
}

func (s *stubCatalog) LoadProvider(ctx context.Context, name entities.ProviderName) error {
	if _, ok := s.byProvider[name]; !ok {
		return errors.New("unknown provider")
	}
	s.loaded = append(s.loaded, name)
	return nil
}

func (s *stubCatalog) LoadMore(ctx context.Context, name entities.ProviderName, n int) (int, error) {
	if name != entities.ProviderFontsource {
		return 0, errors.New("provider does not support paging")
	}
	for i := 0; i < n; i++ {
		s.byProvider[name] = append(s.byProvider[name], entities.FontRecord{Family: "More", Provider: name})
	}
	return n, nil
}

type stubPreloader struct {
	category entities.Category
	families []string
}

func (s *stubPreloader) LoadFamilies(ctx context.Context, families []string) int {
	s.families = families
	return len(families)
}

func (s *stubPreloader) Visible(ctx context.Context, category entities.Category, families []string) int {
	s.category = category
	s.families = families
	return 1
}

type stubAdobe struct {
	kitID  string
	loaded bool
}

func (s *stubAdobe) KitID() string { return s.kitID }
func (s *stubAdobe) KitScript() string { return "<script>" + s.kitID + "</script>" }
func (s *stubAdobe) Load(ctx context.Context) { s.loaded = true }

func newFontsRouter() (*gin.Engine, *stubCatalog, *stubPreloader, *stubAdobe) {
	catalog := &stubCatalog{byProvider: map[entities.ProviderName][]entities.FontRecord{
		entities.ProviderGoogle: {
			{Family: "Lora", Category: entities.CategorySerif, Provider: entities.ProviderGoogle},
			{Family: "Inter", Category: entities.CategorySansSerif, Provider: entities.ProviderGoogle},
			{Family: "Inconsolata", Category: entities.CategoryMonospace, Provider: entities.ProviderGoogle},
		},
		entities.ProviderFontsource: {
			{Family: "Roboto Slab", Category: entities.CategorySerif, Provider: entities.ProviderFontsource},
		},
	}}
	preloader := &stubPreloader{}
	adobe := &stubAdobe{kitID: "abc1234"}
	router := NewRouter(RouterConfig{Catalog: catalog, Preloader: preloader, Adobe: adobe})
	return router, catalog, preloader, adobe
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeFonts(t *testing.T, w *httptest.ResponseRecorder) FontListResponse {
	t.Helper()
	var resp FontListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestFontsController_ListFonts(t *testing.T) {
	router, catalog, _, _ := newFontsRouter()

	t.Run("returns the whole union", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/fonts", "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeFonts(t, w)
		assert.Equal(t, 4, resp.Count)
		assert.Equal(t, "Lora", resp.Fonts[0].Family)
	})

	t.Run("filters by provider", func(t *testing.T) {
		resp := decodeFonts(t, doRequest(router, "GET", "/api/fonts?provider=fontsource", ""))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "Roboto Slab", resp.Fonts[0].Family)
	})

	t.Run("pages a provider", func(t *testing.T) {
		resp := decodeFonts(t, doRequest(router, "GET", "/api/fonts?provider=google&start=1&count=1", ""))
		require.Len(t, resp.Fonts, 1)
		assert.Equal(t, "Inter", resp.Fonts[0].Family)
		assert.Equal(t, 3, resp.Total)
	})

	t.Run("searches by query and category", func(t *testing.T) {
		resp := decodeFonts(t, doRequest(router, "GET", "/api/fonts?q=in&category=monospace", ""))
		require.Len(t, resp.Fonts, 1)
		assert.Equal(t, "Inconsolata", resp.Fonts[0].Family)
		assert.Equal(t, "in", catalog.searched)
	})

	t.Run("empty provider list is an empty array", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/fonts?provider=adobe", "")
		assert.Contains(t, w.Body.String(), `"fonts":[]`)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/fonts?provider=myspace", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects bad paging", func(t *testing.T) {
		w := doRequest(router, "GET", "/api/fonts?provider=google&start=-3", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFontsController_Providers(t *testing.T) {
	router, catalog, _, _ := newFontsRouter()

	w := doRequest(router, "GET", "/api/fonts/providers", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"google"`)

	w = doRequest(router, "POST", "/api/fonts/providers/google/load", "")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []entities.ProviderName{entities.ProviderGoogle}, catalog.loaded)

	w = doRequest(router, "POST", "/api/fonts/providers/nope/load", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFontsController_LoadMore(t *testing.T) {
	router, _, _, _ := newFontsRouter()

	w := doRequest(router, "POST", "/api/fonts/providers/fontsource/more", `{"count": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"provider":"fontsource","added":2,"total":3}`, w.Body.String())

	w = doRequest(router, "POST", "/api/fonts/providers/google/more", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/fonts/providers/fontsource/more", `{"count": 0.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFontsController_Preload(t *testing.T) {
	router, _, preloader, _ := newFontsRouter()

	w := doRequest(router, "POST", "/api/fonts/load", `{"families": ["Lora", "Inter"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"loaded":2}`, w.Body.String())
	assert.Equal(t, []string{"Lora", "Inter"}, preloader.families)

	w = doRequest(router, "POST", "/api/fonts/visible", `{"category": "serif", "families": ["Lora"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.CategorySerif, preloader.category)

	w = doRequest(router, "POST", "/api/fonts/visible", `{"families": ["Lora"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, "POST", "/api/fonts/load", `{"families": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFontsController_AdobeKit(t *testing.T) {
	router, _, _, adobe := newFontsRouter()

	w := doRequest(router, "GET", "/api/fonts/adobe/kit", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kitId":"abc1234"`)
	assert.True(t, adobe.loaded)

	adobe.kitID = ""
	w = doRequest(router, "GET", "/api/fonts/adobe/kit", "")
	assert.JSONEq(t, `{"configured":false}`, w.Body.String())
}
