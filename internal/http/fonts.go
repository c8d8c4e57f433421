package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordmark/internal/aggregator"
	"github.com/mrlokans/wordmark/internal/entities"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// FontCatalog is the read and load surface of the aggregator.
type FontCatalog interface {
	GetAll() []entities.FontRecord
	GetByProvider(name entities.ProviderName) []entities.FontRecord
	GetSubset(name entities.ProviderName, start, count int) []entities.FontRecord
	Search(query string, category entities.Category, limit int) []entities.FontRecord
	Providers() []aggregator.ProviderStatus
	LoadProvider(ctx context.Context, name entities.ProviderName) error
	LoadMore(ctx context.Context, name entities.ProviderName, n int) (int, error)
}

// FontPreloader warms font assets on behalf of the client.
type FontPreloader interface {
	LoadFamilies(ctx context.Context, families []string) int
	Visible(ctx context.Context, category entities.Category, families []string) int
}

// AdobeKit exposes the configured Typekit kit.
type AdobeKit interface {
	KitID() string
	KitScript() string
	Load(ctx context.Context)
}

type FontsController struct {
	catalog   FontCatalog
	preloader FontPreloader
	adobe     AdobeKit
}

func NewFontsController(catalog FontCatalog, preloader FontPreloader, adobe AdobeKit) *FontsController {
	return &FontsController{catalog: catalog, preloader: preloader, adobe: adobe}
}

// FontListResponse is the body of GET /api/fonts.
type FontListResponse struct {
	Fonts []entities.FontRecord `json:"fonts"`
	Count int                   `json:"count"`
	Total int                   `json:"total"`
}

// ListFonts handles GET /api/fonts
// Query: provider, start, count, q, category.
func (fc *FontsController) ListFonts(c *gin.Context) {
	var category entities.Category
	if raw := c.Query("category"); raw != "" {
		category = entities.ParseCategory(raw)
	}
	query := c.Query("q")

	if query != "" || category != "" {
		limit, ok := queryInt(c, "count", 0, maxPageSize)
		if !ok {
			return
		}
		fonts := fc.catalog.Search(query, category, limit)
		c.JSON(http.StatusOK, fontList(fonts, len(fonts)))
		return
	}

	raw := c.Query("provider")
	if raw == "" {
		all := fc.catalog.GetAll()
		c.JSON(http.StatusOK, fontList(all, len(all)))
		return
	}

	name, ok := entities.ParseProviderName(raw)
	if !ok {
		respondBadRequest(c, "unknown provider: "+raw)
		return
	}
	list := fc.catalog.GetByProvider(name)

	if c.Query("start") == "" && c.Query("count") == "" {
		c.JSON(http.StatusOK, fontList(list, len(list)))
		return
	}

	start, ok := queryInt(c, "start", 0, 0)
	if !ok {
		return
	}
	count, ok := queryInt(c, "count", defaultPageSize, maxPageSize)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, fontList(fc.catalog.GetSubset(name, start, count), len(list)))
}

func fontList(fonts []entities.FontRecord, total int) FontListResponse {
	if fonts == nil {
		fonts = []entities.FontRecord{}
	}
	return FontListResponse{Fonts: fonts, Count: len(fonts), Total: total}
}

// ListProviders handles GET /api/fonts/providers
func (fc *FontsController) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"providers": fc.catalog.Providers()})
}

// LoadProvider handles POST /api/fonts/providers/:name/load
// The load runs in the background; poll ListProviders for progress.
func (fc *FontsController) LoadProvider(c *gin.Context) {
	name, ok := fc.providerParam(c)
	if !ok {
		return
	}
	if err := fc.catalog.LoadProvider(c.Request.Context(), name); err != nil {
		respondNotFound(c, "provider")
		return
	}
	respondAccepted(c, "provider load started", gin.H{"provider": name})
}

// LoadMoreRequest grows a paginated provider.
type LoadMoreRequest struct {
	Count int `json:"count" binding:"omitempty,min=1,max=1000"`
}

// LoadMore handles POST /api/fonts/providers/:name/more
func (fc *FontsController) LoadMore(c *gin.Context) {
	name, ok := fc.providerParam(c)
	if !ok {
		return
	}

	var req LoadMoreRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}
	if req.Count == 0 {
		req.Count = defaultPageSize
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()

	added, err := fc.catalog.LoadMore(ctx, name, req.Count)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"provider": name,
		"added":    added,
		"total":    len(fc.catalog.GetByProvider(name)),
	})
}

// FamiliesRequest names font families to preload.
type FamiliesRequest struct {
	Category string   `json:"category"`
	Families []string `json:"families" binding:"required,min=1,max=200,dive,required"`
}

// LoadFamilies handles POST /api/fonts/load
func (fc *FontsController) LoadFamilies(c *gin.Context) {
	var req FamiliesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	loaded := fc.preloader.LoadFamilies(c.Request.Context(), req.Families)
	c.JSON(http.StatusOK, gin.H{"loaded": loaded})
}

// Visible handles POST /api/fonts/visible
// The client reports families that scrolled into view within a category.
func (fc *FontsController) Visible(c *gin.Context) {
	var req FamiliesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Category == "" {
		respondBadRequest(c, "category is required")
		return
	}
	loaded := fc.preloader.Visible(c.Request.Context(), entities.ParseCategory(req.Category), req.Families)
	c.JSON(http.StatusOK, gin.H{"loaded": loaded})
}

// AdobeKit handles GET /api/fonts/adobe/kit
func (fc *FontsController) AdobeKit(c *gin.Context) {
	if fc.adobe == nil || fc.adobe.KitID() == "" {
		c.JSON(http.StatusOK, gin.H{"configured": false})
		return
	}
	fc.adobe.Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"configured": true,
		"kitId":      fc.adobe.KitID(),
		"script":     fc.adobe.KitScript(),
	})
}

func (fc *FontsController) providerParam(c *gin.Context) (entities.ProviderName, bool) {
	name, ok := entities.ParseProviderName(c.Param("name"))
	if !ok {
		respondBadRequest(c, "unknown provider: "+c.Param("name"))
		return "", false
	}
	return name, true
}
