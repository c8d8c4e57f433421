package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/openfoundry"
	"github.com/mrlokans/wordmark/internal/providers"
	"github.com/mrlokans/wordmark/internal/utils"
)

const (
	catalogCacheControl = "public, s-maxage=3600, stale-while-revalidate=86400"
	binaryCacheControl  = "public, max-age=31536000"
)

// FoundrySource scrapes the Open Foundry catalog and streams its binaries.
type FoundrySource interface {
	Catalog(ctx context.Context) ([]entities.FontRecord, error)
	FetchFont(ctx context.Context, fontID string) (*openfoundry.FontFile, error)
}

// OpenFoundryController is the proxy the Open Foundry provider reads from.
type OpenFoundryController struct {
	source FoundrySource
}

func NewOpenFoundryController(source FoundrySource) *OpenFoundryController {
	return &OpenFoundryController{source: source}
}

// Catalog handles GET /api/fonts/openFoundry
func (oc *OpenFoundryController) Catalog(c *gin.Context) {
	fonts, err := oc.source.Catalog(c.Request.Context())
	if err != nil {
		logrus.WithField("provider", entities.ProviderOpenFoundry).WithError(err).Warn("Open Foundry scrape failed")
		c.JSON(http.StatusBadGateway, providers.OpenFoundryResponse{
			Success: false,
			Fonts:   []entities.FontRecord{},
			Error:   "failed to load Open Foundry catalog",
		})
		return
	}
	if fonts == nil {
		fonts = []entities.FontRecord{}
	}

	c.Header("Cache-Control", catalogCacheControl)
	c.JSON(http.StatusOK, providers.OpenFoundryResponse{
		Success: true,
		Count:   len(fonts),
		Fonts:   fonts,
	})
}

// Font handles GET /api/fonts/openFoundry/:fontId
// The upstream status is mirrored on failure.
func (oc *OpenFoundryController) Font(c *gin.Context) {
	fontID := c.Param("fontId")

	file, err := oc.source.FetchFont(c.Request.Context(), fontID)
	if err != nil {
		status := openfoundry.StatusCode(err)
		logrus.WithFields(logrus.Fields{
			"font_id": fontID,
			"status":  status,
		}).WithError(err).Warn("Open Foundry font fetch failed")
		respondError(c, status, "failed to fetch font "+fontID)
		return
	}
	defer file.Body.Close()

	c.DataFromReader(http.StatusOK, file.ContentLength, file.ContentType, file.Body, map[string]string{
		"Cache-Control":       binaryCacheControl,
		"Content-Disposition": `inline; filename="` + utils.SanitizeFilename(file.Filename) + `"`,
	})
}
