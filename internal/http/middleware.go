package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordmark/internal/assets"
)

// NetworkHintsMiddleware feeds the ECT and Save-Data client hints into the
// preloader's pacing. Requests without hints leave the last signal in place.
func NetworkHintsMiddleware(network *assets.NetworkQuality) gin.HandlerFunc {
	return func(c *gin.Context) {
		ect := c.GetHeader("ECT")
		saveData := c.GetHeader("Save-Data") == "on"
		if ect != "" || saveData {
			network.Report(assets.ParseEffectiveType(ect), saveData)
		}
		c.Header("Accept-CH", "ECT, Save-Data")
		c.Next()
	}
}

// CORSMiddleware allows the SPA origins to call the API. It returns nil when
// no origin is configured.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "ECT", "Save-Data"},
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
