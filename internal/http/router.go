package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	if corsMiddleware := CORSMiddleware(cfg.AllowedOrigins); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if cfg.Network != nil {
		router.Use(NetworkHintsMiddleware(cfg.Network))
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	for name, check := range cfg.HealthChecks {
		health.AddCheck(name, check)
	}
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	if cfg.CustomFontsDir != "" && cfg.CustomFontsPublic != "" {
		router.Static(cfg.CustomFontsPublic, cfg.CustomFontsDir)
	}

	api := router.Group("/api")

	if cfg.Catalog != nil {
		fonts := NewFontsController(cfg.Catalog, cfg.Preloader, cfg.Adobe)
		api.GET("/fonts", fonts.ListFonts)
		api.GET("/fonts/providers", fonts.ListProviders)
		api.POST("/fonts/providers/:name/load", fonts.LoadProvider)
		api.POST("/fonts/providers/:name/more", fonts.LoadMore)
		api.GET("/fonts/adobe/kit", fonts.AdobeKit)
		if cfg.Preloader != nil {
			api.POST("/fonts/load", fonts.LoadFamilies)
			api.POST("/fonts/visible", fonts.Visible)
		}
	}

	if cfg.Foundry != nil {
		foundry := NewOpenFoundryController(cfg.Foundry)
		api.GET("/fonts/openFoundry", foundry.Catalog)
		api.GET("/fonts/openFoundry/:fontId", foundry.Font)
	}

	if cfg.Refresher != nil {
		refresh := NewRefreshController(cfg.Refresher)
		api.GET("/fonts/refresh", refresh.Status)
		api.POST("/fonts/refresh", refresh.RunNow)
	}

	if cfg.History != nil {
		design := NewDesignController(cfg.History)
		api.GET("/design", design.GetDesign)
		api.PATCH("/design", design.UpdateDesign)
		api.POST("/design/commit", design.CommitDesign)
		api.GET("/history", design.GetHistory)
		api.POST("/history/undo", design.Undo)
		api.POST("/history/redo", design.Redo)
		api.POST("/history/:index/restore", design.Restore)
	}

	if cfg.Favorites != nil {
		favorites := NewFavoritesController(cfg.Favorites)
		api.GET("/favorites", favorites.ListFavorites)
		api.POST("/favorites", favorites.AddFavorite)
		api.GET("/favorites/status", favorites.Status)
		api.PATCH("/favorites/:id", favorites.RenameFavorite)
		api.DELETE("/favorites/:id", favorites.RemoveFavorite)
	}

	if cfg.Exporter != nil && cfg.Importer != nil {
		transfer := NewTransferController(cfg.Exporter, cfg.Importer)
		api.GET("/export", transfer.Export)
		api.POST("/import", transfer.Import)
	}

	if cfg.Onboarding != nil {
		onboarding := NewOnboardingController(cfg.Onboarding)
		api.GET("/onboarding", onboarding.Status)
		api.POST("/onboarding", onboarding.Update)
	}

	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
