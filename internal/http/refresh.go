package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CatalogRefresher triggers remote catalog refreshes.
type CatalogRefresher interface {
	RunNow()
	IsRunning() bool
	IsRefreshing() bool
	NextRunTime() *time.Time
}

type RefreshController struct {
	refresher CatalogRefresher
}

func NewRefreshController(refresher CatalogRefresher) *RefreshController {
	return &RefreshController{refresher: refresher}
}

// Status handles GET /api/fonts/refresh
func (rc *RefreshController) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"scheduled":  rc.refresher.IsRunning(),
		"refreshing": rc.refresher.IsRefreshing(),
		"next_run":   rc.refresher.NextRunTime(),
	})
}

// RunNow handles POST /api/fonts/refresh
func (rc *RefreshController) RunNow(c *gin.Context) {
	if rc.refresher.IsRefreshing() {
		respondErrorCode(c, http.StatusConflict, "refresh_in_progress", "a refresh is already running")
		return
	}
	rc.refresher.RunNow()
	respondAccepted(c, "catalog refresh started", nil)
}
