package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OnboardingStore persists whether the first-run tour was completed.
type OnboardingStore interface {
	OnboardingCompleted(ctx context.Context) (bool, error)
	SetOnboardingCompleted(ctx context.Context, done bool) error
}

type OnboardingController struct {
	store OnboardingStore
}

func NewOnboardingController(store OnboardingStore) *OnboardingController {
	return &OnboardingController{store: store}
}

// OnboardingRequest sets the flag; omitted means completed.
type OnboardingRequest struct {
	Completed *bool `json:"completed"`
}

// Status handles GET /api/onboarding
func (oc *OnboardingController) Status(c *gin.Context) {
	done, err := oc.store.OnboardingCompleted(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "onboarding status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": done})
}

// Update handles POST /api/onboarding
func (oc *OnboardingController) Update(c *gin.Context) {
	var req OnboardingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}
	done := true
	if req.Completed != nil {
		done = *req.Completed
	}

	if err := oc.store.SetOnboardingCompleted(c.Request.Context(), done); err != nil {
		respondInternalError(c, err, "update onboarding")
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": done})
}
