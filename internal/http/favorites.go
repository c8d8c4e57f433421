package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/history"
)

// FavoritesManager pins and manages favorite design versions.
type FavoritesManager interface {
	Favorites(ctx context.Context) ([]entities.FavoriteVersion, error)
	AddToFavorites(ctx context.Context, name string) (entities.FavoriteVersion, error)
	RemoveFavorite(ctx context.Context, favoriteID string) error
	RenameFavorite(ctx context.Context, favoriteID, name string) error
	IsFavorited(ctx context.Context) (bool, error)
}

type FavoritesController struct {
	favorites FavoritesManager
}

func NewFavoritesController(favorites FavoritesManager) *FavoritesController {
	return &FavoritesController{favorites: favorites}
}

// FavoriteRequest carries an optional display name.
type FavoriteRequest struct {
	Name string `json:"name" binding:"max=120"`
}

// ListFavorites handles GET /api/favorites
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	list, err := fc.favorites.Favorites(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list favorites")
		return
	}
	if list == nil {
		list = []entities.FavoriteVersion{}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": list, "total": len(list)})
}

// AddFavorite handles POST /api/favorites
// Pins the current version. An empty name becomes "Favorite #n".
func (fc *FavoritesController) AddFavorite(c *gin.Context) {
	var req FavoriteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body: "+err.Error())
			return
		}
	}

	fv, err := fc.favorites.AddToFavorites(c.Request.Context(), req.Name)
	switch {
	case errors.Is(err, history.ErrNoCurrentVersion):
		respondErrorCode(c, http.StatusConflict, "no_current_version", "there is no version to favorite yet")
		return
	case err != nil:
		respondInternalError(c, err, "add favorite")
		return
	}
	respondCreated(c, fv)
}

// RemoveFavorite handles DELETE /api/favorites/:id
func (fc *FavoritesController) RemoveFavorite(c *gin.Context) {
	err := fc.favorites.RemoveFavorite(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, entities.ErrFavoriteNotFound):
		respondNotFound(c, "favorite")
		return
	case err != nil:
		respondInternalError(c, err, "remove favorite")
		return
	}
	respondSuccess(c, "favorite removed")
}

// RenameFavorite handles PATCH /api/favorites/:id
func (fc *FavoritesController) RenameFavorite(c *gin.Context) {
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	err := fc.favorites.RenameFavorite(c.Request.Context(), c.Param("id"), req.Name)
	switch {
	case errors.Is(err, entities.ErrFavoriteNotFound):
		respondNotFound(c, "favorite")
		return
	case err != nil:
		respondInternalError(c, err, "rename favorite")
		return
	}
	respondSuccess(c, "favorite renamed")
}

// Status handles GET /api/favorites/status
// Reports whether the design on screen matches a favorite.
func (fc *FavoritesController) Status(c *gin.Context) {
	favorited, err := fc.favorites.IsFavorited(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "favorite status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorited": favorited})
}
