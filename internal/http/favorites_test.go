package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/entities"
)

type favoritesList struct {
	Favorites []entities.FavoriteVersion `json:"favorites"`
	Total     int                        `json:"total"`
}

func TestFavoritesController_Lifecycle(t *testing.T) {
	ws := newWorkspace(t)

	list := decodeJSON[favoritesList](t, ws.do("GET", "/api/favorites", ""))
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Favorites)

	w := ws.do("GET", "/api/favorites/status", "")
	assert.JSONEq(t, `{"favorited":false}`, w.Body.String())

	w = ws.do("POST", "/api/favorites", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Favorite #1")

	w = ws.do("POST", "/api/favorites", `{"name": "Blue one"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ws.do("GET", "/api/favorites/status", "")
	assert.JSONEq(t, `{"favorited":true}`, w.Body.String())

	stored, err := ws.repo.ListFavorites(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "Blue one", stored[1].Name)
	assert.Len(t, stored[0].FavoriteID, 26, "favorite ids are ULIDs")

	w = ws.do("PATCH", "/api/favorites/"+stored[0].FavoriteID, `{"name": "Renamed"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = ws.do("DELETE", "/api/favorites/"+stored[1].FavoriteID, "")
	require.Equal(t, http.StatusOK, w.Code)

	list = decodeJSON[favoritesList](t, ws.do("GET", "/api/favorites", ""))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Renamed", list.Favorites[0].Name)
}

func TestFavoritesController_StatusFollowsLiveDesign(t *testing.T) {
	ws := newWorkspace(t)

	ws.do("POST", "/api/favorites", "")
	ws.do("PATCH", "/api/design", `{"text": {"value": "not saved yet"}}`)

	w := ws.do("GET", "/api/favorites/status", "")
	assert.JSONEq(t, `{"favorited":false}`, w.Body.String())
}

func TestFavoritesController_Errors(t *testing.T) {
	ws := newWorkspace(t)

	w := ws.do("DELETE", "/api/favorites/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ws.do("PATCH", "/api/favorites/missing", `{"name": "x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ws.do("PATCH", "/api/favorites/missing", `{"name": ""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ws.do("POST", "/api/favorites", `{"name": 12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
