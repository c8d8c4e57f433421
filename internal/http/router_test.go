package http

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouter_OptionalGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(RouterConfig{})

	assert.Equal(t, "pong", doRequest(router, "GET", "/ping", "").Body.String())
	for _, path := range []string{"/api/fonts", "/api/design", "/api/favorites", "/api/export", "/api/onboarding", "/api/tasks/types"} {
		assert.Equal(t, http.StatusNotFound, doRequest(router, "GET", path, "").Code, path)
	}
}

func TestNewRouter_ServesCustomFonts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "House.woff2"), []byte("wOF2"), 0o644))

	router := NewRouter(RouterConfig{CustomFontsDir: dir, CustomFontsPublic: "/fonts/custom"})

	w := doRequest(router, "GET", "/fonts/custom/House.woff2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wOF2", w.Body.String())
}

func TestNewRouter_FullWorkspace(t *testing.T) {
	ws := newWorkspace(t)

	w := ws.do("GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"test"`)

	for _, path := range []string{"/api/design", "/api/history", "/api/favorites", "/api/export", "/api/onboarding"} {
		assert.Equal(t, http.StatusOK, ws.do("GET", path, "").Code, path)
	}
}
