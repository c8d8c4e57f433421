package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/database"
	"github.com/mrlokans/wordmark/internal/database/favorites"
	"github.com/mrlokans/wordmark/internal/entities"
	"github.com/mrlokans/wordmark/internal/exporters"
	"github.com/mrlokans/wordmark/internal/history"
	"github.com/mrlokans/wordmark/internal/importers"
	"github.com/mrlokans/wordmark/internal/settingsstore"
)

// workspace is a router over a real history engine and SQLite favorites.
// Debounced groups wait an hour, so only immediate groups and explicit
// commits create versions.
type workspace struct {
	router *gin.Engine
	engine *history.Engine
	repo   *favorites.Repository
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "wordmark.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := favorites.NewRepository(db.DB)
	engine := history.NewEngine(history.Config{
		Initial: entities.DefaultDesign(),
		Windows: history.Windows{
			history.GroupText:      time.Hour,
			history.GroupTextStyle: time.Hour,
			history.GroupCard:      time.Hour,
			history.GroupIconStyle: time.Hour,
		},
	}, nil, repo)
	engine.Init(context.Background())
	t.Cleanup(engine.Close)

	router := NewRouter(RouterConfig{
		History:    engine,
		Favorites:  engine,
		Exporter:   exporters.NewExporter(engine, repo),
		Importer:   importers.NewImporter(engine, repo),
		Onboarding: settingsstore.New(db.DB),
		Database:   db,
		Version:    "test",
	})
	return &workspace{router: router, engine: engine, repo: repo}
}

func (ws *workspace) do(method, path, body string) *httptest.ResponseRecorder {
	return doRequest(ws.router, method, path, body)
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
