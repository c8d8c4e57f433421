package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/database"
	"github.com/mrlokans/wordmark/internal/database/favorites"
	"github.com/mrlokans/wordmark/internal/entities"
)

func seedFavorites(t *testing.T, path string, names ...string) {
	t.Helper()
	db, err := database.NewDatabase(path, false)
	require.NoError(t, err)
	defer db.Close()

	repo := favorites.NewRepository(db.DB)
	for i, name := range names {
		d := entities.DefaultDesign()
		d.Text.Value = name
		require.NoError(t, repo.AddFavorite(context.Background(), entities.FavoriteVersion{
			DesignVersion: entities.NewDesignVersion(i+1, time.Now(), d, ""),
			FavoriteID:    "fav-" + name,
			Name:          name,
		}))
	}
}

func listFavorites(t *testing.T, path string) []entities.FavoriteVersion {
	t.Helper()
	db, err := database.NewDatabase(path, false)
	require.NoError(t, err)
	defer db.Close()

	list, err := favorites.NewRepository(db.DB).ListFavorites(context.Background())
	require.NoError(t, err)
	return list
}

func TestFavoritesExportImport(t *testing.T) {
	dir := t.TempDir()
	sourceDB := filepath.Join(dir, "source.db")
	targetDB := filepath.Join(dir, "target.db")
	exportPath := filepath.Join(dir, "out", "favorites.json")

	seedFavorites(t, sourceDB, "alpha", "beta")
	seedFavorites(t, targetDB, "gamma")

	var out bytes.Buffer
	export := &FavoritesExportCommand{DatabasePath: sourceDB, OutputPath: exportPath, Out: &out, now: time.Now}
	require.NoError(t, export.Run())
	assert.Contains(t, out.String(), "Exported 2 favorites")
	_, err := os.Stat(exportPath)
	require.NoError(t, err)

	out.Reset()
	merge := &FavoritesImportCommand{FilePath: exportPath, DatabasePath: targetDB, Mode: "merge", Out: &out}
	require.NoError(t, merge.Run())
	assert.Contains(t, out.String(), "Imported 2 favorites (merge)")
	assert.Len(t, listFavorites(t, targetDB), 3)

	out.Reset()
	replace := &FavoritesImportCommand{FilePath: exportPath, DatabasePath: targetDB, Mode: "replace", Out: &out}
	require.NoError(t, replace.Run())
	list := listFavorites(t, targetDB)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
}

func TestFavoritesExport_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wordmark.db")
	seedFavorites(t, dbPath, "alpha")

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	var out bytes.Buffer
	fixed := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	cmd := &FavoritesExportCommand{DatabasePath: dbPath, Out: &out, now: func() time.Time { return fixed }}
	require.NoError(t, cmd.Run())

	_, err = os.Stat(filepath.Join(dir, "wordmark-favorites-2024-03-09.json"))
	assert.NoError(t, err)
}

func TestFavoritesExport_Stdout(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wordmark.db")
	seedFavorites(t, dbPath, "alpha")

	var out bytes.Buffer
	cmd := &FavoritesExportCommand{DatabasePath: dbPath, OutputPath: "-", Out: &out, now: time.Now}
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), `"type": "favorites"`)
	assert.Contains(t, out.String(), `"favoriteId": "fav-alpha"`)
}

func TestFavoritesImport_SkipsHistoryAndDryRun(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wordmark.db")
	docPath := filepath.Join(dir, "all.json")
	doc := `{
		"version": "1.0",
		"exportDate": "2024-01-01T00:00:00Z",
		"type": "all",
		"data": {
			"favorites": [{"id": 1, "favoriteId": "f1", "name": "One", "layout": "icon-left"}],
			"history": [{"id": 1, "layout": "icon-left"}]
		}
	}`
	require.NoError(t, os.WriteFile(docPath, []byte(doc), 0644))

	var out bytes.Buffer
	dry := &FavoritesImportCommand{FilePath: docPath, DatabasePath: dbPath, Mode: "merge", DryRun: true, Out: &out}
	require.NoError(t, dry.Run())
	assert.Contains(t, out.String(), "Skipping history")
	assert.Contains(t, out.String(), "Dry run complete")
	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err), "dry run must not create the database")

	out.Reset()
	run := &FavoritesImportCommand{FilePath: docPath, DatabasePath: dbPath, Mode: "merge", Out: &out}
	require.NoError(t, run.Run())
	assert.Len(t, listFavorites(t, dbPath), 1)
}

func TestFavoritesImport_Errors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "wordmark.db")

	cmd := &FavoritesImportCommand{FilePath: filepath.Join(dir, "missing.json"), DatabasePath: dbPath, Mode: "merge", Out: &bytes.Buffer{}}
	assert.Error(t, cmd.Run())

	historyOnly := filepath.Join(dir, "history.json")
	require.NoError(t, os.WriteFile(historyOnly, []byte(`{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"history","data":{"history":[]}}`), 0644))
	cmd = &FavoritesImportCommand{FilePath: historyOnly, DatabasePath: dbPath, Mode: "merge", Out: &bytes.Buffer{}}
	err := cmd.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without favorites")
}

func TestFavoritesImport_ParseFlags(t *testing.T) {
	cmd := NewFavoritesImportCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-mode", "replace", "backup.json"}))
	assert.Equal(t, "backup.json", cmd.FilePath)
	assert.Equal(t, "replace", cmd.Mode)

	assert.Error(t, NewFavoritesImportCommand().ParseFlags([]string{"-mode", "append", "-file", "x.json"}))
	assert.Error(t, NewFavoritesImportCommand().ParseFlags(nil))
}
