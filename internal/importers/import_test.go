package importers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/entities"
)

type fakeHistory struct {
	versions []entities.DesignVersion
	loaded   *entities.Design
}

func (f *fakeHistory) ReplaceHistory(versions []entities.DesignVersion) {
	f.versions = append([]entities.DesignVersion(nil), versions...)
}

func (f *fakeHistory) MergeHistory(versions []entities.DesignVersion) int {
	existing := map[int]bool{}
	for _, v := range f.versions {
		existing[v.ID] = true
	}
	added := 0
	for _, v := range versions {
		if !existing[v.ID] {
			f.versions = append(f.versions, v)
			added++
		}
	}
	return added
}

func (f *fakeHistory) Load(_ context.Context, d entities.Design) { f.loaded = &d }

type fakeFavorites struct {
	items []entities.FavoriteVersion
	err   error
}

func (f *fakeFavorites) ReplaceFavorites(_ context.Context, favorites []entities.FavoriteVersion) error {
	if f.err != nil {
		return f.err
	}
	f.items = append([]entities.FavoriteVersion(nil), favorites...)
	return nil
}

func (f *fakeFavorites) MergeFavorites(_ context.Context, favorites []entities.FavoriteVersion) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	existing := map[string]bool{}
	for _, fv := range f.items {
		existing[fv.FavoriteID] = true
	}
	added := 0
	for _, fv := range favorites {
		if !existing[fv.FavoriteID] {
			f.items = append(f.items, fv)
			added++
		}
	}
	return added, nil
}

func favorite(id, name string) entities.FavoriteVersion {
	v := entities.NewDesignVersion(1, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), entities.DefaultDesign(), "")
	return entities.FavoriteVersion{DesignVersion: v, FavoriteID: id, Name: name}
}

func document(t *testing.T, kind entities.ExportKind, data entities.ExportData) []byte {
	t.Helper()
	raw, err := json.Marshal(entities.ExportDocument{
		Version:    entities.ExportFormatVersion,
		ExportDate: time.Now().UTC(),
		Type:       kind,
		Data:       data,
	})
	require.NoError(t, err)
	return raw
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		isParse bool
		reason  string
	}{
		{"not json", `{"version":`, true, ""},
		{"missing data", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"all"}`, false, `missing "data"`},
		{"missing version", `{"exportDate":"2024-01-01T00:00:00Z","type":"all","data":{}}`, false, `missing "version"`},
		{"unknown type", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"everything","data":{}}`, false, "unknown type"},
		{"all without history", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"all","data":{"favorites":[]}}`, false, "data.history"},
		{"favorites without favorites", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"favorites","data":{"history":[]}}`, false, "data.favorites"},
		{"current without current", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"current","data":{}}`, false, "data.current"},
		{"favorites not an array", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"favorites","data":{"favorites":{}}}`, false, "malformed"},
		{"bad date", `{"version":"1.0","exportDate":"yesterday","type":"history","data":{"history":[]}}`, false, "malformed"},
		{"favorite without id", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"favorites","data":{"favorites":[{"id":1}]}}`, false, "no favoriteId"},
		{"duplicate history id", `{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"history","data":{"history":[{"id":1},{"id":1}]}}`, false, "duplicate history id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			if tt.isParse {
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), err.Error())
			assert.Contains(t, verr.Reason, tt.reason)
		})
	}
}

func TestImport_MalformedDocumentMutatesNothing(t *testing.T) {
	history := &fakeHistory{versions: []entities.DesignVersion{{ID: 1}}}
	favorites := &fakeFavorites{items: []entities.FavoriteVersion{favorite("a", "A")}}
	im := NewImporter(history, favorites)

	_, err := im.Import(context.Background(), []byte(`{"version":"1.0","exportDate":"2024-01-01T00:00:00Z","type":"all"}`), ModeReplace)
	require.Error(t, err)

	assert.Len(t, history.versions, 1)
	assert.Len(t, favorites.items, 1)
}

func TestImport_MergeFavoritesExistingWins(t *testing.T) {
	favorites := &fakeFavorites{items: []entities.FavoriteVersion{favorite("a", "Mine")}}
	im := NewImporter(&fakeHistory{}, favorites)

	incoming := []entities.FavoriteVersion{favorite("a", "Theirs"), favorite("b", "New")}
	raw := document(t, entities.ExportFavorites, entities.ExportData{Favorites: &incoming})

	result, err := im.Import(context.Background(), raw, ModeMerge)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FavoritesAdded)
	require.Len(t, favorites.items, 2)
	assert.Equal(t, "Mine", favorites.items[0].Name)
	assert.Equal(t, "b", favorites.items[1].FavoriteID)
}

func TestImport_ReplaceHistory(t *testing.T) {
	history := &fakeHistory{versions: []entities.DesignVersion{{ID: 1}, {ID: 2}, {ID: 3}}}
	im := NewImporter(history, &fakeFavorites{})

	incoming := []entities.DesignVersion{{ID: 7}, {ID: 8}}
	raw := document(t, entities.ExportHistory, entities.ExportData{History: &incoming})

	result, err := im.Import(context.Background(), raw, ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, 2, result.HistoryAdded)
	assert.Equal(t, incoming, history.versions)
}

func TestImport_FavoritesOnlyLeavesHistoryAlone(t *testing.T) {
	history := &fakeHistory{versions: []entities.DesignVersion{{ID: 1}}}
	im := NewImporter(history, &fakeFavorites{})

	incoming := []entities.FavoriteVersion{favorite("a", "A")}
	raw := document(t, entities.ExportFavorites, entities.ExportData{Favorites: &incoming})

	_, err := im.Import(context.Background(), raw, ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, []entities.DesignVersion{{ID: 1}}, history.versions)
}

func TestImport_Current(t *testing.T) {
	history := &fakeHistory{}
	im := NewImporter(history, nil)

	d := entities.DefaultDesign()
	d.Text.Value = "Imported"
	current := entities.NewDesignVersion(4, time.Now(), d, "")
	raw := document(t, entities.ExportCurrent, entities.ExportData{Current: &current})

	result, err := im.Import(context.Background(), raw, ModeMerge)
	require.NoError(t, err)
	assert.True(t, result.CurrentRestored)
	require.NotNil(t, history.loaded)
	assert.Equal(t, "Imported", history.loaded.Text.Value)
}

func TestImport_FavoritesFailureStopsBeforeHistory(t *testing.T) {
	history := &fakeHistory{}
	im := NewImporter(history, &fakeFavorites{err: errors.New("disk full")})

	favorites := []entities.FavoriteVersion{favorite("a", "A")}
	versions := []entities.DesignVersion{{ID: 1}}
	raw := document(t, entities.ExportAll, entities.ExportData{Favorites: &favorites, History: &versions})

	_, err := im.Import(context.Background(), raw, ModeMerge)
	require.Error(t, err)
	assert.Empty(t, history.versions)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeMerge, mode)

	mode, err = ParseMode("REPLACE")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, mode)

	_, err = ParseMode("upsert")
	assert.Error(t, err)
}
