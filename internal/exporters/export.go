// Package exporters serializes history and favorites into the portable export
// document.
package exporters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mrlokans/wordmark/internal/entities"
)

// ErrNoCurrentVersion is returned when exporting the current design before
// anything was committed.
var ErrNoCurrentVersion = errors.New("no current version to export")

// HistorySource exposes the version list.
type HistorySource interface {
	Versions() []entities.DesignVersion
	Current() (entities.DesignVersion, bool)
}

// FavoritesSource exposes persisted favorites.
type FavoritesSource interface {
	ListFavorites(ctx context.Context) ([]entities.FavoriteVersion, error)
}

// Exporter builds export documents. Either source may be nil, in which case
// kinds needing it fail.
type Exporter struct {
	history   HistorySource
	favorites FavoritesSource
	now       func() time.Time
}

// NewExporter creates an exporter over the given sources.
func NewExporter(history HistorySource, favorites FavoritesSource) *Exporter {
	return &Exporter{history: history, favorites: favorites, now: time.Now}
}

// Export builds the document for kind.
func (e *Exporter) Export(ctx context.Context, kind entities.ExportKind) (*entities.ExportDocument, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown export type %q", kind)
	}

	doc := &entities.ExportDocument{
		Version:    entities.ExportFormatVersion,
		ExportDate: e.now().UTC(),
		Type:       kind,
	}

	if kind == entities.ExportAll || kind == entities.ExportFavorites {
		if e.favorites == nil {
			return nil, fmt.Errorf("favorites are not available")
		}
		favorites, err := e.favorites.ListFavorites(ctx)
		if err != nil {
			return nil, fmt.Errorf("list favorites: %w", err)
		}
		if favorites == nil {
			favorites = []entities.FavoriteVersion{}
		}
		doc.Data.Favorites = &favorites
	}

	if kind == entities.ExportAll || kind == entities.ExportHistory {
		if e.history == nil {
			return nil, fmt.Errorf("history is not available")
		}
		history := e.history.Versions()
		if history == nil {
			history = []entities.DesignVersion{}
		}
		doc.Data.History = &history
	}

	if kind == entities.ExportCurrent {
		if e.history == nil {
			return nil, fmt.Errorf("history is not available")
		}
		current, ok := e.history.Current()
		if !ok {
			return nil, ErrNoCurrentVersion
		}
		doc.Data.Current = &current
	}

	return doc, nil
}

// Marshal returns the indented JSON for doc.
func Marshal(doc *entities.ExportDocument) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Filename is the download name for an export of kind made at now.
func Filename(kind entities.ExportKind, now time.Time) string {
	return fmt.Sprintf("wordmark-%s-%s.json", kind, now.Format("2006-01-02"))
}
