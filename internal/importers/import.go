// Package importers reads export documents back into history and favorites.
//
// Validation is all-or-nothing and happens before anything is touched. Once a
// document is valid, each collection it carries is applied on its own: a
// favorites-only document leaves history alone.
package importers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/wordmark/internal/entities"
)

// ErrParse means the file is not readable JSON.
var ErrParse = errors.New("import file could not be read")

// ValidationError describes why a well-formed JSON document was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid export file: " + e.Reason
}

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Mode decides how incoming collections combine with existing ones.
type Mode string

const (
	// ModeMerge keeps existing records and adds incoming ones with unseen ids.
	ModeMerge Mode = "merge"
	// ModeReplace discards the existing collection.
	ModeReplace Mode = "replace"
)

// ParseMode accepts "merge" and "replace"; empty means merge.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMerge:
		return ModeMerge, nil
	case ModeReplace:
		return ModeReplace, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

var requiredFields = []string{"version", "exportDate", "type", "data"}

// requiredData lists the data fields each kind must carry.
var requiredData = map[entities.ExportKind][]string{
	entities.ExportAll:       {"favorites", "history"},
	entities.ExportFavorites: {"favorites"},
	entities.ExportHistory:   {"history"},
	entities.ExportCurrent:   {"current"},
}

// Parse decodes and validates raw. Errors wrap ErrParse or are a
// *ValidationError.
func Parse(raw []byte) (*entities.ExportDocument, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	for _, field := range requiredFields {
		if v, ok := top[field]; !ok || string(v) == "null" {
			return nil, invalid("missing %q", field)
		}
	}

	var kind entities.ExportKind
	if err := json.Unmarshal(top["type"], &kind); err != nil || !kind.Valid() {
		return nil, invalid("unknown type %s", top["type"])
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(top["data"], &data); err != nil {
		return nil, invalid("data must be an object")
	}
	for _, field := range requiredData[kind] {
		if v, ok := data[field]; !ok || string(v) == "null" {
			return nil, invalid("%s export is missing data.%s", kind, field)
		}
	}

	var doc entities.ExportDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, invalid("malformed document: %v", err)
	}
	if err := validateContents(doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func validateContents(doc entities.ExportDocument) error {
	if doc.Data.Favorites != nil {
		seen := make(map[string]bool)
		for i, fv := range *doc.Data.Favorites {
			if fv.FavoriteID == "" {
				return invalid("favorite %d has no favoriteId", i)
			}
			if seen[fv.FavoriteID] {
				return invalid("duplicate favoriteId %q", fv.FavoriteID)
			}
			seen[fv.FavoriteID] = true
		}
	}
	if doc.Data.History != nil {
		seen := make(map[int]bool)
		for i, v := range *doc.Data.History {
			if v.ID <= 0 {
				return invalid("history entry %d has no id", i)
			}
			if seen[v.ID] {
				return invalid("duplicate history id %d", v.ID)
			}
			seen[v.ID] = true
		}
	}
	return nil
}

// HistoryTarget receives imported versions.
type HistoryTarget interface {
	ReplaceHistory(versions []entities.DesignVersion)
	MergeHistory(versions []entities.DesignVersion) int
	Load(ctx context.Context, d entities.Design)
}

// FavoritesTarget receives imported favorites. Both operations are atomic.
type FavoritesTarget interface {
	ReplaceFavorites(ctx context.Context, favorites []entities.FavoriteVersion) error
	MergeFavorites(ctx context.Context, favorites []entities.FavoriteVersion) (int, error)
}

// Result reports what an import changed.
type Result struct {
	Type            entities.ExportKind `json:"type"`
	Mode            Mode                `json:"mode"`
	FavoritesAdded  int                 `json:"favoritesAdded"`
	HistoryAdded    int                 `json:"historyAdded"`
	CurrentRestored bool                `json:"currentRestored"`
}

// Importer applies validated documents.
type Importer struct {
	history   HistoryTarget
	favorites FavoritesTarget
}

// NewImporter creates an importer. Either target may be nil when the caller
// only deals with the other collection.
func NewImporter(history HistoryTarget, favorites FavoritesTarget) *Importer {
	return &Importer{history: history, favorites: favorites}
}

// Import parses raw and applies it.
func (im *Importer) Import(ctx context.Context, raw []byte, mode Mode) (Result, error) {
	doc, err := Parse(raw)
	if err != nil {
		return Result{}, err
	}
	return im.Apply(ctx, doc, mode)
}

// Apply writes each collection present in doc.
func (im *Importer) Apply(ctx context.Context, doc *entities.ExportDocument, mode Mode) (Result, error) {
	result := Result{Type: doc.Type, Mode: mode}

	if doc.Data.Favorites != nil && im.favorites == nil {
		return result, errors.New("favorites cannot be imported here")
	}
	if (doc.Data.History != nil || doc.Data.Current != nil) && im.history == nil {
		return result, errors.New("history cannot be imported here")
	}

	if doc.Data.Favorites != nil {
		favorites := *doc.Data.Favorites
		switch mode {
		case ModeReplace:
			if err := im.favorites.ReplaceFavorites(ctx, favorites); err != nil {
				return result, fmt.Errorf("replace favorites: %w", err)
			}
			result.FavoritesAdded = len(favorites)
		default:
			added, err := im.favorites.MergeFavorites(ctx, favorites)
			if err != nil {
				return result, fmt.Errorf("merge favorites: %w", err)
			}
			result.FavoritesAdded = added
		}
	}

	if doc.Data.History != nil {
		history := *doc.Data.History
		switch mode {
		case ModeReplace:
			im.history.ReplaceHistory(history)
			result.HistoryAdded = len(history)
		default:
			result.HistoryAdded = im.history.MergeHistory(history)
		}
	}

	if doc.Data.Current != nil {
		im.history.Load(ctx, doc.Data.Current.Design())
		result.CurrentRestored = true
	}

	return result, nil
}
