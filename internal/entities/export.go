package entities

import "time"

// ExportFormatVersion is written into every export document.
const ExportFormatVersion = "1.0"

// ExportKind selects what an export document carries.
type ExportKind string

const (
	ExportAll       ExportKind = "all"
	ExportFavorites ExportKind = "favorites"
	ExportHistory   ExportKind = "history"
	ExportCurrent   ExportKind = "current"
)

// ExportKinds lists the known kinds.
var ExportKinds = []ExportKind{ExportAll, ExportFavorites, ExportHistory, ExportCurrent}

// Valid reports whether k is a known kind.
func (k ExportKind) Valid() bool {
	for _, known := range ExportKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ExportData holds only the collections relevant to the document's kind; the
// others are nil and omitted.
type ExportData struct {
	Favorites *[]FavoriteVersion `json:"favorites,omitempty"`
	History   *[]DesignVersion   `json:"history,omitempty"`
	Current   *DesignVersion     `json:"current,omitempty"`
}

// ExportDocument is the portable file format for favorites and history.
type ExportDocument struct {
	Version    string     `json:"version"`
	ExportDate time.Time  `json:"exportDate"`
	Type       ExportKind `json:"type"`
	Data       ExportData `json:"data"`
}
