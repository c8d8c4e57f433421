package entities

import "time"

// Layout is the arrangement of icon and text on the card.
type Layout string

const (
	LayoutIconLeft   Layout = "icon-left"
	LayoutIconRight  Layout = "icon-right"
	LayoutIconTop    Layout = "icon-top"
	LayoutIconBottom Layout = "icon-bottom"
	LayoutTextOnly   Layout = "text-only"
	LayoutIconOnly   Layout = "icon-only"
)

// Valid reports whether l is one of the known layouts.
func (l Layout) Valid() bool {
	switch l {
	case LayoutIconLeft, LayoutIconRight, LayoutIconTop, LayoutIconBottom, LayoutTextOnly, LayoutIconOnly:
		return true
	}
	return false
}

type (
	Card struct {
		BackgroundColor string  `json:"backgroundColor"`
		Width           float64 `json:"width"`
		Height          float64 `json:"height"`
		Unit            string  `json:"unit"` // "px", "in", "cm"
	}

	Text struct {
		Value string  `json:"value"`
		Color string  `json:"color"`
		Size  float64 `json:"size"`
	}

	Icon struct {
		Name  string  `json:"name"`
		Color string  `json:"color"`
		Size  float64 `json:"size"`
	}
)

// Design is the live, editable state of a logo.
type Design struct {
	Card   Card        `json:"card"`
	Text   Text        `json:"text"`
	Font   *FontRecord `json:"font,omitempty"`
	Icon   Icon        `json:"icon"`
	Layout Layout      `json:"layout"`
}

// DefaultDesign is the state a fresh session starts with.
func DefaultDesign() Design {
	return Design{
		Card:   Card{BackgroundColor: "#ffffff", Width: 600, Height: 300, Unit: "px"},
		Text:   Text{Value: "Wordmark", Color: "#111111", Size: 48},
		Icon:   Icon{Name: "star", Color: "#111111", Size: 64},
		Layout: LayoutIconLeft,
	}
}

// DesignVersion is an immutable snapshot of a Design.
type DesignVersion struct {
	ID        int         `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Card      Card        `json:"card"`
	Text      Text        `json:"text"`
	Font      *FontRecord `json:"font,omitempty"`
	Icon      Icon        `json:"icon"`
	Layout    Layout      `json:"layout"`
	Thumbnail string      `json:"thumbnail,omitempty"`
}

// Design returns the tracked state held by the snapshot.
func (v DesignVersion) Design() Design {
	return Design{Card: v.Card, Text: v.Text, Icon: v.Icon, Layout: v.Layout, Font: v.Font.Clone()}
}

// NewDesignVersion snapshots d. The font record is deep-copied so later edits
// to the live state never reach the snapshot.
func NewDesignVersion(id int, at time.Time, d Design, thumbnail string) DesignVersion {
	return DesignVersion{
		ID:        id,
		Timestamp: at,
		Card:      d.Card,
		Text:      d.Text,
		Font:      d.Font.Clone(),
		Icon:      d.Icon,
		Layout:    d.Layout,
		Thumbnail: thumbnail,
	}
}

// FavoriteVersion is a user-pinned DesignVersion.
type FavoriteVersion struct {
	DesignVersion
	FavoriteID string `json:"favoriteId"`
	Name       string `json:"name,omitempty"`
}
