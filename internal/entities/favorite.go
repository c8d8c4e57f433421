package entities

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrFavoriteNotFound is returned when no favorite has the requested id.
var ErrFavoriteNotFound = errors.New("favorite not found")

// Favorite is the persisted row behind a FavoriteVersion.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	FavoriteID string    `gorm:"uniqueIndex;size:64" json:"favorite_id"`
	Name       string    `gorm:"size:255" json:"name"`
	Position   int       `gorm:"index" json:"position"`
	Version    string    `gorm:"type:text" json:"-"` // JSON-encoded DesignVersion
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// NewFavoriteRow encodes fv for storage at the given position.
func NewFavoriteRow(fv FavoriteVersion, position int) (*Favorite, error) {
	data, err := json.Marshal(fv.DesignVersion)
	if err != nil {
		return nil, err
	}
	return &Favorite{
		FavoriteID: fv.FavoriteID,
		Name:       fv.Name,
		Position:   position,
		Version:    string(data),
	}, nil
}

// ToVersion decodes the stored snapshot.
func (f Favorite) ToVersion() (FavoriteVersion, error) {
	var dv DesignVersion
	if err := json.Unmarshal([]byte(f.Version), &dv); err != nil {
		return FavoriteVersion{}, err
	}
	return FavoriteVersion{DesignVersion: dv, FavoriteID: f.FavoriteID, Name: f.Name}, nil
}
