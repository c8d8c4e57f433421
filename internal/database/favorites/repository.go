// Package favorites stores pinned design versions.
//
// Favorites keep their insertion order through an explicit position column.
// Bulk imports run in a single transaction so a failed import leaves the
// collection untouched.
//
// # Usage
//
//	repo := favorites.NewRepository(db)
//	list, err := repo.ListFavorites(ctx)
package favorites

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/wordmark/internal/entities"
)

// Repository handles all favorites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favorites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListFavorites returns every favorite in insertion order.
func (r *Repository) ListFavorites(ctx context.Context) ([]entities.FavoriteVersion, error) {
	var rows []entities.Favorite
	err := r.db.WithContext(ctx).Order("position ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]entities.FavoriteVersion, 0, len(rows))
	for _, row := range rows {
		fv, err := row.ToVersion()
		if err != nil {
			return nil, fmt.Errorf("decode favorite %s: %w", row.FavoriteID, err)
		}
		out = append(out, fv)
	}
	return out, nil
}

// AddFavorite appends fv.
func (r *Repository) AddFavorite(ctx context.Context, fv entities.FavoriteVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextPosition(tx)
		if err != nil {
			return err
		}
		return insert(tx, fv, next)
	})
}

// DeleteFavorite removes the favorite with favoriteID.
func (r *Repository) DeleteFavorite(ctx context.Context, favoriteID string) error {
	result := r.db.WithContext(ctx).Where("favorite_id = ?", favoriteID).Delete(&entities.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrFavoriteNotFound
	}
	return nil
}

// RenameFavorite sets the name of the favorite with favoriteID.
func (r *Repository) RenameFavorite(ctx context.Context, favoriteID, name string) error {
	result := r.db.WithContext(ctx).Model(&entities.Favorite{}).
		Where("favorite_id = ?", favoriteID).
		Update("name", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrFavoriteNotFound
	}
	return nil
}

// CountFavorites returns the number of favorites.
func (r *Repository) CountFavorites(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Favorite{}).Count(&count).Error
	return count, err
}

// ReplaceFavorites swaps the whole collection for favorites.
func (r *Repository) ReplaceFavorites(ctx context.Context, favorites []entities.FavoriteVersion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Favorite{}).Error; err != nil {
			return fmt.Errorf("clear favorites: %w", err)
		}
		for i, fv := range favorites {
			if err := insert(tx, fv, i); err != nil {
				return err
			}
		}
		return nil
	})
}

// MergeFavorites appends the favorites whose id is not stored yet and returns
// how many were added. Stored favorites win on conflict.
func (r *Repository) MergeFavorites(ctx context.Context, favorites []entities.FavoriteVersion) (int, error) {
	added := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&entities.Favorite{}).Pluck("favorite_id", &ids).Error; err != nil {
			return err
		}
		existing := make(map[string]bool, len(ids))
		for _, id := range ids {
			existing[id] = true
		}

		next, err := nextPosition(tx)
		if err != nil {
			return err
		}
		for _, fv := range favorites {
			if existing[fv.FavoriteID] {
				continue
			}
			existing[fv.FavoriteID] = true
			if err := insert(tx, fv, next); err != nil {
				return err
			}
			next++
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func nextPosition(tx *gorm.DB) (int, error) {
	var max *int
	if err := tx.Model(&entities.Favorite{}).Select("MAX(position)").Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func insert(tx *gorm.DB, fv entities.FavoriteVersion, position int) error {
	row, err := entities.NewFavoriteRow(fv, position)
	if err != nil {
		return fmt.Errorf("encode favorite %s: %w", fv.FavoriteID, err)
	}
	if err := tx.Create(row).Error; err != nil {
		return fmt.Errorf("save favorite %s: %w", fv.FavoriteID, err)
	}
	return nil
}
