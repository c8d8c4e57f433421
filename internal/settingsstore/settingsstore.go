package settingsstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/wordmark/internal/database/settings"
	"github.com/mrlokans/wordmark/internal/entities"
)

// SettingsStore exposes typed accessors over the settings table.
type SettingsStore struct {
	repo *settings.Repository
}

func New(db *gorm.DB) *SettingsStore {
	return &SettingsStore{repo: settings.NewRepository(db)}
}

// OnboardingCompleted reports whether the first-run tour was dismissed.
// A missing or unparsable value counts as not completed.
func (s *SettingsStore) OnboardingCompleted(ctx context.Context) (bool, error) {
	setting, err := s.repo.GetSetting(ctx, entities.SettingKeyOnboardingCompleted)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	done, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return false, nil
	}
	return done, nil
}

func (s *SettingsStore) SetOnboardingCompleted(ctx context.Context, done bool) error {
	return s.repo.SetSetting(ctx, entities.SettingKeyOnboardingCompleted, strconv.FormatBool(done))
}

// LastCatalogRefresh returns the time of the last scheduled catalog refresh,
// or the zero time if none ran yet.
func (s *SettingsStore) LastCatalogRefresh(ctx context.Context) (time.Time, error) {
	setting, err := s.repo.GetSetting(ctx, entities.SettingKeyLastCatalogRefresh)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, setting.Value)
}

func (s *SettingsStore) SetLastCatalogRefresh(ctx context.Context, at time.Time) error {
	return s.repo.SetSetting(ctx, entities.SettingKeyLastCatalogRefresh, at.UTC().Format(time.RFC3339))
}
