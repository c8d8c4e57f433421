package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/entities"
)

func TestNewDatabase_MigratesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wordmark.db")

	db, err := NewDatabase(dbPath, false)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&entities.Favorite{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.Setting{}))
}

func TestNewDatabase_ReopensExistingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wordmark.db")

	db, err := NewDatabase(dbPath, false)
	require.NoError(t, err)
	require.NoError(t, db.DB.Create(&entities.Setting{Key: "k", Value: "v"}).Error)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dbPath, true)
	require.NoError(t, err)
	defer db.Close()

	var setting entities.Setting
	require.NoError(t, db.DB.Where("key = ?", "k").First(&setting).Error)
	assert.Equal(t, "v", setting.Value)
}
