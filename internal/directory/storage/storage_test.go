package storage

import (
	"context"
	"path/filepath"
	"testing"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB initializes an in-memory SQLite database for testing.
func SetupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every new connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Item{})
	require.NoError(t, err, "failed to migrate test database")

	repo := &Repository{db: db}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func backends(t *testing.T) map[string]Storage {
	return map[string]Storage{
		"gorm":   SetupTestDB(t),
		"memory": NewMemory(),
	}
}

// TestGetItemMissing verifies that an unknown key is reported as absent, not as an error.
func TestGetItemMissing(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			value, ok, err := s.GetItem(context.Background(), EmployeesKey)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, value)
		})
	}
}

// TestSetItemOverwrites checks that a second SetItem replaces the first value.
func TestSetItemOverwrites(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SetItem(ctx, LangKey, "tr"))
			require.NoError(t, s.SetItem(ctx, LangKey, "en"))

			value, ok, err := s.GetItem(ctx, LangKey)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "en", value)
		})
	}
}

// TestRemoveItem ensures removed keys disappear and removing twice is harmless.
func TestRemoveItem(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.SetItem(ctx, EmployeesKey, "[]"))
			require.NoError(t, s.RemoveItem(ctx, EmployeesKey))
			require.NoError(t, s.RemoveItem(ctx, EmployeesKey))

			_, ok, err := s.GetItem(ctx, EmployeesKey)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

// TestRepositorySurvivesReopen simulates a restart against a SQLite file.
func TestRepositorySurvivesReopen(t *testing.T) {
	cfg := &Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "directory.db")}
	ctx := context.Background()

	first, err := NewRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, first.SetItem(ctx, EmployeesKey, `[{"id":1}]`))
	require.NoError(t, first.Close())

	second, err := NewRepository(cfg)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.GetItem(ctx, EmployeesKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, value)
}

// TestClosedRepositoryReportsStorageError verifies failures surface as ErrStorage.
func TestClosedRepositoryReportsStorageError(t *testing.T) {
	repo := SetupTestDB(t)
	require.NoError(t, repo.Close())

	err := repo.SetItem(context.Background(), LangKey, "en")
	assert.ErrorIs(t, err, e.ErrStorage)
}

// TestItemSchema pins the local_storage layout: rows keyed by a "key" column.
func TestItemSchema(t *testing.T) {
	repo := SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.SetItem(ctx, LangKey, "tr"))
	require.NoError(t, repo.SetItem(ctx, LangKey, "en"))

	migrator := repo.db.Migrator()
	assert.True(t, migrator.HasTable("local_storage"))
	assert.True(t, migrator.HasColumn(&models.Item{}, "key"))
	assert.False(t, migrator.HasColumn(&models.Item{}, "name"))

	var value string
	require.NoError(t, repo.db.Raw(`SELECT value FROM local_storage WHERE "key" = ?`, LangKey).Scan(&value).Error)
	assert.Equal(t, "en", value)

	var count int64
	require.NoError(t, repo.db.Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpen(t *testing.T) {
	s, err := Open(&Config{Driver: DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = Open(&Config{Driver: "mongo"})
	assert.ErrorIs(t, err, e.ErrInvalidInput)
}
