// Package storage provides the local key/value storage that backs the
// employee store and the language setting. Items are plain strings, the
// same contract browser local storage offers.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	e "github.com/gartstein/staffdir/internal/directory/errors"
	"github.com/gartstein/staffdir/internal/directory/storage/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Well-known keys.
const (
	EmployeesKey = "employees"
	LangKey      = "lang"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Storage is the local storage contract.
type Storage interface {
	// GetItem returns the value stored under key. ok is false when the key
	// has never been set.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Driver   string
	Path     string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Open returns the Storage selected by cfg.Driver.
func Open(cfg *Config) (Storage, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, DriverPostgres, "":
		return NewRepository(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", e.ErrInvalidInput, cfg.Driver)
	}
}

// Repository stores items in a SQL table through GORM.
type Repository struct {
	db *gorm.DB
}

func NewRepository(cfg *Config) (*Repository, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	default:
		dialector = sqlite.Open(cfg.Path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Item{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) GetItem(ctx context.Context, key string) (string, bool, error) {
	var item models.Item
	result := r.db.WithContext(ctx).Where(byKey(key)).First(&item)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: get %s: %v", e.ErrStorage, key, result.Error)
	}
	return item.Value, true, nil
}

func (r *Repository) SetItem(ctx context.Context, key, value string) error {
	item := models.Item{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item)
	if result.Error != nil {
		return fmt.Errorf("%w: set %s: %v", e.ErrStorage, key, result.Error)
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Where(byKey(key)).Delete(&models.Item{})
	if result.Error != nil {
		return fmt.Errorf("%w: remove %s: %v", e.ErrStorage, key, result.Error)
	}
	return nil
}

// byKey matches the row for key; the column name is quoted by the dialect.
func byKey(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
