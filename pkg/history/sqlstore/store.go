// Package sqlstore persists value history in a sqlite database through gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Entry is one remembered value of a parameter.
type Entry struct {
	ID       uint   `gorm:"primaryKey"`
	Key      string `gorm:"column:param_key;uniqueIndex:idx_param_history_key_value;not null"`
	Value    string `gorm:"column:param_value;uniqueIndex:idx_param_history_key_value;not null"`
	Position int    `gorm:"not null"`
}

// TableName pins the table name independent of the Go type name.
func (Entry) TableName() string {
	return "param_history"
}

// Store implements history.Store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens (creating when needed) the sqlite database at path and migrates
// the history table.
func Open(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlstore: database path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlstore: create directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}

	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Load returns every stored value grouped by key, in recording order.
func (s *Store) Load(ctx context.Context) (map[string][]string, error) {
	var entries []Entry
	if err := s.db.WithContext(ctx).Order("param_key, position, id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: load: %w", err)
	}
	out := make(map[string][]string)
	for _, entry := range entries {
		out[entry.Key] = append(out[entry.Key], entry.Value)
	}
	s.logger.Debug("history loaded", zap.Int("entries", len(entries)))
	return out, nil
}

// Append stores value under key. Values already stored for key are ignored.
func (s *Store) Append(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Entry{}).Where("param_key = ?", key).Count(&count).Error; err != nil {
			return fmt.Errorf("sqlstore: count %s: %w", key, err)
		}
		entry := Entry{Key: key, Value: value, Position: int(count)}
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("sqlstore: append %s: %w", key, err)
		}
		s.logger.Debug("history value stored",
			zap.String("key", key),
			zap.String("value", value))
		return nil
	})
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
