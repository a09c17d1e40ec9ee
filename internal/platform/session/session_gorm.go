package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntryModel is the GORM model for the kv_entries table.
type EntryModel struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:128"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName returns the table name for GORM.
func (EntryModel) TableName() string {
	return "kv_entries"
}

// SessionGorm is a KeyValueStore backed by a SQL table.
// It is used when Redis is not configured. It has no change feed.
type SessionGorm struct {
	db *gorm.DB
}

var _ KeyValueStore = (*SessionGorm)(nil)

// NewSessionGorm creates a SessionGorm. The caller migrates EntryModel.
func NewSessionGorm(db *gorm.DB) *SessionGorm {
	return &SessionGorm{db: db}
}

// Get implements KeyValueStore.
func (s *SessionGorm) Get(ctx context.Context, key string) (string, bool, error) {
	var m EntryModel
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return m.Value, true, nil
}

// Set implements KeyValueStore. Existing entries are overwritten.
func (s *SessionGorm) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements KeyValueStore with a single multi-row upsert.
func (s *SessionGorm) SetMany(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]EntryModel, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, EntryModel{Key: k, Value: entries[k]})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}

// Delete implements KeyValueStore. Missing keys are ignored.
func (s *SessionGorm) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("entry_key IN ?", keys).Delete(&EntryModel{}).Error; err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}
