package kvstore

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrKeyNotFound is returned by Get when no entry exists for the key.
var ErrKeyNotFound = errors.New("key not found")

// Store is a persistent mapping from string keys to JSON values. It is the
// single shared mutable resource of the application; repositories own the
// schema of the values they keep in it.
type Store interface {
	// Get returns the stored JSON for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Set marshals value to JSON and upserts it under key.
	Set(ctx context.Context, key string, value interface{}) error
	// CompareAndSet writes value under key only if the currently stored JSON
	// equals previous. It reports whether the swap happened. Callers use this
	// to make read-modify-write sequences safe under concurrent requests.
	CompareAndSet(ctx context.Context, key string, previous json.RawMessage, value interface{}) (bool, error)
	// GetByPrefix returns the values of all entries whose key starts with
	// prefix, in ascending key order. The result is never nil.
	GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error)
	// Delete removes the entry for key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Entry is the single table backing GormStore.
type Entry struct {
	Key   string         `gorm:"column:key;primaryKey"`
	Value datatypes.JSON `gorm:"column:value"`
}

// TableName implements gorm's Tabler interface.
func (Entry) TableName() string {
	return "kv_store"
}

// GormStore implements Store on a gorm-managed table. Production runs it on
// postgres; tests and local development use the sqlite driver.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the kv_store table and returns a store bound to db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var entry Entry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(entry.Value), nil
}

func (s *GormStore) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := Entry{Key: key, Value: datatypes.JSON(raw)}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entry).Error
}

func (s *GormStore) CompareAndSet(ctx context.Context, key string, previous json.RawMessage, value interface{}) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	result := s.db.WithContext(ctx).Model(&Entry{}).
		Where("key = ? AND value = ?", key, string(previous)).
		Update("value", datatypes.JSON(raw))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	var entries []Entry
	err := s.db.WithContext(ctx).
		Where("key LIKE ?", prefix+"%").
		Order("key asc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	values := make([]json.RawMessage, 0, len(entries))
	for _, entry := range entries {
		values = append(values, json.RawMessage(entry.Value))
	}
	return values, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Delete(&Entry{}, "key = ?", key).Error
}
