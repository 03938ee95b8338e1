package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one stored value. The table is created by the migrations in
// internal/database.
type Record struct {
	Key       string    `gorm:"column:record_key;primaryKey"`
	Data      []byte    `gorm:"column:data;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName pins the table name used by the migrations.
func (Record) TableName() string { return "records" }

// SQLStorage implements Storage on a GORM database (sqlite or postgres).
type SQLStorage struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSQLStorage wraps an opened and migrated database.
func NewSQLStorage(db *gorm.DB) *SQLStorage {
	return &SQLStorage{db: db, now: time.Now}
}

func (s *SQLStorage) Load(key string) ([]byte, error) {
	var rec Record
	if err := s.db.Where("record_key = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return rec.Data, nil
}

// Save upserts the whole value in one statement inside a transaction, so
// readers see either the old or the new value.
func (s *SQLStorage) Save(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	rec := Record{Key: key, Data: data, UpdatedAt: s.now().UTC()}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "record_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).Create(&rec).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Delete(key string) error {
	if err := s.db.Where("record_key = ?", key).Delete(&Record{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Keys(prefix string) ([]string, error) {
	var keys []string
	err := s.db.Model(&Record{}).
		Where(`record_key LIKE ? ESCAPE '\'`, likePrefix(prefix)).
		Order("record_key").
		Pluck("record_key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns prefix into a LIKE pattern that matches it literally.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
