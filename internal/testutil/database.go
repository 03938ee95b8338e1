// Package testutil provides test helpers for setting up storage backends,
// creating fixtures, and making assertions.
package testutil

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"monex/internal/config"
	"monex/internal/database"
	"monex/internal/logger"
	"monex/internal/storage"

	"gorm.io/gorm"
)

// SetupTestDB creates a temp-dir SQLite database with the embedded
// migrations applied. The database is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.UseNop()

	cfg, err := database.NewConfig(&config.Config{
		StorageDriver: config.StorageSQLite,
		SQLitePath:    filepath.Join(t.TempDir(), "monex_test.db"),
	})
	if err != nil {
		t.Fatalf("failed to build test database config: %v", err)
	}

	mgr, err := database.NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { TeardownTestDB(t, mgr.DB()) })

	if err := mgr.RunMigrations(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return mgr.DB()
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	_ = sqlDB.Close()
}

// NewTestStorage returns a fresh in-memory storage.
func NewTestStorage(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	logger.UseNop()
	return storage.NewMemoryStorage()
}

var errSaveFailed = errors.New("testutil: save failed")

// FailingStorage wraps a Storage and fails every Save while Fail is set.
type FailingStorage struct {
	storage.Storage
	Fail bool
}

// Save returns an error while Fail is set, leaving the previous value intact.
func (f *FailingStorage) Save(key string, data []byte) error {
	if f.Fail {
		return errSaveFailed
	}
	return f.Storage.Save(key, data)
}

// SlowStorage wraps a Storage and delays every Save, so queued writes stay
// pending long enough for readers to race them.
type SlowStorage struct {
	storage.Storage
	Delay time.Duration
}

// Save sleeps for Delay before storing data.
func (s *SlowStorage) Save(key string, data []byte) error {
	time.Sleep(s.Delay)
	return s.Storage.Save(key, data)
}
