// Package app wires storage, the write queue, the partition repository and
// the services into one process-wide instance shared by the API server and
// the CLI.
package app

import (
	"errors"
	"fmt"

	"monex/internal/config"
	"monex/internal/database"
	apperrors "monex/internal/errors"
	"monex/internal/logger"
	"monex/internal/repository"
	"monex/internal/services"
	"monex/internal/storage"
)

// App holds the wired services for one process.
type App struct {
	Config   *config.Config
	Repo     *repository.PartitionRepository
	Finance  services.FinanceServicer
	Sessions services.SessionServicer

	queue *repository.WriteQueue
	db    *database.Manager
}

// New opens the configured storage, builds the services and restores the
// previous session when the session marker names the stored user.
func New(cfg *config.Config) (*App, error) {
	store, db, err := OpenStorage(cfg)
	if err != nil {
		return nil, err
	}

	queue := repository.NewWriteQueue(store)
	repo := repository.NewPartitionRepository(store, queue)
	ledger := services.NewLedger(repo)
	audit := services.NewAuditService(repo)

	a := &App{
		Config:   cfg,
		Repo:     repo,
		Finance:  services.NewFinanceService(ledger, audit),
		Sessions: services.NewSessionService(ledger, services.NewCredentialVerifier(cfg.AuthMode), audit),
		queue:    queue,
		db:       db,
	}

	if _, err := a.Sessions.Restore(); err != nil && !errors.Is(err, apperrors.ErrNotSignedIn) {
		a.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return a, nil
}

// OpenStorage returns the storage backend named by cfg.StorageDriver. SQL
// backends run their migrations first and hand back the database manager so
// the caller can close it.
func OpenStorage(cfg *config.Config) (storage.Storage, *database.Manager, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return storage.NewMemoryStorage(), nil, nil
	case config.StorageFile:
		fs, err := storage.NewFileStorage(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file storage: %w", err)
		}
		return fs, nil, nil
	}

	dbConfig, err := database.NewConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	db, err := database.NewManager(dbConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return storage.NewSQLStorage(db.DB()), db, nil
}

// QueueStats reports the write queue counters.
func (a *App) QueueStats() repository.QueueStats {
	return a.queue.Stats()
}

// Close drains pending writes and releases the database connection.
func (a *App) Close() {
	a.queue.Close()
	if stats := a.queue.Stats(); stats.Failures > 0 {
		logger.Get().Warnw("Some writes failed during this run", "failed", stats.Failures)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logger.Get().Warnf("database close error: %v", err)
		}
	}
}
