package database

import (
	"fmt"
	"net/url"

	"monex/internal/config"
)

// Config holds database configuration
type Config struct {
	Driver     string
	SQLitePath string

	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig derives the database configuration from the application config.
func NewConfig(cfg *config.Config) (*Config, error) {
	switch cfg.StorageDriver {
	case config.StorageSQLite, config.StoragePostgres:
	default:
		return nil, fmt.Errorf("storage driver %q does not use a database", cfg.StorageDriver)
	}

	return &Config{
		Driver:     cfg.StorageDriver,
		SQLitePath: cfg.SQLitePath,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		DBName:     cfg.DBName,
		SSLMode:    cfg.DBSSLMode,
	}, nil
}

// DSN returns the driver connection string used by GORM.
func (c *Config) DSN() string {
	if c.Driver == config.StorageSQLite {
		return c.SQLitePath + "?_busy_timeout=5000&_foreign_keys=on"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// MigrateURL returns the golang-migrate database URL.
func (c *Config) MigrateURL() string {
	if c.Driver == config.StorageSQLite {
		return "sqlite3://" + c.SQLitePath
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// migrationsDir is the embedded directory holding this driver's migrations.
func (c *Config) migrationsDir() string {
	if c.Driver == config.StorageSQLite {
		return "migrations/sqlite3"
	}
	return "migrations/postgres"
}
