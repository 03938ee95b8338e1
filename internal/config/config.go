package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by Load.
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageFile     = "file"
	StorageMemory   = "memory"
)

// Credential verification modes.
const (
	AuthModeEmail    = "email"
	AuthModePassword = "password"
)

// Config holds application configuration
type Config struct {
	Env      string
	LogLevel string

	// Server
	Port string

	// Storage
	DataDir       string
	StorageDriver string
	SQLitePath    string

	// Postgres storage
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Session
	AuthMode         string
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Display currency for reports (ISO 4217)
	Currency string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dataDir := getEnv("DATA_DIR", "./data")

	config := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		Port: getEnv("PORT", "8080"),

		DataDir:       dataDir,
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", filepath.Join(dataDir, "monex.db")),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "monex"),
		DBPassword: getEnv("DB_PASSWORD", "monex"),
		DBName:     getEnv("DB_NAME", "monex"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		AuthMode:  strings.ToLower(getEnv("AUTH_MODE", AuthModeEmail)),
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		Currency: strings.ToUpper(getEnv("CURRENCY", "INR")),
	}

	switch config.StorageDriver {
	case StorageSQLite, StoragePostgres, StorageFile, StorageMemory:
	default:
		log.Printf("Warning: unknown STORAGE_DRIVER '%s', falling back to %s\n", config.StorageDriver, StorageSQLite)
		config.StorageDriver = StorageSQLite
	}

	if config.AuthMode != AuthModeEmail && config.AuthMode != AuthModePassword {
		log.Printf("Warning: unknown AUTH_MODE '%s', falling back to %s\n", config.AuthMode, AuthModeEmail)
		config.AuthMode = AuthModeEmail
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the process-wide configuration. Used by tests.
func Set(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
