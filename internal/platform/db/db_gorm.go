// Package db opens the gorm connection for the configured driver.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultPath    = "./todo.db"
	defaultSSLMode = "disable"
	connectTimeout = 60 * time.Second
)

// retryInterval is the pause between connection attempts.
var retryInterval = 3 * time.Second

// Config holds the database settings.
type Config struct {
	Driver   string
	Path     string // sqlite only
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Migrate  bool
}

// LoadConfigFromEnv reads the database settings from the environment.
// sqlite is the default driver and always migrates; postgres migrates only with RUN_MIGRATIONS=true.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:   os.Getenv("DB_DRIVER"),
		Path:     os.Getenv("DB_PATH"),
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
		SSLMode:  os.Getenv("DB_SSLMODE"),
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverSQLite
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = defaultSSLMode
	}
	cfg.Migrate = cfg.Driver == DriverSQLite || os.Getenv("RUN_MIGRATIONS") == "true"
	return cfg
}

// BuildDSN builds the connection string for cfg.Driver.
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
	}
	return cfg.Path
}

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// NewOpener returns the Opener for driver.
func NewOpener(driver string) (Opener, error) {
	conf := &gorm.Config{TranslateError: true}
	switch driver {
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(sqlite.Open(dsn), conf) }, nil
	case DriverPostgres:
		return func(dsn string) (*gorm.DB, error) { return gorm.Open(postgres.Open(dsn), conf) }, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// ConnectWithRetry calls open until it succeeds or timeout has passed.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err)
		time.Sleep(retryInterval)
	}
}

// Open connects with cfg and, when cfg.Migrate is set, migrates models.
func Open(cfg Config, models ...any) (*gorm.DB, error) {
	open, err := NewOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), connectTimeout, open)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		// sqlite allows one writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.Migrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	slog.Info("database connected", "driver", cfg.Driver, "migrated", cfg.Migrate)
	return db, nil
}
