package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"`     // current application environment (local, dev, prod etc)
	TelegramAPIToken string  `mapstructure:"-"`       // Telegram API token loaded from environment
	Storage          Storage `mapstructure:"storage"` // question bank storage section
}

// Storage selects and configures the question bank store.
type Storage struct {
	Driver          string        `mapstructure:"driver"`            // file, sqlite or postgres
	FilePath        string        `mapstructure:"file_path"`         // JSON document path for the file driver
	SQLitePath      string        `mapstructure:"sqlite_path"`       // database file path for the sqlite driver
	DatabaseURL     string        `mapstructure:"-"`                 // Postgres connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the Postgres connection string if it is configured.
func (s Storage) DSN() (string, error) {
	if s.DatabaseURL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return s.DatabaseURL, nil
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.file_path", "data/questions.json")
	v.SetDefault("storage.sqlite_path", "data/questions.db")
	v.SetDefault("storage.max_connections", 5)
	v.SetDefault("storage.max_conn_lifetime", "30s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	switch cfg.Storage.Driver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		cfg.Storage.DatabaseURL = v.GetString("database_url")
		if cfg.Storage.DatabaseURL == "" {
			return nil, ErrMissingEnvironmentVariables
		}
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}
