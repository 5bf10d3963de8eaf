// Package config loads service configuration from flags, environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const defaultDSN = "host=127.0.0.1 user=postgres password=postgres dbname=products port=5432 sslmode=disable"

// Config holds all runtime settings.
type Config struct {
	AppPort     string
	LogLevel    string
	FrontendURL string
	Database    DatabaseConfig
	RabbitMQ    RabbitMQConfig
	Auth        AuthConfig

	// One-shot commands.
	ClearDatabase bool
	IssueTokenFor string
}

// DatabaseConfig selects the product store.
type DatabaseConfig struct {
	Driver string
	URL    string
}

// RabbitMQConfig configures product event publishing.
type RabbitMQConfig struct {
	URL      string
	Exchange string
	Queue    string
	// Audit makes this process log the events it publishes, read from its
	// own queue bound to Exchange. Queue is left to downstream consumers.
	Audit bool
}

// AuditQueue names the queue the audit consumer reads from.
func (c RabbitMQConfig) AuditQueue() string {
	return c.Queue + ".audit"
}

// Enabled reports whether product events should be published.
func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

// AuthConfig configures the bearer token guard on mutating routes.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Enabled reports whether mutating routes require a bearer token.
func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

// Load parses args (without the program name) and merges them with the
// environment. Environment variables win over values from the .env file.
func Load(args []string) (Config, error) {
	flags := pflag.NewFlagSet("productapi", pflag.ContinueOnError)
	flags.Bool("clear", false, "drop and recreate the products table, then exit")
	flags.String("issue-token", "", "print a bearer token for the given subject, then exit")
	flags.String("env-file", ".env", "optional env file to read settings from")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("FRONTEND_URL", "*")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DATABASE_URL", defaultDSN)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PRODUCT_EVENTS_EXCHANGE", "product_events")
	v.SetDefault("PRODUCT_EVENTS_QUEUE", "product_events")
	v.SetDefault("PRODUCT_EVENTS_AUDIT", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.AutomaticEnv()

	if err := v.BindPFlag("clear", flags.Lookup("clear")); err != nil {
		return Config{}, err
	}
	if err := v.BindPFlag("issue_token", flags.Lookup("issue-token")); err != nil {
		return Config{}, err
	}

	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
			return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	cfg := Config{
		AppPort:     v.GetString("APP_PORT"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
		FrontendURL: v.GetString("FRONTEND_URL"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			URL:    v.GetString("DATABASE_URL"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("PRODUCT_EVENTS_EXCHANGE"),
			Queue:    v.GetString("PRODUCT_EVENTS_QUEUE"),
			Audit:    v.GetBool("PRODUCT_EVENTS_AUDIT"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
			TokenTTL:  v.GetDuration("JWT_TTL"),
		},
		ClearDatabase: v.GetBool("clear"),
		IssueTokenFor: v.GetString("issue_token"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.Database.URL) == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
		if c.ClearDatabase {
			return errors.New("--clear needs a sql database driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (must be postgres, sqlite or memory)", c.Database.Driver)
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.Queue == "" {
		return errors.New("PRODUCT_EVENTS_QUEUE is required when RABBITMQ_URL is set")
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.Exchange == "" {
		return errors.New("PRODUCT_EVENTS_EXCHANGE is required when RABBITMQ_URL is set")
	}
	if c.IssueTokenFor != "" && !c.Auth.Enabled() {
		return errors.New("--issue-token needs JWT_SECRET")
	}
	if c.Auth.Enabled() && c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
