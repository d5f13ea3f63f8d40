// Package config loads server settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// S3 configures the S3-compatible bucket holding slips and QR images.
type S3 struct {
	Endpoint  string        `env:"ENDPOINT"`
	Region    string        `env:"REGION"     envDefault:"us-east-1"`
	Bucket    string        `env:"BUCKET"`
	AccessKey string        `env:"ACCESS_KEY"`
	SecretKey string        `env:"SECRET_KEY"`
	UploadTTL time.Duration `env:"UPLOAD_TTL" envDefault:"15m"`
}

// Config is the full server configuration.
type Config struct {
	Port        int    `env:"PORT"         envDefault:"8080"`
	DBDriver    string `env:"DB_DRIVER"    envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH"      envDefault:"./data/tripsplit.db"`
	DatabaseURL string `env:"DATABASE_URL"`
	StaticPath  string `env:"STATIC_PATH"  envDefault:"../frontend/static"`
	LogLevel    string `env:"LOG_LEVEL"    envDefault:"info"`

	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL"  envDefault:"24h"`

	S3 S3 `envPrefix:"S3_"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	OTelEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	switch c.DBDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}
	if c.S3.Bucket != "" && (c.S3.AccessKey == "" || c.S3.SecretKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_BUCKET is set"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// DSN returns the data source for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// S3Enabled reports whether slip uploads are configured.
func (c Config) S3Enabled() bool {
	return c.S3.Bucket != ""
}
