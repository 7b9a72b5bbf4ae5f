/*
Package configs is responsible for loading and parsing the application's configuration settings.

Values come from environment variables, optionally seeded from a .env file in the working
directory. They cover the remote complaint service, the durable session storage backend and
the local portal server.
*/
package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Storage backends accepted by PORTAL_STORAGE.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageS3     = "s3"
)

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Settings
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Remote Service Settings
	APIURL         string        `envconfig:"PORTAL_API_URL" default:"http://localhost:3000/api"`
	RequestTimeout time.Duration `envconfig:"PORTAL_REQUEST_TIMEOUT" default:"15s"`
	// APIRate caps outgoing requests per second; zero disables pacing.
	APIRate  float64 `envconfig:"PORTAL_API_RATE" default:"0"`
	APIBurst int     `envconfig:"PORTAL_API_BURST" default:"1"`

	// Session Storage Settings
	Storage     string `envconfig:"PORTAL_STORAGE" default:"file"`
	SessionDir  string `envconfig:"PORTAL_SESSION_DIR"`
	RedisAddr   string `envconfig:"PORTAL_REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix string `envconfig:"PORTAL_REDIS_PREFIX" default:"portal:session:"`

	S3BucketName      string `envconfig:"PORTAL_S3_BUCKET"`
	S3Endpoint        string `envconfig:"PORTAL_S3_ENDPOINT"`
	S3AccessKeyID     string `envconfig:"PORTAL_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `envconfig:"PORTAL_S3_SECRET_ACCESS_KEY"`
	S3Prefix          string `envconfig:"PORTAL_S3_PREFIX" default:"portal/session/"`

	// Local Portal Settings
	Port           int      `envconfig:"PORT" default:"8080"`
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`
	LoginRate      float64  `envconfig:"LOGIN_RATE" default:"0.2"`
	LoginBurst     int      `envconfig:"LOGIN_BURST" default:"5"`
}

// IsDevelopment reports whether the application runs in development mode.
func (c *AppConfig) IsDevelopment() bool {
	return c != nil && c.Environment == "development"
}

// LoadConfig reads and validates the configuration. A missing .env file is not an error.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &AppConfig{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) normalize() error {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("PORTAL_API_URL must not be empty")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("PORTAL_API_URL %q must start with http:// or https://", c.APIURL)
	}
	if c.Environment != "development" && strings.HasPrefix(c.APIURL, "http://") {
		return fmt.Errorf("PORTAL_API_URL must use https in %s environment", c.Environment)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("PORTAL_REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.APIRate < 0 || c.LoginRate <= 0 {
		return errors.New("PORTAL_API_RATE must be >= 0 and LOGIN_RATE must be > 0")
	}
	if c.APIBurst < 1 || c.LoginBurst < 1 {
		return errors.New("PORTAL_API_BURST and LOGIN_BURST must be at least 1")
	}

	if c.Port < 1024 || c.Port > 65535 {
		return fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", c.Port, 1024, 65535)
	}

	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.AllowedOrigins = origins

	c.Storage = strings.ToLower(strings.TrimSpace(c.Storage))
	switch c.Storage {
	case StorageFile:
		if c.SessionDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("PORTAL_SESSION_DIR is not set and the home directory is unknown: %w", err)
			}
			c.SessionDir = filepath.Join(home, ".complaintportal")
		}
	case StorageMemory:
	case StorageRedis:
		if c.RedisAddr == "" {
			return errors.New("PORTAL_REDIS_ADDR is required for redis session storage")
		}
	case StorageS3:
		required := []struct{ key, value string }{
			{"PORTAL_S3_BUCKET", c.S3BucketName},
			{"PORTAL_S3_ENDPOINT", c.S3Endpoint},
			{"PORTAL_S3_ACCESS_KEY_ID", c.S3AccessKeyID},
			{"PORTAL_S3_SECRET_ACCESS_KEY", c.S3SecretAccessKey},
		}
		for _, r := range required {
			if r.value == "" {
				return fmt.Errorf("%s environment variable is required for s3 session storage", r.key)
			}
		}
	default:
		return fmt.Errorf("unknown PORTAL_STORAGE %q (want file, memory, redis or s3)", c.Storage)
	}

	return nil
}
