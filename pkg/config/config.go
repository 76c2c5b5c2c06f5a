package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for farmcare-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Remote service endpoints
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Mailer      MailerConfig      `yaml:"mailer"`

	// Upload limits
	Upload UploadConfig `yaml:"upload"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Set to false for local development without the hosted auth provider.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	// Format: "issuer1=url1,issuer2=url2"
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:"https://auth.farmcare.io=https://auth.farmcare.io/.well-known/jwks.json"`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host            string        `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"PGPORT" env-default:"5432"`
	User            string        `yaml:"user" env:"PGUSER" env-default:"farmcare"`
	Password        string        `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database        string        `yaml:"database" env:"PGDATABASE" env-default:"farmcare_engine"`
	MaxConnections  int32         `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"PGMAX_CONN_LIFETIME" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"PGMAX_CONN_IDLE_TIME" env-default:"30m"`
	SSLMode         string        `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ClassifierConfig holds the remote image-classification endpoint settings.
type ClassifierConfig struct {
	BaseURL string `yaml:"base_url" env:"CLASSIFIER_BASE_URL" env-default:""`
}

// RecommenderConfig holds the remote treatment-recommendation endpoint settings.
type RecommenderConfig struct {
	BaseURL string `yaml:"base_url" env:"RECOMMENDER_BASE_URL" env-default:""`
}

// MailerConfig holds configuration for the remote email-sending endpoint.
type MailerConfig struct {
	BaseURL string `yaml:"base_url" env:"MAILER_BASE_URL" env-default:""`
}

// UploadConfig holds limits for farmer image uploads.
type UploadConfig struct {
	// MaxImageBytes is the maximum accepted image payload size (default 10 MiB).
	MaxImageBytes int64 `yaml:"max_image_bytes" env:"UPLOAD_MAX_IMAGE_BYTES" env-default:"10485760"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Auth.JWKSEndpoints = parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)

	if err := cfg.validateEndpoints(); err != nil {
		return nil, fmt.Errorf("invalid endpoint configuration: %w", err)
	}

	return cfg, nil
}

// validateEndpoints ensures the three remote service endpoints are configured.
func (c *Config) validateEndpoints() error {
	if c.Classifier.BaseURL == "" {
		return fmt.Errorf("classifier base_url is required")
	}
	if c.Recommender.BaseURL == "" {
		return fmt.Errorf("recommender base_url is required")
	}
	if c.Mailer.BaseURL == "" {
		return fmt.Errorf("mailer base_url is required")
	}
	return nil
}

// parseJWKSEndpoints parses the JWKS endpoints string into a map.
// Format: "issuer1=url1,issuer2=url2"
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}

	pairs := strings.Split(value, ",")
	for _, pair := range pairs {
		parts := strings.Split(pair, "=")
		if len(parts) == 2 {
			endpoints[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return endpoints
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
