package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Redis configuration. Rate limiting is disabled when neither RedisURL
	// nor RedisHost is set.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Object storage for recipe export. Export is disabled without a bucket.
	S3Bucket   string
	S3Endpoint string
	AWSRegion  string

	LogLevel  string
	LogFormat string

	AllowedOrigins []string

	GenerateRateLimit  int
	GenerateRateWindow time.Duration

	// explicit records which keys came from the environment or a secret
	// rather than a default.
	explicit map[string]bool
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig builds a Config from, in order of precedence, environment
// variables, Docker secrets and built-in defaults. A .env file in the working
// directory is loaded first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	env := GetEnvironment()
	cfg := &Config{
		Environment: env,
		ServerPort:  lookup("SERVER_PORT", "2022"),
		ServerHost:  lookup("SERVER_HOST", "0.0.0.0"),

		DBDriver:   strings.ToLower(lookup("DB_DRIVER", DriverPostgres)),
		DBHost:     lookup("DB_HOST", "localhost"),
		DBPort:     lookup("DB_PORT", "5432"),
		DBUser:     lookup("DB_USER", "postgres"),
		DBPassword: lookup("DB_PASSWORD", ""),
		DBName:     lookup("DB_NAME", "vegan_dog_recipes"),
		DBSSLMode:  lookup("DB_SSL_MODE", "disable"),
		DBPath:     lookup("DB_PATH", "vegan_dog_recipes.db"),

		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),
		RedisURL:      lookup("REDIS_URL", ""),

		S3Bucket:   lookup("S3_BUCKET_NAME", ""),
		S3Endpoint: lookup("S3_ENDPOINT", ""),
		AWSRegion:  lookup("AWS_REGION", "us-east-1"),

		LogLevel:  lookup("LOG_LEVEL", "info"),
		LogFormat: lookup("LOG_FORMAT", env.DefaultLogFormat()),

		AllowedOrigins: splitList(lookup("ALLOWED_ORIGINS", "*")),

		explicit: map[string]bool{},
	}
	for _, name := range []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"} {
		cfg.explicit[name] = isSet(name)
	}

	var parseErrs []string
	var err error
	if cfg.RedisDB, err = strconv.Atoi(lookup("REDIS_DB", "0")); err != nil {
		parseErrs = append(parseErrs, fmt.Sprintf("REDIS_DB must be an integer: %v", err))
	}
	if cfg.GenerateRateLimit, err = strconv.Atoi(lookup("GENERATE_RATE_LIMIT", "30")); err != nil {
		parseErrs = append(parseErrs, fmt.Sprintf("GENERATE_RATE_LIMIT must be an integer: %v", err))
	}
	if cfg.GenerateRateWindow, err = time.ParseDuration(lookup("GENERATE_RATE_WINDOW", "1m")); err != nil {
		parseErrs = append(parseErrs, fmt.Sprintf("GENERATE_RATE_WINDOW must be a duration: %v", err))
	}
	if len(parseErrs) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n%s", strings.Join(parseErrs, "\n"))
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.ServerHost, c.ServerPort)
}

// PostgresDSN returns a lib/pq keyword/value connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// ExportEnabled reports whether recipe export to S3 is configured.
func (c *Config) ExportEnabled() bool {
	return c.S3Bucket != ""
}

// lookup returns the environment variable, then the matching Docker secret
// (lowercased name), then the fallback.
func lookup(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v := readSecret(strings.ToLower(name)); v != "" {
		return v
	}
	return fallback
}

// isSet reports whether name is provided by the environment or a secret.
func isSet(name string) bool {
	if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
		return true
	}
	return readSecret(strings.ToLower(name)) != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
