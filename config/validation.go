package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines values that must be set explicitly for an
// environment rather than taken from defaults.
type ConfigRequirements struct {
	RequiredPostgres []string
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {},
		Test:        {},
		CI: {
			RequiredPostgres: []string{"DB_PASSWORD"},
		},
		Production: {
			RequiredPostgres: []string{"DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME"},
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []ValidationError

	switch cfg.DBDriver {
	case DriverPostgres:
		for _, name := range requirements[cfg.Environment].RequiredPostgres {
			if !cfg.provided(name) {
				errs = append(errs, ValidationError{Field: name, Message: "is required when DB_DRIVER=postgres"})
			}
		}
	case DriverSQLite:
		if cfg.DBPath == "" {
			errs = append(errs, ValidationError{Field: "DB_PATH", Message: "is required when DB_DRIVER=sqlite"})
		}
	default:
		errs = append(errs, ValidationError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	if cfg.GenerateRateLimit <= 0 {
		errs = append(errs, ValidationError{Field: "GENERATE_RATE_LIMIT", Message: "must be positive"})
	}
	if cfg.GenerateRateWindow <= 0 {
		errs = append(errs, ValidationError{Field: "GENERATE_RATE_WINDOW", Message: "must be positive"})
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{Field: "LOG_FORMAT", Message: "must be json or console"})
	}

	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}

// provided reports whether a required value was set explicitly. Configs built
// outside LoadConfig only need a non-empty value.
func (c *Config) provided(name string) bool {
	if c.explicit != nil {
		return c.explicit[name]
	}
	return c.postgresValue(name) != ""
}

func (c *Config) postgresValue(name string) string {
	switch name {
	case "DB_HOST":
		return c.DBHost
	case "DB_USER":
		return c.DBUser
	case "DB_PASSWORD":
		return c.DBPassword
	case "DB_NAME":
		return c.DBName
	}
	return ""
}
