package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps a raw ENV value onto a known environment. Unknown and
// empty values fall back to development.
func ParseEnvironment(raw string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(raw))) {
	case Production, "prod":
		return Production
	case Test:
		return Test
	case CI:
		return CI
	default:
		return Development
	}
}

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	// CI environment is automatically detected
	if os.Getenv("CI") == "true" {
		return CI
	}
	return ParseEnvironment(os.Getenv("ENV"))
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}

// DefaultLogFormat is json in production and console everywhere else.
func (e Environment) DefaultLogFormat() string {
	if e == Production {
		return "json"
	}
	return "console"
}
