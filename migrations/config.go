package main

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration for the migration tool
type Config struct {
	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string

	// MigrationTable is the name of the table to track migrations
	MigrationTable string
}

// LoadConfig loads configuration from environment variables with sensible defaults
func LoadConfig() (*Config, error) {
	config := &Config{
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		MigrationTable: getEnvOrDefault("MIGRATION_TABLE", "schema_migrations"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	if c.MigrationTable == "" {
		return fmt.Errorf("MIGRATION_TABLE cannot be empty")
	}

	return nil
}

// String returns a string representation of the configuration (safe for logging)
func (c *Config) String() string {
	return fmt.Sprintf("Config{DatabaseURL: %s, MigrationTable: %s}",
		maskDatabaseURL(c.DatabaseURL), c.MigrationTable)
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// maskDatabaseURL masks the password in database URLs for logging. The
// password may itself contain "@" or ":", so the split points are the FIRST
// ":" of the userinfo and the LAST "@" of the authority section.
func maskDatabaseURL(url string) string {
	if url == "" {
		return ""
	}

	schemeEnd := strings.Index(url, "//")
	if schemeEnd == -1 {
		return url
	}

	authority := url[schemeEnd+2:]
	if end := strings.IndexAny(authority, "/?#"); end != -1 {
		authority = authority[:end]
	}

	at := strings.LastIndexByte(authority, '@')
	if at == -1 {
		return url
	}

	userinfo := authority[:at]

	colon := strings.IndexByte(userinfo, ':')
	if colon == -1 || colon == len(userinfo)-1 {
		// No password, or an empty one. Nothing to mask.
		return url
	}

	return url[:schemeEnd+2] + userinfo[:colon+1] + "***" + url[schemeEnd+2+at:]
}
