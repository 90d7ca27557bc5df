// Package aliasing provides level-of-theory name alias resolution.
//
// Different electronic structure tools spell the same method or basis set
// differently ("wb97xd", "wB97X-D"), splitting one level of theory into
// several stored records. This package loads alias configuration mapping
// tool-specific spellings to canonical ones and resolves names through it
// during batch resolution.
package aliasing

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kindb-io/kindb/internal/config"
)

// Config holds name alias configuration loaded from .kindb.yaml.
type Config struct {
	// MethodAliases maps tool-specific method spellings to canonical ones.
	// Key is the alias, value is the canonical spelling.
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	MethodAliases map[string]string `yaml:"method_aliases"`

	// BasisAliases maps tool-specific basis set spellings to canonical ones.
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	BasisAliases map[string]string `yaml:"basis_aliases"`
}

// DefaultConfigPath is the default location for the kindb configuration file.
// Uses hidden file format following common tool conventions (.eslintrc, .prettierrc, etc.).
const DefaultConfigPath = ".kindb.yaml"

// ConfigPathEnvVar is the environment variable name for custom config path.
const ConfigPathEnvVar = "KINDB_CONFIG_PATH"

// LoadConfig loads alias configuration from a YAML file at the given path.
//
// Behavior:
//   - Returns empty config (not error) if file doesn't exist - aliases are optional
//   - Returns empty config + logs warning if YAML is invalid (graceful degradation)
//   - Returns populated config on success
//
// This graceful degradation ensures the server can start even without aliases
// configured; without them, level names are compared as folded.
func LoadConfig(path string) (*Config, error) {
	cfg := emptyConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Missing file is OK - aliases are optional
			slog.Debug("Config file not found, continuing without aliases",
				slog.String("path", path))

			return cfg, nil
		}

		// Other read errors (permissions, etc.) - log warning and continue
		slog.Warn("Failed to read config file, continuing without aliases",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return cfg, nil
	}

	// Empty file is valid - just no aliases
	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		// Invalid YAML - log warning and continue with empty config
		slog.Warn("Failed to parse config file, continuing without aliases",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return emptyConfig(), nil
	}

	// Ensure maps are initialized even if YAML had nil/empty sections
	if cfg.MethodAliases == nil {
		cfg.MethodAliases = make(map[string]string)
	}

	if cfg.BasisAliases == nil {
		cfg.BasisAliases = make(map[string]string)
	}

	return cfg, nil
}

// LoadConfigFromEnv loads config from the path specified in KINDB_CONFIG_PATH
// environment variable. Falls back to ".kindb.yaml" in current directory if not set.
func LoadConfigFromEnv() (*Config, error) {
	path := config.GetEnvStr(ConfigPathEnvVar, DefaultConfigPath)

	return LoadConfig(path)
}

func emptyConfig() *Config {
	return &Config{
		MethodAliases: make(map[string]string),
		BasisAliases:  make(map[string]string),
	}
}
