// Package config loads the console configuration from
// ~/.opsdeck/config.yaml with environment overrides.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/errors"
)

const configFileName = "config.yaml"

// Config is the console configuration.
type Config struct {
	// APIURL is the base URL of the admin API.
	APIURL string `yaml:"api_url"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFormat is the log output format (text, json).
	LogFormat string `yaml:"log_format"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:    api.DefaultBaseURL,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Dir returns the opsdeck dot directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".opsdeck")
}

// Load reads the config file from dir, applies defaults for missing
// fields, and then applies environment overrides. A missing file is not
// an error; a malformed one is.
func Load(dir string) (Config, error) {
	cfg := Default()

	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeConfigRead, "failed to read config file", err)
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.NewConfigInvalidError(path, err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config file to dir.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeConfigRead, "failed to create config directory", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigRead, "failed to encode config", err)
	}

	return os.WriteFile(filepath.Join(dir, configFileName), data, 0o644)
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.APIURL == "" {
		cfg.APIURL = def.APIURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = def.LogFormat
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPSDECK_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("OPSDECK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("OPSDECK_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
