// Package config provides application settings for doodledash.
//
// Settings are separate from dashboard documents: dashboards describe what
// to show, settings describe how the process runs (logging, secret sources,
// metrics output). Values come from, in increasing priority:
//  1. built-in defaults
//  2. the settings file (see FindConfigPath)
//  3. DOODLEDASH_* environment variables
//  4. command line flags bound by the CLI
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every settings key when read from the environment
const EnvPrefix = "DOODLEDASH"

// Settings is the root settings structure
type Settings struct {
	// Interval is the pause after each notification when a dashboard does
	// not set one
	Interval  time.Duration     `mapstructure:"interval"`
	Log       LogSettings       `mapstructure:"log"`
	Secrets   SecretsSettings   `mapstructure:"secrets"`
	Metrics   MetricsSettings   `mapstructure:"metrics"`
	Downloads DownloadsSettings `mapstructure:"downloads"`
}

// LogSettings configures the zap logger
type LogSettings struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // console, json
}

// SecretsSettings configures where secrets are resolved from
type SecretsSettings struct {
	Dirs      []string `mapstructure:"dirs"`
	EnvPrefix string   `mapstructure:"env_prefix"`
	// DB is the operator secrets database; empty disables it
	DB string `mapstructure:"db"`
	// KeyEnv names the environment variable holding the database passphrase
	KeyEnv string `mapstructure:"key_env"`
}

// MetricsSettings configures metrics output
type MetricsSettings struct {
	// Textfile is written after every cycle in node_exporter textfile
	// format; empty disables it
	Textfile string `mapstructure:"textfile"`
}

// DownloadsSettings configures the image downloader
type DownloadsSettings struct {
	Dir string `mapstructure:"dir"`
}

// New returns a viper instance with defaults and environment binding
// applied. The CLI binds its flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("interval", "15s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("secrets.dirs", []string{"/secrets", "/run/secrets"})
	v.SetDefault("secrets.env_prefix", "DOODLEDASH_SECRET_")
	v.SetDefault("secrets.db", "")
	v.SetDefault("secrets.key_env", "DOODLEDASH_SECRETS_KEY")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("downloads.dir", filepath.Join(DefaultDataDir(), "images"))

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	return v
}

// Load reads the settings file into v and decodes the result. An explicit
// path must exist; otherwise FindConfigPath is used and a missing file
// means defaults. The path actually read is returned, or "" if none.
func Load(v *viper.Viper, path string) (Settings, string, error) {
	explicit := path != ""
	if !explicit {
		path = FindConfigPath()
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !errors.As(err, &notFound) {
				return Settings{}, path, fmt.Errorf("read settings: %w", err)
			}
			path = ""
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, path, fmt.Errorf("unmarshal settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, path, err
	}
	return s, path, nil
}

// Validate checks values viper cannot type-check
func (s Settings) Validate() error {
	if s.Interval < 0 {
		return fmt.Errorf("invalid interval %s: must not be negative", s.Interval)
	}
	switch s.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: expected console or json", s.Log.Format)
	}
	switch s.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", s.Log.Level)
	}
	if s.Secrets.DB != "" && s.Secrets.KeyEnv == "" {
		return fmt.Errorf("secrets.key_env is required when secrets.db is set")
	}
	return nil
}
