package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "DOODLEDASH_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "doodledash.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "doodledash"
)

// FindConfigPath returns the first settings file that exists, or "" when
// there is none. $DOODLEDASH_CONFIG is tried first, then doodledash.yaml in
// the working directory, then config.yaml under $XDG_CONFIG_HOME,
// ~/.config and /etc.
func FindConfigPath() string {
	for _, path := range configCandidates() {
		if path != "" && fileExists(path) {
			return path
		}
	}
	return ""
}

func configCandidates() []string {
	local, err := filepath.Abs(ConfigFileName)
	if err != nil {
		local = ConfigFileName
	}

	candidates := []string{os.Getenv(EnvConfigPath), local}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(candidates, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// DefaultDataDir returns where downloaded images and the secrets database
// live when nothing else is configured
func DefaultDataDir() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, ConfigDirName)
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".local", "share", ConfigDirName)
	}
	return filepath.Join(os.TempDir(), ConfigDirName)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
