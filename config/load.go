package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// configFileName is the basename shared by every config source: /etc/pact,
// ~/.pact, and project directories all hold a pact.toml.
const configFileName = "pact.toml"

// cache holds the process-wide configuration. The config watcher reloads it
// from a background goroutine, so construction and reset are mutex-guarded.
var cache struct {
	mu  sync.Mutex
	cfg *Config
	v   *viper.Viper
}

// Load returns the process-wide configuration, reading every source on first
// use. Precedence, lowest to highest: built-in defaults, /etc/pact/pact.toml,
// the user file ~/.pact/pact.toml, the nearest project pact.toml walking
// upward from the working directory, then PACT_* environment variables.
func Load() (*Config, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.cfg != nil {
		return cache.cfg, nil
	}

	cfg, err := LoadWithViper(sharedViperLocked())
	if err != nil {
		return nil, err
	}
	cache.cfg = cfg
	return cfg, nil
}

// GetViper exposes the shared merged viper instance for dotted-key access.
func GetViper() *viper.Viper {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return sharedViperLocked()
}

// LoadWithViper unmarshals a Config from the given viper instance. Tests use
// this with isolated instances so they never touch the process-wide cache.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadFromFile reads one specific TOML file over the defaults, bypassing the
// merge chain and environment binding.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	return LoadWithViper(v)
}

// Reset drops the cached configuration so the next Load re-reads every
// source. The watcher calls this when a config file changes on disk.
func Reset() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.cfg = nil
	cache.v = nil
}

// sharedViperLocked builds the merged instance once. Callers hold cache.mu.
func sharedViperLocked() *viper.Viper {
	if cache.v != nil {
		return cache.v
	}

	v := viper.New()
	v.SetEnvPrefix("PACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	for _, source := range sourcePaths() {
		mergeFile(v, source)
	}

	cache.v = v
	return v
}

// sourcePaths lists the config files to merge, lowest precedence first.
func sourcePaths() []string {
	paths := []string{filepath.Join("/etc/pact", configFileName)}

	if userFile := GetUserConfigPath(); userFile != "" {
		os.MkdirAll(filepath.Dir(userFile), DefaultDirPermissions)
		paths = append(paths, userFile)
	}

	if project := findProjectConfig(); project != "" {
		paths = append(paths, project)
	}
	return paths
}

// mergeFile overlays one TOML file onto v at the config-file layer, so
// environment variables still win. Missing or unreadable files are skipped.
func mergeFile(v *viper.Viper, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}

	overlay := viper.New()
	overlay.SetConfigFile(path)
	overlay.SetConfigType("toml")
	if err := overlay.ReadInConfig(); err != nil {
		return
	}
	v.MergeConfigMap(overlay.AllSettings())
}

// findProjectConfig walks upward from the working directory and returns the
// first pact.toml found, or "" when none exists up to the filesystem root.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ActiveConfigFile returns the highest-precedence config file present on
// disk: the project pact.toml when one is found, else the user file when it
// exists, else "". This is the file worth watching for live reloads.
func ActiveConfigFile() string {
	if project := findProjectConfig(); project != "" {
		return project
	}
	if userFile := GetUserConfigPath(); userFile != "" {
		if _, err := os.Stat(userFile); err == nil {
			return userFile
		}
	}
	return ""
}

// Get returns one configuration value by dotted key.
func Get(key string) interface{} {
	return GetViper().Get(key)
}

// GetDatabasePath resolves the database location: the DB_PATH environment
// override when set, otherwise the configured database.path.
func GetDatabasePath() (string, error) {
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		return dbPath, nil
	}

	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.Path, nil
}
