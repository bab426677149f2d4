package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jasontalley/pact/errors"
	"github.com/jasontalley/pact/logger"
)

// maxConfigBackups is how many rotation slots saveUserConfig keeps beside the
// user config file.
const maxConfigBackups = 3

// backupSlot returns the path of the nth rotation slot for a config file.
func backupSlot(configPath string, n int) string {
	return fmt.Sprintf("%s.back%d", configPath, n)
}

// rotateBackups shifts each existing slot down one (.back1 becomes .back2 and
// so on) and copies the live file into .back1. The oldest slot falls off the
// end. A missing config file is a no-op so first-time saves have nothing to
// rotate.
func rotateBackups(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	oldest := backupSlot(configPath, maxConfigBackups)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		// Not fatal: the save itself can still proceed.
		logger.Warnw("Could not remove oldest config backup",
			"path", oldest,
			"error", err)
	}
	for n := maxConfigBackups - 1; n >= 1; n-- {
		slot := backupSlot(configPath, n)
		if _, err := os.Stat(slot); err != nil {
			continue
		}
		if err := os.Rename(slot, backupSlot(configPath, n+1)); err != nil {
			return errors.Wrapf(err, "rotate %s", filepath.Base(slot))
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "read config for backup")
	}
	return errors.Wrap(os.WriteFile(backupSlot(configPath, 1), content, DefaultFilePermissions), "write config backup")
}

// GetUserConfigPath returns the path of the user config file,
// ~/.pact/pact.toml, or "" when the home directory cannot be determined.
func GetUserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".pact", configFileName)
}

// loadUserConfig reads the user config file into a raw TOML tree, creating
// ~/.pact first. A missing file yields an empty tree rather than an error so
// the first `pact config set` can bootstrap it. Any other read failure is
// surfaced: treating an unreadable file as empty would clobber it on save.
func loadUserConfig() (map[string]interface{}, string, error) {
	configPath := GetUserConfigPath()
	if configPath == "" {
		return nil, "", errors.New("could not determine home directory")
	}
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return nil, "", errors.Wrap(err, "create user config directory")
	}

	tree := make(map[string]interface{})
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return nil, "", errors.Wrapf(err, "parse %s", configPath)
		}
	case !os.IsNotExist(err):
		return nil, "", errors.Wrapf(err, "read %s", configPath)
	}
	return tree, configPath, nil
}

// saveUserConfig rewrites the user config file, rotating backups first and
// flagging the write so a running watcher does not reload our own change.
func saveUserConfig(tree map[string]interface{}, configPath string) error {
	if err := rotateBackups(configPath); err != nil {
		return errors.Wrap(err, "backup user config")
	}

	data, err := toml.Marshal(tree)
	if err != nil {
		return errors.Wrap(err, "marshal user config")
	}

	if w := GetGlobalWatcher(); w != nil {
		w.MarkOwnWrite()
	}

	return errors.Wrapf(os.WriteFile(configPath, data, DefaultFilePermissions), "write %s", configPath)
}

// SetValue persists a single dotted-key setting (e.g. "gate.quality_threshold")
// to the user config file, creating intermediate sections as needed.
func SetValue(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	for _, part := range parts {
		if part == "" {
			return errors.Newf("invalid config key %q", key)
		}
	}

	tree, configPath, err := loadUserConfig()
	if err != nil {
		return errors.Wrap(err, "load user config")
	}

	// Walk the dotted path, creating sections along the way
	section := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := section[part].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			section[part] = next
		}
		section = next
	}
	section[parts[len(parts)-1]] = value

	return saveUserConfig(tree, configPath)
}

// UpdateQualityThreshold updates the gate.quality_threshold setting in user config
func UpdateQualityThreshold(threshold int) error {
	if threshold < 0 || threshold > 100 {
		return errors.Newf("quality threshold must be between 0 and 100, got %d", threshold)
	}
	return SetValue("gate.quality_threshold", threshold)
}

// UpdateJudgeEnabled updates the judge.enabled setting in user config
func UpdateJudgeEnabled(enabled bool) error {
	return SetValue("judge.enabled", enabled)
}
