package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/jasontalley/pact/atom/gate"
	"github.com/jasontalley/pact/coupling"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.path", "pact.db")

	// Quality gate defaults
	v.SetDefault("gate.quality_threshold", gate.DefaultThreshold)

	// Coupling analyzer defaults
	v.SetDefault("coupling.threshold", coupling.DefaultThreshold)
	v.SetDefault("coupling.includes", coupling.DefaultIncludes)
	v.SetDefault("coupling.excludes", coupling.DefaultExcludes)
	v.SetDefault("coupling.max_files", coupling.DefaultMaxFiles)
	v.SetDefault("coupling.max_file_bytes", coupling.DefaultMaxFileBytes)

	// Judge defaults (disabled until pointed at a server)
	v.SetDefault("judge.enabled", false)
	v.SetDefault("judge.base_url", "http://localhost:11434")
	v.SetDefault("judge.model", "llama3.2:3b")
	v.SetDefault("judge.timeout_seconds", 15)
	v.SetDefault("judge.max_calls_per_minute", 30)

	// Log defaults
	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	// Judge credentials and endpoint
	v.BindEnv("judge.api_key", "PACT_JUDGE_API_KEY")
	v.BindEnv("judge.enabled", "PACT_JUDGE_ENABLED")
	v.BindEnv("judge.base_url", "PACT_JUDGE_BASE_URL")
	v.BindEnv("judge.model", "PACT_JUDGE_MODEL")

	// Database path
	v.BindEnv("database.path", "PACT_DATABASE_PATH")
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "pact.db" // Fallback default
	}
	return c.Database.Path
}

// GetQualityThreshold returns the commit gate threshold with defaults applied
func (c *Config) GetQualityThreshold() int {
	if c.Gate.QualityThreshold <= 0 {
		return gate.DefaultThreshold
	}
	return c.Gate.QualityThreshold
}

// CouplingOptions converts the coupling section into analyzer options for the
// given root directory. Zero values fall through to the analyzer's own defaults.
func (c *Config) CouplingOptions(root string) coupling.Options {
	return coupling.Options{
		Root:         root,
		Includes:     c.Coupling.Includes,
		Excludes:     c.Coupling.Excludes,
		Threshold:    c.Coupling.Threshold,
		MaxFiles:     c.Coupling.MaxFiles,
		MaxFileBytes: c.Coupling.MaxFileBytes,
	}
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Gate: {QualityThreshold: %d}, Judge: {Enabled: %t}}",
		c.Database.Path, c.Gate.QualityThreshold, c.Judge.Enabled)
}
