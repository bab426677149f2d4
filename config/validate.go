package config

import "github.com/jasontalley/pact/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Database path is optional - empty defaults to "pact.db" per defaults.go
	// No validation needed here

	// Gate threshold: 0 = use default, negative or >100 is invalid
	if c.Gate.QualityThreshold < 0 || c.Gate.QualityThreshold > 100 {
		return errors.Newf("gate.quality_threshold must be between 0 and 100, got %d", c.Gate.QualityThreshold)
	}

	// Coupling threshold: same range as the quality gate
	if c.Coupling.Threshold < 0 || c.Coupling.Threshold > 100 {
		return errors.Newf("coupling.threshold must be between 0 and 100, got %d", c.Coupling.Threshold)
	}

	// Discovery caps: 0 = use default, negative = invalid
	if c.Coupling.MaxFiles < 0 {
		return errors.Newf("coupling.max_files must be >= 0, got %d", c.Coupling.MaxFiles)
	}
	if c.Coupling.MaxFileBytes < 0 {
		return errors.Newf("coupling.max_file_bytes must be >= 0, got %d", c.Coupling.MaxFileBytes)
	}

	// Validate judge configuration only when enabled
	if c.Judge.Enabled {
		if c.Judge.BaseURL == "" {
			return errors.New("judge.base_url cannot be empty when enabled")
		}
		if c.Judge.Model == "" {
			return errors.New("judge.model cannot be empty when enabled")
		}
		if c.Judge.TimeoutSeconds <= 0 {
			return errors.Newf("judge.timeout_seconds must be > 0, got %d", c.Judge.TimeoutSeconds)
		}
		if c.Judge.MaxCallsPerMinute < 0 {
			return errors.Newf("judge.max_calls_per_minute must be >= 0, got %d", c.Judge.MaxCallsPerMinute)
		}
	}

	return nil
}
