package config

// Config represents the core pact configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Gate     GateConfig     `mapstructure:"gate"`
	Coupling CouplingConfig `mapstructure:"coupling"`
	Judge    JudgeConfig    `mapstructure:"judge"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig configures the SQLite catalog database
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// GateConfig configures the commit quality gate
type GateConfig struct {
	QualityThreshold int `mapstructure:"quality_threshold"` // Minimum quality score to commit (default: 80)
}

// CouplingConfig configures the test-atom coupling analyzer
type CouplingConfig struct {
	Threshold    int      `mapstructure:"threshold"`      // Minimum coupling score to pass the gate (default: 80)
	Includes     []string `mapstructure:"includes"`       // Test file globs (default: **/*.spec.*, **/*.test.*)
	Excludes     []string `mapstructure:"excludes"`       // Skipped subtree globs (default: **/node_modules/**, **/dist/**)
	MaxFiles     int      `mapstructure:"max_files"`      // Discovery cap (default: 10000)
	MaxFileBytes int64    `mapstructure:"max_file_bytes"` // Per-file scan cap in bytes (default: 1 MiB)
}

// JudgeConfig configures the optional semantic judge consulted during scoring
type JudgeConfig struct {
	Enabled           bool   `mapstructure:"enabled"`              // Enable the external judge (default: false)
	BaseURL           string `mapstructure:"base_url"`             // e.g., "http://localhost:11434" for Ollama
	Model             string `mapstructure:"model"`                // e.g., "llama3.2:3b"
	APIKey            string `mapstructure:"api_key"`              // Bearer token for cloud gateways; empty for local servers
	TimeoutSeconds    int    `mapstructure:"timeout_seconds"`      // Request timeout in seconds (default: 15)
	MaxCallsPerMinute int    `mapstructure:"max_calls_per_minute"` // Rate limit on judge calls (default: 30)
}

// LogConfig configures structured log output
type LogConfig struct {
	JSON bool `mapstructure:"json"` // JSON output instead of console (default: false)
}

// File permission constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
