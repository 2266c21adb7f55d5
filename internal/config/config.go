// Package config loads scribed configuration from YAML with environment
// overrides. Durations are stored as strings ("2s", "90s") and parsed on
// access so a hand-edited config file stays readable.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all scribed configuration.
type Config struct {
	// Directory layout
	Paths PathsConfig `yaml:"paths"`

	// Worker loop behavior
	Worker WorkerConfig `yaml:"worker"`

	// Gemini API settings
	LLM LLMConfig `yaml:"llm"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// PathsConfig names the three well-known directories plus the ledger and
// job-history locations.
type PathsConfig struct {
	InputDir   string `yaml:"input_dir"`
	OutputDir  string `yaml:"output_dir"`
	LedgerFile string `yaml:"ledger_file"`
	HistoryDB  string `yaml:"history_db"`
}

// WorkerConfig configures the claim/process loop.
type WorkerConfig struct {
	PollInterval string `yaml:"poll_interval"`
	Workers      int    `yaml:"workers"`
}

// LLMConfig configures the Gemini client.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:   "input",
			OutputDir:  "output",
			LedgerFile: "logs/metrics.csv",
			HistoryDB:  "logs/history.db",
		},
		Worker: WorkerConfig{
			PollInterval: "2s",
			Workers:      1,
		},
		LLM: LLMConfig{
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: "90s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file is not an
// error: defaults (plus env overrides) are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables win over file values.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if model := os.Getenv("SCRIBED_MODEL"); model != "" {
		c.LLM.Model = model
	}
	if dir := os.Getenv("SCRIBED_INPUT_DIR"); dir != "" {
		c.Paths.InputDir = dir
	}
	if dir := os.Getenv("SCRIBED_OUTPUT_DIR"); dir != "" {
		c.Paths.OutputDir = dir
	}
}

// GetPollInterval parses the worker poll interval, defaulting to 2s.
func (c *Config) GetPollInterval() time.Duration {
	d, err := time.ParseDuration(c.Worker.PollInterval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// GetLLMTimeout parses the Gemini request timeout, defaulting to 90s.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil || d <= 0 {
		return 90 * time.Second
	}
	return d
}

// Validate checks the configuration for problems that would surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Paths.InputDir == "" {
		return fmt.Errorf("paths.input_dir is required")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir is required")
	}
	if c.Paths.LedgerFile == "" {
		return fmt.Errorf("paths.ledger_file is required")
	}
	if c.Worker.Workers < 1 {
		return fmt.Errorf("worker.workers must be at least 1, got %d", c.Worker.Workers)
	}
	if _, err := time.ParseDuration(c.Worker.PollInterval); err != nil {
		return fmt.Errorf("worker.poll_interval is invalid: %w", err)
	}
	if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
		return fmt.Errorf("llm.timeout is invalid: %w", err)
	}
	return nil
}

// EnsureDirs creates the input, output and ledger directories if they do
// not exist. Idempotent.
func (c *Config) EnsureDirs() error {
	dirs := []string{
		c.Paths.InputDir,
		c.Paths.OutputDir,
		filepath.Dir(c.Paths.LedgerFile),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
