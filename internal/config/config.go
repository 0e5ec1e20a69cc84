// Package config loads and persists the bpkit configuration stored under
// .bpkit/config.json in the corpus root. A corpus without a config file runs
// on defaults; a present but malformed one is an error.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// SchemaVersion is the config schema this build reads and writes.
const SchemaVersion = 1

// Config is the complete bpkit configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	History  HistoryConfig  `json:"history" mapstructure:"history"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// AnalysisConfig tunes the corpus scan and the detectors.
type AnalysisConfig struct {
	// RequiredSections are source-document slugs whose coverage gaps are
	// warnings instead of info.
	RequiredSections []string `json:"requiredSections" mapstructure:"requiredSections"`

	// IgnorePatterns are doublestar globs, matched against corpus-relative
	// paths, excluded from the scan.
	IgnorePatterns []string `json:"ignorePatterns" mapstructure:"ignorePatterns"`

	// Workers bounds the parse fan-out. 0 means one worker per CPU.
	Workers int `json:"workers" mapstructure:"workers"`
}

// HistoryConfig controls run persistence.
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// KeepRuns caps the number of retained runs; 0 keeps everything.
	KeepRuns int `json:"keepRuns" mapstructure:"keepRuns"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Analysis: AnalysisConfig{
			RequiredSections: []string{"problem", "solution", "market", "business-model"},
			IgnorePatterns:   []string{},
			Workers:          0,
		},
		History: HistoryConfig{
			Enabled:  true,
			KeepRuns: 100,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <corpusRoot>/.bpkit/config.json.
// A missing file yields the defaults.
func LoadConfig(corpusRoot string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("version", defaults.Version)
	v.SetDefault("analysis.requiredSections", defaults.Analysis.RequiredSections)
	v.SetDefault("analysis.ignorePatterns", defaults.Analysis.IgnorePatterns)
	v.SetDefault("analysis.workers", defaults.Analysis.Workers)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.keepRuns", defaults.History.KeepRuns)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(corpusRoot, ".bpkit"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <corpusRoot>/.bpkit/config.json, creating
// the directory when needed.
func (c *Config) Save(corpusRoot string) error {
	dir := filepath.Join(corpusRoot, ".bpkit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Version != SchemaVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Analysis.Workers < 0 {
		return &ConfigError{Field: "analysis.workers", Message: "must not be negative"}
	}
	if c.History.KeepRuns < 0 {
		return &ConfigError{Field: "history.keepRuns", Message: "must not be negative"}
	}
	switch c.Logging.Format {
	case "human", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	return nil
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
