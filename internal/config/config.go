// Package config loads Codex configuration from .codex/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	codexerrors "codex/internal/errors"
)

// Config represents the complete Codex configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	Root    string `json:"root" mapstructure:"root"`

	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Rules   RulesConfig   `json:"rules" mapstructure:"rules"`
	Store   StoreConfig   `json:"store" mapstructure:"store"`
	Query   QueryConfig   `json:"query" mapstructure:"query"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig controls the directory walk and per-file scanning
type ScanConfig struct {
	ExcludeDirs      []string `json:"excludeDirs" mapstructure:"excludeDirs"`
	ExcludeGlobs     []string `json:"excludeGlobs" mapstructure:"excludeGlobs"`
	MaxFileSizeBytes int64    `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
	Workers          int      `json:"workers" mapstructure:"workers"`
}

// RulesConfig controls rule loading
type RulesConfig struct {
	// Packs are extra rule files (.toml or .yaml) merged over the builtin table
	Packs       []string `json:"packs" mapstructure:"packs"`
	MinPriority string   `json:"minPriority" mapstructure:"minPriority"`
}

// StoreConfig controls the violation database
type StoreConfig struct {
	// Path is relative to the repo root unless absolute
	Path string `json:"path" mapstructure:"path"`
}

// QueryConfig controls query behavior
type QueryConfig struct {
	DefaultLimit int `json:"defaultLimit" mapstructure:"defaultLimit"`
	MaxLimit     int `json:"maxLimit" mapstructure:"maxLimit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Root:    ".",
		Scan: ScanConfig{
			ExcludeDirs: []string{
				".git", ".hg", ".svn", "node_modules", "vendor",
				"__pycache__", ".venv", "venv", "dist", "build",
				".tox", ".mypy_cache", ".codex",
			},
			ExcludeGlobs:     []string{"*.min.js", "*.lock"},
			MaxFileSizeBytes: 1000000,
			Workers:          4,
		},
		Rules: RulesConfig{
			Packs:       []string{},
			MinPriority: "LOW",
		},
		Store: StoreConfig{
			Path: filepath.Join(".codex", "codex.db"),
		},
		Query: QueryConfig{
			DefaultLimit: 5,
			MaxLimit:     50,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from .codex/config.json.
// A missing config file yields the defaults.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("root", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".codex"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, codexerrors.New(codexerrors.ConfigInvalid, "failed to read config", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, codexerrors.New(codexerrors.ConfigInvalid, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to .codex/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".codex")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return codexerrors.New(codexerrors.ConfigInvalid, "unsupported config version", nil).
			WithDetails(map[string]int{"version": c.Version})
	}
	if c.Scan.Workers < 0 {
		return codexerrors.New(codexerrors.ConfigInvalid, "scan.workers must be >= 0", nil)
	}
	if c.Query.DefaultLimit < 1 || (c.Query.MaxLimit > 0 && c.Query.DefaultLimit > c.Query.MaxLimit) {
		return codexerrors.New(codexerrors.ConfigInvalid, "query limits are inconsistent", nil)
	}
	return nil
}

// DBPath resolves the violation database path against the repo root.
func (c *Config) DBPath(root string) string {
	if filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(root, c.Store.Path)
}
