package main

import (
	"path/filepath"

	"codex/internal/config"
	"codex/internal/logging"
	"codex/internal/rules"
	"codex/internal/store"
)

// loadWorkspace resolves the repository root, its configuration, and a
// logger honoring the persistent logging flags.
func loadWorkspace() (string, *config.Config, *logging.Logger, error) {
	root, err := resolveRoot()
	if err != nil {
		return "", nil, nil, err
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return "", nil, nil, err
	}
	return root, cfg, newLogger(cfg), nil
}

func newLogger(cfg *config.Config) *logging.Logger {
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  logging.ParseLevel(level),
	})
}

func openStore(root string, cfg *config.Config, logger *logging.Logger) (*store.DB, *store.Store, error) {
	db, err := store.Open(cfg.DBPath(root), logger)
	if err != nil {
		return nil, nil, err
	}
	return db, store.NewStore(db, logger), nil
}

// loadRuleSet loads the builtin rules plus any configured packs,
// filtered to the configured minimum priority.
func loadRuleSet(root string, cfg *config.Config) (*rules.Set, error) {
	opts := rules.LoadOptions{}

	if cfg.Rules.MinPriority != "" {
		min, err := rules.ParsePriority(cfg.Rules.MinPriority)
		if err != nil {
			return nil, err
		}
		opts.Priorities = rules.AtLeast(min)
	}

	for _, pack := range cfg.Rules.Packs {
		if !filepath.IsAbs(pack) {
			pack = filepath.Join(root, pack)
		}
		opts.Packs = append(opts.Packs, pack)
	}

	return rules.Load(opts)
}
