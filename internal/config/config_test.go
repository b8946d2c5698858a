package config

import (
	"os"
	"path/filepath"
	"testing"

	codexerrors "codex/internal/errors"
)

func TestLoadConfigDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig with no file: %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("default version = %d, want 1", cfg.Version)
	}
	if cfg.Scan.Workers != 4 {
		t.Errorf("default workers = %d, want 4", cfg.Scan.Workers)
	}
	if cfg.Query.DefaultLimit != 5 {
		t.Errorf("default query limit = %d, want 5", cfg.Query.DefaultLimit)
	}

	found := false
	for _, d := range cfg.Scan.ExcludeDirs {
		if d == ".git" {
			found = true
		}
	}
	if !found {
		t.Error("default excludes should contain .git")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Scan.Workers = 8
	cfg.Logging.Level = "debug"
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Scan.Workers != 8 {
		t.Errorf("workers = %d, want 8", loaded.Scan.Workers)
	}
	if loaded.Logging.Level != "debug" {
		t.Errorf("logging level = %q, want debug", loaded.Logging.Level)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".codex")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(root)
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
	if !codexerrors.IsCode(err, codexerrors.ConfigInvalid) {
		t.Errorf("error code = %q, want CONFIG_INVALID", codexerrors.CodeOf(err))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad version", func(c *Config) { c.Version = 9 }, true},
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }, true},
		{"zero default limit", func(c *Config) { c.Query.DefaultLimit = 0 }, true},
		{"default above max", func(c *Config) { c.Query.DefaultLimit = 100 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDBPath(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.DBPath("/repo")
	want := filepath.Join("/repo", ".codex", "codex.db")
	if got != want {
		t.Errorf("DBPath = %q, want %q", got, want)
	}

	cfg.Store.Path = "/var/lib/codex.db"
	if got := cfg.DBPath("/repo"); got != "/var/lib/codex.db" {
		t.Errorf("absolute DBPath = %q", got)
	}
}
