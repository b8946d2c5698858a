package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "pkg")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sub, "db.go")
	if err := os.WriteFile(file, []byte("package pkg\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Canonicalize(file, root)
	if err != nil {
		t.Fatalf("Canonicalize: %v", err)
	}
	if got != "pkg/db.go" {
		t.Errorf("Canonicalize = %q, want %q", got, "pkg/db.go")
	}
}

func TestCanonicalizeMissingFile(t *testing.T) {
	root := t.TempDir()
	got, err := Canonicalize(filepath.Join(root, "not", "yet.go"), root)
	if err != nil {
		t.Fatalf("Canonicalize on missing file: %v", err)
	}
	if got != "not/yet.go" {
		t.Errorf("Canonicalize = %q, want %q", got, "not/yet.go")
	}
}

func TestIsWithinRoot(t *testing.T) {
	root := t.TempDir()

	if !IsWithinRoot(filepath.Join(root, "a.go"), root) {
		t.Error("path inside root reported as outside")
	}
	if IsWithinRoot(filepath.Join(root, "..", "escape.go"), root) {
		t.Error("path outside root reported as inside")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`internal\scan\scanner.go`, "internal/scan/scanner.go"},
		{"internal/scan/scanner.go", "internal/scan/scanner.go"},
		{`mixed/sep\arated.go`, "mixed/sep/arated.go"},
		{"plain.go", "plain.go"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
