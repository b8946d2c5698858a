package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"codex/internal/logging"
	"codex/internal/rules"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func loadRules(t *testing.T) *rules.Set {
	t.Helper()
	set, err := rules.Load(rules.LoadOptions{})
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}
	return set
}

// violationsFor filters a list down to one rule name.
func violationsFor(vs []Violation, rule string) []Violation {
	var out []Violation
	for _, v := range vs {
		if v.RuleName == rule {
			out = append(out, v)
		}
	}
	return out
}

func TestScanFilePrintInLibraryCode(t *testing.T) {
	content := "import os\n" +
		"\n" +
		"def fetch_user(user_id):\n" +
		"    print(\"Fetching data for user 1\")\n" +
		"    return user_id\n"

	vs := ScanFile("app/service.py", content, loadRules(t))
	prints := violationsFor(vs, "no-print-statement")

	if len(prints) != 1 {
		t.Fatalf("got %d print violations, want 1: %+v", len(prints), prints)
	}
	v := prints[0]
	if v.Line != 4 {
		t.Errorf("line = %d, want 4", v.Line)
	}
	if v.Category != "logging" {
		t.Errorf("category = %q, want logging", v.Category)
	}
	if v.Priority != rules.PriorityHigh {
		t.Errorf("priority = %s, want HIGH", v.Priority)
	}
	if v.CodeLine != `print("Fetching data for user 1")` {
		t.Errorf("code line = %q, want trimmed source", v.CodeLine)
	}
	if v.Fix == "" {
		t.Error("fix template should be carried on the violation")
	}
}

func TestScanFileCommentedPrintNeverReported(t *testing.T) {
	vs := ScanFile("app/service.py", "# print(x) # debug\n", loadRules(t))
	if prints := violationsFor(vs, "no-print-statement"); len(prints) != 0 {
		t.Errorf("commented print reported: %+v", prints)
	}
}

func TestScanFilePrintSuppressionByPurpose(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    int
	}{
		{
			name:    "cli interface with click",
			path:    "app/cli/main.py",
			content: "import click\n\nprint(\"usage: ...\")\nprint(\"more usage\")\n",
			want:    0,
		},
		{
			name:    "test code",
			path:    "tests/test_service.py",
			content: "print(\"debugging a test\")\n",
			want:    0,
		},
		{
			name:    "script entrypoint",
			path:    "tools/migrate.py",
			content: "print(\"running\")\n\nif __name__ == \"__main__\":\n    pass\n",
			want:    0,
		},
		{
			name:    "library with logging import",
			path:    "app/service.py",
			content: "import logging\n\nprint(\"leftover\")\n",
			want:    0,
		},
		{
			name:    "library without logging import",
			path:    "app/service.py",
			content: "import os\n\nprint(\"one\")\nprint(\"two\")\n",
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := ScanFile(tt.path, tt.content, loadRules(t))
			prints := violationsFor(vs, "no-print-statement")
			if len(prints) != tt.want {
				t.Errorf("got %d print violations, want %d: %+v", len(prints), tt.want, prints)
			}
		})
	}
}

func TestScanFileHardcodedPathByPurpose(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    int
	}{
		{
			name:    "settings module defines the canonical path",
			path:    "app/settings.py",
			content: "from pydantic import BaseSettings\n\nDATABASE_PATH = \"app.db\"\n",
			want:    0,
		},
		{
			name:    "identical literal in a library module",
			path:    "app/repository.py",
			content: "DATABASE_PATH = \"app.db\"\n",
			want:    1,
		},
		{
			name:    "cli default parameter",
			path:    "app/cli/main.py",
			content: "import click\n\n@click.option(\"--db\", default=\"app.db\")\ndef run(db):\n    pass\n",
			want:    0,
		},
		{
			name:    "cli non-default literal",
			path:    "app/cli/main.py",
			content: "import click\n\nconn = sqlite3.connect(\"app.db\")\n",
			want:    1,
		},
		{
			name:    "gitignore pattern file",
			path:    ".gitignore",
			content: "\"app.db\"\n",
			want:    0,
		},
		{
			name:    "test code",
			path:    "tests/test_repo.py",
			content: "conn = sqlite3.connect(\"fixture.db\")\n",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := ScanFile(tt.path, tt.content, loadRules(t))
			got := violationsFor(vs, "no-hardcoded-db-path")
			if len(got) != tt.want {
				t.Errorf("got %d hardcoded-path violations, want %d: %+v", len(got), tt.want, got)
			}
		})
	}
}

func TestScanFileRequiredContextGate(t *testing.T) {
	set := loadRules(t)

	// shell=True without a subprocess import anywhere in the file
	vs := ScanFile("app/run.py", "options = {\"shell\": True}\nrun(shell=True)\n", set)
	if got := violationsFor(vs, "no-shell-true"); len(got) != 0 {
		t.Errorf("rule fired without required context: %+v", got)
	}

	// same line with subprocess present in content
	vs = ScanFile("app/run.py", "import subprocess\n\nsubprocess.run(cmd, shell=True)\n", set)
	if got := violationsFor(vs, "no-shell-true"); len(got) != 1 {
		t.Errorf("rule should fire with required context present: %+v", got)
	}
}

func TestScanFileExclusionWins(t *testing.T) {
	// A line matching both a trigger and an exclusion must never be
	// reported, for every builtin rule.
	set := loadRules(t)
	for _, r := range set.All() {
		vs := ScanFile("app/lib.py", "anything = eval(x)  # codex:ignore\n", set)
		for _, v := range vs {
			if v.RuleName == r.Name && v.Line == 1 {
				t.Errorf("rule %s reported a line carrying the suppression marker", r.Name)
			}
		}
	}
}

func TestScanFileMultipleRulesSameLine(t *testing.T) {
	// One line can violate several rules independently
	content := "import subprocess\n\nresult = eval(subprocess.run(cmd, shell=True))\n"
	vs := ScanFile("app/danger.py", content, loadRules(t))

	names := map[string]bool{}
	for _, v := range vs {
		if v.Line == 3 {
			names[v.RuleName] = true
		}
	}
	if !names["no-eval"] || !names["no-shell-true"] {
		t.Errorf("expected both no-eval and no-shell-true on line 3, got %v", names)
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestScanner(t *testing.T, root string) *Scanner {
	return NewScanner(root, loadRules(t), Options{
		ExcludeDirs: []string{".git", "node_modules", "__pycache__"},
		Workers:     2,
	}, testLogger())
}

func TestScanDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/service.py":       "def f():\n    print(\"hi\")\n",
		"app/settings.py":      "from pydantic import BaseSettings\nDATABASE_PATH = \"app.db\"\n",
		"tests/test_app.py":    "print(\"test debug\")\n",
		".git/config":          "print(\"not code\")\n",
		"node_modules/x/y.py":  "eval(x)\n",
		"__pycache__/cached.py": "eval(x)\n",
	})

	result, err := newTestScanner(t, root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if result.FilesScanned != 3 {
		t.Errorf("files scanned = %d, want 3 (excluded dirs pruned)", result.FilesScanned)
	}

	prints := violationsFor(result.Violations, "no-print-statement")
	if len(prints) != 1 || prints[0].FilePath != "app/service.py" {
		t.Errorf("print violations = %+v, want exactly one in app/service.py", prints)
	}

	if got := violationsFor(result.Violations, "no-hardcoded-db-path"); len(got) != 0 {
		t.Errorf("settings module path literal reported: %+v", got)
	}

	if result.Summary.TotalViolations != len(result.Violations) {
		t.Error("summary count disagrees with violation list")
	}
}

func TestScanSkipsBinaryFiles(t *testing.T) {
	root := writeTree(t, map[string]string{"app/ok.py": "x = 1\n"})
	bin := filepath.Join(root, "blob.bin")
	if err := os.WriteFile(bin, []byte{0x7f, 0x00, 0x01, 0x02}, 0644); err != nil {
		t.Fatal(err)
	}

	result, err := newTestScanner(t, root).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.FilesScanned != 1 {
		t.Errorf("files scanned = %d, want 1", result.FilesScanned)
	}
	if result.FilesSkipped != 1 {
		t.Errorf("files skipped = %d, want 1", result.FilesSkipped)
	}
}

func TestScanIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"app/a.py": "print(\"a\")\neval(x)\n",
		"app/b.py": "except:\n    pass\n",
	})

	key := func(v Violation) string {
		return fmt.Sprintf("%s:%d:%s", v.FilePath, v.Line, v.RuleName)
	}
	run := func() []string {
		result, err := newTestScanner(t, root).Scan(context.Background())
		if err != nil {
			t.Fatalf("Scan: %v", err)
		}
		keys := make([]string, 0, len(result.Violations))
		for _, v := range result.Violations {
			keys = append(keys, key(v))
		}
		sort.Strings(keys)
		return keys
	}

	first, second := run(), run()
	if len(first) != len(second) {
		t.Fatalf("violation counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("violation %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestScanCancellation(t *testing.T) {
	root := writeTree(t, map[string]string{"a.py": "x = 1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(t, root).Scan(ctx)
	if err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestSortViolationsPriorityFirst(t *testing.T) {
	vs := []Violation{
		{FilePath: "b.py", Line: 1, RuleName: "low", Priority: rules.PriorityLow},
		{FilePath: "a.py", Line: 9, RuleName: "must", Priority: rules.PriorityMandatory},
		{FilePath: "a.py", Line: 2, RuleName: "must", Priority: rules.PriorityMandatory},
	}
	sortViolations(vs)

	if vs[0].Priority != rules.PriorityMandatory || vs[0].Line != 2 {
		t.Errorf("first violation = %+v, want MANDATORY a.py:2", vs[0])
	}
	if vs[2].Priority != rules.PriorityLow {
		t.Errorf("last violation = %+v, want LOW", vs[2])
	}
}
