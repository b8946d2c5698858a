package classify

import (
	"strings"
	"testing"
)

func TestClassifyPurpose(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    Purpose
	}{
		{
			name:    "cli module with click",
			path:    "app/cli/main.py",
			content: "import click\n\n@click.command()\ndef run():\n    pass\n",
			want:    PurposeCLI,
		},
		{
			name:    "cli path without framework stays library",
			path:    "app/cli/helpers.py",
			content: "def format_row(row):\n    return str(row)\n",
			want:    PurposeLibrary,
		},
		{
			name:    "settings module with pydantic",
			path:    "app/settings.py",
			content: "from pydantic import BaseSettings\n\nclass Settings(BaseSettings):\n    db: str\n",
			want:    PurposeSettings,
		},
		{
			name:    "config path without schema import is not settings",
			path:    "app/config_render.py",
			content: "def render():\n    pass\n",
			want:    PurposeLibrary,
		},
		{
			name:    "gitignore file",
			path:    ".gitignore",
			content: "*.db\n__pycache__/\n",
			want:    PurposeGitignore,
		},
		{
			name:    "test file by path",
			path:    "tests/test_scanner.py",
			content: "def test_scan():\n    assert True\n",
			want:    PurposeTest,
		},
		{
			name:    "test file by early import",
			path:    "app/scanner_checks.py",
			content: "import pytest\n\ndef test_ok():\n    pass\n",
			want:    PurposeTest,
		},
		{
			name:    "script entrypoint by main guard",
			path:    "tools/migrate.py",
			content: "def main():\n    pass\n\nif __name__ == \"__main__\":\n    main()\n",
			want:    PurposeScript,
		},
		{
			name:    "plain library code",
			path:    "app/repository.py",
			content: "def fetch(conn, user_id):\n    return conn.execute(q)\n",
			want:    PurposeLibrary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.path, tt.content)
			if got.Purpose != tt.want {
				t.Errorf("Classify(%s).Purpose = %s, want %s", tt.path, got.Purpose, tt.want)
			}
		})
	}
}

func TestPrecedenceFirstMatchWins(t *testing.T) {
	// A CLI module that also has a main guard and a test import: the CLI
	// predicate sits earlier in the cascade, so it wins.
	content := "import click\nimport pytest\n\nif __name__ == \"__main__\":\n    run()\n"
	got := Classify("app/cli/run.py", content)
	if got.Purpose != PurposeCLI {
		t.Errorf("purpose = %s, want cli-interface (first match in cascade)", got.Purpose)
	}

	// A test path that is also a script: test precedes script.
	got = Classify("tests/test_tool.py", "if __name__ == \"__main__\":\n    run()\n")
	if got.Purpose != PurposeTest {
		t.Errorf("purpose = %s, want test-code", got.Purpose)
	}
}

func TestContextFlags(t *testing.T) {
	got := Classify("app/service.py", "import logging\n\nlogger = logging.getLogger(__name__)\n")
	if !got.HasLoggingImport {
		t.Error("HasLoggingImport should be true")
	}
	if got.HasCLIFramework {
		t.Error("HasCLIFramework should be false")
	}

	got = Classify("app/worker.py", "import os\n")
	if got.HasLoggingImport {
		t.Error("HasLoggingImport should be false without a logging import")
	}

	got = Classify("tests/test_worker.py", "")
	if !got.IsTestPath {
		t.Error("IsTestPath should be true for tests/ paths")
	}

	got = Classify("app/settings.py", "")
	if !got.IsSettingsModule {
		t.Error("IsSettingsModule should be true for settings.py")
	}
}

func TestHeadLimitBoundsImports(t *testing.T) {
	// A logging import buried past the head window is not seen
	var b strings.Builder
	for i := 0; i < headLines+5; i++ {
		b.WriteString("x = 1\n")
	}
	b.WriteString("import logging\n")

	got := Classify("app/deep.py", b.String())
	if got.HasLoggingImport {
		t.Error("imports beyond the head window should not count")
	}
}

func TestMainGuardSeenBeyondHead(t *testing.T) {
	// The main guard conventionally sits at the bottom of the file
	var b strings.Builder
	for i := 0; i < headLines+10; i++ {
		b.WriteString("y = 2\n")
	}
	b.WriteString("if __name__ == \"__main__\":\n    main()\n")

	got := Classify("tools/job.py", b.String())
	if got.Purpose != PurposeScript {
		t.Errorf("purpose = %s, want script-entrypoint", got.Purpose)
	}
}
