// Package classify assigns each scanned file a single purpose tag used to
// suppress context-appropriate false positives. Classification is a fixed
// ordered cascade over the file path and the first lines of content; the
// first matching predicate wins.
package classify

import (
	"regexp"
	"strings"
)

// Purpose is the classifier's single-valued guess at a file's role.
type Purpose string

const (
	PurposeCLI       Purpose = "cli-interface"
	PurposeSettings  Purpose = "settings-definition"
	PurposeGitignore Purpose = "gitignore-patterns"
	PurposeTest      Purpose = "test-code"
	PurposeScript    Purpose = "script-entrypoint"
	PurposeLibrary   Purpose = "library-code"
)

// headLines bounds how much content the classifier inspects.
const headLines = 30

// FileContext captures everything the scanner needs to suppress
// purpose-appropriate matches. Computed once per file, never mutated.
type FileContext struct {
	Path             string
	Purpose          Purpose
	HasLoggingImport bool
	HasCLIFramework  bool
	IsTestPath       bool
	IsSettingsModule bool
}

var (
	cliFrameworkRe = regexp.MustCompile(`(?m)^\s*(?:import\s+(?:click|argparse|typer|fire)\b|from\s+(?:click|argparse|typer|fire)\b)`)
	loggingRe      = regexp.MustCompile(`(?m)^\s*(?:import\s+logging\b|from\s+logging\b|import\s+structlog\b|from\s+loguru\b)`)
	schemaRe       = regexp.MustCompile(`(?m)^\s*(?:from\s+pydantic\b|import\s+pydantic\b|from\s+dataclasses\b|import\s+configparser\b)`)
	testImportRe   = regexp.MustCompile(`(?m)^\s*(?:import\s+(?:pytest|unittest)\b|from\s+(?:pytest|unittest)\b)`)
	mainGuardRe    = regexp.MustCompile(`if\s+__name__\s*==\s*["']__main__["']`)
)

// classifier is one (predicate, purpose) step of the cascade.
type classifier struct {
	purpose Purpose
	match   func(path, head, full string) bool
}

// cascade is evaluated in order; the first match applies. The order is
// the rule precedence, so do not reorder entries.
var cascade = []classifier{
	{PurposeCLI, func(path, head, _ string) bool {
		return hasPathMarker(path, "cli", "commands", "cmd") && cliFrameworkRe.MatchString(head)
	}},
	{PurposeSettings, func(path, head, _ string) bool {
		return hasPathMarker(path, "settings", "config", "conf") && schemaRe.MatchString(head)
	}},
	{PurposeGitignore, func(path, _, _ string) bool {
		base := baseName(path)
		return base == ".gitignore" || base == ".dockerignore" || strings.HasSuffix(base, "ignore")
	}},
	{PurposeTest, func(path, head, _ string) bool {
		return isTestPath(path) || testImportRe.MatchString(head)
	}},
	{PurposeScript, func(_, _, full string) bool {
		return mainGuardRe.MatchString(full)
	}},
}

// Classify determines the purpose and context flags for a file. The path
// is inspected as a string; only the first lines of content participate,
// except for the main-guard idiom, which can appear anywhere.
func Classify(path string, content string) FileContext {
	head := headOf(content, headLines)

	ctx := FileContext{
		Path:             path,
		Purpose:          PurposeLibrary,
		HasLoggingImport: loggingRe.MatchString(head),
		HasCLIFramework:  cliFrameworkRe.MatchString(head),
		IsTestPath:       isTestPath(path),
		IsSettingsModule: hasPathMarker(path, "settings", "config", "conf"),
	}

	for _, c := range cascade {
		if c.match(path, head, content) {
			ctx.Purpose = c.purpose
			break
		}
	}

	return ctx
}

// headOf returns the first n lines of content.
func headOf(content string, n int) string {
	count := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			count++
			if count == n {
				return content[:i]
			}
		}
	}
	return content
}

func baseName(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// hasPathMarker checks for a marker as a path segment or a filename stem.
func hasPathMarker(path string, markers ...string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	base := baseName(normalized)
	stem := strings.TrimSuffix(base, extOf(base))

	for _, m := range markers {
		if stem == m || strings.HasPrefix(stem, m+"_") || strings.HasSuffix(stem, "_"+m) {
			return true
		}
		if strings.Contains(normalized, "/"+m+"/") || strings.HasPrefix(normalized, m+"/") {
			return true
		}
	}
	return false
}

func extOf(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[i:]
	}
	return ""
}

func isTestPath(path string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
	base := baseName(normalized)
	if strings.HasPrefix(base, "test_") || strings.HasSuffix(base, "_test.py") || strings.HasSuffix(base, "_test.go") {
		return true
	}
	for _, seg := range []string{"/tests/", "/test/", "/testdata/"} {
		if strings.Contains("/"+normalized+"/", seg) {
			return true
		}
	}
	return false
}
