// Package project detects the primary language of a repository from
// its manifest files. The result is advisory: scans cover every text
// file regardless, but reports carry the detected language.
package project

import (
	"os"
	"path/filepath"
)

// Language represents a programming language.
type Language string

const (
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangUnknown    Language = "unknown"
)

// DetectLanguage detects the primary language of a tree from manifest
// files, checked in priority order. Returns the language, the manifest
// path that decided it, and whether detection succeeded.
func DetectLanguage(root string) (Language, string, bool) {
	manifests := []struct {
		path string
		lang Language
	}{
		{"go.mod", LangGo},
		{"package.json", LangTypeScript}, // refined to JS below
		{"Cargo.toml", LangRust},
		{"pyproject.toml", LangPython},
		{"requirements.txt", LangPython},
		{"setup.py", LangPython},
		{"pom.xml", LangJava},
		{"build.gradle", LangJava},
		{"build.gradle.kts", LangKotlin},
	}

	for _, m := range manifests {
		if _, err := os.Stat(filepath.Join(root, m.path)); err == nil {
			lang := m.lang
			if m.path == "package.json" {
				lang = detectJSorTS(root)
			}
			return lang, m.path, true
		}
	}

	return LangUnknown, "", false
}

func detectJSorTS(root string) Language {
	if _, err := os.Stat(filepath.Join(root, "tsconfig.json")); err == nil {
		return LangTypeScript
	}
	if hasFileWithExt(root, ".ts") {
		return LangTypeScript
	}
	return LangJavaScript
}

// hasFileWithExt checks the root and its src/ directory for a file with
// the given extension.
func hasFileWithExt(root, ext string) bool {
	for _, dir := range []string{root, filepath.Join(root, "src")} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ext {
				return true
			}
		}
	}
	return false
}

// DisplayName returns a human-readable name for the language.
func DisplayName(lang Language) string {
	switch lang {
	case LangGo:
		return "Go"
	case LangTypeScript:
		return "TypeScript"
	case LangJavaScript:
		return "JavaScript"
	case LangPython:
		return "Python"
	case LangRust:
		return "Rust"
	case LangJava:
		return "Java"
	case LangKotlin:
		return "Kotlin"
	default:
		return "Unknown"
	}
}
