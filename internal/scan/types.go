// Package scan walks a file tree and matches lines against the loaded
// rule set. Per-file scans are pure: each file produces its own violation
// list and results are folded after the walk, so files can be scanned
// concurrently without shared state.
package scan

import (
	"time"

	"codex/internal/rules"
)

// Violation is one reported instance of a rule firing on a file/line.
// Identity is the (file, line, rule) triple within a scan.
type Violation struct {
	FilePath    string         `json:"file"`
	Line        int            `json:"line"`
	RuleName    string         `json:"rule"`
	Category    string         `json:"category"`
	Priority    rules.Priority `json:"priority"`
	Description string         `json:"description"`
	CodeLine    string         `json:"codeLine"` // matched source line, trimmed
	Confidence  float64        `json:"confidence"`
	Fix         string         `json:"fix"`
}

// Summary provides aggregate statistics for one scan.
type Summary struct {
	TotalViolations     int                    `json:"totalViolations"`
	ByCategory          map[string]int         `json:"byCategory"`
	ByPriority          map[rules.Priority]int `json:"byPriority"`
	FilesWithViolations int                    `json:"filesWithViolations"`
}

// Result is the complete outcome of one scan pass.
type Result struct {
	Root         string      `json:"root"`
	ScannedAt    time.Time   `json:"scannedAt"`
	Duration     string      `json:"duration"`
	FilesScanned int         `json:"filesScanned"`
	FilesSkipped int         `json:"filesSkipped"`
	Violations   []Violation `json:"violations"`
	Summary      Summary     `json:"summary"`
}

// Options configures a scan pass.
type Options struct {
	// ExcludeDirs are directory names pruned from the walk
	ExcludeDirs []string
	// ExcludeGlobs are file name patterns skipped during the walk
	ExcludeGlobs []string
	// MaxFileSizeBytes skips files larger than this (0 = 1MB default)
	MaxFileSizeBytes int64
	// Workers bounds concurrent file scans (0 = 4)
	Workers int
}

// buildSummary folds violations into aggregate counts.
func buildSummary(violations []Violation) Summary {
	summary := Summary{
		TotalViolations: len(violations),
		ByCategory:      make(map[string]int),
		ByPriority:      make(map[rules.Priority]int),
	}

	files := make(map[string]bool)
	for _, v := range violations {
		summary.ByCategory[v.Category]++
		summary.ByPriority[v.Priority]++
		files[v.FilePath] = true
	}
	summary.FilesWithViolations = len(files)

	return summary
}
