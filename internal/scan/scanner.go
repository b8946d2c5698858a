package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"codex/internal/classify"
	"codex/internal/logging"
	"codex/internal/paths"
	"codex/internal/rules"
)

// Scanner scans a directory tree against a loaded rule set.
type Scanner struct {
	root   string
	rules  *rules.Set
	opts   Options
	logger *logging.Logger
}

// NewScanner creates a scanner rooted at root.
func NewScanner(root string, set *rules.Set, opts Options, logger *logging.Logger) *Scanner {
	if opts.MaxFileSizeBytes <= 0 {
		opts.MaxFileSizeBytes = 1000000
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Scanner{root: root, rules: set, opts: opts, logger: logger}
}

// fileResult carries one file's outcome from a worker.
type fileResult struct {
	violations []Violation
	skipped    bool
}

// Scan performs a full pass over the tree. Each file is scanned
// independently by a bounded worker pool and the per-file violation lists
// are folded into one result after the pool drains.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	files, walkSkipped, err := s.findFiles()
	if err != nil {
		return nil, err
	}

	jobs := make(chan string)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- s.scanOne(path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- f:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []Violation
	scanned, skipped := 0, walkSkipped
	for r := range results {
		if r.skipped {
			skipped++
			continue
		}
		scanned++
		all = append(all, r.violations...)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sortViolations(all)

	s.logger.Info("Scan complete", map[string]interface{}{
		"files_scanned": scanned,
		"files_skipped": skipped,
		"violations":    len(all),
		"duration_ms":   time.Since(start).Milliseconds(),
	})

	return &Result{
		Root:         s.root,
		ScannedAt:    time.Now(),
		Duration:     time.Since(start).String(),
		FilesScanned: scanned,
		FilesSkipped: skipped,
		Violations:   all,
		Summary:      buildSummary(all),
	}, nil
}

// scanOne reads and scans a single file. Unreadable or binary files are
// skipped, never fatal.
func (s *Scanner) scanOne(path string) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.Debug("Skipping unreadable file", map[string]interface{}{
			"file": path, "error": err.Error(),
		})
		return fileResult{skipped: true}
	}
	if isBinary(data) {
		return fileResult{skipped: true}
	}

	relPath, err := paths.Canonicalize(path, s.root)
	if err != nil {
		relPath = paths.Normalize(path)
	}

	return fileResult{violations: ScanFile(relPath, string(data), s.rules)}
}

// ScanFile matches every line of content against every rule. For each rule
// and line, in order: an exclusion match vetoes unconditionally; then a
// trigger must match; then the rule's required-context keywords (checked
// file-wide, once) gate the rule; then the purpose overlay may suppress.
// Multiple rules may each report the same line.
func ScanFile(relPath string, content string, set *rules.Set) []Violation {
	ctx := classify.Classify(relPath, content)
	lines := strings.Split(content, "\n")

	var violations []Violation
	for _, rule := range set.All() {
		if !contextKeywordsPresent(rule, content) {
			continue
		}

	lineLoop:
		for i, line := range lines {
			for _, ex := range rule.Exclusions {
				if ex.MatchString(line) {
					continue lineLoop
				}
			}

			triggered := false
			for _, tr := range rule.Triggers {
				if tr.MatchString(line) {
					triggered = true
					break
				}
			}
			if !triggered {
				continue
			}

			if suppressedByPurpose(rule, ctx, line) {
				continue
			}

			violations = append(violations, Violation{
				FilePath:    relPath,
				Line:        i + 1,
				RuleName:    rule.Name,
				Category:    rule.Category,
				Priority:    rule.Priority,
				Description: rule.Description,
				CodeLine:    strings.TrimSpace(line),
				Confidence:  rule.Confidence,
				Fix:         rule.Fix.Template,
			})
		}
	}

	return violations
}

// contextKeywordsPresent applies the file-wide required-context gate.
// A rule with no keywords always passes.
func contextKeywordsPresent(rule *rules.Rule, content string) bool {
	if len(rule.Keywords) == 0 {
		return true
	}
	for _, kw := range rule.Keywords {
		if strings.Contains(content, kw) {
			return true
		}
	}
	return false
}

// findFiles walks the tree applying directory and glob excludes. Oversized
// files are counted as skipped.
func (s *Scanner) findFiles() ([]string, int, error) {
	var files []string
	skipped := 0

	excludeDir := make(map[string]bool, len(s.opts.ExcludeDirs))
	for _, d := range s.opts.ExcludeDirs {
		excludeDir[d] = true
	}

	err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip inaccessible
		}

		if info.IsDir() {
			if path != s.root && excludeDir[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		for _, glob := range s.opts.ExcludeGlobs {
			if m, _ := filepath.Match(glob, info.Name()); m {
				return nil
			}
		}

		if info.Size() > s.opts.MaxFileSizeBytes {
			skipped++
			return nil
		}

		files = append(files, path)
		return nil
	})

	sort.Strings(files)
	return files, skipped, err
}

// sortViolations orders violations for stable, priority-first reporting.
func sortViolations(violations []Violation) {
	sort.Slice(violations, func(i, j int) bool {
		a, b := violations[i], violations[j]
		if a.Priority.Weight() != b.Priority.Weight() {
			return a.Priority.Weight() > b.Priority.Weight()
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.RuleName < b.RuleName
	})
}

// isBinary reports whether data looks like a binary file (null byte in
// the first 512 bytes).
func isBinary(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	for _, b := range data[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}
