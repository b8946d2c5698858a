// Package query turns free-text questions into ranked rule lookups over
// the persisted store and formats the answers for humans and machines.
package query

import (
	"fmt"
	"sort"
	"strings"

	"codex/internal/config"
	codexerrors "codex/internal/errors"
	"codex/internal/logging"
	"codex/internal/rules"
	"codex/internal/store"
)

// Interface answers read-only questions against the store. It never
// writes; it may run concurrently with a scan being recorded.
type Interface struct {
	store  *store.Store
	logger *logging.Logger

	defaultLimit int
	maxLimit     int
}

// New creates a query interface over an open store.
func New(st *store.Store, cfg *config.Config, logger *logging.Logger) *Interface {
	q := &Interface{
		store:        st,
		logger:       logger,
		defaultLimit: cfg.Query.DefaultLimit,
		maxLimit:     cfg.Query.MaxLimit,
	}
	if q.defaultLimit < 1 {
		q.defaultLimit = 5
	}
	return q
}

// Match is one rule returned for a query, simplified for presentation.
type Match struct {
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Priority    rules.Priority `json:"priority"`
	Description string         `json:"description"`
	Fix         string         `json:"fix,omitempty"`
	Rationale   string         `json:"rationale,omitempty"`
	Snippet     string         `json:"snippet,omitempty"`
}

// Result carries matches plus a diagnostic when the underlying search
// failed. A malformed query degrades to zero matches with the reason
// attached instead of an error.
type Result struct {
	Query      string  `json:"query"`
	Matches    []Match `json:"matches"`
	Diagnostic string  `json:"diagnostic,omitempty"`
}

// SearchResult is the answer to an intent search: the query actually
// used, the ranked matches, and a one-line summary of what to do.
type SearchResult struct {
	QueryUsed string  `json:"query_used"`
	Intent    string  `json:"intent,omitempty"`
	Matches   []Match `json:"matches"`
	Summary   string  `json:"summary"`
}

// Query runs a free-text search and returns ranked matches. Malformed
// query syntax is caught and reported through Result.Diagnostic, never
// as a wrong answer.
func (q *Interface) Query(text string, limit int) (*Result, error) {
	return q.search(text, limit, false)
}

// Explain runs a free-text search and keeps each match's rationale and
// bad-example snippet attached.
func (q *Interface) Explain(text string, limit int) (*Result, error) {
	return q.search(text, limit, true)
}

func (q *Interface) search(text string, limit int, explain bool) (*Result, error) {
	limit = q.clampLimit(limit)

	records, err := q.store.QueryFulltext(text, limit)
	if err != nil {
		if codexerrors.IsCode(err, codexerrors.QueryMalformed) {
			q.logger.Warn("Full-text query rejected", map[string]interface{}{
				"query": text,
				"error": err.Error(),
			})
			return &Result{Query: text, Diagnostic: err.Error()}, nil
		}
		return nil, err
	}

	return &Result{Query: text, Matches: toMatches(records, explain)}, nil
}

// SemanticSearch resolves a canonical intent (or falls back to the raw
// input) and summarizes the strongest matches into one actionable line.
func (q *Interface) SemanticSearch(intent string) (*SearchResult, error) {
	searchQuery, resolved := resolveIntent(intent)

	result, err := q.Query(searchQuery, q.defaultLimit)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		QueryUsed: searchQuery,
		Intent:    resolved,
		Matches:   result.Matches,
		Summary:   summarize(result.Matches),
	}, nil
}

// ContextForFile reports the latest scan's violations for one file,
// grouped by priority from most to least severe.
func (q *Interface) ContextForFile(path string) (string, error) {
	violations, err := q.store.ViolationsForFile(path)
	if err != nil {
		return "", err
	}
	if len(violations) == 0 {
		return fmt.Sprintf("No violations recorded for %s.\n", path), nil
	}

	grouped := make(map[rules.Priority][]string)
	for _, v := range violations {
		line := fmt.Sprintf("- line %d: %s (%s)", v.Line, v.RuleName, v.Category)
		if v.Fix != "" {
			line += " — " + v.Fix
		}
		grouped[v.Priority] = append(grouped[v.Priority], line)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", path)
	for _, p := range rules.PrioritiesDescending() {
		entries := grouped[p]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s (%d)\n", p, len(entries))
		for _, e := range entries {
			b.WriteString(e)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// summarize condenses matches into a single directive line. Mandatory
// and critical rules dominate, then high-priority recommendations.
func summarize(matches []Match) string {
	if len(matches) == 0 {
		return "No patterns found for this query."
	}

	var must, high []string
	for _, m := range matches {
		switch m.Priority {
		case rules.PriorityMandatory, rules.PriorityCritical:
			must = append(must, m.Name)
		case rules.PriorityHigh:
			high = append(high, m.Name)
		}
	}

	if len(must) > 0 {
		sort.Strings(must)
		return "MUST use: " + strings.Join(must, ", ")
	}
	if len(high) > 0 {
		sort.Strings(high)
		return "Recommended: " + strings.Join(high, ", ")
	}

	top := matches
	if len(top) > 2 {
		top = top[:2]
	}
	names := make([]string, 0, len(top))
	for _, m := range top {
		names = append(names, m.Name)
	}
	return "Consider: " + strings.Join(names, ", ")
}

func (q *Interface) clampLimit(limit int) int {
	if limit < 1 {
		limit = q.defaultLimit
	}
	if q.maxLimit > 0 && limit > q.maxLimit {
		limit = q.maxLimit
	}
	return limit
}

func toMatches(records []store.RuleRecord, explain bool) []Match {
	matches := make([]Match, 0, len(records))
	for _, r := range records {
		m := Match{
			Name:        r.Name,
			Category:    r.Category,
			Priority:    r.Priority,
			Description: r.Description,
			Fix:         r.FixTemplate,
		}
		if explain {
			m.Rationale = r.Rationale
			m.Snippet = r.ExampleBad
		}
		matches = append(matches, m)
	}
	return matches
}
