package query

import (
	"encoding/json"
	"fmt"
	"strings"

	codexerrors "codex/internal/errors"
	"codex/internal/rules"
)

// Format selects how query results are rendered.
type Format string

const (
	// FormatMarkdown renders a human-readable report grouped by priority.
	FormatMarkdown Format = "markdown"
	// FormatJSON renders the structured records verbatim.
	FormatJSON Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", codexerrors.New(codexerrors.ConfigInvalid,
			fmt.Sprintf("unknown output format %q (markdown, json)", s), nil)
	}
}

// Render formats a query result.
func Render(result *Result, format Format) (string, error) {
	if format == FormatJSON {
		return renderJSON(result)
	}
	return renderMatchesMarkdown(result), nil
}

// RenderSearch formats a semantic search result.
func RenderSearch(result *SearchResult, format Format) (string, error) {
	if format == FormatJSON {
		return renderJSON(result)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", result.QueryUsed)
	if result.Intent != "" {
		fmt.Fprintf(&b, "Intent: %s\n", result.Intent)
	}
	b.WriteByte('\n')
	b.WriteString(renderMatchesMarkdown(&Result{Matches: result.Matches}))
	fmt.Fprintf(&b, "\n%s\n", result.Summary)
	return b.String(), nil
}

func renderMatchesMarkdown(result *Result) string {
	if result.Diagnostic != "" {
		return fmt.Sprintf("No results: %s\n", result.Diagnostic)
	}
	if len(result.Matches) == 0 {
		return "No matching rules.\n"
	}

	grouped := make(map[rules.Priority][]Match)
	for _, m := range result.Matches {
		grouped[m.Priority] = append(grouped[m.Priority], m)
	}

	var b strings.Builder
	for _, p := range rules.PrioritiesDescending() {
		matches := grouped[p]
		if len(matches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n", p)
		for _, m := range matches {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", m.Name, m.Category, m.Description)
			if m.Fix != "" {
				fmt.Fprintf(&b, "  - Fix: %s\n", m.Fix)
			}
			if m.Rationale != "" {
				fmt.Fprintf(&b, "  - Why: %s\n", m.Rationale)
			}
			if m.Snippet != "" {
				fmt.Fprintf(&b, "  - Avoid: `%s`\n", m.Snippet)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", codexerrors.New(codexerrors.InternalError, "failed to encode result", err)
	}
	return string(data) + "\n", nil
}
