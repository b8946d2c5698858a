package store

import (
	"regexp"
	"strings"

	codexerrors "codex/internal/errors"
)

// ftsToken extracts the word characters the match query is built from.
var ftsToken = regexp.MustCompile(`[A-Za-z0-9_]+`)

// QueryFulltext runs a relevance-ranked search over the rule text fields.
// Results are ordered by BM25 score; ties break toward higher priority.
// Free text is reduced to quoted OR'd tokens, so user input cannot inject
// FTS5 operators; residual engine errors surface as QueryMalformed.
func (s *Store) QueryFulltext(text string, limit int) ([]RuleRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	match := buildMatchQuery(text)
	if match == "" {
		return nil, nil
	}

	rows, err := s.db.Query(`
		SELECT r.name, r.category, r.priority, r.description, r.rationale, r.fix_template, r.example_good, r.example_bad,
			bm25(rules_fts) AS rank
		FROM rules_fts f
		JOIN rules r ON f.rowid = r.id
		WHERE rules_fts MATCH ?
		ORDER BY rank ASC, r.priority_weight DESC
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, codexerrors.New(codexerrors.QueryMalformed, "full-text query failed", err).
			WithDetails(map[string]string{"query": text})
	}
	defer rows.Close()

	return scanRuleRows(rows, true)
}

// buildMatchQuery turns free text into a safe FTS5 MATCH expression:
// each token quoted, tokens OR'd.
func buildMatchQuery(text string) string {
	tokens := ftsToken.FindAllString(text, -1)
	if len(tokens) == 0 {
		return ""
	}

	quoted := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		quoted = append(quoted, `"`+tok+`"`)
	}
	return strings.Join(quoted, " OR ")
}
