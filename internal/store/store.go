package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	codexerrors "codex/internal/errors"
	"codex/internal/logging"
	"codex/internal/rules"
	"codex/internal/scan"
)

// Store provides scan and rule persistence over a DB.
type Store struct {
	db     *DB
	logger *logging.Logger
}

// NewStore creates a store over an open database.
func NewStore(db *DB, logger *logging.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// RuleRecord is a persisted rule row, as returned by queries.
type RuleRecord struct {
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Priority    rules.Priority `json:"priority"`
	Description string         `json:"description"`
	Rationale   string         `json:"rationale,omitempty"`
	FixTemplate string         `json:"fix,omitempty"`
	ExampleGood string         `json:"exampleGood,omitempty"`
	ExampleBad  string         `json:"exampleBad,omitempty"`
	Rank        float64        `json:"rank,omitempty"` // BM25 score for full-text results
}

// ScanRecord is a persisted scan row.
type ScanRecord struct {
	ScanID         string    `json:"scanId"`
	CreatedAt      time.Time `json:"createdAt"`
	TargetPath     string    `json:"targetPath"`
	FilesScanned   int       `json:"filesScanned"`
	FilesSkipped   int       `json:"filesSkipped"`
	ViolationCount int       `json:"violationCount"`
}

// SyncRules replaces the persisted rule table with the loaded set. The
// FTS index follows through the sync triggers in the same transaction.
func (s *Store) SyncRules(set *rules.Set) error {
	err := s.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM rules"); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO rules (name, category, priority, priority_weight, description, rationale, detection_pattern, fix_template, example_good, example_bad)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range set.All() {
			patterns := make([]string, 0, len(r.Triggers))
			for _, t := range r.Triggers {
				patterns = append(patterns, t.String())
			}
			_, err := stmt.Exec(
				r.Name, r.Category, string(r.Priority), r.Priority.Weight(),
				r.Description, r.Rationale, strings.Join(patterns, "\n"),
				r.Fix.Template, r.Examples.Good, r.Examples.Bad,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return codexerrors.New(codexerrors.StoreFailure, "failed to sync rules", err)
	}

	s.logger.Debug("Rule table synced", map[string]interface{}{
		"rules": set.Len(),
	})
	return nil
}

// RulesInSync reports whether the persisted rule table already matches
// the loaded set, field for field and in order. Read-only callers use it
// to skip SyncRules so queries never take the write lock needlessly.
func (s *Store) RulesInSync(set *rules.Set) (bool, error) {
	rows, err := s.db.Query(`
		SELECT name, category, priority, description, rationale, detection_pattern, fix_template, example_good, example_bad
		FROM rules
		ORDER BY id ASC
	`)
	if err != nil {
		return false, codexerrors.New(codexerrors.StoreFailure, "rule comparison query failed", err)
	}
	defer rows.Close()

	all := set.All()
	i := 0
	for rows.Next() {
		var name, category, priority, description, rationale, detection, fix, good, bad string
		if err := rows.Scan(&name, &category, &priority, &description, &rationale, &detection, &fix, &good, &bad); err != nil {
			return false, err
		}
		if i >= len(all) {
			return false, rows.Err()
		}
		r := all[i]
		patterns := make([]string, 0, len(r.Triggers))
		for _, t := range r.Triggers {
			patterns = append(patterns, t.String())
		}
		if name != r.Name || category != r.Category || priority != string(r.Priority) ||
			description != r.Description || rationale != r.Rationale ||
			detection != strings.Join(patterns, "\n") || fix != r.Fix.Template ||
			good != r.Examples.Good || bad != r.Examples.Bad {
			return false, rows.Err()
		}
		i++
	}
	return i == len(all), rows.Err()
}

// BeginScan allocates an identifier for a scan about to run. Nothing is
// written until Record commits the whole scan atomically.
func (s *Store) BeginScan(target string) string {
	scanID := uuid.New().String()
	s.logger.Debug("Scan started", map[string]interface{}{
		"scan_id": scanID,
		"target":  target,
	})
	return scanID
}

// Record persists a completed scan in a single transaction: either every
// violation for the scan is visible or none is.
func (s *Store) Record(scanID string, result *scan.Result) error {
	err := s.db.WithTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO scans (scan_id, created_at, target_path, files_scanned, files_skipped, violation_count)
			VALUES (?, ?, ?, ?, ?, ?)
		`, scanID, result.ScannedAt.UTC().Format(time.RFC3339), result.Root,
			result.FilesScanned, result.FilesSkipped, len(result.Violations))
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO violations (scan_id, file_path, line_number, rule_name, category, severity, severity_weight, code_line, confidence, fix)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, v := range result.Violations {
			_, err := stmt.Exec(
				scanID, v.FilePath, v.Line, v.RuleName, v.Category,
				string(v.Priority), v.Priority.Weight(), v.CodeLine, v.Confidence, v.Fix,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return codexerrors.New(codexerrors.StoreFailure, "failed to record scan", err)
	}

	s.logger.Info("Scan recorded", map[string]interface{}{
		"scan_id":    scanID,
		"violations": len(result.Violations),
	})
	return nil
}

// QueryByPriority returns persisted rules at or above the given priority,
// ordered by priority rank then category then name.
func (s *Store) QueryByPriority(min rules.Priority) ([]RuleRecord, error) {
	rows, err := s.db.Query(`
		SELECT name, category, priority, description, rationale, fix_template, example_good, example_bad
		FROM rules
		WHERE priority_weight >= ?
		ORDER BY priority_weight DESC, category ASC, id ASC
	`, min.Weight())
	if err != nil {
		return nil, codexerrors.New(codexerrors.StoreFailure, "priority query failed", err)
	}
	defer rows.Close()

	return scanRuleRows(rows, false)
}

// CategorySummary returns violation counts per category for one scan.
func (s *Store) CategorySummary(scanID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT category, COUNT(*) FROM violations
		WHERE scan_id = ?
		GROUP BY category
	`, scanID)
	if err != nil {
		return nil, codexerrors.New(codexerrors.StoreFailure, "summary query failed", err)
	}
	defer rows.Close()

	summary := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		summary[category] = count
	}
	return summary, rows.Err()
}

// LatestScan returns the most recently recorded scan, or nil if no scan
// has been recorded yet.
func (s *Store) LatestScan() (*ScanRecord, error) {
	row := s.db.QueryRow(`
		SELECT scan_id, created_at, target_path, files_scanned, files_skipped, violation_count
		FROM scans
		ORDER BY created_at DESC, scan_id DESC
		LIMIT 1
	`)

	var rec ScanRecord
	var createdAt string
	err := row.Scan(&rec.ScanID, &createdAt, &rec.TargetPath, &rec.FilesScanned, &rec.FilesSkipped, &rec.ViolationCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, codexerrors.New(codexerrors.StoreFailure, "latest scan query failed", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// ScanByID returns one recorded scan.
func (s *Store) ScanByID(scanID string) (*ScanRecord, error) {
	row := s.db.QueryRow(`
		SELECT scan_id, created_at, target_path, files_scanned, files_skipped, violation_count
		FROM scans
		WHERE scan_id = ?
	`, scanID)

	var rec ScanRecord
	var createdAt string
	err := row.Scan(&rec.ScanID, &createdAt, &rec.TargetPath, &rec.FilesScanned, &rec.FilesSkipped, &rec.ViolationCount)
	if err == sql.ErrNoRows {
		return nil, codexerrors.New(codexerrors.ScanNotFound, "scan "+scanID+" not found", nil)
	}
	if err != nil {
		return nil, codexerrors.New(codexerrors.StoreFailure, "scan query failed", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &rec, nil
}

// ViolationsForScan returns every violation of one scan in severity order.
func (s *Store) ViolationsForScan(scanID string) ([]scan.Violation, error) {
	return s.queryViolations(`
		SELECT file_path, line_number, rule_name, category, severity, code_line, confidence, fix
		FROM violations
		WHERE scan_id = ?
		ORDER BY severity_weight DESC, file_path ASC, line_number ASC, rule_name ASC
	`, scanID)
}

// ViolationsForFile returns the latest scan's violations for one file.
func (s *Store) ViolationsForFile(filePath string) ([]scan.Violation, error) {
	latest, err := s.LatestScan()
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}

	return s.queryViolations(`
		SELECT file_path, line_number, rule_name, category, severity, code_line, confidence, fix
		FROM violations
		WHERE scan_id = ? AND file_path = ?
		ORDER BY severity_weight DESC, line_number ASC, rule_name ASC
	`, latest.ScanID, filePath)
}

func (s *Store) queryViolations(query string, args ...interface{}) ([]scan.Violation, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, codexerrors.New(codexerrors.StoreFailure, "violation query failed", err)
	}
	defer rows.Close()

	var violations []scan.Violation
	for rows.Next() {
		var v scan.Violation
		var severity string
		var fix sql.NullString
		if err := rows.Scan(&v.FilePath, &v.Line, &v.RuleName, &v.Category, &severity, &v.CodeLine, &v.Confidence, &fix); err != nil {
			return nil, err
		}
		v.Priority = rules.Priority(severity)
		v.Fix = fix.String
		violations = append(violations, v)
	}
	return violations, rows.Err()
}

// scanRuleRows reads rule rows, optionally with a trailing rank column.
func scanRuleRows(rows *sql.Rows, withRank bool) ([]RuleRecord, error) {
	var records []RuleRecord
	for rows.Next() {
		var r RuleRecord
		var priority string
		var rationale, fix, good, bad sql.NullString

		dest := []interface{}{&r.Name, &r.Category, &priority, &r.Description, &rationale, &fix, &good, &bad}
		if withRank {
			dest = append(dest, &r.Rank)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		r.Priority = rules.Priority(priority)
		r.Rationale = rationale.String
		r.FixTemplate = fix.String
		r.ExampleGood = good.String
		r.ExampleBad = bad.String
		records = append(records, r)
	}
	return records, rows.Err()
}
