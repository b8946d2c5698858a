package store

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 1

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createRulesTables(tx); err != nil {
			return err
		}
		if err := createScansTable(tx); err != nil {
			return err
		}
		if err := createViolationsTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", map[string]interface{}{
			"version": currentSchemaVersion,
		})

		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", map[string]interface{}{
			"version": version,
		})
		return nil
	}

	db.logger.Info("Running database migrations", map[string]interface{}{
		"from_version": version,
		"to_version":   currentSchemaVersion,
	})

	// Add migration functions here as the schema evolves

	return nil
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createRulesTables creates the rules table, its FTS5 shadow index, and
// the triggers that keep them atomically in sync. Every commit touching
// rules is reflected in rules_fts within the same transaction.
func createRulesTables(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS rules (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			category TEXT NOT NULL,
			priority TEXT NOT NULL,
			priority_weight INTEGER NOT NULL,
			description TEXT NOT NULL,
			rationale TEXT,
			detection_pattern TEXT,
			fix_template TEXT,
			example_good TEXT,
			example_bad TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rules table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_rules_priority_weight ON rules(priority_weight)",
		"CREATE INDEX IF NOT EXISTS idx_rules_category ON rules(category)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	_, err = tx.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS rules_fts USING fts5(
			name,
			category,
			description,
			rationale,
			detection_pattern,
			fix_template,
			example_good,
			example_bad,
			content='rules',
			content_rowid='id'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create rules_fts table: %w", err)
	}

	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS rules_fts_ai AFTER INSERT ON rules BEGIN
			INSERT INTO rules_fts(rowid, name, category, description, rationale, detection_pattern, fix_template, example_good, example_bad)
			VALUES (new.id, new.name, new.category, new.description, new.rationale, new.detection_pattern, new.fix_template, new.example_good, new.example_bad);
		END`,

		`CREATE TRIGGER IF NOT EXISTS rules_fts_au AFTER UPDATE ON rules BEGIN
			INSERT INTO rules_fts(rules_fts, rowid, name, category, description, rationale, detection_pattern, fix_template, example_good, example_bad)
			VALUES ('delete', old.id, old.name, old.category, old.description, old.rationale, old.detection_pattern, old.fix_template, old.example_good, old.example_bad);
			INSERT INTO rules_fts(rowid, name, category, description, rationale, detection_pattern, fix_template, example_good, example_bad)
			VALUES (new.id, new.name, new.category, new.description, new.rationale, new.detection_pattern, new.fix_template, new.example_good, new.example_bad);
		END`,

		`CREATE TRIGGER IF NOT EXISTS rules_fts_ad AFTER DELETE ON rules BEGIN
			INSERT INTO rules_fts(rules_fts, rowid, name, category, description, rationale, detection_pattern, fix_template, example_good, example_bad)
			VALUES ('delete', old.id, old.name, old.category, old.description, old.rationale, old.detection_pattern, old.fix_template, old.example_good, old.example_bad);
		END`,
	}

	for _, trigger := range triggers {
		if _, err := tx.Exec(trigger); err != nil {
			return fmt.Errorf("failed to create trigger: %w", err)
		}
	}

	return nil
}

// createScansTable creates the scans table
func createScansTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS scans (
			scan_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			target_path TEXT NOT NULL,
			files_scanned INTEGER NOT NULL DEFAULT 0,
			files_skipped INTEGER NOT NULL DEFAULT 0,
			violation_count INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create scans table: %w", err)
	}

	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at)")
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// createViolationsTable creates the violations table
func createViolationsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS violations (
			scan_id TEXT NOT NULL,
			file_path TEXT NOT NULL,
			line_number INTEGER NOT NULL,
			rule_name TEXT NOT NULL,
			category TEXT NOT NULL,
			severity TEXT NOT NULL,
			severity_weight INTEGER NOT NULL,
			code_line TEXT NOT NULL,
			confidence REAL NOT NULL,
			fix TEXT,

			PRIMARY KEY (scan_id, file_path, line_number, rule_name),
			FOREIGN KEY (scan_id) REFERENCES scans(scan_id) ON DELETE CASCADE
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create violations table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_violations_scan_id ON violations(scan_id)",
		"CREATE INDEX IF NOT EXISTS idx_violations_file_path ON violations(file_path)",
		"CREATE INDEX IF NOT EXISTS idx_violations_rule_name ON violations(rule_name)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
