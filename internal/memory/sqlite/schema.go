package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the fact tables.
// All use IF NOT EXISTS for idempotent re-application. The fact store
// keeps its own version table so it can share a database file with the
// conversation store.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS facts (
		id         TEXT    PRIMARY KEY,
		user_id    INTEGER NOT NULL,
		persona    TEXT    NOT NULL,
		content    TEXT    NOT NULL,
		created_at TEXT    NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_facts_owner ON facts(user_id, persona)`,

	`CREATE VIRTUAL TABLE IF NOT EXISTS facts_fts USING fts5(
		content,
		content=facts,
		content_rowid=rowid
	)`,

	`CREATE TRIGGER IF NOT EXISTS facts_ai AFTER INSERT ON facts BEGIN
		INSERT INTO facts_fts(rowid, content) VALUES (new.rowid, new.content);
	END`,

	`CREATE TRIGGER IF NOT EXISTS facts_ad AFTER DELETE ON facts BEGIN
		INSERT INTO facts_fts(facts_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
	END`,

	`CREATE TRIGGER IF NOT EXISTS facts_au AFTER UPDATE ON facts BEGIN
		INSERT INTO facts_fts(facts_fts, rowid, content) VALUES ('delete', old.rowid, old.content);
		INSERT INTO facts_fts(rowid, content) VALUES (new.rowid, new.content);
	END`,
}

// migrate creates or updates the fact schema to the latest version.
func migrate(db *sql.DB) error {
	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS memory_schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("sqlite: create memory_schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM memory_schema_version").Scan(&current); err != nil {
		return fmt.Errorf("sqlite: read memory schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO memory_schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("sqlite: record memory schema version: %w", err)
	}

	return nil
}
