// Package sqlite implements the long-term fact store on SQLite using
// modernc.org/sqlite with an FTS5 index over fact content. It can share
// a database file with the conversation store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aeris-bot/aeris/internal/memory"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000

// FactStore implements memory.Store backed by SQLite.
type FactStore struct {
	db *sql.DB
}

// Compile-time interface check.
var _ memory.Store = (*FactStore)(nil)

// Open opens (creating if needed) a SQLite database at path and migrates
// the fact schema. The database uses WAL mode, a 5 s busy timeout, and a
// single connection (SQLite serialises writes).
func Open(path string) (*FactStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.TODO()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &FactStore{db: db}, nil
}

// Close closes the underlying database.
func (s *FactStore) Close() error {
	return s.db.Close()
}

// Index stores a fact. If a fact with the same ID exists it is replaced
// (the FTS5 index is updated via triggers).
func (s *FactStore) Index(ctx context.Context, fact memory.Fact) error {
	createdAt := fact.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO facts (id, user_id, persona, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		fact.ID, fact.UserID, fact.Persona, fact.Content,
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: index fact: %w", err)
	}

	return nil
}

// RecentFacts returns up to limit facts for (user, persona), newest first.
func (s *FactStore) RecentFacts(ctx context.Context, userID int64, persona string, limit int) ([]memory.Fact, error) {
	query := `SELECT id, user_id, persona, content, created_at FROM facts
		WHERE user_id = ? AND persona = ? ORDER BY rowid DESC`
	args := []any{userID, persona}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFacts(rows)
}

// Search retrieves up to topK facts for (user, persona) matching the
// query via FTS5 full-text search.
func (s *FactStore) Search(ctx context.Context, userID int64, persona, query string, topK int) ([]memory.Fact, error) {
	if query == "" || topK <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.persona, f.content, f.created_at
		FROM facts_fts
		JOIN facts f ON f.rowid = facts_fts.rowid
		WHERE facts_fts MATCH ? AND f.user_id = ? AND f.persona = ?
		ORDER BY rank
		LIMIT ?`,
		query, userID, persona, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: search facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanFacts(rows)
}

// Delete removes a fact by ID. Returns memory.ErrFactNotFound if the
// fact does not exist.
func (s *FactStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM facts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlite: delete fact: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return memory.ErrFactNotFound
	}

	return nil
}

// Len returns the total number of stored facts.
func (s *FactStore) Len() int {
	var count int
	if err := s.db.QueryRowContext(context.TODO(), "SELECT COUNT(*) FROM facts").Scan(&count); err != nil {
		return 0
	}
	return count
}

func scanFacts(rows *sql.Rows) ([]memory.Fact, error) {
	var facts []memory.Fact
	for rows.Next() {
		var (
			fact         memory.Fact
			createdAtStr string
		)

		if err := rows.Scan(&fact.ID, &fact.UserID, &fact.Persona, &fact.Content, &createdAtStr); err != nil {
			return nil, fmt.Errorf("sqlite: scan fact: %w", err)
		}

		if createdAtStr != "" {
			t, err := time.Parse(time.RFC3339Nano, createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("sqlite: parse created_at %q: %w", createdAtStr, err)
			}
			fact.CreatedAt = t
		}

		facts = append(facts, fact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: scan facts rows: %w", err)
	}

	return facts, nil
}
