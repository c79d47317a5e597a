// Package sqlite implements the conversation store on SQLite using
// modernc.org/sqlite (pure Go, no CGO) with WAL mode. Messages and
// context summaries live in one database file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aeris-bot/aeris/internal/store"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000

// timeLayout matches the strftime default used in the schema so string
// comparisons on period_end stay chronologically correct.
const timeLayout = "2006-01-02T15:04:05.000Z"

// Store implements store.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) a SQLite database at path and migrates
// the schema. The database uses WAL mode, a 5 s busy timeout, and a
// single connection (SQLite serialises writes).
func Open(path string) (*Store, error) {
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

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AppendMessage persists one dialogue turn.
func (s *Store) AppendMessage(ctx context.Context, userID int64, persona, role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, persona, role, content) VALUES (?, ?, ?, ?)`,
		userID, persona, role, content,
	)
	if err != nil {
		return fmt.Errorf("sqlite: append message: %w", err)
	}
	return nil
}

// RecentMessages returns the n most recent messages in chronological
// order. Timestamps come back as the TEXT stored in created_at; parsing
// is the context engine's job.
func (s *Store) RecentMessages(ctx context.Context, userID int64, persona string, n int) ([]store.Record, error) {
	query := `SELECT id, role, content, created_at FROM messages
		WHERE user_id = ? AND persona = ? ORDER BY id DESC`
	args := []any{userID, persona}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: recent messages: %w", err)
	}
	defer rows.Close()

	var recs []store.Record
	for rows.Next() {
		var (
			rec       store.Record
			createdAt string
		)
		if err := rows.Scan(&rec.ID, &rec.Role, &rec.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan message: %w", err)
		}
		rec.Persona = persona
		rec.CreatedAt = createdAt
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate messages: %w", err)
	}

	// Query is newest-first for the LIMIT; flip back to chronological.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// MessageCount returns the number of stored messages for (user, persona).
func (s *Store) MessageCount(ctx context.Context, userID int64, persona string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE user_id = ? AND persona = ?`,
		userID, persona,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count messages: %w", err)
	}
	return n, nil
}

// LatestSummaries returns up to limit summaries, newest period_end first.
func (s *Store) LatestSummaries(ctx context.Context, userID int64, persona string, limit int) ([]store.Summary, error) {
	if limit <= 0 {
		limit = 1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, persona, summary_text, message_count, period_start, period_end, tokens_saved, created_at
		FROM context_summaries
		WHERE user_id = ? AND persona = ?
		ORDER BY period_end DESC LIMIT ?`,
		userID, persona, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest summaries: %w", err)
	}
	defer rows.Close()

	var sums []store.Summary
	for rows.Next() {
		var (
			sum                 store.Summary
			start, end, created string
		)
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.Persona, &sum.SummaryText,
			&sum.MessageCount, &start, &end, &sum.TokensSaved, &created); err != nil {
			return nil, fmt.Errorf("sqlite: scan summary: %w", err)
		}
		sum.PeriodStart = parseStoredTime(start)
		sum.PeriodEnd = parseStoredTime(end)
		sum.CreatedAt = parseStoredTime(created)
		sums = append(sums, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate summaries: %w", err)
	}
	return sums, nil
}

// SaveSummary persists a new summary.
func (s *Store) SaveSummary(ctx context.Context, sum store.Summary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO context_summaries (user_id, persona, summary_text, message_count, period_start, period_end, tokens_saved)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sum.UserID, sum.Persona, sum.SummaryText, sum.MessageCount,
		sum.PeriodStart.UTC().Format(timeLayout),
		sum.PeriodEnd.UTC().Format(timeLayout),
		sum.TokensSaved,
	)
	if err != nil {
		return fmt.Errorf("sqlite: save summary: %w", err)
	}
	return nil
}

// DeleteSummariesBefore removes summaries with period_end older than
// cutoff. persona == "" matches all personas.
func (s *Store) DeleteSummariesBefore(ctx context.Context, userID int64, persona string, cutoff time.Time) (int, error) {
	query := `DELETE FROM context_summaries WHERE user_id = ? AND period_end < ?`
	args := []any{userID, cutoff.UTC().Format(timeLayout)}
	if persona != "" {
		query += ` AND persona = ?`
		args = append(args, persona)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete summaries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return int(n), nil
}

// ExpireSummaries removes summaries with period_end older than cutoff
// across all users and personas.
func (s *Store) ExpireSummaries(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM context_summaries WHERE period_end < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: expire summaries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	return int(n), nil
}

// SummaryCount returns the number of stored summaries for (user, persona).
func (s *Store) SummaryCount(ctx context.Context, userID int64, persona string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM context_summaries WHERE user_id = ? AND persona = ?`,
		userID, persona,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count summaries: %w", err)
	}
	return n, nil
}

// parseStoredTime parses the schema's strftime format, tolerating plain
// RFC 3339 as well. Unparseable values produce the zero time.
func parseStoredTime(s string) time.Time {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}
