package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/sezam-club/sezam/internal/db"
	"github.com/sezam-club/sezam/internal/sezam/store"
)

type JournalStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewJournalStore(db *sql.DB, writer *dbpkg.Worker) *JournalStore {
	return &JournalStore{db: db, writer: writer}
}

func (s *JournalStore) Append(ctx context.Context, rec store.JournalRecord) error {
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = time.Now().UTC()
	}

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO journal(logged_at_ms, trace_color, source, level, event, details)
VALUES (?, ?, ?, ?, ?, ?);
`,
			rec.LoggedAt.UTC().UnixMilli(), rec.TraceColor, rec.Source,
			rec.Level, rec.Event, rec.Details,
		); err != nil {
			return fmt.Errorf("Append insert: %w", err)
		}
		return nil
	})
}

func (s *JournalStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM journal;
`).Scan(&n); err != nil {
		return 0, fmt.Errorf("Count query: %w", err)
	}
	return n, nil
}

// EvictOldest deletes the n oldest rows in one pass. Row ids are insertion-
// ordered, so lowest-id-first is oldest-first.
func (s *JournalStore) EvictOldest(ctx context.Context, n int) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	var deleted int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
DELETE FROM journal
WHERE id IN (SELECT id FROM journal ORDER BY id ASC LIMIT ?);
`, n)
		if err != nil {
			return fmt.Errorf("EvictOldest: %w", err)
		}
		deleted, _ = res.RowsAffected()
		return nil
	})
	return deleted, err
}

// Recent returns up to limit rows, newest first.
func (s *JournalStore) Recent(ctx context.Context, limit int) ([]store.JournalRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT logged_at_ms, trace_color, source, level, event, details
FROM journal
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("Recent query: %w", err)
	}
	defer rows.Close()

	var out []store.JournalRecord
	for rows.Next() {
		var rec store.JournalRecord
		var ms int64
		if err := rows.Scan(&ms, &rec.TraceColor, &rec.Source, &rec.Level, &rec.Event, &rec.Details); err != nil {
			return nil, fmt.Errorf("Recent scan: %w", err)
		}
		rec.LoggedAt = time.UnixMilli(ms).UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Recent rows: %w", err)
	}
	return out, nil
}
