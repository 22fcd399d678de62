package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/sezam-club/sezam/internal/db"
)

// LedgerStore is the append-only record of processed event ids. Reads go
// straight to the database; appends are serialized through the write worker
// so two concurrent deliveries of the same event cannot both insert.
type LedgerStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewLedgerStore(db *sql.DB, writer *dbpkg.Worker) *LedgerStore {
	return &LedgerStore{db: db, writer: writer}
}

func (s *LedgerStore) Contains(ctx context.Context, eventID string) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, nil
	}

	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM processed_events WHERE event_id = ?;
`, eventID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Contains query: %w", err)
	}
	return true, nil
}

func (s *LedgerStore) Record(ctx context.Context, eventID string) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, fmt.Errorf("Record: empty event id")
	}
	nowMs := time.Now().UTC().UnixMilli()

	var inserted bool
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO processed_events(event_id, recorded_at_ms)
VALUES (?, ?);
`, eventID, nowMs)
		if err != nil {
			return fmt.Errorf("Record insert: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted = n > 0
		return nil
	})
	return inserted, err
}
