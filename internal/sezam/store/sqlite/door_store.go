package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sezam-club/sezam/internal/sezam/store"
)

// DoorStore keeps the shared door-open flag in the meta table. All three
// operations are deliberately plain single-statement writes, no worker
// involved: Set collapses concurrent opens to the same value, and ClearIfSet
// is atomic by itself, so extra locking buys nothing here.
type DoorStore struct {
	db *sql.DB
}

func NewDoorStore(db *sql.DB) *DoorStore {
	return &DoorStore{db: db}
}

func (s *DoorStore) Get(ctx context.Context) (bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM meta WHERE key = 'door_open_flag';
`).Scan(&v)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("door flag: %w", store.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("Get query: %w", err)
	}
	return v == "1", nil
}

func (s *DoorStore) Set(ctx context.Context, open bool) error {
	v := "0"
	if open {
		v = "1"
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO meta(key, value) VALUES ('door_open_flag', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;
`, v)
	if err != nil {
		return fmt.Errorf("Set: %w", err)
	}
	return nil
}

// ClearIfSet resets the flag only if it is currently set, in one statement.
// The rows-affected count tells the caller whether it won the claim, which
// is what gives waiters their at-most-one-consumer guarantee.
func (s *DoorStore) ClearIfSet(ctx context.Context) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE meta SET value = '0' WHERE key = 'door_open_flag' AND value = '1';
`)
	if err != nil {
		return false, fmt.Errorf("ClearIfSet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ClearIfSet rows: %w", err)
	}
	return n > 0, nil
}
