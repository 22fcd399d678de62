package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/sezam-club/sezam/internal/db"
	"github.com/sezam-club/sezam/internal/sezam/store"
	"github.com/sezam-club/sezam/internal/sezam/types"
)

type MemberStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewMemberStore(db *sql.DB, writer *dbpkg.Worker) *MemberStore {
	return &MemberStore{db: db, writer: writer}
}

func (s *MemberStore) List(ctx context.Context) ([]types.Member, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, group_tag, role, vk_id, pin_hash, card_hash
FROM members
ORDER BY id;
`)
	if err != nil {
		return nil, fmt.Errorf("List query: %w", err)
	}
	defer rows.Close()

	var out []types.Member
	for rows.Next() {
		var m types.Member
		if err := rows.Scan(&m.Name, &m.GroupTag, &m.Role, &m.ExternalID, &m.PINHash, &m.CardHash); err != nil {
			return nil, fmt.Errorf("List scan: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List rows: %w", err)
	}
	return out, nil
}

// Exists is the authorization probe. Always a live query — access decisions
// must never run against a stale view of the registry.
func (s *MemberStore) Exists(ctx context.Context, externalID string) (bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return false, nil
	}

	var one int
	err := s.db.QueryRowContext(ctx, `
SELECT 1 FROM members WHERE vk_id = ?;
`, externalID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Exists query: %w", err)
	}
	return true, nil
}

func (s *MemberStore) UpdateExternalID(ctx context.Context, oldID, newID string) error {
	oldID = strings.TrimSpace(oldID)
	newID = strings.TrimSpace(newID)
	if oldID == "" || newID == "" {
		return fmt.Errorf("UpdateExternalID: empty id")
	}
	nowMs := time.Now().UTC().UnixMilli()

	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
UPDATE members
SET vk_id = ?,
    updated_at_ms = ?
WHERE vk_id = ?;
`, newID, nowMs, oldID)
		if err != nil {
			return fmt.Errorf("UpdateExternalID update: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("UpdateExternalID %s: %w", oldID, store.ErrNotFound)
		}
		return nil
	})
}

func (s *MemberStore) LastUpdated(ctx context.Context) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `
SELECT value FROM meta WHERE key = 'last_updated';
`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("LastUpdated marker: %w", store.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("LastUpdated query: %w", err)
	}
	return v, nil
}

// TouchLastUpdated is an intentionally unlocked single-cell write: concurrent
// touches race, but the marker is monotonically refreshed either way.
func (s *MemberStore) TouchLastUpdated(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO meta(key, value) VALUES ('last_updated', ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;
`, now)
	if err != nil {
		return fmt.Errorf("TouchLastUpdated: %w", err)
	}
	return nil
}
