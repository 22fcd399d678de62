package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sezam-club/sezam/internal/hash"
)

type SeedDevOptions struct {
	// Optional: external ids to register as members in dev.
	MemberIDs []string
}

// SeedDev inserts a starter member so the message_new happy path works out of
// the box in a dev environment. Never run in prod — the registry there is
// maintained by admin tooling only.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	now := time.Now().UTC().UnixMilli()

	seed := func(externalID, name string) error {
		_, err := db.ExecContext(ctx, `
INSERT INTO members(
  name, group_tag, role, vk_id, pin_hash, card_hash,
  created_at_ms, updated_at_ms
) VALUES (?, 'dev', 'member', ?, ?, ?, ?, ?)
ON CONFLICT(vk_id) DO UPDATE SET
  name = excluded.name,
  updated_at_ms = excluded.updated_at_ms;
`,
			name, externalID, hash.Digest("1234"), hash.Digest("DEADBEEF"), now, now,
		)
		if err != nil {
			return fmt.Errorf("seed member %s: %w", externalID, err)
		}
		return nil
	}

	if err := seed("42", "Dev Member"); err != nil {
		return err
	}
	for i, id := range opt.MemberIDs {
		if err := seed(id, fmt.Sprintf("Dev Member %d", i+2)); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, `
UPDATE meta SET value = ? WHERE key = 'last_updated';
`, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("seed last_updated: %w", err)
	}

	return nil
}
