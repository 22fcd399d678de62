package store

import (
	"context"
	"errors"
	"time"

	"github.com/sezam-club/sezam/internal/sezam/types"
)

// ErrNotFound is returned when a named resource the store is expected to hold
// (a meta marker, a member row addressed by id) does not exist. Callers must
// treat it as a hard error, never as an empty default.
var ErrNotFound = errors.New("store: not found")

// MemberStore is the access registry. Rows are edited out of band; the server
// reads them for authorization and roster queries, and only the link resolver
// rewrites external ids.
type MemberStore interface {
	List(ctx context.Context) ([]types.Member, error)
	Exists(ctx context.Context, externalID string) (bool, error)
	UpdateExternalID(ctx context.Context, oldID, newID string) error

	// LastUpdated returns the registry change-detection marker.
	// TouchLastUpdated bumps it to the current time.
	LastUpdated(ctx context.Context) (string, error)
	TouchLastUpdated(ctx context.Context) error
}

// LedgerStore persists processed callback event ids, append-only.
type LedgerStore interface {
	// Contains is a plain read and takes no write lock.
	Contains(ctx context.Context, eventID string) (bool, error)

	// Record appends eventID unless it is already present. Returns true if
	// this call inserted the id, false if some earlier call beat it to it.
	Record(ctx context.Context, eventID string) (inserted bool, err error)
}

// DoorStore holds the single shared door-open flag.
type DoorStore interface {
	Get(ctx context.Context) (bool, error)
	Set(ctx context.Context, open bool) error

	// ClearIfSet atomically resets the flag and reports whether it was set.
	// At most one concurrent caller observes true per open request.
	ClearIfSet(ctx context.Context) (bool, error)
}

// JournalRecord is one row of the domain journal.
type JournalRecord struct {
	LoggedAt   time.Time
	TraceColor string
	Source     string
	Level      string
	Event      string
	Details    string
}

// JournalStore persists journal rows, newest first on read.
type JournalStore interface {
	Append(ctx context.Context, rec JournalRecord) error
	Count(ctx context.Context) (int, error)

	// EvictOldest deletes the n oldest rows and returns how many went away.
	EvictOldest(ctx context.Context, n int) (int64, error)

	Recent(ctx context.Context, limit int) ([]JournalRecord, error)
}
