package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sezam-club/sezam/internal/sezam/store"
)

// Ledger deduplicates inbound events by id. The chat platform redelivers
// events, sometimes concurrently; a duplicate that slips through opens the
// door twice, so the ledger prefers a rare false positive over any false
// negative.
type Ledger struct {
	store    store.LedgerStore
	lockWait time.Duration
}

func NewLedger(st store.LedgerStore, lockWait time.Duration) *Ledger {
	if lockWait <= 0 {
		lockWait = 20 * time.Second
	}
	return &Ledger{store: st, lockWait: lockWait}
}

// RegisterIfNew reports whether eventID was already recorded. The first call
// for an id returns false exactly once across all concurrent callers and has
// the id durably recorded by the time it returns; everyone else gets true.
//
// The containment read is lock-free; only absent ids pay for the serialized
// append, and the append re-checks under the lock so two racing first calls
// cannot both win. If the lock cannot be taken within the bounded wait the
// call fails with ErrLockTimeout and the caller must treat idempotency as
// unguaranteed.
func (l *Ledger) RegisterIfNew(ctx context.Context, eventID string) (bool, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return false, ErrInvalidEventID
	}

	seen, err := l.store.Contains(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("ledger read %s: %w", eventID, err)
	}
	if seen {
		return true, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, l.lockWait)
	defer cancel()

	inserted, err := l.store.Record(lockCtx, eventID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, fmt.Errorf("ledger append %s: %w", eventID, ErrLockTimeout)
		}
		return false, fmt.Errorf("ledger append %s: %w", eventID, err)
	}
	return !inserted, nil
}
