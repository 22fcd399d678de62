package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sezam-club/sezam/internal/metrics"
	"github.com/sezam-club/sezam/internal/sezam/store"
)

// DoorSignal bridges the bot (asynchronous producer) and the physical
// controller's long-poll (consumer) over one shared boolean. Opens collapse:
// any number of concurrent RequestOpen calls produce a single flag set, and
// exactly the waiter that wins the store's clear-if-set claims it.
//
// Waiters are woken through an in-process channel; the poll ticker stays as a
// fallback so a flag set by anything other than this process (an operator
// flipping the row by hand) is still picked up within one interval.
type DoorSignal struct {
	store   store.DoorStore
	poll    time.Duration
	notify  chan struct{}
	metrics *metrics.Collector
}

func NewDoorSignal(st store.DoorStore, poll time.Duration, mc *metrics.Collector) *DoorSignal {
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &DoorSignal{
		store:   st,
		poll:    poll,
		notify:  make(chan struct{}, 1),
		metrics: mc,
	}
}

// RequestOpen sets the flag. Idempotent: concurrent calls all collapse to
// the same set state.
func (d *DoorSignal) RequestOpen(ctx context.Context) error {
	if err := d.store.Set(ctx, true); err != nil {
		return fmt.Errorf("door set: %w", err)
	}

	select {
	case d.notify <- struct{}{}:
	default:
	}
	return nil
}

// WaitForOpenThenClear blocks up to budget for the flag to become set, and
// clears it on observation. Returns true only for the call that actually
// claimed the open; a timeout returns false with the state untouched.
func (d *DoorSignal) WaitForOpenThenClear(ctx context.Context, budget time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	ticker := time.NewTicker(d.poll)
	defer ticker.Stop()

	for {
		claimed, err := d.store.ClearIfSet(ctx)
		if err != nil {
			if ctx.Err() != nil {
				d.metrics.RecordDoorWait(false)
				return false, nil
			}
			return false, fmt.Errorf("door clear-if-set: %w", err)
		}
		if claimed {
			d.metrics.RecordDoorWait(true)
			return true, nil
		}

		select {
		case <-ctx.Done():
			d.metrics.RecordDoorWait(false)
			return false, nil
		case <-d.notify:
		case <-ticker.C:
		}
	}
}
