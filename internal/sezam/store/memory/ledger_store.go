package memory

import (
	"context"
	"strings"
	"sync"
	"time"
)

// LedgerStore mirrors the sqlite ledger's semantics in memory: lock-free-ish
// reads, serialized inserts. RecordDelay lets tests simulate a slow write
// lock to exercise the bounded-wait path.
type LedgerStore struct {
	mu  sync.Mutex
	ids map[string]struct{}

	RecordDelay time.Duration
}

func NewLedgerStore() *LedgerStore {
	return &LedgerStore{ids: make(map[string]struct{})}
}

func (s *LedgerStore) Contains(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[strings.TrimSpace(eventID)]
	return ok, nil
}

func (s *LedgerStore) Record(ctx context.Context, eventID string) (bool, error) {
	if s.RecordDelay > 0 {
		select {
		case <-time.After(s.RecordDelay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eventID = strings.TrimSpace(eventID)
	if _, ok := s.ids[eventID]; ok {
		return false, nil
	}
	s.ids[eventID] = struct{}{}
	return true, nil
}

// Size returns how many ids are recorded. Test-only helper.
func (s *LedgerStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}
