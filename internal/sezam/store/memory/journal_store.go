package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sezam-club/sezam/internal/sezam/store"
)

type JournalStore struct {
	mu   sync.Mutex
	recs []store.JournalRecord
}

func NewJournalStore() *JournalStore {
	return &JournalStore{}
}

func (s *JournalStore) Append(_ context.Context, rec store.JournalRecord) error {
	if rec.LoggedAt.IsZero() {
		rec.LoggedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *JournalStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs), nil
}

func (s *JournalStore) EvictOldest(_ context.Context, n int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return 0, nil
	}
	if n > len(s.recs) {
		n = len(s.recs)
	}
	s.recs = append([]store.JournalRecord(nil), s.recs[n:]...)
	return int64(n), nil
}

func (s *JournalStore) Recent(_ context.Context, limit int) ([]store.JournalRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.JournalRecord
	for i := len(s.recs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.recs[i])
	}
	return out, nil
}

// Records returns a copy of everything appended, oldest first. Test-only helper.
func (s *JournalStore) Records() []store.JournalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.JournalRecord, len(s.recs))
	copy(out, s.recs)
	return out
}
