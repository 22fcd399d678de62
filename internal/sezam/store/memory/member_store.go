package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sezam-club/sezam/internal/sezam/store"
	"github.com/sezam-club/sezam/internal/sezam/types"
)

type MemberStore struct {
	mu          sync.RWMutex
	members     []types.Member
	lastUpdated string
}

func NewMemberStore(members []types.Member) *MemberStore {
	s := &MemberStore{}
	for _, m := range members {
		m.ExternalID = strings.TrimSpace(m.ExternalID)
		if m.ExternalID != "" {
			s.members = append(s.members, m)
		}
	}
	return s
}

func (s *MemberStore) List(_ context.Context) ([]types.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Member, len(s.members))
	copy(out, s.members)
	return out, nil
}

func (s *MemberStore) Exists(_ context.Context, externalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.members {
		if m.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemberStore) UpdateExternalID(_ context.Context, oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ExternalID == oldID {
			s.members[i].ExternalID = newID
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *MemberStore) LastUpdated(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated, nil
}

func (s *MemberStore) TouchLastUpdated(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = time.Now().UTC().Format(time.RFC3339Nano)
	return nil
}

// SetLastUpdated pins the marker to a known value. Test-only helper.
func (s *MemberStore) SetLastUpdated(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = v
}
