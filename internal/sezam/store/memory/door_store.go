package memory

import (
	"context"
	"sync"
)

type DoorStore struct {
	mu   sync.Mutex
	open bool
}

func NewDoorStore() *DoorStore {
	return &DoorStore{}
}

func (s *DoorStore) Get(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open, nil
}

func (s *DoorStore) Set(_ context.Context, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
	return nil
}

func (s *DoorStore) ClearIfSet(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false, nil
	}
	s.open = false
	return true, nil
}
