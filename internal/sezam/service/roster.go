package service

import (
	"context"
	"fmt"

	"github.com/sezam-club/sezam/internal/sezam/store"
	"github.com/sezam-club/sezam/internal/sezam/types"
)

// Roster serves the controller's change-detected member snapshot.
type Roster struct {
	members store.MemberStore
}

func NewRoster(members store.MemberStore) *Roster {
	return &Roster{members: members}
}

// Since compares the caller's token against the registry's LastUpdated
// marker. An up-to-date token gets a nil snapshot (nothing changed); a stale
// one gets the full current roster. The marker is returned either way so the
// caller can store it for the next query.
func (r *Roster) Since(ctx context.Context, token string) ([]types.Member, string, error) {
	marker, err := r.members.LastUpdated(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("roster marker: %w", err)
	}
	if token == marker {
		return nil, marker, nil
	}

	members, err := r.members.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("roster list: %w", err)
	}
	return members, marker, nil
}
