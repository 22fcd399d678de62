package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sezam-club/sezam/internal/sezam/store"
)

// Authorizer decides whether a sender may open the door: a plain membership
// probe of the registry by external id, string-compared. No caching — access
// decisions always see the current registry.
type Authorizer struct {
	members store.MemberStore
}

func NewAuthorizer(members store.MemberStore) *Authorizer {
	return &Authorizer{members: members}
}

func (a *Authorizer) IsAuthorized(ctx context.Context, externalID string) (bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return false, nil
	}

	ok, err := a.members.Exists(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("authorize %s: %w", externalID, err)
	}
	return ok, nil
}
