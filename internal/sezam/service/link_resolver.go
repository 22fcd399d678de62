package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sezam-club/sezam/internal/journal"
	"github.com/sezam-club/sezam/internal/sezam/store"
)

// LinkResolver is registry maintenance: admins paste vk.com profile URLs into
// the external-id column, and the resolver periodically rewrites them to the
// numeric ids the authorization probe needs. It runs as a background
// goroutine and is safe to stop via its context or the Stop method.
//
// An interval of 0 disables resolving entirely.
type LinkResolver struct {
	members  store.MemberStore
	gateway  Gateway
	interval time.Duration
	log      *journal.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewLinkResolver(members store.MemberStore, gateway Gateway, interval time.Duration, log *journal.Logger) *LinkResolver {
	return &LinkResolver{
		members:  members,
		gateway:  gateway,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start begins the background loop: an immediate pass on startup, then one
// per interval. The loop exits when ctx is cancelled or Stop is called.
func (r *LinkResolver) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Debug("link resolver disabled", "interval=0")
		close(r.done)
		return
	}

	ctx, r.cancel = context.WithCancel(ctx)
	go r.loop(ctx)
}

// Stop signals the resolver to exit and waits for it to finish.
func (r *LinkResolver) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	<-r.done
}

func (r *LinkResolver) loop(ctx context.Context) {
	defer close(r.done)

	r.resolve(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.resolve(ctx)
		}
	}
}

// resolve rewrites every profile-URL external id it can and bumps the
// LastUpdated marker once if anything changed, so roster clients re-fetch.
func (r *LinkResolver) resolve(ctx context.Context) {
	members, err := r.members.List(ctx)
	if err != nil {
		r.log.Error("link resolver list failed", err.Error())
		return
	}

	changed := false
	for _, m := range members {
		if !strings.Contains(m.ExternalID, "vk.com") {
			continue
		}

		parts := strings.Split(m.ExternalID, "/")
		screenName := parts[len(parts)-1]
		if screenName == "" {
			continue
		}

		id, err := r.gateway.ResolveScreenName(ctx, screenName)
		if err != nil {
			r.log.Debug("link cannot be resolved", m.ExternalID+": "+err.Error())
			continue
		}

		if err := r.members.UpdateExternalID(ctx, m.ExternalID, strconv.FormatInt(id, 10)); err != nil {
			r.log.Error("link resolver update failed", err.Error())
			continue
		}
		changed = true
	}

	if changed {
		if err := r.members.TouchLastUpdated(ctx); err != nil {
			r.log.Error("link resolver marker bump failed", err.Error())
		}
	}
}
