package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sezam-club/sezam/internal/journal"
	"github.com/sezam-club/sezam/internal/metrics"
	"github.com/sezam-club/sezam/internal/sezam/types"
)

// RouterConfig holds the per-deployment routing constants.
type RouterConfig struct {
	// Secret is the shared secret every callback must carry.
	Secret string

	// ConfirmResponse is the platform-handshake token returned to a
	// confirmation event.
	ConfirmResponse string

	// StatusWaitBudget bounds the controller's long-poll, ~25s. It must stay
	// under the transport's own request timeout.
	StatusWaitBudget time.Duration
}

// Router dispatches a parsed callback envelope to one of the four terminal
// operations. It holds no state of its own between requests.
type Router struct {
	cfg     RouterConfig
	bot     *Bot
	door    *DoorSignal
	roster  *Roster
	log     *journal.Logger
	metrics *metrics.Collector
}

func NewRouter(cfg RouterConfig, bot *Bot, door *DoorSignal, roster *Roster, log *journal.Logger, mc *metrics.Collector) *Router {
	if cfg.StatusWaitBudget <= 0 {
		cfg.StatusWaitBudget = 25 * time.Second
	}
	return &Router{cfg: cfg, bot: bot, door: door, roster: roster, log: log, metrics: mc}
}

// Route parses body and runs the matching operation, returning the response
// payload. Errors carry the taxonomy sentinels; the ingress boundary decides
// what the transport sees (always "ok" — redeliveries must not be provoked).
func (r *Router) Route(ctx context.Context, body []byte) (string, error) {
	var env types.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("parse envelope: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(env.Secret), []byte(r.cfg.Secret)) != 1 {
		return "", ErrSecretMismatch
	}

	r.metrics.RecordCallback(env.Type)

	switch env.Type {
	case types.EventConfirmation:
		r.log.Debug("routed", types.EventConfirmation)
		return r.cfg.ConfirmResponse, nil

	case types.EventMessageNew:
		r.log.Debug("routed", types.EventMessageNew)
		if env.Object == nil {
			return "", fmt.Errorf("message_new without object payload")
		}
		if err := r.bot.ProcessMessage(ctx, env.EventID, env.Object.Message); err != nil {
			return "", err
		}
		return "ok", nil

	case types.EventDoorStatus:
		r.log.Debug("routed", types.EventDoorStatus)
		opened, err := r.door.WaitForOpenThenClear(ctx, r.cfg.StatusWaitBudget)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(opened), nil

	case types.EventRosterQuery:
		r.log.Debug("routed", types.EventRosterQuery)
		// The controller reuses the event-id field as its since-token.
		members, marker, err := r.roster.Since(ctx, env.EventID)
		if err != nil {
			return "", err
		}
		payload, err := json.Marshal(types.RosterResponse{
			Users:            members,
			LastUpdatedValue: marker,
		})
		if err != nil {
			return "", fmt.Errorf("marshal roster: %w", err)
		}
		return string(payload), nil
	}

	return "", fmt.Errorf("type %q: %w", env.Type, ErrUnroutedRequest)
}
