package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sezam-club/sezam/internal/journal"
	"github.com/sezam-club/sezam/internal/metrics"
	"github.com/sezam-club/sezam/internal/sezam/types"
)

// Gateway is the outbound messaging port. Send is fire-and-forget from the
// bot's perspective; ResolveScreenName is used only by registry maintenance,
// never on the request path.
type Gateway interface {
	Send(ctx context.Context, peerID int64, text string, randomID int64) error
	ResolveScreenName(ctx context.Context, screenName string) (int64, error)
}

// BotConfig carries the recognized command phrases and the two fixed replies.
type BotConfig struct {
	CommandPhrases []string
	GrantedReply   string
	DeniedReply    string
}

// Bot turns a free-text chat message into a door-open decision.
type Bot struct {
	ledger  *Ledger
	auth    *Authorizer
	door    *DoorSignal
	gateway Gateway
	log     *journal.Logger
	metrics *metrics.Collector

	commands     map[string]struct{}
	grantedReply string
	deniedReply  string
}

func NewBot(
	ledger *Ledger,
	auth *Authorizer,
	door *DoorSignal,
	gateway Gateway,
	cfg BotConfig,
	log *journal.Logger,
	mc *metrics.Collector,
) *Bot {
	commands := make(map[string]struct{}, len(cfg.CommandPhrases))
	for _, p := range cfg.CommandPhrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			commands[p] = struct{}{}
		}
	}

	return &Bot{
		ledger:       ledger,
		auth:         auth,
		door:         door,
		gateway:      gateway,
		log:          log,
		metrics:      mc,
		commands:     commands,
		grantedReply: cfg.GrantedReply,
		deniedReply:  cfg.DeniedReply,
	}
}

// ProcessMessage handles one message_new delivery. Non-commands are dropped
// without a reply. Recognized commands are deduplicated first — a redelivery
// must not send a second reply or touch the door — then authorized. Denied
// senders get the fixed denial text; authorized ones get the success text and
// the door signal. Replies are fire-and-forget: a send failure is logged and
// the flow continues.
func (b *Bot) ProcessMessage(ctx context.Context, eventID string, msg types.Message) error {
	phrase := strings.ToLower(strings.TrimSpace(msg.Text))
	if _, ok := b.commands[phrase]; !ok {
		b.metrics.RecordCommand("ignored")
		return nil
	}

	seen, err := b.ledger.RegisterIfNew(ctx, eventID)
	if err != nil {
		// Cannot guarantee idempotency: fail closed.
		return err
	}
	if seen {
		b.metrics.RecordCommand("duplicate")
		b.log.Debug("duplicate delivery", eventID)
		return nil
	}

	sender := strconv.FormatInt(msg.FromID, 10)
	authorized, err := b.auth.IsAuthorized(ctx, sender)
	if err != nil {
		return err
	}

	randomID := msg.Date
	if randomID == 0 {
		randomID = time.Now().Unix()
	}

	if !authorized {
		b.metrics.RecordCommand("denied")
		b.log.Debug("access denied", sender)
		b.send(ctx, msg.FromID, b.deniedReply, randomID)
		return nil
	}

	b.metrics.RecordCommand("granted")
	b.log.Info("access granted", sender)
	b.send(ctx, msg.FromID, b.grantedReply, randomID)

	if err := b.door.RequestOpen(ctx); err != nil {
		return err
	}
	return nil
}

func (b *Bot) send(ctx context.Context, peerID int64, text string, randomID int64) {
	if err := b.gateway.Send(ctx, peerID, text, randomID); err != nil {
		b.log.Warning("reply send failed", err.Error())
	}
}
