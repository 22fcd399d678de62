package service_test

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/sezam-club/sezam/internal/journal"
	"github.com/sezam-club/sezam/internal/sezam/store/memory"
)

// newTestJournal returns a journal writing to a throwaway in-memory store.
func newTestJournal() *journal.Journal {
	return journal.New(memory.NewJournalStore(), zap.NewNop(), journal.Config{MinLevel: journal.Debug}, nil)
}

type sentMessage struct {
	PeerID   int64
	Text     string
	RandomID int64
}

// fakeGateway records outbound sends and serves canned screen-name lookups.
type fakeGateway struct {
	mu         sync.Mutex
	sent       []sentMessage
	sendErr    error
	resolved   map[string]int64
	resolveErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{resolved: make(map[string]int64)}
}

func (g *fakeGateway) Send(_ context.Context, peerID int64, text string, randomID int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, sentMessage{PeerID: peerID, Text: text, RandomID: randomID})
	return nil
}

func (g *fakeGateway) ResolveScreenName(_ context.Context, screenName string) (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolveErr != nil {
		return 0, g.resolveErr
	}
	id, ok := g.resolved[screenName]
	if !ok {
		return 0, errors.New("unknown screen name")
	}
	return id, nil
}

func (g *fakeGateway) Sent() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentMessage, len(g.sent))
	copy(out, g.sent)
	return out
}
