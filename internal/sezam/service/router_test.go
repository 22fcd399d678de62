package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sezam-club/sezam/internal/sezam/service"
	"github.com/sezam-club/sezam/internal/sezam/store/memory"
	"github.com/sezam-club/sezam/internal/sezam/types"
)

type routerFixture struct {
	router    *service.Router
	gateway   *fakeGateway
	doorStore *memory.DoorStore
	members   *memory.MemberStore
}

func newRouterFixture(registered ...string) *routerFixture {
	var ms []types.Member
	for _, id := range registered {
		ms = append(ms, types.Member{Name: "m-" + id, ExternalID: id})
	}
	members := memory.NewMemberStore(ms)
	members.SetLastUpdated("2026-08-01T00:00:00Z")

	doorStore := memory.NewDoorStore()
	gateway := newFakeGateway()
	jrnl := newTestJournal()

	door := service.NewDoorSignal(doorStore, 5*time.Millisecond, nil)
	bot := service.NewBot(
		service.NewLedger(memory.NewLedgerStore(), 0),
		service.NewAuthorizer(members),
		door,
		gateway,
		service.BotConfig{CommandPhrases: []string{"open"}, GrantedReply: "granted", DeniedReply: "denied"},
		jrnl.For("bot"),
		nil,
	)

	router := service.NewRouter(service.RouterConfig{
		Secret:           "s3cret",
		ConfirmResponse:  "confirm-token-123",
		StatusWaitBudget: 50 * time.Millisecond,
	}, bot, door, service.NewRoster(members), jrnl.For("router"), nil)

	return &routerFixture{router: router, gateway: gateway, doorStore: doorStore, members: members}
}

func TestRoute_Confirmation(t *testing.T) {
	f := newRouterFixture()

	out, err := f.router.Route(context.Background(), []byte(`{"type":"confirmation","secret":"s3cret"}`))
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if out != "confirm-token-123" {
		t.Errorf("expected the handshake token, got %q", out)
	}
}

func TestRoute_SecretMismatch(t *testing.T) {
	f := newRouterFixture("42")

	_, err := f.router.Route(context.Background(),
		[]byte(`{"type":"message_new","secret":"wrong","event_id":"e1","object":{"message":{"text":"open","from_id":42}}}`))
	if !errors.Is(err, service.ErrSecretMismatch) {
		t.Fatalf("expected ErrSecretMismatch, got %v", err)
	}

	// Mismatch is a no-op: no reply, no door signal.
	if len(f.gateway.Sent()) != 0 {
		t.Error("secret mismatch must not trigger a reply")
	}
	open, _ := f.doorStore.Get(context.Background())
	if open {
		t.Error("secret mismatch must not open the door")
	}
}

func TestRoute_UnknownType_Unrouted(t *testing.T) {
	f := newRouterFixture()

	_, err := f.router.Route(context.Background(), []byte(`{"type":"poke","secret":"s3cret"}`))
	if !errors.Is(err, service.ErrUnroutedRequest) {
		t.Fatalf("expected ErrUnroutedRequest, got %v", err)
	}
}

func TestRoute_BadJSON(t *testing.T) {
	f := newRouterFixture()

	if _, err := f.router.Route(context.Background(), []byte(`not json`)); err == nil {
		t.Fatal("expected an error for a malformed envelope")
	}
}

func TestRoute_MessageNew_ReturnsOK(t *testing.T) {
	f := newRouterFixture("42")

	out, err := f.router.Route(context.Background(),
		[]byte(`{"type":"message_new","secret":"s3cret","event_id":"e1","object":{"message":{"date":1700000000,"text":"open","from_id":42}}}`))
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if out != "ok" {
		t.Errorf("expected ok, got %q", out)
	}

	open, _ := f.doorStore.Get(context.Background())
	if !open {
		t.Error("expected the command to set the door flag")
	}
}

func TestRoute_DoorStatus_TrueAfterOpen(t *testing.T) {
	f := newRouterFixture("42")
	ctx := context.Background()

	if _, err := f.router.Route(ctx,
		[]byte(`{"type":"message_new","secret":"s3cret","event_id":"e1","object":{"message":{"text":"open","from_id":42}}}`)); err != nil {
		t.Fatalf("command: %v", err)
	}

	out, err := f.router.Route(ctx, []byte(`{"type":"get_open_door_flag","secret":"s3cret"}`))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if out != "true" {
		t.Errorf("expected true, got %q", out)
	}

	// The claim cleared the flag; the next poll times out.
	out, err = f.router.Route(ctx, []byte(`{"type":"get_open_door_flag","secret":"s3cret"}`))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if out != "false" {
		t.Errorf("expected false after the claim, got %q", out)
	}
}

func TestRoute_RosterQuery_StaleToken(t *testing.T) {
	f := newRouterFixture("42")

	out, err := f.router.Route(context.Background(),
		[]byte(`{"type":"get_users_if_updated","secret":"s3cret","event_id":"2026-07-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	var resp types.RosterResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Users) != 1 || resp.Users[0].ExternalID != "42" {
		t.Errorf("expected the full roster, got %+v", resp.Users)
	}
	if resp.LastUpdatedValue != "2026-08-01T00:00:00Z" {
		t.Errorf("unexpected marker %q", resp.LastUpdatedValue)
	}
}

func TestRoute_RosterQuery_CurrentToken_NullUsers(t *testing.T) {
	f := newRouterFixture("42")

	out, err := f.router.Route(context.Background(),
		[]byte(`{"type":"get_users_if_updated","secret":"s3cret","event_id":"2026-08-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if !strings.Contains(out, `"users":null`) {
		t.Errorf("expected a null roster for an up-to-date token, got %s", out)
	}
	if !strings.Contains(out, `"lastUpdatedValue":"2026-08-01T00:00:00Z"`) {
		t.Errorf("expected the marker in the payload, got %s", out)
	}
}
