package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sezam-club/sezam/internal/sezam/service"
	"github.com/sezam-club/sezam/internal/sezam/store/memory"
)

func TestRegisterIfNew_FirstFalseThenTrue(t *testing.T) {
	ledger := service.NewLedger(memory.NewLedgerStore(), 0)
	ctx := context.Background()

	seen, err := ledger.RegisterIfNew(ctx, "e1")
	if err != nil {
		t.Fatalf("RegisterIfNew: %v", err)
	}
	if seen {
		t.Error("expected first registration to report seen=false")
	}

	seen, err = ledger.RegisterIfNew(ctx, "e1")
	if err != nil {
		t.Fatalf("RegisterIfNew: %v", err)
	}
	if !seen {
		t.Error("expected second registration to report seen=true")
	}
}

func TestRegisterIfNew_ConcurrentCallers_ExactlyOneWinner(t *testing.T) {
	ledger := service.NewLedger(memory.NewLedgerStore(), 0)
	ctx := context.Background()

	const callers = 20
	results := make([]bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seen, err := ledger.RegisterIfNew(ctx, "race-1")
			if err != nil {
				t.Errorf("RegisterIfNew: %v", err)
				return
			}
			results[i] = seen
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, seen := range results {
		if !seen {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly one seen=false across concurrent callers, got %d", winners)
	}
}

func TestRegisterIfNew_EmptyID(t *testing.T) {
	ledger := service.NewLedger(memory.NewLedgerStore(), 0)

	_, err := ledger.RegisterIfNew(context.Background(), "  ")
	if !errors.Is(err, service.ErrInvalidEventID) {
		t.Errorf("expected ErrInvalidEventID, got %v", err)
	}
}

func TestRegisterIfNew_LockTimeout(t *testing.T) {
	st := memory.NewLedgerStore()
	st.RecordDelay = 200 * time.Millisecond

	ledger := service.NewLedger(st, 10*time.Millisecond)

	_, err := ledger.RegisterIfNew(context.Background(), "slow-1")
	if !errors.Is(err, service.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	// Fail closed: the event must not look processed afterwards.
	if st.Size() != 0 {
		t.Errorf("expected no recorded ids after a lock timeout, got %d", st.Size())
	}
}
