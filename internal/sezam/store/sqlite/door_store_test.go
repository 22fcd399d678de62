package sqlite_test

import (
	"context"
	"testing"

	"github.com/sezam-club/sezam/internal/sezam/store/sqlite"
)

func TestDoorStore_SetGetClear(t *testing.T) {
	conn := openTestDB(t)
	st := sqlite.NewDoorStore(conn)
	ctx := context.Background()

	open, err := st.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if open {
		t.Error("expected flag to start closed")
	}

	if err := st.Set(ctx, true); err != nil {
		t.Fatalf("Set: %v", err)
	}

	open, err = st.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !open {
		t.Error("expected flag set")
	}

	claimed, err := st.ClearIfSet(ctx)
	if err != nil {
		t.Fatalf("ClearIfSet: %v", err)
	}
	if !claimed {
		t.Error("expected the first clear to claim the open")
	}

	claimed, err = st.ClearIfSet(ctx)
	if err != nil {
		t.Fatalf("ClearIfSet: %v", err)
	}
	if claimed {
		t.Error("expected the second clear to find nothing")
	}
}

func TestDoorStore_SetIdempotent(t *testing.T) {
	conn := openTestDB(t)
	st := sqlite.NewDoorStore(conn)
	ctx := context.Background()

	if err := st.Set(ctx, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(ctx, true); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	claimed, err := st.ClearIfSet(ctx)
	if err != nil {
		t.Fatalf("ClearIfSet: %v", err)
	}
	if !claimed {
		t.Error("expected one claim after repeated sets")
	}

	claimed, err = st.ClearIfSet(ctx)
	if err != nil {
		t.Fatalf("ClearIfSet: %v", err)
	}
	if claimed {
		t.Error("repeated sets must collapse to a single claim")
	}
}
