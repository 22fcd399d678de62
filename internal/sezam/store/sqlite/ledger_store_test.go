package sqlite_test

import (
	"context"
	"testing"

	"github.com/sezam-club/sezam/internal/sezam/store/sqlite"
)

func TestLedgerStore_RecordThenContains(t *testing.T) {
	conn := openTestDB(t)
	st := sqlite.NewLedgerStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	seen, err := st.Contains(ctx, "e1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if seen {
		t.Error("expected e1 to be absent before recording")
	}

	inserted, err := st.Record(ctx, "e1")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !inserted {
		t.Error("expected first Record to insert")
	}

	seen, err = st.Contains(ctx, "e1")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !seen {
		t.Error("expected e1 to be present after recording")
	}
}

func TestLedgerStore_RecordDuplicate_NotInserted(t *testing.T) {
	conn := openTestDB(t)
	st := sqlite.NewLedgerStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if _, err := st.Record(ctx, "e1"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	inserted, err := st.Record(ctx, "e1")
	if err != nil {
		t.Fatalf("Record duplicate: %v", err)
	}
	if inserted {
		t.Error("expected duplicate Record to report inserted=false")
	}
}

func TestLedgerStore_EmptyEventID(t *testing.T) {
	conn := openTestDB(t)
	st := sqlite.NewLedgerStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	seen, err := st.Contains(ctx, "")
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if seen {
		t.Error("expected empty id to be absent")
	}

	if _, err := st.Record(ctx, "   "); err == nil {
		t.Error("expected error recording a blank event id")
	}
}
