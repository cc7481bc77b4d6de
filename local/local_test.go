package local

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/ledger"
	"github.com/blockberries/ledgerstatus/types"
)

func newLedger(t *testing.T) *ledger.Pool {
	t.Helper()
	store := ledger.NewStore()
	if err := store.AddBlock(types.Block{ID: "b1", Height: 1, TxIDs: []string{"abc123"}}, types.StatusValid); err != nil {
		t.Fatal(err)
	}
	if err := store.AddToBacklog("pending"); err != nil {
		t.Fatal(err)
	}
	return ledger.NewPool(store, 2, nil)
}

func TestLocalConnection_Status(t *testing.T) {
	pool := newLedger(t)
	conn, err := NewConnection(pool)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	ctx := context.Background()

	outcome, err := conn.Status(ctx, types.TxQuery("abc123"))
	if err != nil {
		t.Fatalf("tx status failed: %v", err)
	}
	if !outcome.Found || outcome.Status != types.StatusValid {
		t.Fatalf("expected valid, got %+v", outcome)
	}
	if href, _ := outcome.Link("tx"); href != "/transactions/abc123" {
		t.Errorf("expected tx link, got %q", href)
	}

	outcome, err = conn.Status(ctx, types.BlockQuery("b1"))
	if err != nil {
		t.Fatalf("block status failed: %v", err)
	}
	if outcome.Status != types.StatusValid || outcome.LinkMap() != nil {
		t.Errorf("expected valid block without links, got %+v", outcome)
	}

	outcome, err = conn.Status(ctx, types.TxQuery("pending"))
	if err != nil || outcome.Status != types.StatusBacklog {
		t.Errorf("expected backlog, got %+v, %v", outcome, err)
	}

	outcome, err = conn.Status(ctx, types.TxQuery("missing"))
	if err != nil || outcome.Found {
		t.Errorf("expected not found, got %+v, %v", outcome, err)
	}

	if pool.InUse() != 0 {
		t.Errorf("expected all connections returned, %d held", pool.InUse())
	}
}

func TestLocalConnection_Rejects(t *testing.T) {
	conn, err := NewConnection(newLedger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	for _, q := range []types.StatusQuery{{}, {TxID: "abc", BlockID: "def"}} {
		_, err := conn.Status(context.Background(), q)
		if _, ok := ledgerstatus.IsRejection(err); !ok {
			t.Errorf("%+v: expected rejection, got %v", q, err)
		}
	}
}

func TestLocalConnection_ClosedPool(t *testing.T) {
	pool := newLedger(t)
	conn, err := NewConnection(pool)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	_ = pool.Close()
	_, err = conn.Status(context.Background(), types.TxQuery("abc123"))
	if !errors.Is(err, ledger.ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed, got %v", err)
	}
	if err := conn.Server().Ping(context.Background()); !errors.Is(err, ledger.ErrPoolClosed) {
		t.Errorf("expected ping to fail, got %v", err)
	}
}
