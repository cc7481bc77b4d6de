package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blockberries/ledgerstatus/types"
	ledgertest "github.com/blockberries/ledgerstatus/testing"
)

func seededPool(t *testing.T, size int) *Pool {
	t.Helper()
	s := NewStore()
	if err := s.AddBlock(types.Block{ID: "b1", Height: 1, TxIDs: []string{"tx1"}}, types.StatusValid); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBlock(types.Block{ID: "b2", Height: 2, TxIDs: []string{"tx2"}}, types.StatusUndecided); err != nil {
		t.Fatal(err)
	}
	if err := s.AddBlock(types.Block{ID: "b3", Height: 3, TxIDs: []string{"tx3"}}, types.StatusInvalid); err != nil {
		t.Fatal(err)
	}
	if err := s.AddToBacklog("tx4"); err != nil {
		t.Fatal(err)
	}
	return NewPool(s, size, nil)
}

func TestPool_Compliance(t *testing.T) {
	ledgertest.RunComplianceSuite(t, func(t *testing.T) ledgertest.Fixture {
		return ledgertest.Fixture{
			Ledger: seededPool(t, 4),
			Transactions: map[string]types.Status{
				"tx1": types.StatusValid,
				"tx2": types.StatusUndecided,
				"tx3": types.StatusInvalid,
				"tx4": types.StatusBacklog,
			},
			Blocks: map[string]types.Status{
				"b1": types.StatusValid,
				"b2": types.StatusUndecided,
				"b3": types.StatusInvalid,
			},
			UnknownTxID:    "tx-missing",
			UnknownBlockID: "b-missing",
		}
	})
}

func TestPool_AcquireBlocksWhenExhausted(t *testing.T) {
	p := seededPool(t, 1)
	ctx := context.Background()

	c1, err := p.Acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.InUse() != 1 {
		t.Fatalf("expected 1 in use, got %d", p.InUse())
	}

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := p.Acquire(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	c1.Release()
	c2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	c2.Release()
}

func TestPool_ReleaseIsIdempotent(t *testing.T) {
	p := seededPool(t, 1)
	c, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	c.Release()
	c.Release()

	if p.InUse() != 0 {
		t.Fatalf("expected 0 in use, got %d", p.InUse())
	}
	if _, err := c.TransactionStatus(context.Background(), "tx1"); !errors.Is(err, ErrConnReleased) {
		t.Errorf("expected ErrConnReleased, got %v", err)
	}
	if _, _, err := c.Block(context.Background(), "b1", true); !errors.Is(err, ErrConnReleased) {
		t.Errorf("expected ErrConnReleased, got %v", err)
	}
}

func TestPool_Close(t *testing.T) {
	p := seededPool(t, 2)
	held, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Acquire(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
	if err := p.Ping(context.Background()); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ping to report closed, got %v", err)
	}

	// Held connections still answer until released.
	status, err := held.TransactionStatus(context.Background(), "tx1")
	if err != nil || status != types.StatusValid {
		t.Errorf("expected valid from held conn, got %s, %v", status, err)
	}
	held.Release()
}

func TestPool_BlockWithoutStatus(t *testing.T) {
	p := seededPool(t, 1)
	c, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Release()

	b, status, err := c.Block(context.Background(), "b1", false)
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || !b.Contains("tx1") {
		t.Fatalf("expected block b1 with tx1, got %+v", b)
	}
	if status != types.StatusUnknown {
		t.Errorf("expected no status, got %s", status)
	}
}

func TestPool_DefaultSize(t *testing.T) {
	p := NewPool(NewStore(), 0, nil)
	if p.Size() != DefaultPoolSize {
		t.Errorf("expected %d, got %d", DefaultPoolSize, p.Size())
	}
}
