package ledgertest

import (
	"context"
	"sync"
	"testing"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/server"
	"github.com/blockberries/ledgerstatus/types"
)

// Fixture is a ledger preloaded with known entities.
type Fixture struct {
	Ledger ledgerstatus.Ledger

	// Entities the ledger holds, with the status each must report.
	Transactions map[string]types.Status
	Blocks       map[string]types.Status

	// Ids the ledger has never seen.
	UnknownTxID    string
	UnknownBlockID string
}

// inUser is implemented by ledgers that can report held connections.
type inUser interface {
	InUse() int
}

// RunComplianceSuite runs a standard compliance test suite against a
// ledger implementation to verify status lookups and connection
// scoping.
//
// The factory function should return a fresh fixture for each test.
func RunComplianceSuite(t *testing.T, factory func(t *testing.T) Fixture) {
	t.Helper()

	t.Run("transaction_statuses", func(t *testing.T) {
		f := factory(t)
		h := NewHarness(t, f.Ledger)
		for id, want := range f.Transactions {
			outcome := h.MustFind(types.TxQuery(id), want)
			href, ok := outcome.Link(server.LinkTx)
			if !ok || href != server.TransactionPath(id) {
				t.Errorf("tx %q: expected link %q, got %q (present=%v)",
					id, server.TransactionPath(id), href, ok)
			}
			if len(outcome.Links) != 1 {
				t.Errorf("tx %q: expected exactly one link, got %d", id, len(outcome.Links))
			}
		}
	})

	t.Run("block_statuses_have_no_links", func(t *testing.T) {
		f := factory(t)
		h := NewHarness(t, f.Ledger)
		for id, want := range f.Blocks {
			outcome := h.MustFind(types.BlockQuery(id), want)
			if len(outcome.Links) != 0 {
				t.Errorf("block %q: expected no links, got %v", id, outcome.Links)
			}
		}
	})

	t.Run("unknown_transaction", func(t *testing.T) {
		f := factory(t)
		NewHarness(t, f.Ledger).MustNotFind(types.TxQuery(f.UnknownTxID))
	})

	t.Run("unknown_block", func(t *testing.T) {
		f := factory(t)
		NewHarness(t, f.Ledger).MustNotFind(types.BlockQuery(f.UnknownBlockID))
	})

	t.Run("rejects_ambiguous_queries", func(t *testing.T) {
		f := factory(t)
		h := NewHarness(t, f.Ledger)
		h.MustReject(types.StatusQuery{})
		h.MustReject(types.StatusQuery{TxID: f.UnknownTxID, BlockID: f.UnknownBlockID})
	})

	t.Run("connections_returned", func(t *testing.T) {
		f := factory(t)
		counter, ok := f.Ledger.(inUser)
		if !ok {
			t.Skip("ledger does not report held connections")
		}
		h := NewHarness(t, f.Ledger)
		for id := range f.Transactions {
			h.Status(types.TxQuery(id))
		}
		for id := range f.Blocks {
			h.Status(types.BlockQuery(id))
		}
		h.Status(types.TxQuery(f.UnknownTxID))
		h.Status(types.BlockQuery(f.UnknownBlockID))
		if n := counter.InUse(); n != 0 {
			t.Errorf("expected all connections returned, %d still held", n)
		}
	})

	t.Run("concurrent_queries", func(t *testing.T) {
		f := factory(t)
		h := NewHarness(t, f.Ledger)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			for id, want := range f.Transactions {
				wg.Add(1)
				go func() {
					defer wg.Done()
					outcome, err := h.Server().Status(context.Background(), types.TxQuery(id))
					if err != nil {
						t.Errorf("concurrent Status failed: %v", err)
						return
					}
					if outcome.Status != want {
						t.Errorf("tx %q: expected %s, got %s", id, want, outcome.Status)
					}
				}()
			}
		}
		wg.Wait()
	})
}
