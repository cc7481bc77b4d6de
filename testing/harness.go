package ledgertest

import (
	"context"
	"testing"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/server"
	"github.com/blockberries/ledgerstatus/types"
)

// Harness provides a convenient test harness for ledger developers
// to test their ledger implementation through the status server.
type Harness struct {
	t   *testing.T
	srv *server.Server
}

// NewHarness creates a test harness wrapping the given ledger.
func NewHarness(t *testing.T, ledger ledgerstatus.Ledger, opts ...server.Option) *Harness {
	t.Helper()
	srv, err := server.New(ledger, opts...)
	if err != nil {
		t.Fatalf("server.New failed: %v", err)
	}
	return &Harness{t: t, srv: srv}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.srv
}

// Status runs a query and fails the test on any error.
func (h *Harness) Status(q types.StatusQuery) types.Outcome {
	h.t.Helper()
	outcome, err := h.srv.Status(context.Background(), q)
	if err != nil {
		h.t.Fatalf("Status(tx=%q, block=%q) failed: %v", q.TxID, q.BlockID, err)
	}
	return outcome
}

// MustFind asserts that the query resolves to want.
func (h *Harness) MustFind(q types.StatusQuery, want types.Status) types.Outcome {
	h.t.Helper()
	outcome := h.Status(q)
	if !outcome.Found {
		h.t.Fatalf("expected %s, got not found", want)
	}
	if outcome.Status != want {
		h.t.Fatalf("expected %s, got %s", want, outcome.Status)
	}
	return outcome
}

// MustNotFind asserts that the query resolves to not found.
func (h *Harness) MustNotFind(q types.StatusQuery) {
	h.t.Helper()
	outcome := h.Status(q)
	if outcome.Found {
		h.t.Fatalf("expected not found, got %s", outcome.Status)
	}
}

// MustReject asserts that the query is rejected before reaching the
// ledger.
func (h *Harness) MustReject(q types.StatusQuery) {
	h.t.Helper()
	_, err := h.srv.Status(context.Background(), q)
	rej, ok := ledgerstatus.IsRejection(err)
	if !ok {
		h.t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Reason != ledgerstatus.ReasonExactlyOneRequired {
		h.t.Fatalf("expected reason %s, got %s", ledgerstatus.ReasonExactlyOneRequired, rej.Reason)
	}
}
