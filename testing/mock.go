// Package ledgertest provides test utilities for ledger status
// development, including a configurable mock ledger, a test harness,
// and a ledger compliance test suite.
package ledgertest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

// Compile-time check that MockLedger satisfies all interfaces.
var (
	_ ledgerstatus.Ledger = (*MockLedger)(nil)
	_ ledgerstatus.Pinger = (*MockLedger)(nil)
	_ ledgerstatus.Conn   = (*MockConn)(nil)
)

// MockLedger is a configurable mock ledger for resolver testing.
// All lookups are configurable via function fields. Unconfigured
// lookups fall back to the Transactions and Blocks tables, and
// unknown ids report types.StatusUnknown.
type MockLedger struct {
	// Canned results used when the matching Fn is nil.
	Transactions map[string]types.Status
	Blocks       map[string]types.Status

	// Configurable handlers. If nil, defaults are used.
	AcquireFn           func(context.Context) error
	TransactionStatusFn func(context.Context, string) (types.Status, error)
	BlockFn             func(context.Context, string, bool) (*types.Block, types.Status, error)
	PingFn              func(context.Context) error

	// Call counters (atomic for concurrent access).
	AcquireCalls           atomic.Int64
	ReleaseCalls           atomic.Int64
	TransactionStatusCalls atomic.Int64
	BlockCalls             atomic.Int64
	PingCalls              atomic.Int64
}

// NewMockLedger returns a mock that answers from the given tables.
func NewMockLedger(txs, blocks map[string]types.Status) *MockLedger {
	return &MockLedger{Transactions: txs, Blocks: blocks}
}

func (m *MockLedger) Acquire(ctx context.Context) (ledgerstatus.Conn, error) {
	m.AcquireCalls.Add(1)
	if m.AcquireFn != nil {
		if err := m.AcquireFn(ctx); err != nil {
			return nil, err
		}
	}
	return &MockConn{ledger: m}, nil
}

func (m *MockLedger) Ping(ctx context.Context) error {
	m.PingCalls.Add(1)
	if m.PingFn != nil {
		return m.PingFn(ctx)
	}
	return nil
}

// Outstanding returns the number of acquired connections not yet
// released. A correct caller leaves it at zero between queries.
func (m *MockLedger) Outstanding() int64 {
	return m.AcquireCalls.Load() - m.ReleaseCalls.Load()
}

// InUse reports Outstanding as an int for RunComplianceSuite.
func (m *MockLedger) InUse() int {
	return int(m.Outstanding())
}

// MockConn is the connection handed out by MockLedger.
type MockConn struct {
	ledger   *MockLedger
	released atomic.Int64
}

// Releases returns how many times Release was called on this
// connection.
func (c *MockConn) Releases() int64 {
	return c.released.Load()
}

func (c *MockConn) TransactionStatus(ctx context.Context, txID string) (types.Status, error) {
	m := c.ledger
	m.TransactionStatusCalls.Add(1)
	if m.TransactionStatusFn != nil {
		return m.TransactionStatusFn(ctx, txID)
	}
	return m.Transactions[txID], nil
}

func (c *MockConn) Block(ctx context.Context, blockID string, includeStatus bool) (*types.Block, types.Status, error) {
	m := c.ledger
	m.BlockCalls.Add(1)
	if m.BlockFn != nil {
		return m.BlockFn(ctx, blockID, includeStatus)
	}
	status, ok := m.Blocks[blockID]
	if !ok {
		return nil, types.StatusUnknown, nil
	}
	if !includeStatus {
		status = types.StatusUnknown
	}
	return &types.Block{ID: blockID}, status, nil
}

func (c *MockConn) Release() {
	c.released.Add(1)
	c.ledger.ReleaseCalls.Add(1)
}
