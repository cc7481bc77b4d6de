// Package server provides the query-side core of the status
// boundary: input validation, status resolution over a scoped
// ledger connection, and the Server that serves queries with
// logging and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

var errNilConn = errors.New("ledgerstatus: ledger returned a nil connection")

// leaseState represents a state in the connection lease state machine.
type leaseState uint32

const (
	// leaseHeld: the connection is checked out. Lookups allowed.
	leaseHeld leaseState = iota
	// leaseReleased: the connection went back to its pool. No
	// further calls allowed.
	leaseReleased
)

func (s leaseState) String() string {
	switch s {
	case leaseHeld:
		return "Held"
	case leaseReleased:
		return "Released"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// lease wraps a ledger connection and guarantees it is handed back
// to the pool exactly once, whatever the number of Release calls.
type lease struct {
	conn  ledgerstatus.Conn
	state atomic.Uint32
}

var _ ledgerstatus.Lookup = (*lease)(nil)

// acquireLease checks a connection out of ledger.
func acquireLease(ctx context.Context, ledger ledgerstatus.Ledger) (*lease, error) {
	conn, err := ledger.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire ledger connection: %w", err)
	}
	if conn == nil {
		return nil, errNilConn
	}
	l := &lease{conn: conn}
	l.state.Store(uint32(leaseHeld))
	return l, nil
}

// State returns the current lease state.
func (l *lease) State() string {
	return leaseState(l.state.Load()).String()
}

// Release transitions Held → Released and returns the connection.
// Reports whether this call performed the release.
func (l *lease) Release() bool {
	if !l.state.CompareAndSwap(uint32(leaseHeld), uint32(leaseReleased)) {
		return false
	}
	l.conn.Release()
	return true
}

// checkHeld panics if the connection has already been released.
func (l *lease) checkHeld() {
	if state := leaseState(l.state.Load()); state != leaseHeld {
		panic(fmt.Sprintf("ledgerstatus: lookup on connection in state %s (expected Held)", state))
	}
}

func (l *lease) TransactionStatus(ctx context.Context, txID string) (types.Status, error) {
	l.checkHeld()
	return l.conn.TransactionStatus(ctx, txID)
}

func (l *lease) Block(ctx context.Context, blockID string, includeStatus bool) (*types.Block, types.Status, error) {
	l.checkHeld()
	return l.conn.Block(ctx, blockID, includeStatus)
}

// withConn runs fn against a leased connection and releases it on
// every exit path, panics included.
func withConn(ctx context.Context, ledger ledgerstatus.Ledger, fn func(ledgerstatus.Lookup) error) error {
	l, err := acquireLease(ctx, ledger)
	if err != nil {
		return err
	}
	defer l.Release()
	return fn(l)
}
