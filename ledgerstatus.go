// Package ledgerstatus defines the status query boundary of a
// distributed ledger: the capability a ledger store exposes for
// status lookups, and the service a caller queries for the
// consensus status of a transaction or a block.
//
// The [Ledger] capability is required. [Pinger] is an optional
// capability discovered via Go type assertion.
package ledgerstatus

import (
	"context"

	"github.com/blockberries/ledgerstatus/types"
)

// Lookup is the read surface of a single ledger connection.
type Lookup interface {
	// TransactionStatus returns the status of the transaction with the
	// given id. It returns types.StatusUnknown when the transaction is
	// not known anywhere, not even in the backlog.
	TransactionStatus(ctx context.Context, txID string) (types.Status, error)

	// Block returns the block with the given id. When includeStatus is
	// set, the block's status is returned as well. An unknown block id
	// yields a nil block and types.StatusUnknown.
	Block(ctx context.Context, blockID string, includeStatus bool) (*types.Block, types.Status, error)
}

// Conn is a scoped connection to the ledger store. The holder must
// call Release exactly once when done with it.
type Conn interface {
	Lookup

	// Release returns the connection to its pool.
	Release()
}

// Ledger provides scoped access to a ledger store. Implementations
// own the connection pool and any timeout policy on lookups.
//
// Acquire MUST be safe for concurrent use.
type Ledger interface {
	// Acquire blocks until a connection is available or ctx is done.
	Acquire(ctx context.Context) (Conn, error)
}

// Pinger is implemented by ledgers that can report whether the
// backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service answers status queries. Both the engine-side server and
// the transport clients implement it.
type Service interface {
	// Status resolves the status of the entity named by q.
	//
	// A query naming zero or two identifiers fails with a
	// *RejectionError. An unknown entity is reported as an Outcome
	// with Found unset, not as an error. Backend failures are
	// returned as errors.
	//
	// This method MUST be safe for concurrent use.
	Status(ctx context.Context, q types.StatusQuery) (types.Outcome, error)
}

// Connection is a transport-agnostic connection to a Service.
// Both the gRPC client and the in-process adapter implement it.
type Connection interface {
	Service

	// Close terminates the connection.
	Close() error
}
