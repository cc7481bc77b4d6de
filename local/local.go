// Package local provides an in-process ledger status connection.
//
// For callers compiled into the same binary as the ledger, this
// adapter wraps the ledger with query validation and connection
// scoping, with no serialization overhead.
package local

import (
	"context"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/server"
	"github.com/blockberries/ledgerstatus/types"
)

// Compile-time interface check.
var _ ledgerstatus.Connection = (*Connection)(nil)

// Connection answers status queries against a local ledger.
type Connection struct {
	srv *server.Server
}

// NewConnection creates an in-process connection wrapping the given
// ledger.
func NewConnection(ledger ledgerstatus.Ledger, opts ...server.Option) (*Connection, error) {
	srv, err := server.New(ledger, opts...)
	if err != nil {
		return nil, err
	}
	return &Connection{srv: srv}, nil
}

func (c *Connection) Status(ctx context.Context, q types.StatusQuery) (types.Outcome, error) {
	return c.srv.Status(ctx, q)
}

func (c *Connection) Close() error { return c.srv.Close() }

// Server returns the underlying server for advanced use cases.
func (c *Connection) Server() *server.Server {
	return c.srv
}
