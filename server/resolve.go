package server

import (
	"context"
	"fmt"

	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

// LinkTx is the relation name of the link to a transaction resource.
const LinkTx = "tx"

// TransactionPath returns the resource path of a transaction.
func TransactionPath(txID string) string {
	return fmt.Sprintf("/transactions/%s", txID)
}

// Resolve looks up the status of the entity named by id.
//
// The ledger connection is held for the lookup only and is released
// before the outcome is built or an error is returned. A lookup that
// yields no known status resolves to types.NotFound(); lookup and
// acquisition errors are returned as-is, wrapped.
func Resolve(ctx context.Context, id types.Identifier, ledger ledgerstatus.Ledger) (types.Outcome, error) {
	switch id.Kind {
	case types.KindTransaction:
		return resolveTransaction(ctx, id.ID, ledger)
	case types.KindBlock:
		return resolveBlock(ctx, id.ID, ledger)
	default:
		return types.Outcome{}, fmt.Errorf("ledgerstatus: unsupported identifier kind %s", id.Kind)
	}
}

func resolveTransaction(ctx context.Context, txID string, ledger ledgerstatus.Ledger) (types.Outcome, error) {
	var status types.Status
	err := withConn(ctx, ledger, func(conn ledgerstatus.Lookup) error {
		var err error
		status, err = conn.TransactionStatus(ctx, txID)
		return err
	})
	if err != nil {
		return types.Outcome{}, fmt.Errorf("transaction %q: %w", txID, err)
	}
	if !status.Known() {
		return types.NotFound(), nil
	}
	return types.Outcome{
		Found:  true,
		Status: status,
		Links:  []types.Link{{Rel: LinkTx, Href: TransactionPath(txID)}},
	}, nil
}

func resolveBlock(ctx context.Context, blockID string, ledger ledgerstatus.Ledger) (types.Outcome, error) {
	var status types.Status
	err := withConn(ctx, ledger, func(conn ledgerstatus.Lookup) error {
		var err error
		_, status, err = conn.Block(ctx, blockID, true)
		return err
	})
	if err != nil {
		return types.Outcome{}, fmt.Errorf("block %q: %w", blockID, err)
	}
	if !status.Known() {
		return types.NotFound(), nil
	}
	// No block link until a blocks resource exists.
	return types.Outcome{
		Found:  true,
		Status: status,
	}, nil
}
