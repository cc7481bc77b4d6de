package server

import (
	"github.com/blockberries/ledgerstatus"
	"github.com/blockberries/ledgerstatus/types"
)

// Validate enforces that exactly one of txID and blockID is present
// and returns the identifier it names. An empty string counts as
// absent.
func Validate(txID, blockID string) (types.Identifier, error) {
	hasTx := txID != ""
	hasBlock := blockID != ""

	// Logical xor: exactly one query argument required.
	if hasTx == hasBlock {
		return types.Identifier{}, ledgerstatus.NewRejectionError(ledgerstatus.ReasonExactlyOneRequired)
	}
	if hasTx {
		return types.TransactionID(txID), nil
	}
	return types.BlockID(blockID), nil
}
