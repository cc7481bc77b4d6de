// Package types defines the data types of the ledger status query
// boundary: identifiers, canonical statuses, and query outcomes.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration, JSON shapes) are handled in the
// transport packages.
package types

import "fmt"

// IdentifierKind tags which ledger entity an Identifier names.
type IdentifierKind uint8

const (
	// KindTransaction identifies a transaction by its id.
	KindTransaction IdentifierKind = 1
	// KindBlock identifies a block by its id.
	KindBlock IdentifierKind = 2
)

func (k IdentifierKind) String() string {
	switch k {
	case KindTransaction:
		return "tx"
	case KindBlock:
		return "block"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Identifier is a validated, tagged ledger entity id. It is built
// once per query and never persisted.
type Identifier struct {
	Kind IdentifierKind `cramberry:"1"`
	ID   string         `cramberry:"2"`
}

// TransactionID returns an Identifier naming a transaction.
func TransactionID(id string) Identifier {
	return Identifier{Kind: KindTransaction, ID: id}
}

// BlockID returns an Identifier naming a block.
func BlockID(id string) Identifier {
	return Identifier{Kind: KindBlock, ID: id}
}

func (i Identifier) String() string {
	return i.Kind.String() + ":" + i.ID
}
