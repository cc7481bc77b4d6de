package types

// StatusQuery is the caller-supplied input of a status query.
// Exactly one of TxID and BlockID must be non-empty.
type StatusQuery struct {
	TxID    string `cramberry:"1"`
	BlockID string `cramberry:"2"`
}

// TxQuery returns a query for a transaction status.
func TxQuery(id string) StatusQuery { return StatusQuery{TxID: id} }

// BlockQuery returns a query for a block status.
func BlockQuery(id string) StatusQuery { return StatusQuery{BlockID: id} }
