package types

// Block is the payload returned by a block lookup. The status
// resolver does not inspect it.
type Block struct {
	ID        string    `cramberry:"1"`
	Height    uint64    `cramberry:"2"`
	Timestamp Timestamp `cramberry:"3"`
	// Ids of the transactions in the block, in block order.
	TxIDs []string `cramberry:"4"`
}

// Contains returns true if the block includes txID.
func (b Block) Contains(txID string) bool {
	for _, id := range b.TxIDs {
		if id == txID {
			return true
		}
	}
	return false
}
