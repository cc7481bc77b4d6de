package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/blockberries/ledgerstatus/types"
)

// Seed is the on-disk form of an initial ledger.
//
//	{
//	  "backlog": ["tx3"],
//	  "blocks": [
//	    {"id": "b1", "height": 1, "timestamp": "2024-01-01T00:00:00Z",
//	     "status": "valid", "transactions": ["tx1", "tx2"]}
//	  ]
//	}
type Seed struct {
	Backlog []string    `json:"backlog"`
	Blocks  []SeedBlock `json:"blocks"`
}

// SeedBlock is one block in a Seed.
type SeedBlock struct {
	ID           string       `json:"id"`
	Height       uint64       `json:"height"`
	Timestamp    time.Time    `json:"timestamp"`
	Status       types.Status `json:"status"`
	Transactions []string     `json:"transactions"`
}

// Apply loads the seed into store. Blocks are added first so that
// backlog entries for transactions already in a block are kept.
func (s Seed) Apply(store *Store) error {
	for i, b := range s.Blocks {
		block := types.Block{ID: b.ID, Height: b.Height, TxIDs: b.Transactions}
		if !b.Timestamp.IsZero() {
			block.Timestamp = types.TimeToTimestamp(b.Timestamp)
		}
		if err := store.AddBlock(block, b.Status); err != nil {
			return fmt.Errorf("seed block %d: %w", i, err)
		}
	}
	for _, txID := range s.Backlog {
		if err := store.AddToBacklog(txID); err != nil {
			return fmt.Errorf("seed backlog: %w", err)
		}
	}
	return nil
}

// ReadSeed decodes a seed, rejecting unknown fields.
func ReadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return seed, nil
}

// LoadSeedFile reads the seed at path into a new store.
func LoadSeedFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seed, err := ReadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	store := NewStore()
	if err := seed.Apply(store); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}
