// Package ledger implements an in-memory ledger store and a bounded
// connection pool over it that satisfies ledgerstatus.Ledger.
//
// Transaction status is derived from the blocks that include the
// transaction and from the backlog:
//   - included in any valid block: valid
//   - else included in any undecided block: undecided
//   - else waiting in the backlog: backlog
//   - else included only in invalid blocks: invalid
//   - else unknown
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/btree"

	"github.com/blockberries/ledgerstatus/types"
)

const defaultTreeDegree = 2

var (
	ErrDuplicateBlock = errors.New("ledger: duplicate block")
	ErrUnknownBlock   = errors.New("ledger: unknown block")
	ErrInvalidStatus  = errors.New("ledger: invalid status")
	ErrEmptyID        = errors.New("ledger: empty id")
)

type blockEntry struct {
	block  types.Block
	status types.Status
}

func (e blockEntry) Less(other blockEntry) bool {
	if e.block.Height != other.block.Height {
		return e.block.Height < other.block.Height
	}
	return e.block.ID < other.block.ID
}

// Store is an in-memory ledger. It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	// Blocks ordered by (height, id).
	blocks *btree.BTreeG[blockEntry]
	// Block id → ordering key into blocks.
	byID map[string]blockEntry
	// Transaction id → ids of the blocks that include it.
	txBlocks map[string][]string
	backlog  map[string]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		blocks:   btree.NewG(defaultTreeDegree, blockEntry.Less),
		byID:     make(map[string]blockEntry),
		txBlocks: make(map[string][]string),
		backlog:  make(map[string]struct{}),
	}
}

// AddToBacklog records a transaction that was received but is not yet
// in any block. Adding a transaction twice is a no-op.
func (s *Store) AddToBacklog(txID string) error {
	if txID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backlog[txID] = struct{}{}
	return nil
}

// AddBlock stores a block with the given status. Transactions the
// block includes leave the backlog.
func (s *Store) AddBlock(b types.Block, status types.Status) error {
	if b.ID == "" {
		return ErrEmptyID
	}
	if status == types.StatusBacklog || !status.Known() {
		return fmt.Errorf("%w: block %q cannot be %s", ErrInvalidStatus, b.ID, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[b.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateBlock, b.ID)
	}
	b.TxIDs = append([]string(nil), b.TxIDs...)
	entry := blockEntry{block: b, status: status}
	s.blocks.ReplaceOrInsert(entry)
	s.byID[b.ID] = entry
	for _, txID := range b.TxIDs {
		s.txBlocks[txID] = append(s.txBlocks[txID], b.ID)
		delete(s.backlog, txID)
	}
	return nil
}

// SetBlockStatus records the decision on a block. When a block turns
// invalid, its transactions that are in no other valid or undecided
// block go back to the backlog.
func (s *Store) SetBlockStatus(blockID string, status types.Status) error {
	if status == types.StatusBacklog || !status.Known() {
		return fmt.Errorf("%w: block %q cannot be %s", ErrInvalidStatus, blockID, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[blockID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlock, blockID)
	}
	entry.status = status
	s.blocks.ReplaceOrInsert(entry)
	s.byID[blockID] = entry

	if status == types.StatusInvalid {
		for _, txID := range entry.block.TxIDs {
			if s.txStatusLocked(txID) == types.StatusInvalid {
				s.backlog[txID] = struct{}{}
			}
		}
	}
	return nil
}

// TransactionStatus returns the derived status of a transaction, or
// types.StatusUnknown if the store has never seen it.
func (s *Store) TransactionStatus(txID string) types.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.txStatusLocked(txID)
}

func (s *Store) txStatusLocked(txID string) types.Status {
	var undecided, invalid bool
	for _, blockID := range s.txBlocks[txID] {
		switch s.byID[blockID].status {
		case types.StatusValid:
			return types.StatusValid
		case types.StatusUndecided:
			undecided = true
		case types.StatusInvalid:
			invalid = true
		}
	}
	switch {
	case undecided:
		return types.StatusUndecided
	case s.inBacklogLocked(txID):
		return types.StatusBacklog
	case invalid:
		return types.StatusInvalid
	default:
		return types.StatusUnknown
	}
}

func (s *Store) inBacklogLocked(txID string) bool {
	_, ok := s.backlog[txID]
	return ok
}

// Block returns a copy of the block and its status.
func (s *Store) Block(blockID string) (*types.Block, types.Status) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.byID[blockID]
	if !ok {
		return nil, types.StatusUnknown
	}
	b := entry.block
	b.TxIDs = append([]string(nil), b.TxIDs...)
	return &b, entry.status
}

// Blocks returns all blocks ordered by height.
func (s *Store) Blocks() []types.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Block, 0, s.blocks.Len())
	s.blocks.Ascend(func(e blockEntry) bool {
		out = append(out, e.block)
		return true
	})
	return out
}

// BacklogLen returns the number of transactions in the backlog.
func (s *Store) BacklogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.backlog)
}
