// Package blockchain implements the block assembler/validator (component
// C7): it drains accepted transactions from the admission queue, validates
// each against a candidate world-state snapshot, buckets the results into
// accepted and rejected sets, computes the block's two Merkle roots,
// assembles and signs the header, commits the snapshot, and persists the
// resulting block.
//
// Grounded on core/blockchain.go's BlockStore/Blockchain pair (tip
// tracking, height/PrevHash linkage check, atomic commit-block), adapted
// from *core.Block to *wire.Block, and on consensus/poa.go's
// PoA.ProduceBlock for the overall assembly loop shape (drain, execute,
// compute root, sign, commit, emit, clean up).
package blockchain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tolelom/ledgerd/wire"
)

// ErrNotFound is returned when a requested block does not exist in storage.
var ErrNotFound = errors.New("blockchain: not found")

// Store is the persistence interface Chain uses to durably record blocks.
// Package storage supplies the goleveldb-backed implementation.
type Store interface {
	GetBlock(hash string) (*wire.Block, error)
	GetBlockByHeight(height int64) (*wire.Block, error)
	GetTip() (string, error)
	SetTip(hash string) error
	CommitBlock(block *wire.Block) error
}

// Chain tracks the canonical sequence of committed blocks: persistence
// plus an in-memory tip/height cache so Tip and Height never round-trip
// to the store. GetBlock and GetBlockByHeight always read from the store.
type Chain struct {
	mu     sync.RWMutex
	store  Store
	tip    *wire.Block
	height int64
}

// NewChain returns a Chain backed by store. Call Init to load an existing
// tip before use.
func NewChain(store Store) *Chain {
	return &Chain{store: store}
}

// Init loads the persisted tip, if any.
func (c *Chain) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tipHash, err := c.store.GetTip()
	if err != nil {
		return fmt.Errorf("blockchain: get tip: %w", err)
	}
	if tipHash == "" {
		return nil
	}
	tip, err := c.store.GetBlock(tipHash)
	if err != nil {
		return fmt.Errorf("blockchain: load tip block: %w", err)
	}
	c.tip = tip
	c.height = tip.Header.Height
	return nil
}

// Append validates height continuity and previous-hash linkage, then
// persists block and advances the tip.
func (c *Chain) Append(block *wire.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tip != nil {
		if block.Header.Height != c.height+1 {
			return fmt.Errorf("blockchain: height %d does not follow tip %d", block.Header.Height, c.height)
		}
		if block.Header.PreviousBlockHash != c.tip.Hash {
			return fmt.Errorf("blockchain: previous_block_hash mismatch: got %s want %s",
				block.Header.PreviousBlockHash, c.tip.Hash)
		}
	} else if block.Header.Height != 1 {
		return fmt.Errorf("blockchain: first block must be height 1, got %d", block.Header.Height)
	}

	if err := c.store.CommitBlock(block); err != nil {
		return fmt.Errorf("blockchain: commit block: %w", err)
	}
	c.tip = block
	c.height = block.Header.Height
	return nil
}

// GetBlock returns a block by hash.
func (c *Chain) GetBlock(hash string) (*wire.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetBlock(hash)
}

// GetBlockByHeight returns the block committed at height.
func (c *Chain) GetBlockByHeight(height int64) (*wire.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store.GetBlockByHeight(height)
}

// Tip returns the current chain tip, or nil for a fresh chain.
func (c *Chain) Tip() *wire.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tip
}

// Height returns the height of the current tip (0 for a fresh chain).
func (c *Chain) Height() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.height
}
