package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/blockchain"
	"github.com/tolelom/ledgerd/merkle"
	"github.com/tolelom/ledgerd/wire"
)

func newTestLevelBlockStore(t *testing.T) *LevelBlockStore {
	t.Helper()
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLevelBlockStore(db)
}

func testBlock(height int64, prevHash string) *wire.Block {
	header := wire.BlockHeader{
		Height:                         height,
		PreviousBlockHash:              prevHash,
		TransactionsMerkleRoot:         merkle.Root(nil),
		RejectedTransactionsMerkleRoot: merkle.Root(nil),
	}
	return &wire.Block{Header: header, Hash: header.Hash()}
}

func TestLevelBlockStoreGetBlockNotFound(t *testing.T) {
	s := newTestLevelBlockStore(t)
	_, err := s.GetBlock("missing")
	assert.True(t, errors.Is(err, blockchain.ErrNotFound))
}

func TestLevelBlockStoreGetBlockByHeightNotFound(t *testing.T) {
	s := newTestLevelBlockStore(t)
	_, err := s.GetBlockByHeight(1)
	assert.True(t, errors.Is(err, blockchain.ErrNotFound))
}

func TestLevelBlockStoreGetTipEmpty(t *testing.T) {
	s := newTestLevelBlockStore(t)
	tip, err := s.GetTip()
	require.NoError(t, err)
	assert.Equal(t, "", tip)
}

func TestLevelBlockStoreCommitBlockRoundTrip(t *testing.T) {
	s := newTestLevelBlockStore(t)
	block := testBlock(1, "")

	require.NoError(t, s.CommitBlock(block))

	byHash, err := s.GetBlock(block.Hash)
	require.NoError(t, err)
	assert.Equal(t, block.Header.Height, byHash.Header.Height)

	byHeight, err := s.GetBlockByHeight(1)
	require.NoError(t, err)
	assert.Equal(t, block.Hash, byHeight.Hash)

	tip, err := s.GetTip()
	require.NoError(t, err)
	assert.Equal(t, block.Hash, tip)
}

func TestLevelBlockStoreCommitBlockAdvancesTip(t *testing.T) {
	s := newTestLevelBlockStore(t)
	first := testBlock(1, "")
	require.NoError(t, s.CommitBlock(first))

	second := testBlock(2, first.Hash)
	require.NoError(t, s.CommitBlock(second))

	tip, err := s.GetTip()
	require.NoError(t, err)
	assert.Equal(t, second.Hash, tip)

	// first block is still retrievable by hash and height after the tip moves on.
	byHeight, err := s.GetBlockByHeight(1)
	require.NoError(t, err)
	assert.Equal(t, first.Hash, byHeight.Hash)
}

func TestLevelBlockStoreSatisfiesBlockchainStore(t *testing.T) {
	var _ blockchain.Store = (*LevelBlockStore)(nil)
}
