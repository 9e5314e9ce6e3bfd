package blockchain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/isi"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/txlifecycle"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

var alice = ledger.AccountId{Domain: "wonderland", Signatory: "ed0120alice"}
var bob = ledger.AccountId{Domain: "wonderland", Signatory: "ed0120bob"}

// memStore is an in-memory Store stand-in, grounded on core/blockchain.go's
// BlockStore but backed by plain maps instead of goleveldb.
type memStore struct {
	mu         sync.Mutex
	byHash     map[string]*wire.Block
	byHeight   map[int64]*wire.Block
	tip        string
}

func newMemStore() *memStore {
	return &memStore{byHash: map[string]*wire.Block{}, byHeight: map[int64]*wire.Block{}}
}

func (s *memStore) GetBlock(hash string) (*wire.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHash[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *memStore) GetBlockByHeight(height int64) (*wire.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHeight[height]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *memStore) GetTip() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tip, nil
}

func (s *memStore) SetTip(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tip = hash
	return nil
}

func (s *memStore) CommitBlock(block *wire.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byHash[block.Hash] = block
	s.byHeight[block.Header.Height] = block
	s.tip = block.Hash
	return nil
}

type stubSigner struct{}

func (stubSigner) SignHeader(headerHash string) ([]wire.Signature, error) {
	return []wire.Signature{{PublicKey: "ed0120validator", Signature: "sig-over-" + headerHash}}, nil
}

func newTestSetup(t *testing.T) (*worldstate.World, *queue.Queue, *Assembler) {
	t.Helper()
	world := worldstate.New(ledger.DefaultMetadataLimits())

	genesis := world.Block()
	eng := isi.New()
	require.NoError(t, eng.Execute(genesis, alice, 0, ledger.RegisterDomain{Id: "wonderland", OwnedBy: alice}))
	require.NoError(t, eng.Execute(genesis, alice, 0, ledger.RegisterAccount{Id: alice}))
	require.NoError(t, eng.Execute(genesis, alice, 0, ledger.RegisterAccount{Id: bob}))
	require.NoError(t, eng.Execute(genesis, alice, 0, ledger.RegisterAssetDefinition{
		Id: ledger.AssetDefinitionId{Name: "rose", Domain: "wonderland"}, OwnedBy: alice,
		ValueKind: ledger.ValueNumeric, NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableInfinitely,
	}))
	bus := events.NewBus()
	world.Commit(genesis, bus)

	q := queue.New(queue.Config{Capacity: 16, CapacityPerUser: 16, TTL: time.Minute, FutureThreshold: time.Minute},
		queue.NewMockClock(time.UnixMilli(1000)), nil)
	lc := txlifecycle.New(isi.New(), nil, ledger.AccountId{})
	chain := NewChain(newMemStore())
	require.NoError(t, chain.Init())

	asm := New(world, q, lc, chain, bus, stubSigner{}, NewMockClock(1000), 10)
	return world, q, asm
}

func mintTx(hash string, authority ledger.AccountId, amount int64) *wire.Transaction {
	return &wire.Transaction{
		ChainID:     "test-chain",
		AuthorityID: authority,
		InstructionSet: []ledger.Instruction{
			ledger.MintAssetNumeric{
				Asset:  ledger.AssetId{Definition: ledger.AssetDefinitionId{Name: "rose", Domain: "wonderland"}, Account: authority},
				Amount: ledger.NewNumeric(amount, 0),
			},
		},
		CreationTimeMs: 1000,
		Signatures:     []wire.Signature{{PublicKey: authority.Signatory, Signature: "sig-" + hash}},
	}
}

func TestProduceBlockCommitsAcceptedTransaction(t *testing.T) {
	world, q, asm := newTestSetup(t)
	tx := mintTx("tx1", alice, 5)
	require.NoError(t, q.Push(tx, world.View()))

	block, err := asm.ProduceBlock()
	require.NoError(t, err)
	require.Len(t, block.Accepted, 1)
	require.Empty(t, block.Rejected)
	assert.Equal(t, int64(1), block.Header.Height)
	assert.NotEmpty(t, block.Header.TransactionsMerkleRoot)
	assert.Equal(t, block.Hash, block.Header.Hash())
	assert.Equal(t, int64(1), world.Height())

	view := world.View()
	asset, err := view.GetAsset(ledger.AssetId{Definition: ledger.AssetDefinitionId{Name: "rose", Domain: "wonderland"}, Account: alice})
	require.NoError(t, err)
	assert.Equal(t, int64(5), asset.Value.Numeric.Value.Int64())
}

func TestProduceBlockBucketsRejectedTransactionSeparately(t *testing.T) {
	world, q, asm := newTestSetup(t)

	// bob neither owns the wonderland domain nor holds CanUnregisterDomain
	// for it, so this is rejected, not accepted.
	rejTx := &wire.Transaction{
		ChainID:     "test-chain",
		AuthorityID: bob,
		InstructionSet: []ledger.Instruction{
			ledger.UnregisterDomain{Id: "wonderland"},
		},
		CreationTimeMs: 1000,
		Signatures:     []wire.Signature{{PublicKey: bob.Signatory, Signature: "sig-rej"}},
	}
	okTx := mintTx("tx-ok", alice, 3)

	require.NoError(t, q.Push(rejTx, world.View()))
	require.NoError(t, q.Push(okTx, world.View()))

	block, err := asm.ProduceBlock()
	require.NoError(t, err)
	require.Len(t, block.Accepted, 1)
	require.Len(t, block.Rejected, 1)
	assert.Equal(t, txlifecycle.RejectNotPermitted, txlifecycle.RejectionKind(block.Rejected[0].RejectionKind))
	assert.NotEmpty(t, block.Header.RejectedTransactionsMerkleRoot)

	// The domain survives: the rejected instruction never committed.
	_, err = world.View().GetDomain("wonderland")
	assert.NoError(t, err)
}

func TestProduceBlockChainsHeightAndPrevHash(t *testing.T) {
	world, q, asm := newTestSetup(t)
	require.NoError(t, q.Push(mintTx("tx1", alice, 1), world.View()))
	first, err := asm.ProduceBlock()
	require.NoError(t, err)

	require.NoError(t, q.Push(mintTx("tx2", alice, 1), world.View()))
	second, err := asm.ProduceBlock()
	require.NoError(t, err)

	assert.Equal(t, int64(2), second.Header.Height)
	assert.Equal(t, first.Hash, second.Header.PreviousBlockHash)
}

func TestProduceBlockWithEmptyQueueStillCommits(t *testing.T) {
	world, _, asm := newTestSetup(t)
	block, err := asm.ProduceBlock()
	require.NoError(t, err)
	assert.Empty(t, block.Accepted)
	assert.Empty(t, block.Rejected)
	assert.Equal(t, int64(1), world.Height())
}
