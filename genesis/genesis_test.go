package genesis

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/blockchain"
	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/isi"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// memStore is a minimal in-memory blockchain.Store, mirroring the
// package's own test stand-in.
type memStore struct {
	mu       sync.Mutex
	byHash   map[string]*wire.Block
	byHeight map[int64]*wire.Block
	tip      string
}

func newMemStore() *memStore {
	return &memStore{byHash: map[string]*wire.Block{}, byHeight: map[int64]*wire.Block{}}
}

func (s *memStore) GetBlock(hash string) (*wire.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHash[hash]
	if !ok {
		return nil, blockchain.ErrNotFound
	}
	return b, nil
}

func (s *memStore) GetBlockByHeight(height int64) (*wire.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.byHeight[height]
	if !ok {
		return nil, blockchain.ErrNotFound
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

func testDocument(operator ledger.AccountId) Document {
	return Document{
		Chain:        "test-chain",
		ExecutorPath: "executor.wasm",
		Parameters:   map[string]string{"block.max_transactions": "500"},
		Instructions: []ledger.Instruction{
			ledger.RegisterDomain{Id: "wonderland", OwnedBy: operator},
			ledger.RegisterAccount{Id: operator},
		},
		Topology: []ledger.Peer{{PublicKey: "ed0120peer1", Address: "127.0.0.1:1337"}},
	}
}

func TestBootstrapCommitsGenesisBlock(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	operator := ledger.AccountId{Domain: "wonderland", Signatory: pub.Hex()}

	world := worldstate.New(ledger.DefaultMetadataLimits())
	eng := isi.New()
	chain := blockchain.NewChain(newMemStore())
	require.NoError(t, chain.Init())
	bus := events.NewBus()

	block, err := Bootstrap(testDocument(operator), operator, priv, world, eng, chain, bus, 1000)
	require.NoError(t, err)

	assert.Equal(t, int64(1), block.Header.Height)
	assert.Empty(t, block.Header.PreviousBlockHash)
	assert.Equal(t, block.Hash, block.Header.Hash())
	require.Len(t, block.Accepted, 2)
	assert.Equal(t, ledger.KindUpgrade, block.Accepted[0].Instructions()[0].Kind())
	assert.Equal(t, int64(1), world.Height())

	view := world.View()
	_, err = view.GetDomain("wonderland")
	assert.NoError(t, err)
	_, err = view.GetAccount(operator)
	assert.NoError(t, err)

	peers := view.ListPeers()
	require.Len(t, peers, 1)
	assert.Equal(t, "ed0120peer1", peers[0].PublicKey)

	assert.Equal(t, int64(1), chain.Height())
}

func TestBootstrapRefusesToRunTwice(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	operator := ledger.AccountId{Domain: "wonderland", Signatory: pub.Hex()}

	world := worldstate.New(ledger.DefaultMetadataLimits())
	eng := isi.New()
	chain := blockchain.NewChain(newMemStore())
	require.NoError(t, chain.Init())
	bus := events.NewBus()

	_, err = Bootstrap(testDocument(operator), operator, priv, world, eng, chain, bus, 1000)
	require.NoError(t, err)

	_, err = Bootstrap(testDocument(operator), operator, priv, world, eng, chain, bus, 2000)
	assert.Error(t, err)
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	operator := ledger.AccountId{Domain: "wonderland", Signatory: "ed0120alice"}
	doc := testDocument(operator)
	doc.WasmTriggers = []*ledger.Trigger{
		ledger.NewTrigger(ledger.TriggerId{Name: "on_mint", Domain: "wonderland"}, ledger.Action{
			Executable: ledger.Executable{Instructions: []ledger.Instruction{
				ledger.Log{Level: "info", Message: "minted"},
			}},
			Repeats:   ledger.RepeatsIndefinitely(),
			Authority: operator,
		}),
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, doc.Chain, decoded.Chain)
	assert.Equal(t, doc.ExecutorPath, decoded.ExecutorPath)
	require.Len(t, decoded.Instructions, 2)
	assert.Equal(t, ledger.KindRegisterDomain, decoded.Instructions[0].Kind())
	require.Len(t, decoded.WasmTriggers, 1)
	require.Len(t, decoded.WasmTriggers[0].Action.Executable.Instructions, 1)
	assert.Equal(t, ledger.KindLog, decoded.WasmTriggers[0].Action.Executable.Instructions[0].Kind())
	require.Len(t, decoded.Topology, 1)
	assert.Equal(t, "ed0120peer1", decoded.Topology[0].PublicKey)
}
