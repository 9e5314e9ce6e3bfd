package rpc

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/indexer"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/queryexec"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	world := worldstate.New(ledger.DefaultMetadataLimits())
	q := queue.New(queue.Config{Capacity: 10, CapacityPerUser: 10, TTL: time.Hour, FutureThreshold: time.Minute},
		fixedClock{now: time.Now()}, nil)
	exec := queryexec.New(nil, nil)
	db, err := bolt.Open(filepath.Join(t.TempDir(), "idx.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	bus := events.NewBus()
	idx, err := indexer.New(db, bus, zerolog.Nop())
	require.NoError(t, err)
	return NewHandler(world, q, exec, idx, "test-chain")
}

func TestQueryRejectsWrongChainID(t *testing.T) {
	h := newTestHandler(t)
	sq := &wire.SignedQuery{ChainID: "other-chain", Authority: ledger.AccountId{Domain: "wonderland", Signatory: "alice"},
		Query: ledger.FindAllDomains{}}
	params, err := json.Marshal(sq)
	require.NoError(t, err)

	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "query", Params: params})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestQueryFindAllDomainsEmpty(t *testing.T) {
	h := newTestHandler(t)
	sq := &wire.SignedQuery{ChainID: "test-chain", Authority: ledger.AccountId{Domain: "wonderland", Signatory: "alice"},
		Query: ledger.FindAllDomains{}}
	params, err := json.Marshal(sq)
	require.NoError(t, err)

	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "query", Params: params})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var qr wire.QueryResponse
	require.NoError(t, json.Unmarshal(data, &qr))
	assert.Equal(t, 0, qr.TotalCount)
}

func TestSendTxRejectsWrongChainID(t *testing.T) {
	h := newTestHandler(t)
	tx := &wire.Transaction{ChainID: "other-chain",
		AuthorityID:    ledger.AccountId{Domain: "wonderland", Signatory: "alice"},
		InstructionSet: []ledger.Instruction{ledger.Log{Level: "info", Message: "hi"}},
		CreationTimeMs: time.Now().UnixMilli(),
		Signatures:     []wire.Signature{{PublicKey: "alice", Signature: "deadbeef"}},
	}
	data, err := json.Marshal(tx)
	require.NoError(t, err)

	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "sendTx", Params: data})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestSendTxQueuesValidTransaction(t *testing.T) {
	h := newTestHandler(t)
	tx := &wire.Transaction{ChainID: "test-chain",
		AuthorityID:    ledger.AccountId{Domain: "wonderland", Signatory: "alice"},
		InstructionSet: []ledger.Instruction{ledger.Log{Level: "info", Message: "hi"}},
		CreationTimeMs: time.Now().UnixMilli(),
		Signatures:     []wire.Signature{{PublicKey: "alice", Signature: "deadbeef"}},
	}
	data, err := json.Marshal(tx)
	require.NoError(t, err)

	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "sendTx", Params: data})
	require.Nil(t, resp.Error)
	assert.True(t, h.queue.HasTransaction(tx.Hash()))
}

func TestGetTransactionHeightUnknown(t *testing.T) {
	h := newTestHandler(t)
	params, err := json.Marshal(map[string]string{"hash": "deadbeef"})
	require.NoError(t, err)

	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "getTransactionHeight", Params: params})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternalError, resp.Error.Code)
}

func TestUnknownMethod(t *testing.T) {
	h := newTestHandler(t)
	resp := h.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: "bogus"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}
