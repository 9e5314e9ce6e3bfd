package network

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

func TestPeerSendReceiveRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sp := NewPeer("server", "", server)
	cp := NewPeer("client", "", client)

	go func() {
		_ = sp.Send(Message{Type: MsgHello, Payload: []byte(`{"ok":true}`)})
	}()

	msg, err := cp.Receive()
	require.NoError(t, err)
	assert.Equal(t, MsgHello, msg.Type)
}

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

func TestNodeHandleTxPushesToQueue(t *testing.T) {
	world := worldstate.New(ledger.DefaultMetadataLimits())
	q := queue.New(queue.Config{Capacity: 10, CapacityPerUser: 10, TTL: time.Hour, FutureThreshold: time.Minute},
		fakeClock{now: time.Now()}, nil)

	n := NewNode("node0", "127.0.0.1:0", q, world, nil, zerolog.Nop())

	authority := ledger.AccountId{Domain: "wonderland", Signatory: "ed0120alice"}
	tx := &wire.Transaction{
		ChainID: "test", AuthorityID: authority,
		InstructionSet: []ledger.Instruction{ledger.Log{Level: "info", Message: "hi"}},
		CreationTimeMs: time.Now().UnixMilli(),
		Signatures:     []wire.Signature{{PublicKey: "ed0120alice", Signature: "deadbeef"}},
	}
	data, err := tx.MarshalJSON()
	require.NoError(t, err)

	n.handleTx(nil, Message{Type: MsgTx, Payload: data})

	assert.True(t, q.HasTransaction(tx.Hash()))
	assert.False(t, world.View().HasTransaction(tx.Hash())) // queued, not yet committed
}
