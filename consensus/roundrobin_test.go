package consensus

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/merkle"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

func zeroLogger() zerolog.Logger { return zerolog.Nop() }

func newWorldWithPeers(t *testing.T, peers []ledger.Peer) *worldstate.World {
	t.Helper()
	world := worldstate.New(ledger.DefaultMetadataLimits())
	world.SetPeers(peers)
	return world
}

func TestIsProposerRotatesByHeight(t *testing.T) {
	privA, pubA, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	privB, pubB, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	peers := []ledger.Peer{{PublicKey: pubA.Hex()}, {PublicKey: pubB.Hex()}}
	world := newWorldWithPeers(t, peers)

	rrA := New(world, privA, zeroLogger())
	rrB := New(world, privB, zeroLogger())

	// world.Height() == 0, so next height is 1: 1 % 2 == 1 -> peer B's turn.
	assert.False(t, rrA.IsProposer())
	assert.True(t, rrB.IsProposer())
}

func TestSignHeaderProducesVerifiableSignature(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	world := newWorldWithPeers(t, []ledger.Peer{{PublicKey: pub.Hex()}})
	rr := New(world, priv, zeroLogger())

	sigs, err := rr.SignHeader("deadbeef")
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, pub.Hex(), sigs[0].PublicKey)
	assert.NoError(t, crypto.Verify(pub, []byte("deadbeef"), sigs[0].Signature))
}

func buildSignedBlock(t *testing.T, priv crypto.PrivateKey, height int64, prevHash string) *wire.Block {
	t.Helper()
	header := wire.BlockHeader{
		Height: height, PreviousBlockHash: prevHash,
		TransactionsMerkleRoot: merkle.Root(nil), RejectedTransactionsMerkleRoot: merkle.Root(nil),
	}
	headerHash := header.Hash()
	return &wire.Block{
		Header: header, Hash: headerHash,
		Signatures: []wire.Signature{{PublicKey: priv.Public().Hex(), Signature: crypto.Sign(priv, []byte(headerHash))}},
	}
}

func TestVerifyBlockAcceptsWellFormedFirstBlock(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	peers := []ledger.Peer{{PublicKey: pub.Hex()}}
	block := buildSignedBlock(t, priv, 1, "")

	assert.NoError(t, VerifyBlock(block, peers, 0, ""))
}

func TestVerifyBlockRejectsWrongProposer(t *testing.T) {
	proposerPriv, _, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	_, otherPub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	peers := []ledger.Peer{{PublicKey: otherPub.Hex()}}

	block := buildSignedBlock(t, proposerPriv, 1, "")
	assert.Error(t, VerifyBlock(block, peers, 0, ""))
}

func TestVerifyBlockRejectsPrevHashMismatch(t *testing.T) {
	priv, pub, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	peers := []ledger.Peer{{PublicKey: pub.Hex()}}
	block := buildSignedBlock(t, priv, 2, "wrong-prev-hash")

	err = VerifyBlock(block, peers, 1, "actual-tip-hash")
	assert.Error(t, err)
}
