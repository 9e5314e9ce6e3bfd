package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/ledger"
)

var alice = ledger.AccountId{Domain: "wonderland", Signatory: "ed0120alice"}
var bob = ledger.AccountId{Domain: "wonderland", Signatory: "ed0120bob"}

func TestGenerateProducesUsableWallet(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, w.PubKey())
}

func TestNewTxIsSelfConsistentlySigned(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	tx, err := w.NewTx("testchain", alice, []ledger.Instruction{ledger.Log{Level: "info", Message: "hi"}}, 0)
	require.NoError(t, err)
	require.Len(t, tx.Signatures, 1)

	assert.Equal(t, w.PubKey(), tx.SignatoryPublicKey())
	assert.NoError(t, crypto.Verify(w.pub, []byte(tx.Hash()), tx.Signatures[0].Signature))
}

func TestTransferBuildsTransferAssetNumeric(t *testing.T) {
	w, err := Generate()
	require.NoError(t, err)

	source := ledger.AssetId{
		Definition: ledger.AssetDefinitionId{Name: "rose", Domain: "wonderland"},
		Account:    alice,
	}
	tx, err := w.Transfer("testchain", alice, source, ledger.NewNumeric(10, 0), bob, 0)
	require.NoError(t, err)
	require.Len(t, tx.Instructions(), 1)
	assert.Equal(t, ledger.KindTransferAssetNumeric, tx.Instructions()[0].Kind())
}
