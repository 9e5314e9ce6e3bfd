package wire

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/ledger"
)

func aliceId(t *testing.T) ledger.AccountId {
	t.Helper()
	id, err := ledger.ParseAccountId("alice@wonderland")
	require.NoError(t, err)
	return id
}

func TestTransactionJSONRoundTrip(t *testing.T) {
	alice := aliceId(t)
	tx := &Transaction{
		ChainID:     "test-chain",
		AuthorityID: alice,
		InstructionSet: []ledger.Instruction{
			ledger.RegisterDomain{Id: ledger.DomainId("newdomain"), OwnedBy: alice},
			ledger.MintAssetNumeric{
				Asset:  ledger.AssetId{Definition: ledger.AssetDefinitionId{Name: "rose", Domain: "wonderland"}, Account: alice},
				Amount: ledger.NewNumeric(10, 0),
			},
		},
		CreationTimeMs: 1000,
		Signatures:     []Signature{{PublicKey: "ed25519:abc", Signature: "sig1"}},
	}

	data, err := tx.MarshalJSON()
	require.NoError(t, err)

	var decoded Transaction
	require.NoError(t, decoded.UnmarshalJSON(data))

	require.Equal(t, tx.ChainID, decoded.ChainID)
	require.Equal(t, tx.AuthorityID, decoded.AuthorityID)
	require.Len(t, decoded.InstructionSet, 2)
	require.IsType(t, ledger.RegisterDomain{}, decoded.InstructionSet[0])
	require.IsType(t, ledger.MintAssetNumeric{}, decoded.InstructionSet[1])

	mint := decoded.InstructionSet[1].(ledger.MintAssetNumeric)
	require.Equal(t, int64(10), mint.Amount.Value.Int64())
}

func TestTransactionHashDeterministicAndSignatureIndependent(t *testing.T) {
	alice := aliceId(t)
	tx := &Transaction{
		ChainID:        "test-chain",
		AuthorityID:    alice,
		InstructionSet: []ledger.Instruction{ledger.RegisterDomain{Id: ledger.DomainId("newdomain"), OwnedBy: alice}},
		CreationTimeMs: 1000,
	}

	h1 := tx.Hash()
	h2 := tx.Hash()
	require.Equal(t, h1, h2)
	require.NotEmpty(t, h1)

	signed := *tx
	signed.Signatures = []Signature{{PublicKey: "ed25519:abc", Signature: "sig1"}}
	require.Equal(t, h1, signed.Hash(), "Hash must exclude Signatures")

	other := *tx
	other.CreationTimeMs = 2000
	require.NotEqual(t, h1, other.Hash())
}

func TestTransactionAccessors(t *testing.T) {
	alice := aliceId(t)
	tx := &Transaction{
		AuthorityID:    alice,
		CreationTimeMs: 5000,
		TTLMs:          60000,
		Signatures: []Signature{
			{PublicKey: "ed25519:one", Signature: "s1"},
			{PublicKey: "ed25519:two", Signature: "s2"},
		},
	}

	require.Equal(t, alice, tx.Authority())
	require.Equal(t, int64(5000), tx.CreationTime().UnixMilli())
	require.Equal(t, "ed25519:one", tx.SignatoryPublicKey())
	require.Equal(t, []string{"ed25519:one", "ed25519:two"}, tx.SignerPublicKeys())
	require.Equal(t, int64(60000), tx.TTL().Milliseconds())
}

func TestSignedQueryJSONRoundTrip(t *testing.T) {
	alice := aliceId(t)
	sq := &SignedQuery{
		ChainID:   "test-chain",
		Authority: alice,
		Query:     ledger.FindAccountById{Id: alice},
		Signature: Signature{PublicKey: "ed25519:abc", Signature: "sig1"},
	}

	data, err := sq.MarshalJSON()
	require.NoError(t, err)

	var decoded SignedQuery
	require.NoError(t, decoded.UnmarshalJSON(data))

	require.Equal(t, sq.ChainID, decoded.ChainID)
	require.Equal(t, sq.Authority, decoded.Authority)
	require.IsType(t, &ledger.FindAccountById{}, decoded.Query)
}

func TestBlockHeaderHashDeterministicAndHeightSensitive(t *testing.T) {
	h := BlockHeader{
		Timestamp:              1000,
		Height:                 1,
		PreviousBlockHash:      "deadbeef",
		TransactionsMerkleRoot: "aaaa",
		RejectedTransactionsMerkleRoot: "bbbb",
	}

	h1 := h.Hash()
	h2 := h.Hash()
	require.Equal(t, h1, h2)

	changed := h
	changed.Height = 2
	require.NotEqual(t, h1, changed.Hash())
}
