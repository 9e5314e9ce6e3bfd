package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	sig := Sign(priv, []byte("payload"))
	assert.NoError(t, Verify(pub, []byte("payload"), sig))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	sig := Sign(priv, []byte("payload"))
	assert.Error(t, Verify(pub, []byte("tampered"), sig))
}

func TestVerifyRejectsMalformedHex(t *testing.T) {
	_, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.Error(t, Verify(pub, []byte("payload"), "not-hex"))
}

func TestHexRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	decodedPub, err := PubKeyFromHex(pub.Hex())
	require.NoError(t, err)
	assert.Equal(t, pub, decodedPub)

	decodedPriv, err := PrivKeyFromHex(priv.Hex())
	require.NoError(t, err)
	assert.Equal(t, priv, decodedPriv)
}

func TestPublicDerivesMatchingKey(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	require.NoError(t, err)
	assert.Equal(t, pub, priv.Public())
}
