package abi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/ledger"
)

func TestHostRunDispatchesToRegisteredHandler(t *testing.T) {
	h := NewHost()
	authority := ledger.AccountId{Domain: "wonderland", Signatory: "ed0120alice"}
	h.Register("contract-1", func(a ledger.AccountId) ([]ledger.Instruction, error) {
		return []ledger.Instruction{ledger.Log{Level: "info", Message: "ran as " + a.String()}}, nil
	})

	instrs, err := h.Run("contract-1", authority)
	require.NoError(t, err)
	require.Len(t, instrs, 1)
	assert.Equal(t, ledger.KindLog, instrs[0].Kind())
}

func TestHostRunUnknownRef(t *testing.T) {
	h := NewHost()
	_, err := h.Run("nope", ledger.AccountId{})
	assert.True(t, errors.Is(err, ErrNoSuchContract))
}

func TestHostRegisterPanicsOnDuplicate(t *testing.T) {
	h := NewHost()
	h.Register("contract-1", func(ledger.AccountId) ([]ledger.Instruction, error) { return nil, nil })
	assert.Panics(t, func() {
		h.Register("contract-1", func(ledger.AccountId) ([]ledger.Instruction, error) { return nil, nil })
	})
}

func TestHostRunPropagatesHandlerError(t *testing.T) {
	h := NewHost()
	boom := errors.New("boom")
	h.Register("bad", func(ledger.AccountId) ([]ledger.Instruction, error) { return nil, boom })

	_, err := h.Run("bad", ledger.AccountId{})
	assert.True(t, errors.Is(err, boom))
}
