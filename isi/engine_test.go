package isi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

var alice = ledger.AccountId{Domain: "wonderland", Signatory: "ed0120alice"}
var bob = ledger.AccountId{Domain: "wonderland", Signatory: "ed0120bob"}

func newWorldWithWonderland(t *testing.T) (*worldstate.World, *worldstate.WriteSnapshot, *Engine) {
	t.Helper()
	w := worldstate.New(ledger.DefaultMetadataLimits())
	ws := w.Block()
	eng := New()
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterDomain{Id: "wonderland", OwnedBy: alice}))
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAccount{Id: alice}))
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAccount{Id: bob}))
	return w, ws, eng
}

func TestRegisterDomainRejectsDuplicate(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	err := eng.Execute(ws, alice, 0, ledger.RegisterDomain{Id: "wonderland", OwnedBy: alice})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMintAssetNumericAccumulatesAndTotals(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "xor", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecFractional(2), Mintable: ledger.MintableInfinitely,
	}))

	assetID := ledger.AssetId{Definition: defID, Account: alice}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(100, 0)}))
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(50, 2)}))

	a, err := ws.GetAsset(assetID)
	require.NoError(t, err)
	assert.Equal(t, "10050", a.Value.Numeric.Value.String())

	def, err := ws.GetAssetDefinition(defID)
	require.NoError(t, err)
	assert.Equal(t, "10050", def.TotalQuantity.Value.String())
}

func TestMintOnceTransitionsToNotAndEmitsEvent(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "badge", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableOnce,
	}))
	assetID := ledger.AssetId{Definition: defID, Account: alice}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(1, 0)}))

	def, err := ws.GetAssetDefinition(defID)
	require.NoError(t, err)
	assert.Equal(t, ledger.MintableNot, def.Mintable)

	err = eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(1, 0)})
	assert.ErrorIs(t, err, ledger.ErrMintUnmintable)
}

func TestBurnToZeroPurgesAsset(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "xor", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableInfinitely,
	}))
	assetID := ledger.AssetId{Definition: defID, Account: alice}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(10, 0)}))
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.BurnAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(10, 0)}))

	_, err := ws.GetAsset(assetID)
	assert.ErrorIs(t, err, ledger.ErrAssetNotFound)

	def, err := ws.GetAssetDefinition(defID)
	require.NoError(t, err)
	assert.True(t, def.TotalQuantity.IsZero())
}

func TestBurnNotEnoughQuantity(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "xor", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableInfinitely,
	}))
	assetID := ledger.AssetId{Definition: defID, Account: alice}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(5, 0)}))
	err := eng.Execute(ws, alice, 1, ledger.BurnAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(10, 0)})
	assert.ErrorIs(t, err, ledger.ErrNotEnoughQuantity)
}

func TestTransferAssetNumericAutoCreatesDestination(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "xor", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableInfinitely,
	}))
	srcID := ledger.AssetId{Definition: defID, Account: alice}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.MintAssetNumeric{Asset: srcID, Amount: ledger.NewNumeric(100, 0)}))

	// Alice owns the source asset (ownership shortcut permits the transfer).
	err := eng.Execute(ws, alice, 1, ledger.TransferAssetNumeric{
		Source: srcID, Amount: ledger.NewNumeric(40, 0), Destination: bob,
	})
	require.NoError(t, err)

	_, err = ws.GetAsset(srcID)
	require.NoError(t, err)
	dstAsset, err := ws.GetAsset(ledger.AssetId{Definition: defID, Account: bob})
	require.NoError(t, err)
	assert.Equal(t, "40", dstAsset.Value.Numeric.Value.String())
}

func TestCascadingRevocationOnUnregisterAssetDefinition(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "xor", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableInfinitely,
	}))
	assetID := ledger.AssetId{Definition: defID, Account: alice}
	tok := ledger.PermissionToken{Name: "CanTransferUserAsset", Params: map[string]string{"asset_id": assetID.String()}}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.GrantAccountPermission{Account: bob, Token: tok}))

	bobAcc, err := ws.GetAccount(bob)
	require.NoError(t, err)
	require.Contains(t, bobAcc.Tokens, tok.Key())

	require.NoError(t, eng.Execute(ws, alice, 1, ledger.UnregisterAssetDefinition{Id: defID}))

	bobAcc, err = ws.GetAccount(bob)
	require.NoError(t, err)
	assert.NotContains(t, bobAcc.Tokens, tok.Key())

	// And the now-dangling token can no longer authorize a transfer.
	err = eng.Execute(ws, bob, 1, ledger.TransferAssetNumeric{Source: assetID, Destination: alice, Amount: ledger.NewNumeric(1, 0)})
	assert.Error(t, err)
}

func TestExecuteTriggerRunsUnderTriggerAuthority(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	defID := ledger.AssetDefinitionId{Name: "xor", Domain: "wonderland"}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterAssetDefinition{
		Id: defID, OwnedBy: alice, ValueKind: ledger.ValueNumeric,
		NumericSpec: ledger.SpecInteger(), Mintable: ledger.MintableInfinitely,
	}))
	assetID := ledger.AssetId{Definition: defID, Account: alice}
	triggerID := ledger.TriggerId{Name: "reward"}
	action := ledger.Action{
		Executable: ledger.Executable{Instructions: []ledger.Instruction{
			ledger.MintAssetNumeric{Asset: assetID, Amount: ledger.NewNumeric(1, 0)},
		}},
		Repeats:   ledger.RepeatsExactly(1),
		Authority: alice,
	}
	require.NoError(t, eng.Execute(ws, alice, 0, ledger.RegisterTrigger{Id: triggerID, Action: action}))

	execToken := ledger.PermissionToken{Name: "CanExecuteUserTrigger", Params: map[string]string{"trigger_id": triggerID.String()}}
	require.NoError(t, eng.Execute(ws, alice, 1, ledger.GrantAccountPermission{Account: bob, Token: execToken}))

	// Bob may invoke the trigger (granted CanExecuteUserTrigger) but holds
	// no mint permission of his own: the instructions inside run as the
	// trigger's configured authority (Alice), not Bob's.
	require.NoError(t, eng.Execute(ws, bob, 1, ledger.ExecuteTriggerInstr{Trigger: triggerID}))

	a, err := ws.GetAsset(assetID)
	require.NoError(t, err)
	assert.Equal(t, "1", a.Value.Numeric.Value.String())

	trig, err := ws.GetTrigger(triggerID)
	require.NoError(t, err)
	assert.True(t, trig.Action.Repeats.Exhausted())

	err = eng.Execute(ws, bob, 1, ledger.ExecuteTriggerInstr{Trigger: triggerID})
	assert.Error(t, err)
}

func TestFailInstructionAborts(t *testing.T) {
	_, ws, eng := newWorldWithWonderland(t)
	err := eng.Execute(ws, alice, 1, ledger.Fail{Message: "boom"})
	assert.Error(t, err)
}
