package isi

import (
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// mintAssetNumeric implements spec.md §4.5's "Mint numeric to Asset" rule.
func (e *Engine) mintAssetNumeric(ws *worldstate.WriteSnapshot, v ledger.MintAssetNumeric) error {
	def, err := ws.GetAssetDefinition(v.Asset.Definition)
	if err != nil {
		return err
	}
	if def.ValueKind != ledger.ValueNumeric {
		return ErrValueKindMismatch
	}
	if err := def.NumericSpec.Check(v.Amount); err != nil {
		return err
	}
	if err := def.Mintable.AssertMintable(); err != nil {
		return err
	}

	asset, err := ws.AssetOrInsert(v.Asset, ledger.NumericValue(ledger.Zero()))
	if err != nil {
		return err
	}
	sum, err := asset.Value.Numeric.CheckedAdd(v.Amount)
	if err != nil {
		return err
	}
	asset.Value = ledger.NumericValue(sum)

	if err := ws.IncreaseAssetTotalAmount(v.Asset.Definition, v.Amount); err != nil {
		return err
	}

	if next, changed := def.Mintable.AfterMint(); changed {
		def.Mintable = next
		ws.Emit(events.Event{Type: events.EventMintabilityChanged, Data: map[string]any{
			"asset_definition_id": v.Asset.Definition.String(),
			"mintable":            next.String(),
		}})
	}

	ws.Emit(events.Event{Type: events.EventAssetAdded, Data: map[string]any{
		"asset_id": v.Asset.String(),
		"amount":   v.Amount.Value.String(),
	}})
	return nil
}

// burnAssetNumeric implements spec.md §4.5's "Burn numeric from Asset" rule.
func (e *Engine) burnAssetNumeric(ws *worldstate.WriteSnapshot, v ledger.BurnAssetNumeric) error {
	asset, err := ws.GetAsset(v.Asset)
	if err != nil {
		return err
	}
	if asset.Value.Kind != ledger.ValueNumeric {
		return ErrValueKindMismatch
	}
	remaining, err := asset.Value.Numeric.CheckedSub(v.Amount)
	if err != nil {
		return err
	}
	if err := ws.DecreaseAssetTotalAmount(v.Asset.Definition, v.Amount); err != nil {
		return err
	}

	if remaining.IsZero() {
		if err := ws.DeleteAsset(v.Asset); err != nil {
			return err
		}
	} else {
		asset.Value = ledger.NumericValue(remaining)
	}

	ws.Emit(events.Event{Type: events.EventAssetRemoved, Data: map[string]any{
		"asset_id": v.Asset.String(),
		"amount":   v.Amount.Value.String(),
	}})
	return nil
}

func (e *Engine) mintTriggerRepetitions(ws *worldstate.WriteSnapshot, v ledger.MintTriggerRepetitions) error {
	t, err := ws.GetTrigger(v.Trigger)
	if err != nil {
		return err
	}
	if t.Action.Repeats.Indefinitely {
		return nil
	}
	t.Action.Repeats.Count += v.Amount
	return nil
}

func (e *Engine) burnTriggerRepetitions(ws *worldstate.WriteSnapshot, v ledger.BurnTriggerRepetitions) error {
	t, err := ws.GetTrigger(v.Trigger)
	if err != nil {
		return err
	}
	if t.Action.Repeats.Indefinitely {
		return nil
	}
	if v.Amount > t.Action.Repeats.Count {
		return ledger.ErrNotEnoughQuantity
	}
	t.Action.Repeats.Count -= v.Amount
	return nil
}
