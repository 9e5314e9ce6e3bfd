package isi

import (
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// ensureAccount auto-creates dst if it does not yet exist, matching spec.md
// §4.5's "destination auto-created" rule for Transfer recipients (both
// transfer handlers call it; Mint does not).
func ensureAccount(ws *worldstate.WriteSnapshot, id ledger.AccountId) error {
	if _, err := ws.GetAccount(id); err == nil {
		return nil
	}
	return ws.PutAccount(ledger.NewAccount(id))
}

// transferAssetNumeric is an atomic burn-from-source, mint-to-destination
// of the same definition (spec.md §4.5). It bypasses the public
// burnAssetNumeric/mintAssetNumeric entry points (which re-check mintability
// and authorization that a transfer does not need) and operates on the
// asset values directly.
func (e *Engine) transferAssetNumeric(ws *worldstate.WriteSnapshot, v ledger.TransferAssetNumeric) error {
	def, err := ws.GetAssetDefinition(v.Source.Definition)
	if err != nil {
		return err
	}
	if def.ValueKind != ledger.ValueNumeric {
		return ErrValueKindMismatch
	}

	src, err := ws.GetAsset(v.Source)
	if err != nil {
		return err
	}
	remaining, err := src.Value.Numeric.CheckedSub(v.Amount)
	if err != nil {
		return err
	}
	if remaining.IsZero() {
		if err := ws.DeleteAsset(v.Source); err != nil {
			return err
		}
	} else {
		src.Value = ledger.NumericValue(remaining)
	}

	if err := ensureAccount(ws, v.Destination); err != nil {
		return err
	}
	destAssetID := ledger.AssetId{Definition: v.Source.Definition, Account: v.Destination}
	dst, err := ws.AssetOrInsert(destAssetID, ledger.NumericValue(ledger.Zero()))
	if err != nil {
		return err
	}
	sum, err := dst.Value.Numeric.CheckedAdd(v.Amount)
	if err != nil {
		return err
	}
	dst.Value = ledger.NumericValue(sum)

	ws.Emit(events.Event{Type: events.EventAssetRemoved, Data: map[string]any{"asset_id": v.Source.String(), "amount": v.Amount.Value.String()}})
	ws.Emit(events.Event{Type: events.EventAssetAdded, Data: map[string]any{"asset_id": destAssetID.String(), "amount": v.Amount.Value.String()}})
	return nil
}

// transferAssetStore relocates a Store-typed asset's metadata map to the
// destination's AssetId under the same definition; the source asset is
// deleted (spec.md §4.5).
func (e *Engine) transferAssetStore(ws *worldstate.WriteSnapshot, v ledger.TransferAssetStore) error {
	def, err := ws.GetAssetDefinition(v.Source.Definition)
	if err != nil {
		return err
	}
	if def.ValueKind != ledger.ValueStore {
		return ErrValueKindMismatch
	}
	src, err := ws.GetAsset(v.Source)
	if err != nil {
		return err
	}
	store := src.Value.Store

	if err := ensureAccount(ws, v.Destination); err != nil {
		return err
	}
	if err := ws.DeleteAsset(v.Source); err != nil {
		return err
	}
	destAssetID := ledger.AssetId{Definition: v.Source.Definition, Account: v.Destination}
	if err := ws.PutAsset(&ledger.Asset{Id: destAssetID, Value: ledger.StoreValue(store)}); err != nil {
		return err
	}

	ws.Emit(events.Event{Type: events.EventAssetRemoved, Data: map[string]any{"asset_id": v.Source.String()}})
	ws.Emit(events.Event{Type: events.EventAssetAdded, Data: map[string]any{"asset_id": destAssetID.String()}})
	return nil
}

func (e *Engine) transferDomainOwnership(ws *worldstate.WriteSnapshot, v ledger.TransferDomainOwnership) error {
	d, err := ws.GetDomain(v.Domain)
	if err != nil {
		return err
	}
	d.OwnedBy = v.Destination
	return nil
}

func (e *Engine) transferAssetDefinitionOwnership(ws *worldstate.WriteSnapshot, v ledger.TransferAssetDefinitionOwnership) error {
	def, err := ws.GetAssetDefinition(v.Definition)
	if err != nil {
		return err
	}
	def.OwnedBy = v.Destination
	return nil
}
