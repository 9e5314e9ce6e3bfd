package isi

import (
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

func (e *Engine) setKeyValueAsset(ws *worldstate.WriteSnapshot, v ledger.SetKeyValueAsset) error {
	a, err := ws.GetAsset(v.Asset)
	if err != nil {
		return err
	}
	if a.Value.Kind != ledger.ValueStore {
		return ErrValueKindMismatch
	}
	if err := a.Value.Store.Insert(ws.Limits(), v.Key, v.Value); err != nil {
		return err
	}
	ws.Emit(events.Event{Type: events.EventAssetMetadataSet, Data: map[string]any{"asset_id": v.Asset.String(), "key": v.Key}})
	return nil
}

func (e *Engine) removeKeyValueAsset(ws *worldstate.WriteSnapshot, v ledger.RemoveKeyValueAsset) error {
	a, err := ws.GetAsset(v.Asset)
	if err != nil {
		return err
	}
	if a.Value.Kind != ledger.ValueStore {
		return ErrValueKindMismatch
	}
	if err := a.Value.Store.Remove(v.Key); err != nil {
		return err
	}
	ws.Emit(events.Event{Type: events.EventAssetMetadataRemoved, Data: map[string]any{"asset_id": v.Asset.String(), "key": v.Key}})
	return nil
}

func (e *Engine) setKeyValueAccount(ws *worldstate.WriteSnapshot, v ledger.SetKeyValueAccount) error {
	acc, err := ws.GetAccount(v.Account)
	if err != nil {
		return err
	}
	return acc.Metadata.Insert(ws.Limits(), v.Key, v.Value)
}

func (e *Engine) removeKeyValueAccount(ws *worldstate.WriteSnapshot, v ledger.RemoveKeyValueAccount) error {
	acc, err := ws.GetAccount(v.Account)
	if err != nil {
		return err
	}
	return acc.Metadata.Remove(v.Key)
}

func (e *Engine) setKeyValueDomain(ws *worldstate.WriteSnapshot, v ledger.SetKeyValueDomain) error {
	d, err := ws.GetDomain(v.Domain)
	if err != nil {
		return err
	}
	return d.Metadata.Insert(ws.Limits(), v.Key, v.Value)
}

func (e *Engine) removeKeyValueDomain(ws *worldstate.WriteSnapshot, v ledger.RemoveKeyValueDomain) error {
	d, err := ws.GetDomain(v.Domain)
	if err != nil {
		return err
	}
	return d.Metadata.Remove(v.Key)
}

func (e *Engine) setKeyValueAssetDefinition(ws *worldstate.WriteSnapshot, v ledger.SetKeyValueAssetDefinition) error {
	def, err := ws.GetAssetDefinition(v.Definition)
	if err != nil {
		return err
	}
	return def.Metadata.Insert(ws.Limits(), v.Key, v.Value)
}

func (e *Engine) removeKeyValueAssetDefinition(ws *worldstate.WriteSnapshot, v ledger.RemoveKeyValueAssetDefinition) error {
	def, err := ws.GetAssetDefinition(v.Definition)
	if err != nil {
		return err
	}
	return def.Metadata.Remove(v.Key)
}

func (e *Engine) setKeyValueTrigger(ws *worldstate.WriteSnapshot, v ledger.SetKeyValueTrigger) error {
	t, err := ws.GetTrigger(v.Trigger)
	if err != nil {
		return err
	}
	return t.Metadata.Insert(ws.Limits(), v.Key, v.Value)
}

func (e *Engine) removeKeyValueTrigger(ws *worldstate.WriteSnapshot, v ledger.RemoveKeyValueTrigger) error {
	t, err := ws.GetTrigger(v.Trigger)
	if err != nil {
		return err
	}
	return t.Metadata.Remove(v.Key)
}
