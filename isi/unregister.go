package isi

import (
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// Cascading revocation (spec.md §4.6 item 5) reuses the same parameter key
// names package authz's requiredToken binds onto tokens, so a token granted
// over an entity is always found by the same key its Unregister purges by.

func (e *Engine) unregisterDomain(ws *worldstate.WriteSnapshot, v ledger.UnregisterDomain) error {
	if _, err := ws.GetDomain(v.Id); err != nil {
		return err
	}
	ws.DeleteDomain(v.Id)
	ws.RevokeTokensReferencing("domain_id", v.Id.String())
	ws.Emit(events.Event{Type: events.EventDomainDeleted, Data: map[string]any{"domain_id": v.Id.String()}})
	return nil
}

func (e *Engine) unregisterAccount(ws *worldstate.WriteSnapshot, v ledger.UnregisterAccount) error {
	if _, err := ws.GetAccount(v.Id); err != nil {
		return err
	}
	if err := ws.DeleteAccount(v.Id); err != nil {
		return err
	}
	ws.RevokeTokensReferencing("account_id", v.Id.String())
	ws.Emit(events.Event{Type: events.EventAccountDeleted, Data: map[string]any{"account_id": v.Id.String()}})
	return nil
}

func (e *Engine) unregisterAssetDefinition(ws *worldstate.WriteSnapshot, v ledger.UnregisterAssetDefinition) error {
	if _, err := ws.GetAssetDefinition(v.Id); err != nil {
		return err
	}
	if err := ws.DeleteAssetDefinition(v.Id); err != nil {
		return err
	}
	// Every asset of this definition is purged from its holding accounts —
	// an unregistered definition leaves no dangling assets behind.
	for _, a := range ws.ListAssetsByDefinition(v.Id) {
		_ = ws.DeleteAsset(a.Id)
	}
	ws.RevokeTokensReferencing("asset_definition_id", v.Id.String())
	// Tokens bound to a single asset of this definition (asset_id) reference
	// it too, whether or not that asset is still held.
	for _, d := range ws.ListDomains() {
		for _, acc := range d.Accounts {
			for key, tok := range acc.Tokens {
				if ref, ok := tok.Params["asset_id"]; ok {
					if id, err := ledger.ParseAssetId(ref); err == nil && id.Definition == v.Id {
						delete(acc.Tokens, key)
					}
				}
			}
		}
	}
	ws.Emit(events.Event{Type: events.EventAssetDefinitionDeleted, Data: map[string]any{"asset_definition_id": v.Id.String()}})
	return nil
}

func (e *Engine) unregisterRole(ws *worldstate.WriteSnapshot, v ledger.UnregisterRole) error {
	if _, err := ws.GetRole(v.Id); err != nil {
		return err
	}
	ws.DeleteRole(v.Id)
	for _, d := range ws.ListDomains() {
		for _, acc := range d.Accounts {
			delete(acc.Roles, v.Id)
		}
	}
	return nil
}

func (e *Engine) unregisterTrigger(ws *worldstate.WriteSnapshot, v ledger.UnregisterTrigger) error {
	if _, err := ws.GetTrigger(v.Id); err != nil {
		return err
	}
	ws.DeleteTrigger(v.Id)
	ws.RevokeTokensReferencing("trigger_id", v.Id.String())
	ws.Emit(events.Event{Type: events.EventTriggerDeleted, Data: map[string]any{"trigger_id": v.Id.String()}})
	return nil
}
