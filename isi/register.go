package isi

import (
	"fmt"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

func (e *Engine) registerDomain(ws *worldstate.WriteSnapshot, v ledger.RegisterDomain) error {
	if _, err := ws.GetDomain(v.Id); err == nil {
		return fmt.Errorf("isi: domain %q: %w", v.Id, ErrAlreadyExists)
	}
	ws.PutDomain(ledger.NewDomain(v.Id, v.OwnedBy))
	ws.Emit(events.Event{Type: events.EventDomainRegistered, Data: map[string]any{"domain_id": v.Id.String()}})
	return nil
}

func (e *Engine) registerAccount(ws *worldstate.WriteSnapshot, v ledger.RegisterAccount) error {
	if _, err := ws.GetAccount(v.Id); err == nil {
		return fmt.Errorf("isi: account %q: %w", v.Id, ErrAlreadyExists)
	}
	if err := ws.PutAccount(ledger.NewAccount(v.Id)); err != nil {
		return err
	}
	ws.Emit(events.Event{Type: events.EventAccountRegistered, Data: map[string]any{"account_id": v.Id.String()}})
	return nil
}

func (e *Engine) registerAssetDefinition(ws *worldstate.WriteSnapshot, v ledger.RegisterAssetDefinition) error {
	if _, err := ws.GetAssetDefinition(v.Id); err == nil {
		return fmt.Errorf("isi: asset definition %q: %w", v.Id, ErrAlreadyExists)
	}
	def := ledger.NewAssetDefinition(v.Id, v.OwnedBy, v.ValueKind, v.NumericSpec, v.Mintable)
	if err := ws.PutAssetDefinition(def); err != nil {
		return err
	}
	ws.Emit(events.Event{Type: events.EventAssetDefinitionRegistered, Data: map[string]any{"asset_definition_id": v.Id.String()}})
	return nil
}

// registerAsset explicitly registers an asset at a non-zero initial value,
// distinct from the implicit fetch-or-insert-at-zero AssetOrInsert performs
// during Mint (spec.md §4.2).
func (e *Engine) registerAsset(ws *worldstate.WriteSnapshot, v ledger.RegisterAsset) error {
	def, err := ws.GetAssetDefinition(v.Id.Definition)
	if err != nil {
		return err
	}
	if def.ValueKind != v.Initial.Kind {
		return ErrValueKindMismatch
	}
	if v.Initial.Kind == ledger.ValueNumeric {
		if err := def.NumericSpec.Check(v.Initial.Numeric); err != nil {
			return err
		}
	}
	if err := ws.PutAsset(&ledger.Asset{Id: v.Id, Value: v.Initial}); err != nil {
		return err
	}
	if v.Initial.Kind == ledger.ValueNumeric && !v.Initial.Numeric.IsZero() {
		if err := ws.IncreaseAssetTotalAmount(v.Id.Definition, v.Initial.Numeric); err != nil {
			return err
		}
	}
	ws.Emit(events.Event{Type: events.EventAssetAdded, Data: map[string]any{"asset_id": v.Id.String()}})
	return nil
}

func (e *Engine) registerRole(ws *worldstate.WriteSnapshot, v ledger.RegisterRole) error {
	if _, err := ws.GetRole(v.Id); err == nil {
		return fmt.Errorf("isi: role %q: %w", v.Id, ErrAlreadyExists)
	}
	ws.PutRole(ledger.NewRole(v.Id))
	return nil
}

func (e *Engine) registerTrigger(ws *worldstate.WriteSnapshot, v ledger.RegisterTrigger) error {
	if _, err := ws.GetTrigger(v.Id); err == nil {
		return fmt.Errorf("isi: trigger %q: %w", v.Id, ErrAlreadyExists)
	}
	ws.PutTrigger(ledger.NewTrigger(v.Id, v.Action))
	ws.Emit(events.Event{Type: events.EventTriggerRegistered, Data: map[string]any{"trigger_id": v.Id.String()}})
	return nil
}
