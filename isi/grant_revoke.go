package isi

import (
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// grantAccountPermission runs the grant meta-check (spec.md §4.6 item 6)
// itself: GrantAccountPermission is not one of the instruction kinds
// package authz's requiredToken gates directly (granting is authorized by
// what is granted, not by a token over "grant" itself), so the generic
// Engine.execute authorization pass always falls through to allow and the
// real check happens here.
func (e *Engine) grantAccountPermission(ws *worldstate.WriteSnapshot, authority ledger.AccountId, height int64, v ledger.GrantAccountPermission) error {
	if err := e.Policy.AuthorizeGrant(ws, authority, height, v.Token); err != nil {
		return err
	}
	acc, err := ws.GetAccount(v.Account)
	if err != nil {
		return err
	}
	acc.Tokens[v.Token.Key()] = v.Token
	ws.Emit(events.Event{Type: events.EventPermissionGranted, Data: map[string]any{
		"account_id": v.Account.String(),
		"token":      v.Token.Name,
	}})
	return nil
}

func (e *Engine) revokeAccountPermission(ws *worldstate.WriteSnapshot, v ledger.RevokeAccountPermission) error {
	acc, err := ws.GetAccount(v.Account)
	if err != nil {
		return err
	}
	delete(acc.Tokens, v.Token.Key())
	ws.Emit(events.Event{Type: events.EventPermissionRevoked, Data: map[string]any{
		"account_id": v.Account.String(),
		"token":      v.Token.Name,
	}})
	return nil
}

func (e *Engine) grantAccountRole(ws *worldstate.WriteSnapshot, v ledger.GrantAccountRole) error {
	acc, err := ws.GetAccount(v.Account)
	if err != nil {
		return err
	}
	if _, err := ws.GetRole(v.Role); err != nil {
		return err
	}
	acc.Roles[v.Role] = struct{}{}
	ws.Emit(events.Event{Type: events.EventRoleGranted, Data: map[string]any{
		"account_id": v.Account.String(),
		"role_id":    v.Role.String(),
	}})
	return nil
}

func (e *Engine) revokeAccountRole(ws *worldstate.WriteSnapshot, v ledger.RevokeAccountRole) error {
	acc, err := ws.GetAccount(v.Account)
	if err != nil {
		return err
	}
	delete(acc.Roles, v.Role)
	ws.Emit(events.Event{Type: events.EventRoleRevoked, Data: map[string]any{
		"account_id": v.Account.String(),
		"role_id":    v.Role.String(),
	}})
	return nil
}
