// Package authz implements the authorization visitor (component C6): a
// composable, tree-walking policy over the instruction and query algebra
// that decides whether an authenticated authority may execute an
// instruction or read a query result.
//
// Grounded on original_source/data_model/src/visit.rs's delegate-macro
// dispatch (an outer visit_mint/visit_grant/... falling through to
// per-sub-variant handlers) and permissions_validators/src/lib.rs's
// composed policy (ownership shortcut, token check, role expansion). Go
// has no macro system, so the dispatch is a plain type switch instead of
// generated delegate methods — the composable/overridable shape survives
// as a plain Policy struct whose methods hold the rules, rather than a
// trait object.
package authz

import "github.com/tolelom/ledgerd/ledger"

// Reader is the read surface the visitor needs from the world state.
// worldstate.View and worldstate.WriteSnapshot both satisfy it through
// promoted methods, so this package never imports worldstate and stays
// free of a dependency cycle.
type Reader interface {
	GetDomain(ledger.DomainId) (*ledger.Domain, error)
	GetAccount(ledger.AccountId) (*ledger.Account, error)
	GetAssetDefinition(ledger.AssetDefinitionId) (*ledger.AssetDefinition, error)
	GetAsset(ledger.AssetId) (*ledger.Asset, error)
	GetRole(ledger.RoleId) (*ledger.Role, error)
	GetTrigger(ledger.TriggerId) (*ledger.Trigger, error)
}

// EffectiveTokens returns the union of an account's directly-granted
// tokens and the tokens of every role it holds (spec.md §4.6 item 4).
func EffectiveTokens(r Reader, account ledger.AccountId) map[string]ledger.PermissionToken {
	acc, err := r.GetAccount(account)
	if err != nil {
		return nil
	}
	out := make(map[string]ledger.PermissionToken, len(acc.Tokens))
	for k, v := range acc.Tokens {
		out[k] = v
	}
	for roleID := range acc.Roles {
		role, err := r.GetRole(roleID)
		if err != nil {
			continue // invariant 6 violation would have been caught at Grant time
		}
		for k, v := range role.Tokens {
			out[k] = v
		}
	}
	return out
}

func paramsMatch(have, want map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
