package worldstate

import (
	"fmt"
	"sort"

	"github.com/tolelom/ledgerd/ledger"
)

// View is a read-only projection of one snapshotData. It implements both
// queue.StateView (HasTransaction) and the read half of the query surface.
type View struct {
	data *snapshotData
}

func (v *View) Height() int64 { return v.data.height }

func (v *View) HasTransaction(hash string) bool {
	_, ok := v.data.txHashes[hash]
	return ok
}

func (v *View) GetDomain(id ledger.DomainId) (*ledger.Domain, error) {
	d, ok := v.data.domains[id]
	if !ok {
		return nil, fmt.Errorf("worldstate: domain %q: %w", id, ledger.ErrDomainNotFound)
	}
	return d, nil
}

func (v *View) ListDomains() []*ledger.Domain {
	out := make([]*ledger.Domain, 0, len(v.data.domains))
	for _, d := range v.data.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (v *View) GetAccount(id ledger.AccountId) (*ledger.Account, error) {
	d, err := v.GetDomain(id.Domain)
	if err != nil {
		return nil, err
	}
	acc, ok := d.Accounts[id.String()]
	if !ok {
		return nil, fmt.Errorf("worldstate: account %q: %w", id, ledger.ErrAccountNotFound)
	}
	return acc, nil
}

func (v *View) ListAccountsByDomain(domain ledger.DomainId) ([]*ledger.Account, error) {
	d, err := v.GetDomain(domain)
	if err != nil {
		return nil, err
	}
	out := make([]*ledger.Account, 0, len(d.Accounts))
	for _, a := range d.Accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out, nil
}

func (v *View) GetAssetDefinition(id ledger.AssetDefinitionId) (*ledger.AssetDefinition, error) {
	d, err := v.GetDomain(id.Domain)
	if err != nil {
		return nil, err
	}
	def, ok := d.Definitions[id.String()]
	if !ok {
		return nil, fmt.Errorf("worldstate: asset definition %q: %w", id, ledger.ErrAssetDefinitionNotFound)
	}
	return def, nil
}

func (v *View) ListAssetDefinitions() []*ledger.AssetDefinition {
	var out []*ledger.AssetDefinition
	for _, d := range v.data.domains {
		for _, def := range d.Definitions {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

func (v *View) GetAsset(id ledger.AssetId) (*ledger.Asset, error) {
	acc, err := v.GetAccount(id.Account)
	if err != nil {
		return nil, err
	}
	a, ok := acc.Assets[id.Definition.String()]
	if !ok {
		// Prefer the more informative error: tell the caller if even the
		// definition is missing, matching original_source/asset.rs's
		// fallback-to-better-error behavior.
		if _, derr := v.GetAssetDefinition(id.Definition); derr != nil {
			return nil, derr
		}
		return nil, fmt.Errorf("worldstate: asset %q: %w", id, ledger.ErrAssetNotFound)
	}
	return a, nil
}

// ListAssetsByAccount returns every asset held by account, sorted by
// definition id for stable pagination.
func (v *View) ListAssetsByAccount(id ledger.AccountId) ([]*ledger.Asset, error) {
	acc, err := v.GetAccount(id)
	if err != nil {
		return nil, err
	}
	out := make([]*ledger.Asset, 0, len(acc.Assets))
	for _, a := range acc.Assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out, nil
}

// ListAssetsByDefinition is the reverse lookup "accounts with asset X".
func (v *View) ListAssetsByDefinition(id ledger.AssetDefinitionId) []*ledger.Asset {
	var out []*ledger.Asset
	for _, d := range v.data.domains {
		for _, acc := range d.Accounts {
			if a, ok := acc.Assets[id.String()]; ok {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

func (v *View) GetRole(id ledger.RoleId) (*ledger.Role, error) {
	r, ok := v.data.roles[id]
	if !ok {
		return nil, fmt.Errorf("worldstate: role %q: %w", id, ledger.ErrRoleNotFound)
	}
	return r, nil
}

func (v *View) ListRoles() []*ledger.Role {
	out := make([]*ledger.Role, 0, len(v.data.roles))
	for _, r := range v.data.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

func (v *View) GetTrigger(id ledger.TriggerId) (*ledger.Trigger, error) {
	t, ok := v.data.triggers[id.String()]
	if !ok {
		return nil, fmt.Errorf("worldstate: trigger %q: %w", id, ledger.ErrTriggerNotFound)
	}
	return t, nil
}

func (v *View) ListTriggers() []*ledger.Trigger {
	out := make([]*ledger.Trigger, 0, len(v.data.triggers))
	for _, t := range v.data.triggers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

func (v *View) GetParameter(name string) (string, bool) {
	val, ok := v.data.params[name]
	return val, ok
}

func (v *View) ListParameters() map[string]string {
	out := make(map[string]string, len(v.data.params))
	for k, val := range v.data.params {
		out[k] = val
	}
	return out
}

// ListPeers returns the genesis-configured consensus topology.
func (v *View) ListPeers() []ledger.Peer {
	out := make([]ledger.Peer, len(v.data.peers))
	copy(out, v.data.peers)
	return out
}
