package ledger

import "math/big"

// Clone methods give worldstate a cheap copy-on-write snapshot mechanism:
// a write snapshot clones every entity it might touch so concurrent
// readers of the previously-committed state never observe a half-applied
// mutation.

func (d *Domain) Clone() *Domain {
	if d == nil {
		return nil
	}
	out := &Domain{
		Id:          d.Id,
		OwnedBy:     d.OwnedBy,
		Metadata:    d.Metadata.Clone(),
		Accounts:    make(map[string]*Account, len(d.Accounts)),
		Definitions: make(map[string]*AssetDefinition, len(d.Definitions)),
	}
	for k, v := range d.Accounts {
		out.Accounts[k] = v.Clone()
	}
	for k, v := range d.Definitions {
		out.Definitions[k] = v.Clone()
	}
	return out
}

func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := &Account{
		Id:                 a.Id,
		Metadata:           a.Metadata.Clone(),
		Assets:             make(map[string]*Asset, len(a.Assets)),
		Tokens:             make(map[string]PermissionToken, len(a.Tokens)),
		Roles:              make(map[RoleId]struct{}, len(a.Roles)),
		SignatureCondition: a.SignatureCondition,
	}
	out.SignatureCondition.Keys = append([]string(nil), a.SignatureCondition.Keys...)
	for k, v := range a.Assets {
		out.Assets[k] = v.Clone()
	}
	for k, v := range a.Tokens {
		out.Tokens[k] = v
	}
	for k := range a.Roles {
		out.Roles[k] = struct{}{}
	}
	return out
}

func (d *AssetDefinition) Clone() *AssetDefinition {
	if d == nil {
		return nil
	}
	out := *d
	out.Metadata = d.Metadata.Clone()
	if d.TotalQuantity.Value != nil {
		out.TotalQuantity.Value = new(big.Int).Set(d.TotalQuantity.Value)
	}
	return &out
}

func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	out := *a
	if a.Value.Numeric.Value != nil {
		out.Value.Numeric.Value = new(big.Int).Set(a.Value.Numeric.Value)
	}
	out.Value.Store = a.Value.Store.Clone()
	return &out
}

func (r *Role) Clone() *Role {
	if r == nil {
		return nil
	}
	out := &Role{Id: r.Id, Tokens: make(map[string]PermissionToken, len(r.Tokens))}
	for k, v := range r.Tokens {
		out.Tokens[k] = v
	}
	return out
}

func (t *Trigger) Clone() *Trigger {
	if t == nil {
		return nil
	}
	out := *t
	out.Metadata = t.Metadata.Clone()
	out.Action.Executable.Instructions = append([]Instruction(nil), t.Action.Executable.Instructions...)
	return &out
}
