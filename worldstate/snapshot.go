package worldstate

import (
	"fmt"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
)

// WriteSnapshot is the single mutable working copy of the world, held for
// the duration of one block's validation by the block-assembly thread.
// Every instruction in package isi mutates through this type.
type WriteSnapshot struct {
	View
	limits ledger.MetadataLimits
	buf    *events.Buffer
}

// Limits exposes the configured metadata limits to instruction handlers.
func (w *WriteSnapshot) Limits() ledger.MetadataLimits { return w.limits }

// Emit buffers an event; it is published only if the enclosing block
// commits (see World.Commit -> Buffer.Flush).
func (w *WriteSnapshot) Emit(ev events.Event) {
	ev.BlockHeight = w.data.height + 1
	w.buf.Record(ev)
}

// DiscardEvents discards every event staged so far. Used when a transaction
// within the block fails validation; the block's write snapshot keeps
// running for the next transaction, but this transaction's own events (and
// the caller's separate reversion of its data mutations) are dropped.
//
// Data mutations themselves are rolled back by the caller re-cloning a
// fresh per-transaction WriteSnapshot (see txlifecycle.Lifecycle.Validate),
// not by this method — DiscardEvents only concerns the event buffer.
func (w *WriteSnapshot) DiscardEvents() { w.buf.Discard() }

// Clone produces an independent WriteSnapshot over the same starting data,
// used by txlifecycle to give each transaction its own rollback boundary
// within one block's overall write snapshot.
func (w *WriteSnapshot) Clone() *WriteSnapshot {
	return &WriteSnapshot{
		View:   View{data: w.data.clone()},
		limits: w.limits,
		buf:    events.NewBuffer(),
	}
}

// Absorb merges child's data and buffered events into w, used after a
// per-transaction clone succeeds and must be folded back into the block's
// running snapshot.
func (w *WriteSnapshot) Absorb(child *WriteSnapshot) {
	w.data = child.data
	for _, ev := range child.buf.Drain() {
		w.buf.Record(ev)
	}
}

func (w *WriteSnapshot) RecordTransaction(hash string) {
	// Copy-on-write: txHashes may still be aliased with a sibling snapshot.
	fresh := make(map[string]struct{}, len(w.data.txHashes)+1)
	for k := range w.data.txHashes {
		fresh[k] = struct{}{}
	}
	fresh[hash] = struct{}{}
	w.data.txHashes = fresh
}

// ---- Domain ----

func (w *WriteSnapshot) PutDomain(d *ledger.Domain) {
	w.data.domains[d.Id] = d
}

func (w *WriteSnapshot) DeleteDomain(id ledger.DomainId) {
	delete(w.data.domains, id)
}

// ---- Account ----

func (w *WriteSnapshot) PutAccount(a *ledger.Account) error {
	d, err := w.GetDomain(a.Id.Domain)
	if err != nil {
		return err
	}
	d.Accounts[a.Id.String()] = a
	return nil
}

func (w *WriteSnapshot) DeleteAccount(id ledger.AccountId) error {
	d, err := w.GetDomain(id.Domain)
	if err != nil {
		return err
	}
	delete(d.Accounts, id.String())
	return nil
}

// ---- AssetDefinition ----

func (w *WriteSnapshot) PutAssetDefinition(def *ledger.AssetDefinition) error {
	d, err := w.GetDomain(def.Id.Domain)
	if err != nil {
		return err
	}
	d.Definitions[def.Id.String()] = def
	return nil
}

func (w *WriteSnapshot) DeleteAssetDefinition(id ledger.AssetDefinitionId) error {
	d, err := w.GetDomain(id.Domain)
	if err != nil {
		return err
	}
	delete(d.Definitions, id.String())
	return nil
}

func (w *WriteSnapshot) IncreaseAssetTotalAmount(id ledger.AssetDefinitionId, amount ledger.Numeric) error {
	def, err := w.GetAssetDefinition(id)
	if err != nil {
		return err
	}
	total, err := def.TotalQuantity.CheckedAdd(amount)
	if err != nil {
		return err
	}
	def.TotalQuantity = total
	return nil
}

func (w *WriteSnapshot) DecreaseAssetTotalAmount(id ledger.AssetDefinitionId, amount ledger.Numeric) error {
	def, err := w.GetAssetDefinition(id)
	if err != nil {
		return err
	}
	total, err := def.TotalQuantity.CheckedSub(amount)
	if err != nil {
		return err
	}
	def.TotalQuantity = total
	return nil
}

// ---- Asset ----

func (w *WriteSnapshot) PutAsset(a *ledger.Asset) error {
	acc, err := w.GetAccount(a.Id.Account)
	if err != nil {
		return err
	}
	acc.Assets[a.Id.Definition.String()] = a
	return nil
}

// DeleteAsset removes an asset from its holding account, implementing the
// zero-purge invariant (spec.md invariant 3).
func (w *WriteSnapshot) DeleteAsset(id ledger.AssetId) error {
	acc, err := w.GetAccount(id.Account)
	if err != nil {
		return err
	}
	delete(acc.Assets, id.Definition.String())
	return nil
}

// AssetOrInsert returns the asset at id, creating it with defaultValue if
// absent. Fails if the holding account does not exist (spec.md §4.2).
func (w *WriteSnapshot) AssetOrInsert(id ledger.AssetId, defaultValue ledger.AssetValue) (*ledger.Asset, error) {
	acc, err := w.GetAccount(id.Account)
	if err != nil {
		return nil, err
	}
	key := id.Definition.String()
	if a, ok := acc.Assets[key]; ok {
		return a, nil
	}
	a := &ledger.Asset{Id: id, Value: defaultValue}
	acc.Assets[key] = a
	return a, nil
}

// ---- Role ----

func (w *WriteSnapshot) PutRole(r *ledger.Role) { w.data.roles[r.Id] = r }

func (w *WriteSnapshot) DeleteRole(id ledger.RoleId) { delete(w.data.roles, id) }

// ---- Trigger ----

func (w *WriteSnapshot) PutTrigger(t *ledger.Trigger) { w.data.triggers[t.Id.String()] = t }

func (w *WriteSnapshot) DeleteTrigger(id ledger.TriggerId) { delete(w.data.triggers, id.String()) }

// ---- Parameters ----

func (w *WriteSnapshot) SetParameter(name, value string) { w.data.params[name] = value }

func (w *WriteSnapshot) NewParameter(name, value string) error {
	if _, exists := w.data.params[name]; exists {
		return fmt.Errorf("worldstate: parameter %q already exists", name)
	}
	w.data.params[name] = value
	return nil
}

// ---- Cascading revocation (invariant: after Unregister(E), no remaining
// permission token references E) ----

// RevokeTokensReferencing removes, from every account in the world, any
// permission token whose single identifying parameter equals ref. Used by
// package isi's Unregister handlers per spec.md §4.6 item 5.
func (w *WriteSnapshot) RevokeTokensReferencing(paramKey, ref string) (revoked int) {
	for _, d := range w.data.domains {
		for _, acc := range d.Accounts {
			for key, tok := range acc.Tokens {
				if tok.Params[paramKey] == ref {
					delete(acc.Tokens, key)
					revoked++
				}
			}
		}
	}
	return revoked
}
