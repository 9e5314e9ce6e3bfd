package ledger

import "errors"

// ErrAssetNotFound, ErrAssetDefinitionNotFound, etc. are the FindError
// family from spec.md §7; storage/worldstate layers wrap these with the id
// that was not found.
var (
	ErrAssetNotFound           = errors.New("ledger: asset not found")
	ErrAssetDefinitionNotFound = errors.New("ledger: asset definition not found")
	ErrAccountNotFound         = errors.New("ledger: account not found")
	ErrDomainNotFound          = errors.New("ledger: domain not found")
	ErrRoleNotFound            = errors.New("ledger: role not found")
	ErrTriggerNotFound         = errors.New("ledger: trigger not found")
	ErrPeerNotFound            = errors.New("ledger: peer not found")
	ErrTransactionNotFound     = errors.New("ledger: transaction not found")
)

// ValueKind tags what an AssetDefinition's value variant is.
type ValueKind int

const (
	ValueNumeric ValueKind = iota
	ValueStore
)

// Domain owns accounts and asset definitions registered under its name.
type Domain struct {
	Id          DomainId
	OwnedBy     AccountId
	Metadata    Metadata
	Accounts    map[string]*Account           // keyed by AccountId.String()
	Definitions map[string]*AssetDefinition    // keyed by AssetDefinitionId.String()
}

func NewDomain(id DomainId, owner AccountId) *Domain {
	return &Domain{
		Id:          id,
		OwnedBy:     owner,
		Metadata:    NewMetadata(),
		Accounts:    make(map[string]*Account),
		Definitions: make(map[string]*AssetDefinition),
	}
}

// SignatureCondition is a boolean expression over the set of public keys
// that signed a transaction. The closed form used here is an M-of-N
// threshold over the account's registered keys, which covers both the
// common single-signatory case (M=N=1) and multisig accounts.
type SignatureCondition struct {
	Keys      []string // hex-encoded public keys recognized for this account
	Threshold int
}

// Satisfied reports whether the given signer set meets the threshold.
func (c SignatureCondition) Satisfied(signers []string) bool {
	if c.Threshold <= 0 {
		c.Threshold = 1
	}
	allowed := make(map[string]struct{}, len(c.Keys))
	for _, k := range c.Keys {
		allowed[k] = struct{}{}
	}
	matched := 0
	seen := make(map[string]struct{})
	for _, s := range signers {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		if _, ok := allowed[s]; ok {
			matched++
		}
	}
	return matched >= c.Threshold
}

// Account owns assets and the permissions/roles that authorize it.
type Account struct {
	Id         AccountId
	Metadata   Metadata
	Assets     map[string]*Asset             // keyed by AssetDefinitionId.String()
	Tokens     map[string]PermissionToken    // keyed by token.Key()
	Roles      map[RoleId]struct{}
	SignatureCondition SignatureCondition
}

func NewAccount(id AccountId) *Account {
	return &Account{
		Id:       id,
		Metadata: NewMetadata(),
		Assets:   make(map[string]*Asset),
		Tokens:   make(map[string]PermissionToken),
		Roles:    make(map[RoleId]struct{}),
		SignatureCondition: SignatureCondition{Keys: []string{id.Signatory}, Threshold: 1},
	}
}

// HasRole reports direct role membership (not expanded).
func (a *Account) HasRole(r RoleId) bool {
	_, ok := a.Roles[r]
	return ok
}

// AssetDefinition describes one kind of asset registrable within a domain.
type AssetDefinition struct {
	Id         AssetDefinitionId
	OwnedBy    AccountId
	ValueKind  ValueKind
	NumericSpec NumericSpec // meaningful only when ValueKind == ValueNumeric
	Mintable   Mintable
	Metadata   Metadata
	TotalQuantity Numeric // running aggregate, see worldstate increase/decrease
}

func NewAssetDefinition(id AssetDefinitionId, owner AccountId, vk ValueKind, spec NumericSpec, mintable Mintable) *AssetDefinition {
	return &AssetDefinition{
		Id: id, OwnedBy: owner, ValueKind: vk, NumericSpec: spec, Mintable: mintable,
		Metadata: NewMetadata(), TotalQuantity: Zero(),
	}
}

// Asset is a definition's value held by one account.
type Asset struct {
	Id    AssetId
	Value AssetValue
}

// AssetValue is either a Numeric quantity or a Store metadata map,
// matching the AssetDefinition's ValueKind.
type AssetValue struct {
	Kind    ValueKind
	Numeric Numeric
	Store   Metadata
}

func NumericValue(n Numeric) AssetValue  { return AssetValue{Kind: ValueNumeric, Numeric: n} }
func StoreValue(m Metadata) AssetValue   { return AssetValue{Kind: ValueStore, Store: m} }

func (v AssetValue) IsZero() bool {
	return v.Kind == ValueNumeric && v.Numeric.IsZero()
}

// Role is a named, reusable bundle of permission tokens.
type Role struct {
	Id     RoleId
	Tokens map[string]PermissionToken
}

func NewRole(id RoleId) *Role {
	return &Role{Id: id, Tokens: make(map[string]PermissionToken)}
}

// PermissionToken is a typed, parameterized capability. Name must be one of
// the closed set registered in package authz; parameters are validated
// against that registration, not here.
type PermissionToken struct {
	Name   string
	Params map[string]string
}

// Key returns a canonical string uniquely identifying this token value,
// used as a map key in Account.Tokens / Role.Tokens.
func (t PermissionToken) Key() string {
	s := t.Name + "("
	// deterministic order: params are small (1-3 entries typically); sort keys.
	keys := sortedKeys(t.Params)
	for i, k := range keys {
		if i > 0 {
			s += ","
		}
		s += k + "=" + t.Params[k]
	}
	return s + ")"
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Repeats bounds how many more times a Trigger may fire.
type Repeats struct {
	Indefinitely bool
	Count        uint32 // meaningful only when !Indefinitely
}

func RepeatsIndefinitely() Repeats { return Repeats{Indefinitely: true} }
func RepeatsExactly(n uint32) Repeats { return Repeats{Count: n} }

// Exhausted reports whether the trigger has no repeats left.
func (r Repeats) Exhausted() bool { return !r.Indefinitely && r.Count == 0 }

// Decrement consumes one repeat, a no-op when Indefinitely.
func (r Repeats) Decrement() Repeats {
	if r.Indefinitely || r.Count == 0 {
		return r
	}
	r.Count--
	return r
}

// EventFilter selects which events a Trigger reacts to. Kept as an opaque
// match expression: the event taxonomy (package events) owns the concrete
// event shapes; the filter only needs a stable key to compare against.
type EventFilter struct {
	EventKind string // e.g. "AssetEvent::Added", "ExecuteTriggerEvent"
	Matches   map[string]string
}

// Executable is either an inline instruction list or a reference to a
// compiled smart contract (see package abi).
type Executable struct {
	Instructions []Instruction // nil if WasmRef is set
	WasmRef      string        // content hash of a compiled contract, or ""
}

// Action is the body of a Trigger.
type Action struct {
	Executable Executable
	Repeats    Repeats
	Authority  AccountId
	Filter     EventFilter
}

// Trigger binds an Action to an id.
type Trigger struct {
	Id       TriggerId
	Action   Action
	Metadata Metadata
}

func NewTrigger(id TriggerId, action Action) *Trigger {
	return &Trigger{Id: id, Action: action, Metadata: NewMetadata()}
}

// Peer identifies one member of the consensus topology: its public key and
// network address. The closed instruction algebra has no RegisterPeer
// variant — topology is fixed at genesis (see package genesis's topology[]
// field) and not mutated at runtime by this spec.
type Peer struct {
	PublicKey string
	Address   string
}
