// Package ledger defines the typed data model of the world state: the
// identifiers, entities, numeric values, and the closed instruction/query
// algebra that the rest of the peer operates on. It holds no storage and no
// execution logic — callers own the state and the dispatch.
package ledger

import (
	"fmt"
	"strings"
)

// DomainId names a domain. Domains are flat: no nesting, no reserved chars
// beyond the separators used by the compound ids below.
type DomainId string

func (d DomainId) String() string { return string(d) }

// ParseDomainId validates a bare domain name.
func ParseDomainId(s string) (DomainId, error) {
	if s == "" {
		return "", fmt.Errorf("ledger: empty domain id")
	}
	if strings.ContainsAny(s, "#@") {
		return "", fmt.Errorf("ledger: domain id %q contains reserved character", s)
	}
	return DomainId(s), nil
}

// AccountId is a public key scoped to a domain. Two accounts with the same
// signatory in different domains are distinct accounts.
type AccountId struct {
	Domain    DomainId
	Signatory string // hex-encoded public key
}

func (a AccountId) String() string { return a.Signatory + "@" + string(a.Domain) }

func (a AccountId) IsZero() bool { return a.Signatory == "" && a.Domain == "" }

// ParseAccountId parses the canonical "signatory@domain" textual form.
func ParseAccountId(s string) (AccountId, error) {
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return AccountId{}, fmt.Errorf("ledger: malformed account id %q: missing '@'", s)
	}
	signatory, domain := s[:at], s[at+1:]
	if signatory == "" {
		return AccountId{}, fmt.Errorf("ledger: malformed account id %q: empty signatory", s)
	}
	did, err := ParseDomainId(domain)
	if err != nil {
		return AccountId{}, fmt.Errorf("ledger: malformed account id %q: %w", s, err)
	}
	return AccountId{Domain: did, Signatory: signatory}, nil
}

// AssetDefinitionId names an asset kind within a domain: "name#domain".
type AssetDefinitionId struct {
	Name   string
	Domain DomainId
}

func (d AssetDefinitionId) String() string { return d.Name + "#" + string(d.Domain) }

func ParseAssetDefinitionId(s string) (AssetDefinitionId, error) {
	hash := strings.IndexByte(s, '#')
	if hash < 0 {
		return AssetDefinitionId{}, fmt.Errorf("ledger: malformed asset definition id %q: missing '#'", s)
	}
	name, domain := s[:hash], s[hash+1:]
	if name == "" {
		return AssetDefinitionId{}, fmt.Errorf("ledger: malformed asset definition id %q: empty name", s)
	}
	did, err := ParseDomainId(domain)
	if err != nil {
		return AssetDefinitionId{}, fmt.Errorf("ledger: malformed asset definition id %q: %w", s, err)
	}
	return AssetDefinitionId{Name: name, Domain: did}, nil
}

// AssetId is an asset definition held by a particular account:
// "name#domain#account@account_domain".
type AssetId struct {
	Definition AssetDefinitionId
	Account    AccountId
}

func (a AssetId) String() string {
	return a.Definition.Name + "#" + string(a.Definition.Domain) + "#" + a.Account.String()
}

func ParseAssetId(s string) (AssetId, error) {
	firstHash := strings.IndexByte(s, '#')
	if firstHash < 0 {
		return AssetId{}, fmt.Errorf("ledger: malformed asset id %q", s)
	}
	rest := s[firstHash+1:]
	secondHash := strings.IndexByte(rest, '#')
	if secondHash < 0 {
		return AssetId{}, fmt.Errorf("ledger: malformed asset id %q", s)
	}
	name := s[:firstHash]
	domain := rest[:secondHash]
	accountPart := rest[secondHash+1:]
	did, err := ParseDomainId(domain)
	if err != nil {
		return AssetId{}, fmt.Errorf("ledger: malformed asset id %q: %w", s, err)
	}
	acc, err := ParseAccountId(accountPart)
	if err != nil {
		return AssetId{}, fmt.Errorf("ledger: malformed asset id %q: %w", s, err)
	}
	return AssetId{Definition: AssetDefinitionId{Name: name, Domain: did}, Account: acc}, nil
}

// RoleId names a role; flat, global.
type RoleId string

func (r RoleId) String() string { return string(r) }

// TriggerId is a name, optionally scoped to a domain.
type TriggerId struct {
	Domain DomainId // zero value means unscoped
	Name   string
}

func (t TriggerId) String() string {
	if t.Domain == "" {
		return t.Name
	}
	return t.Name + "$" + string(t.Domain)
}
