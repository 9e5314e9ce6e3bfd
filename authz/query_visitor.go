package authz

import "github.com/tolelom/ledgerd/ledger"

// QueryPolicy authorizes reads. The baseline implementation allows
// everything except the example "OnlyAccountsDomain" predicate spec.md
// §4.6 calls out by name, which callers opt into via RestrictToOwnDomain.
type QueryPolicy struct {
	// RestrictToOwnDomain enables the OnlyAccountsDomain example policy:
	// a signer may only read collections scoped to their own domain.
	RestrictToOwnDomain bool
}

// NewQueryPolicy returns a permissive query policy.
func NewQueryPolicy() *QueryPolicy { return &QueryPolicy{} }

// AuthorizeQuery decides whether authority may execute q.
func (p *QueryPolicy) AuthorizeQuery(authority ledger.AccountId, q ledger.Query) error {
	if !p.RestrictToOwnDomain {
		return nil
	}
	domain, scoped := queryDomain(q)
	if scoped && domain != authority.Domain {
		return notPermitted("query is scoped outside the signer's own domain")
	}
	return nil
}

// queryDomain extracts the domain a query is scoped to, when it is scoped
// to one at all (OnlyAccountsDomain only constrains domain-scoped
// collection queries, not global ones like FindAllPeers).
func queryDomain(q ledger.Query) (ledger.DomainId, bool) {
	switch v := q.(type) {
	case ledger.FindAccountsByDomainId:
		return v.Domain, true
	case ledger.FindAccountById:
		return v.Id.Domain, true
	case ledger.FindAssetsByAccountId:
		return v.Account.Domain, true
	case ledger.FindDomainById:
		return v.Id, true
	default:
		return "", false
	}
}
