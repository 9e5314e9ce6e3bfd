// Package queryexec answers the closed ledger.Query algebra against a
// worldstate.View (component C2's read side) and package blockchain's
// committed chain, gated by authz.QueryPolicy. It is the executor behind
// package rpc's query endpoint and package wire's SignedQuery envelope.
//
// Grounded on original_source's query.rs dispatch (one match arm per
// query variant, FindError on missing entities, Pagination applied to
// every collection-returning arm) collapsed into a single Go type switch,
// the same way package isi collapses the original's per-entity instruction
// impls.
package queryexec

import (
	"fmt"

	"github.com/tolelom/ledgerd/authz"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// ChainReader is the narrow surface queryexec needs from package
// blockchain, kept local so this package has no hard dependency on
// blockchain.Chain's full API.
type ChainReader interface {
	Height() int64
	GetBlockByHeight(height int64) (*wire.Block, error)
}

// Executor answers queries against a fixed view of the world plus the
// committed chain.
type Executor struct {
	Policy *authz.QueryPolicy
	Chain  ChainReader
}

// New returns an Executor. policy may be nil, in which case every query is
// allowed (matching authz.NewQueryPolicy's own permissive baseline).
func New(policy *authz.QueryPolicy, chain ChainReader) *Executor {
	if policy == nil {
		policy = authz.NewQueryPolicy()
	}
	return &Executor{Policy: policy, Chain: chain}
}

// Run authorizes and executes q against view, returning a result ready for
// wire.NewQueryResponse and the pre-pagination size of any collection
// result (0 for single-entity results).
func (e *Executor) Run(view *worldstate.View, authority ledger.AccountId, q ledger.Query) (any, int, error) {
	if err := e.Policy.AuthorizeQuery(authority, q); err != nil {
		return nil, 0, err
	}

	switch v := q.(type) {
	case ledger.FindAccountById:
		acc, err := view.GetAccount(v.Id)
		return acc, 0, err
	case *ledger.FindAccountById:
		acc, err := view.GetAccount(v.Id)
		return acc, 0, err

	case ledger.FindAccountsByDomainId:
		accts, err := view.ListAccountsByDomain(v.Domain)
		if err != nil {
			return nil, 0, err
		}
		return paginate(accts, v.Pagination)
	case *ledger.FindAccountsByDomainId:
		accts, err := view.ListAccountsByDomain(v.Domain)
		if err != nil {
			return nil, 0, err
		}
		return paginate(accts, v.Pagination)

	case ledger.FindAssetById:
		asset, err := view.GetAsset(v.Id)
		return asset, 0, err
	case *ledger.FindAssetById:
		asset, err := view.GetAsset(v.Id)
		return asset, 0, err

	case ledger.FindAssetQuantityById:
		asset, err := view.GetAsset(v.Id)
		if err != nil {
			return nil, 0, err
		}
		return asset.Value, 0, nil
	case *ledger.FindAssetQuantityById:
		asset, err := view.GetAsset(v.Id)
		if err != nil {
			return nil, 0, err
		}
		return asset.Value, 0, nil

	case ledger.FindAssetsByAccountId:
		assets, err := view.ListAssetsByAccount(v.Account)
		if err != nil {
			return nil, 0, err
		}
		return paginate(assets, v.Pagination)
	case *ledger.FindAssetsByAccountId:
		assets, err := view.ListAssetsByAccount(v.Account)
		if err != nil {
			return nil, 0, err
		}
		return paginate(assets, v.Pagination)

	case ledger.FindAssetsByAssetDefinitionId:
		return paginate(view.ListAssetsByDefinition(v.Definition), v.Pagination)
	case *ledger.FindAssetsByAssetDefinitionId:
		return paginate(view.ListAssetsByDefinition(v.Definition), v.Pagination)

	case ledger.FindAssetDefinitionById:
		def, err := view.GetAssetDefinition(v.Id)
		return def, 0, err
	case *ledger.FindAssetDefinitionById:
		def, err := view.GetAssetDefinition(v.Id)
		return def, 0, err

	case ledger.FindAllAssetsDefinitions:
		return paginate(view.ListAssetDefinitions(), v.Pagination)
	case *ledger.FindAllAssetsDefinitions:
		return paginate(view.ListAssetDefinitions(), v.Pagination)

	case ledger.FindTotalAssetQuantityByAssetDefinitionId:
		def, err := view.GetAssetDefinition(v.Id)
		if err != nil {
			return nil, 0, err
		}
		return def.TotalQuantity, 0, nil
	case *ledger.FindTotalAssetQuantityByAssetDefinitionId:
		def, err := view.GetAssetDefinition(v.Id)
		if err != nil {
			return nil, 0, err
		}
		return def.TotalQuantity, 0, nil

	case ledger.FindDomainById:
		dom, err := view.GetDomain(v.Id)
		return dom, 0, err
	case *ledger.FindDomainById:
		dom, err := view.GetDomain(v.Id)
		return dom, 0, err

	case ledger.FindAllDomains:
		return paginate(view.ListDomains(), v.Pagination)
	case *ledger.FindAllDomains:
		return paginate(view.ListDomains(), v.Pagination)

	case ledger.FindAllPeers, *ledger.FindAllPeers:
		return view.ListPeers(), len(view.ListPeers()), nil

	case ledger.FindAllRoles:
		return paginate(view.ListRoles(), v.Pagination)
	case *ledger.FindAllRoles:
		return paginate(view.ListRoles(), v.Pagination)

	case ledger.FindRoleByRoleId:
		role, err := view.GetRole(v.Id)
		return role, 0, err
	case *ledger.FindRoleByRoleId:
		role, err := view.GetRole(v.Id)
		return role, 0, err

	case ledger.FindRolesByAccountId:
		return rolesOf(view, v.Account)
	case *ledger.FindRolesByAccountId:
		return rolesOf(view, v.Account)

	case ledger.FindPermissionTokensByAccountId:
		return tokensOf(view, v.Account)
	case *ledger.FindPermissionTokensByAccountId:
		return tokensOf(view, v.Account)

	case ledger.FindPermissionTokenSchema, *ledger.FindPermissionTokenSchema:
		schemas := authz.Schemas()
		return schemas, len(schemas), nil

	case ledger.FindTriggerById:
		t, err := view.GetTrigger(v.Id)
		return t, 0, err
	case *ledger.FindTriggerById:
		t, err := view.GetTrigger(v.Id)
		return t, 0, err

	case ledger.FindAllActiveTriggerIds, *ledger.FindAllActiveTriggerIds:
		ids := activeTriggerIds(view)
		return ids, len(ids), nil

	case ledger.FindTriggersByDomainId:
		triggers := triggersInDomain(view, v.Domain)
		return triggers, len(triggers), nil
	case *ledger.FindTriggersByDomainId:
		triggers := triggersInDomain(view, v.Domain)
		return triggers, len(triggers), nil

	case ledger.FindBlockByHeight:
		block, err := e.Chain.GetBlockByHeight(v.Height)
		return block, 0, err
	case *ledger.FindBlockByHeight:
		block, err := e.Chain.GetBlockByHeight(v.Height)
		return block, 0, err

	case ledger.FindBlockHeaderByHeight:
		b, err := e.Chain.GetBlockByHeight(v.Height)
		if err != nil {
			return nil, 0, err
		}
		return b.Header, 0, nil
	case *ledger.FindBlockHeaderByHeight:
		b, err := e.Chain.GetBlockByHeight(v.Height)
		if err != nil {
			return nil, 0, err
		}
		return b.Header, 0, nil

	case ledger.FindTransactionByHash:
		return e.findTransactionByHash(v.Hash)
	case *ledger.FindTransactionByHash:
		return e.findTransactionByHash(v.Hash)

	case ledger.FindTransactionsByAccountId:
		return e.findTransactionsByAccount(v.Account, v.Pagination)
	case *ledger.FindTransactionsByAccountId:
		return e.findTransactionsByAccount(v.Account, v.Pagination)

	case ledger.FindAllTransactions:
		return e.findAllTransactions(v.Pagination)
	case *ledger.FindAllTransactions:
		return e.findAllTransactions(v.Pagination)

	default:
		return nil, 0, fmt.Errorf("queryexec: unhandled query kind %q", q.Kind())
	}
}

func paginate[T any](items []T, p ledger.Pagination) (any, int, error) {
	total := len(items)
	return ledger.Apply(items, p), total, nil
}

func rolesOf(view *worldstate.View, account ledger.AccountId) (any, int, error) {
	acc, err := view.GetAccount(account)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ledger.RoleId, 0, len(acc.Roles))
	for r := range acc.Roles {
		out = append(out, r)
	}
	return out, len(out), nil
}

func tokensOf(view *worldstate.View, account ledger.AccountId) (any, int, error) {
	acc, err := view.GetAccount(account)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ledger.PermissionToken, 0, len(acc.Tokens))
	for _, t := range acc.Tokens {
		out = append(out, t)
	}
	return out, len(out), nil
}

func activeTriggerIds(view *worldstate.View) []ledger.TriggerId {
	triggers := view.ListTriggers()
	out := make([]ledger.TriggerId, 0, len(triggers))
	for _, t := range triggers {
		if !t.Action.Repeats.Exhausted() {
			out = append(out, t.Id)
		}
	}
	return out
}

func triggersInDomain(view *worldstate.View, domain ledger.DomainId) []*ledger.Trigger {
	var out []*ledger.Trigger
	for _, t := range view.ListTriggers() {
		if t.Id.Domain == domain {
			out = append(out, t)
		}
	}
	return out
}

// findTransactionByHash scans committed blocks from the tip backward,
// mirroring original_source's query.rs linear scan; package indexer's
// secondary index accelerates this in the production rpc path (see
// DESIGN.md).
func (e *Executor) findTransactionByHash(hash string) (any, int, error) {
	for h := e.Chain.Height(); h >= 1; h-- {
		block, err := e.Chain.GetBlockByHeight(h)
		if err != nil {
			return nil, 0, err
		}
		for _, tx := range block.Accepted {
			if tx.Hash() == hash {
				return tx, 0, nil
			}
		}
	}
	return nil, 0, fmt.Errorf("queryexec: transaction %q: %w", hash, ledger.ErrTransactionNotFound)
}

func (e *Executor) findTransactionsByAccount(account ledger.AccountId, p ledger.Pagination) (any, int, error) {
	var matches []*wire.Transaction
	for h := int64(1); h <= e.Chain.Height(); h++ {
		block, err := e.Chain.GetBlockByHeight(h)
		if err != nil {
			return nil, 0, err
		}
		for _, tx := range block.Accepted {
			if tx.Authority() == account {
				matches = append(matches, tx)
			}
		}
	}
	return paginate(matches, p)
}

func (e *Executor) findAllTransactions(p ledger.Pagination) (any, int, error) {
	var all []*wire.Transaction
	for h := int64(1); h <= e.Chain.Height(); h++ {
		block, err := e.Chain.GetBlockByHeight(h)
		if err != nil {
			return nil, 0, err
		}
		all = append(all, block.Accepted...)
	}
	return paginate(all, p)
}
