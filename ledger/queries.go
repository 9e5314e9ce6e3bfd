package ledger

// QueryKind tags a concrete Query variant. Closed, like InstructionKind.
type QueryKind string

const (
	KindFindAccountById                        QueryKind = "FindAccountById"
	KindFindAccountsByDomainId                  QueryKind = "FindAccountsByDomainId"
	KindFindAssetById                           QueryKind = "FindAssetById"
	KindFindAssetQuantityById                   QueryKind = "FindAssetQuantityById"
	KindFindAssetsByAccountId                   QueryKind = "FindAssetsByAccountId"
	KindFindAssetsByAssetDefinitionId           QueryKind = "FindAssetsByAssetDefinitionId"
	KindFindAssetDefinitionById                 QueryKind = "FindAssetDefinitionById"
	KindFindAllAssetsDefinitions                QueryKind = "FindAllAssetsDefinitions"
	KindFindTotalAssetQuantityByAssetDefinitionId QueryKind = "FindTotalAssetQuantityByAssetDefinitionId"
	KindFindDomainById                          QueryKind = "FindDomainById"
	KindFindAllDomains                          QueryKind = "FindAllDomains"
	KindFindAllPeers                            QueryKind = "FindAllPeers"
	KindFindAllRoles                            QueryKind = "FindAllRoles"
	KindFindRoleByRoleId                        QueryKind = "FindRoleByRoleId"
	KindFindRolesByAccountId                    QueryKind = "FindRolesByAccountId"
	KindFindPermissionTokensByAccountId         QueryKind = "FindPermissionTokensByAccountId"
	KindFindPermissionTokenSchema               QueryKind = "FindPermissionTokenSchema"
	KindFindTransactionByHash                   QueryKind = "FindTransactionByHash"
	KindFindTransactionsByAccountId              QueryKind = "FindTransactionsByAccountId"
	KindFindAllTransactions                     QueryKind = "FindAllTransactions"
	KindFindAllActiveTriggerIds                 QueryKind = "FindAllActiveTriggerIds"
	KindFindTriggerById                         QueryKind = "FindTriggerById"
	KindFindTriggersByDomainId                  QueryKind = "FindTriggersByDomainId"
	KindFindBlockByHeight                       QueryKind = "FindBlockByHeight"
	KindFindBlockHeaderByHeight                 QueryKind = "FindBlockHeaderByHeight"
)

// Pagination bounds a collection-returning query: elements [start, start+limit).
// limit == 0 means unbounded (return everything from start on).
type Pagination struct {
	Start int
	Limit int
}

// Apply slices a generic id-ordered slice according to the pagination
// parameters, matching original_source's query.rs Pagination semantics.
func Apply[T any](items []T, p Pagination) []T {
	if p.Start < 0 {
		p.Start = 0
	}
	if p.Start >= len(items) {
		return nil
	}
	end := len(items)
	if p.Limit > 0 && p.Start+p.Limit < end {
		end = p.Start + p.Limit
	}
	return items[p.Start:end]
}

// Query is implemented by every concrete query struct below.
type Query interface {
	Kind() QueryKind
}

type FindAccountById struct{ Id AccountId }

func (FindAccountById) Kind() QueryKind { return KindFindAccountById }

type FindAccountsByDomainId struct {
	Domain     DomainId
	Pagination Pagination
}

func (FindAccountsByDomainId) Kind() QueryKind { return KindFindAccountsByDomainId }

type FindAssetById struct{ Id AssetId }

func (FindAssetById) Kind() QueryKind { return KindFindAssetById }

type FindAssetQuantityById struct{ Id AssetId }

func (FindAssetQuantityById) Kind() QueryKind { return KindFindAssetQuantityById }

type FindAssetsByAccountId struct {
	Account    AccountId
	Pagination Pagination
}

func (FindAssetsByAccountId) Kind() QueryKind { return KindFindAssetsByAccountId }

type FindAssetsByAssetDefinitionId struct {
	Definition AssetDefinitionId
	Pagination Pagination
}

func (FindAssetsByAssetDefinitionId) Kind() QueryKind { return KindFindAssetsByAssetDefinitionId }

type FindAssetDefinitionById struct{ Id AssetDefinitionId }

func (FindAssetDefinitionById) Kind() QueryKind { return KindFindAssetDefinitionById }

type FindAllAssetsDefinitions struct{ Pagination Pagination }

func (FindAllAssetsDefinitions) Kind() QueryKind { return KindFindAllAssetsDefinitions }

type FindTotalAssetQuantityByAssetDefinitionId struct{ Id AssetDefinitionId }

func (FindTotalAssetQuantityByAssetDefinitionId) Kind() QueryKind {
	return KindFindTotalAssetQuantityByAssetDefinitionId
}

type FindDomainById struct{ Id DomainId }

func (FindDomainById) Kind() QueryKind { return KindFindDomainById }

type FindAllDomains struct{ Pagination Pagination }

func (FindAllDomains) Kind() QueryKind { return KindFindAllDomains }

type FindAllPeers struct{}

func (FindAllPeers) Kind() QueryKind { return KindFindAllPeers }

type FindAllRoles struct{ Pagination Pagination }

func (FindAllRoles) Kind() QueryKind { return KindFindAllRoles }

type FindRoleByRoleId struct{ Id RoleId }

func (FindRoleByRoleId) Kind() QueryKind { return KindFindRoleByRoleId }

type FindRolesByAccountId struct{ Account AccountId }

func (FindRolesByAccountId) Kind() QueryKind { return KindFindRolesByAccountId }

type FindPermissionTokensByAccountId struct{ Account AccountId }

func (FindPermissionTokensByAccountId) Kind() QueryKind { return KindFindPermissionTokensByAccountId }

// FindPermissionTokenSchema returns the recognized token name -> parameter
// shape map (SPEC_FULL.md §4 supplemented feature 3), letting clients
// validate a Grant instruction before submission.
type FindPermissionTokenSchema struct{}

func (FindPermissionTokenSchema) Kind() QueryKind { return KindFindPermissionTokenSchema }

type FindTransactionByHash struct{ Hash string }

func (FindTransactionByHash) Kind() QueryKind { return KindFindTransactionByHash }

type FindTransactionsByAccountId struct {
	Account    AccountId
	Pagination Pagination
}

func (FindTransactionsByAccountId) Kind() QueryKind { return KindFindTransactionsByAccountId }

type FindAllTransactions struct{ Pagination Pagination }

func (FindAllTransactions) Kind() QueryKind { return KindFindAllTransactions }

type FindAllActiveTriggerIds struct{}

func (FindAllActiveTriggerIds) Kind() QueryKind { return KindFindAllActiveTriggerIds }

type FindTriggerById struct{ Id TriggerId }

func (FindTriggerById) Kind() QueryKind { return KindFindTriggerById }

type FindTriggersByDomainId struct{ Domain DomainId }

func (FindTriggersByDomainId) Kind() QueryKind { return KindFindTriggersByDomainId }

type FindBlockByHeight struct{ Height int64 }

func (FindBlockByHeight) Kind() QueryKind { return KindFindBlockByHeight }

type FindBlockHeaderByHeight struct{ Height int64 }

func (FindBlockHeaderByHeight) Kind() QueryKind { return KindFindBlockHeaderByHeight }
