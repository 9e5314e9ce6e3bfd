package wire

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/ledgerd/ledger"
)

// queryEnvelope tags a concrete ledger.Query's JSON encoding with its Kind,
// the same tagged-union trick instruction_codec.go uses for
// ledger.Instruction.
type queryEnvelope struct {
	Kind ledger.QueryKind `json:"kind"`
	Data json.RawMessage  `json:"data"`
}

func encodeQuery(q ledger.Query) (queryEnvelope, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return queryEnvelope{}, err
	}
	return queryEnvelope{Kind: q.Kind(), Data: data}, nil
}

func decodeQuery(env queryEnvelope) (ledger.Query, error) {
	var q ledger.Query
	switch env.Kind {
	case ledger.KindFindAccountById:
		q = &ledger.FindAccountById{}
	case ledger.KindFindAccountsByDomainId:
		q = &ledger.FindAccountsByDomainId{}
	case ledger.KindFindAssetById:
		q = &ledger.FindAssetById{}
	case ledger.KindFindAssetQuantityById:
		q = &ledger.FindAssetQuantityById{}
	case ledger.KindFindAssetsByAccountId:
		q = &ledger.FindAssetsByAccountId{}
	case ledger.KindFindAssetsByAssetDefinitionId:
		q = &ledger.FindAssetsByAssetDefinitionId{}
	case ledger.KindFindAssetDefinitionById:
		q = &ledger.FindAssetDefinitionById{}
	case ledger.KindFindAllAssetsDefinitions:
		q = &ledger.FindAllAssetsDefinitions{}
	case ledger.KindFindTotalAssetQuantityByAssetDefinitionId:
		q = &ledger.FindTotalAssetQuantityByAssetDefinitionId{}
	case ledger.KindFindDomainById:
		q = &ledger.FindDomainById{}
	case ledger.KindFindAllDomains:
		q = &ledger.FindAllDomains{}
	case ledger.KindFindAllPeers:
		q = &ledger.FindAllPeers{}
	case ledger.KindFindAllRoles:
		q = &ledger.FindAllRoles{}
	case ledger.KindFindRoleByRoleId:
		q = &ledger.FindRoleByRoleId{}
	case ledger.KindFindRolesByAccountId:
		q = &ledger.FindRolesByAccountId{}
	case ledger.KindFindPermissionTokensByAccountId:
		q = &ledger.FindPermissionTokensByAccountId{}
	case ledger.KindFindPermissionTokenSchema:
		q = &ledger.FindPermissionTokenSchema{}
	case ledger.KindFindTransactionByHash:
		q = &ledger.FindTransactionByHash{}
	case ledger.KindFindTransactionsByAccountId:
		q = &ledger.FindTransactionsByAccountId{}
	case ledger.KindFindAllTransactions:
		q = &ledger.FindAllTransactions{}
	case ledger.KindFindAllActiveTriggerIds:
		q = &ledger.FindAllActiveTriggerIds{}
	case ledger.KindFindTriggerById:
		q = &ledger.FindTriggerById{}
	case ledger.KindFindTriggersByDomainId:
		q = &ledger.FindTriggersByDomainId{}
	case ledger.KindFindBlockByHeight:
		q = &ledger.FindBlockByHeight{}
	case ledger.KindFindBlockHeaderByHeight:
		q = &ledger.FindBlockHeaderByHeight{}
	default:
		return nil, fmt.Errorf("wire: unknown query kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Data, q); err != nil {
		return nil, fmt.Errorf("wire: decoding %s: %w", env.Kind, err)
	}
	return q, nil
}

// SignedQuery is a client's request envelope: a chain id, the querying
// authority, the query itself, and a signature over the canonical encoding
// of the first three fields (the same signing-body convention Transaction
// uses).
type SignedQuery struct {
	ChainID   string
	Authority ledger.AccountId
	Query     ledger.Query
	Signature Signature
}

type signedQueryWire struct {
	ChainID   string           `json:"chain_id"`
	Authority ledger.AccountId `json:"authority"`
	Query     queryEnvelope    `json:"query"`
	Signature Signature        `json:"signature"`
}

// MarshalJSON implements json.Marshaler.
func (sq *SignedQuery) MarshalJSON() ([]byte, error) {
	env, err := encodeQuery(sq.Query)
	if err != nil {
		return nil, err
	}
	return json.Marshal(signedQueryWire{
		ChainID: sq.ChainID, Authority: sq.Authority, Query: env, Signature: sq.Signature,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (sq *SignedQuery) UnmarshalJSON(data []byte) error {
	var w signedQueryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	q, err := decodeQuery(w.Query)
	if err != nil {
		return err
	}
	sq.ChainID, sq.Authority, sq.Query, sq.Signature = w.ChainID, w.Authority, q, w.Signature
	return nil
}

// QueryResponse wraps a query result for transport: Payload is the
// query-specific result (a single entity, or a slice of them) marshaled on
// its own, and TotalCount reports the pre-pagination collection size so a
// client can page through a FindAllX/FindXByY query.
type QueryResponse struct {
	Payload    json.RawMessage `json:"payload"`
	TotalCount int             `json:"total_count,omitempty"`
}

// NewQueryResponse marshals result into a QueryResponse, total being the
// pre-pagination collection size (0 for single-entity results).
func NewQueryResponse(result any, total int) (QueryResponse, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return QueryResponse{}, err
	}
	return QueryResponse{Payload: data, TotalCount: total}, nil
}

// QueryError is the JSON shape an rpc handler returns instead of a
// QueryResponse when a query fails (not found, or AuthorizeQuery denies
// it).
type QueryError struct {
	Message string `json:"error"`
}
