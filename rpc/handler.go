package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/ledgerd/indexer"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/queryexec"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// Handler holds all dependencies needed to serve RPC methods.
type Handler struct {
	world   *worldstate.World
	queue   *queue.Queue
	exec    *queryexec.Executor
	indexer *indexer.Indexer
	chainID string // expected chain_id; rejects cross-chain replay transactions
}

// NewHandler creates an RPC Handler.
func NewHandler(world *worldstate.World, q *queue.Queue, exec *queryexec.Executor, idx *indexer.Indexer, chainID string) *Handler {
	return &Handler{world: world, queue: q, exec: exec, indexer: idx, chainID: chainID}
}

// Dispatch routes an RPC request to the correct method.
func (h *Handler) Dispatch(req Request) Response {
	switch req.Method {
	case "query":
		return h.query(req)

	case "sendTx":
		return h.sendTx(req)

	case "getTransactionHeight":
		return h.getTransactionHeight(req)

	case "getTransactionsByAccount":
		return h.getTransactionsByAccount(req)

	case "getAssetsByOwner":
		return h.getAssetsByOwner(req)

	default:
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}

// query decodes a wire.SignedQuery from req.Params, runs it through
// package queryexec (which authorizes and executes it against the current
// world-state view), and wraps the result in a wire.QueryResponse.
func (h *Handler) query(req Request) Response {
	var sq wire.SignedQuery
	if err := json.Unmarshal(req.Params, &sq); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
	}
	if sq.ChainID != h.chainID {
		return errResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("chain ID mismatch: got %q want %q", sq.ChainID, h.chainID))
	}

	result, total, err := h.exec.Run(h.world.View(), sq.Authority, sq.Query)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	resp, err := wire.NewQueryResponse(result, total)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, resp)
}

func (h *Handler) sendTx(req Request) Response {
	var tx wire.Transaction
	if err := json.Unmarshal(req.Params, &tx); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if tx.ChainID != h.chainID {
		return errResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("chain ID mismatch: got %q want %q", tx.ChainID, h.chainID))
	}
	if err := h.queue.Push(&tx, h.world.View()); err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]string{"tx_hash": tx.Hash()})
}

func (h *Handler) getTransactionHeight(req Request) Response {
	var params struct {
		Hash string `json:"hash"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Hash == "" {
		return errResponse(req.ID, CodeInvalidParams, "hash is required")
	}
	height, err := h.indexer.TransactionHeight(params.Hash)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]int64{"height": height})
}

func (h *Handler) getTransactionsByAccount(req Request) Response {
	var params struct {
		Domain    string `json:"domain"`
		Signatory string `json:"signatory"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Domain == "" || params.Signatory == "" {
		return errResponse(req.ID, CodeInvalidParams, "domain and signatory are required")
	}
	account := ledger.AccountId{Domain: ledger.DomainId(params.Domain), Signatory: params.Signatory}
	hashes, err := h.indexer.TransactionsByAccount(account)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, hashes)
}

func (h *Handler) getAssetsByOwner(req Request) Response {
	var params struct {
		Domain    string `json:"domain"`
		Signatory string `json:"signatory"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Domain == "" || params.Signatory == "" {
		return errResponse(req.ID, CodeInvalidParams, "domain and signatory are required")
	}
	owner := ledger.AccountId{Domain: ledger.DomainId(params.Domain), Signatory: params.Signatory}
	ids, err := h.indexer.AssetsByOwner(owner)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, ids)
}
