// Package abi is the host ABI boundary for compiled smart contracts
// (spec.md §6): "a contract receives an authority AccountId and a block
// height; it issues instructions and queries through host-provided entry
// points; each host call is mediated by the authorization visitor using
// the contract's authority, not its caller's." The sandboxed wasm runtime
// itself is explicitly out of scope (spec.md §4 Non-goals) — this package
// is the interface only, plus an in-memory registry standing in for
// "compiled and installed" contracts so isi.Engine's trigger-execution
// path has something real to call during tests.
//
// Grounded on vm/registry.go's global Handler registry (register-by-key,
// dispatch-by-key, panic on duplicate registration), adapted from
// core.TxType-keyed transaction handlers to content-hash-ref-keyed
// contract entry points returning an instruction list instead of mutating
// state directly.
package abi

import (
	"fmt"
	"sync"

	"github.com/tolelom/ledgerd/ledger"
)

// Handler is a compiled contract's entry point: given the authority it
// runs under, it returns the instructions it wants executed, or an error
// that rejects the enclosing transaction.
type Handler func(authority ledger.AccountId) ([]ledger.Instruction, error)

// Host satisfies isi.WasmHost. Package isi depends only on that narrow
// interface, never on this package directly, so a peer without any
// compiled contracts installed can leave isi.Engine.WasmHost nil.
type Host struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewHost returns an empty contract registry.
func NewHost() *Host {
	return &Host{handlers: make(map[string]Handler)}
}

// Register installs the handler for a contract ref (its content hash, per
// spec.md's wasm_ref field). Panics on duplicate registration, matching
// vm.Registry's self-registration discipline.
func (h *Host) Register(ref string, handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.handlers[ref]; exists {
		panic(fmt.Sprintf("abi: handler already registered for ref %q", ref))
	}
	h.handlers[ref] = handler
}

// Run dispatches to the handler registered for ref, executing it under
// authority. Returns ErrNoSuchContract if nothing is registered for ref —
// the caller (isi.Engine) turns this into an instruction-execution
// rejection, never a peer-level invariant violation.
func (h *Host) Run(ref string, authority ledger.AccountId) ([]ledger.Instruction, error) {
	h.mu.RLock()
	handler, ok := h.handlers[ref]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("abi: contract %q: %w", ref, ErrNoSuchContract)
	}
	return handler(authority)
}
