// Package genesis loads the genesis document (spec.md §6) and commits it
// as the chain's first block: a JSON document naming the chain id, the
// authorization executor to install, optional parameters, the instruction
// list, any wasm-backed triggers, and the consensus topology.
//
// Bootstrapping never touches the admission queue or the normal
// block-assembly pipeline: it runs entirely under the genesis bypass
// (height 0, see package authz's Policy.AuthorizeInstruction), the same
// shortcut txlifecycle/lifecycle_test.go exercises directly against
// isi.Engine rather than through queue.Push.
//
// Grounded on original_source's iroha_genesis/src/lib.rs two-transaction
// structure (a lone Upgrade first, everything else second, both signed by
// the same operator key) and config/genesis.go's CreateGenesisBlock (build
// and sign block #0 directly from a config-shaped document, bypassing the
// ordinary commit path) — generalized from the teacher's flat Alloc map of
// balances to the full instruction algebra.
package genesis

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/ledgerd/blockchain"
	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/isi"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/merkle"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// Document is the JSON genesis file spec.md §6 describes:
// {chain, executor_path, parameters?, instructions[], wasm_triggers[], topology[]}.
type Document struct {
	Chain        string
	ExecutorPath string
	Parameters   map[string]string
	Instructions []ledger.Instruction
	WasmTriggers []*ledger.Trigger
	Topology     []ledger.Peer
}

// documentWire is Document's JSON shadow. Instructions and each trigger's
// inline instruction list route through wire's tagged-union instruction
// codec, the same way wire.Transaction does for its own InstructionSet.
type documentWire struct {
	Chain        string            `json:"chain"`
	ExecutorPath string            `json:"executor_path"`
	Parameters   map[string]string `json:"parameters,omitempty"`
	Instructions json.RawMessage   `json:"instructions"`
	WasmTriggers []wireTrigger     `json:"wasm_triggers,omitempty"`
	Topology     []ledger.Peer     `json:"topology"`
}

type wireTrigger struct {
	Id           ledger.TriggerId   `json:"id"`
	Instructions json.RawMessage    `json:"instructions,omitempty"`
	WasmRef      string             `json:"wasm_ref,omitempty"`
	Repeats      ledger.Repeats     `json:"repeats"`
	Authority    ledger.AccountId   `json:"authority"`
	Filter       ledger.EventFilter `json:"filter"`
	Metadata     ledger.Metadata    `json:"metadata,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	instrData, err := wire.EncodeInstructionList(d.Instructions)
	if err != nil {
		return nil, fmt.Errorf("genesis: encoding instructions: %w", err)
	}
	triggers := make([]wireTrigger, len(d.WasmTriggers))
	for i, t := range d.WasmTriggers {
		actionData, err := wire.EncodeInstructionList(t.Action.Executable.Instructions)
		if err != nil {
			return nil, fmt.Errorf("genesis: encoding trigger %s instructions: %w", t.Id, err)
		}
		triggers[i] = wireTrigger{
			Id: t.Id, Instructions: actionData, WasmRef: t.Action.Executable.WasmRef,
			Repeats: t.Action.Repeats, Authority: t.Action.Authority, Filter: t.Action.Filter,
			Metadata: t.Metadata,
		}
	}
	return json.Marshal(documentWire{
		Chain: d.Chain, ExecutorPath: d.ExecutorPath, Parameters: d.Parameters,
		Instructions: instrData, WasmTriggers: triggers, Topology: d.Topology,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	instrs, err := wire.DecodeInstructionList(w.Instructions)
	if err != nil {
		return fmt.Errorf("genesis: decoding instructions: %w", err)
	}
	triggers := make([]*ledger.Trigger, len(w.WasmTriggers))
	for i, wt := range w.WasmTriggers {
		var actionInstrs []ledger.Instruction
		if len(wt.Instructions) > 0 {
			actionInstrs, err = wire.DecodeInstructionList(wt.Instructions)
			if err != nil {
				return fmt.Errorf("genesis: decoding trigger %s instructions: %w", wt.Id, err)
			}
		}
		triggers[i] = &ledger.Trigger{
			Id: wt.Id,
			Action: ledger.Action{
				Executable: ledger.Executable{Instructions: actionInstrs, WasmRef: wt.WasmRef},
				Repeats:    wt.Repeats, Authority: wt.Authority, Filter: wt.Filter,
			},
			Metadata: wt.Metadata,
		}
	}
	d.Chain, d.ExecutorPath, d.Parameters = w.Chain, w.ExecutorPath, w.Parameters
	d.Instructions, d.WasmTriggers, d.Topology = instrs, triggers, w.Topology
	return nil
}

// Bootstrap commits doc as the chain's first block. It applies the single
// Upgrade instruction, then every remaining instruction and wasm-trigger
// registration, under the height-0 genesis bypass, in one write snapshot;
// installs the topology via World.SetPeers; signs the resulting block
// header with operatorPriv; and appends it to chain. Both genesis
// transactions are authored by operator, matching spec.md §4.3 invariant 7
// ("the genesis account's signature may only authorize transactions inside
// the genesis block") — callers must configure txlifecycle.Lifecycle's
// GenesisAccount to the same id so any later transaction from operator is
// rejected.
func Bootstrap(
	doc Document,
	operator ledger.AccountId,
	operatorPriv crypto.PrivateKey,
	world *worldstate.World,
	eng *isi.Engine,
	chain *blockchain.Chain,
	bus *events.Bus,
	nowMs int64,
) (*wire.Block, error) {
	if chain.Tip() != nil {
		return nil, fmt.Errorf("genesis: chain already has a tip, refusing to re-bootstrap")
	}

	ws := world.Block()

	upgrade := ledger.Upgrade{ExecutorWasmRef: doc.ExecutorPath}
	if err := eng.Execute(ws, operator, 0, upgrade); err != nil {
		ws.DiscardEvents()
		return nil, fmt.Errorf("genesis: upgrade instruction: %w", err)
	}
	upgradeTx := &wire.Transaction{
		ChainID: doc.Chain, AuthorityID: operator,
		InstructionSet: []ledger.Instruction{upgrade}, CreationTimeMs: nowMs,
	}
	upgradeTx.Signatures = []wire.Signature{signHash(operatorPriv, upgradeTx.Hash())}

	for _, instr := range doc.Instructions {
		if err := eng.Execute(ws, operator, 0, instr); err != nil {
			ws.DiscardEvents()
			return nil, fmt.Errorf("genesis: instruction %s: %w", instr.Kind(), err)
		}
	}
	for _, t := range doc.WasmTriggers {
		if err := eng.Execute(ws, operator, 0, ledger.RegisterTrigger{Id: t.Id, Action: t.Action}); err != nil {
			ws.DiscardEvents()
			return nil, fmt.Errorf("genesis: registering trigger %s: %w", t.Id, err)
		}
	}
	bodyTx := &wire.Transaction{
		ChainID: doc.Chain, AuthorityID: operator,
		InstructionSet: doc.Instructions, CreationTimeMs: nowMs,
	}
	bodyTx.Signatures = []wire.Signature{signHash(operatorPriv, bodyTx.Hash())}

	world.SetPeers(doc.Topology)
	world.Commit(ws, bus)

	topology := make([]string, len(doc.Topology))
	for i, p := range doc.Topology {
		topology[i] = p.PublicKey
	}

	header := wire.BlockHeader{
		Timestamp:                      nowMs,
		Height:                         1,
		PreviousBlockHash:              "",
		TransactionsMerkleRoot:         merkle.Root([]string{upgradeTx.Hash(), bodyTx.Hash()}),
		RejectedTransactionsMerkleRoot: merkle.Root(nil),
		GenesisTopology:                topology,
	}
	headerHash := header.Hash()
	block := &wire.Block{
		Header:     header,
		Hash:       headerHash,
		Accepted:   []*wire.Transaction{upgradeTx, bodyTx},
		Signatures: []wire.Signature{signHash(operatorPriv, headerHash)},
	}
	if err := chain.Append(block); err != nil {
		return nil, fmt.Errorf("genesis: append block: %w", err)
	}
	bus.Publish(events.Event{
		Type: events.EventBlockCommitted, BlockHeight: 1,
		Data: map[string]any{"hash": block.Hash, "genesis": true},
	})
	return block, nil
}

func signHash(priv crypto.PrivateKey, hash string) wire.Signature {
	return wire.Signature{PublicKey: priv.Public().Hex(), Signature: crypto.Sign(priv, []byte(hash))}
}
