package blockchain

import (
	"fmt"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/merkle"
	"github.com/tolelom/ledgerd/queue"
	"github.com/tolelom/ledgerd/txlifecycle"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// Signer is the external consensus collaborator spec.md §4.7 step 6
// invokes to gather signatures over a proposed block header. The
// production implementation is package consensus's round-robin
// collaborator; tests supply a stub.
type Signer interface {
	SignHeader(headerHash string) ([]wire.Signature, error)
}

// Clock supplies the block timestamp, kept pluggable so tests are
// deterministic (workflow scripts and this package's own tests never call
// time.Now directly).
type Clock interface {
	NowMs() int64
}

// Assembler drives one block at a time: drain the queue, validate each
// transaction against a candidate snapshot, bucket accepted/rejected,
// compute the two Merkle roots, assemble and sign the header, commit, and
// persist (spec.md §4.7).
type Assembler struct {
	World      *worldstate.World
	Queue      *queue.Queue
	Lifecycle  *txlifecycle.Lifecycle
	Chain      *Chain
	Bus        *events.Bus
	Signer     Signer
	Clock      Clock
	MaxTxs     int
}

// New returns an Assembler wired to its collaborators. maxTxs <= 0 falls
// back to 500, matching the teacher's PoA.ProduceBlock default.
func New(world *worldstate.World, q *queue.Queue, lc *txlifecycle.Lifecycle, chain *Chain,
	bus *events.Bus, signer Signer, clock Clock, maxTxs int) *Assembler {
	if maxTxs <= 0 {
		maxTxs = 500
	}
	return &Assembler{World: world, Queue: q, Lifecycle: lc, Chain: chain, Bus: bus,
		Signer: signer, Clock: clock, MaxTxs: maxTxs}
}

// ProduceBlock drains up to MaxTxs transactions, validates each in order,
// and on success commits the resulting block. An empty drain still
// produces an empty block, matching spec.md's "drives one block at a
// time" framing — there is no "skip an empty round" carve-out in the
// core.
func (a *Assembler) ProduceBlock() (*wire.Block, error) {
	view := a.World.View()
	txs := a.Queue.GetTransactionsForBlock(view, a.MaxTxs)

	height := a.World.Height() + 1
	ws := a.World.Block()

	var acceptedTxs []*wire.Transaction
	var acceptedHashes []string
	var rejected []wire.RejectedTransaction
	var rejectedHashes []string

	for _, t := range txs {
		tx, ok := t.(*wire.Transaction)
		if !ok {
			return nil, fmt.Errorf("blockchain: queue yielded a non-wire transaction")
		}
		hash := tx.Hash()
		a.Bus.Publish(events.Event{Type: events.EventValidating, TxHash: hash, BlockHeight: height})

		clone, rej := a.Lifecycle.Validate(ws, tx, height)
		if rej != nil {
			rejected = append(rejected, wire.RejectedTransaction{
				Hash: hash, RejectionKind: string(rej.Kind), RejectionMsg: rej.Reason,
			})
			rejectedHashes = append(rejectedHashes, hash)
			ws.Emit(events.Event{Type: events.EventRejected, TxHash: hash, BlockHeight: height,
				Data: map[string]any{"kind": string(rej.Kind), "reason": rej.Reason}})
			continue
		}

		ws.Absorb(clone)
		acceptedTxs = append(acceptedTxs, tx)
		acceptedHashes = append(acceptedHashes, hash)
		ws.Emit(events.Event{Type: events.EventCommitted, TxHash: hash, BlockHeight: height,
			Data: map[string]any{"authority": tx.Authority().String()}})
	}

	var prevHash string
	if tip := a.Chain.Tip(); tip != nil {
		prevHash = tip.Hash
	}

	header := wire.BlockHeader{
		Timestamp:                      a.Clock.NowMs(),
		Height:                         height,
		PreviousBlockHash:              prevHash,
		TransactionsMerkleRoot:         merkle.Root(acceptedHashes),
		RejectedTransactionsMerkleRoot: merkle.Root(rejectedHashes),
	}
	headerHash := header.Hash()

	sigs, err := a.Signer.SignHeader(headerHash)
	if err != nil {
		ws.DiscardEvents()
		return nil, fmt.Errorf("blockchain: gather signatures: %w", err)
	}

	block := &wire.Block{
		Header:     header,
		Hash:       headerHash,
		Accepted:   acceptedTxs,
		Rejected:   rejected,
		Signatures: sigs,
	}

	if err := a.Chain.Append(block); err != nil {
		ws.DiscardEvents()
		return nil, fmt.Errorf("blockchain: append block: %w", err)
	}

	a.World.Commit(ws, a.Bus)
	a.Bus.Publish(events.Event{Type: events.EventBlockCommitted, BlockHeight: height,
		Data: map[string]any{"hash": block.Hash, "accepted": len(acceptedTxs), "rejected": len(rejected)}})

	return block, nil
}
