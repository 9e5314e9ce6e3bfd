package network

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tolelom/ledgerd/blockchain"
	"github.com/tolelom/ledgerd/consensus"
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/isi"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// GetBlocksRequest asks a peer for blocks starting at FromHeight.
type GetBlocksRequest struct {
	FromHeight int64 `json:"from_height"`
	Limit      int   `json:"limit"`
}

// BlocksResponse carries a batch of blocks.
type BlocksResponse struct {
	Blocks []*wire.Block `json:"blocks"`
}

// Syncer handles block synchronisation between nodes: it requests missing
// blocks, verifies each against the round-robin proposer schedule, replays
// its accepted transactions' instructions onto world state, and appends it
// to the durable chain — the receiving-side counterpart of
// blockchain.Assembler.ProduceBlock for a node that did not propose the
// block itself.
type Syncer struct {
	node   *Node
	chain  *blockchain.Chain
	world  *worldstate.World
	engine *isi.Engine
	bus    *events.Bus
	peers  func() []ledger.Peer
	log    zerolog.Logger
}

// NewSyncer creates a Syncer that requests missing blocks from peers and
// applies them through engine against world. peers returns the current
// genesis topology, consulted by consensus.VerifyBlock on each
// synced block.
func NewSyncer(node *Node, chain *blockchain.Chain, world *worldstate.World, engine *isi.Engine, bus *events.Bus, peers func() []ledger.Peer, log zerolog.Logger) *Syncer {
	s := &Syncer{node: node, chain: chain, world: world, engine: engine, bus: bus, peers: peers, log: log}
	node.Handle(MsgGetBlocks, s.handleGetBlocks)
	node.Handle(MsgBlocks, s.handleBlocks)
	return s
}

// RequestBlocks asks peer for blocks starting at fromHeight.
func (s *Syncer) RequestBlocks(peer *Peer, fromHeight int64) error {
	req, err := json.Marshal(GetBlocksRequest{FromHeight: fromHeight, Limit: 50})
	if err != nil {
		return err
	}
	return peer.Send(Message{Type: MsgGetBlocks, Payload: req})
}

func (s *Syncer) handleGetBlocks(peer *Peer, msg Message) {
	var req GetBlocksRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	blocks := make([]*wire.Block, 0, req.Limit)
	for h := req.FromHeight; h < req.FromHeight+int64(req.Limit); h++ {
		b, err := s.chain.GetBlockByHeight(h)
		if err != nil {
			break
		}
		blocks = append(blocks, b)
	}
	data, err := json.Marshal(BlocksResponse{Blocks: blocks})
	if err != nil {
		return
	}
	_ = peer.Send(Message{Type: MsgBlocks, Payload: data})
}

func (s *Syncer) handleBlocks(_ *Peer, msg Message) {
	var resp BlocksResponse
	if err := json.Unmarshal(msg.Payload, &resp); err != nil {
		return
	}
	for _, b := range resp.Blocks {
		if err := s.applyBlock(b); err != nil {
			s.log.Warn().Err(err).Int64("height", b.Header.Height).Msg("sync block rejected")
			continue
		}
	}
}

func (s *Syncer) applyBlock(b *wire.Block) error {
	tip := s.chain.Tip()
	var tipHash string
	if tip != nil {
		tipHash = tip.Hash
	}
	if err := consensus.VerifyBlock(b, s.peers(), s.chain.Height(), tipHash); err != nil {
		return fmt.Errorf("network: verify block %d: %w", b.Header.Height, err)
	}

	ws := s.world.Block()
	for _, tx := range b.Accepted {
		for _, instr := range tx.Instructions() {
			if err := s.engine.Execute(ws, tx.Authority(), b.Header.Height, instr); err != nil {
				ws.DiscardEvents()
				return fmt.Errorf("network: replay tx %s: %w", tx.Hash(), err)
			}
		}
	}

	if err := s.chain.Append(b); err != nil {
		ws.DiscardEvents()
		return fmt.Errorf("network: append block %d: %w", b.Header.Height, err)
	}
	s.world.Commit(ws, s.bus)
	s.bus.Publish(events.Event{Type: events.EventBlockCommitted, BlockHeight: b.Header.Height,
		Data: map[string]any{"hash": b.Hash, "accepted": len(b.Accepted), "rejected": len(b.Rejected), "synced": true}})
	return nil
}
