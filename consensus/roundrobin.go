// Package consensus implements round-robin proposer rotation over a fixed
// topology — the external collaborator blockchain.Assembler defers
// signature-gathering to (spec.md §4.7 step 6). It is deliberately NOT a
// BFT protocol: spec.md names BFT leader election itself as a Non-goal,
// and RoundRobin is the single-signer proposer-rotation stand-in a
// development or single-validator deployment uses in its place.
//
// Grounded on consensus/poa.go's PoA (round-robin IsProposer over a
// configured validator set, sign-then-append, ticker-driven Run loop,
// ValidateBlock's proposer/signature/height/prev-hash checks), adapted
// from a hard-coded config.Config.Validators list to
// worldstate.View.ListPeers() (the genesis-configured topology), and from
// *core.Block-level signing to blockchain.Signer's narrow SignHeader seam.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/wire"
	"github.com/tolelom/ledgerd/worldstate"
)

// RoundRobin rotates proposer duty across the genesis topology by block
// height and signs each header with the local validator's key. It
// satisfies blockchain.Signer.
type RoundRobin struct {
	World   *worldstate.World
	PrivKey crypto.PrivateKey
	Log     zerolog.Logger
}

// New returns a RoundRobin collaborator for the local validator identified
// by priv.
func New(world *worldstate.World, priv crypto.PrivateKey, log zerolog.Logger) *RoundRobin {
	return &RoundRobin{World: world, PrivKey: priv, Log: log}
}

// IsProposer reports whether the local key is due to propose the next
// block, rotating through the genesis topology in peer order.
func (r *RoundRobin) IsProposer() bool {
	peers := r.World.View().ListPeers()
	if len(peers) == 0 {
		return false
	}
	nextHeight := r.World.Height() + 1
	idx := int(nextHeight % int64(len(peers)))
	return peers[idx].PublicKey == r.PrivKey.Public().Hex()
}

// SignHeader signs headerHash with the local validator key, satisfying
// blockchain.Signer. This single-signer stand-in always returns exactly
// one signature; a real BFT collaborator would gather a quorum here.
func (r *RoundRobin) SignHeader(headerHash string) ([]wire.Signature, error) {
	return []wire.Signature{{
		PublicKey: r.PrivKey.Public().Hex(),
		Signature: crypto.Sign(r.PrivKey, []byte(headerHash)),
	}}, nil
}

// Run drives the block-production loop on a ticker, invoking produce
// whenever IsProposer reports true, until ctx is cancelled.
func (r *RoundRobin) Run(ctx context.Context, interval time.Duration, produce func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.IsProposer() {
				continue
			}
			if err := produce(); err != nil {
				r.Log.Error().Err(err).Msg("produce block")
			}
		}
	}
}

// VerifyBlock checks that block was proposed by the peer whose rotation
// turn it was, that its signature is valid over its own header hash, and
// that it links correctly onto the chain's current tip — the receiving
// side of the same round-robin discipline ProduceBlock/SignHeader drive
// on the proposing side.
func VerifyBlock(block *wire.Block, peers []ledger.Peer, tipHeight int64, tipHash string) error {
	if len(peers) == 0 {
		return errors.New("consensus: no validators configured")
	}
	if len(block.Signatures) == 0 {
		return errors.New("consensus: block has no signatures")
	}

	idx := int(block.Header.Height % int64(len(peers)))
	expected := peers[idx].PublicKey
	sig := block.Signatures[0]
	if sig.PublicKey != expected {
		return fmt.Errorf("consensus: wrong proposer: got %s want %s", sig.PublicKey, expected)
	}

	pub, err := crypto.PubKeyFromHex(sig.PublicKey)
	if err != nil {
		return fmt.Errorf("consensus: invalid proposer pubkey: %w", err)
	}
	headerHash := block.Header.Hash()
	if block.Hash != headerHash {
		return fmt.Errorf("consensus: block hash mismatch: got %s want %s", block.Hash, headerHash)
	}
	if err := crypto.Verify(pub, []byte(headerHash), sig.Signature); err != nil {
		return fmt.Errorf("consensus: signature invalid: %w", err)
	}

	if tipHash == "" {
		if block.Header.Height != 1 {
			return fmt.Errorf("consensus: first block must be height 1, got %d", block.Header.Height)
		}
		return nil
	}
	if block.Header.PreviousBlockHash != tipHash {
		return fmt.Errorf("consensus: previous_block_hash mismatch: got %s want %s",
			block.Header.PreviousBlockHash, tipHash)
	}
	if block.Header.Height != tipHeight+1 {
		return fmt.Errorf("consensus: height mismatch: got %d want %d", block.Header.Height, tipHeight+1)
	}
	return nil
}
