// Package txverify implements the production txlifecycle.Verifier: it
// checks every signature on a submitted transaction against its
// unsigned-body hash. Kept as its own package (rather than inside
// txlifecycle, which deliberately never imports wire) since it needs both
// package wire's concrete Transaction and package crypto's ed25519 check.
package txverify

import (
	"fmt"

	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/txlifecycle"
	"github.com/tolelom/ledgerd/wire"
)

// SignatureVerifier checks a wire.Transaction's signatures against its hash.
type SignatureVerifier struct{}

// Verify satisfies txlifecycle.Verifier. tx must be a *wire.Transaction;
// package queue and package blockchain.Assembler only ever hand txlifecycle
// transactions that originated as one, so the assertion cannot fail in
// production use.
func (SignatureVerifier) Verify(tx txlifecycle.Transaction) error {
	wtx, ok := tx.(*wire.Transaction)
	if !ok {
		return fmt.Errorf("txverify: unsupported transaction type %T", tx)
	}
	if len(wtx.Signatures) == 0 {
		return fmt.Errorf("txverify: transaction %s has no signatures", wtx.Hash())
	}
	hash := wtx.Hash()
	for _, sig := range wtx.Signatures {
		pub, err := crypto.PubKeyFromHex(sig.PublicKey)
		if err != nil {
			return fmt.Errorf("txverify: invalid signer key %s: %w", sig.PublicKey, err)
		}
		if err := crypto.Verify(pub, []byte(hash), sig.Signature); err != nil {
			return fmt.Errorf("txverify: signature by %s invalid: %w", sig.PublicKey, err)
		}
	}
	return nil
}
