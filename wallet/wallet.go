package wallet

import (
	"time"

	"github.com/tolelom/ledgerd/crypto"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/wire"
)

// Wallet holds a key pair and builds signed transaction envelopes for an
// account id it authenticates for.
type Wallet struct {
	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// New creates a Wallet from an existing private key.
func New(priv crypto.PrivateKey) *Wallet {
	return &Wallet{priv: priv, pub: priv.Public()}
}

// Generate creates a Wallet with a freshly generated key pair.
func Generate() (*Wallet, error) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(priv), nil
}

// PrivKey returns the raw private key (handle with care).
func (w *Wallet) PrivKey() crypto.PrivateKey {
	return w.priv
}

// PubKey returns the hex-encoded ed25519 public key, the form a
// SignatureCondition compares a signatory against.
func (w *Wallet) PubKey() string {
	return w.pub.Hex()
}

// NewTx builds and signs a transaction submitting instrs on behalf of
// authority. ttl of 0 lets the admission queue apply its default.
func (w *Wallet) NewTx(chainID string, authority ledger.AccountId, instrs []ledger.Instruction, ttl time.Duration) (*wire.Transaction, error) {
	tx := &wire.Transaction{
		ChainID:        chainID,
		AuthorityID:    authority,
		InstructionSet: instrs,
		CreationTimeMs: time.Now().UnixMilli(),
	}
	if ttl > 0 {
		tx.TTLMs = ttl.Milliseconds()
	}
	hash := tx.Hash()
	tx.Signatures = []wire.Signature{{
		PublicKey: w.pub.Hex(),
		Signature: crypto.Sign(w.priv, []byte(hash)),
	}}
	return tx, nil
}

// Transfer builds a signed TransferAssetNumeric transaction moving amount
// of source to destination's corresponding asset holding.
func (w *Wallet) Transfer(chainID string, authority ledger.AccountId, source ledger.AssetId, amount ledger.Numeric, destination ledger.AccountId, ttl time.Duration) (*wire.Transaction, error) {
	return w.NewTx(chainID, authority, []ledger.Instruction{
		ledger.TransferAssetNumeric{Source: source, Amount: amount, Destination: destination},
	}, ttl)
}
