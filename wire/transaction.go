// Package wire defines the external, over-the-network shapes (component
// C9): the signed transaction envelope, the block envelope, and the
// query-surface request/response shapes. These are the JSON-serializable
// types package network moves between peers and package rpc exposes to
// clients; internal packages (queue, txlifecycle, isi) depend only on the
// narrow interfaces these types satisfy, never on wire directly.
//
// Grounded on core/transaction.go's envelope shape (From/Nonce/Timestamp/
// Payload/Signature over JSON) and core/block.go's header/body split,
// generalized to carry the full instruction algebra and an AccountId
// authority instead of a single typed payload and a bare pubkey hex.
package wire

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/tolelom/ledgerd/ledger"
)

// Signature pairs a signer's public key with its signature over a
// transaction's or block's canonical hash.
type Signature struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// Transaction is the signed transaction envelope spec.md §6 describes:
// chain_id, authority, instructions or a wasm blob, creation_time_ms, an
// optional ttl_ms, a metadata map, and one or more signatures.
//
// InstructionSet is an interface slice (the closed ledger.Instruction
// algebra), which encoding/json cannot marshal/unmarshal polymorphically on
// its own; MarshalJSON/UnmarshalJSON below route through
// instructionEnvelope to tag each element with its Kind.
type Transaction struct {
	ChainID        string
	AuthorityID    ledger.AccountId
	InstructionSet []ledger.Instruction
	Wasm           []byte
	CreationTimeMs int64
	TTLMs          int64
	Metadata       ledger.Metadata
	Signatures     []Signature
}

// wireTransaction is Transaction's JSON-serializable shadow.
type wireTransaction struct {
	ChainID        string                `json:"chain_id"`
	AuthorityID    ledger.AccountId      `json:"authority"`
	Instructions   []instructionEnvelope `json:"instructions,omitempty"`
	Wasm           []byte                `json:"wasm_blob,omitempty"`
	CreationTimeMs int64                 `json:"creation_time_ms"`
	TTLMs          int64                 `json:"ttl_ms,omitempty"`
	Metadata       ledger.Metadata       `json:"metadata,omitempty"`
	Signatures     []Signature           `json:"signatures,omitempty"`
}

func (tx *Transaction) toWire() (wireTransaction, error) {
	envs, err := encodeInstructions(tx.InstructionSet)
	if err != nil {
		return wireTransaction{}, err
	}
	return wireTransaction{
		ChainID: tx.ChainID, AuthorityID: tx.AuthorityID, Instructions: envs, Wasm: tx.Wasm,
		CreationTimeMs: tx.CreationTimeMs, TTLMs: tx.TTLMs, Metadata: tx.Metadata, Signatures: tx.Signatures,
	}, nil
}

// MarshalJSON implements json.Marshaler.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	w, err := tx.toWire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (tx *Transaction) UnmarshalJSON(data []byte) error {
	var w wireTransaction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	instrs, err := decodeInstructions(w.Instructions)
	if err != nil {
		return err
	}
	tx.ChainID, tx.AuthorityID, tx.InstructionSet, tx.Wasm = w.ChainID, w.AuthorityID, instrs, w.Wasm
	tx.CreationTimeMs, tx.TTLMs, tx.Metadata, tx.Signatures = w.CreationTimeMs, w.TTLMs, w.Metadata, w.Signatures
	return nil
}

// Hash returns the hex-encoded SHA-256 hash of the canonical encoding of
// every field except Signatures (spec.md §6).
func (tx *Transaction) Hash() string {
	unsigned := *tx
	unsigned.Signatures = nil
	w, err := unsigned.toWire()
	if err != nil {
		return ""
	}
	data, err := json.Marshal(w)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(lengthPrefixed(data))
	return hex.EncodeToString(sum[:])
}

func lengthPrefixed(data []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(data)))
	return append(lenBuf[:], data...)
}

// Authority satisfies queue.Transaction / txlifecycle.Transaction.
func (tx *Transaction) Authority() ledger.AccountId { return tx.AuthorityID }

// CreationTime converts CreationTimeMs to a time.Time.
func (tx *Transaction) CreationTime() time.Time {
	return time.UnixMilli(tx.CreationTimeMs)
}

// TTL converts TTLMs to a time.Duration, 0 meaning "use the queue default".
func (tx *Transaction) TTL() time.Duration {
	if tx.TTLMs <= 0 {
		return 0
	}
	return time.Duration(tx.TTLMs) * time.Millisecond
}

// SignatoryPublicKey returns the first signature's public key, the single
// key the admission queue's fast pre-check compares against the
// authority's signatory (spec.md §4.3).
func (tx *Transaction) SignatoryPublicKey() string {
	if len(tx.Signatures) == 0 {
		return ""
	}
	return tx.Signatures[0].PublicKey
}

// SignerPublicKeys returns every signer, the full set txlifecycle checks
// against the authority account's multisig SignatureCondition.
func (tx *Transaction) SignerPublicKeys() []string {
	out := make([]string, len(tx.Signatures))
	for i, s := range tx.Signatures {
		out[i] = s.PublicKey
	}
	return out
}

// Instructions returns the inline instruction list (nil if this is a
// wasm-blob transaction).
func (tx *Transaction) Instructions() []ledger.Instruction { return tx.InstructionSet }

// WasmBlob returns the compiled-contract bytes (nil for an inline
// instruction-list transaction).
func (tx *Transaction) WasmBlob() []byte { return tx.Wasm }
