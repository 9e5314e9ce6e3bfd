// Package txlifecycle drives one transaction through the
// Accepted → (Valid | Rejected) → Committed state machine (component C4):
// structural acceptance checks, then full instruction-by-instruction
// validation against a per-transaction write snapshot, producing either a
// mutated snapshot ready to be folded into the block or a typed rejection
// reason.
//
// Grounded on original_source/core/src/tx/mod.rs's Accepted/Valid/Rejected
// transaction states and original_source/core/src/smartcontracts/isi/mod.rs's
// per-instruction Execute loop with abort-on-first-failure semantics; the
// teacher's core/blockchain.go validateBlock loop supplies the Go-shaped
// "apply each tx against a scratch state, keep or discard" structure this
// package generalizes.
package txlifecycle

import (
	"errors"
	"fmt"

	"github.com/tolelom/ledgerd/authz"
	"github.com/tolelom/ledgerd/isi"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// Transaction is the narrow view the lifecycle needs of a submitted
// transaction. Package wire's envelope type satisfies it; this package
// never imports wire, avoiding a cycle.
type Transaction interface {
	Hash() string
	Authority() ledger.AccountId
	Instructions() []ledger.Instruction
	WasmBlob() []byte
	SignerPublicKeys() []string
}

// Verifier checks a cryptographic signature over a transaction's signing
// payload. Package txverify supplies the production implementation
// (ed25519, via package crypto);
// tests supply a stub.
type Verifier interface {
	Verify(tx Transaction) error
}

// AcceptanceLimits bounds structural transaction shape, checked before any
// instruction runs (spec.md §4.4: "Acceptance checks structural bounds").
type AcceptanceLimits struct {
	MaxInstructions int
	MaxWasmBytes    int
}

// DefaultAcceptanceLimits matches the teacher's config.go style of modest,
// explicit defaults (it had no transaction-shape knobs of its own; these
// are new, introduced for this spec).
func DefaultAcceptanceLimits() AcceptanceLimits {
	return AcceptanceLimits{MaxInstructions: 4096, MaxWasmBytes: 4 << 20}
}

var (
	// ErrTooManyInstructions and ErrWasmTooLarge are acceptance-phase
	// errors: the transaction never reaches validation.
	ErrTooManyInstructions = errors.New("txlifecycle: instruction count exceeds limit")
	ErrWasmTooLarge        = errors.New("txlifecycle: wasm blob exceeds size limit")
)

// Accept runs the structural acceptance checks only.
func Accept(tx Transaction, limits AcceptanceLimits) error {
	if n := len(tx.Instructions()); n > limits.MaxInstructions {
		return fmt.Errorf("%w: %d > %d", ErrTooManyInstructions, n, limits.MaxInstructions)
	}
	if n := len(tx.WasmBlob()); n > limits.MaxWasmBytes {
		return fmt.Errorf("%w: %d > %d", ErrWasmTooLarge, n, limits.MaxWasmBytes)
	}
	return nil
}

// Lifecycle validates accepted transactions against the world state.
type Lifecycle struct {
	Engine         *isi.Engine
	Verifier       Verifier
	Limits         AcceptanceLimits
	GenesisAccount ledger.AccountId
}

// New returns a Lifecycle wired to eng and verifier, using default limits.
func New(eng *isi.Engine, verifier Verifier, genesisAccount ledger.AccountId) *Lifecycle {
	return &Lifecycle{Engine: eng, Verifier: verifier, Limits: DefaultAcceptanceLimits(), GenesisAccount: genesisAccount}
}

// Validate runs tx against a clone of parent, returning the mutated clone
// on success (the caller Absorb()s it back into the block's running
// snapshot) or a *Rejection describing why the transaction was rejected.
// parent is never mutated.
func (l *Lifecycle) Validate(parent *worldstate.WriteSnapshot, tx Transaction, height int64) (*worldstate.WriteSnapshot, *Rejection) {
	if err := Accept(tx, l.Limits); err != nil {
		return nil, &Rejection{Kind: RejectValidation, Reason: err.Error()}
	}

	authority := tx.Authority()
	if authority == l.GenesisAccount && height != 0 {
		return nil, &Rejection{Kind: RejectUnexpectedGenesisAccountSignature,
			Reason: "genesis account may not author transactions outside the genesis block"}
	}

	if l.Verifier != nil {
		if err := l.Verifier.Verify(tx); err != nil {
			return nil, &Rejection{Kind: RejectSignatureVerification, Reason: err.Error()}
		}
	}

	if acc, err := parent.GetAccount(authority); err == nil {
		if !acc.SignatureCondition.Satisfied(tx.SignerPublicKeys()) {
			return nil, &Rejection{Kind: RejectUnsatisfiedSignatureCondition,
				Reason: fmt.Sprintf("signer set does not satisfy %s's signature condition", authority)}
		}
	}
	// An authority with no registered account yet (first-ever registration
	// in the genesis block) has no condition to check; RegisterAccount
	// itself will fail validation downstream if the id is already taken.

	child := parent.Clone()
	for _, instr := range tx.Instructions() {
		if err := l.Engine.Execute(child, authority, height, instr); err != nil {
			return nil, classify(instr, err)
		}
	}
	child.RecordTransaction(tx.Hash())
	return child, nil
}

// classify maps an isi.Engine error to the typed rejection taxonomy
// spec.md §4.4 names.
func classify(instr ledger.Instruction, err error) *Rejection {
	if errors.Is(err, authz.ErrNotPermitted) {
		return &Rejection{Kind: RejectNotPermitted, Instruction: instr, Reason: err.Error()}
	}
	switch {
	case errors.Is(err, ledger.ErrTypeError),
		errors.Is(err, ledger.ErrMintUnmintable),
		errors.Is(err, ledger.ErrOverflow),
		errors.Is(err, ledger.ErrNotEnoughQuantity):
		return &Rejection{Kind: RejectValidation, Instruction: instr, Reason: err.Error()}
	default:
		return &Rejection{Kind: RejectInstructionExecution, Instruction: instr, Reason: err.Error()}
	}
}
