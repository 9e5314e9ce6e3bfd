package txlifecycle

import (
	"fmt"

	"github.com/tolelom/ledgerd/ledger"
)

// RejectionKind is the closed taxonomy spec.md §4.4 names.
type RejectionKind string

const (
	RejectUnexpectedGenesisAccountSignature RejectionKind = "UnexpectedGenesisAccountSignature"
	RejectSignatureVerification             RejectionKind = "SignatureVerification"
	RejectUnsatisfiedSignatureCondition     RejectionKind = "UnsatisfiedSignatureCondition"
	RejectInstructionExecution              RejectionKind = "InstructionExecution"
	RejectNotPermitted                      RejectionKind = "NotPermitted"
	RejectValidation                        RejectionKind = "Validation"
)

// Rejection is why a transaction failed validation. It satisfies error so
// callers that only want a message can use it directly.
type Rejection struct {
	Kind        RejectionKind
	Instruction ledger.Instruction // set only when an instruction failed: InstructionExecution, NotPermitted, or an instruction-level Validation
	Reason      string
}

func (r *Rejection) Error() string {
	if r.Instruction != nil {
		return fmt.Sprintf("%s: %s (%T): %s", r.Kind, r.Instruction.Kind(), r.Instruction, r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Reason)
}
