package wire

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/ledgerd/ledger"
)

// instructionEnvelope tags a concrete instruction's JSON encoding with its
// Kind so the closed algebra can round-trip through an interface-typed
// field, which encoding/json cannot do unassisted. Every Instruction
// implementation is a plain struct, so Data is just that struct marshaled
// on its own.
type instructionEnvelope struct {
	Kind ledger.InstructionKind `json:"kind"`
	Data json.RawMessage       `json:"data"`
}

func encodeInstruction(instr ledger.Instruction) (instructionEnvelope, error) {
	data, err := json.Marshal(instr)
	if err != nil {
		return instructionEnvelope{}, err
	}
	return instructionEnvelope{Kind: instr.Kind(), Data: data}, nil
}

func decodeInstruction(env instructionEnvelope) (ledger.Instruction, error) {
	var instr ledger.Instruction
	switch env.Kind {
	case ledger.KindRegisterDomain:
		instr = &ledger.RegisterDomain{}
	case ledger.KindRegisterAccount:
		instr = &ledger.RegisterAccount{}
	case ledger.KindRegisterAssetDefinition:
		instr = &ledger.RegisterAssetDefinition{}
	case ledger.KindRegisterAsset:
		instr = &ledger.RegisterAsset{}
	case ledger.KindRegisterRole:
		instr = &ledger.RegisterRole{}
	case ledger.KindRegisterTrigger:
		instr = &ledger.RegisterTrigger{}
	case ledger.KindUnregisterDomain:
		instr = &ledger.UnregisterDomain{}
	case ledger.KindUnregisterAccount:
		instr = &ledger.UnregisterAccount{}
	case ledger.KindUnregisterAssetDefinition:
		instr = &ledger.UnregisterAssetDefinition{}
	case ledger.KindUnregisterRole:
		instr = &ledger.UnregisterRole{}
	case ledger.KindUnregisterTrigger:
		instr = &ledger.UnregisterTrigger{}
	case ledger.KindMintAssetNumeric:
		instr = &ledger.MintAssetNumeric{}
	case ledger.KindMintTriggerRepetitions:
		instr = &ledger.MintTriggerRepetitions{}
	case ledger.KindBurnAssetNumeric:
		instr = &ledger.BurnAssetNumeric{}
	case ledger.KindBurnTriggerRepetitions:
		instr = &ledger.BurnTriggerRepetitions{}
	case ledger.KindTransferAssetNumeric:
		instr = &ledger.TransferAssetNumeric{}
	case ledger.KindTransferAssetStore:
		instr = &ledger.TransferAssetStore{}
	case ledger.KindTransferDomainOwnership:
		instr = &ledger.TransferDomainOwnership{}
	case ledger.KindTransferAssetDefinitionOwnership:
		instr = &ledger.TransferAssetDefinitionOwnership{}
	case ledger.KindSetKeyValueAsset:
		instr = &ledger.SetKeyValueAsset{}
	case ledger.KindSetKeyValueAccount:
		instr = &ledger.SetKeyValueAccount{}
	case ledger.KindSetKeyValueDomain:
		instr = &ledger.SetKeyValueDomain{}
	case ledger.KindSetKeyValueAssetDefinition:
		instr = &ledger.SetKeyValueAssetDefinition{}
	case ledger.KindSetKeyValueTrigger:
		instr = &ledger.SetKeyValueTrigger{}
	case ledger.KindRemoveKeyValueAsset:
		instr = &ledger.RemoveKeyValueAsset{}
	case ledger.KindRemoveKeyValueAccount:
		instr = &ledger.RemoveKeyValueAccount{}
	case ledger.KindRemoveKeyValueDomain:
		instr = &ledger.RemoveKeyValueDomain{}
	case ledger.KindRemoveKeyValueAssetDefinition:
		instr = &ledger.RemoveKeyValueAssetDefinition{}
	case ledger.KindRemoveKeyValueTrigger:
		instr = &ledger.RemoveKeyValueTrigger{}
	case ledger.KindGrantAccountPermission:
		instr = &ledger.GrantAccountPermission{}
	case ledger.KindGrantAccountRole:
		instr = &ledger.GrantAccountRole{}
	case ledger.KindRevokeAccountPermission:
		instr = &ledger.RevokeAccountPermission{}
	case ledger.KindRevokeAccountRole:
		instr = &ledger.RevokeAccountRole{}
	case ledger.KindExecuteTrigger:
		instr = &ledger.ExecuteTriggerInstr{}
	case ledger.KindSetParameter:
		instr = &ledger.SetParameter{}
	case ledger.KindNewParameter:
		instr = &ledger.NewParameter{}
	case ledger.KindUpgrade:
		instr = &ledger.Upgrade{}
	case ledger.KindFail:
		instr = &ledger.Fail{}
	case ledger.KindLog:
		instr = &ledger.Log{}
	default:
		return nil, fmt.Errorf("wire: unknown instruction kind %q", env.Kind)
	}
	if err := json.Unmarshal(env.Data, instr); err != nil {
		return nil, fmt.Errorf("wire: decoding %s: %w", env.Kind, err)
	}
	return derefInstruction(instr), nil
}

// derefInstruction returns the pointed-to value: ledger's Kind() methods
// have value receivers, so decoded instructions are stored as values, not
// pointers, matching how the rest of the codebase constructs them as
// struct literals.
func derefInstruction(ptr ledger.Instruction) ledger.Instruction {
	switch v := ptr.(type) {
	case *ledger.RegisterDomain:
		return *v
	case *ledger.RegisterAccount:
		return *v
	case *ledger.RegisterAssetDefinition:
		return *v
	case *ledger.RegisterAsset:
		return *v
	case *ledger.RegisterRole:
		return *v
	case *ledger.RegisterTrigger:
		return *v
	case *ledger.UnregisterDomain:
		return *v
	case *ledger.UnregisterAccount:
		return *v
	case *ledger.UnregisterAssetDefinition:
		return *v
	case *ledger.UnregisterRole:
		return *v
	case *ledger.UnregisterTrigger:
		return *v
	case *ledger.MintAssetNumeric:
		return *v
	case *ledger.MintTriggerRepetitions:
		return *v
	case *ledger.BurnAssetNumeric:
		return *v
	case *ledger.BurnTriggerRepetitions:
		return *v
	case *ledger.TransferAssetNumeric:
		return *v
	case *ledger.TransferAssetStore:
		return *v
	case *ledger.TransferDomainOwnership:
		return *v
	case *ledger.TransferAssetDefinitionOwnership:
		return *v
	case *ledger.SetKeyValueAsset:
		return *v
	case *ledger.SetKeyValueAccount:
		return *v
	case *ledger.SetKeyValueDomain:
		return *v
	case *ledger.SetKeyValueAssetDefinition:
		return *v
	case *ledger.SetKeyValueTrigger:
		return *v
	case *ledger.RemoveKeyValueAsset:
		return *v
	case *ledger.RemoveKeyValueAccount:
		return *v
	case *ledger.RemoveKeyValueDomain:
		return *v
	case *ledger.RemoveKeyValueAssetDefinition:
		return *v
	case *ledger.RemoveKeyValueTrigger:
		return *v
	case *ledger.GrantAccountPermission:
		return *v
	case *ledger.GrantAccountRole:
		return *v
	case *ledger.RevokeAccountPermission:
		return *v
	case *ledger.RevokeAccountRole:
		return *v
	case *ledger.ExecuteTriggerInstr:
		return *v
	case *ledger.SetParameter:
		return *v
	case *ledger.NewParameter:
		return *v
	case *ledger.Upgrade:
		return *v
	case *ledger.Fail:
		return *v
	case *ledger.Log:
		return *v
	default:
		return ptr
	}
}

func encodeInstructions(instrs []ledger.Instruction) ([]instructionEnvelope, error) {
	if instrs == nil {
		return nil, nil
	}
	out := make([]instructionEnvelope, len(instrs))
	for i, instr := range instrs {
		env, err := encodeInstruction(instr)
		if err != nil {
			return nil, err
		}
		out[i] = env
	}
	return out, nil
}

func decodeInstructions(envs []instructionEnvelope) ([]ledger.Instruction, error) {
	if envs == nil {
		return nil, nil
	}
	out := make([]ledger.Instruction, len(envs))
	for i, env := range envs {
		instr, err := decodeInstruction(env)
		if err != nil {
			return nil, err
		}
		out[i] = instr
	}
	return out, nil
}

// EncodeInstructionList marshals a closed-algebra instruction list to JSON
// using the same tagged-union envelope Transaction uses internally. Package
// genesis uses this to serialize the instructions embedded in its genesis
// document without duplicating the envelope logic.
func EncodeInstructionList(instrs []ledger.Instruction) ([]byte, error) {
	envs, err := encodeInstructions(instrs)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envs)
}

// DecodeInstructionList is EncodeInstructionList's inverse.
func DecodeInstructionList(data []byte) ([]ledger.Instruction, error) {
	var envs []instructionEnvelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, err
	}
	return decodeInstructions(envs)
}
