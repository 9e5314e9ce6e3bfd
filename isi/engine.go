package isi

import (
	"fmt"

	"github.com/tolelom/ledgerd/authz"
	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// maxTriggerRecursionDepth bounds ExecuteTrigger recursion (spec.md §4.5:
// "infinite recursion is bounded by the surrounding block"). A trigger
// action may itself contain ExecuteTrigger instructions; this caps how
// deep that chain may nest within a single top-level instruction.
const maxTriggerRecursionDepth = 16

// Engine applies instructions to a world-state write snapshot, gating each
// one through an authz.Policy. Its only state is the policy pointer and
// the optional WasmHost, so swapping the policy (the Upgrade instruction) is just
// assigning a new *authz.Policy.
type Engine struct {
	Policy *authz.Policy

	// WasmHost runs contract-referencing trigger actions, when installed.
	// Left nil unless package abi's host is wired in by the caller.
	WasmHost WasmHost
}

// New returns an Engine using the default authorization policy.
func New() *Engine {
	return &Engine{Policy: authz.NewDefaultPolicy()}
}

// Execute authorizes and applies instr against ws on behalf of authority at
// the given block height.
func (e *Engine) Execute(ws *worldstate.WriteSnapshot, authority ledger.AccountId, height int64, instr ledger.Instruction) error {
	return e.execute(ws, authority, height, instr, 0)
}

func (e *Engine) execute(ws *worldstate.WriteSnapshot, authority ledger.AccountId, height int64, instr ledger.Instruction, depth int) error {
	if err := e.Policy.AuthorizeInstruction(ws, authority, height, instr); err != nil {
		return err
	}

	switch v := instr.(type) {
	case ledger.RegisterDomain:
		return e.registerDomain(ws, v)
	case ledger.RegisterAccount:
		return e.registerAccount(ws, v)
	case ledger.RegisterAssetDefinition:
		return e.registerAssetDefinition(ws, v)
	case ledger.RegisterAsset:
		return e.registerAsset(ws, v)
	case ledger.RegisterRole:
		return e.registerRole(ws, v)
	case ledger.RegisterTrigger:
		return e.registerTrigger(ws, v)

	case ledger.UnregisterDomain:
		return e.unregisterDomain(ws, v)
	case ledger.UnregisterAccount:
		return e.unregisterAccount(ws, v)
	case ledger.UnregisterAssetDefinition:
		return e.unregisterAssetDefinition(ws, v)
	case ledger.UnregisterRole:
		return e.unregisterRole(ws, v)
	case ledger.UnregisterTrigger:
		return e.unregisterTrigger(ws, v)

	case ledger.MintAssetNumeric:
		return e.mintAssetNumeric(ws, v)
	case ledger.MintTriggerRepetitions:
		return e.mintTriggerRepetitions(ws, v)
	case ledger.BurnAssetNumeric:
		return e.burnAssetNumeric(ws, v)
	case ledger.BurnTriggerRepetitions:
		return e.burnTriggerRepetitions(ws, v)

	case ledger.TransferAssetNumeric:
		return e.transferAssetNumeric(ws, v)
	case ledger.TransferAssetStore:
		return e.transferAssetStore(ws, v)
	case ledger.TransferDomainOwnership:
		return e.transferDomainOwnership(ws, v)
	case ledger.TransferAssetDefinitionOwnership:
		return e.transferAssetDefinitionOwnership(ws, v)

	case ledger.SetKeyValueAsset:
		return e.setKeyValueAsset(ws, v)
	case ledger.SetKeyValueAccount:
		return e.setKeyValueAccount(ws, v)
	case ledger.SetKeyValueDomain:
		return e.setKeyValueDomain(ws, v)
	case ledger.SetKeyValueAssetDefinition:
		return e.setKeyValueAssetDefinition(ws, v)
	case ledger.SetKeyValueTrigger:
		return e.setKeyValueTrigger(ws, v)

	case ledger.RemoveKeyValueAsset:
		return e.removeKeyValueAsset(ws, v)
	case ledger.RemoveKeyValueAccount:
		return e.removeKeyValueAccount(ws, v)
	case ledger.RemoveKeyValueDomain:
		return e.removeKeyValueDomain(ws, v)
	case ledger.RemoveKeyValueAssetDefinition:
		return e.removeKeyValueAssetDefinition(ws, v)
	case ledger.RemoveKeyValueTrigger:
		return e.removeKeyValueTrigger(ws, v)

	case ledger.GrantAccountPermission:
		return e.grantAccountPermission(ws, authority, height, v)
	case ledger.GrantAccountRole:
		return e.grantAccountRole(ws, v)
	case ledger.RevokeAccountPermission:
		return e.revokeAccountPermission(ws, v)
	case ledger.RevokeAccountRole:
		return e.revokeAccountRole(ws, v)

	case ledger.ExecuteTriggerInstr:
		return e.executeTrigger(ws, height, v, depth)

	case ledger.SetParameter:
		ws.SetParameter(v.Name, v.Value)
		return nil
	case ledger.NewParameter:
		return ws.NewParameter(v.Name, v.Value)
	case ledger.Upgrade:
		// The executor artifact reference is recorded as a parameter; the
		// actual policy swap is an operational action taken by whatever
		// installs a new *authz.Policy into this Engine (outside the
		// instruction algebra itself — Go has no hot-reloadable compiled
		// module to replace in-process).
		ws.SetParameter("executor_wasm_ref", v.ExecutorWasmRef)
		return nil
	case ledger.Fail:
		return fmt.Errorf("isi: instruction failed: %s", v.Message)
	case ledger.Log:
		ws.Emit(events.Event{Type: events.EventType("log_" + v.Level), Data: map[string]any{"message": v.Message}})
		return nil

	default:
		return fmt.Errorf("%w: %T", ErrUnknownInstruction, instr)
	}
}
