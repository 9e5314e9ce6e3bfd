package isi

import (
	"errors"
	"fmt"

	"github.com/tolelom/ledgerd/events"
	"github.com/tolelom/ledgerd/ledger"
	"github.com/tolelom/ledgerd/worldstate"
)

// ErrNoWasmHost is returned when a trigger's action is a compiled contract
// reference and no WasmHost is installed to run it.
var ErrNoWasmHost = errors.New("isi: trigger references a wasm contract but no host is installed")

// WasmHost executes a compiled contract referenced by a trigger's action,
// returning the instructions it produces. Package abi provides an
// in-memory registry implementation (no wasm sandbox); this package only defines the seam so the
// instruction engine does not import the contract runtime directly.
type WasmHost interface {
	Run(ref string, authority ledger.AccountId) ([]ledger.Instruction, error)
}

// executeTrigger runs a trigger's action in a separate execution frame
// under the trigger's own authority (spec.md §4.5). Recursion through
// nested ExecuteTrigger instructions is bounded by maxTriggerRecursionDepth.
func (e *Engine) executeTrigger(ws *worldstate.WriteSnapshot, height int64, v ledger.ExecuteTriggerInstr, depth int) error {
	if depth >= maxTriggerRecursionDepth {
		return fmt.Errorf("%w: trigger %q at depth %d", ErrRecursionLimit, v.Trigger, depth)
	}
	t, err := ws.GetTrigger(v.Trigger)
	if err != nil {
		return err
	}
	if t.Action.Repeats.Exhausted() {
		return fmt.Errorf("isi: trigger %q has no repeats remaining", v.Trigger)
	}

	instructions := t.Action.Executable.Instructions
	if t.Action.Executable.WasmRef != "" {
		if e.WasmHost == nil {
			return ErrNoWasmHost
		}
		instructions, err = e.WasmHost.Run(t.Action.Executable.WasmRef, t.Action.Authority)
		if err != nil {
			return fmt.Errorf("isi: trigger %q contract execution: %w", v.Trigger, err)
		}
	}

	for _, instr := range instructions {
		if err := e.execute(ws, t.Action.Authority, height, instr, depth+1); err != nil {
			return fmt.Errorf("isi: trigger %q action: %w", v.Trigger, err)
		}
	}

	t.Action.Repeats = t.Action.Repeats.Decrement()
	ws.Emit(events.Event{Type: events.EventTriggerExecuted, Data: map[string]any{"trigger_id": v.Trigger.String()}})
	return nil
}
