package abi

import "errors"

// ErrNoSuchContract is returned when a trigger references a wasm_ref no
// handler was ever registered for.
var ErrNoSuchContract = errors.New("abi: no contract registered for ref")
