// Package isi is the instruction engine (component C5): it applies one
// instruction at a time to a worldstate.WriteSnapshot, consulting the
// authorization visitor (package authz) before any mutation and emitting
// the resulting state-change events.
//
// Grounded on original_source/core/src/smartcontracts/isi/*.rs (one file
// per entity kind: domain.rs, account.rs, asset.rs, triggers.rs, ...), each
// of which implements an Execute trait method per instruction variant. Go
// has no trait-per-struct dispatch, so this package collapses that into a
// single Engine.Execute type switch, grouped into per-concern files the
// way the original groups them into per-entity modules.
package isi

import "errors"

var (
	// ErrAlreadyExists is returned by Register instructions whose target id
	// is already present.
	ErrAlreadyExists = errors.New("isi: entity already exists")

	// ErrValueKindMismatch guards Mint/Burn/Transfer-numeric against a
	// Store-typed asset and SetKeyValue/RemoveKeyValue-on-asset against a
	// Numeric-typed one.
	ErrValueKindMismatch = errors.New("isi: asset value kind mismatch")

	// ErrUnknownInstruction guards against an Instruction implementation the
	// engine's dispatch does not recognize — the algebra is closed, so this
	// indicates a bug rather than a user error.
	ErrUnknownInstruction = errors.New("isi: unknown instruction kind")

	// ErrRecursionLimit guards ExecuteTrigger against runaway recursion.
	ErrRecursionLimit = errors.New("isi: trigger execution recursion limit exceeded")
)
