package ledger

import (
	"errors"
	"math/big"
)

// Sentinel execution errors. Compared with errors.Is; wrapped with context
// by callers the way core.ErrNotFound is wrapped in the teacher's storage
// package.
var (
	ErrOverflow          = errors.New("ledger: numeric overflow")
	ErrNotEnoughQuantity = errors.New("ledger: not enough quantity")
	ErrDivisionByZero    = errors.New("ledger: division by zero")
	ErrTypeError         = errors.New("ledger: numeric type mismatch")
)

// Numeric is a non-negative fixed-point value: Value * 10^-Scale.
// Value is never mutated in place; every operation returns a new Numeric.
type Numeric struct {
	Value *big.Int
	Scale uint8
}

// Zero returns the zero value at scale 0.
func Zero() Numeric { return Numeric{Value: big.NewInt(0), Scale: 0} }

// NewNumeric builds a Numeric from an integer and explicit scale.
func NewNumeric(v int64, scale uint8) Numeric {
	return Numeric{Value: big.NewInt(v), Scale: scale}
}

// IsZero reports whether the value is exactly zero, regardless of scale.
func (n Numeric) IsZero() bool { return n.Value == nil || n.Value.Sign() == 0 }

// rescale returns both operands' integer values widened to a common scale
// (the max of the two), matching spec's "result's scale is the max of the
// operand scales" rule.
func rescale(a, b Numeric) (av, bv *big.Int, scale uint8) {
	scale = a.Scale
	if b.Scale > scale {
		scale = b.Scale
	}
	av = new(big.Int).Set(a.Value)
	bv = new(big.Int).Set(b.Value)
	if d := scale - a.Scale; d > 0 {
		av.Mul(av, pow10(d))
	}
	if d := scale - b.Scale; d > 0 {
		bv.Mul(bv, pow10(d))
	}
	return av, bv, scale
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// CheckedAdd adds two numerics, widening to the common scale. There is no
// fixed-width overflow ceiling in Go's big.Int, so "overflow" here means
// the result failing the caller-supplied NumericSpec, which the caller
// checks separately; CheckedAdd itself only fails on nil operands.
func (n Numeric) CheckedAdd(other Numeric) (Numeric, error) {
	if n.Value == nil || other.Value == nil {
		return Numeric{}, ErrTypeError
	}
	av, bv, scale := rescale(n, other)
	return Numeric{Value: av.Add(av, bv), Scale: scale}, nil
}

// CheckedSub subtracts other from n, failing with ErrNotEnoughQuantity if
// the result would be negative.
func (n Numeric) CheckedSub(other Numeric) (Numeric, error) {
	if n.Value == nil || other.Value == nil {
		return Numeric{}, ErrTypeError
	}
	av, bv, scale := rescale(n, other)
	result := new(big.Int).Sub(av, bv)
	if result.Sign() < 0 {
		return Numeric{}, ErrNotEnoughQuantity
	}
	return Numeric{Value: result, Scale: scale}, nil
}

// Cmp compares two numerics after rescaling to a common scale.
func (n Numeric) Cmp(other Numeric) int {
	av, bv, _ := rescale(n, other)
	return av.Cmp(bv)
}

// NumericKind tags whether a NumericSpec is integral or fractional.
type NumericKind int

const (
	NumericInteger NumericKind = iota
	NumericFractional
)

// NumericSpec constrains which Numeric values an AssetDefinition accepts.
type NumericSpec struct {
	Kind  NumericKind
	Scale uint8 // meaningful only when Kind == NumericFractional
}

// SpecInteger is the NumericSpec admitting only scale-0 values.
func SpecInteger() NumericSpec { return NumericSpec{Kind: NumericInteger} }

// SpecFractional is the NumericSpec admitting values up to the given scale.
func SpecFractional(scale uint8) NumericSpec {
	return NumericSpec{Kind: NumericFractional, Scale: scale}
}

// Check validates a candidate value against the spec: integer() rejects any
// scale > 0; fractional(s) rejects any scale > s.
func (s NumericSpec) Check(v Numeric) error {
	switch s.Kind {
	case NumericInteger:
		if v.Scale > 0 {
			return ErrTypeError
		}
	case NumericFractional:
		if v.Scale > s.Scale {
			return ErrTypeError
		}
	}
	return nil
}
