// Package ensemble implements the bit-level equivalence graph, LUT network,
// lowering target, optimizer, and event-driven evaluator described by this
// module: a high-level bit-operator DAG compiles down into single-bit LUT
// nodes wired by timed driver edges, and the evaluator propagates retroactive
// writes and answers output queries against that network.
package ensemble

import "fmt"

// Value is the four-state truth value carried by an equivalence class: it
// is either not yet known, permanently fixed at compile time (to a bit, or
// to unknown), or dynamically known from evaluation but still subject to
// change.
type Value struct {
	kind valueKind
	bit  bool
}

type valueKind uint8

const (
	valueUnknown valueKind = iota
	valueConst
	valueDynam
	valueConstUnknown
)

// Unknown is a value that has never been driven.
var Unknown = Value{kind: valueUnknown}

// ConstUnknown is a value permanently fixed to be unknown (a constant-folded
// input that will never resolve).
var ConstUnknown = Value{kind: valueConstUnknown}

// Const returns a compile-time-fixed value.
func Const(b bool) Value { return Value{kind: valueConst, bit: b} }

// Dynam returns an evaluation-time value that may still change.
func Dynam(b bool) Value { return Value{kind: valueDynam, bit: b} }

// IsConst reports whether v is permanently fixed (Const or ConstUnknown).
func (v Value) IsConst() bool { return v.kind == valueConst || v.kind == valueConstUnknown }

// IsUnknown reports whether v carries no known bit (Unknown or ConstUnknown).
func (v Value) IsUnknown() bool { return v.kind == valueUnknown || v.kind == valueConstUnknown }

// KnownValue returns the bit and true if v is Const or Dynam with a known
// bit; otherwise ok is false.
func (v Value) KnownValue() (bool, bool) {
	if v.kind == valueConst || v.kind == valueDynam {
		return v.bit, true
	}
	return false, false
}

func (v Value) String() string {
	switch v.kind {
	case valueUnknown:
		return "Unknown"
	case valueConstUnknown:
		return "ConstUnknown"
	case valueConst:
		return fmt.Sprintf("Const(%v)", v.bit)
	default:
		return fmt.Sprintf("Dynam(%v)", v.bit)
	}
}

// DynamicValue is the per-slot value of a DynamicLut table: each slot is
// either permanently unknown, a compile-time constant, or a dynamic bit
// sourced from another equivalence class (by PBack).
type DynamicValue struct {
	kind  dynKind
	bit   bool
	pback PBack
}

type dynKind uint8

const (
	dynConstUnknown dynKind = iota
	dynConst
	dynDynam
)

// DynConstUnknown returns a permanently-unknown dynamic table slot.
func DynConstUnknown() DynamicValue { return DynamicValue{kind: dynConstUnknown} }

// DynConst returns a compile-time-constant dynamic table slot.
func DynConst(b bool) DynamicValue { return DynamicValue{kind: dynConst, bit: b} }

// DynDynam returns a table slot sourced from another equivalence class.
func DynDynam(p PBack) DynamicValue { return DynamicValue{kind: dynDynam, pback: p} }

// IsDynam reports whether d sources from another equivalence class, and
// returns that class's PBack.
func (d DynamicValue) IsDynam() (PBack, bool) {
	if d.kind == dynDynam {
		return d.pback, true
	}
	return PBack{}, false
}

// ConstValue returns d's constant bit if it has one.
func (d DynamicValue) ConstValue() (bool, bool) {
	if d.kind == dynConst {
		return d.bit, true
	}
	return false, false
}
