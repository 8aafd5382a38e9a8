package ensemble

import "github.com/latticeforge/ensemble/pkg/bit"

// OpTag names one operator in the high-level bit-operator DAG. The set below
// covers the elementary operators the lowering pipeline must reduce
// everything else to (Copy/StaticLut/ConcatFields/Repeat/Opaque/Literal/
// Assert), plus the composite arithmetic/logical/structural operators that
// the front end emits and that graft recipes reduce to those elementary
// forms.
type OpTag uint8

const (
	// elementary forms -- lowering's stage-2 DFS knows how to turn these
	// directly into LNodes/TNodes.
	OpLiteral OpTag = iota
	OpOpaque
	OpArgument
	OpCopy
	OpAssert
	OpStaticGet
	OpStaticLut
	OpConcatFields
	OpRepeat
	// OpDynamicLut is the runtime-selected counterpart to OpStaticLut: its
	// first StaticIdx operands are the selector bits and the remaining
	// 1<<StaticIdx operands are the table's per-slot sources, each
	// contributing its bit 0. It is the elementary form every graft recipe
	// that needs a real runtime mux (Mux, Funnel/shifts, dynamic Get/Set,
	// Resize's signed/unsigned extension choice) lowers to, mirroring the
	// original's DynamicLut LNode kind one level up in the operator DAG.
	OpDynamicLut

	// composite forms -- graft recipes lower these to the elementary set.
	OpStaticSet
	OpLut
	OpGet
	OpSet
	OpResize
	OpZeroResize
	OpSignResize
	OpConcat
	OpFieldBit
	OpFieldWidth
	OpField
	OpNot
	OpOr
	OpAnd
	OpXor
	OpInc
	OpDec
	OpNeg
	OpAbs
	OpAdd
	OpSub
	OpRsb
	OpCinSum
	OpMul
	OpArbMulAdd
	OpShl
	OpLshr
	OpAshr
	OpRotl
	OpRotr
	OpEq
	OpNe
	OpUlt
	OpUle
	OpIlt
	OpIle
	OpIsZero
	OpIsUmax
	OpIsImax
	OpIsImin
	OpIsUone
	OpCountOnes
	OpLz
	OpTz
	OpSig
	OpLsb
	OpMsb
	OpFunnel
	OpMux
	OpUQuo
	OpURem
	OpIQuo
	OpIRem
)

// elementary reports whether tag names one of the forms lowering's stage-2
// DFS consumes directly, i.e. it needs no graft.
func (t OpTag) elementary() bool {
	switch t {
	case OpLiteral, OpOpaque, OpArgument, OpCopy, OpAssert, OpStaticGet, OpStaticLut, OpConcatFields, OpRepeat, OpDynamicLut:
		return true
	default:
		return false
	}
}

// Op is one node of the high-level operator DAG, generic over how operands
// are referenced: PState while the DAG is being built and lowered, or a
// graft-internal placeholder type while a recipe is under construction.
type Op[T any] struct {
	Tag      OpTag
	Operands []T

	// Lit holds the constant table for OpLiteral and the static table for
	// OpStaticLut.
	Lit *bit.Table

	// StaticIdx/StaticIdx2 hold the operator's compile-time integer
	// parameters: e.g. StaticGet's bit index, Repeat's repeat count,
	// Resize's target width, Field{Bit,Width}'s shift amounts.
	StaticIdx  int
	StaticIdx2 int

	// Name carries Opaque's debug tag (e.g. "LoopSource", "LazyOpaque");
	// meaningless for other tags.
	Name string
}

// IsOpaque reports whether this Op is an Opaque placeholder, optionally
// driven by exactly one operand (the looped-back source).
func (o Op[T]) IsOpaque() bool { return o.Tag == OpOpaque }

// IsLiteral reports whether this Op is a compile-time constant.
func (o Op[T]) IsLiteral() bool { return o.Tag == OpLiteral }
