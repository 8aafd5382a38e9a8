package ensemble

import "github.com/latticeforge/ensemble/pkg/bit"

// LNodeKindTag discriminates the three shapes an LNode's logic can take.
type LNodeKindTag uint8

const (
	// KindCopy forwards one input unchanged; used by the optimizer to
	// short-circuit trivial one-input LUTs without reallocating a table.
	KindCopy LNodeKindTag = iota
	// KindLut is a fixed lookup table over a fixed set of single-bit
	// inputs.
	KindLut
	// KindDynamicLut is a lookup table whose slots can themselves be
	// dynamic bits (used by Mux/Funnel/Get/Set-family grafts), not just
	// fixed 0/1 constants.
	KindDynamicLut
)

// LNode is one node of the lowered LUT network: its value equivalence class
// (PSelf) is computed from Inputs by either copying, looking up a static
// Table, or looking up a DynamicLut whose slots may source from other
// equivalence classes.
type LNode struct {
	PSelf PBack
	Kind  LNodeKindTag

	// CopySrc is the single input read when Kind == KindCopy.
	CopySrc PBack

	// Inputs are the ordered single-bit inputs read when Kind == KindLut or
	// KindDynamicLut. len(Inputs) == Table.N() for KindLut.
	Inputs []PBack
	Table  *bit.Table

	// DynTable holds len(Inputs) == log2 slots-worth of DynamicValue when
	// Kind == KindDynamicLut; its length must be a power of two.
	DynTable []DynamicValue

	// LoweredFrom records the originating operator State this LNode was
	// produced from, for debug rendering; zero value means synthesized by
	// the optimizer rather than by lowering.
	LoweredFrom PState
}

// NumInputs returns how many single-bit inputs feed this node (1 for Copy,
// which reads its one input via CopySrc).
func (n *LNode) NumInputs() int {
	switch n.Kind {
	case KindCopy:
		return 1
	case KindLut:
		return len(n.Inputs)
	default:
		return len(n.Inputs)
	}
}
