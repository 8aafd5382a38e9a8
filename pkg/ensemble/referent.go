package ensemble

import "github.com/latticeforge/ensemble/pkg/arena"

// PBack is a back-reference key into the equivalence graph: it names one key
// in the surjective arena that maps many keys onto one Equiv value cell.
type PBack = arena.Ptr

// PLNode, PTNode, PRNode, PState name entries in their respective arenas.
// They are kept as distinct named types (rather than aliases of arena.Ptr)
// so a caller cannot accidentally pass an LNode pointer where a TNode
// pointer is expected.
type (
	PLNode arena.Ptr
	PTNode arena.Ptr
	PRNode arena.Ptr
	PState arena.Ptr
)

// ReferentKind tags which of the mutually exclusive payloads a Referent
// carries.
type ReferentKind uint8

const (
	// ThisEquiv is the class's own canonical self-pointing key.
	ThisEquiv ReferentKind = iota
	// ThisLNode names the LNode whose output this class represents.
	ThisLNode
	// ThisTNode names the TNode whose output this class represents (a
	// looped-back driven value).
	ThisTNode
	// ThisRNode names an external handle bit rooted at this class.
	ThisRNode
	// ThisStateBit names one bit of a not-yet-lowered operator State.
	ThisStateBit
	// Input names an LNode that reads this class as one of its inputs.
	Input
	// Driver names a TNode that reads this class as its driving input.
	Driver
)

// Referent is the tagged union stored as the key payload for every PBack.
// Exactly one of the typed accessors is meaningful, selected by Kind.
type Referent struct {
	Kind ReferentKind

	lnode  PLNode
	tnode  PTNode
	rnode  PRNode
	pstate PState
	bitIdx int
}

// NewThisEquiv builds the canonical self-referent for a freshly created
// equivalence class.
func NewThisEquiv() Referent { return Referent{Kind: ThisEquiv} }

// NewThisLNode builds a Referent naming the LNode whose output is this
// class.
func NewThisLNode(p PLNode) Referent { return Referent{Kind: ThisLNode, lnode: p} }

// NewThisTNode builds a Referent naming the TNode whose output is this
// class.
func NewThisTNode(p PTNode) Referent { return Referent{Kind: ThisTNode, tnode: p} }

// NewThisRNode builds a Referent naming an external handle rooted here.
func NewThisRNode(p PRNode) Referent { return Referent{Kind: ThisRNode, rnode: p} }

// NewThisStateBit builds a Referent naming one bit of an un-lowered State.
func NewThisStateBit(p PState, bitIdx int) Referent {
	return Referent{Kind: ThisStateBit, pstate: p, bitIdx: bitIdx}
}

// NewInput builds a Referent naming an LNode that reads this class.
func NewInput(p PLNode) Referent { return Referent{Kind: Input, lnode: p} }

// NewDriver builds a Referent naming a TNode that reads this class as its
// driving input.
func NewDriver(p PTNode) Referent { return Referent{Kind: Driver, tnode: p} }

// LNode returns the referenced LNode pointer and whether Kind supports it
// (ThisLNode or Input).
func (r Referent) LNode() (PLNode, bool) {
	if r.Kind == ThisLNode || r.Kind == Input {
		return r.lnode, true
	}
	return PLNode{}, false
}

// TNode returns the referenced TNode pointer and whether Kind supports it
// (ThisTNode or Driver).
func (r Referent) TNode() (PTNode, bool) {
	if r.Kind == ThisTNode || r.Kind == Driver {
		return r.tnode, true
	}
	return PTNode{}, false
}

// RNode returns the referenced RNode pointer, valid when Kind == ThisRNode.
func (r Referent) RNode() (PRNode, bool) {
	if r.Kind == ThisRNode {
		return r.rnode, true
	}
	return PRNode{}, false
}

// StateBit returns the referenced state and bit index, valid when
// Kind == ThisStateBit.
func (r Referent) StateBit() (PState, int, bool) {
	if r.Kind == ThisStateBit {
		return r.pstate, r.bitIdx, true
	}
	return PState{}, 0, false
}

// Equiv is the value cell of the back-ref surjective arena: one per
// equivalence class, holding the class's current Value and the visit
// generation counters the evaluator uses to avoid re-scanning classes that
// have already been handled in the current pass.
type Equiv struct {
	// PSelfEquiv is this class's own canonical self-referencing PBack (the
	// key whose Referent is ThisEquiv), used to re-derive a PBack for the
	// class itself from its value-cell pointer.
	PSelfEquiv PBack

	Val Value

	// ChangeVisit and RequestVisit are per-phase visit tags; the evaluator
	// currently neither reads nor writes them and uses EvalVisit alone.
	ChangeVisit  uint64
	RequestVisit uint64

	// EvalVisit marks this class as present in the current change_front or
	// request_front without needing a separate set.
	EvalVisit uint64
}
