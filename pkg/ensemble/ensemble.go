package ensemble

import (
	"fmt"

	"github.com/latticeforge/ensemble/pkg/arena"
)

// Ensemble is the top-level container owning every arena of the compiled
// network: the equivalence graph (backrefs), the LUT nodes and timed driver
// edges lowered onto it, the not-yet-lowered operator DAG (stator), the
// external-handle notary, and the evaluator/optimizer that operate over all
// of it.
type Ensemble struct {
	backrefs *backrefs
	lnodes   *arena.Arena[LNode]
	tnodes   *arena.Arena[TNode]

	notary *Notary
	stator *Stator

	evaluator *Evaluator
	optimizer *Optimizer
}

// New returns an empty Ensemble.
func New() *Ensemble {
	return &Ensemble{
		backrefs:  newBackrefs(),
		lnodes:    arena.New[LNode](),
		tnodes:    arena.New[TNode](),
		notary:    newNotary(),
		stator:    newStator(),
		evaluator: newEvaluator(),
		optimizer: newOptimizer(),
	}
}

// Notary exposes the external-handle registry, used by the handle package
// to create and resolve LazyAwi/EvalAwi/Loop/Net bits.
func (e *Ensemble) Notary() *Notary { return e.notary }

// MakeLiteral creates a new permanently-const equivalence class.
func (e *Ensemble) MakeLiteral(v bool) PBack {
	return insertEquiv(e.backrefs, Const(v))
}

// MakeOpaque creates a new Unknown equivalence class with no defining LNode,
// suitable as a loop or retroactive-write root.
func (e *Ensemble) MakeOpaque() PBack {
	return insertEquiv(e.backrefs, Unknown)
}

// MakeRNodeForState registers a new external handle rooted at p_state (a
// not-yet-lowered operator State), returning its PExternal.
func (e *Ensemble) MakeRNodeForState(p PState, readOnly, lowerBeforePruning bool) (PExternal, error) {
	st, ok := e.stator.get(p)
	if !ok {
		return PExternal{}, ErrInvalidPtr()
	}
	st.ExternRc++
	_, ext := e.notary.InsertRNode(RNode{
		ReadOnly:           readOnly,
		ExternRc:           1,
		AssociatedState:    p,
		HasState:           true,
		LowerBeforePruning: lowerBeforePruning,
	})
	return ext, nil
}

// InitializeRNodeIfNeeded lazily roots an RNode's bits into the equivalence
// graph from its associated State's p_self_bits, running state-bit
// initialization first if needed. Returns whether anything was initialized.
func (e *Ensemble) InitializeRNodeIfNeeded(p PRNode) (bool, error) {
	rn, ok := e.notary.Get(p)
	if !ok {
		return false, ErrInvalidPtr()
	}
	if len(rn.Bits) != 0 {
		return false, nil
	}
	if !rn.HasState {
		return false, nil
	}
	if err := e.initializeStateBitsIfNeeded(rn.AssociatedState); err != nil {
		return false, err
	}
	st, _ := e.stator.get(rn.AssociatedState)
	bits := make([]*PBack, len(st.PSelfBits))
	for i, b := range st.PSelfBits {
		if b == nil {
			continue
		}
		newKey, _ := insertKeyInto(e.backrefs, *b, NewThisRNode(p))
		bits[i] = &newKey
	}
	rn.Bits = bits
	return true, nil
}

// RemoveRNode unconditionally deletes the RNode at p, releasing its hold on
// its associated State (if any) and every bit key it rooted.
func (e *Ensemble) RemoveRNode(p PRNode) error {
	rn, ok := e.notary.Remove(p)
	if !ok {
		return ErrInvalidPtr()
	}
	if rn.HasState {
		if err := e.StateDecExternRc(rn.AssociatedState); err != nil {
			return err
		}
	}
	for _, b := range rn.Bits {
		if b != nil {
			e.backrefs.RemoveKey(*b)
		}
	}
	return nil
}

// VerifyIntegrity walks every back-ref, LNode, TNode, RNode and State
// cross-reference and returns the first inconsistency found. It is intended
// for tests and is never called on the evaluator/optimizer hot path.
func (e *Ensemble) VerifyIntegrity() error {
	for _, kp := range e.backrefs.KeyPtrs() {
		r, ok := e.backrefs.Key(kp)
		if !ok {
			return ErrOtherf("dangling backref key %v", kp)
		}
		switch r.Kind {
		case ThisEquiv:
			eq, ok := e.backrefs.Get(kp)
			if !ok {
				return ErrOtherf("ThisEquiv key %v resolves to no value cell", kp)
			}
			if eq.PSelfEquiv != kp {
				return ErrOtherf("equiv self-pointer mismatch at %v: stored %v", kp, eq.PSelfEquiv)
			}
		case ThisLNode:
			pl, _ := r.LNode()
			n, ok := e.lnodes.Get(arena.Ptr(pl))
			if !ok {
				return ErrOtherf("ThisLNode key %v names a missing LNode", kp)
			}
			if n.PSelf != kp {
				return ErrOtherf("LNode %v p_self round trip mismatch", pl)
			}
			if n.Kind == KindLut && n.Table.N() != len(n.Inputs) {
				return ErrOtherf("LNode %v LUT width %d does not match input count %d", pl, n.Table.N(), len(n.Inputs))
			}
			if n.Kind == KindDynamicLut && (1<<uint(len(n.Inputs))) != len(n.DynTable) {
				return ErrOtherf("LNode %v dynamic LUT size %d does not match input count %d", pl, len(n.DynTable), len(n.Inputs))
			}
		case ThisTNode:
			pt, _ := r.TNode()
			n, ok := e.tnodes.Get(arena.Ptr(pt))
			if !ok {
				return ErrOtherf("ThisTNode key %v names a missing TNode", kp)
			}
			if n.PSelf != kp {
				return ErrOtherf("TNode %v p_self round trip mismatch", pt)
			}
		case ThisRNode:
			pr, _ := r.RNode()
			if _, ok := e.notary.Get(pr); !ok {
				return ErrOtherf("ThisRNode key %v names a missing RNode", kp)
			}
		case ThisStateBit:
			ps, bitIdx, _ := r.StateBit()
			st, ok := e.stator.get(ps)
			if !ok {
				return ErrOtherf("ThisStateBit key %v names a missing State", kp)
			}
			if bitIdx < 0 || bitIdx >= len(st.PSelfBits) {
				return ErrOtherf("ThisStateBit key %v bit index %d out of range", kp, bitIdx)
			}
		case Input:
			pl, _ := r.LNode()
			if _, ok := e.lnodes.Get(arena.Ptr(pl)); !ok {
				return ErrOtherf("Input key %v names a missing LNode", kp)
			}
		case Driver:
			pt, _ := r.TNode()
			if _, ok := e.tnodes.Get(arena.Ptr(pt)); !ok {
				return ErrOtherf("Driver key %v names a missing TNode", kp)
			}
		}
	}
	for _, pState := range e.stator.states.Ptrs() {
		st, _ := e.stator.get(PState(pState))
		var actualRc uint64
		for _, other := range e.stator.states.Ptrs() {
			os, _ := e.stator.get(PState(other))
			for _, operand := range os.Op.Operands {
				if PState(pState) == operand {
					actualRc++
				}
			}
		}
		if st.Rc != actualRc {
			return ErrOtherf("state %v rc bookkeeping mismatch: stored %d, actual %d", pState, st.Rc, actualRc)
		}
	}
	return nil
}

// DotString renders the current LNode/TNode network as Graphviz DOT, for
// debug and test inspection only -- no layout, no reader, just a textual
// dump in a format common tooling can render.
func (e *Ensemble) DotString() string {
	s := "digraph ensemble {\n"
	for _, p := range e.lnodes.Ptrs() {
		n, _ := e.lnodes.Get(p)
		switch n.Kind {
		case KindCopy:
			s += fmt.Sprintf("  %v -> %v [label=copy];\n", n.CopySrc, n.PSelf)
		case KindLut:
			for _, in := range n.Inputs {
				s += fmt.Sprintf("  %v -> %v [label=lut];\n", in, n.PSelf)
			}
		case KindDynamicLut:
			for _, in := range n.Inputs {
				s += fmt.Sprintf("  %v -> %v [label=dlut];\n", in, n.PSelf)
			}
		}
	}
	for _, p := range e.tnodes.Ptrs() {
		n, _ := e.tnodes.Get(p)
		s += fmt.Sprintf("  %v -> %v [label=\"tnode(%d)\"];\n", n.Driver, n.Source, n.Delay)
	}
	s += "}\n"
	return s
}
