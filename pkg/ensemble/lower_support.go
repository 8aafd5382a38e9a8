package ensemble

// This file exposes the narrow surface the pkg/lower two-stage DFS needs
// against an Ensemble's not-yet-lowered operator DAG, without opening up the
// full internal Stator/backrefs representation.

// StateOp returns the operator currently stored at p.
func (e *Ensemble) StateOp(p PState) (Op[PState], bool) {
	st, ok := e.stator.get(p)
	if !ok {
		return Op[PState]{}, false
	}
	return st.Op, true
}

// StateNzbw returns the bitwidth of the state at p.
func (e *Ensemble) StateNzbw(p PState) (int, bool) {
	st, ok := e.stator.get(p)
	if !ok {
		return 0, false
	}
	return st.Nzbw, true
}

// SetStateOp replaces the operator at p with newOp, adjusting operand
// reference counts for the operands that were added or dropped.
func (e *Ensemble) SetStateOp(p PState, newOp Op[PState]) error {
	st, ok := e.stator.get(p)
	if !ok {
		return ErrInvalidPtr()
	}
	old := st.Op.Operands
	st.Op = newOp
	for _, operand := range newOp.Operands {
		if ost, ok := e.stator.get(operand); ok {
			ost.Rc++
		}
	}
	for _, operand := range old {
		if err := e.StateDecRc(operand); err != nil {
			return err
		}
	}
	return nil
}

// SelfBit ensures p's bits are rooted into the equivalence graph and returns
// the PBack for bit i (nil if that bit was pruned).
func (e *Ensemble) SelfBit(p PState, i int) (*PBack, error) {
	if err := e.initializeStateBitsIfNeeded(p); err != nil {
		return nil, err
	}
	st, _ := e.stator.get(p)
	if i < 0 || i >= len(st.PSelfBits) {
		return nil, ErrOtherStr("bit index out of range")
	}
	return st.PSelfBits[i], nil
}

// BindBit unions the equivalence class backing output bit i of p with the
// value-defining class val (typically the output of a freshly lowered LNode
// or TNode), completing the elementary-to-LNode correspondence for that bit.
func (e *Ensemble) BindBit(p PState, i int, val PBack) error {
	self, err := e.SelfBit(p, i)
	if err != nil {
		return err
	}
	if self == nil {
		return nil
	}
	return unionEquiv(e.backrefs, *self, val)
}

// Elementary reports whether tag is in the elementary operator set that
// stage-2 lowering consumes directly.
func (t OpTag) Elementary() bool { return t.elementary() }

// Propagate forces pBack's current value through every LNode/TNode that
// reads it, then drains to quiescence. Unlike ChangeValue it fires even if
// the value did not just change, which is needed right after wiring a new
// TNode onto a driver that already has a settled value -- without this,
// the new edge would sit dormant until its driver happens to change again.
func (e *Ensemble) Propagate(pBack PBack) error {
	if err := e.propagateFrom(pBack); err != nil {
		return err
	}
	return e.drainChangeFront()
}
