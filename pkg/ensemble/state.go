package ensemble

import "github.com/latticeforge/ensemble/pkg/arena"

// State is one node of the not-yet-lowered operator DAG: Op names the
// operator and its PState operands, Nzbw its bitwidth, Rc the number of
// other States that reference it as an operand, and ExternRc the number of
// external handles (RNodes) keeping it alive regardless of Rc.
type State struct {
	Nzbw int
	Op   Op[PState]

	// PSelfBits is populated once the state's individual output bits have
	// been rooted into the equivalence graph (lazily, by
	// initializeStateBitsIfNeeded); a nil entry means that bit was pruned.
	PSelfBits []*PBack

	Rc       uint64
	ExternRc uint64

	// Keep forces survival even at Rc == ExternRc == 0, used for explicitly
	// noted evaluation roots.
	Keep bool

	LoweredToElementary bool
	LoweredToTNodes     bool

	Err error
}

// Stator owns every not-yet-fully-lowered State.
type Stator struct {
	states        *arena.Arena[State]
	statesToLower []PState
}

func newStator() *Stator {
	return &Stator{states: arena.New[State]()}
}

func (s *Stator) get(p PState) (*State, bool) { return s.states.GetPtr(arena.Ptr(p)) }

func (s *Stator) contains(p PState) bool { return s.states.Contains(arena.Ptr(p)) }

// MakeState inserts a new State for op (incrementing the Rc of every
// operand it references) and returns its PState.
func (e *Ensemble) MakeState(nzbw int, op Op[PState]) PState {
	p := PState(e.stator.states.Insert(State{Nzbw: nzbw, Op: op}))
	for _, operand := range op.Operands {
		st, _ := e.stator.get(operand)
		st.Rc++
	}
	return p
}

// StateIncRc increments the reference count of the state at p.
func (e *Ensemble) StateIncRc(p PState) error {
	st, ok := e.stator.get(p)
	if !ok {
		return ErrInvalidPtr()
	}
	st.Rc++
	return nil
}

// StateDecRc decrements the reference count of the state at p, removing the
// state (and cascading into now-unreferenced operands) if both Rc and
// ExternRc reach zero and Keep is false.
func (e *Ensemble) StateDecRc(p PState) error {
	st, ok := e.stator.get(p)
	if !ok {
		return ErrInvalidPtr()
	}
	if st.Rc == 0 {
		return ErrOtherStr("state_dec_rc: reference count already zero")
	}
	st.Rc--
	if st.Rc == 0 && st.ExternRc == 0 && !st.Keep {
		e.removeState(p)
	}
	return nil
}

// StateIncExternRc marks p as kept alive by an external handle.
func (e *Ensemble) StateIncExternRc(p PState) error {
	st, ok := e.stator.get(p)
	if !ok {
		return ErrInvalidPtr()
	}
	st.ExternRc++
	return nil
}

// StateDecExternRc releases one external hold on p, possibly removing it.
func (e *Ensemble) StateDecExternRc(p PState) error {
	st, ok := e.stator.get(p)
	if !ok {
		return ErrInvalidPtr()
	}
	if st.ExternRc == 0 {
		return ErrOtherStr("state_dec_extern_rc: extern reference count already zero")
	}
	st.ExternRc--
	if st.Rc == 0 && st.ExternRc == 0 && !st.Keep {
		e.removeState(p)
	}
	return nil
}

// removeState deletes p and cascades: each operand's Rc is decremented in
// turn, which may make the operand itself collectible, so this walks a
// worklist stack instead of recursing (the operator DAG can be arbitrarily
// deep).
func (e *Ensemble) removeState(p PState) {
	stack := []PState{p}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		st, ok := e.stator.get(cur)
		if !ok {
			continue
		}
		if st.Rc != 0 || st.ExternRc != 0 || st.Keep {
			continue
		}
		operands := append([]PState(nil), st.Op.Operands...)
		for _, b := range st.PSelfBits {
			if b != nil {
				e.backrefs.RemoveKey(*b)
			}
		}
		e.stator.states.Remove(arena.Ptr(cur))
		for _, operand := range operands {
			if ost, ok := e.stator.get(operand); ok {
				if ost.Rc == 0 {
					continue
				}
				ost.Rc--
				if ost.Rc == 0 && ost.ExternRc == 0 && !ost.Keep {
					stack = append(stack, operand)
				}
			}
		}
	}
}

// ForceRemoveAllStates drops every state regardless of reference counts,
// used when tearing down an Ensemble or restarting optimize_all.
func (e *Ensemble) ForceRemoveAllStates() {
	for _, p := range e.stator.states.Ptrs() {
		e.stator.states.Remove(p)
	}
}

// initializeStateBitsIfNeeded ensures every bit of p's output has a rooted
// equivalence class, creating fresh Unknown classes the first time a state
// is touched by the evaluator or by RNode initialization.
func (e *Ensemble) initializeStateBitsIfNeeded(p PState) error {
	st, ok := e.stator.get(p)
	if !ok {
		return ErrInvalidPtr()
	}
	if st.PSelfBits != nil {
		return nil
	}
	bits := make([]*PBack, st.Nzbw)
	for i := range bits {
		self := insertEquiv(e.backrefs, Unknown)
		bitKey, _ := insertKeyInto(e.backrefs, self, NewThisStateBit(p, i))
		bits[i] = &bitKey
	}
	st.PSelfBits = bits
	return nil
}
