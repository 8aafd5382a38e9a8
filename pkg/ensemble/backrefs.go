package ensemble

import "github.com/latticeforge/ensemble/pkg/arena"

// backrefs is the equivalence graph: a surjective arena from PBack keys
// (carrying a Referent) onto Equiv value cells. Many keys -- one per LNode
// input, TNode driver, state bit, or RNode bit that touches a given
// equivalence class -- all resolve to the same Equiv.
type backrefs = arena.Surject[Referent, Equiv]

func newBackrefs() *backrefs { return arena.NewSurject[Referent, Equiv]() }

// insertEquiv creates a brand new equivalence class with value val and
// returns the PBack of its own canonical ThisEquiv key.
func insertEquiv(b *backrefs, val Value) PBack {
	vp := b.InsertVal(Equiv{Val: val})
	self, _ := b.InsertKey(vp, func(PBack) Referent { return NewThisEquiv() })
	v, _ := b.GetValPtr(vp)
	v.PSelfEquiv = self
	return self
}

// insertKeyInto adds a new Referent key into the equivalence class that
// pBack already belongs to, returning the new key's PBack.
func insertKeyInto(b *backrefs, pBack PBack, r Referent) (PBack, bool) {
	vp, ok := b.ValOfKey(pBack)
	if !ok {
		return PBack{}, false
	}
	return b.InsertKey(vp, func(PBack) Referent { return r })
}

// getEquiv returns the Equiv value cell for the class containing pBack.
func getEquiv(b *backrefs, pBack PBack) (Equiv, bool) { return b.Get(pBack) }

// getEquivPtr returns a mutable pointer to the Equiv for the class
// containing pBack.
func getEquivPtr(b *backrefs, pBack PBack) (*Equiv, bool) {
	vp, ok := b.ValOfKey(pBack)
	if !ok {
		return nil, false
	}
	return b.GetValPtr(vp)
}

// unionEquiv merges the classes containing a and b. Dynam/Const conflicts
// are resolved per spec: two different Consts is an engine-invariant
// violation (the caller is responsible for never constructing one), and an
// Unknown side always adopts the other side's value. The class whose
// ThisEquiv is kept is re-derived from the surviving value cell afterward.
func unionEquiv(b *backrefs, a, c PBack) error {
	if b.InSameClass(a, c) {
		return nil
	}
	var mergeErr error
	b.Union(a, c, func(ea, ec Equiv) Equiv {
		merged, err := mergeValues(ea.Val, ec.Val)
		if err != nil {
			mergeErr = err
		}
		out := ea
		out.Val = merged
		return out
	})
	if mergeErr != nil {
		return mergeErr
	}
	return nil
}

func mergeValues(a, b Value) (Value, error) {
	switch {
	case a.IsUnknown() && !a.IsConst():
		return b, nil
	case b.IsUnknown() && !b.IsConst():
		return a, nil
	case a.kind == valueConst && b.kind == valueConst:
		ab, _ := a.KnownValue()
		bb, _ := b.KnownValue()
		if ab != bb {
			return Value{}, ErrOtherStr("conflicting Const values merged into one equivalence class")
		}
		return a, nil
	case a.kind == valueConst:
		return a, nil
	case b.kind == valueConst:
		return b, nil
	case a.kind == valueDynam && b.kind == valueDynam:
		ab, _ := a.KnownValue()
		bb, _ := b.KnownValue()
		if ab != bb {
			return Value{}, ErrOtherStr("conflicting Dynam values merged into one equivalence class")
		}
		return a, nil
	default:
		return a, nil
	}
}
