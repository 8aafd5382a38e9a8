package ensemble

import (
	"github.com/latticeforge/ensemble/pkg/arena"
	"github.com/latticeforge/ensemble/pkg/bit"
)

// MakeCopy creates a new equivalence class whose value is defined to track
// src's, via a Copy LNode.
func (e *Ensemble) MakeCopy(src PBack) PBack {
	self := insertEquiv(e.backrefs, Unknown)
	pl := PLNode(e.lnodes.Insert(LNode{Kind: KindCopy, CopySrc: src}))
	ln, _ := e.lnodes.GetPtr(arena.Ptr(pl))
	ln.PSelf, _ = insertKeyInto(e.backrefs, self, NewThisLNode(pl))
	insertKeyInto(e.backrefs, src, NewInput(pl))
	return self
}

// MakeLut creates a new equivalence class whose value is the lookup of
// table against inputs, which must number table.N(). Returns an error
// (ConstBitwidthMismatch) if the table length does not match 2^len(inputs).
func (e *Ensemble) MakeLut(inputs []PBack, table *bit.Table) (PBack, error) {
	if table.N() != len(inputs) {
		return PBack{}, ErrConstBitwidthMismatch()
	}
	self := insertEquiv(e.backrefs, Unknown)
	pl := PLNode(e.lnodes.Insert(LNode{Kind: KindLut, Inputs: append([]PBack(nil), inputs...), Table: table}))
	ln, _ := e.lnodes.GetPtr(arena.Ptr(pl))
	ln.PSelf, _ = insertKeyInto(e.backrefs, self, NewThisLNode(pl))
	for _, in := range inputs {
		insertKeyInto(e.backrefs, in, NewInput(pl))
	}
	return self, nil
}

// MakeDynamicLut creates a new equivalence class defined by a table whose
// slots can themselves be dynamic values, addressed by inputs.
func (e *Ensemble) MakeDynamicLut(inputs []PBack, table []DynamicValue) (PBack, error) {
	if 1<<uint(len(inputs)) != len(table) {
		return PBack{}, ErrConstBitwidthMismatch()
	}
	self := insertEquiv(e.backrefs, Unknown)
	pl := PLNode(e.lnodes.Insert(LNode{Kind: KindDynamicLut, Inputs: append([]PBack(nil), inputs...), DynTable: append([]DynamicValue(nil), table...)}))
	ln, _ := e.lnodes.GetPtr(arena.Ptr(pl))
	ln.PSelf, _ = insertKeyInto(e.backrefs, self, NewThisLNode(pl))
	for _, in := range inputs {
		insertKeyInto(e.backrefs, in, NewInput(pl))
	}
	for _, slot := range table {
		if src, ok := slot.IsDynam(); ok {
			insertKeyInto(e.backrefs, src, NewInput(pl))
		}
	}
	return self, nil
}

// MakeTNode creates a timed driver edge from driver to source with the given
// delay, returning the TNode's own PBack.
func (e *Ensemble) MakeTNode(source, driver PBack, delay Delay) PBack {
	self := insertEquiv(e.backrefs, Unknown)
	pt := PTNode(e.tnodes.Insert(TNode{Source: source, Driver: driver, Delay: delay}))
	tn, _ := e.tnodes.GetPtr(arena.Ptr(pt))
	tn.PSelf, _ = insertKeyInto(e.backrefs, self, NewThisTNode(pt))
	insertKeyInto(e.backrefs, driver, NewDriver(pt))
	return self
}

func (e *Ensemble) removeLNode(p PLNode) {
	n, ok := e.lnodes.Get(arena.Ptr(p))
	if !ok {
		return
	}
	e.backrefs.RemoveKey(n.PSelf)
	switch n.Kind {
	case KindCopy:
		e.backrefs.RemoveKey(findInputKey(e.backrefs, n.CopySrc, p))
	case KindLut:
		for _, in := range n.Inputs {
			e.backrefs.RemoveKey(findInputKey(e.backrefs, in, p))
		}
	case KindDynamicLut:
		for _, in := range n.Inputs {
			e.backrefs.RemoveKey(findInputKey(e.backrefs, in, p))
		}
		for _, slot := range n.DynTable {
			if src, ok := slot.IsDynam(); ok {
				e.backrefs.RemoveKey(findInputKey(e.backrefs, src, p))
			}
		}
	}
	e.lnodes.Remove(arena.Ptr(p))
}

// findInputKey locates the specific Input(p) key within src's equivalence
// class. Each LNode input is its own distinct key (not the class's
// ThisEquiv key), so removing an LNode must remove exactly those keys
// rather than the class's canonical self-key.
func findInputKey(b *backrefs, src PBack, p PLNode) PBack {
	vp, _ := b.ValOfKey(src)
	var found PBack
	b.KeysOfVal(vp, func(kp PBack) {
		r, _ := b.Key(kp)
		if r.Kind == Input {
			if ln, _ := r.LNode(); ln == p {
				found = kp
			}
		}
	})
	return found
}

// constEvalLNode attempts to fold the LNode defining equivalence class p's
// value, given what is currently known about its inputs: an all-constant
// Lut collapses to a single Const; a Lut independent of one input loses
// that column; a duplicate input column collapses two columns into one via
// rotate+reduce; a Copy forwards its source's value directly.
func (e *Ensemble) constEvalLNode(p PLNode) error {
	n, ok := e.lnodes.GetPtr(arena.Ptr(p))
	if !ok {
		return nil
	}
	switch n.Kind {
	case KindCopy:
		eq, ok := getEquiv(e.backrefs, n.CopySrc)
		if ok && eq.Val.IsConst() {
			return e.setConst(n.PSelf, eq.Val)
		}
	case KindLut:
		return e.constEvalLut(p, n)
	case KindDynamicLut:
		return e.constEvalDynamicLut(p, n)
	}
	return nil
}

func (e *Ensemble) setConst(self PBack, v Value) error {
	eqp, ok := getEquivPtr(e.backrefs, self)
	if !ok {
		return ErrInvalidPtr()
	}
	eqp.Val = v
	e.optimizer.push(optItem{Kind: OptConstifyEquiv, Equiv: self})
	return nil
}

func (e *Ensemble) constEvalLut(p PLNode, n *LNode) error {
	for i := 0; i < len(n.Inputs); i++ {
		eq, ok := getEquiv(e.backrefs, n.Inputs[i])
		if !ok {
			continue
		}
		if bitVal, isConst := eq.Val.KnownValue(); isConst && eq.Val.kind == valueConst {
			reduced := bit.ReduceLut(n.Table, i, bitVal)
			e.backrefs.RemoveKey(findInputKey(e.backrefs, n.Inputs[i], p))
			n.Inputs = append(append([]PBack(nil), n.Inputs[:i]...), n.Inputs[i+1:]...)
			n.Table = reduced
			e.optimizer.foldCount++
			if len(n.Inputs) == 0 {
				v, _ := n.Table.ToUint64()
				return e.setConst(n.PSelf, Const(v&1 != 0))
			}
			return e.constEvalLut(p, n)
		}
	}
	for i := 0; i < len(n.Inputs); i++ {
		if reduced, indep := bit.ReduceIndependentLut(n.Table, i); indep {
			e.backrefs.RemoveKey(findInputKey(e.backrefs, n.Inputs[i], p))
			n.Inputs = append(append([]PBack(nil), n.Inputs[:i]...), n.Inputs[i+1:]...)
			n.Table = reduced
			e.optimizer.foldCount++
			if len(n.Inputs) == 0 {
				v, _ := n.Table.ToUint64()
				return e.setConst(n.PSelf, Const(v&1 != 0))
			}
			return e.constEvalLut(p, n)
		}
	}
	if len(n.Inputs) == 1 {
		v, _ := n.Table.ToUint64()
		if v == 0b10 {
			// identity: out = in, so the node degenerates to a Copy of its
			// one input (whose Input key it keeps)
			n.Kind = KindCopy
			n.CopySrc = n.Inputs[0]
			n.Table = nil
			e.optimizer.push(optItem{Kind: OptForwardEquiv, Equiv: n.PSelf})
			return nil
		}
	}
	return nil
}

func (e *Ensemble) constEvalDynamicLut(p PLNode, n *LNode) error {
	allConst := true
	for _, slot := range n.DynTable {
		if _, ok := slot.ConstValue(); !ok {
			if _, isDyn := slot.IsDynam(); isDyn {
				allConst = false
			}
		}
	}
	if !allConst {
		return nil
	}
	for i := 0; i < len(n.Inputs); i++ {
		eq, ok := getEquiv(e.backrefs, n.Inputs[i])
		if !ok || eq.Val.kind != valueConst {
			return nil
		}
	}
	idx := 0
	for i, in := range n.Inputs {
		eq, _ := getEquiv(e.backrefs, in)
		b, _ := eq.Val.KnownValue()
		if b {
			idx |= 1 << uint(i)
		}
	}
	slot := n.DynTable[idx]
	if b, ok := slot.ConstValue(); ok {
		return e.setConst(n.PSelf, Const(b))
	}
	return nil
}
