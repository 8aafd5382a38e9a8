package ensemble

import (
	"container/heap"

	"github.com/latticeforge/ensemble/pkg/arena"
)

// EvalPhase tracks which of the two evaluator phases is active: Change
// accepts retroactive writes and propagates them without yet resolving
// output queries, Request drains the accumulated changes and resolves
// pending read requests against a quiescent network.
type EvalPhase uint8

const (
	PhaseChange EvalPhase = iota
	PhaseRequest
)

type scheduledEvent struct {
	at     uint64
	target PBack
	value  Value
}

type eventHeap []scheduledEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].at < h[j].at }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)         { *h = append(*h, x.(scheduledEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Evaluator drives value propagation through the LNode/TNode network: a
// change front of equivalence classes whose value just changed, a request
// front of classes whose value has been asked for and must be resolved, a
// monotonic time counter advanced by the timed event heap, and a visit
// generation counter so a class already handled in the current sweep is
// skipped in O(1) instead of being re-scanned.
type Evaluator struct {
	phase EvalPhase

	changeFront  []PBack
	requestFront []PBack

	events   eventHeap
	time     uint64
	visitGen uint64

	Verbose    bool
	stepCount  uint64
}

func newEvaluator() *Evaluator { return &Evaluator{visitGen: 1} }

// ChangeValue records a retroactive write of v to the equivalence class
// containing pBack and enqueues it onto the change front. It is an error to
// write to a class whose value is permanently Const.
func (e *Ensemble) ChangeValue(pBack PBack, v Value) error {
	eq, ok := getEquivPtr(e.backrefs, pBack)
	if !ok {
		return ErrInvalidPtr()
	}
	if eq.Val.kind == valueConst || eq.Val.kind == valueConstUnknown {
		return ErrOtherStr("change_value: attempted to change a permanently const equivalence class")
	}
	if eq.Val == v {
		return nil
	}
	eq.Val = v
	ev := e.evaluator
	if eq.EvalVisit != ev.visitGen || ev.phase != PhaseChange {
		eq.EvalVisit = ev.visitGen
		ev.changeFront = append(ev.changeFront, pBack)
	}
	return nil
}

// RequestValue switches the evaluator into the Request phase (draining any
// pending changes first) and returns the now-resolved value of the class
// containing pBack.
func (e *Ensemble) RequestValue(pBack PBack) (Value, error) {
	ev := e.evaluator
	ev.phase = PhaseRequest
	ev.visitGen++
	if err := e.drainChangeFront(); err != nil {
		return Value{}, err
	}
	eq, ok := getEquiv(e.backrefs, pBack)
	if !ok {
		return Value{}, ErrInvalidPtr()
	}
	if eq.Val.IsUnknown() {
		return Value{}, ErrUnevaluatable()
	}
	return eq.Val, nil
}

// RestartRequestPhase re-drains the change front without changing phase,
// used after lazily initializing new RNode/State bits mid-request.
func (e *Ensemble) RestartRequestPhase() error {
	return e.drainChangeFront()
}

// drainChangeFront propagates every pending change through the LNode/TNode
// network until the change front and the timed event heap are both empty
// (quiescence), which is the evaluator's termination condition for one
// evaluation round.
func (e *Ensemble) drainChangeFront() error {
	ev := e.evaluator
	for len(ev.changeFront) > 0 || len(ev.events) > 0 {
		for len(ev.changeFront) > 0 {
			n := len(ev.changeFront)
			p := ev.changeFront[n-1]
			ev.changeFront = ev.changeFront[:n-1]
			if err := e.propagateFrom(p); err != nil {
				return err
			}
		}
		if len(ev.events) > 0 {
			ev.time++
			var firing []scheduledEvent
			for len(ev.events) > 0 && ev.events[0].at <= ev.time {
				firing = append(firing, heap.Pop(&ev.events).(scheduledEvent))
			}
			for _, fe := range firing {
				if err := e.ChangeValue(fe.target, fe.value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// propagateFrom re-evaluates every LNode that reads pBack as an input and
// every TNode that reads it as a driver, pushing any resulting value changes
// further along the change front (or scheduling them as timed events for
// TNodes with nonzero delay).
func (e *Ensemble) propagateFrom(pBack PBack) error {
	vp, ok := e.backrefs.ValOfKey(pBack)
	if !ok {
		return nil
	}
	var lnodeUsers []PLNode
	var tnodeUsers []PTNode
	e.backrefs.KeysOfVal(vp, func(kp PBack) {
		r, _ := e.backrefs.Key(kp)
		switch r.Kind {
		case Input:
			if ln, ok := r.LNode(); ok {
				lnodeUsers = append(lnodeUsers, ln)
			}
		case Driver:
			if tn, ok := r.TNode(); ok {
				tnodeUsers = append(tnodeUsers, tn)
			}
		}
	})
	for _, pl := range lnodeUsers {
		if err := e.evalLNode(pl); err != nil {
			return err
		}
	}
	for _, pt := range tnodeUsers {
		if err := e.evalTNode(pt); err != nil {
			return err
		}
	}
	return nil
}

// evalLNode recomputes an LNode's output value from its inputs' current
// values and, if it changed, writes it back through ChangeValue.
func (e *Ensemble) evalLNode(p PLNode) error {
	n, ok := e.lnodes.Get(arena.Ptr(p))
	if !ok {
		return nil
	}
	v, err := e.evalLNodeValue(&n)
	if err != nil || v.IsUnknown() {
		return err
	}
	return e.ChangeValue(n.PSelf, v)
}

func (e *Ensemble) evalLNodeValue(n *LNode) (Value, error) {
	switch n.Kind {
	case KindCopy:
		eq, ok := getEquiv(e.backrefs, n.CopySrc)
		if !ok {
			return Unknown, nil
		}
		return eq.Val, nil
	case KindLut:
		idx := 0
		for i, in := range n.Inputs {
			eq, ok := getEquiv(e.backrefs, in)
			if !ok || eq.Val.IsUnknown() {
				return Unknown, nil
			}
			b, _ := eq.Val.KnownValue()
			if b {
				idx |= 1 << uint(i)
			}
		}
		return Dynam(n.Table.Get(idx)), nil
	case KindDynamicLut:
		idx := 0
		for i, in := range n.Inputs {
			eq, ok := getEquiv(e.backrefs, in)
			if !ok || eq.Val.IsUnknown() {
				return Unknown, nil
			}
			b, _ := eq.Val.KnownValue()
			if b {
				idx |= 1 << uint(i)
			}
		}
		slot := n.DynTable[idx]
		if b, ok := slot.ConstValue(); ok {
			return Dynam(b), nil
		}
		if src, ok := slot.IsDynam(); ok {
			eq, ok := getEquiv(e.backrefs, src)
			if !ok || eq.Val.IsUnknown() {
				return Unknown, nil
			}
			b, _ := eq.Val.KnownValue()
			return Dynam(b), nil
		}
		return Unknown, nil
	}
	return Unknown, nil
}

// evalTNode recomputes a TNode's driven source value from its driver's
// current value, scheduling the write after Delay time-steps.
func (e *Ensemble) evalTNode(p PTNode) error {
	tn, ok := e.tnodes.Get(arena.Ptr(p))
	if !ok {
		return nil
	}
	eq, ok := getEquiv(e.backrefs, tn.Driver)
	if !ok || eq.Val.IsUnknown() {
		return nil
	}
	if tn.Delay == 0 {
		return e.ChangeValue(tn.Source, eq.Val)
	}
	ev := e.evaluator
	heap.Push(&ev.events, scheduledEvent{at: ev.time + uint64(tn.Delay), target: tn.Source, value: eq.Val})
	return nil
}
