package ensemble

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/latticeforge/ensemble/pkg/arena"
)

// OptKind orders the optimizer's work-item queue. Lower values are drained
// first: preinvestigation classifies an equivalence class before any
// rewrite is attempted, removal/forwarding/constification simplify the
// graph structurally before the more expensive per-LNode investigations run
// against the now-simplified neighborhood.
type OptKind uint8

const (
	OptPreinvestigateEquiv OptKind = iota
	OptRemoveEquiv
	OptForwardEquiv
	OptConstifyEquiv
	OptRemoveLNode
	OptInvestigateUsed
	OptInvestigateConst
	OptInvestigateDriverConst
	OptInvestigateEquiv0
)

func (k OptKind) less(o OptKind) bool { return k < o }

// optItem is one entry in the optimizer's priority queue: which kind of
// rewrite to attempt, against which equivalence class or LNode.
type optItem struct {
	Kind  OptKind
	Equiv PBack
	LNode PLNode
}

func lessOptItem(a, b optItem) bool { return a.Kind < b.Kind }

// Optimizer owns the priority-ordered queue of pending simplification work
// items and the counters used for progress reporting.
type Optimizer struct {
	queue *arena.Ordered[optItem, struct{}]

	// investigated marks which LNode slots have already run through
	// constEvalLNode during the current OptimizeAll drain, so that an LNode
	// scheduled twice in one pass (e.g. once from preinvestigateEquiv, once
	// from a rewrite elsewhere in the same drain) is only folded once.
	investigated *bitset.BitSet

	Verbose      bool
	foldCount    int
	forwardCount int
	removeCount  int
}

func newOptimizer() *Optimizer {
	return &Optimizer{
		queue:        arena.NewOrdered[optItem, struct{}](lessOptItem),
		investigated: bitset.New(0),
	}
}

func (o *Optimizer) push(item optItem) {
	o.queue.Insert(item, struct{}{})
}

// preinvestigateEquiv classifies an equivalence class's role (does it have
// an LNode/TNode output definition, is it a constant, is it referenced at
// all) and schedules the appropriate next work item.
func (e *Ensemble) preinvestigateEquiv(p PBack) {
	eq, ok := getEquiv(e.backrefs, p)
	if !ok {
		return
	}
	var hasDef, hasLNodeUser, hasTNodeUser bool
	var defLNode PLNode
	e.backrefs.KeysOfVal(mustVal(e.backrefs, p), func(kp PBack) {
		r, _ := e.backrefs.Key(kp)
		switch r.Kind {
		case ThisLNode:
			hasDef = true
			defLNode, _ = r.LNode()
		case ThisTNode:
			hasDef = true
		case Input:
			hasLNodeUser = true
		case Driver:
			hasTNodeUser = true
		}
	})
	switch {
	case !hasDef && !hasLNodeUser && !hasTNodeUser:
		e.optimizer.push(optItem{Kind: OptRemoveEquiv, Equiv: p})
	case eq.Val.IsConst():
		e.optimizer.push(optItem{Kind: OptConstifyEquiv, Equiv: p})
	case hasDef:
		e.optimizer.push(optItem{Kind: OptInvestigateUsed, Equiv: p, LNode: defLNode})
	default:
		e.optimizer.push(optItem{Kind: OptInvestigateEquiv0, Equiv: p})
	}
}

// mustVal resolves a key Ptr to the value-cell Ptr of its equivalence class,
// for use with the Surject value-cell APIs (KeysOfVal, GetVal, CountOfVal).
func mustVal(b *backrefs, p PBack) PBack {
	vp, _ := b.ValOfKey(p)
	return vp
}

// OptimizeAll drains the work-item queue to a fixed point: every equivalence
// class is preinvestigated once, then rewrites are applied until nothing
// remains. A class proven const mid-drain queues another const-evaluation
// of every LNode reading it, so constants keep folding forward until no
// further fold applies.
func (e *Ensemble) OptimizeAll() error {
	e.ForceRemoveAllStates()
	e.optimizer.investigated.ClearAll()
	for _, p := range e.backrefs.KeyPtrs() {
		r, ok := e.backrefs.Key(p)
		if ok && r.Kind == ThisEquiv {
			e.preinvestigateEquiv(p)
		}
	}
	for e.optimizer.queue.Len() > 0 {
		item, _, ok := e.optimizer.queue.PopMin()
		if !ok {
			break
		}
		if err := e.applyOptItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (e *Ensemble) applyOptItem(item optItem) error {
	switch item.Kind {
	case OptPreinvestigateEquiv:
		e.preinvestigateEquiv(item.Equiv)
	case OptRemoveEquiv:
		e.removeEquivIfDead(item.Equiv)
	case OptForwardEquiv:
		e.forwardEquiv(item.Equiv)
	case OptConstifyEquiv:
		e.constifyEquiv(item.Equiv)
	case OptRemoveLNode:
		e.removeLNodeIfDead(item.LNode)
	case OptInvestigateUsed, OptInvestigateConst, OptInvestigateDriverConst:
		idx := uint(arena.Ptr(item.LNode).Index())
		if e.optimizer.investigated.Test(idx) {
			return nil
		}
		e.optimizer.investigated.Set(idx)
		return e.constEvalLNode(item.LNode)
	case OptInvestigateEquiv0:
		// Corresponds to the original's not-yet-implemented
		// investigate-unused-equiv-with-no-definition pass; classes that
		// reach here have neither a definition nor a user and are simply
		// left in place; spec's open question keeps this a no-op.
	}
	return nil
}

func (e *Ensemble) removeEquivIfDead(p PBack) {
	if _, ok := e.backrefs.ValOfKey(p); !ok {
		return
	}
	count := e.backrefs.CountOfVal(mustVal(e.backrefs, p))
	if count == 1 {
		e.backrefs.RemoveKey(p)
		e.optimizer.removeCount++
	}
}

// forwardEquiv handles a ForwardEquiv work item, queued by constEvalLNode
// when an identity LUT degenerates to a Copy. It does nothing: referents of
// the Copy's output class are not rewired onto its source's class and the
// Copy's class is not removed; the Copy LNode keeps forwarding its source's
// value at evaluation time.
func (e *Ensemble) forwardEquiv(from PBack) {
	_ = from
}

func (e *Ensemble) constifyEquiv(p PBack) {
	vp, ok := e.backrefs.ValOfKey(p)
	if !ok {
		return
	}
	// the Const value stays in place; every LNode reading this class is
	// queued for an InvestigateConst pass (even if already investigated in
	// this drain) so it folds the now-known input away.
	e.backrefs.KeysOfVal(vp, func(kp PBack) {
		r, _ := e.backrefs.Key(kp)
		if ln, ok := r.LNode(); ok && r.Kind == Input {
			e.optimizer.investigated.Clear(uint(arena.Ptr(ln).Index()))
			e.optimizer.push(optItem{Kind: OptInvestigateConst, LNode: ln})
		}
	})
}

func (e *Ensemble) removeLNodeIfDead(p PLNode) {
	n, ok := e.lnodes.GetPtr(arena.Ptr(p))
	if !ok {
		return
	}
	if e.backrefs.CountOfVal(mustVal(e.backrefs, n.PSelf)) > 1 {
		return
	}
	e.removeLNode(p)
}
