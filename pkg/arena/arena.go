// Package arena implements the generational-index containers the ensemble
// engine builds its graph representations on top of: a plain generational
// arena, a surjective arena (many keys map to one value, with O(1) union),
// an ordered arena used as the optimizer's priority queue, and a small
// chain arena for intrusive doubly-linked sequences.
//
// All four are generic over the stored type, following the pool/node
// generics style of the routing-table arenas this package is adapted from.
package arena

import "fmt"

// Ptr is a generational index: Idx identifies a slot, Gen invalidates
// references to a slot after it has been freed and reused.
type Ptr struct {
	idx uint32
	gen uint32
}

// Valid reports whether p is not the zero value (which Insert never returns).
func (p Ptr) Valid() bool { return p.gen != 0 }

// Index returns the slot index p names, for callers that need a dense,
// arena-sized key (e.g. a bitset-backed visited-set) rather than the Ptr
// itself.
func (p Ptr) Index() uint32 { return p.idx }

func (p Ptr) String() string { return fmt.Sprintf("Ptr(%d,%d)", p.idx, p.gen) }

type genSlot[V any] struct {
	gen  uint32
	live bool
	val  V
}

// Arena is a generational arena: Insert returns a Ptr, Remove invalidates
// it, and reused slots get a bumped generation so stale Ptrs never alias a
// new occupant.
type Arena[V any] struct {
	slots []genSlot[V]
	free  []uint32
	count int
}

// New returns an empty arena.
func New[V any]() *Arena[V] {
	return &Arena[V]{}
}

// Len returns the number of live entries.
func (a *Arena[V]) Len() int { return a.count }

// Insert stores v and returns its Ptr.
func (a *Arena[V]) Insert(v V) Ptr {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.live = true
		s.val = v
		a.count++
		return Ptr{idx: idx, gen: s.gen}
	}
	a.slots = append(a.slots, genSlot[V]{gen: 1, live: true, val: v})
	a.count++
	return Ptr{idx: uint32(len(a.slots) - 1), gen: 1}
}

// InsertWith constructs v using p, the Ptr it will be stored at; useful when
// V needs to record its own identity.
func (a *Arena[V]) InsertWith(f func(Ptr) V) Ptr {
	p := a.Insert(*new(V))
	a.slots[p.idx].val = f(p)
	return p
}

func (a *Arena[V]) valid(p Ptr) bool {
	return int(p.idx) < len(a.slots) && a.slots[p.idx].live && a.slots[p.idx].gen == p.gen
}

// Contains reports whether p names a live entry.
func (a *Arena[V]) Contains(p Ptr) bool { return a.valid(p) }

// Get returns the value at p.
func (a *Arena[V]) Get(p Ptr) (V, bool) {
	if !a.valid(p) {
		var zero V
		return zero, false
	}
	return a.slots[p.idx].val, true
}

// GetPtr returns a mutable pointer to the value at p, for in-place edits.
func (a *Arena[V]) GetPtr(p Ptr) (*V, bool) {
	if !a.valid(p) {
		return nil, false
	}
	return &a.slots[p.idx].val, true
}

// Remove deletes the entry at p and returns its value.
func (a *Arena[V]) Remove(p Ptr) (V, bool) {
	if !a.valid(p) {
		var zero V
		return zero, false
	}
	s := &a.slots[p.idx]
	v := s.val
	var zero V
	s.val = zero
	s.live = false
	s.gen++
	a.free = append(a.free, p.idx)
	a.count--
	return v, true
}

// Ptrs returns a snapshot of all currently live Ptrs, in insertion order of
// slot index. The snapshot is not updated by further mutation and may name
// entries removed since; use an Advancer to walk it while mutating.
func (a *Arena[V]) Ptrs() []Ptr {
	out := make([]Ptr, 0, a.count)
	for i := range a.slots {
		if a.slots[i].live {
			out = append(out, Ptr{idx: uint32(i), gen: a.slots[i].gen})
		}
	}
	return out
}

// Advancer walks a snapshot of Ptrs taken at creation time, skipping any
// that have since been removed. This is the safety discipline the optimizer
// depends on: a pass may delete arbitrary entries mid-walk without the
// Advancer revisiting freed slots or panicking.
type Advancer struct {
	ptrs []Ptr
	pos  int
}

// Advancer returns an Advancer over every live entry at the time of the
// call.
func (a *Arena[V]) Advancer() *Advancer {
	return &Advancer{ptrs: a.Ptrs()}
}

// Advance returns the next still-live Ptr, or ok=false when exhausted.
func (adv *Advancer) Advance(isLive func(Ptr) bool) (Ptr, bool) {
	for adv.pos < len(adv.ptrs) {
		p := adv.ptrs[adv.pos]
		adv.pos++
		if isLive(p) {
			return p, true
		}
	}
	return Ptr{}, false
}

// Advance is sugar for Advancer.Advance(a.Contains).
func (a *Arena[V]) Advance(adv *Advancer) (Ptr, bool) {
	return adv.Advance(a.Contains)
}
