package arena

// Surject is a surjective arena: many keys (Ptrs) can map onto one value
// cell. Keys in the same equivalence class form a circular intrusive linked
// list threaded through the key slots themselves, so union/remove/iterate
// over a class costs no extra allocation. This is the backbone of the
// ensemble's back-ref graph: many Referents (LNode inputs, TNode drivers,
// state bits, RNode bits) can all point at one Equiv value cell.
type Surject[K any, V any] struct {
	keys   *Arena[surjectKey[K]]
	values *Arena[surjectVal[V]]
}

type surjectKey[K any] struct {
	key  K
	val  Ptr // which value cell this key belongs to
	next Ptr // next key in this value's circular list
	prev Ptr
}

type surjectVal[V any] struct {
	val   V
	akey  Ptr // an arbitrary representative key in the class
	count int // number of keys currently in the class
}

// NewSurject returns an empty surjective arena.
func NewSurject[K any, V any]() *Surject[K, V] {
	return &Surject[K, V]{keys: New[surjectKey[K]](), values: New[surjectVal[V]]()}
}

// LenKeys returns the number of keys (PBacks) live in the arena.
func (s *Surject[K, V]) LenKeys() int { return s.keys.Len() }

// LenVals returns the number of distinct value cells (equivalence classes).
func (s *Surject[K, V]) LenVals() int { return s.values.Len() }

// InsertVal creates a new equivalence class holding v with no keys yet, and
// returns its value Ptr.
func (s *Surject[K, V]) InsertVal(v V) Ptr {
	return s.values.Insert(surjectVal[V]{val: v, akey: Ptr{}, count: 0})
}

// InsertKey adds a new key into the equivalence class identified by valPtr,
// building k from the new key's own Ptr (so K can self-reference, as Equiv's
// Referent::ThisEquiv does via PBack).
func (s *Surject[K, V]) InsertKey(valPtr Ptr, build func(Ptr) K) (Ptr, bool) {
	vslot, ok := s.values.GetPtr(valPtr)
	if !ok {
		return Ptr{}, false
	}
	kp := s.keys.InsertWith(func(self Ptr) surjectKey[K] {
		return surjectKey[K]{key: build(self), val: valPtr}
	})
	s.linkIn(vslot, kp)
	return kp, true
}

func (s *Surject[K, V]) linkIn(vslot *surjectVal[V], kp Ptr) {
	if vslot.count == 0 {
		vslot.akey = kp
		ks, _ := s.keys.GetPtr(kp)
		ks.next, ks.prev = kp, kp
	} else {
		head, _ := s.keys.GetPtr(vslot.akey)
		tail, _ := s.keys.GetPtr(head.prev)
		ks, _ := s.keys.GetPtr(kp)
		ks.next = vslot.akey
		ks.prev = head.prev
		tail.next = kp
		head.prev = kp
	}
	vslot.count++
}

func (s *Surject[K, V]) unlink(vslot *surjectVal[V], kp Ptr) {
	ks, _ := s.keys.GetPtr(kp)
	if vslot.count == 1 {
		vslot.akey = Ptr{}
	} else {
		prev, _ := s.keys.GetPtr(ks.prev)
		next, _ := s.keys.GetPtr(ks.next)
		prev.next = ks.next
		next.prev = ks.prev
		if vslot.akey == kp {
			vslot.akey = ks.next
		}
	}
	vslot.count--
}

// Key returns the K stored at kp.
func (s *Surject[K, V]) Key(kp Ptr) (K, bool) {
	ks, ok := s.keys.Get(kp)
	if !ok {
		var zero K
		return zero, false
	}
	return ks.key, true
}

// KeyPtr returns a mutable pointer to the K stored at kp.
func (s *Surject[K, V]) KeyPtr(kp Ptr) (*K, bool) {
	ks, ok := s.keys.GetPtr(kp)
	if !ok {
		return nil, false
	}
	return &ks.key, true
}

// ValOfKey returns the value Ptr that kp currently belongs to.
func (s *Surject[K, V]) ValOfKey(kp Ptr) (Ptr, bool) {
	ks, ok := s.keys.Get(kp)
	if !ok {
		return Ptr{}, false
	}
	return ks.val, true
}

// Get returns the value stored for the class containing kp.
func (s *Surject[K, V]) Get(kp Ptr) (V, bool) {
	vp, ok := s.ValOfKey(kp)
	if !ok {
		var zero V
		return zero, false
	}
	return s.GetVal(vp)
}

// GetVal returns the value at a value Ptr directly.
func (s *Surject[K, V]) GetVal(vp Ptr) (V, bool) {
	vs, ok := s.values.Get(vp)
	if !ok {
		var zero V
		return zero, false
	}
	return vs.val, true
}

// GetValPtr returns a mutable pointer to the value at a value Ptr.
func (s *Surject[K, V]) GetValPtr(vp Ptr) (*V, bool) {
	vs, ok := s.values.GetPtr(vp)
	if !ok {
		return nil, false
	}
	return &vs.val, true
}

// ValPtrs returns a snapshot of every live value Ptr.
func (s *Surject[K, V]) ValPtrs() []Ptr { return s.values.Ptrs() }

// KeyPtrs returns a snapshot of every live key Ptr.
func (s *Surject[K, V]) KeyPtrs() []Ptr { return s.keys.Ptrs() }

// KeysOfVal calls f for every key currently in vp's equivalence class.
func (s *Surject[K, V]) KeysOfVal(vp Ptr, f func(Ptr)) {
	vs, ok := s.values.Get(vp)
	if !ok || vs.count == 0 {
		return
	}
	start := vs.akey
	cur := start
	for {
		f(cur)
		ks, _ := s.keys.Get(cur)
		cur = ks.next
		if cur == start {
			break
		}
	}
}

// CountOfVal returns the number of keys in vp's class.
func (s *Surject[K, V]) CountOfVal(vp Ptr) int {
	vs, ok := s.values.Get(vp)
	if !ok {
		return 0
	}
	return vs.count
}

// InSameClass reports whether a and b currently share an equivalence class.
func (s *Surject[K, V]) InSameClass(a, b Ptr) bool {
	va, ok1 := s.ValOfKey(a)
	vb, ok2 := s.ValOfKey(b)
	return ok1 && ok2 && va == vb
}

// RemoveKey deletes a single key. If it was the last key in its class, the
// value cell is removed too and removedVal reports true along with the
// value that was stored there.
func (s *Surject[K, V]) RemoveKey(kp Ptr) (removedVal bool, lastVal V, ok bool) {
	ks, ok := s.keys.Get(kp)
	if !ok {
		return false, lastVal, false
	}
	vslot, _ := s.values.GetPtr(ks.val)
	s.unlink(vslot, kp)
	s.keys.Remove(kp)
	if vslot.count == 0 {
		v, _ := s.values.Remove(ks.val)
		return true, v.val, true
	}
	return false, lastVal, true
}

// Union merges the equivalence classes of a and b (weighted: the smaller
// class is relinked into the larger one so a long chain of unions stays
// close to O(n) total rather than O(n^2); on a tie a's class survives). The
// smaller class's value cell is removed; combine decides the surviving
// value, receiving (surviving class's old value, removed class's old value).
// Returns false if a and b are already in the same class.
func (s *Surject[K, V]) Union(a, b Ptr, combine func(a, b V) V) bool {
	va, ok1 := s.ValOfKey(a)
	vb, ok2 := s.ValOfKey(b)
	if !ok1 || !ok2 {
		return false
	}
	if va == vb {
		return false
	}
	avs, _ := s.values.GetPtr(va)
	bvs, _ := s.values.GetPtr(vb)
	if avs.count < bvs.count {
		va, vb = vb, va
		avs, bvs = bvs, avs
	}
	// relink every key of vb's circular list into va's, then drop vb.
	if bvs.count > 0 {
		start := bvs.akey
		cur := start
		for {
			ks, _ := s.keys.GetPtr(cur)
			next := ks.next
			ks.val = va
			cur = next
			if cur == start {
				break
			}
		}
		if avs.count == 0 {
			avs.akey = bvs.akey
		} else {
			ah, _ := s.keys.GetPtr(avs.akey)
			at, _ := s.keys.GetPtr(ah.prev)
			bh, _ := s.keys.GetPtr(bvs.akey)
			bt, _ := s.keys.GetPtr(bh.prev)
			at.next = bvs.akey
			bh.prev = ah.prev
			bt.next = avs.akey
			ah.prev = bvs.akey
		}
		avs.count += bvs.count
	}
	avs.val = combine(avs.val, bvs.val)
	s.values.Remove(vb)
	return true
}
