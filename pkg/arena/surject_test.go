package arena

import "testing"

func TestSurjectInsertAndClass(t *testing.T) {
	s := NewSurject[string, int]()
	vp := s.InsertVal(0)
	k1, _ := s.InsertKey(vp, func(Ptr) string { return "a" })
	k2, _ := s.InsertKey(vp, func(Ptr) string { return "b" })
	if !s.InSameClass(k1, k2) {
		t.Fatalf("k1, k2 should share a class")
	}
	if s.CountOfVal(vp) != 2 {
		t.Fatalf("CountOfVal = %d, want 2", s.CountOfVal(vp))
	}
	seen := map[string]bool{}
	s.KeysOfVal(vp, func(kp Ptr) {
		k, _ := s.Key(kp)
		seen[k] = true
	})
	if !seen["a"] || !seen["b"] {
		t.Fatalf("KeysOfVal missed entries: %v", seen)
	}
}

func TestSurjectUnion(t *testing.T) {
	s := NewSurject[string, int]()
	va := s.InsertVal(1)
	vb := s.InsertVal(2)
	ka, _ := s.InsertKey(va, func(Ptr) string { return "a" })
	kb, _ := s.InsertKey(vb, func(Ptr) string { return "b" })
	if s.InSameClass(ka, kb) {
		t.Fatalf("should not be in same class before union")
	}
	ok := s.Union(ka, kb, func(a, b int) int { return a + b })
	if !ok {
		t.Fatalf("Union should succeed")
	}
	if !s.InSameClass(ka, kb) {
		t.Fatalf("should be in same class after union")
	}
	combined, _ := s.Get(ka)
	if combined != 3 {
		t.Fatalf("combine() result lost, got %d want 3", combined)
	}
	if s.LenVals() != 1 {
		t.Fatalf("expected one surviving value cell, got %d", s.LenVals())
	}
}

func TestSurjectUnionAlreadySame(t *testing.T) {
	s := NewSurject[string, int]()
	vp := s.InsertVal(0)
	k1, _ := s.InsertKey(vp, func(Ptr) string { return "a" })
	k2, _ := s.InsertKey(vp, func(Ptr) string { return "b" })
	if s.Union(k1, k2, func(a, b int) int { return a }) {
		t.Fatalf("Union of already-unioned keys should report false")
	}
}

func TestSurjectRemoveKeyRemovesEmptyClass(t *testing.T) {
	s := NewSurject[string, int]()
	vp := s.InsertVal(42)
	k1, _ := s.InsertKey(vp, func(Ptr) string { return "a" })
	removedVal, last, ok := s.RemoveKey(k1)
	if !ok || !removedVal || last != 42 {
		t.Fatalf("RemoveKey last-key case: removedVal=%v last=%d ok=%v", removedVal, last, ok)
	}
	if s.LenVals() != 0 {
		t.Fatalf("value cell should have been removed, LenVals=%d", s.LenVals())
	}
}

func TestSurjectRemoveKeyKeepsClassAlive(t *testing.T) {
	s := NewSurject[string, int]()
	vp := s.InsertVal(0)
	k1, _ := s.InsertKey(vp, func(Ptr) string { return "a" })
	k2, _ := s.InsertKey(vp, func(Ptr) string { return "b" })
	removedVal, _, ok := s.RemoveKey(k1)
	if !ok || removedVal {
		t.Fatalf("removing one of two keys should not remove the value cell")
	}
	if s.CountOfVal(vp) != 1 {
		t.Fatalf("CountOfVal after removal = %d, want 1", s.CountOfVal(vp))
	}
	if _, ok := s.Key(k2); !ok {
		t.Fatalf("remaining key should still resolve")
	}
}

func TestSurjectManyKeysManyUnions(t *testing.T) {
	s := NewSurject[int, int]()
	var vps []Ptr
	var kps []Ptr
	for i := 0; i < 20; i++ {
		vp := s.InsertVal(i)
		kp, _ := s.InsertKey(vp, func(Ptr) int { return i })
		vps = append(vps, vp)
		kps = append(kps, kp)
	}
	for i := 1; i < 20; i++ {
		s.Union(kps[0], kps[i], func(a, b int) int { return a + b })
	}
	if s.LenVals() != 1 {
		t.Fatalf("expected single class after chained unions, got %d", s.LenVals())
	}
	if s.CountOfVal(s.mustValOf(kps[0])) != 20 {
		t.Fatalf("expected 20 keys in merged class")
	}
}

func (s *Surject[K, V]) mustValOf(kp Ptr) Ptr {
	vp, _ := s.ValOfKey(kp)
	return vp
}
