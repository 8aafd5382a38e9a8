package arena

import "testing"

func TestArenaInsertGetRemove(t *testing.T) {
	a := New[string]()
	p1 := a.Insert("one")
	p2 := a.Insert("two")
	if v, ok := a.Get(p1); !ok || v != "one" {
		t.Fatalf("Get(p1) = %q, %v", v, ok)
	}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	if _, ok := a.Remove(p1); !ok {
		t.Fatalf("Remove(p1) failed")
	}
	if _, ok := a.Get(p1); ok {
		t.Fatalf("stale Ptr should not resolve after Remove")
	}
	if v, ok := a.Get(p2); !ok || v != "two" {
		t.Fatalf("Get(p2) = %q, %v", v, ok)
	}
}

func TestArenaGenerationInvalidatesStalePtr(t *testing.T) {
	a := New[int]()
	p := a.Insert(1)
	a.Remove(p)
	p2 := a.Insert(2)
	if p.idx == p2.idx && p.gen == p2.gen {
		t.Fatalf("expected regenerated slot to bump generation")
	}
	if _, ok := a.Get(p); ok {
		t.Fatalf("old Ptr should be invalid after reuse")
	}
	if v, ok := a.Get(p2); !ok || v != 2 {
		t.Fatalf("Get(p2) = %d, %v", v, ok)
	}
}

func TestArenaAdvancerSkipsRemoved(t *testing.T) {
	a := New[int]()
	var ptrs []Ptr
	for i := 0; i < 5; i++ {
		ptrs = append(ptrs, a.Insert(i))
	}
	a.Remove(ptrs[2])
	adv := a.Advancer()
	var seen []int
	for {
		p, ok := a.Advance(adv)
		if !ok {
			break
		}
		v, _ := a.Get(p)
		seen = append(seen, v)
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 entries, got %v", seen)
	}
	for _, v := range seen {
		if v == 2 {
			t.Fatalf("advancer should have skipped removed entry")
		}
	}
}

func TestArenaInsertWith(t *testing.T) {
	a := New[Ptr]()
	p := a.InsertWith(func(self Ptr) Ptr { return self })
	v, _ := a.Get(p)
	if v != p {
		t.Fatalf("InsertWith should see its own Ptr, got %v want %v", v, p)
	}
}
