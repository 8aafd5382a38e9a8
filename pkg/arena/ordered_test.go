package arena

import "testing"

func TestOrderedPopMinOrder(t *testing.T) {
	o := NewOrdered[int, string](func(a, b int) bool { return a < b })
	o.Insert(5, "e")
	o.Insert(1, "a")
	o.Insert(3, "c")
	o.Insert(2, "b")
	o.Insert(4, "d")

	var got []string
	for o.Len() > 0 {
		_, v, _ := o.PopMin()
		got = append(got, v)
	}
	want := []string{"a", "b", "c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestOrderedRemoveMidHeap(t *testing.T) {
	o := NewOrdered[int, string](func(a, b int) bool { return a < b })
	p1 := o.Insert(1, "a")
	p2 := o.Insert(2, "b")
	o.Insert(3, "c")

	if _, _, ok := o.Remove(p2); !ok {
		t.Fatalf("Remove(p2) failed")
	}
	if o.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", o.Len())
	}
	_, v, _ := o.PopMin()
	if v != "a" {
		t.Fatalf("expected a first, got %s", v)
	}
	if _, _, ok := o.Get(p1); ok {
		t.Fatalf("p1 should be gone after PopMin")
	}
}

func TestOrderedPeekDoesNotRemove(t *testing.T) {
	o := NewOrdered[int, string](func(a, b int) bool { return a < b })
	o.Insert(2, "b")
	o.Insert(1, "a")
	_, v, ok := o.Peek()
	if !ok || v != "a" {
		t.Fatalf("Peek = %s, %v", v, ok)
	}
	if o.Len() != 2 {
		t.Fatalf("Peek should not remove, Len() = %d", o.Len())
	}
}
