package arena

import "testing"

func TestChainPushBackOrder(t *testing.T) {
	c := NewChain[int]()
	c.PushBack(1)
	c.PushBack(2)
	c.PushBack(3)
	var got []int
	c.Each(func(_ Ptr, v int) { got = append(got, v) })
	want := []int{1, 2, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestChainPushFrontOrder(t *testing.T) {
	c := NewChain[int]()
	c.PushFront(1)
	c.PushFront(2)
	c.PushFront(3)
	var got []int
	c.Each(func(_ Ptr, v int) { got = append(got, v) })
	want := []int{3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestChainRemoveMiddle(t *testing.T) {
	c := NewChain[int]()
	c.PushBack(1)
	p2 := c.PushBack(2)
	c.PushBack(3)
	if _, ok := c.Remove(p2); !ok {
		t.Fatalf("Remove failed")
	}
	var got []int
	c.Each(func(_ Ptr, v int) { got = append(got, v) })
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected chain contents after removal: %v", got)
	}
}

func TestChainPopFront(t *testing.T) {
	c := NewChain[int]()
	c.PushBack(10)
	c.PushBack(20)
	v, ok := c.PopFront()
	if !ok || v != 10 {
		t.Fatalf("PopFront = %d, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}
