package bit

import "testing"

func TestFromBoolsGetSet(t *testing.T) {
	tbl := FromBools([]bool{false, true, true, false})
	if tbl.N() != 2 || tbl.Len() != 4 {
		t.Fatalf("unexpected shape n=%d len=%d", tbl.N(), tbl.Len())
	}
	want := []bool{false, true, true, false}
	for i, w := range want {
		if tbl.Get(i) != w {
			t.Fatalf("entry %d: got %v want %v", i, tbl.Get(i), w)
		}
	}
	tbl.Set(0, true)
	if !tbl.Get(0) {
		t.Fatalf("Set did not take effect")
	}
}

func TestTableEqualClone(t *testing.T) {
	a := FromUint64(0b1011, 4)
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatalf("clone should be equal")
	}
	b.Set(0, !b.Get(0))
	if a.Equal(b) {
		t.Fatalf("mutating clone should not affect original")
	}
}

func TestTableLargeWordBoundary(t *testing.T) {
	tbl := NewTable(7) // 128 entries, spans two words
	tbl.Set(63, true)
	tbl.Set(64, true)
	tbl.Set(127, true)
	if !tbl.Get(63) || !tbl.Get(64) || !tbl.Get(127) {
		t.Fatalf("word-boundary bits not set correctly")
	}
	if tbl.Get(62) || tbl.Get(65) {
		t.Fatalf("unexpected bit set")
	}
	if _, ok := tbl.ToUint64(); ok {
		t.Fatalf("ToUint64 should fail for n>6")
	}
}

func TestTableStringOneCharPerEntry(t *testing.T) {
	tbl := FromBools([]bool{true, false, true, true})
	s := tbl.String()
	if len(s) != 4 {
		t.Fatalf("unexpected string length: %q", s)
	}
}
