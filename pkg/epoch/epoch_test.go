package epoch

import "testing"

func TestActiveNilBeforeAnyEpoch(t *testing.T) {
	if Active() != nil {
		t.Fatal("expected no active epoch before New is called")
	}
}

func TestNewPushesActiveAndDropPops(t *testing.T) {
	ep := New()
	if Active() != ep.Ensemble() {
		t.Fatal("expected the new epoch's ensemble to be active")
	}
	ep.Drop()
	if Active() != nil {
		t.Fatal("expected no active epoch after Drop")
	}
}

func TestNestedEpochsMustDropInnermostFirst(t *testing.T) {
	outer := New()
	inner := New()
	if Active() != inner.Ensemble() {
		t.Fatal("expected the innermost epoch to be active")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected a panic dropping the outer epoch before the inner one")
		}
		inner.Drop()
		outer.Drop()
	}()
	outer.Drop()
}
