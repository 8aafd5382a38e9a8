package ensemble

import (
	"testing"

	"github.com/latticeforge/ensemble/pkg/arena"
	"github.com/latticeforge/ensemble/pkg/bit"
)

func andTable() *bit.Table { return bit.FromUint64(0b1000, 2) }

// lnodeDefining returns the PLNode whose ThisLNode referent lives in out's
// equivalence class, for tests that need to drive constEvalLNode directly
// instead of going through the optimizer's work queue.
func lnodeDefining(e *Ensemble, out PBack) (PLNode, bool) {
	vp, ok := e.backrefs.ValOfKey(out)
	if !ok {
		return PLNode{}, false
	}
	var found PLNode
	var ok2 bool
	e.backrefs.KeysOfVal(vp, func(kp PBack) {
		r, _ := e.backrefs.Key(kp)
		if r.Kind == ThisLNode {
			found, _ = r.LNode()
			ok2 = true
		}
	})
	return found, ok2
}

func TestMakeLiteralAndOpaqueDistinctValues(t *testing.T) {
	e := New()
	lit := e.MakeLiteral(true)
	op := e.MakeOpaque()

	eq, ok := getEquiv(e.backrefs, lit)
	if !ok || !eq.Val.IsConst() {
		t.Fatal("expected MakeLiteral to produce a const class")
	}
	eq2, ok := getEquiv(e.backrefs, op)
	if !ok || !eq2.Val.IsUnknown() {
		t.Fatal("expected MakeOpaque to produce an unknown class")
	}
	if err := e.VerifyIntegrity(); err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
}

func TestChangeValueRejectsWriteToConst(t *testing.T) {
	e := New()
	lit := e.MakeLiteral(false)
	if err := e.ChangeValue(lit, Const(true)); err == nil {
		t.Fatal("expected an error writing to a permanently const class")
	}
}

func TestAndGateEvaluatesAllFourRows(t *testing.T) {
	e := New()
	a := e.MakeOpaque()
	b := e.MakeOpaque()
	out, err := e.MakeLut([]PBack{a, b}, andTable())
	if err != nil {
		t.Fatalf("MakeLut: %v", err)
	}

	for _, row := range [][2]bool{{false, false}, {false, true}, {true, false}, {true, true}} {
		if err := e.ChangeValue(a, Dynam(row[0])); err != nil {
			t.Fatal(err)
		}
		if err := e.ChangeValue(b, Dynam(row[1])); err != nil {
			t.Fatal(err)
		}
		v, err := e.RequestValue(out)
		if err != nil {
			t.Fatalf("RequestValue: %v", err)
		}
		got, _ := v.KnownValue()
		want := row[0] && row[1]
		if got != want {
			t.Fatalf("AND(%v,%v) = %v, want %v", row[0], row[1], got, want)
		}
	}
	if err := e.VerifyIntegrity(); err != nil {
		t.Fatalf("VerifyIntegrity: %v", err)
	}
}

func TestCopyLNodeForwardsSourceValue(t *testing.T) {
	e := New()
	src := e.MakeOpaque()
	dst := e.MakeCopy(src)

	if err := e.ChangeValue(src, Dynam(true)); err != nil {
		t.Fatal(err)
	}
	v, err := e.RequestValue(dst)
	if err != nil {
		t.Fatalf("RequestValue: %v", err)
	}
	got, _ := v.KnownValue()
	if !got {
		t.Fatal("expected Copy to forward true")
	}
}

func TestTNodeDelaysPropagation(t *testing.T) {
	e := New()
	driver := e.MakeOpaque()
	source := e.MakeOpaque()
	e.MakeTNode(source, driver, Delay(2))

	if err := e.ChangeValue(driver, Dynam(true)); err != nil {
		t.Fatal(err)
	}
	if err := e.RestartRequestPhase(); err != nil {
		t.Fatalf("RestartRequestPhase: %v", err)
	}
	v, err := e.RequestValue(source)
	if err != nil {
		t.Fatalf("RequestValue: %v", err)
	}
	got, _ := v.KnownValue()
	if !got {
		t.Fatal("expected the delayed write to have landed by the time the change front and event heap drained")
	}
}

func TestConstEvalLutFoldsKnownInput(t *testing.T) {
	e := New()
	a := e.MakeLiteral(true)
	b := e.MakeOpaque()
	out, err := e.MakeLut([]PBack{a, b}, andTable())
	if err != nil {
		t.Fatalf("MakeLut: %v", err)
	}

	pl, ok := lnodeDefining(e, out)
	if !ok {
		t.Fatal("expected out to be defined by an LNode")
	}
	if err := e.constEvalLNode(pl); err != nil {
		t.Fatalf("constEvalLNode: %v", err)
	}

	n, ok := e.lnodes.Get(arena.Ptr(pl))
	if !ok {
		t.Fatal("expected the LNode to still exist after folding one input away")
	}
	if len(n.Inputs) != 1 {
		t.Fatalf("expected one input left after folding the const input away, got %d", len(n.Inputs))
	}

	if err := e.ChangeValue(b, Dynam(true)); err != nil {
		t.Fatal(err)
	}
	v, err := e.RequestValue(out)
	if err != nil {
		t.Fatalf("RequestValue: %v", err)
	}
	got, _ := v.KnownValue()
	if !got {
		t.Fatal("AND(true, b) should track b, expected true")
	}
}

func TestConstEvalLutAllConstCollapsesToLiteral(t *testing.T) {
	e := New()
	a := e.MakeLiteral(true)
	b := e.MakeLiteral(true)
	out, err := e.MakeLut([]PBack{a, b}, andTable())
	if err != nil {
		t.Fatalf("MakeLut: %v", err)
	}
	pl, ok := lnodeDefining(e, out)
	if !ok {
		t.Fatal("expected out to be defined by an LNode")
	}
	if err := e.constEvalLNode(pl); err != nil {
		t.Fatalf("constEvalLNode: %v", err)
	}
	eq, ok := getEquiv(e.backrefs, out)
	if !ok {
		t.Fatal("expected out's class to still exist")
	}
	if !eq.Val.IsConst() {
		t.Fatal("expected AND(true,true) to fold to a const value")
	}
	got, _ := eq.Val.KnownValue()
	if !got {
		t.Fatal("expected AND(true,true) = true")
	}
}

func TestUnionEquivMergesClasses(t *testing.T) {
	e := New()
	a := e.MakeOpaque()
	b := e.MakeOpaque()
	if err := unionEquiv(e.backrefs, a, b); err != nil {
		t.Fatalf("unionEquiv: %v", err)
	}
	if !e.backrefs.InSameClass(a, b) {
		t.Fatal("expected a and b to be in the same class after unionEquiv")
	}
}

func TestUnionEquivConflictingConstsErrors(t *testing.T) {
	e := New()
	a := e.MakeLiteral(true)
	b := e.MakeLiteral(false)
	if err := unionEquiv(e.backrefs, a, b); err == nil {
		t.Fatal("expected an error unioning two classes with conflicting const values")
	}
}

func TestOptimizeAllFoldsAConstAndGate(t *testing.T) {
	e := New()
	a := e.MakeLiteral(true)
	b := e.MakeLiteral(false)
	out, err := e.MakeLut([]PBack{a, b}, andTable())
	if err != nil {
		t.Fatalf("MakeLut: %v", err)
	}
	if err := e.OptimizeAll(); err != nil {
		t.Fatalf("OptimizeAll: %v", err)
	}
	eq, ok := getEquiv(e.backrefs, out)
	if !ok {
		t.Fatal("expected out's class to survive optimization")
	}
	if !eq.Val.IsConst() {
		t.Fatal("expected AND(true,false) to be folded to a const by OptimizeAll")
	}
	got, _ := eq.Val.KnownValue()
	if got {
		t.Fatal("expected AND(true,false) = false")
	}
}
