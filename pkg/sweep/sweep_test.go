package sweep

import (
	"testing"

	"github.com/latticeforge/ensemble/pkg/bit"
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// buildAndGate returns an Ensemble computing out = a AND b via a single
// 2-input LUT, plus the PBack handles for a, b and out.
func buildAndGate(t *testing.T) (e *ensemble.Ensemble, a, b, out ensemble.PBack) {
	t.Helper()
	e = ensemble.New()
	a = e.MakeOpaque()
	b = e.MakeOpaque()
	var err error
	out, err = e.MakeLut([]ensemble.PBack{a, b}, bit.FromUint64(0b1000, 2))
	if err != nil {
		t.Fatalf("MakeLut: %v", err)
	}
	return e, a, b, out
}

func TestRunExhaustiveMatchesOracle(t *testing.T) {
	e, a, b, out := buildAndGate(t)
	_ = a
	_ = b

	task := Task{
		Name:    "and-gate",
		Inputs:  []ensemble.PBack{a, b},
		Outputs: []ensemble.PBack{out},
		Oracle: func(in []bool) []bool {
			return []bool{in[0] && in[1]}
		},
	}

	mismatches, err := Run(e, task)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("expected no mismatches, got %+v", mismatches)
	}
}

func TestRunDetectsMismatch(t *testing.T) {
	e, a, b, out := buildAndGate(t)

	task := Task{
		Name:    "and-gate-wrong-oracle",
		Inputs:  []ensemble.PBack{a, b},
		Outputs: []ensemble.PBack{out},
		Oracle: func(in []bool) []bool {
			return []bool{in[0] || in[1]} // deliberately wrong (OR, not AND)
		},
	}

	mismatches, err := Run(e, task)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// AND and OR agree on (0,0) and (1,1) but disagree on (0,1) and (1,0).
	if len(mismatches) != 2 {
		t.Fatalf("expected 2 mismatches, got %d: %+v", len(mismatches), mismatches)
	}
}

func TestRunRejectsOversizedExhaustiveTask(t *testing.T) {
	e := ensemble.New()
	inputs := make([]ensemble.PBack, MaxExhaustiveInputs+1)
	for i := range inputs {
		inputs[i] = e.MakeOpaque()
	}
	task := Task{
		Name:   "too-big",
		Inputs: inputs,
		Oracle: func(in []bool) []bool { return nil },
	}
	if _, err := Run(e, task); err == nil {
		t.Fatal("expected an error for a task exceeding MaxExhaustiveInputs with no explicit Vectors")
	}
}

func TestRunWithExplicitVectors(t *testing.T) {
	e, a, b, out := buildAndGate(t)
	task := Task{
		Name:    "and-gate-vectors",
		Inputs:  []ensemble.PBack{a, b},
		Outputs: []ensemble.PBack{out},
		Vectors: [][]bool{{false, false}, {true, true}},
		Oracle: func(in []bool) []bool {
			return []bool{in[0] && in[1]}
		},
	}
	mismatches, err := Run(e, task)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("expected no mismatches, got %+v", mismatches)
	}
}

func TestPoolRunAllAggregatesAcrossTasks(t *testing.T) {
	pool := NewPool(2)
	tasks := []Task{
		{Name: "t1", Oracle: func(in []bool) []bool { return nil }},
		{Name: "t2", Oracle: func(in []bool) []bool { return nil }},
	}
	err := pool.RunAll(tasks, func(Task) *ensemble.Ensemble { return ensemble.New() }, false)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	checked, failed := pool.Stats()
	if checked != 2 {
		t.Fatalf("expected 2 checked, got %d", checked)
	}
	if failed != 0 {
		t.Fatalf("expected 0 failed, got %d", failed)
	}
}
