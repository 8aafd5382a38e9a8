// Package sweep is a verification-only tool: it drives an Ensemble's input
// bits through every combination of a small test vector set (or, for small
// enough input counts, every combination there is) and checks the resulting
// output bits against an expected truth table. It never optimizes an
// Ensemble or changes its structure: it drives input values with
// ChangeValue and reads results back via RequestValue.
package sweep

import (
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// Task is one unit of sweep work: drive Inputs through every row of Vectors
// (or, if Vectors is nil and len(Inputs) is small, every possible input
// combination) and check Outputs against Oracle.
type Task struct {
	Name    string
	Inputs  []ensemble.PBack
	Outputs []ensemble.PBack

	// Vectors, if non-nil, restricts the sweep to these specific input rows
	// instead of exhaustively enumerating every combination -- the same
	// fixed-test-vector-first idea as a quick rejection pass, useful when
	// len(Inputs) is too large to enumerate fully.
	Vectors [][]bool

	// Oracle computes the expected output row for a given input row.
	Oracle func(in []bool) []bool
}

// Mismatch records one sweep row whose observed outputs did not match the
// oracle's expectation.
type Mismatch struct {
	Task     string
	Input    []bool
	Got      []bool
	Expected []bool
}

// MaxExhaustiveInputs bounds how many input bits Run will enumerate fully
// when a Task supplies no explicit Vectors; beyond this the combination
// count is almost always too large to be worth a full sweep and the caller
// should supply Vectors instead.
const MaxExhaustiveInputs = 20

// Run drives t against e and returns every row where the observed output
// did not match t.Oracle, or an error if evaluation itself failed (e.g. an
// output bit never resolves away from Unknown).
func Run(e *ensemble.Ensemble, t Task) ([]Mismatch, error) {
	rows := t.Vectors
	if rows == nil {
		if len(t.Inputs) > MaxExhaustiveInputs {
			return nil, ensemble.ErrOtherf("sweep: task %q has %d inputs with no explicit Vectors, exceeding MaxExhaustiveInputs=%d", t.Name, len(t.Inputs), MaxExhaustiveInputs)
		}
		rows = enumerateRows(len(t.Inputs))
	}

	var mismatches []Mismatch
	for _, row := range rows {
		for i, pb := range t.Inputs {
			if err := e.ChangeValue(pb, ensemble.Dynam(row[i])); err != nil {
				return mismatches, ensemble.Wrapf(err, "sweep: driving input %d of task %q", i, t.Name)
			}
		}
		got := make([]bool, len(t.Outputs))
		for i, pb := range t.Outputs {
			v, err := e.RequestValue(pb)
			if err != nil {
				return mismatches, ensemble.Wrapf(err, "sweep: reading output %d of task %q", i, t.Name)
			}
			b, _ := v.KnownValue()
			got[i] = b
		}
		want := t.Oracle(row)
		if !boolsEqual(got, want) {
			mismatches = append(mismatches, Mismatch{
				Task:     t.Name,
				Input:    append([]bool(nil), row...),
				Got:      got,
				Expected: want,
			})
		}
	}
	return mismatches, nil
}

func enumerateRows(n int) [][]bool {
	rows := make([][]bool, 1<<uint(n))
	for idx := range rows {
		row := make([]bool, n)
		for i := 0; i < n; i++ {
			row[i] = (idx>>uint(i))&1 != 0
		}
		rows[idx] = row
	}
	return rows
}

func boolsEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
