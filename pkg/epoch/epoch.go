// Package epoch tracks the currently active Ensemble, mirroring the original
// engine's thread-local epoch stack: a new Epoch pushes a fresh Ensemble
// onto a stack and Active returns the top of that stack. The handle
// constructors in pkg/handle do not consult this stack; they take the
// *ensemble.Ensemble as an explicit argument (e.g. ep.Ensemble()).
// Go has no thread-local storage and the engine is already specified
// as single-threaded (spec: no internal evaluator/optimizer parallelism),
// so this is one process-wide stack rather than one per OS thread.
package epoch

import (
	"sync"

	"github.com/latticeforge/ensemble/pkg/ensemble"
)

var (
	mu    sync.Mutex
	stack []*ensemble.Ensemble
)

// Epoch represents one nested scope with its own active Ensemble. Construct
// with New, always pair with a deferred Drop (or call Drop directly) to pop
// the stack -- Go has no RAII, so unlike the original's Drop impl this must
// be called explicitly.
type Epoch struct {
	e *ensemble.Ensemble
}

// New pushes a fresh Ensemble as the active one and returns the Epoch
// handle guarding it.
func New() *Epoch {
	e := ensemble.New()
	mu.Lock()
	stack = append(stack, e)
	mu.Unlock()
	return &Epoch{e: e}
}

// Ensemble returns the Ensemble this Epoch owns.
func (ep *Epoch) Ensemble() *ensemble.Ensemble { return ep.e }

// Drop pops this Epoch off the stack. It panics if called out of order
// (nested epochs must drop innermost first), matching the original's
// debug-assertion discipline around epoch nesting.
func (ep *Epoch) Drop() {
	mu.Lock()
	defer mu.Unlock()
	if len(stack) == 0 || stack[len(stack)-1] != ep.e {
		panic("epoch: Drop called out of order, or on an already-dropped Epoch")
	}
	stack = stack[:len(stack)-1]
}

// Active returns the Ensemble at the top of the epoch stack, or nil if no
// Epoch is open.
func Active() *ensemble.Ensemble {
	mu.Lock()
	defer mu.Unlock()
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// OptimizeAll runs Ensemble.OptimizeAll on the active Ensemble, matching the
// original's Epoch::optimize_all convenience method.
func OptimizeAll() error {
	e := Active()
	if e == nil {
		return ensemble.ErrOtherStr("epoch: no active epoch")
	}
	return e.OptimizeAll()
}
