package ensemble

// Delay is an integer number of evaluation time-steps a TNode's driven value
// takes to appear at its source equivalence class. Zero is immediate
// (same-step) propagation.
type Delay uint64

// Zero is the zero delay.
func Zero() Delay { return 0 }

// TNode is a timed driver edge: when Driver's value changes, Source is
// scheduled to take on that value after Delay time-steps elapse. TNodes are
// how retroactive loop drivers (Loop, Net) and explicit inter-epoch driving
// are represented once lowered.
type TNode struct {
	PSelf  PBack
	Source PBack
	Driver PBack
	Delay  Delay

	LoweredFrom PState
}
