package handle

import "github.com/latticeforge/ensemble/pkg/ensemble"

// Loop is a self-referential feedback port: it starts as an opaque bit
// vector with no driver, and Drive wires a source to feed its value back
// into the network after the delay given to Drive (the ensemble-level primitive that
// backs a register, an accumulator, or any other stateful element built
// out of combinational LUTs).
type Loop struct {
	source *LazyAwi
	driven bool
}

// NewLoopZero creates a width-bit Loop pre-driven to all zero bits, to be
// wired to a real driver with Drive before use.
func NewLoopZero(e *ensemble.Ensemble, width int) (*Loop, error) {
	src, err := NewLazyZero(e, width)
	if err != nil {
		return nil, err
	}
	return &Loop{source: src}, nil
}

// Width returns the bit width of this loop.
func (lp *Loop) Width() int { return lp.source.Width() }

// Bits exposes the loop's underlying equivalence classes, for wiring it as
// an operand elsewhere in the network.
func (lp *Loop) Bits() (*EvalAwi, error) {
	rn, err := lp.source.rnode()
	if err != nil {
		return nil, err
	}
	bits := make([]ensemble.PBack, len(rn.Bits))
	for i, b := range rn.Bits {
		if b != nil {
			bits[i] = *b
		}
	}
	return FromBits(lp.source.e, bits), nil
}

// Drive wires driver as this loop's feedback source with the given delay.
// A Loop can only be driven once; driving it twice is an error, matching
// the original's single-assignment discipline for loop sources.
func (lp *Loop) Drive(driver *LazyAwi, delay ensemble.Delay) error {
	if lp.driven {
		return ensemble.ErrOtherStr("loop: already driven")
	}
	if err := lp.source.DriveWithDelay(driver, delay); err != nil {
		return err
	}
	lp.driven = true
	return nil
}

// Net is a vector of equal-width ports multiplexed onto a single Loop via a
// genuine runtime-selected crossbar: Drive builds one dynamic-lut mux per
// output bit, addressed by an index handle's own bits (starlight's
// general_mux/crossbar, the same primitive pkg/lower/grafts.go's graftMux
// reduces Mux to), rather than structurally rewiring the loop's driver on
// every selection change.
type Net struct {
	source *Loop
	ports  []*LazyAwi
	driven bool
}

// NewNetZero creates a width-bit Net with no ports yet.
func NewNetZero(e *ensemble.Ensemble, width int) (*Net, error) {
	lp, err := NewLoopZero(e, width)
	if err != nil {
		return nil, err
	}
	return &Net{source: lp}, nil
}

// Width returns the bit width of this net's ports.
func (n *Net) Width() int { return n.source.Width() }

// Push appends a new port and returns its index.
func (n *Net) Push(port *LazyAwi) (int, error) {
	if port.Width() != n.Width() {
		return 0, ensemble.ErrBitwidthMismatch(n.Width(), port.Width())
	}
	if n.driven {
		return 0, ensemble.ErrOtherStr("net: already driven, cannot push more ports")
	}
	n.ports = append(n.ports, port)
	return len(n.ports) - 1, nil
}

// GetMut returns the port at index i for further mutation (e.g. Retro), and
// whether i was in range.
func (n *Net) GetMut(i int) (*LazyAwi, bool) {
	if i < 0 || i >= len(n.ports) {
		return nil, false
	}
	return n.ports[i], true
}

// Exchange swaps this net's entire port list, loop, and drive state with
// other's.
func (n *Net) Exchange(other *Net) error {
	if n.Width() != other.Width() {
		return ensemble.ErrBitwidthMismatch(n.Width(), other.Width())
	}
	n.ports, other.ports = other.ports, n.ports
	n.source, other.source = other.source, n.source
	n.driven, other.driven = other.driven, n.driven
	return nil
}

// Drive wires idx as this net's runtime port selector, completing the net's
// loop with a dynamic-lut mux tree built once over every pushed port. It can
// only be called once, mirroring Loop.Drive's single-assignment discipline.
// The returned handle evaluates to true whenever idx's current value selects
// a port actually pushed onto the net; out-of-range selections leave the
// net's value Unknown rather than aliasing some other port.
func (n *Net) Drive(idx *LazyAwi) (*EvalAwi, error) {
	if n.driven {
		return nil, ensemble.ErrOtherStr("net: already driven")
	}
	if len(n.ports) == 0 {
		return nil, ensemble.ErrOtherStr("net: no ports pushed")
	}
	e := n.source.source.e
	idxRn, err := idx.rnode()
	if err != nil {
		return nil, err
	}
	idxBits := make([]ensemble.PBack, idx.Width())
	for i, b := range idxRn.Bits {
		if b == nil {
			return nil, ensemble.ErrOtherStr("net: index bit pruned")
		}
		idxBits[i] = *b
	}
	span := 1 << uint(len(idxBits))
	if span < len(n.ports) {
		return nil, ensemble.ErrWrongBitwidth()
	}
	portRnodes := make([]*ensemble.RNode, len(n.ports))
	for i, p := range n.ports {
		rn, err := p.rnode()
		if err != nil {
			return nil, err
		}
		portRnodes[i] = rn
	}
	loopRn, err := n.source.source.rnode()
	if err != nil {
		return nil, err
	}
	for bitIdx := 0; bitIdx < n.Width(); bitIdx++ {
		table := make([]ensemble.DynamicValue, span)
		for k := 0; k < span; k++ {
			if k < len(n.ports) && portRnodes[k].Bits[bitIdx] != nil {
				table[k] = ensemble.DynDynam(*portRnodes[k].Bits[bitIdx])
			} else {
				table[k] = ensemble.DynConstUnknown()
			}
		}
		muxOut, err := e.MakeDynamicLut(idxBits, table)
		if err != nil {
			return nil, err
		}
		if loopRn.Bits[bitIdx] == nil {
			continue
		}
		e.MakeTNode(*loopRn.Bits[bitIdx], muxOut, ensemble.Zero())
		if err := e.Propagate(muxOut); err != nil {
			return nil, err
		}
	}
	n.driven = true
	n.source.driven = true
	valid, err := ultConstPBack(e, idxBits, len(n.ports))
	if err != nil {
		return nil, err
	}
	return FromBits(e, []ensemble.PBack{valid}), nil
}

// Bits exposes the net's current loop output for reading or further wiring.
func (n *Net) Bits() (*EvalAwi, error) {
	return n.source.Bits()
}
