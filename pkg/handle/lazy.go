// Package handle implements the public bit-vector handle types a caller
// builds an Ensemble's network through: LazyAwi (retroactively-writable
// opaque input), EvalAwi (read-only output query), Loop/Net (self-driving
// feedback ports), and Corresponder (cross-epoch handle transposition).
// Every handle is ultimately backed by an ensemble.RNode.
package handle

import (
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// LazyAwi is a retroactively-writable bit vector: its bits start Unknown
// and can be driven at any time via Retro/RetroUint64/RetroUnknown, with the
// effect visible the next time any EvalAwi downstream of it is evaluated.
type LazyAwi struct {
	e        *ensemble.Ensemble
	pRNode   ensemble.PRNode
	external ensemble.PExternal
	width    int
}

// NewLazyOpaque creates a width-bit LazyAwi with every bit Unknown.
func NewLazyOpaque(e *ensemble.Ensemble, width int) (*LazyAwi, error) {
	if width <= 0 {
		return nil, ensemble.ErrWrongBitwidth()
	}
	bits := make([]*ensemble.PBack, width)
	for i := range bits {
		b := e.MakeOpaque()
		bits[i] = &b
	}
	pr, ext := e.Notary().InsertRNode(ensemble.RNode{Bits: bits})
	return &LazyAwi{e: e, pRNode: pr, external: ext, width: width}, nil
}

// NewLazyZero creates a width-bit LazyAwi pre-driven to all zero bits, the
// Go analogue of the original's `LazyAwi::zero` initializer.
func NewLazyZero(e *ensemble.Ensemble, width int) (*LazyAwi, error) {
	l, err := NewLazyOpaque(e, width)
	if err != nil {
		return nil, err
	}
	if err := l.Retro(make([]bool, width)); err != nil {
		return nil, err
	}
	return l, nil
}

// Width returns the bit width of this handle.
func (l *LazyAwi) Width() int { return l.width }

// External returns the cross-epoch key naming this handle's RNode.
func (l *LazyAwi) External() ensemble.PExternal { return l.external }

func (l *LazyAwi) rnode() (*ensemble.RNode, error) {
	rn, ok := l.e.Notary().Get(l.pRNode)
	if !ok {
		return nil, ensemble.ErrInvalidPExternal(l.external)
	}
	return rn, nil
}

// Retro retroactively drives every bit of this handle to the corresponding
// entry of bits, which must have length Width().
func (l *LazyAwi) Retro(bits []bool) error {
	if len(bits) != l.width {
		return ensemble.ErrBitwidthMismatch(l.width, len(bits))
	}
	rn, err := l.rnode()
	if err != nil {
		return err
	}
	for i, b := range bits {
		if rn.Bits[i] == nil {
			continue // bit was pruned away, nothing left to drive
		}
		if err := l.e.ChangeValue(*rn.Bits[i], ensemble.Dynam(b)); err != nil {
			return err
		}
	}
	return l.e.RestartRequestPhase()
}

// RetroUint64 drives the low Width() bits of v (LSB-first), for handles
// narrow enough to fit in a uint64.
func (l *LazyAwi) RetroUint64(v uint64) error {
	if l.width > 64 {
		return ensemble.ErrWrongBitwidth()
	}
	bits := make([]bool, l.width)
	for i := range bits {
		bits[i] = (v>>uint(i))&1 != 0
	}
	return l.Retro(bits)
}

// RetroUnknown drives every bit of this handle back to Unknown.
func (l *LazyAwi) RetroUnknown() error {
	rn, err := l.rnode()
	if err != nil {
		return err
	}
	for _, b := range rn.Bits {
		if b == nil {
			continue
		}
		if err := l.e.ChangeValue(*b, ensemble.Unknown); err != nil {
			return err
		}
	}
	return l.e.RestartRequestPhase()
}

// Drive wires this handle's bits as the driven source of driver's bits with
// zero delay (see DriveWithDelay), the handle-layer equivalent of a TNode.
func (l *LazyAwi) Drive(driver *LazyAwi) error {
	return l.DriveWithDelay(driver, ensemble.Zero())
}

// DriveWithDelay wires this handle's bits as the driven source of driver's
// bits with the given delay: from now on, whenever driver's value settles,
// this handle's value follows it delay time-steps later, instead of being
// retroactively writable directly.
func (l *LazyAwi) DriveWithDelay(driver *LazyAwi, delay ensemble.Delay) error {
	if l.width != driver.width {
		return ensemble.ErrBitwidthMismatch(l.width, driver.width)
	}
	selfRn, err := l.rnode()
	if err != nil {
		return err
	}
	driverRn, err := driver.rnode()
	if err != nil {
		return err
	}
	for i := range selfRn.Bits {
		if selfRn.Bits[i] == nil || driverRn.Bits[i] == nil {
			continue
		}
		l.e.MakeTNode(*selfRn.Bits[i], *driverRn.Bits[i], delay)
		if err := l.e.Propagate(*driverRn.Bits[i]); err != nil {
			return err
		}
	}
	return nil
}

// SetDebugName attaches a human-readable name to this handle's RNode, for
// debug output only.
func (l *LazyAwi) SetDebugName(name string) error {
	rn, err := l.rnode()
	if err != nil {
		return err
	}
	rn.DebugName = name
	return nil
}

// Drop releases this handle's hold on its bits. Go has no destructors, so
// unlike the original's Drop impl this must be called explicitly once the
// handle is no longer needed.
func (l *LazyAwi) Drop() error {
	return l.e.RemoveRNode(l.pRNode)
}
