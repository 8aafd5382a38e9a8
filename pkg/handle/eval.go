package handle

import "github.com/latticeforge/ensemble/pkg/ensemble"

// EvalAwi is a read-only handle onto a bit vector's resolved value, queried
// via Eval/EvalBit. It never drives anything; it only requests values.
type EvalAwi struct {
	e    *ensemble.Ensemble
	bits []ensemble.PBack
}

// FromBits builds an EvalAwi directly over an existing set of equivalence
// classes (e.g. LNode outputs), the Go analogue of the original's
// `EvalAwi::from_bits`.
func FromBits(e *ensemble.Ensemble, bits []ensemble.PBack) *EvalAwi {
	return &EvalAwi{e: e, bits: append([]ensemble.PBack(nil), bits...)}
}

// Width returns the number of bits this handle reads.
func (v *EvalAwi) Width() int { return len(v.bits) }

// EvalBit resolves and returns bit i's current value.
func (v *EvalAwi) EvalBit(i int) (bool, error) {
	val, err := v.e.RequestValue(v.bits[i])
	if err != nil {
		return false, err
	}
	b, _ := val.KnownValue()
	return b, nil
}

// Eval resolves and returns every bit's current value, LSB first.
func (v *EvalAwi) Eval() ([]bool, error) {
	out := make([]bool, len(v.bits))
	for i := range v.bits {
		b, err := v.EvalBit(i)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// EvalUint64 resolves this handle as an unsigned integer, LSB first. Fails
// with ErrWrongBitwidth if Width() exceeds 64.
func (v *EvalAwi) EvalUint64() (uint64, error) {
	if len(v.bits) > 64 {
		return 0, ensemble.ErrWrongBitwidth()
	}
	bits, err := v.Eval()
	if err != nil {
		return 0, err
	}
	var out uint64
	for i, b := range bits {
		if b {
			out |= 1 << uint(i)
		}
	}
	return out, nil
}
