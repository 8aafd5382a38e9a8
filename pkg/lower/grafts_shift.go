package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

// graftFunnel grafts the funnel shifter (starlight/src/lower/meta.rs:469
// funnel): a 2n-wide window operand and a shift selector produce an n-wide
// output, out[i] = wide[i+shift]. shl/lshr/ashr/rotl/rotr below all reduce
// to this same sliding-window dynamic select over a differently constructed
// window, matching how meta.rs builds each of them on top of funnel.
func graftFunnel(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	outWidth, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	wide, shiftState := op.Operands[0], op.Operands[1]
	wideWidth, ok := e.StateNzbw(wide)
	if !ok || wideWidth != 2*outWidth {
		return op, ensemble.ErrWrongBitwidth()
	}
	selWidth := bitsNeeded(outWidth)
	selBits := bitsOf(e, shiftState, selWidth)
	wideBits := bitsOf(e, wide, wideWidth)
	outBits := funnelSelect(e, selBits, outWidth, func(i, shift int) ensemble.PState {
		idx := i + shift
		if idx >= wideWidth {
			idx = wideWidth - 1
		}
		return wideBits[idx]
	})
	return concatBits(outBits), nil
}

// graftShl grafts a dynamic-width left shift: out[i] = x[i-shift] when
// i>=shift, else 0.
func graftShl(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], n)
	zero := litBit(e, false)
	selWidth := bitsNeeded(n)
	selBits := bitsOf(e, op.Operands[1], selWidth)
	outBits := funnelSelect(e, selBits, n, func(i, shift int) ensemble.PState {
		if i-shift < 0 {
			return zero
		}
		return xBits[i-shift]
	})
	return concatBits(outBits), nil
}

// graftLshr grafts a dynamic-width logical right shift: out[i] = x[i+shift]
// when in range, else 0.
func graftLshr(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], n)
	zero := litBit(e, false)
	selWidth := bitsNeeded(n)
	selBits := bitsOf(e, op.Operands[1], selWidth)
	outBits := funnelSelect(e, selBits, n, func(i, shift int) ensemble.PState {
		if i+shift >= n {
			return zero
		}
		return xBits[i+shift]
	})
	return concatBits(outBits), nil
}

// graftAshr grafts a dynamic-width arithmetic right shift: like Lshr but the
// vacated high bits are filled with the sign bit instead of zero.
func graftAshr(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], n)
	sign := xBits[n-1]
	selWidth := bitsNeeded(n)
	selBits := bitsOf(e, op.Operands[1], selWidth)
	outBits := funnelSelect(e, selBits, n, func(i, shift int) ensemble.PState {
		if i+shift >= n {
			return sign
		}
		return xBits[i+shift]
	})
	return concatBits(outBits), nil
}

// graftRotl grafts a dynamic-width left rotate: out[i] = x[(i-shift) mod n].
func graftRotl(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], n)
	selWidth := bitsNeeded(n)
	selBits := bitsOf(e, op.Operands[1], selWidth)
	outBits := funnelSelect(e, selBits, n, func(i, shift int) ensemble.PState {
		idx := ((i-shift)%n + n) % n
		return xBits[idx]
	})
	return concatBits(outBits), nil
}

// graftRotr grafts a dynamic-width right rotate: out[i] = x[(i+shift) mod n].
func graftRotr(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], n)
	selWidth := bitsNeeded(n)
	selBits := bitsOf(e, op.Operands[1], selWidth)
	outBits := funnelSelect(e, selBits, n, func(i, shift int) ensemble.PState {
		idx := (i + shift) % n
		return xBits[idx]
	})
	return concatBits(outBits), nil
}
