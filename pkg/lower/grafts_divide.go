package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

// udivmod grafts unsigned division via restoring division (a width-at-a-time
// simplification of meta.rs's bit-serial nonrestoring division at
// starlight/src/lower/meta.rs:1182: same quotient/remainder, one compare-
// subtract per dividend bit instead of the nonrestoring nudge-and-correct
// scheme). Both aBits and bBits must be the same width n; returns the n-bit
// quotient and n-bit remainder.
func udivmod(e *ensemble.Ensemble, aBits, bBits []ensemble.PState) (quo, rem []ensemble.PState) {
	n := len(aBits)
	divisorExt := append(append([]ensemble.PState{}, bBits...), litBit(e, false))
	remainder := litBits(e, false, n)
	quo = make([]ensemble.PState, n)
	for i := n - 1; i >= 0; i-- {
		shifted := make([]ensemble.PState, n+1)
		shifted[0] = aBits[i]
		copy(shifted[1:], remainder)
		diff, ult, _ := subWithFlags(e, shifted, divisorExt)
		quoBit := lut1(e, ult, notTable)
		next := make([]ensemble.PState, n)
		for k := 0; k < n; k++ {
			next[k] = dynamicSelect(e, []ensemble.PState{quoBit}, []ensemble.PState{shifted[k], diff[k]})
		}
		remainder = next
		quo[i] = quoBit
	}
	return quo, remainder
}

func divOperandWidths(e *ensemble.Ensemble, op ensemble.Op[ensemble.PState]) (int, bool) {
	if len(op.Operands) != 2 {
		return 0, false
	}
	return e.StateNzbw(op.Operands[0])
}

func graftUQuo(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := divOperandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	quo, _ := udivmod(e, aBits, bBits)
	return concatBits(quo), nil
}

func graftURem(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := divOperandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	_, rem := udivmod(e, aBits, bBits)
	return concatBits(rem), nil
}

// graftIQuo grafts signed truncating division by taking the magnitude
// quotient of the absolute values and reapplying the XOR of the operand
// signs (meta.rs's division is unsigned; the signed entry points there wrap
// it the same way).
func graftIQuo(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := divOperandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	signA, signB := aBits[n-1], bBits[n-1]
	absA, _ := condNegate(e, aBits, signA)
	absB, _ := condNegate(e, bBits, signB)
	quo, _ := udivmod(e, absA, absB)
	quoSign := lut2(e, signA, signB, xorTable)
	signedQuo, _ := condNegate(e, quo, quoSign)
	return concatBits(signedQuo), nil
}

// graftIRem grafts signed remainder: the magnitude remainder of the
// absolute-value division, with the dividend's sign reapplied (truncating
// division's remainder always carries the dividend's sign).
func graftIRem(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := divOperandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	signA, signB := aBits[n-1], bBits[n-1]
	absA, _ := condNegate(e, aBits, signA)
	absB, _ := condNegate(e, bBits, signB)
	_, rem := udivmod(e, absA, absB)
	signedRem, _ := condNegate(e, rem, signA)
	return concatBits(signedRem), nil
}
