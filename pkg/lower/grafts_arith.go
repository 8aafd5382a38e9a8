package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

// graftAdd grafts a ripple-carry adder for two equal-width operands
// (starlight/src/lower/meta.rs cin_sum with a zero carry-in), ignoring
// overflow -- a wrapping fixed-width add.
func graftAdd(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	aBits := bitsOf(e, op.Operands[0], nzbw)
	bBits := bitsOf(e, op.Operands[1], nzbw)
	sums, _ := addBits(e, aBits, bBits, litBit(e, false))
	return concatBits(sums), nil
}

// graftSub grafts a-b as a + ~b + 1 (two's complement subtraction), the
// incrementer/cin_sum combination from meta.rs.
func graftSub(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	aBits := bitsOf(e, op.Operands[0], nzbw)
	bBits := invertBits(e, bitsOf(e, op.Operands[1], nzbw))
	sums, _ := addBits(e, aBits, bBits, litBit(e, true))
	return concatBits(sums), nil
}

// graftRsb grafts the reverse subtraction b-a, for operators where operand
// order matters (e.g. a constant left-hand side).
func graftRsb(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	bBits := bitsOf(e, op.Operands[1], nzbw)
	aBits := invertBits(e, bitsOf(e, op.Operands[0], nzbw))
	sums, _ := addBits(e, bBits, aBits, litBit(e, true))
	return concatBits(sums), nil
}

// graftCinSum grafts a carry-in-supplied add (cin, a, b) -> a+b+cin, the
// building block meta.rs's cin_sum exposes directly for composing
// incrementers and multi-limb adders.
func graftCinSum(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 3 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	cin := bitOf(e, op.Operands[0], 0)
	aBits := bitsOf(e, op.Operands[1], nzbw)
	bBits := bitsOf(e, op.Operands[2], nzbw)
	sums, _ := addBits(e, aBits, bBits, cin)
	return concatBits(sums), nil
}

// graftInc grafts x+1 via meta.rs's incrementer: add with a zero operand and
// carry-in fixed true.
func graftInc(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], nzbw)
	sums, _ := addBits(e, xBits, litBits(e, false, nzbw), litBit(e, true))
	return concatBits(sums), nil
}

// graftDec grafts x-1 as x + all-ones (add -1 in two's complement).
func graftDec(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], nzbw)
	sums, _ := addBits(e, xBits, litBits(e, true, nzbw), litBit(e, false))
	return concatBits(sums), nil
}

// graftNeg grafts two's-complement negation -x = ~x+1, the degenerate
// always-negate case of meta.rs's negator.
func graftNeg(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], nzbw)
	sums, _ := condNegate(e, xBits, litBit(e, true))
	return concatBits(sums), nil
}

// graftAbs grafts the absolute value via meta.rs's negator with the sign bit
// itself as the negate-control input: negate exactly when x is negative.
func graftAbs(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], nzbw)
	sign := xBits[nzbw-1]
	sums, _ := condNegate(e, xBits, sign)
	return concatBits(sums), nil
}

// graftMul grafts a plain product as an accumulate-multiply onto a zero
// accumulator, sharing graftArbMulAdd's shift-and-add expansion (mulAdd).
func graftMul(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	aBits := bitsOf(e, op.Operands[0], nzbw)
	bBits := bitsOf(e, op.Operands[1], nzbw)
	sums := mulAdd(e, litBits(e, false, nzbw), aBits, bBits)
	return concatBits(sums), nil
}

// graftArbMulAdd grafts the multiply-accumulate acc+a*b (meta.rs:1094
// mul_add), the form spec's 16-bit-multiply scenario (`out += a*b`) needs.
func graftArbMulAdd(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 3 {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	accBits := bitsOf(e, op.Operands[0], nzbw)
	aBits := bitsOf(e, op.Operands[1], nzbw)
	bBits := bitsOf(e, op.Operands[2], nzbw)
	sums := mulAdd(e, accBits, aBits, bBits)
	return concatBits(sums), nil
}

// mulAdd computes acc + a*b mod 2^n via the schoolbook shift-and-add
// expansion of meta.rs's partial-product placement: for every set bit j of
// b, acc is conditionally incremented by a<<j. Each partial product is
// a<<j with every bit ANDed with b[j] (one 2-input LUT per bit), then
// folded in with a ripple add, a linear-depth stand-
// in for meta.rs's carry-save Wallace-tree reduction that is exact for the
// same result (just not the same gate depth).
func mulAdd(e *ensemble.Ensemble, accBits, aBits, bBits []ensemble.PState) []ensemble.PState {
	n := len(accBits)
	acc := accBits
	for j := 0; j < n; j++ {
		partial := make([]ensemble.PState, n)
		for i := 0; i < n; i++ {
			if i < j {
				partial[i] = litBit(e, false)
				continue
			}
			partial[i] = lut2(e, aBits[i-j], bBits[j], andTable)
		}
		acc, _ = addBits(e, acc, partial, litBit(e, false))
	}
	return acc
}
