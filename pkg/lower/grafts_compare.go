package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

func operandWidths(e *ensemble.Ensemble, op ensemble.Op[ensemble.PState]) (n int, ok bool) {
	if len(op.Operands) != 2 {
		return 0, false
	}
	n, ok = e.StateNzbw(op.Operands[0])
	return n, ok
}

// graftEq grafts equality as an AND-tree of per-bit XNORs (meta.rs equal's
// binary-tree XNOR reduction, flattened to a linear chain).
func graftEq(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := operandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	eqBits := make([]ensemble.PState, n)
	for i := range eqBits {
		eqBits[i] = lut2(e, aBits[i], bBits[i], xnorTable)
	}
	return singleBit(andReduce(e, eqBits)), nil
}

func graftNe(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	eqOp, err := graftEq(e, self, op)
	if err != nil {
		return op, err
	}
	return singleBit(lut1(e, eqOp.Operands[0], notTable)), nil
}

// graftUlt grafts unsigned a<b as the borrow flag of a-b (meta.rs's
// comparison family is built on the same subtractor used for Sub).
func graftUlt(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := operandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	_, ult, _ := subWithFlags(e, aBits, bBits)
	return singleBit(ult), nil
}

// graftUle grafts unsigned a<=b as NOT(b<a).
func graftUle(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := operandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	_, bLtA, _ := subWithFlags(e, bBits, aBits)
	return singleBit(lut1(e, bLtA, notTable)), nil
}

// graftIlt grafts signed a<b via the classic sign/overflow rule on a-b:
// SF != OF.
func graftIlt(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := operandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	diff, _, overflow := subWithFlags(e, aBits, bBits)
	ilt := lut2(e, diff[n-1], overflow, xorTable)
	return singleBit(ilt), nil
}

// graftIle grafts signed a<=b as NOT(b<a).
func graftIle(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := operandWidths(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	aBits := bitsOf(e, op.Operands[0], n)
	bBits := bitsOf(e, op.Operands[1], n)
	diff, _, overflow := subWithFlags(e, bBits, aBits)
	bLtA := lut2(e, diff[n-1], overflow, xorTable)
	return singleBit(lut1(e, bLtA, notTable)), nil
}

func predicateWidth(e *ensemble.Ensemble, op ensemble.Op[ensemble.PState]) (int, bool) {
	if len(op.Operands) != 1 {
		return 0, false
	}
	return e.StateNzbw(op.Operands[0])
}

// graftIsZero grafts the operand==0 predicate.
func graftIsZero(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	bits := bitsOf(e, op.Operands[0], n)
	want := make([]bool, n)
	return singleBit(isEqualConstBits(e, bits, want)), nil
}

// graftIsUmax grafts the operand==all-ones (unsigned max) predicate.
func graftIsUmax(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	bits := bitsOf(e, op.Operands[0], n)
	want := make([]bool, n)
	for i := range want {
		want[i] = true
	}
	return singleBit(isEqualConstBits(e, bits, want)), nil
}

// graftIsImax grafts the operand==0111...1 (signed max) predicate.
func graftIsImax(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	bits := bitsOf(e, op.Operands[0], n)
	want := make([]bool, n)
	for i := 0; i < n-1; i++ {
		want[i] = true
	}
	return singleBit(isEqualConstBits(e, bits, want)), nil
}

// graftIsImin grafts the operand==1000...0 (signed min) predicate.
func graftIsImin(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	bits := bitsOf(e, op.Operands[0], n)
	want := make([]bool, n)
	want[n-1] = true
	return singleBit(isEqualConstBits(e, bits, want)), nil
}

// graftIsUone grafts the operand==1 predicate.
func graftIsUone(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	bits := bitsOf(e, op.Operands[0], n)
	want := make([]bool, n)
	want[0] = true
	return singleBit(isEqualConstBits(e, bits, want)), nil
}

// graftCountOnes grafts population count via a ripple popcount accumulator
// (meta.rs count_ones, here a linear accumulate rather than its carry-save
// binary tree -- same result, different gate depth).
func graftCountOnes(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	w, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	bits := bitsOf(e, op.Operands[0], n)
	return concatBits(popCount(e, bits, w)), nil
}

// leadingZeroFlags/trailingZeroFlags build the monotone prefix-AND sequence
// meta.rs's tsmear produces: flags[i] is true iff the top (or bottom) i bits
// are all zero, so popCount(flags[1:]) directly counts leading (or
// trailing) zeros.
func leadingZeroFlags(e *ensemble.Ensemble, bits []ensemble.PState) []ensemble.PState {
	n := len(bits)
	notBits := invertBits(e, bits)
	flags := make([]ensemble.PState, n+1)
	flags[0] = litBit(e, true)
	for i := 1; i <= n; i++ {
		flags[i] = lut2(e, flags[i-1], notBits[n-i], andTable)
	}
	return flags[1:]
}

func trailingZeroFlags(e *ensemble.Ensemble, bits []ensemble.PState) []ensemble.PState {
	n := len(bits)
	notBits := invertBits(e, bits)
	flags := make([]ensemble.PState, n+1)
	flags[0] = litBit(e, true)
	for i := 1; i <= n; i++ {
		flags[i] = lut2(e, flags[i-1], notBits[i-1], andTable)
	}
	return flags[1:]
}

// graftLz grafts leading-zero count.
func graftLz(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	w, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	bits := bitsOf(e, op.Operands[0], n)
	return concatBits(popCount(e, leadingZeroFlags(e, bits), w)), nil
}

// graftTz grafts trailing-zero count.
func graftTz(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	w, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	bits := bitsOf(e, op.Operands[0], n)
	return concatBits(popCount(e, trailingZeroFlags(e, bits), w)), nil
}

// graftSig grafts the number of significant bits (bitwidth minus leading
// zeros; 0 for an all-zero operand, which falls out for free since lz(0)==n
// with this construction) as n - lz(x) (meta.rs significant_bits, built atop
// the same leading-zero count).
func graftSig(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	n, ok := predicateWidth(e, op)
	if !ok {
		return op, ensemble.ErrWrongBitwidth()
	}
	w, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	bits := bitsOf(e, op.Operands[0], n)
	lzBits := popCount(e, leadingZeroFlags(e, bits), w)
	nBits := make([]ensemble.PState, w)
	for i := range nBits {
		nBits[i] = litBit(e, (n>>uint(i))&1 != 0)
	}
	sig, _ := addBits(e, nBits, invertBits(e, lzBits), litBit(e, true))
	return concatBits(sig), nil
}
