package lower

import (
	"github.com/latticeforge/ensemble/pkg/bit"
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// Shared 1- and 2-input tables, reused across every recipe that needs a gate
// rather than building one ad hoc.
var (
	notTable      = bit.FromUint64(0b01, 1)
	identityTable = bit.FromUint64(0b10, 1)
	andTable      = bit.FromUint64(0b1000, 2)
	orTable       = bit.FromUint64(0b1110, 2)
	xorTable      = bit.FromUint64(0b0110, 2)
	xnorTable     = bit.FromUint64(0b1001, 2)
)

var (
	adderSumTable   = buildAdderTable(func(a, b, c bool) bool { return a != b != c })
	adderCarryTable = buildAdderTable(func(a, b, c bool) bool { return (a && b) || (a && c) || (b && c) })
)

func buildAdderTable(f func(a, b, c bool) bool) *bit.Table {
	t := bit.NewTable(3)
	for idx := 0; idx < 8; idx++ {
		t.Set(idx, f(idx&1 != 0, (idx>>1)&1 != 0, (idx>>2)&1 != 0))
	}
	return t
}

func litBit(e *ensemble.Ensemble, v bool) ensemble.PState {
	return e.MakeState(1, ensemble.Op[ensemble.PState]{Tag: ensemble.OpLiteral, Lit: bit.FromBools([]bool{v})})
}

func litBits(e *ensemble.Ensemble, v bool, n int) []ensemble.PState {
	out := make([]ensemble.PState, n)
	z := litBit(e, v)
	for i := range out {
		out[i] = z
	}
	return out
}

func bitOf(e *ensemble.Ensemble, src ensemble.PState, i int) ensemble.PState {
	return e.MakeState(1, ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticGet, Operands: []ensemble.PState{src}, StaticIdx: i})
}

func bitsOf(e *ensemble.Ensemble, src ensemble.PState, n int) []ensemble.PState {
	out := make([]ensemble.PState, n)
	for i := range out {
		out[i] = bitOf(e, src, i)
	}
	return out
}

func concatBits(bits []ensemble.PState) ensemble.Op[ensemble.PState] {
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpConcatFields, Operands: bits}
}

// singleBit wraps a single already-built bit as the Op replacing a
// 1-bit-wide composite state (comparisons, predicates).
func singleBit(bit ensemble.PState) ensemble.Op[ensemble.PState] {
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpCopy, Operands: []ensemble.PState{bit}}
}

func lut1(e *ensemble.Ensemble, a ensemble.PState, table *bit.Table) ensemble.PState {
	return e.MakeState(1, ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticLut, Operands: []ensemble.PState{a}, Lit: table})
}

func lut2(e *ensemble.Ensemble, a, b ensemble.PState, table *bit.Table) ensemble.PState {
	return e.MakeState(1, ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticLut, Operands: []ensemble.PState{a, b}, Lit: table})
}

func lut3(e *ensemble.Ensemble, a, b, c ensemble.PState, table *bit.Table) ensemble.PState {
	return e.MakeState(1, ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticLut, Operands: []ensemble.PState{a, b, c}, Lit: table})
}

func invertBits(e *ensemble.Ensemble, bits []ensemble.PState) []ensemble.PState {
	out := make([]ensemble.PState, len(bits))
	for i, b := range bits {
		out[i] = lut1(e, b, notTable)
	}
	return out
}

func andReduce(e *ensemble.Ensemble, bits []ensemble.PState) ensemble.PState {
	acc := bits[0]
	for i := 1; i < len(bits); i++ {
		acc = lut2(e, acc, bits[i], andTable)
	}
	return acc
}

// dynamicSelect builds an N-way runtime-selected mux: selBits read
// little-endian as a binary index choose among choices, len(choices) ==
// 1<<len(selBits). This is the general crossbar/general_mux primitive every
// dynamic-selection recipe (Mux, Funnel/shifts, dynamic Get/Set, Resize's
// extension choice) reduces to.
func dynamicSelect(e *ensemble.Ensemble, selBits, choices []ensemble.PState) ensemble.PState {
	operands := make([]ensemble.PState, 0, len(selBits)+len(choices))
	operands = append(operands, selBits...)
	operands = append(operands, choices...)
	return e.MakeState(1, ensemble.Op[ensemble.PState]{Tag: ensemble.OpDynamicLut, Operands: operands, StaticIdx: len(selBits)})
}

// bitsNeeded returns the smallest k with 1<<k >= n (k==1 for n<=1, so a
// single-slot selection is still addressable by a real, if degenerate,
// selector).
func bitsNeeded(n int) int {
	if n <= 1 {
		return 1
	}
	k := 0
	for (1 << uint(k)) < n {
		k++
	}
	return k
}

// fullAdder returns one bit-slice's sum and carry-out.
func fullAdder(e *ensemble.Ensemble, a, b, cin ensemble.PState) (sum, cout ensemble.PState) {
	return lut3(e, a, b, cin, adderSumTable), lut3(e, a, b, cin, adderCarryTable)
}

// addBits ripple-adds aBits+bBits+cin, both slices the same length, and
// returns the same-width sum plus the final carry out.
func addBits(e *ensemble.Ensemble, aBits, bBits []ensemble.PState, cin ensemble.PState) ([]ensemble.PState, ensemble.PState) {
	n := len(aBits)
	sums := make([]ensemble.PState, n)
	carry := cin
	for i := 0; i < n; i++ {
		sums[i], carry = fullAdder(e, aBits[i], bBits[i], carry)
	}
	return sums, carry
}

// condNegate two's-complement negates bits when neg is true, passing them
// through unchanged when neg is false (the original's incrementer/negator
// half-adder-with-inversion-control trick): out = (bits XOR neg) + neg.
func condNegate(e *ensemble.Ensemble, bits []ensemble.PState, neg ensemble.PState) ([]ensemble.PState, ensemble.PState) {
	xored := make([]ensemble.PState, len(bits))
	for i, b := range bits {
		xored[i] = lut2(e, b, neg, xorTable)
	}
	return addBits(e, xored, litBits(e, false, len(bits)), neg)
}

// subWithFlags computes a-b via two's complement, returning the difference,
// the unsigned-less-than flag (borrow occurred) and the signed-overflow flag
// of the subtraction, the three quantities every comparison recipe is built
// from.
func subWithFlags(e *ensemble.Ensemble, aBits, bBits []ensemble.PState) (diff []ensemble.PState, ult, signedOverflow ensemble.PState) {
	notB := invertBits(e, bBits)
	diff, cout := addBits(e, aBits, notB, litBit(e, true))
	ult = lut1(e, cout, notTable)
	n := len(aBits)
	aSign, bSign, diffSign := aBits[n-1], bBits[n-1], diff[n-1]
	signsDiffer := lut2(e, aSign, bSign, xorTable)
	diffFromA := lut2(e, diffSign, aSign, xorTable)
	signedOverflow = lut2(e, signsDiffer, diffFromA, andTable)
	return
}

// isEqualConstBits builds an AND-tree testing bits against the fixed
// pattern want (grounded on the original's `equal` reduction specialized to
// a compile-time-known operand -- IsZero/IsUmax/IsImax/IsImin/IsUone).
func isEqualConstBits(e *ensemble.Ensemble, bits []ensemble.PState, want []bool) ensemble.PState {
	eqBits := make([]ensemble.PState, len(bits))
	for i, b := range bits {
		if want[i] {
			eqBits[i] = lut1(e, b, identityTable)
		} else {
			eqBits[i] = lut1(e, b, notTable)
		}
	}
	return andReduce(e, eqBits)
}

// popCount ripple-accumulates each flag into a width-wide binary counter.
func popCount(e *ensemble.Ensemble, flags []ensemble.PState, width int) []ensemble.PState {
	acc := litBits(e, false, width)
	for _, f := range flags {
		addend := make([]ensemble.PState, width)
		addend[0] = f
		copy(addend[1:], litBits(e, false, width-1))
		acc, _ = addBits(e, acc, addend, litBit(e, false))
	}
	return acc
}

// funnelSelect builds outWidth bits, each picked from srcAt(i, shift) for
// whichever shift value selBits currently encodes -- the N-way dynamic mux
// underlying Funnel and every shift/rotate recipe.
func funnelSelect(e *ensemble.Ensemble, selBits []ensemble.PState, outWidth int, srcAt func(outIdx, shift int) ensemble.PState) []ensemble.PState {
	span := 1 << uint(len(selBits))
	out := make([]ensemble.PState, outWidth)
	for i := 0; i < outWidth; i++ {
		choices := make([]ensemble.PState, span)
		for k := 0; k < span; k++ {
			choices[k] = srcAt(i, k)
		}
		out[i] = dynamicSelect(e, selBits, choices)
	}
	return out
}
