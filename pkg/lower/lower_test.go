package lower

import (
	"testing"

	"github.com/latticeforge/ensemble/pkg/ensemble"
)

func newArgument(t *testing.T, e *ensemble.Ensemble, width int) ensemble.PState {
	t.Helper()
	return e.MakeState(width, ensemble.Op[ensemble.PState]{Tag: ensemble.OpArgument})
}

func driveUint64(t *testing.T, e *ensemble.Ensemble, p ensemble.PState, width int, v uint64) {
	t.Helper()
	for i := 0; i < width; i++ {
		b, err := e.SelfBit(p, i)
		if err != nil {
			t.Fatalf("SelfBit(%d): %v", i, err)
		}
		if b == nil {
			continue
		}
		if err := e.ChangeValue(*b, ensemble.Dynam((v>>uint(i))&1 != 0)); err != nil {
			t.Fatalf("ChangeValue(%d): %v", i, err)
		}
	}
}

func readUint64(t *testing.T, e *ensemble.Ensemble, p ensemble.PState, width int) uint64 {
	t.Helper()
	var out uint64
	for i := 0; i < width; i++ {
		b, err := e.SelfBit(p, i)
		if err != nil {
			t.Fatalf("SelfBit(%d): %v", i, err)
		}
		if b == nil {
			continue
		}
		val, err := e.RequestValue(*b)
		if err != nil {
			t.Fatalf("RequestValue(%d): %v", i, err)
		}
		bv, known := val.KnownValue()
		if !known {
			t.Fatalf("bit %d: expected a known value, got %v", i, val)
		}
		if bv {
			out |= uint64(1) << uint(i)
		}
	}
	return out
}

// TestArbMulAddSixteenBitMultiply reproduces the canonical 16-bit multiply
// scenario: a zero accumulator, out += a*b with a=123, b=77, expecting 9471.
func TestArbMulAddSixteenBitMultiply(t *testing.T) {
	e := ensemble.New()
	const width = 16

	a := newArgument(t, e, width)
	b := newArgument(t, e, width)
	acc := e.MakeState(width, concatBits(litBits(e, false, width)))
	mulAdd := e.MakeState(width, ensemble.Op[ensemble.PState]{
		Tag:      ensemble.OpArbMulAdd,
		Operands: []ensemble.PState{acc, a, b},
	})

	if err := DfsLowerStateToElementary(e, mulAdd); err != nil {
		t.Fatalf("DfsLowerStateToElementary: %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, mulAdd); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes: %v", err)
	}

	driveUint64(t, e, a, width, 123)
	driveUint64(t, e, b, width, 77)

	got := readUint64(t, e, mulAdd, width)
	if got != 9471 {
		t.Fatalf("123*77: expected 9471, got %d", got)
	}
}

// TestArbMulAddAccumulates checks that ArbMulAdd adds onto a nonzero
// accumulator rather than just computing a bare product.
func TestArbMulAddAccumulates(t *testing.T) {
	e := ensemble.New()
	const width = 16

	a := newArgument(t, e, width)
	b := newArgument(t, e, width)
	acc := newArgument(t, e, width)
	mulAdd := e.MakeState(width, ensemble.Op[ensemble.PState]{
		Tag:      ensemble.OpArbMulAdd,
		Operands: []ensemble.PState{acc, a, b},
	})

	if err := DfsLowerStateToElementary(e, mulAdd); err != nil {
		t.Fatalf("DfsLowerStateToElementary: %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, mulAdd); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes: %v", err)
	}

	driveUint64(t, e, acc, width, 1000)
	driveUint64(t, e, a, width, 12)
	driveUint64(t, e, b, width, 5)

	got := readUint64(t, e, mulAdd, width)
	if got != 1060 {
		t.Fatalf("1000+12*5: expected 1060, got %d", got)
	}
}

func testShift(t *testing.T, tag ensemble.OpTag, width int, x uint64, shiftAmt uint64, want uint64) {
	t.Helper()
	e := ensemble.New()
	shiftWidth := bitsNeeded(width)
	xState := newArgument(t, e, width)
	shState := newArgument(t, e, shiftWidth)
	shifted := e.MakeState(width, ensemble.Op[ensemble.PState]{
		Tag:      tag,
		Operands: []ensemble.PState{xState, shState},
	})

	if err := DfsLowerStateToElementary(e, shifted); err != nil {
		t.Fatalf("DfsLowerStateToElementary: %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, shifted); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes: %v", err)
	}

	driveUint64(t, e, xState, width, x)
	driveUint64(t, e, shState, shiftWidth, shiftAmt)

	got := readUint64(t, e, shifted, width)
	if got != want {
		t.Fatalf("tag %v: x=%#x shift=%d: expected %#x, got %#x", tag, x, shiftAmt, want, got)
	}
}

func TestShiftFamilyAgainstFunnel(t *testing.T) {
	testShift(t, ensemble.OpShl, 8, 0b00000101, 2, 0b00010100)
	testShift(t, ensemble.OpLshr, 8, 0b10100000, 3, 0b00010100)
	testShift(t, ensemble.OpAshr, 8, 0b10100000, 3, 0b11110100)
	testShift(t, ensemble.OpRotl, 8, 0b10000001, 1, 0b00000011)
	testShift(t, ensemble.OpRotr, 8, 0b10000001, 1, 0b11000000)
}

func TestUnsignedDivision(t *testing.T) {
	e := ensemble.New()
	const width = 8

	a := newArgument(t, e, width)
	b := newArgument(t, e, width)
	quo := e.MakeState(width, ensemble.Op[ensemble.PState]{Tag: ensemble.OpUQuo, Operands: []ensemble.PState{a, b}})
	rem := e.MakeState(width, ensemble.Op[ensemble.PState]{Tag: ensemble.OpURem, Operands: []ensemble.PState{a, b}})

	if err := DfsLowerStateToElementary(e, quo); err != nil {
		t.Fatalf("DfsLowerStateToElementary(quo): %v", err)
	}
	if err := DfsLowerStateToElementary(e, rem); err != nil {
		t.Fatalf("DfsLowerStateToElementary(rem): %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, quo); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes(quo): %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, rem); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes(rem): %v", err)
	}

	driveUint64(t, e, a, width, 200)
	driveUint64(t, e, b, width, 7)

	gotQuo := readUint64(t, e, quo, width)
	gotRem := readUint64(t, e, rem, width)
	if gotQuo != 28 || gotRem != 4 {
		t.Fatalf("200/7: expected quo=28 rem=4, got quo=%d rem=%d", gotQuo, gotRem)
	}
}

func TestSignedDivisionTruncatesTowardZero(t *testing.T) {
	e := ensemble.New()
	const width = 8

	a := newArgument(t, e, width)
	b := newArgument(t, e, width)
	quo := e.MakeState(width, ensemble.Op[ensemble.PState]{Tag: ensemble.OpIQuo, Operands: []ensemble.PState{a, b}})
	rem := e.MakeState(width, ensemble.Op[ensemble.PState]{Tag: ensemble.OpIRem, Operands: []ensemble.PState{a, b}})

	if err := DfsLowerStateToElementary(e, quo); err != nil {
		t.Fatalf("DfsLowerStateToElementary(quo): %v", err)
	}
	if err := DfsLowerStateToElementary(e, rem); err != nil {
		t.Fatalf("DfsLowerStateToElementary(rem): %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, quo); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes(quo): %v", err)
	}
	if err := DfsLowerElementaryToTNodes(e, rem); err != nil {
		t.Fatalf("DfsLowerElementaryToTNodes(rem): %v", err)
	}

	// -17 / 5 == -3 remainder -2, truncating toward zero.
	driveUint64(t, e, a, width, uint64(int8(-17))&0xff)
	driveUint64(t, e, b, width, 5)

	gotQuo := int8(readUint64(t, e, quo, width))
	gotRem := int8(readUint64(t, e, rem, width))
	if gotQuo != -3 || gotRem != -2 {
		t.Fatalf("-17/5: expected quo=-3 rem=-2, got quo=%d rem=%d", gotQuo, gotRem)
	}
}
