package handle

import (
	"github.com/latticeforge/ensemble/pkg/bit"
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// The handle layer builds its own small gate/adder kit directly over raw
// ensemble.PBack rather than depending on pkg/lower's State-DAG grafts:
// Net's dynamic port selector is wired straight onto RNode bits, one level
// below where pkg/lower operates.
var (
	muxNotTable        = bit.FromUint64(0b01, 1)
	muxAdderSumTable   = buildMuxAdderTable(func(a, b, c bool) bool { return a != b != c })
	muxAdderCarryTable = buildMuxAdderTable(func(a, b, c bool) bool { return (a && b) || (a && c) || (b && c) })
)

func buildMuxAdderTable(f func(a, b, c bool) bool) *bit.Table {
	t := bit.NewTable(3)
	for idx := 0; idx < 8; idx++ {
		t.Set(idx, f(idx&1 != 0, (idx>>1)&1 != 0, (idx>>2)&1 != 0))
	}
	return t
}

func notPBack(e *ensemble.Ensemble, a ensemble.PBack) (ensemble.PBack, error) {
	return e.MakeLut([]ensemble.PBack{a}, muxNotTable)
}

func fullAdderPBack(e *ensemble.Ensemble, a, b, cin ensemble.PBack) (sum, cout ensemble.PBack, err error) {
	sum, err = e.MakeLut([]ensemble.PBack{a, b, cin}, muxAdderSumTable)
	if err != nil {
		return ensemble.PBack{}, ensemble.PBack{}, err
	}
	cout, err = e.MakeLut([]ensemble.PBack{a, b, cin}, muxAdderCarryTable)
	if err != nil {
		return ensemble.PBack{}, ensemble.PBack{}, err
	}
	return sum, cout, nil
}

// ultConstPBack builds a circuit testing bits (read little-endian) < n, via
// the same add-with-inverted-operand-and-carry-in-one subtractor pkg/lower's
// comparison grafts use, just over raw PBacks instead of States.
func ultConstPBack(e *ensemble.Ensemble, bits []ensemble.PBack, n int) (ensemble.PBack, error) {
	w := len(bits)
	if n >= 1<<uint(w) {
		// every w-bit value is below n
		return e.MakeLiteral(true), nil
	}
	carry := e.MakeLiteral(true)
	for i := 0; i < w; i++ {
		constBit := e.MakeLiteral((n>>uint(i))&1 != 0)
		notConstBit, err := notPBack(e, constBit)
		if err != nil {
			return ensemble.PBack{}, err
		}
		_, cout, err := fullAdderPBack(e, bits[i], notConstBit, carry)
		if err != nil {
			return ensemble.PBack{}, err
		}
		carry = cout
	}
	return notPBack(e, carry)
}
