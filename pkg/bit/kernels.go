package bit

// Precomputed masks for the fast (n <= 6, i.e. table fits in one uint64)
// path. M[i] isolates the bits where axis i is 0 before accounting for the
// shift; A[i]/R0[i]/R1[i]/R2[i] drive the compaction/rotation steps. These
// are the same constants the masked-arithmetic formulation of reduce/rotate
// always uses for a 64-bit table.
var m = [6]uint64{
	0x5555_5555_5555_5555,
	0x3333_3333_3333_3333,
	0x0f0f_0f0f_0f0f_0f0f,
	0x00ff_00ff_00ff_00ff,
	0x0000_ffff_0000_ffff,
	0x0000_0000_ffff_ffff,
}

var a = [5]uint64{
	0x1111_1111_1111_1111,
	0x0303_0303_0303_0303,
	0x000f_000f_000f_000f,
	0x0000_00ff_0000_00ff,
	0x0000_0000_0000_ffff,
}

var r0 = [5]uint64{
	0x2222_2222_2222_2222,
	0x0a0a_0a0a_0a0a_0a0a,
	0x00aa_00aa_00aa_00aa,
	0x0000_aaaa_0000_aaaa,
	0x0000_0000_aaaa_aaaa,
}

var r1 = [5]uint64{
	0x4444_4444_4444_4444,
	0x5050_5050_5050_5050,
	0x5500_5500_5500_5500,
	0x5555_0000_5555_0000,
	0x5555_5555_0000_0000,
}

var r2 = [5]uint64{
	0x9999_9999_9999_9999,
	0xa5a5_a5a5_a5a5_a5a5,
	0xaa55_aa55_aa55_aa55,
	0xaaaa_5555_aaaa_5555,
	0xaaaa_aaaa_5555_5555,
}

func reduce64(lut uint64, i int, bit bool) uint64 {
	if bit {
		lut >>= uint(1) << uint(i)
	}
	lut &= m[i]
	for k := i; k < 5; k++ {
		lut = (lut & a[k]) | ((lut &^ a[k]) >> (uint64(1) << uint(k)))
	}
	return lut
}

func reduceIndependent64(lut uint64, i int) (uint64, bool) {
	tmp0 := lut & m[i]
	tmp1 := lut &^ m[i]
	if tmp0 != (tmp1 >> (uint64(1) << uint(i))) {
		return 0, false
	}
	lut = tmp0
	for k := i; k < 5; k++ {
		lut = (lut & a[k]) | ((lut &^ a[k]) >> (uint64(1) << uint(k)))
	}
	return lut, true
}

func basisRotate64(lut uint64, i int) uint64 {
	s := uint((1 << uint(i)) - 1)
	return ((lut & r0[i-1]) << s) | ((lut & r1[i-1]) >> s) | (lut & r2[i-1])
}

func rotate64(lut uint64, i, j int) uint64 {
	switch {
	case i == 0 && j == 0:
		return lut
	case i == 0:
		return basisRotate64(lut, j)
	case j == 0:
		return basisRotate64(lut, i)
	default:
		return basisRotate64(basisRotate64(basisRotate64(lut, i), j), i)
	}
}

// ReduceLut returns the half-width table obtained by fixing input i to bit.
func ReduceLut(t *Table, i int, bit bool) *Table {
	if t.n <= 6 {
		halved := reduce64(t.Small, i, bit)
		out := NewTable(t.n - 1)
		out.Small = halved & mask(out.Len())
		return out
	}
	return generalReduceLut(t, i, bit)
}

func generalReduceLut(t *Table, i int, bit bool) *Table {
	out := NewTable(t.n - 1)
	w := 1 << i
	from, to := 0, 0
	for to < out.Len() {
		for k := 0; k < w; k++ {
			src := from + k
			if bit {
				src += w
			}
			out.Set(to+k, t.Get(src))
		}
		from += 2 * w
		to += w
	}
	return out
}

// ReduceIndependentLut reports whether t's output does not depend on input
// i; if so it also returns the reduced (n-1)-input table.
func ReduceIndependentLut(t *Table, i int) (*Table, bool) {
	if t.n <= 6 {
		halved, ok := reduceIndependent64(t.Small, i)
		if !ok {
			return nil, false
		}
		out := NewTable(t.n - 1)
		out.Small = halved & mask(out.Len())
		return out, true
	}
	return generalReduceIndependentLut(t, i)
}

func generalReduceIndependentLut(t *Table, i int) (*Table, bool) {
	half := NewTable(t.n - 1)
	w := 1 << i
	tmp0 := NewTable(t.n - 1)
	tmp1 := NewTable(t.n - 1)
	from, to := 0, 0
	for to < half.Len() {
		for k := 0; k < w; k++ {
			tmp0.Set(to+k, t.Get(from+k))
		}
		from += 2 * w
		to += w
	}
	from, to = w, 0
	for to < half.Len() {
		for k := 0; k < w; k++ {
			tmp1.Set(to+k, t.Get(from+k))
		}
		from += 2 * w
		to += w
	}
	if !tmp0.Equal(tmp1) {
		return nil, false
	}
	return tmp0, true
}

// RotateLut returns the table equivalent to t with input columns i and j
// swapped.
func RotateLut(t *Table, i, j int) *Table {
	if t.n <= 6 {
		out := NewTable(t.n)
		out.Small = rotate64(t.Small, i, j) & mask(out.Len())
		return out
	}
	return generalRotateLut(t, i, j)
}

// generalBasisRotate swaps input 0 with input i in place: for every pair of
// indices differing only in bits 0 and i, their entries trade places when
// exactly one of those two bits is set.
func generalBasisRotate(t *Table, i int) {
	tmp := NewTable(t.n)
	for k := 0; k < t.Len(); k++ {
		b0 := (k & 1) != 0
		bi := (k & (1 << uint(i))) != 0
		if b0 == bi {
			continue
		}
		swapIdx := k ^ 1 ^ (1 << uint(i))
		if k < swapIdx {
			v0, v1 := t.Get(k), t.Get(swapIdx)
			tmp.Set(k, v1)
			tmp.Set(swapIdx, v0)
		}
	}
	for k := 0; k < t.Len(); k++ {
		b0 := (k & 1) != 0
		bi := (k & (1 << uint(i))) != 0
		if b0 == bi {
			tmp.Set(k, t.Get(k))
		}
	}
	*t = *tmp
}

func generalRotateLut(t *Table, i, j int) *Table {
	out := t.Clone()
	switch {
	case i == 0 && j == 0:
	case i == 0:
		generalBasisRotate(out, j)
	case j == 0:
		generalBasisRotate(out, i)
	default:
		generalBasisRotate(out, i)
		generalBasisRotate(out, j)
		generalBasisRotate(out, i)
	}
	return out
}
