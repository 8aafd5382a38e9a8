package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

// graftResize grafts a runtime-chosen-signedness resize: Operands are
// (x, signed) where signed is a 1-bit flag selecting sign- vs zero-extension
// when widening (meta.rs's resize_cond). Truncation ignores the flag, since
// dropping high bits gives the same result either way.
func graftResize(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	target, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	src, ok := e.StateNzbw(op.Operands[0])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	if target <= src {
		return concatBits(bitsOf(e, op.Operands[0], target)), nil
	}
	lowBits := bitsOf(e, op.Operands[0], src)
	signBit := lowBits[src-1]
	signedFlag := bitOf(e, op.Operands[1], 0)
	outBits := make([]ensemble.PState, target)
	copy(outBits, lowBits)
	for i := src; i < target; i++ {
		outBits[i] = dynamicSelect(e, []ensemble.PState{signedFlag}, []ensemble.PState{litBit(e, false), signBit})
	}
	return concatBits(outBits), nil
}

// graftZeroResize grafts a fixed zero-extending/truncating resize.
func graftZeroResize(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	target, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	src, ok := e.StateNzbw(op.Operands[0])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	if target <= src {
		return concatBits(bitsOf(e, op.Operands[0], target)), nil
	}
	outBits := make([]ensemble.PState, target)
	copy(outBits, bitsOf(e, op.Operands[0], src))
	zero := litBit(e, false)
	for i := src; i < target; i++ {
		outBits[i] = zero
	}
	return concatBits(outBits), nil
}

// graftSignResize grafts a fixed sign-extending/truncating resize.
func graftSignResize(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	target, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	src, ok := e.StateNzbw(op.Operands[0])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	if target <= src {
		return concatBits(bitsOf(e, op.Operands[0], target)), nil
	}
	lowBits := bitsOf(e, op.Operands[0], src)
	sign := lowBits[src-1]
	outBits := make([]ensemble.PState, target)
	copy(outBits, lowBits)
	for i := src; i < target; i++ {
		outBits[i] = sign
	}
	return concatBits(outBits), nil
}

// graftConcat grafts variable-arity concatenation: every operand contributes
// its own full bitwidth, in order, least-significant operand first.
func graftConcat(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) == 0 {
		return op, ensemble.ErrWrongBitwidth()
	}
	var allBits []ensemble.PState
	for _, operand := range op.Operands {
		w, ok := e.StateNzbw(operand)
		if !ok {
			return op, ensemble.ErrInvalidPtr()
		}
		allBits = append(allBits, bitsOf(e, operand, w)...)
	}
	if target, ok := e.StateNzbw(self); ok && len(allBits) != target {
		return op, ensemble.ErrWrongBitwidth()
	}
	return concatBits(allBits), nil
}

// graftFieldBit grafts extraction of a single statically-known bit; it is
// already elementary (OpStaticGet), so the graft is just a relabel.
func graftFieldBit(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticGet, Operands: op.Operands, StaticIdx: op.StaticIdx}, nil
}

// graftLsb grafts extraction of bit 0.
func graftLsb(op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticGet, Operands: op.Operands, StaticIdx: 0}, nil
}

// graftMsb grafts extraction of the operand's top bit.
func graftMsb(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(op.Operands[0])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticGet, Operands: op.Operands, StaticIdx: n - 1}, nil
}

// graftFieldWidth grafts extraction of a statically-known-offset, statically-
// known-width field (self's own width), padding with zero past the source's
// end.
func graftFieldWidth(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	w, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	srcW, ok := e.StateNzbw(op.Operands[0])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	start := op.StaticIdx
	outBits := make([]ensemble.PState, w)
	for i := 0; i < w; i++ {
		idx := start + i
		if idx >= 0 && idx < srcW {
			outBits[i] = bitOf(e, op.Operands[0], idx)
		} else {
			outBits[i] = litBit(e, false)
		}
	}
	return concatBits(outBits), nil
}

// graftField grafts insertion of one operand (the piece) into another (the
// base) at a statically-known offset, the structural counterpart to
// FieldWidth's extraction.
func graftField(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	target, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	pieceW, ok := e.StateNzbw(op.Operands[1])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	start := op.StaticIdx
	outBits := bitsOf(e, op.Operands[0], target)
	for i := 0; i < pieceW; i++ {
		idx := start + i
		if idx >= 0 && idx < target {
			outBits[idx] = bitOf(e, op.Operands[1], i)
		}
	}
	return concatBits(outBits), nil
}

// graftStaticSet grafts replacement of a single statically-known bit.
func graftStaticSet(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	idx := op.StaticIdx
	if idx < 0 || idx >= n {
		return op, ensemble.ErrWrongBitwidth()
	}
	outBits := bitsOf(e, op.Operands[0], n)
	outBits[idx] = bitOf(e, op.Operands[1], 0)
	return concatBits(outBits), nil
}

// graftGet grafts extraction of a single runtime-selected bit: Operands are
// (x, index); out-of-range indices read as zero.
func graftGet(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(op.Operands[0])
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	selWidth := bitsNeeded(n)
	idxBits := bitsOf(e, op.Operands[1], selWidth)
	xBits := bitsOf(e, op.Operands[0], n)
	span := 1 << uint(selWidth)
	choices := make([]ensemble.PState, span)
	zero := litBit(e, false)
	for k := 0; k < span; k++ {
		if k < n {
			choices[k] = xBits[k]
		} else {
			choices[k] = zero
		}
	}
	return singleBit(dynamicSelect(e, idxBits, choices)), nil
}

// graftSet grafts replacement of a single runtime-selected bit: Operands are
// (x, index, newBit); an out-of-range index leaves x unchanged.
func graftSet(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 3 {
		return op, ensemble.ErrWrongBitwidth()
	}
	n, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	xBits := bitsOf(e, op.Operands[0], n)
	newBit := bitOf(e, op.Operands[2], 0)
	selWidth := bitsNeeded(n)
	idxBits := bitsOf(e, op.Operands[1], selWidth)
	span := 1 << uint(selWidth)
	outBits := make([]ensemble.PState, n)
	for i := 0; i < n; i++ {
		choices := make([]ensemble.PState, span)
		for k := 0; k < span; k++ {
			if k == i {
				choices[k] = newBit
			} else {
				choices[k] = xBits[i]
			}
		}
		outBits[i] = dynamicSelect(e, idxBits, choices)
	}
	return concatBits(outBits), nil
}
