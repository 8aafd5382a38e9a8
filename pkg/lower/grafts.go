package lower

import (
	"github.com/latticeforge/ensemble/pkg/bit"
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// graft rewrites a composite State's operator into an elementary one,
// grafting any new intermediate States it needs as fresh operands via
// e.MakeState, then replacing the State's own operator in place (the caller,
// DfsLowerStateToElementary, assigns the returned Op back onto p). The State
// keeps its identity and every existing reference to it; only its Op
// changes. Every recipe is grounded on the corresponding function in the
// original's lowering meta-program (starlight/src/lower/meta.rs), cited
// per recipe.
func graft(e *ensemble.Ensemble, p ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	switch op.Tag {
	case ensemble.OpNot:
		return graftUnaryLut(op, notTable)
	case ensemble.OpAnd:
		return graftBinaryLut(op, andTable)
	case ensemble.OpOr:
		return graftBinaryLut(op, orTable)
	case ensemble.OpXor:
		return graftBinaryLut(op, xorTable)

	case ensemble.OpMux:
		return graftMux(e, p, op)

	case ensemble.OpAdd:
		return graftAdd(e, p, op)
	case ensemble.OpSub:
		return graftSub(e, p, op)
	case ensemble.OpRsb:
		return graftRsb(e, p, op)
	case ensemble.OpCinSum:
		return graftCinSum(e, p, op)
	case ensemble.OpInc:
		return graftInc(e, p, op)
	case ensemble.OpDec:
		return graftDec(e, p, op)
	case ensemble.OpNeg:
		return graftNeg(e, p, op)
	case ensemble.OpAbs:
		return graftAbs(e, p, op)

	case ensemble.OpMul:
		return graftMul(e, p, op)
	case ensemble.OpArbMulAdd:
		return graftArbMulAdd(e, p, op)

	case ensemble.OpShl:
		return graftShl(e, p, op)
	case ensemble.OpLshr:
		return graftLshr(e, p, op)
	case ensemble.OpAshr:
		return graftAshr(e, p, op)
	case ensemble.OpRotl:
		return graftRotl(e, p, op)
	case ensemble.OpRotr:
		return graftRotr(e, p, op)
	case ensemble.OpFunnel:
		return graftFunnel(e, p, op)

	case ensemble.OpEq:
		return graftEq(e, p, op)
	case ensemble.OpNe:
		return graftNe(e, p, op)
	case ensemble.OpUlt:
		return graftUlt(e, p, op)
	case ensemble.OpUle:
		return graftUle(e, p, op)
	case ensemble.OpIlt:
		return graftIlt(e, p, op)
	case ensemble.OpIle:
		return graftIle(e, p, op)

	case ensemble.OpIsZero:
		return graftIsZero(e, p, op)
	case ensemble.OpIsUmax:
		return graftIsUmax(e, p, op)
	case ensemble.OpIsImax:
		return graftIsImax(e, p, op)
	case ensemble.OpIsImin:
		return graftIsImin(e, p, op)
	case ensemble.OpIsUone:
		return graftIsUone(e, p, op)

	case ensemble.OpCountOnes:
		return graftCountOnes(e, p, op)
	case ensemble.OpLz:
		return graftLz(e, p, op)
	case ensemble.OpTz:
		return graftTz(e, p, op)
	case ensemble.OpSig:
		return graftSig(e, p, op)

	case ensemble.OpUQuo:
		return graftUQuo(e, p, op)
	case ensemble.OpURem:
		return graftURem(e, p, op)
	case ensemble.OpIQuo:
		return graftIQuo(e, p, op)
	case ensemble.OpIRem:
		return graftIRem(e, p, op)

	case ensemble.OpResize:
		return graftResize(e, p, op)
	case ensemble.OpZeroResize:
		return graftZeroResize(e, p, op)
	case ensemble.OpSignResize:
		return graftSignResize(e, p, op)
	case ensemble.OpConcat:
		return graftConcat(e, p, op)
	case ensemble.OpFieldBit:
		return graftFieldBit(e, p, op)
	case ensemble.OpFieldWidth:
		return graftFieldWidth(e, p, op)
	case ensemble.OpField:
		return graftField(e, p, op)
	case ensemble.OpLsb:
		return graftLsb(op)
	case ensemble.OpMsb:
		return graftMsb(e, p, op)
	case ensemble.OpStaticSet:
		return graftStaticSet(e, p, op)
	case ensemble.OpGet:
		return graftGet(e, p, op)
	case ensemble.OpSet:
		return graftSet(e, p, op)

	default:
		return op, ensemble.ErrOtherf("lower: no graft recipe registered for op %v", op.Tag)
	}
}

func graftUnaryLut(op ensemble.Op[ensemble.PState], table *bit.Table) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 1 {
		return op, ensemble.ErrWrongBitwidth()
	}
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticLut, Operands: op.Operands, Lit: table}, nil
}

func graftBinaryLut(op ensemble.Op[ensemble.PState], table *bit.Table) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) != 2 {
		return op, ensemble.ErrWrongBitwidth()
	}
	return ensemble.Op[ensemble.PState]{Tag: ensemble.OpStaticLut, Operands: op.Operands, Lit: table}, nil
}

// graftMux reduces an N-way mux (select, choice0, choice1, ...) to a
// per-output-bit dynamic LUT addressed by select's bits: a genuine
// runtime-selected crossbar (starlight/src/lower/meta.rs:193 general_mux,
// :439 crossbar) rather than a fixed 2:1 static LUT. A plain 2:1 bit mux
// (select width 1, two choices) falls out as the N==2 case.
func graftMux(e *ensemble.Ensemble, self ensemble.PState, op ensemble.Op[ensemble.PState]) (ensemble.Op[ensemble.PState], error) {
	if len(op.Operands) < 3 {
		return op, ensemble.ErrWrongBitwidth()
	}
	sel := op.Operands[0]
	choices := op.Operands[1:]
	selWidth, ok := e.StateNzbw(sel)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	if 1<<uint(selWidth) < len(choices) {
		return op, ensemble.ErrWrongBitwidth()
	}
	nzbw, ok := e.StateNzbw(self)
	if !ok {
		return op, ensemble.ErrInvalidPtr()
	}
	selBits := bitsOf(e, sel, selWidth)
	span := 1 << uint(selWidth)
	outBits := make([]ensemble.PState, nzbw)
	for i := 0; i < nzbw; i++ {
		choiceBits := make([]ensemble.PState, span)
		for k := 0; k < span; k++ {
			if k < len(choices) {
				choiceBits[k] = bitOf(e, choices[k], i)
			} else {
				choiceBits[k] = litBit(e, false)
			}
		}
		outBits[i] = dynamicSelect(e, selBits, choiceBits)
	}
	return concatBits(outBits), nil
}
