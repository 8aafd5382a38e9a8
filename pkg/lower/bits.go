package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

// loweredBits creates the LNodes (and, for Opaque/Argument roots, nothing
// else) that define p's output bits from op's now-elementary operands, and
// unions each output bit's equivalence class with what it creates. Operands
// are assumed already lowered (the caller walks operands before calling
// this), so every operand bit fetched here resolves to a live equivalence
// class rather than a placeholder.
func loweredBits(e *ensemble.Ensemble, p ensemble.PState, op ensemble.Op[ensemble.PState]) error {
	nzbw, ok := e.StateNzbw(p)
	if !ok {
		return ensemble.ErrInvalidPtr()
	}

	switch op.Tag {
	case ensemble.OpLiteral:
		for i := 0; i < nzbw; i++ {
			lit := e.MakeLiteral(op.Lit.Get(i))
			if err := e.BindBit(p, i, lit); err != nil {
				return err
			}
		}
		return nil

	case ensemble.OpOpaque, ensemble.OpArgument:
		// Roots of the network: their bits are Unknown equivalence classes
		// with no defining LNode, driven later by ChangeValue (retroactive
		// writes) or left as free inputs. Rooting them (and nothing more) is
		// all stage two needs to do here.
		if nzbw == 0 {
			return nil
		}
		_, err := e.SelfBit(p, 0)
		return err

	case ensemble.OpAssert:
		// Assert carries no output bits of its own; it only requires its
		// single boolean operand to be lowered, which the caller's operand
		// walk already ensured.
		return nil

	case ensemble.OpCopy:
		if len(op.Operands) != 1 {
			return ensemble.ErrWrongBitwidth()
		}
		src := op.Operands[0]
		for i := 0; i < nzbw; i++ {
			srcBit, err := e.SelfBit(src, i)
			if err != nil {
				return err
			}
			if srcBit == nil {
				continue
			}
			if err := e.BindBit(p, i, e.MakeCopy(*srcBit)); err != nil {
				return err
			}
		}
		return nil

	case ensemble.OpStaticGet:
		if len(op.Operands) != 1 {
			return ensemble.ErrWrongBitwidth()
		}
		srcBit, err := e.SelfBit(op.Operands[0], op.StaticIdx)
		if err != nil {
			return err
		}
		if srcBit == nil {
			return nil
		}
		return e.BindBit(p, 0, e.MakeCopy(*srcBit))

	case ensemble.OpStaticLut:
		inputs := make([]ensemble.PBack, 0, len(op.Operands))
		for _, operand := range op.Operands {
			b, err := e.SelfBit(operand, 0)
			if err != nil {
				return err
			}
			if b == nil {
				return nil
			}
			inputs = append(inputs, *b)
		}
		out, err := e.MakeLut(inputs, op.Lit)
		if err != nil {
			return err
		}
		return e.BindBit(p, 0, out)

	case ensemble.OpDynamicLut:
		selCount := op.StaticIdx
		if len(op.Operands) != selCount+(1<<uint(selCount)) {
			return ensemble.ErrWrongBitwidth()
		}
		inputs := make([]ensemble.PBack, 0, selCount)
		for i := 0; i < selCount; i++ {
			b, err := e.SelfBit(op.Operands[i], 0)
			if err != nil {
				return err
			}
			if b == nil {
				return nil
			}
			inputs = append(inputs, *b)
		}
		table := make([]ensemble.DynamicValue, 1<<uint(selCount))
		for i := range table {
			b, err := e.SelfBit(op.Operands[selCount+i], 0)
			if err != nil {
				return err
			}
			if b == nil {
				table[i] = ensemble.DynConstUnknown()
				continue
			}
			table[i] = ensemble.DynDynam(*b)
		}
		out, err := e.MakeDynamicLut(inputs, table)
		if err != nil {
			return err
		}
		return e.BindBit(p, 0, out)

	case ensemble.OpConcatFields:
		if len(op.Operands) != nzbw {
			return ensemble.ErrWrongBitwidth()
		}
		for i, operand := range op.Operands {
			b, err := e.SelfBit(operand, 0)
			if err != nil {
				return err
			}
			if b == nil {
				continue
			}
			if err := e.BindBit(p, i, e.MakeCopy(*b)); err != nil {
				return err
			}
		}
		return nil

	case ensemble.OpRepeat:
		if len(op.Operands) != 1 {
			return ensemble.ErrWrongBitwidth()
		}
		src := op.Operands[0]
		unitWidth, ok := e.StateNzbw(src)
		if !ok || unitWidth == 0 {
			return ensemble.ErrWrongBitwidth()
		}
		for k := 0; k < op.StaticIdx; k++ {
			for i := 0; i < unitWidth; i++ {
				idx := k*unitWidth + i
				if idx >= nzbw {
					break
				}
				srcBit, err := e.SelfBit(src, i)
				if err != nil {
					return err
				}
				if srcBit == nil {
					continue
				}
				if err := e.BindBit(p, idx, e.MakeCopy(*srcBit)); err != nil {
					return err
				}
			}
		}
		return nil

	default:
		return ensemble.ErrOtherf("lower: state %v still carries non-elementary op %v after grafting", p, op.Tag)
	}
}
