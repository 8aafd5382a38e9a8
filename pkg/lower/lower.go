// Package lower implements the two-stage DFS that turns a not-yet-lowered
// operator State into LNodes in an ensemble.Ensemble: stage one grafts
// composite operators down to the elementary operator set via
// per-operator recipes, stage two walks the now-elementary DAG bit by bit
// and unions each output bit's equivalence class with the LNode or literal
// class that defines it. Neither stage creates TNodes.
package lower

import "github.com/latticeforge/ensemble/pkg/ensemble"

// DfsLowerStateToElementary grafts every composite operator reachable from
// root down to the elementary operator set (Literal/Opaque/Argument/Copy/
// Assert/StaticGet/StaticLut/DynamicLut/ConcatFields/Repeat), skipping any subtree
// already lowered.
func DfsLowerStateToElementary(e *ensemble.Ensemble, root ensemble.PState) error {
	visited := map[ensemble.PState]bool{}
	var stack []ensemble.PState
	stack = append(stack, root)
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[p] {
			continue
		}
		visited[p] = true
		op, ok := e.StateOp(p)
		if !ok {
			continue
		}
		if !op.Tag.Elementary() {
			newOp, err := graft(e, p, op)
			if err != nil {
				return ensemble.Wrapf(err, "grafting state %v (op %v)", p, op.Tag)
			}
			if err := e.SetStateOp(p, newOp); err != nil {
				return ensemble.Wrapf(err, "setting grafted op on state %v", p)
			}
			op = newOp
		}
		for _, operand := range op.Operands {
			if !visited[operand] {
				stack = append(stack, operand)
			}
		}
	}
	return nil
}

// DfsLowerElementaryToTNodes walks the now-elementary DAG rooted at root and
// unions each output bit's equivalence class with the LNode or literal class
// that computes it, per the elementary-op lowering table in loweredBits.
func DfsLowerElementaryToTNodes(e *ensemble.Ensemble, root ensemble.PState) error {
	visited := map[ensemble.PState]bool{}
	var walk func(p ensemble.PState) error
	walk = func(p ensemble.PState) error {
		if visited[p] {
			return nil
		}
		visited[p] = true
		op, ok := e.StateOp(p)
		if !ok {
			return nil
		}
		for _, operand := range op.Operands {
			if err := walk(operand); err != nil {
				return err
			}
		}
		return loweredBits(e, p, op)
	}
	return walk(root)
}
