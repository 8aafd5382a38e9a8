// Package route names the interface a placement/routing backend would
// implement against a lowered Ensemble, without providing one: routing and
// physical placement are an external collaborator's concern, out of scope
// for this engine.
package route

import (
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// Placement is the result a router would hand back: a mapping from logical
// LNode/TNode identity to some physical location, left opaque here since no
// backend exists to define its shape.
type Placement struct {
	Ensemble *ensemble.Ensemble
}

// Router is the interface a placement/routing backend would satisfy. No
// implementation ships in this module; Route always returns an
// unimplemented error.
type Router interface {
	Route(e *ensemble.Ensemble) (Placement, error)
}

// Unimplemented is a Router that reports every call as unimplemented, for
// callers that need a concrete Router value before a real backend exists.
type Unimplemented struct{}

// Route always fails: routing/placement is outside this engine's scope.
func (Unimplemented) Route(e *ensemble.Ensemble) (Placement, error) {
	return Placement{}, ensemble.ErrOtherStr("route: no routing/placement backend is implemented by this module")
}
