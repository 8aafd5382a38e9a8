package handle

import (
	"github.com/latticeforge/ensemble/pkg/arena"
	"github.com/latticeforge/ensemble/pkg/ensemble"
)

// Corresponder tracks which external handles (by PExternal, across one or
// more Epochs) are considered equivalent to each other -- e.g. the same
// logical port as it appears re-noted in a fresh Epoch after cloning an
// Ensemble. Corresponding handles form an equivalence class exactly like
// the evaluator's equivalence graph, implemented with the same Surject
// arena primitive.
type Corresponder struct {
	classes *arena.Surject[ensemble.PExternal, struct{}]
	keys    map[ensemble.PExternal]arena.Ptr
}

// NewCorresponder returns an empty Corresponder.
func NewCorresponder() *Corresponder {
	return &Corresponder{
		classes: arena.NewSurject[ensemble.PExternal, struct{}](),
		keys:    make(map[ensemble.PExternal]arena.Ptr),
	}
}

func (c *Corresponder) keyFor(ext ensemble.PExternal) arena.Ptr {
	if kp, ok := c.keys[ext]; ok {
		return kp
	}
	vp := c.classes.InsertVal(struct{}{})
	kp, _ := c.classes.InsertKey(vp, func(arena.Ptr) ensemble.PExternal { return ext })
	c.keys[ext] = kp
	return kp
}

// Correspond declares a and b as corresponding to each other (transitively
// with anything either already corresponds to).
func (c *Corresponder) Correspond(a, b ensemble.PExternal) {
	ka := c.keyFor(a)
	kb := c.keyFor(b)
	c.classes.Union(ka, kb, func(x, y struct{}) struct{} { return x })
}

// Correspondences returns every external handle known to correspond to ext,
// ext itself included.
func (c *Corresponder) Correspondences(ext ensemble.PExternal) []ensemble.PExternal {
	kp, ok := c.keys[ext]
	if !ok {
		return nil
	}
	vp, _ := c.classes.ValOfKey(kp)
	var out []ensemble.PExternal
	c.classes.KeysOfVal(vp, func(k arena.Ptr) {
		v, _ := c.classes.Key(k)
		out = append(out, v)
	})
	return out
}

// Transpose resolves ext to the single other external handle it
// corresponds to. It returns ErrCorrespondenceEmpty if ext corresponds to no
// other handle (including when ext was never registered), and
// ErrCorrespondenceNotATranspose if ext corresponds to more than one.
func (c *Corresponder) Transpose(ext ensemble.PExternal) (ensemble.PExternal, error) {
	all := c.Correspondences(ext)
	var others []ensemble.PExternal
	for _, o := range all {
		if o != ext {
			others = append(others, o)
		}
	}
	switch len(others) {
	case 0:
		return ensemble.PExternal{}, ensemble.ErrCorrespondenceEmpty(ext)
	case 1:
		return others[0], nil
	default:
		return ensemble.PExternal{}, ensemble.ErrCorrespondenceNotATranspose(ext)
	}
}
