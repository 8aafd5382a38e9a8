package ensemble

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/latticeforge/ensemble/pkg/arena"
)

// PExternal is the 128-bit opaque key external callers use to name an RNode
// across epoch boundaries; it carries no ordering guarantees and is never
// reused while its Notary is alive.
type PExternal struct {
	hi, lo uint64
}

func (p PExternal) String() string { return fmt.Sprintf("%016x%016x", p.hi, p.lo) }

// IsZero reports whether p is the zero value (never issued by a Notary).
func (p PExternal) IsZero() bool { return p.hi == 0 && p.lo == 0 }

func randomPExternal() PExternal {
	var buf [16]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			panic("ensemble: failed to read random bytes for PExternal: " + err.Error())
		}
		p := PExternal{hi: binary.BigEndian.Uint64(buf[:8]), lo: binary.BigEndian.Uint64(buf[8:])}
		if !p.IsZero() {
			return p
		}
	}
}

// RNode is an external handle onto a vector of bits, each bit rooted at an
// equivalence class via a ThisRNode referent. It is the representation
// behind LazyAwi/EvalAwi/Loop/Net ports once their underlying state has been
// initialized against the evaluator.
type RNode struct {
	Bits           []*PBack // a nil entry means that bit was pruned away
	ReadOnly       bool
	ExternRc       uint64
	AssociatedState PState
	HasState        bool

	// LowerBeforePruning records the flag passed to MakeRNodeForState; it is
	// stored only, and InitializeRNodeIfNeeded does not consult it.
	LowerBeforePruning bool

	DebugName string
}

// Notary owns the PExternal <-> RNode mapping for one Ensemble.
type Notary struct {
	rnodes *arena.Arena[rnodeEntry]
	byExt  map[PExternal]PRNode
}

type rnodeEntry struct {
	ext PExternal
	rn  RNode
}

func newNotary() *Notary {
	return &Notary{rnodes: arena.New[rnodeEntry](), byExt: make(map[PExternal]PRNode)}
}

// InsertRNode registers rn under a freshly generated PExternal and returns
// both.
func (n *Notary) InsertRNode(rn RNode) (PRNode, PExternal) {
	ext := randomPExternal()
	for {
		if _, dup := n.byExt[ext]; !dup {
			break
		}
		ext = randomPExternal()
	}
	p := PRNode(n.rnodes.Insert(rnodeEntry{ext: ext, rn: rn}))
	n.byExt[ext] = p
	return p, ext
}

// GetByExternal resolves a PExternal to its PRNode and RNode.
func (n *Notary) GetByExternal(ext PExternal) (PRNode, *RNode, error) {
	p, ok := n.byExt[ext]
	if !ok {
		return PRNode{}, nil, ErrInvalidPExternal(ext)
	}
	e, ok := n.rnodes.GetPtr(arena.Ptr(p))
	if !ok {
		return PRNode{}, nil, ErrInvalidPExternal(ext)
	}
	return p, &e.rn, nil
}

// Get resolves a PRNode directly.
func (n *Notary) Get(p PRNode) (*RNode, bool) {
	e, ok := n.rnodes.GetPtr(arena.Ptr(p))
	if !ok {
		return nil, false
	}
	return &e.rn, true
}

// Remove deletes the RNode at p.
func (n *Notary) Remove(p PRNode) (RNode, bool) {
	e, ok := n.rnodes.Remove(arena.Ptr(p))
	if !ok {
		return RNode{}, false
	}
	delete(n.byExt, e.ext)
	return e.rn, true
}

// ExternalOf returns the PExternal that names p.
func (n *Notary) ExternalOf(p PRNode) (PExternal, bool) {
	e, ok := n.rnodes.Get(arena.Ptr(p))
	if !ok {
		return PExternal{}, false
	}
	return e.ext, true
}

// Ptrs returns every live PRNode.
func (n *Notary) Ptrs() []PRNode {
	ps := n.rnodes.Ptrs()
	out := make([]PRNode, len(ps))
	for i, p := range ps {
		out[i] = PRNode(p)
	}
	return out
}
