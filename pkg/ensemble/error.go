package ensemble

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind tags the well-known error conditions the engine's API boundary
// reports, matching the kinds enumerated for the evaluator, optimizer and
// handle layers.
type ErrKind uint8

const (
	KindOther ErrKind = iota
	KindInvalidPtr
	KindInvalidPExternal
	KindBitwidthMismatch
	KindWrongBitwidth
	KindConstBitwidthMismatch
	KindUnevaluatable
	KindCorrespondenceNotFound
	KindCorrespondenceEmpty
	KindCorrespondenceNotATranspose
)

// Err is the concrete error type returned across the engine's API boundary.
// It carries a Kind for programmatic dispatch plus a human-readable message,
// and supports errors.Is/As via Unwrap when it wraps a lower-level cause.
type Err struct {
	Kind ErrKind
	msg  string
	wraps error
}

func (e *Err) Error() string {
	if e.wraps != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.wraps)
	}
	return e.msg
}

func (e *Err) Unwrap() error { return e.wraps }

// ErrOtherStr builds a Kind-less error from a static message.
func ErrOtherStr(msg string) error { return &Err{Kind: KindOther, msg: msg} }

// ErrOtherf builds a Kind-less error from a formatted message.
func ErrOtherf(format string, args ...any) error {
	return &Err{Kind: KindOther, msg: fmt.Sprintf(format, args...)}
}

// ErrInvalidPtr reports that a Ptr did not resolve to a live entry.
func ErrInvalidPtr() error { return &Err{Kind: KindInvalidPtr, msg: "invalid pointer"} }

// ErrInvalidPExternal reports that a PExternal handle is not registered in
// the current Notary.
func ErrInvalidPExternal(p PExternal) error {
	return &Err{Kind: KindInvalidPExternal, msg: fmt.Sprintf("invalid external handle %s", p)}
}

// ErrBitwidthMismatch reports two operands with incompatible bitwidths.
func ErrBitwidthMismatch(lhs, rhs int) error {
	return &Err{Kind: KindBitwidthMismatch, msg: fmt.Sprintf("bitwidth mismatch: %d vs %d", lhs, rhs)}
}

// ErrWrongBitwidth reports a single bitwidth that failed a caller's
// expectation.
func ErrWrongBitwidth() error { return &Err{Kind: KindWrongBitwidth, msg: "wrong bitwidth"} }

// ErrConstBitwidthMismatch reports a literal/constant table whose length
// does not match the declared input count.
func ErrConstBitwidthMismatch() error {
	return &Err{Kind: KindConstBitwidthMismatch, msg: "constant table bitwidth mismatch"}
}

// ErrUnevaluatable reports that a state or bit currently has no resolvable
// value (e.g. still Unknown, or depends on an undriven loop).
func ErrUnevaluatable() error { return &Err{Kind: KindUnevaluatable, msg: "unevaluatable"} }

// ErrCorrespondenceNotFound reports that p was never registered with a
// Corresponder.
func ErrCorrespondenceNotFound(p PExternal) error {
	return &Err{Kind: KindCorrespondenceNotFound, msg: fmt.Sprintf("no correspondence registered for %s", p)}
}

// ErrCorrespondenceEmpty reports that p has no corresponding handles at all.
func ErrCorrespondenceEmpty(p PExternal) error {
	return &Err{Kind: KindCorrespondenceEmpty, msg: fmt.Sprintf("no correspondences found for %s", p)}
}

// ErrCorrespondenceNotATranspose reports that p corresponds to more than one
// other handle, so Transpose* cannot pick a unique result.
func ErrCorrespondenceNotATranspose(p PExternal) error {
	return &Err{Kind: KindCorrespondenceNotATranspose, msg: fmt.Sprintf("%s has more than one correspondence, not a transpose", p)}
}

// Wrap attaches additional lowering/grafting context to err, matching the
// errors.Wrap idiom used across the lowering pipeline.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Wrapf is the formatted form of Wrap.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
