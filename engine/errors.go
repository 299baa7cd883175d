package engine

import (
	"errors"
	"fmt"
)

// UnifyCause classifies why a unification attempt failed.
type UnifyCause uint8

const (
	// CauseMismatch covers structural clashes: different tags, functors,
	// arities, or list lengths.
	CauseMismatch UnifyCause = iota
	// CauseOccurs is an occurs-check violation.
	CauseOccurs
	// CauseOutOfRange is a concrete value outside a range constraint.
	CauseOutOfRange
	// CauseEmptyRange is a range intersection with no integers left.
	CauseEmptyRange
	// CauseArith is an arithmetic equality the constraint solver refuted.
	CauseArith
)

func (c UnifyCause) String() string {
	switch c {
	case CauseMismatch:
		return "mismatch"
	case CauseOccurs:
		return "occurs check"
	case CauseOutOfRange:
		return "out of range"
	case CauseEmptyRange:
		return "empty range"
	case CauseArith:
		return "arithmetic"
	default:
		return "unknown"
	}
}

// UnifyError reports a failed unification. It always carries both offending
// terms so callers can render the exact conflict.
type UnifyError struct {
	Left  Term
	Right Term
	Cause UnifyCause
}

func (e *UnifyError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s (%s)", e.Left, e.Right, e.Cause)
}

func unifyError(left, right Term, cause UnifyCause) *UnifyError {
	return &UnifyError{Left: left, Right: right, Cause: cause}
}

// RewriteError reports a goal no database clause matched.
type RewriteError struct {
	Goal Term
}

func (e *RewriteError) Error() string {
	return fmt.Sprintf("no clause matches goal %s", e.Goal)
}

// DepthError reports that the solver exceeded its recursion depth limit.
type DepthError struct {
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("exceeded recursion depth limit of %d", e.Limit)
}

// SyntaxError reports malformed source text with its position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// Evaluation errors of the arithmetic folder.
var (
	ErrIntOverflow = errors.New("integer overflow")
	ErrZeroDivisor = errors.New("zero divisor")
	ErrUndefined   = errors.New("undefined arithmetic result")
)
