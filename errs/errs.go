// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package errs defines the error taxonomy shared by every
// DeepSea package.
package errs

import (
	"fmt"

	"deepsea/log"
	"deepsea/thread"
)

// Kind identifies the class of an error.
// It is deliberately coarse: callers branch on Kind, not on
// the specific error value, the same way driver.go exposes
// a small set of sentinel errors rather than one per call site.
type Kind int

// Error kinds.
const (
	Other Kind = iota
	InvalidArgument
	OutOfMemory
	OutOfRange
	NotFound
	PermissionDenied
	Format
	IO
	Size
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case OutOfMemory:
		return "out of memory"
	case OutOfRange:
		return "out of range"
	case NotFound:
		return "not found"
	case PermissionDenied:
		return "permission denied"
	case Format:
		return "format error"
	case IO:
		return "I/O error"
	case Size:
		return "size error"
	default:
		return "error"
	}
}

// E is the concrete error type returned at DeepSea API
// boundaries.
// It carries the operation that failed, the Kind and an
// optional wrapped cause, so callers can both branch on
// Kind and, via errors.Is/errors.As, inspect the cause.
type E struct {
	Op    string
	Kind  Kind
	Cause error
}

// Error implements the error interface.
func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap returns the wrapped cause, if any.
func (e *E) Unwrap() error { return e.Cause }

// New creates an *E with no wrapped cause.
func New(op string, kind Kind) *E { return &E{Op: op, Kind: kind} }

// Wrap creates an *E wrapping cause.
func Wrap(op string, kind Kind, cause error) *E {
	return &E{Op: op, Kind: kind, Cause: cause}
}

// KindOf returns the Kind of err if it is (or wraps) an *E,
// or Other otherwise.
func KindOf(err error) Kind {
	for err != nil {
		if e, ok := err.(*E); ok {
			return e.Kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Other
}

// Log records err's Kind as th's last error kind and logs it
// at Error level, then returns err unchanged. It mirrors
// cogentcore's errors.Log: wrapping a fallible call at its
// own call site, e.g. `return errs.Log(th, op.do())`, instead
// of repeating a nil-check and a log call at every return. A
// nil err is a no-op that returns nil.
func Log(th *thread.Thread, err error) error {
	if err == nil {
		return nil
	}
	th.SetLastErrorKind(int32(KindOf(err)))
	log.Errorf("errs", "%v", err)
	return err
}

// Log1 is Log for a call that also returns a value, so
// `v, err := f(); return errs.Log1(th, v, err)` needs no
// temporary for err. v is returned unchanged regardless of
// err.
func Log1[T any](th *thread.Thread, v T, err error) T {
	Log(th, err)
	return v
}

// LastErrorKind returns the most recent Kind passed to Log
// for th, and whether Log has ever been called for it.
func LastErrorKind(th *thread.Thread) (Kind, bool) {
	k, ok := th.LastErrorKind()
	if !ok {
		return Other, false
	}
	return Kind(k), true
}
