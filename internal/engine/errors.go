package engine

import "errors"

// Programming-contract violations. Callers must treat these as fatal; they
// indicate a mismatch the caller could have checked before calling.
var (
	// ErrInvalidDepth is returned when a reader or scheme is constructed
	// with a depth other than 1 or 2.
	ErrInvalidDepth = errors.New("engine: depth must be 1 or 2")

	// ErrInvalidOperation is returned when a depth-2-only query (P(i,j),
	// numerator(i,j)) is issued against a depth-1 scheme.
	ErrInvalidOperation = errors.New("engine: operation requires a depth-2 scheme")

	// ErrMismatchedSchemes is returned when two schemes passed to a metric
	// function do not share depth and base-set size.
	ErrMismatchedSchemes = errors.New("engine: schemes have mismatched depth or size")

	// ErrEmptyLibrary is returned when a reference library would contain
	// zero reference types even after the synthetic "random" type.
	ErrEmptyLibrary = errors.New("engine: reference library has no types")

	// ErrInvalidLength is returned when a caller-supplied vector's length
	// does not match the size implied by its depth (256 or 65536).
	ErrInvalidLength = errors.New("engine: frequency vector length does not match depth")
)

// ErrIO wraps filesystem failures encountered by the frequency reader or
// cache. It is not a sentinel itself; callers should use errors.Is against
// the wrapped cause (os.ErrNotExist, etc.) rather than this type.
type ErrIO struct {
	Path string
	Err  error
}

func (e *ErrIO) Error() string {
	return "engine: io failure on " + e.Path + ": " + e.Err.Error()
}

func (e *ErrIO) Unwrap() error { return e.Err }
