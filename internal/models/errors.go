package models

import "fmt"

// The error taxonomy mirrors the pipeline stages. Every failure surfaced to
// a caller is exactly one of these kinds; the HTTP layer maps them to status
// codes and the CLI to exit messages.

// FormatError reports an input buffer that is neither valid binary nor valid
// ASCII STL.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid STL: %s: %v", e.Msg, e.Err)
	}
	return "invalid STL: " + e.Msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// ValidationError reports bad request parameters, detected before any
// geometry work.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "invalid request: " + e.Msg }

// DegenerateMeshError reports a mesh with zero or near-zero extent on the
// requested height axis.
type DegenerateMeshError struct {
	Axis   string
	Extent float64
}

func (e *DegenerateMeshError) Error() string {
	return fmt.Sprintf("degenerate mesh: extent %.9g on axis %s is too small to scale", e.Extent, e.Axis)
}

// InvariantViolation reports an internal bug: a produced piece failed its
// own size constraint. It should never reach a user with a correct splitter.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return "internal invariant violated: " + e.Msg }

// ResourceExceededError reports an input that blew through a configured
// resource bound (file size, triangle count, recursion depth, piece count or
// wall-clock time).
type ResourceExceededError struct {
	Resource string
	Msg      string
}

func (e *ResourceExceededError) Error() string {
	return fmt.Sprintf("resource limit exceeded (%s): %s", e.Resource, e.Msg)
}
