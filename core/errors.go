package core

import "errors"

// Error categories for the install/update pipeline. Callers match them with
// errors.Is; the wrapped message carries the operation-specific detail.
var (
	// ErrParse indicates a malformed package index or archive.
	ErrParse = errors.New("parse error")
	// ErrResolve indicates that no loader could be resolved, or that a
	// loader jar / pack source lookup failed.
	ErrResolve = errors.New("resolution error")
	// ErrFetch indicates a failed content acquisition or integrity mismatch.
	ErrFetch = errors.New("fetch error")
	// ErrPlan indicates an unusable update plan input.
	ErrPlan = errors.New("plan error")
	// ErrPersist indicates a failure to write the pack state record or other
	// engine-owned files.
	ErrPersist = errors.New("persist error")
)
