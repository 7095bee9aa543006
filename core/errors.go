package core

import "errors"

// Error kinds surfaced by a generation call. Every failure wraps one of
// these so callers can tell which stage gave up.
var (
	// ErrorInvalidInput marks a malformed request: num possible
	// outcomes below 2, a mitigation level outside [0,1], or a
	// non-positive shot count.
	ErrorInvalidInput = errors.New("invalid input")

	// ErrorBackendExecution marks a failure inside the circuit
	// execution collaborator. It is propagated unchanged; retry policy
	// belongs to the backend or the caller, not this engine.
	ErrorBackendExecution = errors.New("backend execution failed")

	// ErrorEmptyDistribution marks a merge or selection attempted on a
	// distribution with no entries.
	ErrorEmptyDistribution = errors.New("empty distribution")
)
