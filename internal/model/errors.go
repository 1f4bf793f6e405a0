package model

import (
	"errors"
	"fmt"
)

// ErrStructural is matched by every StructuralError via errors.Is.
var ErrStructural = errors.New("structural error")

// StructuralError reports a document that cannot be analyzed as a slide,
// for example because the canvas root is missing or has no usable box.
type StructuralError struct {
	// Path is the canvas element path involved, if known.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("structural: %v", e.Err)
	}
	return fmt.Sprintf("structural: canvas %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StructuralError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrStructural) succeed.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// InternalConsistencyError reports a report that violates one of its own
// invariants. It always indicates a bug in the analysis.
type InternalConsistencyError struct {
	// Invariant names the violated rule.
	Invariant string

	// Detail describes the offending value.
	Detail string
}

// Error implements the error interface.
func (e *InternalConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency: %s: %s", e.Invariant, e.Detail)
}
