package mapper

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/token"
)

// ErrCycleRequiresPrebuilt is returned when the element graph contains a
// self-reference through a signature that cannot allocate a building
// object ahead of its children (SupportsPrebuilt() == false) - a
// constructor or container signature revisited before it finishes
// building has nowhere to park an identity for the cycle to close over.
var ErrCycleRequiresPrebuilt = errors.New("mapper: cyclic reference requires a prebuilt-capable signature")

// ErrNilToValue is returned when a nil scalar element would have to be
// assigned into a non-nilable Go type (SPEC_FULL.md §4.4 edge cases).
var ErrNilToValue = errors.New("mapper: cannot assign nil to a non-nilable type")

// ProcessError wraps a failure encountered while processing the
// element/object graph, recording the top-level target type. Path holds
// field/index labels from the root when set; Processor.DataFromElement and
// Processor.ElementFromData leave it empty, so the failing position is not
// reported.
type ProcessError struct {
	Target token.Token
	Path   []string
	Err    error
}

func (e *ProcessError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("mapper: %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("mapper: %s at %s: %v", e.Target, pathString(e.Path), e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

func pathString(path []string) string {
	s := "$"
	for _, p := range path {
		s += "." + p
	}
	return s
}

// MapperError is the package's sentinel wrapper for failures that are not
// specific to one element (configuration/usage errors rather than data
// errors).
type MapperError struct {
	Op  string
	Err error
}

func (e *MapperError) Error() string { return fmt.Sprintf("mapper: %s: %v", e.Op, e.Err) }
func (e *MapperError) Unwrap() error  { return e.Err }
