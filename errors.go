package statetree

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvablePath is returned when a path does not map to any state.
	ErrUnresolvablePath = errors.New("unresolvable path")
	// ErrAmbiguousPivot is returned when the destinations of one Goto do not
	// share a single pivot state.
	ErrAmbiguousPivot = errors.New("multiple pivot states")
	// ErrConcurrencyCrossing is returned when a transition would jump between
	// orthogonal regions without going through their concurrent parent.
	ErrConcurrencyCrossing = errors.New("destination not reachable across concurrent regions")
	// ErrConflictingDestinations is returned when destinations ask for two
	// different substates of one clustered state.
	ErrConflictingDestinations = errors.New("conflicting substates of clustered state")
	// ErrForeignState is returned when two states do not belong to one tree.
	ErrForeignState = errors.New("states do not belong to the same statechart")
	// ErrNotCurrent is returned (Goto) or panicked (Send) when the receiver is
	// not part of the active configuration.
	ErrNotCurrent = errors.New("state is not current")
	// ErrInvalidDefinition is returned by Define and Attach for malformed trees.
	ErrInvalidDefinition = errors.New("invalid state definition")
	// ErrSealed is returned when the structure of an entered tree is modified.
	ErrSealed = errors.New("statechart structure is sealed after first entry")
)

// PathError records a path that failed to resolve and the state it was
// resolved from.
type PathError struct {
	Path string
	From string
	Err  error
}

func (e *PathError) Error() string {
	msg := fmt.Sprintf("resolve %q from %s", e.Path, e.From)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match ErrUnresolvablePath (and the parse cause).
func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnresolvablePath}
	}
	return []error{ErrUnresolvablePath, e.Err}
}
