package statetree

import (
	"errors"
	"fmt"
)

// StateOption configures a state at declaration time.
type StateOption func(*State)

// Concurrent makes every child of the state current together (orthogonal
// regions).
func Concurrent() StateOption {
	return func(s *State) { s.concurrent = true }
}

// History makes the state remember its last exited child. DeepHistory extends
// this to every clustered descendant.
func History(mode HistoryMode) StateOption {
	return func(s *State) { s.history = mode }
}

// Builder declares the substates and callbacks of one state. A fresh Builder
// is handed to each nested State closure; errors are collected and returned
// from Define.
type Builder struct {
	state *State
	errs  *[]error
}

// Define builds a new statechart. fn declares the root's substates and
// callbacks through b. The returned root has not been entered; call Goto() on
// it to enter the default configuration.
func Define(name string, fn func(b *Builder), opts ...StateOption) (*State, error) {
	root := newState(name)
	root.chart = newChart()
	for _, opt := range opts {
		opt(root)
	}
	var errs []error
	b := &Builder{state: root, errs: &errs}
	if fn != nil {
		fn(b)
	}
	b.check()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return root, nil
}

// State declares a substate. fn, if not nil, declares the substate's own
// children and callbacks.
func (b *Builder) State(name string, fn func(b *Builder), opts ...StateOption) *State {
	child := newState(name)
	for _, opt := range opts {
		opt(child)
	}
	if err := b.state.addChild(child); err != nil {
		b.fail(err)
		return child
	}
	nested := &Builder{state: child, errs: b.errs}
	if fn != nil {
		fn(nested)
	}
	nested.check()
	return child
}

// Attach grafts a separately defined tree as the next substate.
func (b *Builder) Attach(sub *State) {
	if err := b.state.Attach(sub); err != nil {
		b.fail(err)
	}
}

// Node returns the state being declared.
func (b *Builder) Node() *State { return b.state }

// Enter registers a callback run each time the state is entered.
func (b *Builder) Enter(fn ActionFunc) {
	if fn == nil {
		b.failf("nil enter callback")
		return
	}
	b.state.enters = append(b.state.enters, fn)
}

// Exit registers a callback run each time the state is exited.
func (b *Builder) Exit(fn ActionFunc) {
	if fn == nil {
		b.failf("nil exit callback")
		return
	}
	b.state.exits = append(b.state.exits, fn)
}

// Event registers the handler for a named event.
func (b *Builder) Event(name string, fn HandlerFunc) {
	switch {
	case name == "":
		b.failf("empty event name")
	case fn == nil:
		b.failf("nil handler for event %q", name)
	default:
		if _, dup := b.state.events[name]; dup {
			b.failf("duplicate handler for event %q", name)
			return
		}
		b.state.events[name] = fn
	}
}

// Condition registers the function that picks the substate to enter when no
// explicit destination is given. It is consulted before history.
func (b *Builder) Condition(fn ConditionFunc) {
	switch {
	case fn == nil:
		b.failf("nil condition")
	case b.state.condition != nil:
		b.failf("condition already set")
	default:
		b.state.condition = fn
	}
}

// CanExit replaces the default (always true) exit predicate.
func (b *Builder) CanExit(fn ExitGuardFunc) {
	switch {
	case fn == nil:
		b.failf("nil canExit predicate")
	case b.state.canExit != nil:
		b.failf("canExit already set")
	default:
		b.state.canExit = fn
	}
}

func (b *Builder) check() {
	s := b.state
	if !s.concurrent {
		return
	}
	if s.history != NoHistory {
		b.failf("concurrent state cannot have history")
	}
	if s.condition != nil {
		b.failf("concurrent state cannot have a condition")
	}
}

func (b *Builder) failf(format string, args ...any) {
	b.fail(fmt.Errorf("state %s: %w: %s", b.state.Path(), ErrInvalidDefinition, fmt.Sprintf(format, args...)))
}

func (b *Builder) fail(err error) {
	*b.errs = append(*b.errs, err)
}
