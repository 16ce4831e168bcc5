package statetree

import (
	"fmt"
)

// Send dispatches a named event to s and its current descendants. Children
// see the event first; a state's own handler runs only when nothing below
// handled it. Under a concurrent state the event reaches every region and
// counts as handled only if all of them handled it.
//
// Transitions requested by handlers are applied after the dispatch walk;
// their error, if any, is returned. Send panics with an error wrapping
// ErrNotCurrent when s is not current.
func (s *State) Send(event string, args ...any) (bool, error) {
	if !s.current {
		panic(fmt.Errorf("send %q to %s: %w", event, s.Path(), ErrNotCurrent))
	}
	root := s.Root()
	c := root.chart

	handled := func() bool {
		c.depth++
		defer func() { c.depth-- }()
		return s.dispatch(event, args)
	}()
	c.observer.OnEvent(s, event, handled)

	if c.depth == 0 {
		if err := root.flush(); err != nil {
			return handled, err
		}
	}
	return handled, nil
}

func (s *State) dispatch(event string, args []any) bool {
	var handled bool
	if s.concurrent {
		handled = s.dispatchConcurrent(event, args)
	} else if cur := s.activeChild(); cur != nil {
		handled = cur.dispatch(event, args)
	}
	if handled {
		return true
	}
	if fn, ok := s.events[event]; ok {
		return fn(s, args...)
	}
	return false
}

// dispatchConcurrent sends to every current region. A concurrent state
// without regions handles nothing itself.
func (s *State) dispatchConcurrent(event string, args []any) bool {
	reached := false
	all := true
	for _, c := range s.children {
		if !c.current {
			continue
		}
		reached = true
		if !c.dispatch(event, args) {
			all = false
		}
	}
	return reached && all
}
