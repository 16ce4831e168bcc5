package statetree

import (
	"fmt"
)

// GotoOption configures a single Goto.
type GotoOption func(*gotoOptions)

type gotoOptions struct {
	data  any
	force bool
}

// WithData passes v to every enter, exit, condition and canExit callback
// invoked by the transition.
func WithData(v any) GotoOption {
	return func(o *gotoOptions) { o.data = v }
}

// WithForce re-runs enter callbacks on states along the entry path that are
// already current, the pivot included.
func WithForce() GotoOption {
	return func(o *gotoOptions) { o.force = true }
}

// pending is a validated transition waiting in the root queue.
type pending struct {
	pivot *State
	dests []*State
	opts  gotoOptions
}

// Goto transitions from s to the states named by paths, resolved relative to
// s. With no paths it (re-)enters s's default configuration; on an unentered
// root this is how the statechart starts.
//
// It returns false with a nil error when a canExit predicate vetoes the
// transition. Structural problems return an error and change nothing. When
// called from a callback while a Send or transition is in progress the
// transition is queued and applied after the outer walk completes.
func (s *State) Goto(paths ...string) (bool, error) {
	return s.GotoWith(paths)
}

// GotoWith is Goto with options.
func (s *State) GotoWith(paths []string, opts ...GotoOption) (bool, error) {
	var o gotoOptions
	for _, opt := range opts {
		opt(&o)
	}

	dests, err := s.resolveAll(paths)
	if err != nil {
		return false, fmt.Errorf("goto: %w", err)
	}
	if !s.current && s.parent != nil {
		return false, fmt.Errorf("goto from %s: %w", s.Path(), ErrNotCurrent)
	}
	pivot, err := findPivotMany(s, dests)
	if err != nil {
		return false, err
	}
	if err := checkDestinations(pivot, dests); err != nil {
		return false, err
	}

	root := s.Root()
	c := root.chart
	if !pivot.permitsExit(dests, o.data) {
		c.observer.OnGoto(s, dests, false)
		return false, nil
	}
	c.observer.OnGoto(s, dests, true)
	c.queue.Push(pending{pivot: pivot, dests: dests, opts: o})

	if c.depth == 0 {
		if err := root.flush(); err != nil {
			return false, err
		}
	}
	return true, nil
}

// Reset exits every current state of the tree without consulting canExit,
// drops queued transitions and forgets history. The tree can be entered
// again with Goto().
func (s *State) Reset() {
	root := s.Root()
	root.chart.queue.Clear()
	if root.current {
		root.exit(&gotoOptions{})
	}
	root.forget()
}

//
// Helpers (internal API)
//

// flush applies queued transitions in FIFO order, including ones queued by
// callbacks while flushing. A transition whose pivot was exited by an earlier
// one is stale and skipped. Entry targets are chosen before anything exits,
// so a failing condition leaves the configuration untouched; on error the
// remaining queue is dropped.
func (s *State) flush() error {
	c := s.chart
	c.depth++
	defer func() { c.depth-- }()
	for t, ok := c.queue.Pop(); ok; t, ok = c.queue.Pop() {
		if !t.pivot.current && t.pivot.parent != nil {
			continue
		}
		plan := entryPlan{}
		if err := t.pivot.plan(t.dests, &t.opts, plan); err != nil {
			c.queue.Clear()
			return err
		}
		c.sealed = true
		t.pivot.enter(plan, &t.opts)
	}
	return nil
}

// permitsExit asks every current state strictly below s for permission to
// exit.
func (s *State) permitsExit(dests []*State, data any) bool {
	for _, c := range s.children {
		if !c.current {
			continue
		}
		if c.canExit != nil && !c.canExit(c, dests, data) {
			return false
		}
		if !c.permitsExit(dests, data) {
			return false
		}
	}
	return true
}

// entryPlan maps each clustered state on an entry path to the child it
// enters.
type entryPlan map[*State]*State

func (s *State) plan(dests []*State, o *gotoOptions, p entryPlan) error {
	if s.concurrent {
		for _, c := range s.children {
			if err := c.plan(destsBelow(c, dests), o, p); err != nil {
				return err
			}
		}
		return nil
	}
	next, dests, err := s.chooseChild(dests, o)
	if err != nil || next == nil {
		return err
	}
	p[s] = next
	return next.plan(dests, o, p)
}

// chooseChild picks the child of a clustered state to enter: explicit
// destination, then condition, then history, then the first child. It also
// returns the destinations to carry below, which a condition replaces.
func (s *State) chooseChild(dests []*State, o *gotoOptions) (*State, []*State, error) {
	var next *State
	for _, d := range dests {
		c := s.childToward(d)
		if c == nil {
			continue
		}
		if next != nil && next != c {
			return nil, nil, fmt.Errorf("enter %s: %w (%s, %s)", s.Path(), ErrConflictingDestinations, next.name, c.name)
		}
		next = c
	}
	if next != nil || len(s.children) == 0 {
		return next, dests, nil
	}

	if s.condition != nil {
		if paths := s.condition(s, o.data); len(paths) > 0 {
			chosen, err := s.conditionTargets(paths)
			if err != nil {
				return nil, nil, err
			}
			return s.chooseChild(chosen, o)
		}
	}
	if s.history != NoHistory && s.previous != nil {
		return s.previous, dests, nil
	}
	return s.children[0], dests, nil
}

func destsBelow(c *State, dests []*State) []*State {
	var sub []*State
	for _, d := range dests {
		if d == c || c.childToward(d) != nil {
			sub = append(sub, d)
		}
	}
	return sub
}

// enter applies a plan below s. Only states missing from the current
// configuration (all of them when forced) run their enter callbacks.
func (s *State) enter(p entryPlan, o *gotoOptions) {
	if s.concurrent {
		if !s.current || o.force {
			s.activate(o)
		}
		for _, c := range s.children {
			c.enter(p, o)
		}
		return
	}
	next := p[s]
	if cur := s.activeChild(); cur != nil && cur != next {
		cur.exit(o)
	}
	if !s.current || o.force {
		s.activate(o)
	}
	if next != nil {
		next.enter(p, o)
	}
}

// conditionTargets resolves the paths a condition returned. Every target must
// lie strictly below s.
func (s *State) conditionTargets(paths []string) ([]*State, error) {
	chosen, err := s.resolveAll(paths)
	if err != nil {
		return nil, fmt.Errorf("condition of %s: %w", s.Path(), err)
	}
	for i, d := range chosen {
		if s.childToward(d) == nil {
			return nil, fmt.Errorf("condition of %s: %w", s.Path(),
				&PathError{Path: paths[i], From: s.Path(), Err: fmt.Errorf("%s is not a substate", d.Path())})
		}
	}
	if err := checkDestinations(s, chosen); err != nil {
		return nil, fmt.Errorf("condition of %s: %w", s.Path(), err)
	}
	return chosen, nil
}

func (s *State) activate(o *gotoOptions) {
	s.current = true
	s.observer().OnEnter(s)
	for _, fn := range s.enters {
		fn(s, o.data)
	}
}

// exit leaves s: children first, then history bookkeeping on the parent,
// then s's own exit callbacks.
func (s *State) exit(o *gotoOptions) {
	for _, c := range s.children {
		if c.current {
			c.exit(o)
		}
	}
	if p := s.parent; p != nil && p.history != NoHistory {
		p.previous = s
	}
	for _, fn := range s.exits {
		fn(s, o.data)
	}
	s.current = false
	s.observer().OnExit(s)
}

func (s *State) forget() {
	s.previous = nil
	for _, c := range s.children {
		c.forget()
	}
}
