// Package statetree implements hierarchical, concurrent statecharts.
//
// A tree of State nodes is built once with Define. Clustered nodes keep at
// most one child current, concurrent nodes keep every child current. The root
// is entered with Goto() and driven with Send; enter, exit, event, condition
// and canExit callbacks attach behaviour to nodes.
//
// Execution is synchronous and single-threaded. Transitions requested from
// inside callbacks are queued on the root and applied, in order, once the
// outermost Send or Goto has finished its walk.
//
//	root, err := statetree.Define("door", func(b *statetree.Builder) {
//		b.State("closed", func(b *statetree.Builder) {
//			b.Event("open", func(s *statetree.State, _ ...any) bool {
//				s.Goto("../opened")
//				return true
//			})
//		})
//		b.State("opened", nil)
//	})
//	root.Goto()
//	root.Send("open")
//	root.Current() // ["/opened"]
package statetree

import (
	"fmt"
	"sort"

	"github.com/oklog/ulid/v2"

	"github.com/comalice/statetree/internal/primitives"
)

// HistoryMode selects how a clustered state picks its substate on re-entry.
type HistoryMode int

const (
	NoHistory HistoryMode = iota
	// ShallowHistory re-enters the most recently exited child.
	ShallowHistory
	// DeepHistory is ShallowHistory applied to every clustered descendant.
	DeepHistory
)

func (h HistoryMode) String() string {
	switch h {
	case NoHistory:
		return "none"
	case ShallowHistory:
		return "shallow"
	case DeepHistory:
		return "deep"
	default:
		return fmt.Sprintf("HistoryMode(%d)", int(h))
	}
}

// ActionFunc runs on state entry or exit. data is the value given to
// WithData on the Goto that caused the transition.
type ActionFunc func(s *State, data any)

// HandlerFunc handles a named event. Returning true marks the event handled
// and stops it bubbling to ancestors.
type HandlerFunc func(s *State, args ...any) bool

// ConditionFunc picks destination paths, relative to s, when a clustered
// state is entered without an explicit substate. Returning nil falls back to
// history and then to the first child.
type ConditionFunc func(s *State, data any) []string

// ExitGuardFunc vetoes a transition out of s when it returns false.
type ExitGuardFunc func(s *State, dest []*State, data any) bool

// State is a node in a statechart tree.
type State struct {
	name       string
	parent     *State
	children   []*State
	byName     map[string]*State
	concurrent bool
	history    HistoryMode

	condition ConditionFunc
	enters    []ActionFunc
	exits     []ActionFunc
	events    map[string]HandlerFunc
	canExit   ExitGuardFunc

	current  bool
	previous *State

	// caches, reset by invalidate
	path    string
	root    *State
	lineage []*State

	// set on roots only
	chart *chart
}

// chart is the runtime owned by a root node.
type chart struct {
	id       string
	queue    primitives.Queue[pending]
	depth    int
	observer Observer
	sealed   bool
}

func newState(name string) *State {
	return &State{
		name:   name,
		byName: map[string]*State{},
		events: map[string]HandlerFunc{},
	}
}

func newChart() *chart {
	return &chart{
		id:       ulid.Make().String(),
		observer: NoopObserver{},
	}
}

//
// Public API
//

// Name returns the state's name. The root carries the name given to Define.
func (s *State) Name() string { return s.name }

// Parent returns the owning state, or nil for the root.
func (s *State) Parent() *State { return s.parent }

// Children returns the substates in declaration order.
func (s *State) Children() []*State {
	return append([]*State(nil), s.children...)
}

// Child looks up a direct substate by name.
func (s *State) Child(name string) (*State, bool) {
	c, ok := s.byName[name]
	return c, ok
}

// IsConcurrent reports whether all children are current together.
func (s *State) IsConcurrent() bool { return s.concurrent }

// HistoryMode reports the state's history setting.
func (s *State) HistoryMode() HistoryMode { return s.history }

// Events returns the names of the events s handles itself, sorted.
func (s *State) Events() []string {
	names := make([]string, 0, len(s.events))
	for name := range s.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Active reports whether s is part of the current configuration.
func (s *State) Active() bool { return s.current }

// Root returns the root of the tree s belongs to.
func (s *State) Root() *State {
	if s.root != nil {
		return s.root
	}
	r := s
	for r.parent != nil {
		r = r.parent
	}
	s.root = r
	return r
}

// ID returns the chart instance identifier shared by every node of a tree.
func (s *State) ID() string {
	return s.Root().chart.id
}

// SetObserver installs o as the diagnostics hook of the whole tree. nil
// restores the no-op observer.
func (s *State) SetObserver(o Observer) {
	if o == nil {
		o = NoopObserver{}
	}
	s.Root().chart.observer = o
}

// Current returns the paths of the active leaf states under s, in
// declaration order. It is empty when s is not current.
func (s *State) Current() []string {
	var paths []string
	for _, leaf := range s.activeLeaves(nil) {
		paths = append(paths, leaf.Path())
	}
	return paths
}

// IsCurrent resolves path relative to s and reports whether the state it names
// is current. Unresolvable paths report false.
func (s *State) IsCurrent(path string) bool {
	target, err := s.Resolve(path)
	return err == nil && target.current
}

// Attach grafts the tree rooted at child under s. Both trees must not have
// been entered yet. Caches of the grafted nodes are reset and deep history on
// s or its ancestors is inherited.
func (s *State) Attach(child *State) error {
	root := s.Root()
	switch {
	case child == nil:
		return fmt.Errorf("attach to %s: %w: nil state", s.Path(), ErrInvalidDefinition)
	case root.chart.sealed:
		return fmt.Errorf("attach %q to %s: %w", child.name, s.Path(), ErrSealed)
	case child.parent != nil:
		return fmt.Errorf("attach %q to %s: %w: already attached under %s", child.name, s.Path(), ErrInvalidDefinition, child.parent.Path())
	case child == root:
		return fmt.Errorf("attach %q to %s: %w: cycle", child.name, s.Path(), ErrInvalidDefinition)
	case child.chart != nil && child.chart.sealed:
		return fmt.Errorf("attach %q to %s: %w: tree already entered", child.name, s.Path(), ErrSealed)
	}
	if err := s.addChild(child); err != nil {
		return err
	}
	child.chart = nil
	return nil
}

//
// Helpers (internal API)
//

// addChild links child under s, applying inherited deep history.
func (s *State) addChild(child *State) error {
	if err := primitives.ValidateName(child.name); err != nil {
		return fmt.Errorf("substate of %s: %w: %w", s.Path(), ErrInvalidDefinition, err)
	}
	if _, exists := s.byName[child.name]; exists {
		return fmt.Errorf("substate %q of %s: %w: duplicate name", child.name, s.Path(), ErrInvalidDefinition)
	}
	child.parent = s
	s.children = append(s.children, child)
	s.byName[child.name] = child
	if s.inheritsDeep() {
		child.propagateDeep()
	}
	child.invalidate()
	return nil
}

// inheritsDeep reports whether substates added under s get deep history.
func (s *State) inheritsDeep() bool {
	for n := s; n != nil; n = n.parent {
		if n.history == DeepHistory {
			return true
		}
	}
	return false
}

func (s *State) propagateDeep() {
	if !s.concurrent {
		s.history = DeepHistory
	}
	for _, c := range s.children {
		c.propagateDeep()
	}
}

func (s *State) invalidate() {
	s.path = ""
	s.root = nil
	s.lineage = nil
	for _, c := range s.children {
		c.invalidate()
	}
}

// ancestry returns the states from the root down to s, inclusive.
func (s *State) ancestry() []*State {
	if s.lineage != nil {
		return s.lineage
	}
	var chain []*State
	for n := s; n != nil; n = n.parent {
		chain = append(chain, n)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	s.lineage = chain
	return chain
}

// activeChild returns the current child of a clustered state.
func (s *State) activeChild() *State {
	for _, c := range s.children {
		if c.current {
			return c
		}
	}
	return nil
}

func (s *State) activeLeaves(acc []*State) []*State {
	if !s.current {
		return acc
	}
	if len(s.children) == 0 {
		return append(acc, s)
	}
	for _, c := range s.children {
		if c.current {
			acc = c.activeLeaves(acc)
		}
	}
	return acc
}

func (s *State) String() string {
	return s.Path()
}

func (s *State) observer() Observer {
	return s.Root().chart.observer
}
