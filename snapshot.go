package statetree

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Snapshot is a read-only view of a tree's configuration at one point in time.
type Snapshot struct {
	ID      string            `json:"id" yaml:"id"`
	Name    string            `json:"name" yaml:"name"`
	Current []string          `json:"current" yaml:"current"`
	History map[string]string `json:"history,omitempty" yaml:"history,omitempty"`
	Taken   time.Time         `json:"taken" yaml:"taken"`
}

// Snapshot captures the current leaves and remembered history slots of the
// whole tree s belongs to.
func (s *State) Snapshot() Snapshot {
	root := s.Root()
	snap := Snapshot{
		ID:      root.chart.id,
		Name:    root.name,
		Current: root.Current(),
		Taken:   time.Now().UTC(),
	}
	root.walk(func(n *State) {
		if n.previous == nil {
			return
		}
		if snap.History == nil {
			snap.History = map[string]string{}
		}
		snap.History[n.Path()] = n.previous.Path()
	})
	return snap
}

// Match reports whether any current leaf under s has a path matching the
// doublestar pattern, e.g. "/player/**/playing".
func (s *State) Match(pattern string) (bool, error) {
	if !doublestar.ValidatePattern(pattern) {
		return false, doublestar.ErrBadPattern
	}
	for _, p := range s.Current() {
		ok, err := doublestar.Match(pattern, p)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// walk visits s and its descendants depth first, in declaration order.
func (s *State) walk(fn func(*State)) {
	fn(s)
	for _, c := range s.children {
		c.walk(fn)
	}
}
