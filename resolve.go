package statetree

import (
	"github.com/comalice/statetree/internal/primitives"
)

// Path returns the absolute path of s, e.g. "/a/b". The root's path is "/".
func (s *State) Path() string {
	if s.path != "" {
		return s.path
	}
	chain := s.ancestry()
	names := make([]string, 0, len(chain)-1)
	for _, n := range chain[1:] {
		names = append(names, n.name)
	}
	s.path = primitives.JoinPath(names)
	return s.path
}

// Resolve maps a path to a state, relative to s. A leading "/" starts at the
// root, "." is the current resolution point and ".." its parent; any other
// segment names a child.
func (s *State) Resolve(path string) (*State, error) {
	segs, err := primitives.SplitPath(path)
	if err != nil {
		return nil, &PathError{Path: path, From: s.Path(), Err: err}
	}
	at := s
	for _, seg := range segs {
		switch seg.Kind {
		case primitives.SegmentRoot:
			at = at.Root()
		case primitives.SegmentSelf:
		case primitives.SegmentParent:
			at = at.parent
		case primitives.SegmentChild:
			at = at.byName[seg.Name]
		}
		if at == nil {
			return nil, &PathError{Path: path, From: s.Path()}
		}
	}
	return at, nil
}

// resolveAll resolves every path relative to s, failing on the first miss.
func (s *State) resolveAll(paths []string) ([]*State, error) {
	states := make([]*State, 0, len(paths))
	for _, p := range paths {
		target, err := s.Resolve(p)
		if err != nil {
			return nil, err
		}
		states = append(states, target)
	}
	return states, nil
}
