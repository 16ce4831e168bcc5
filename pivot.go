package statetree

import (
	"fmt"
	"strings"
)

// findPivot returns the lowest common ancestor of from and to: the deepest
// state present at the same index of both root-to-node chains.
func findPivot(from, to *State) (*State, error) {
	left, right := from.ancestry(), to.ancestry()
	var pivot *State
	for i := 0; i < len(left) && i < len(right); i++ {
		if left[i] != right[i] {
			break
		}
		pivot = left[i]
	}
	if pivot == nil {
		return nil, fmt.Errorf("pivot of %s and %s: %w", from.Path(), to.Path(), ErrForeignState)
	}
	return pivot, nil
}

// findPivotMany returns the pivot shared by from and every destination. With
// no destinations the pivot is from itself. A concurrent pivot other than from
// means the transition would cross between orthogonal regions.
func findPivotMany(from *State, dests []*State) (*State, error) {
	pivot := from
	for i, to := range dests {
		p, err := findPivot(from, to)
		if err != nil {
			return nil, err
		}
		if i > 0 && p != pivot {
			return nil, fmt.Errorf("goto from %s to [%s]: %w (%s, %s)",
				from.Path(), joinPaths(dests), ErrAmbiguousPivot, pivot.Path(), p.Path())
		}
		pivot = p
	}
	if pivot.concurrent && pivot != from {
		return nil, fmt.Errorf("goto from %s to [%s]: %w", from.Path(), joinPaths(dests), ErrConcurrencyCrossing)
	}
	return pivot, nil
}

// checkDestinations verifies that no clustered state below pivot would have to
// enter two different children to reach dests.
func checkDestinations(pivot *State, dests []*State) error {
	chosen := map[*State]*State{}
	for _, d := range dests {
		chain := d.ancestry()
		for depth := len(pivot.ancestry()) - 1; depth < len(chain)-1; depth++ {
			node, next := chain[depth], chain[depth+1]
			if node.concurrent {
				continue
			}
			if prev, ok := chosen[node]; ok && prev != next {
				return fmt.Errorf("enter %s: %w (%s, %s)", node.Path(), ErrConflictingDestinations, prev.name, next.name)
			}
			chosen[node] = next
		}
	}
	return nil
}

// childToward returns the child of s on the way down to d, or nil when d is
// not a strict descendant of s.
func (s *State) childToward(d *State) *State {
	depth := len(s.ancestry())
	chain := d.ancestry()
	if len(chain) <= depth || chain[depth-1] != s {
		return nil
	}
	return chain[depth]
}

func joinPaths(states []*State) string {
	paths := make([]string, len(states))
	for i, s := range states {
		paths[i] = s.Path()
	}
	return strings.Join(paths, ", ")
}
