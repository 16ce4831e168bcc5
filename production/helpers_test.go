package production

import (
	"testing"

	"github.com/comalice/statetree"
)

// newPlayer builds a small chart used across this package's tests:
//
//	/ (concurrent)
//	  player: stopped | active (H) { playing | paused }
//	  volume: normal | muted
func newPlayer(t *testing.T) *statetree.State {
	t.Helper()
	root, err := statetree.Define("player", func(b *statetree.Builder) {
		b.State("player", func(b *statetree.Builder) {
			b.State("stopped", func(b *statetree.Builder) {
				b.Event("play", func(s *statetree.State, _ ...any) bool {
					_, _ = s.Goto("../active")
					return true
				})
			})
			b.State("active", func(b *statetree.Builder) {
				b.Event("stop", func(s *statetree.State, _ ...any) bool {
					_, _ = s.Goto("../stopped")
					return true
				})
				b.State("playing", func(b *statetree.Builder) {
					b.Event("pause", func(s *statetree.State, _ ...any) bool {
						_, _ = s.Goto("../paused")
						return true
					})
				})
				b.State("paused", nil)
			}, statetree.History(statetree.ShallowHistory))
		})
		b.State("volume", func(b *statetree.Builder) {
			b.State("normal", nil)
			b.State("muted", nil)
		})
	}, statetree.Concurrent())
	if err != nil {
		t.Fatalf("Define failed: %v", err)
	}
	return root
}

func mustGoto(t *testing.T, s *statetree.State, paths ...string) {
	t.Helper()
	ok, err := s.Goto(paths...)
	if err != nil || !ok {
		t.Fatalf("Goto(%v) = %v, %v", paths, ok, err)
	}
}
