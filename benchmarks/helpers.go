// Package benchmarks provides shared chart generators for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statetree"
	"github.com/comalice/statetree/chartfile"
)

// gotoOn returns a handler moving to target, reporting the event handled
// when the transition is accepted.
func gotoOn(target string) statetree.HandlerFunc {
	return func(s *statetree.State, _ ...any) bool {
		ok, err := s.Goto(target)
		return ok && err == nil
	}
}

// GenFlat creates a flat chart with n states cycling via "tick" events.
func GenFlat(n int) *statetree.State {
	if n < 1 {
		n = 1
	}
	root, err := statetree.Define(fmt.Sprintf("flat_%d", n), func(b *statetree.Builder) {
		for i := 0; i < n; i++ {
			b.State(fmt.Sprintf("s%d", i), func(b *statetree.Builder) {
				b.Event("tick", gotoOn(fmt.Sprintf("../s%d", (i+1)%n)))
			})
		}
	})
	if err != nil {
		panic(err)
	}
	return root
}

// GenDeep creates a chain of depth nested states with two leaves at the
// bottom flipping on "tick". With history set, every level remembers its
// child.
func GenDeep(depth int, history statetree.HistoryMode) *statetree.State {
	if depth < 1 {
		depth = 1
	}
	var nest func(b *statetree.Builder, level int)
	nest = func(b *statetree.Builder, level int) {
		if level == depth {
			b.State("leaf1", func(b *statetree.Builder) { b.Event("tick", gotoOn("../leaf2")) })
			b.State("leaf2", func(b *statetree.Builder) { b.Event("tick", gotoOn("../leaf1")) })
			return
		}
		b.State(fmt.Sprintf("c%d", level), func(b *statetree.Builder) {
			nest(b, level+1)
		}, statetree.History(history))
	}
	root, err := statetree.Define(fmt.Sprintf("deep_%d", depth), func(b *statetree.Builder) {
		nest(b, 0)
	})
	if err != nil {
		panic(err)
	}
	return root
}

// GenParallel creates a concurrent chart with n regions, each flipping two
// leaves on "tick".
func GenParallel(n int) *statetree.State {
	root, err := statetree.Define(fmt.Sprintf("parallel_%d", n), func(b *statetree.Builder) {
		for i := 0; i < n; i++ {
			b.State(fmt.Sprintf("r%d", i), func(b *statetree.Builder) {
				b.State("a", func(b *statetree.Builder) { b.Event("tick", gotoOn("../b")) })
				b.State("b", func(b *statetree.Builder) { b.Event("tick", gotoOn("../a")) })
			})
		}
	}, statetree.Concurrent())
	if err != nil {
		panic(err)
	}
	return root
}

// GenChartYAML generates a chart document with n flat states, as read by
// the chartfile package.
func GenChartYAML(n int) []byte {
	spec := chartfile.StateSpec{Name: fmt.Sprintf("flat_%d", n)}
	for i := 0; i < n; i++ {
		spec.States = append(spec.States, chartfile.StateSpec{
			Name: fmt.Sprintf("s%d", i),
			Events: map[string]chartfile.EventSpec{
				"tick": {Goto: []string{fmt.Sprintf("../s%d", (i+1)%n)}},
			},
		})
	}
	data, err := yaml.Marshal(&spec)
	if err != nil {
		panic(err)
	}
	return data
}

// mustEnter enters root's default configuration.
func mustEnter(root *statetree.State) *statetree.State {
	if _, err := root.Goto(); err != nil {
		panic(err)
	}
	return root
}
