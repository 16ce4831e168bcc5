package benchmarks

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/comalice/statetree"
)

// reportFootprint builds count charts with gen and reports the average heap
// allocated per chart and per state.
func reportFootprint(b *testing.B, count, states int, gen func() *statetree.State) {
	b.Helper()
	charts := make([]*statetree.State, count)
	var before runtime.MemStats
	runtime.ReadMemStats(&before)
	for i := range charts {
		charts[i] = mustEnter(gen())
	}
	runtime.GC()
	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	runtime.KeepAlive(charts)

	perChart := (after.TotalAlloc - before.TotalAlloc) / uint64(count)
	b.ReportMetric(float64(perChart)/1024, "KB/chart")
	b.ReportMetric(float64(perChart)/float64(states), "B/state")
}

func BenchmarkMemoryFlat(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(fmt.Sprintf("states=%d", n), func(b *testing.B) {
			reportFootprint(b, 100, n+1, func() *statetree.State { return GenFlat(n) })
		})
	}
}

func BenchmarkMemoryDeep(b *testing.B) {
	for _, depth := range []int{1, 5, 20} {
		b.Run(fmt.Sprintf("depth=%d", depth), func(b *testing.B) {
			// root, one state per level and two leaves
			states := depth + 3
			reportFootprint(b, 100, states, func() *statetree.State {
				return GenDeep(depth, statetree.DeepHistory)
			})
		})
	}
}

func BenchmarkDefine(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		GenFlat(100)
	}
}
