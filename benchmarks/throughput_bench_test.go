package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/comalice/statetree/chartfile"
	"github.com/comalice/statetree/production"
)

// BenchmarkDrainThroughput feeds b.N events through a channel source into a
// chart, the way a service goroutine would.
func BenchmarkDrainThroughput(b *testing.B) {
	root := mustEnter(GenParallel(4))
	ch := make(chan production.Event, 1024)
	go func() {
		defer close(ch)
		ev := production.NewEvent("tick")
		for i := 0; i < b.N; i++ {
			ch <- ev
		}
	}()

	b.ReportAllocs()
	b.ResetTimer()
	if err := production.Drain(context.Background(), root, production.NewChannelEventSource(ch)); err != nil {
		b.Fatal(err)
	}
	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "events/sec")
}

func BenchmarkChartfileBuild(b *testing.B) {
	for _, n := range []int{10, 100} {
		b.Run(fmt.Sprintf("states=%d", n), func(b *testing.B) {
			data := GenChartYAML(n)
			b.SetBytes(int64(len(data)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				spec, err := chartfile.Parse(data)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := spec.Build(nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
