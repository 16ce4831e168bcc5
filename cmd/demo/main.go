// Command demo cycles a traffic light on a timer, printing the published
// records, then the final DOT rendering and a snapshot.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/comalice/statetree"
	"github.com/comalice/statetree/production"
)

const cycles = 12

func main() {
	light, err := statetree.Define("traffic-light", func(b *statetree.Builder) {
		for _, c := range []struct{ name, next string }{
			{"red", "green"},
			{"green", "yellow"},
			{"yellow", "red"},
		} {
			b.State(c.name, func(b *statetree.Builder) {
				b.Event("TIMER", func(s *statetree.State, _ ...any) bool {
					ok, err := s.Goto("../" + c.next)
					return ok && err == nil
				})
			})
		}
	})
	if err != nil {
		panic(err)
	}

	dir, err := os.MkdirTemp("", "traffic-light")
	if err != nil {
		panic(err)
	}
	snapshots, err := production.NewJSONSnapshotWriter(dir)
	if err != nil {
		panic(err)
	}

	records := make(chan production.Record, 100)
	publisher := production.NewChannelPublisher(records)

	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	light.SetObserver(statetree.NewCompositeObserver(
		publisher,
		production.NewMetricsObserver(reg),
		statetree.NewLoggingObserver(logger),
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timer := production.NewTimerEventSource(production.NewEvent("TIMER"), 2*time.Second)
	defer timer.Stop()
	src := production.NewChannelEventSource(limit(ctx, timer.Events(), cycles))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range records {
			switch r.Kind {
			case production.RecordEnter:
				fmt.Printf("%s  enter %s\n", r.Time.Format(time.TimeOnly), r.State)
			case production.RecordEvent:
				fmt.Printf("%s  %s handled=%t\n", r.Time.Format(time.TimeOnly), r.Event, r.Handled)
			}
		}
	}()

	if err := production.Drain(ctx, light, src, production.WithLogger(logger)); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "drain:", err)
		os.Exit(1)
	}
	publisher.Close()
	<-done

	fmt.Print("\n", (&production.Visualizer{}).DOT(light))
	snap := light.Snapshot()
	path, err := snapshots.Write(context.Background(), snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "snapshot:", err)
		os.Exit(1)
	}
	version, err := production.NewMemoryRegistry().Register(context.Background(), snap)
	if err != nil {
		fmt.Fprintln(os.Stderr, "register:", err)
		os.Exit(1)
	}
	fmt.Println("\nFinal configuration:", light.Current())
	fmt.Println("Snapshot written to", path, "version", version)
	fmt.Println("Dropped records:", publisher.Dropped())

	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintln(os.Stderr, "metrics:", err)
		os.Exit(1)
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		fmt.Printf("%s %g\n", mf.GetName(), total)
	}
}

// limit forwards at most n events from in, then closes.
func limit(ctx context.Context, in <-chan production.Event, n int) chan production.Event {
	out := make(chan production.Event)
	go func() {
		defer close(out)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				out <- ev
			}
		}
	}()
	return out
}
