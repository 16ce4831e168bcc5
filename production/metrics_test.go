package production

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserver_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg, WithConstLabels(prometheus.Labels{"chart": "player"}))

	root := newPlayer(t)
	root.SetObserver(m)
	mustGoto(t, root)
	for _, ev := range []string{"play", "pause", "stop", "play", "bogus"} {
		if _, err := root.Send(ev); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"enters stopped", m.EntersTotal.WithLabelValues("/player/stopped"), 2},
		{"enters active", m.EntersTotal.WithLabelValues("/player/active"), 2},
		{"enters paused", m.EntersTotal.WithLabelValues("/player/active/paused"), 2},
		{"exits stopped", m.ExitsTotal.WithLabelValues("/player/stopped"), 2},
		{"play never handled by every region", m.EventsTotal.WithLabelValues("play", "false"), 2},
		{"handled play", m.EventsTotal.WithLabelValues("play", "true"), 0},
		{"unhandled bogus", m.EventsTotal.WithLabelValues("bogus", "false"), 1},
		{"accepted", m.TransitionsTotal.WithLabelValues("accepted"), 5},
		{"vetoed", m.TransitionsTotal.WithLabelValues("vetoed"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.c); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if n, err := testutil.GatherAndCount(reg, "statetree_chart_transitions_total"); err != nil || n != 2 {
		t.Errorf("GatherAndCount = %d, %v", n, err)
	}
}

func TestMetricsObserver_Namespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsObserver(reg, WithNamespace("door"))
	m.TransitionsTotal.WithLabelValues("accepted").Inc()

	n, err := testutil.GatherAndCount(reg, "door_chart_transitions_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected one series, got %d", n)
	}
}

func TestMetricsObserver_NilRegisterer(t *testing.T) {
	m := NewMetricsObserver(nil)
	m.OnGoto(nil, nil, false)
	if got := testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("vetoed")); got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}
