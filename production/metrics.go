package production

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/comalice/statetree"
)

const (
	defaultNamespace = "statetree"
	metricsSubsystem = "chart"
)

// MetricsOption configures a MetricsObserver.
type MetricsOption func(*metricsConfig)

type metricsConfig struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace overrides the metric namespace (default "statetree").
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = ns }
}

// WithConstLabels attaches fixed labels, such as a chart name, to every
// metric.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *metricsConfig) { c.constLabels = labels }
}

// MetricsObserver counts state entries, exits, events and transitions.
//
// All operations are thread-safe via Prometheus's internal locking.
type MetricsObserver struct {
	// EntersTotal counts state entries. Labels: state
	EntersTotal *prometheus.CounterVec

	// ExitsTotal counts state exits. Labels: state
	ExitsTotal *prometheus.CounterVec

	// EventsTotal counts dispatched events. Labels: event, handled
	EventsTotal *prometheus.CounterVec

	// TransitionsTotal counts Goto requests. Labels: outcome (accepted, vetoed)
	TransitionsTotal *prometheus.CounterVec
}

// NewMetricsObserver creates the counters and registers them with reg. A nil
// reg leaves them unregistered. Registering twice with the same registry
// panics.
func NewMetricsObserver(reg prometheus.Registerer, opts ...MetricsOption) *MetricsObserver {
	cfg := metricsConfig{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(reg)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.namespace,
			Subsystem:   metricsSubsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.constLabels,
		}, labels)
	}
	return &MetricsObserver{
		EntersTotal:      counter("enters_total", "Total number of state entries by state path", "state"),
		ExitsTotal:       counter("exits_total", "Total number of state exits by state path", "state"),
		EventsTotal:      counter("events_total", "Total number of dispatched events by name and outcome", "event", "handled"),
		TransitionsTotal: counter("transitions_total", "Total number of transition requests by outcome", "outcome"),
	}
}

func (m *MetricsObserver) OnEnter(s *statetree.State) {
	m.EntersTotal.WithLabelValues(s.Path()).Inc()
}

func (m *MetricsObserver) OnExit(s *statetree.State) {
	m.ExitsTotal.WithLabelValues(s.Path()).Inc()
}

func (m *MetricsObserver) OnEvent(_ *statetree.State, event string, handled bool) {
	m.EventsTotal.WithLabelValues(event, strconv.FormatBool(handled)).Inc()
}

func (m *MetricsObserver) OnGoto(_ *statetree.State, _ []*statetree.State, ok bool) {
	outcome := "accepted"
	if !ok {
		outcome = "vetoed"
	}
	m.TransitionsTotal.WithLabelValues(outcome).Inc()
}
