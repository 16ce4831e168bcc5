package production

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/comalice/statetree"
)

// Event is an externally produced event waiting to be sent to a chart.
type Event struct {
	Name string
	Args []any
}

// NewEvent creates an Event.
func NewEvent(name string, args ...any) Event {
	return Event{Name: name, Args: args}
}

// EventSource feeds external events into Drain.
type EventSource interface {
	Events() <-chan Event
}

// ChannelEventSource is an EventSource backed by a Go channel. The channel
// should be buffered if producers must not block on a busy chart.
type ChannelEventSource struct {
	ch chan Event
}

// NewChannelEventSource creates a ChannelEventSource with the given channel.
func NewChannelEventSource(ch chan Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

// Events returns the receive-only channel for events.
func (s *ChannelEventSource) Events() <-chan Event {
	return s.ch
}

// TimerEventSource emits the same event every period.
// Useful for timeout and heartbeat statecharts.
type TimerEventSource struct {
	ch     chan Event
	event  Event
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// NewTimerEventSource starts a TimerEventSource emitting event every d.
// Ticks are dropped while the buffer is full.
func NewTimerEventSource(event Event, d time.Duration) *TimerEventSource {
	t := &TimerEventSource{
		ch:     make(chan Event, 10),
		event:  event,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerEventSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- t.event:
			default:
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the event channel. It is closed after Stop.
func (t *TimerEventSource) Events() <-chan Event {
	return t.ch
}

// Stop stops the ticker and closes the channel. Calling it again is a no-op.
func (t *TimerEventSource) Stop() {
	t.once.Do(func() { close(t.stop) })
}

// DrainOption configures Drain.
type DrainOption func(*drainConfig)

type drainConfig struct {
	logger  *slog.Logger
	onError func(Event, error)
}

// WithLogger sets the logger used for unhandled events. Default slog.Default().
func WithLogger(l *slog.Logger) DrainOption {
	return func(c *drainConfig) { c.logger = l }
}

// WithErrorHandler makes Drain report Send errors to fn and keep going
// instead of returning the first one.
func WithErrorHandler(fn func(Event, error)) DrainOption {
	return func(c *drainConfig) { c.onError = fn }
}

// Drain sends every event from src to the chart s belongs to, one at a time
// on the calling goroutine, until src closes or ctx is done. The chart is
// entered first if it is not active yet. Drain must be the only caller
// driving the chart while it runs.
func Drain(ctx context.Context, s *statetree.State, src EventSource, opts ...DrainOption) error {
	cfg := drainConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	root := s.Root()
	if !root.Active() {
		if _, err := root.Goto(); err != nil {
			return fmt.Errorf("enter chart: %w", err)
		}
	}

	events := src.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !root.Active() {
				return fmt.Errorf("event %q: %w", ev.Name, statetree.ErrNotCurrent)
			}
			handled, err := root.Send(ev.Name, ev.Args...)
			if err != nil {
				if cfg.onError == nil {
					return fmt.Errorf("event %q: %w", ev.Name, err)
				}
				cfg.onError(ev, err)
				continue
			}
			if !handled {
				cfg.logger.Debug("event_unhandled",
					slog.String("chart", root.ID()),
					slog.String("event", ev.Name),
				)
			}
		}
	}
}
