package statetree

import (
	"context"
	"fmt"
	"log/slog"
)

// Observer receives callbacks from a statechart for tracing, logging and
// metrics. Observers see the tree but must not drive it: calling Goto, Send
// or Reset from an observer is not supported.
type Observer interface {
	// OnEnter is called when s becomes current, before its enter callbacks.
	OnEnter(s *State)

	// OnExit is called after s's exit callbacks, once it is no longer current.
	OnExit(s *State)

	// OnEvent is called after a Send dispatch walk, before queued
	// transitions are applied.
	OnEvent(s *State, event string, handled bool)

	// OnGoto is called when a transition from "from" is accepted (ok) or
	// vetoed by a canExit predicate.
	OnGoto(from *State, dests []*State, ok bool)
}

// NoopObserver is an Observer that does nothing.
// It is the default for every new tree.
type NoopObserver struct{}

func (NoopObserver) OnEnter(*State)                {}
func (NoopObserver) OnExit(*State)                 {}
func (NoopObserver) OnEvent(*State, string, bool)  {}
func (NoopObserver) OnGoto(*State, []*State, bool) {}

// CompositeObserver fans out callbacks to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards callbacks to each
// non-nil observer in obs, in order.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnEnter(s *State) {
	for _, o := range c.observers {
		o.OnEnter(s)
	}
}

func (c *CompositeObserver) OnExit(s *State) {
	for _, o := range c.observers {
		o.OnExit(s)
	}
}

func (c *CompositeObserver) OnEvent(s *State, event string, handled bool) {
	for _, o := range c.observers {
		o.OnEvent(s, event, handled)
	}
}

func (c *CompositeObserver) OnGoto(from *State, dests []*State, ok bool) {
	for _, o := range c.observers {
		o.OnGoto(from, dests, ok)
	}
}

// TraceObserver formats every callback as a single line and hands it to fn.
type TraceObserver struct {
	fn func(string)
}

// NewTraceObserver returns an Observer writing lines such as
// "enter /a/b" or "event open on / handled=true" to fn.
func NewTraceObserver(fn func(line string)) Observer {
	if fn == nil {
		return NoopObserver{}
	}
	return &TraceObserver{fn: fn}
}

func (t *TraceObserver) OnEnter(s *State) { t.fn("enter " + s.Path()) }

func (t *TraceObserver) OnExit(s *State) { t.fn("exit " + s.Path()) }

func (t *TraceObserver) OnEvent(s *State, event string, handled bool) {
	t.fn(fmt.Sprintf("event %s on %s handled=%t", event, s.Path(), handled))
}

func (t *TraceObserver) OnGoto(from *State, dests []*State, ok bool) {
	line := fmt.Sprintf("goto %s -> [%s]", from.Path(), joinPaths(dests))
	if !ok {
		line += " vetoed"
	}
	t.fn(line)
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs state lifecycle callbacks
// using the provided slog.Logger. If logger is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnEnter(s *State) {
	o.Logger.Debug("state_enter",
		slog.String("chart", s.ID()),
		slog.String("state", s.Path()),
	)
}

func (o *LoggingObserver) OnExit(s *State) {
	o.Logger.Debug("state_exit",
		slog.String("chart", s.ID()),
		slog.String("state", s.Path()),
	)
}

func (o *LoggingObserver) OnEvent(s *State, event string, handled bool) {
	level := slog.LevelInfo
	if !handled {
		level = slog.LevelWarn
	}
	o.Logger.Log(context.Background(), level, "event",
		slog.String("chart", s.ID()),
		slog.String("state", s.Path()),
		slog.String("event", event),
		slog.Bool("handled", handled),
	)
}

func (o *LoggingObserver) OnGoto(from *State, dests []*State, ok bool) {
	level := slog.LevelInfo
	if !ok {
		level = slog.LevelWarn
	}
	targets := make([]string, len(dests))
	for i, d := range dests {
		targets[i] = d.Path()
	}
	o.Logger.Log(context.Background(), level, "goto",
		slog.String("chart", from.ID()),
		slog.String("from", from.Path()),
		slog.Any("to", targets),
		slog.Bool("accepted", ok),
	)
}
