package production

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/comalice/statetree"
)

func TestDrain_SendsInOrder(t *testing.T) {
	root := newPlayer(t)
	ch := make(chan Event, 4)
	ch <- NewEvent("play")
	ch <- NewEvent("pause")
	ch <- NewEvent("bogus", 1, 2)
	close(ch)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if err := Drain(context.Background(), root, NewChannelEventSource(ch), WithLogger(logger)); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	if !root.IsCurrent("/player/active/paused") {
		t.Errorf("Current = %v", root.Current())
	}
	if !strings.Contains(buf.String(), "event=bogus") {
		t.Errorf("expected unhandled event log, got %q", buf.String())
	}
}

func newBroken(t *testing.T) *statetree.State {
	t.Helper()
	root, err := statetree.Define("broken", func(b *statetree.Builder) {
		b.State("idle", func(b *statetree.Builder) {
			b.Event("fail", func(s *statetree.State, _ ...any) bool {
				_, _ = s.Goto("../target")
				return true
			})
		})
		b.State("target", func(b *statetree.Builder) {
			b.Condition(func(*statetree.State, any) []string { return []string{"missing"} })
			b.State("t1", nil)
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func TestDrain_ReturnsSendError(t *testing.T) {
	root := newBroken(t)
	ch := make(chan Event, 1)
	ch <- NewEvent("fail")

	err := Drain(context.Background(), root, NewChannelEventSource(ch))
	if !errors.Is(err, statetree.ErrUnresolvablePath) {
		t.Fatalf("expected ErrUnresolvablePath, got %v", err)
	}
}

func TestDrain_ErrorHandlerKeepsGoing(t *testing.T) {
	root := newBroken(t)
	ch := make(chan Event, 2)
	ch <- NewEvent("fail")
	ch <- NewEvent("other")
	close(ch)

	var failed []string
	err := Drain(context.Background(), root, NewChannelEventSource(ch), WithErrorHandler(func(ev Event, err error) {
		failed = append(failed, ev.Name)
	}))
	if err != nil {
		t.Fatalf("Drain failed: %v", err)
	}
	if len(failed) != 1 || failed[0] != "fail" {
		t.Errorf("failed = %v", failed)
	}
}

func TestDrain_StopsOnContext(t *testing.T) {
	root := newPlayer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Drain(ctx, root, NewChannelEventSource(make(chan Event)))
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after cancel")
	}
}

func TestDrain_StopsWhenChartExits(t *testing.T) {
	root, err := statetree.Define("oneshot", func(b *statetree.Builder) {
		b.State("on", func(b *statetree.Builder) {
			b.Event("off", func(s *statetree.State, _ ...any) bool {
				s.Reset()
				return true
			})
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	ch := make(chan Event, 2)
	ch <- NewEvent("off")
	ch <- NewEvent("off")

	err = Drain(context.Background(), root, NewChannelEventSource(ch))
	if !errors.Is(err, statetree.ErrNotCurrent) {
		t.Fatalf("expected ErrNotCurrent, got %v", err)
	}
}

func TestTimerEventSource(t *testing.T) {
	s := NewTimerEventSource(NewEvent("tick", "data"), 10*time.Millisecond)

	select {
	case ev := <-s.Events():
		if ev.Name != "tick" || len(ev.Args) != 1 || ev.Args[0] != "data" {
			t.Errorf("wrong event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	s.Stop()
	s.Stop()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after Stop")
		}
	}
}

func TestChannelEventSource(t *testing.T) {
	ch := make(chan Event, 1)
	s := NewChannelEventSource(ch)
	ch <- NewEvent("x")
	if ev := <-s.Events(); ev.Name != "x" {
		t.Errorf("got %+v", ev)
	}
}
