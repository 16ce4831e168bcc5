package production

import (
	"sync/atomic"
	"time"

	"github.com/comalice/statetree"
)

// RecordKind names the observer callback a Record came from.
type RecordKind string

const (
	RecordEnter RecordKind = "enter"
	RecordExit  RecordKind = "exit"
	RecordEvent RecordKind = "event"
	RecordGoto  RecordKind = "goto"
)

// Record is a detached copy of one observer callback, safe to hand to other
// goroutines.
type Record struct {
	Chart   string     `json:"chart"`
	Kind    RecordKind `json:"kind"`
	State   string     `json:"state"`
	Event   string     `json:"event,omitempty"`
	Handled bool       `json:"handled,omitempty"`
	Targets []string   `json:"targets,omitempty"`
	OK      bool       `json:"ok,omitempty"`
	Time    time.Time  `json:"time"`
}

// ChannelPublisher is an Observer that forwards Records to a Go channel.
// Publishing never blocks the chart: records are dropped when the channel is
// full.
type ChannelPublisher struct {
	ch      chan<- Record
	dropped atomic.Uint64
	now     func() time.Time
}

// NewChannelPublisher creates a ChannelPublisher with the given output channel.
func NewChannelPublisher(ch chan<- Record) *ChannelPublisher {
	return &ChannelPublisher{ch: ch, now: time.Now}
}

func (p *ChannelPublisher) OnEnter(s *statetree.State) {
	p.publish(Record{Chart: s.ID(), Kind: RecordEnter, State: s.Path()})
}

func (p *ChannelPublisher) OnExit(s *statetree.State) {
	p.publish(Record{Chart: s.ID(), Kind: RecordExit, State: s.Path()})
}

func (p *ChannelPublisher) OnEvent(s *statetree.State, event string, handled bool) {
	p.publish(Record{Chart: s.ID(), Kind: RecordEvent, State: s.Path(), Event: event, Handled: handled})
}

func (p *ChannelPublisher) OnGoto(from *statetree.State, dests []*statetree.State, ok bool) {
	targets := make([]string, len(dests))
	for i, d := range dests {
		targets[i] = d.Path()
	}
	p.publish(Record{Chart: from.ID(), Kind: RecordGoto, State: from.Path(), Targets: targets, OK: ok})
}

// Dropped reports how many records were discarded on a full channel.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the output channel. The publisher must not be used afterwards.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}

func (p *ChannelPublisher) publish(r Record) {
	r.Time = p.now()
	select {
	case p.ch <- r:
	default:
		p.dropped.Add(1)
	}
}
