package production

import (
	"reflect"
	"testing"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan Record, 32)
	p := NewChannelPublisher(ch)

	root := newPlayer(t)
	root.SetObserver(p)
	mustGoto(t, root)
	if _, err := root.Send("play"); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	var kinds []RecordKind
	var play, move Record
	for r := range ch {
		if r.Chart != root.ID() {
			t.Errorf("record for chart %s, want %s", r.Chart, root.ID())
		}
		if r.Time.IsZero() {
			t.Error("record without time")
		}
		kinds = append(kinds, r.Kind)
		if r.Kind == RecordEvent {
			play = r
		}
		if r.Kind == RecordGoto && r.State == "/player/stopped" {
			move = r
		}
	}
	if kinds[0] != RecordGoto || kinds[1] != RecordEnter {
		t.Errorf("unexpected leading records %v", kinds)
	}
	// volume has no "play" handler, so the concurrent root reports unhandled
	if play.Event != "play" || play.Handled || play.State != "/" {
		t.Errorf("event record = %+v", play)
	}
	if !move.OK || !reflect.DeepEqual(move.Targets, []string{"/player/active"}) {
		t.Errorf("goto record = %+v", move)
	}
	if p.Dropped() != 0 {
		t.Errorf("Dropped = %d, want 0", p.Dropped())
	}
}

func TestChannelPublisher_DropsWhenFull(t *testing.T) {
	ch := make(chan Record, 1)
	p := NewChannelPublisher(ch)

	root := newPlayer(t)
	root.SetObserver(p)
	mustGoto(t, root)

	// goto + enter of /, /player, /player/stopped, /volume, /volume/normal
	if got := p.Dropped(); got != 5 {
		t.Errorf("Dropped = %d, want 5", got)
	}
	if r := <-ch; r.Kind != RecordGoto {
		t.Errorf("first record kind = %s, want goto", r.Kind)
	}
}
