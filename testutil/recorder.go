// Package testutil provides helpers shared by statetree tests.
package testutil

import (
	"fmt"
	"sync"

	"github.com/comalice/statetree"
)

// Recorder collects labelled callback invocations in call order. It also
// implements statetree.Observer so engine-level callbacks land in the same
// log.
type Recorder struct {
	mu      sync.Mutex
	entries []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add appends one entry.
func (r *Recorder) Add(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

// Clear drops all entries.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Enter returns an enter callback recording "<label>.enter".
func (r *Recorder) Enter(label string) statetree.ActionFunc {
	return func(*statetree.State, any) { r.Add(label + ".enter") }
}

// Exit returns an exit callback recording "<label>.exit".
func (r *Recorder) Exit(label string) statetree.ActionFunc {
	return func(*statetree.State, any) { r.Add(label + ".exit") }
}

// Handler returns an event handler recording "<label>.<event>" and returning
// result.
func (r *Recorder) Handler(label, event string, result bool) statetree.HandlerFunc {
	return func(*statetree.State, ...any) bool {
		r.Add(label + "." + event)
		return result
	}
}

// Observer implementation.

func (r *Recorder) OnEnter(s *statetree.State) { r.Add("enter " + s.Path()) }

func (r *Recorder) OnExit(s *statetree.State) { r.Add("exit " + s.Path()) }

func (r *Recorder) OnEvent(s *statetree.State, event string, handled bool) {
	r.Add(fmt.Sprintf("event %s %s %t", event, s.Path(), handled))
}

func (r *Recorder) OnGoto(from *statetree.State, dests []*statetree.State, ok bool) {
	r.Add(fmt.Sprintf("goto %s %d %t", from.Path(), len(dests), ok))
}
