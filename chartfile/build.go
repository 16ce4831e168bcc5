package chartfile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/comalice/statetree"
)

// Build defines the statechart described by spec. Callback names resolve
// through funcs (nil means no bindings); goto targets are resolved once the
// tree exists, so a bad path fails here rather than on first dispatch.
func (spec *StateSpec) Build(funcs *Funcs) (*statetree.State, error) {
	if funcs == nil {
		funcs = NewFuncs()
	}
	var errs []error
	root, err := statetree.Define(spec.Name, func(b *statetree.Builder) {
		spec.declare(b, funcs, &errs)
	}, spec.options()...)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := spec.checkTargets(root); err != nil {
		return nil, err
	}
	return root, nil
}

func (spec *StateSpec) options() []statetree.StateOption {
	var opts []statetree.StateOption
	if spec.Concurrent {
		opts = append(opts, statetree.Concurrent())
	}
	switch spec.History {
	case "shallow":
		opts = append(opts, statetree.History(statetree.ShallowHistory))
	case "deep":
		opts = append(opts, statetree.History(statetree.DeepHistory))
	}
	return opts
}

func (spec *StateSpec) declare(b *statetree.Builder, funcs *Funcs, errs *[]error) {
	unknown := func(kind, name string) {
		*errs = append(*errs, fmt.Errorf("state %s: %s %q: %w", b.Node().Path(), kind, name, ErrUnknownFunc))
	}

	for _, name := range spec.Enter {
		if fn, ok := funcs.action(name); ok {
			b.Enter(fn)
		} else {
			unknown("enter", name)
		}
	}
	for _, name := range spec.Exit {
		if fn, ok := funcs.action(name); ok {
			b.Exit(fn)
		} else {
			unknown("exit", name)
		}
	}
	if spec.Condition != "" {
		if fn, ok := funcs.condition(spec.Condition); ok {
			b.Condition(fn)
		} else {
			unknown("condition", spec.Condition)
		}
	}
	if spec.CanExit != "" {
		if fn, ok := funcs.guard(spec.CanExit); ok {
			b.CanExit(fn)
		} else {
			unknown("canExit", spec.CanExit)
		}
	}
	for _, event := range sortedKeys(spec.Events) {
		ev := spec.Events[event]
		if len(ev.Goto) > 0 {
			b.Event(event, gotoHandler(ev.Goto))
			continue
		}
		if fn, ok := funcs.handler(ev.Handler); ok {
			b.Event(event, fn)
		} else {
			unknown("handler", ev.Handler)
		}
	}

	for i := range spec.States {
		child := &spec.States[i]
		b.State(child.Name, func(b *statetree.Builder) {
			child.declare(b, funcs, errs)
		}, child.options()...)
	}
}

// gotoHandler reports the event handled when the transition was accepted.
// A vetoed or failing goto leaves the event to ancestors.
func gotoHandler(paths []string) statetree.HandlerFunc {
	return func(s *statetree.State, _ ...any) bool {
		ok, err := s.Goto(paths...)
		return ok && err == nil
	}
}

func (spec *StateSpec) checkTargets(s *statetree.State) error {
	var errs []error
	for _, event := range sortedKeys(spec.Events) {
		for _, p := range spec.Events[event].Goto {
			if _, err := s.Resolve(p); err != nil {
				errs = append(errs, fmt.Errorf("event %q: %w", event, err))
			}
		}
	}
	for i := range spec.States {
		child, ok := s.Child(spec.States[i].Name)
		if !ok {
			continue
		}
		if err := spec.States[i].checkTargets(child); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
