package chartfile

import (
	"github.com/comalice/statetree"
)

// Funcs binds the callback names used in a chart document to Go functions.
type Funcs struct {
	actions    map[string]statetree.ActionFunc
	handlers   map[string]statetree.HandlerFunc
	conditions map[string]statetree.ConditionFunc
	guards     map[string]statetree.ExitGuardFunc

	// fallback, if set, binds enter/exit names missing from actions.
	fallback func(name string) statetree.ActionFunc
	lenient  bool
}

// NewFuncs creates an empty set of bindings.
func NewFuncs() *Funcs {
	return &Funcs{
		actions:    map[string]statetree.ActionFunc{},
		handlers:   map[string]statetree.HandlerFunc{},
		conditions: map[string]statetree.ConditionFunc{},
		guards:     map[string]statetree.ExitGuardFunc{},
	}
}

// Action binds an enter/exit callback name.
func (f *Funcs) Action(name string, fn statetree.ActionFunc) *Funcs {
	f.actions[name] = fn
	return f
}

// Handler binds an event handler name.
func (f *Funcs) Handler(name string, fn statetree.HandlerFunc) *Funcs {
	f.handlers[name] = fn
	return f
}

// Condition binds a condition name.
func (f *Funcs) Condition(name string, fn statetree.ConditionFunc) *Funcs {
	f.conditions[name] = fn
	return f
}

// Guard binds a canExit name.
func (f *Funcs) Guard(name string, fn statetree.ExitGuardFunc) *Funcs {
	f.guards[name] = fn
	return f
}

// FallbackAction makes unbound enter/exit names resolve through fn instead
// of failing the build. Handlers, conditions and guards must still be bound.
func (f *Funcs) FallbackAction(fn func(name string) statetree.ActionFunc) *Funcs {
	f.fallback = fn
	return f
}

// Lenient binds every remaining unknown name to a no-op: actions do
// nothing, handlers leave the event unhandled, conditions defer to history
// and guards allow the exit. Useful for inspecting a chart without its code.
func (f *Funcs) Lenient() *Funcs {
	f.lenient = true
	return f
}

func (f *Funcs) action(name string) (statetree.ActionFunc, bool) {
	if fn, ok := f.actions[name]; ok {
		return fn, true
	}
	if f.fallback != nil {
		return f.fallback(name), true
	}
	if f.lenient {
		return func(*statetree.State, any) {}, true
	}
	return nil, false
}

func (f *Funcs) handler(name string) (statetree.HandlerFunc, bool) {
	if fn, ok := f.handlers[name]; ok {
		return fn, true
	}
	if f.lenient {
		return func(*statetree.State, ...any) bool { return false }, true
	}
	return nil, false
}

func (f *Funcs) condition(name string) (statetree.ConditionFunc, bool) {
	if fn, ok := f.conditions[name]; ok {
		return fn, true
	}
	if f.lenient {
		return func(*statetree.State, any) []string { return nil }, true
	}
	return nil, false
}

func (f *Funcs) guard(name string) (statetree.ExitGuardFunc, bool) {
	if fn, ok := f.guards[name]; ok {
		return fn, true
	}
	if f.lenient {
		return func(*statetree.State, []*statetree.State, any) bool { return true }, true
	}
	return nil, false
}
