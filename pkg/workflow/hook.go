package workflow

import (
	"context"
	"sort"
)

// HookKind identifies the phase a hook runs in.
type HookKind int

const (
	// HookCheck runs during pre-transition checks; a false result vetoes the transition.
	HookCheck HookKind = iota
	// HookBefore runs before the implementation, after checks pass.
	HookBefore
	// HookAfter runs after the state change has been committed.
	HookAfter
	// HookOnEnter runs after a transition entering a matching state.
	HookOnEnter
	// HookOnLeave runs before a transition leaving a matching state.
	HookOnLeave
)

func (k HookKind) String() string {
	switch k {
	case HookCheck:
		return "check"
	case HookBefore:
		return "before"
	case HookAfter:
		return "after"
	case HookOnEnter:
		return "on_enter"
	case HookOnLeave:
		return "on_leave"
	default:
		return "unknown"
	}
}

// CheckFunc decides whether a transition may proceed. Returning false vetoes
// the transition with a TransitionForbiddenError; a returned error propagates
// unchanged.
type CheckFunc[T any] func(ctx context.Context, obj T) (bool, error)

// BeforeFunc runs before the state change, receiving the arguments passed to
// Execute. A returned error aborts the transition before any mutation.
type BeforeFunc[T any] func(ctx context.Context, obj T, args ...any) error

// AfterFunc runs after the state change, receiving the implementation's
// result and the Execute arguments. A returned error propagates to the
// caller, but the state change stays committed.
type AfterFunc[T any] func(ctx context.Context, obj T, result any, args ...any) error

// Implementation is the user-supplied side-effect code of a transition,
// invoked between the before and after hook phases.
type Implementation[T any] func(ctx context.Context, obj T, args ...any) (any, error)

const wildcard = "*"

// hook is one registered callback with its applicability and ordering data.
// Hooks are collected at binder definition time and immutable after Build.
type hook[T any] struct {
	kind     HookKind
	name     string   // registration name, the deterministic tie-break
	priority int      // higher runs first
	names    []string // transition or state names; empty means all
	field    string   // workflow field scope; empty means all fields

	check  CheckFunc[T]
	before BeforeFunc[T]
	after  AfterFunc[T]
}

func (h *hook[T]) isWildcard() bool {
	if len(h.names) == 0 {
		return true
	}
	for _, n := range h.names {
		if n == wildcard {
			return true
		}
	}
	return false
}

func (h *hook[T]) matchesName(name string) bool {
	if h.isWildcard() {
		return true
	}
	for _, n := range h.names {
		if n == name {
			return true
		}
	}
	return false
}

func (h *hook[T]) matchesField(field string) bool {
	return h.field == "" || h.field == field
}

// appliesTo reports whether the hook can run for the given transition.
// For on-leave hooks the from state is only known at call time, so this
// checks whether any source state matches; the executor re-checks the actual
// from state per invocation.
func (h *hook[T]) appliesTo(t *Transition) bool {
	switch h.kind {
	case HookCheck, HookBefore, HookAfter:
		return h.matchesName(t.name)
	case HookOnEnter:
		return h.matchesName(t.target.name)
	case HookOnLeave:
		for _, src := range t.sources {
			if h.matchesName(src.name) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// sortHooks orders hooks by priority descending, then registration name
// ascending. The sort is stable so equal hooks keep declaration order.
func sortHooks[T any](hooks []*hook[T]) {
	sort.SliceStable(hooks, func(i, j int) bool {
		if hooks[i].priority != hooks[j].priority {
			return hooks[i].priority > hooks[j].priority
		}
		return hooks[i].name < hooks[j].name
	})
}

type hookConfig struct {
	priority int
	names    []string
	field    string
}

// HookOption configures a hook registration.
type HookOption func(*hookConfig)

// WithPriority sets the hook priority; higher priorities run first. The
// default is 0. Ties are broken by registration name, ascending.
func WithPriority(p int) HookOption {
	return func(c *hookConfig) { c.priority = p }
}

// On restricts the hook to the named transitions (check/before/after hooks)
// or states (on-enter/on-leave hooks). Without it, the hook applies to all.
func On(names ...string) HookOption {
	return func(c *hookConfig) { c.names = append(c.names, names...) }
}

// ForField scopes the hook to a single workflow field on binders that declare
// several. Without it, the hook applies to every field.
func ForField(name string) HookOption {
	return func(c *hookConfig) { c.field = name }
}
