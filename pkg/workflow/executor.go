package workflow

import (
	"context"
	"errors"
)

// Executor performs one transition invocation end to end. Executors are
// lightweight values bound to (instance, field, transition); obtain them from
// a Bindings table and discard them after use.
type Executor[T any] struct {
	obj     T
	binding *binding[T]
}

// Transition returns the transition this executor performs.
func (e *Executor[T]) Transition() *Transition { return e.binding.transition }

// Field returns the workflow field this executor mutates.
func (e *Executor[T]) Field() string { return e.binding.field.name }

// preChecks runs the state-compatibility check and the check hooks, returning
// the current state on success.
func (e *Executor[T]) preChecks(ctx context.Context) (*State, error) {
	holder := e.binding.field.holder(e.obj)
	cur := holder.state()
	if !e.binding.transition.hasSource(cur) {
		return nil, &TransitionNotAvailableError{
			Transition: e.binding.transition.name,
			State:      cur.name,
		}
	}
	for _, h := range e.binding.checks {
		ok, err := h.check(ctx, e.obj)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &TransitionForbiddenError{
				Transition: e.binding.transition.name,
				State:      cur.name,
				Check:      h.name,
			}
		}
	}
	return cur, nil
}

// Execute runs the full transition protocol: state-compatibility check, check
// hooks, before and on-leave hooks, the implementation, the state write, the
// transition log, then after and on-enter hooks. It returns the
// implementation's result.
//
// Abort errors (TransitionNotAvailableError, TransitionForbiddenError) and
// errors from check, before, or on-leave hooks and from the implementation
// leave the state unchanged. Errors from the transition log or from after and
// on-enter hooks propagate, but the state change has already been committed.
func (e *Executor[T]) Execute(ctx context.Context, args ...any) (any, error) {
	cur, err := e.preChecks(ctx)
	if err != nil {
		return nil, err
	}

	for _, h := range e.binding.before {
		// On-leave hooks only fire when the actual from state matches;
		// everything else in the merged list was resolved at bind time.
		if h.kind == HookOnLeave && !h.matchesName(cur.name) {
			continue
		}
		if err := h.before(ctx, e.obj, args...); err != nil {
			return nil, err
		}
	}

	result, err := e.binding.commit(ctx, e.obj, args...)
	if err != nil {
		return result, err
	}

	for _, h := range e.binding.after {
		if err := h.after(ctx, e.obj, result, args...); err != nil {
			return result, err
		}
	}
	return result, nil
}

// IsAvailable reports whether the transition can currently run: the current
// state is among the transition's sources and no check hook vetoes it. Errors
// returned by check hooks propagate; the two abort errors do not.
func (e *Executor[T]) IsAvailable(ctx context.Context) (bool, error) {
	_, err := e.preChecks(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrTransitionAborted) {
		return false, nil
	}
	return false, err
}
