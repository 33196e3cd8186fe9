package workflow

import (
	"errors"
	"fmt"
)

// ErrTransitionAborted is the common base for runtime transition failures.
// Both TransitionNotAvailableError and TransitionForbiddenError match it via
// errors.Is, so callers can treat "this transition did not happen" uniformly.
var ErrTransitionAborted = errors.New("transition aborted")

// DefinitionError reports an invalid workflow, hook, or binding declaration.
// Definition errors are never recoverable: the declaration must be fixed.
type DefinitionError struct {
	Reason string
}

func (e *DefinitionError) Error() string {
	return "workflow definition error: " + e.Reason
}

func definitionErrorf(format string, args ...any) *DefinitionError {
	return &DefinitionError{Reason: fmt.Sprintf(format, args...)}
}

func IsDefinitionError(err error) bool {
	var e *DefinitionError
	return errors.As(err, &e)
}

// StateNotFoundError indicates a lookup for a state name unknown to the workflow.
type StateNotFoundError struct {
	Name string
}

func (e *StateNotFoundError) Error() string {
	return fmt.Sprintf("state '%s' not found", e.Name)
}

func IsStateNotFoundError(err error) bool {
	var e *StateNotFoundError
	return errors.As(err, &e)
}

// TransitionNotFoundError indicates a lookup for a transition name unknown to the workflow.
type TransitionNotFoundError struct {
	Name string
}

func (e *TransitionNotFoundError) Error() string {
	return fmt.Sprintf("transition '%s' not found", e.Name)
}

func IsTransitionNotFoundError(err error) bool {
	var e *TransitionNotFoundError
	return errors.As(err, &e)
}

// InvalidStateError indicates a direct state assignment with a value that does
// not belong to the holder's workflow. The stored state is left unchanged.
type InvalidStateError struct {
	Value string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("value '%s' is not a valid state for this workflow", e.Value)
}

func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}

// TransitionNotAvailableError indicates that the current state is not among
// the transition's source states. No hooks run and no mutation occurs.
type TransitionNotAvailableError struct {
	Transition string
	State      string
}

func (e *TransitionNotAvailableError) Error() string {
	return fmt.Sprintf("transition '%s' is not available from state '%s'", e.Transition, e.State)
}

func (e *TransitionNotAvailableError) Unwrap() error {
	return ErrTransitionAborted
}

func IsTransitionNotAvailableError(err error) bool {
	var e *TransitionNotAvailableError
	return errors.As(err, &e)
}

// TransitionForbiddenError indicates a check hook vetoed the transition.
type TransitionForbiddenError struct {
	Transition string
	State      string
	Check      string
}

func (e *TransitionForbiddenError) Error() string {
	return fmt.Sprintf("transition '%s' from state '%s' was forbidden by check '%s'", e.Transition, e.State, e.Check)
}

func (e *TransitionForbiddenError) Unwrap() error {
	return ErrTransitionAborted
}

func IsTransitionForbiddenError(err error) bool {
	var e *TransitionForbiddenError
	return errors.As(err, &e)
}
