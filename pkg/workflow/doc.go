// Package workflow provides a declarative workflow (finite-state-machine)
// engine: objects declare named states, named transitions between them, and
// per-transition side-effect code, and the engine enforces that state changes
// only happen through valid transitions, running an ordered set of hooks
// around each one.
//
// # Architecture
//
// A Workflow is built once from a Definition (states, transitions, initial
// state), validated, and immutable afterwards. Each governed object field
// holds its state in a StateHolder owned by that workflow. A Binder collects,
// per object type, the workflow fields, the transition implementations, and
// the hooks, and Build resolves them into an immutable Bindings table with
// hook ordering decided up front. At runtime, Bindings hands out lightweight
// Executor values that run the transition protocol:
//
//	availability check -> check hooks -> before/on-leave hooks ->
//	implementation -> state write -> transition log -> after/on-enter hooks
//
// # Usage
//
//	wf := workflow.MustNew(workflow.Definition{
//	    States: []workflow.StateDef{
//	        {Name: "draft"},
//	        {Name: "published", Title: "Published"},
//	    },
//	    Transitions: []workflow.TransitionDef{
//	        {Name: "publish", From: workflow.SourceList{"draft"}, To: "published"},
//	    },
//	    Initial: "draft",
//	})
//
//	type Article struct {
//	    Status *workflow.StateHolder
//	}
//
//	bindings := workflow.NewBinder[*Article]().
//	    AddField("status", wf, func(a *Article) *workflow.StateHolder { return a.Status }).
//	    Implement("publish", func(ctx context.Context, a *Article, args ...any) (any, error) {
//	        return nil, nil
//	    }).
//	    MustBuild()
//
//	a := &Article{Status: wf.NewHolder()}
//	_, err := bindings.Exec(ctx, a, "publish")
//
// # Hooks
//
// Hooks come in five kinds: check (veto), before, after, on-enter, and
// on-leave. Each hook has a registration name, a priority (higher runs
// first, ties broken by name ascending), an applicability set of transition
// or state names (default: all), and an optional field scope. Hook ordering
// is resolved once at Build; the per-call work is limited to matching
// on-leave hooks against the actual source state.
//
// # Error Handling
//
// Declaration mistakes fail with DefinitionError at construction or Build
// time and are never recoverable. At runtime, both abort errors match
// ErrTransitionAborted via errors.Is and carry the transition and state
// names; helper predicates such as IsTransitionForbiddenError are provided.
// Errors returned by hooks or implementations propagate unchanged: nothing
// is wrapped, retried, or dropped.
//
// # Concurrency
//
// Workflows and Bindings are read-only after construction and safe for
// concurrent reads. A StateHolder is the only mutable cell; the engine adds
// no locking around it, so callers running transitions on one instance from
// several goroutines must serialize them externally.
package workflow
