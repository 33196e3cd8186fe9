package workflow

import (
	"context"
	"fmt"
)

// CommitFunc is the commit section of one transition invocation: the bound
// implementation, the state write, and the transition log, in that order.
type CommitFunc[T any] func(ctx context.Context, obj T, args ...any) (any, error)

// Middleware wraps the commit section of every transition bound by a binder.
// It is the extension point for cross-cutting behavior such as wrapping the
// implementation, state write, and log in a storage transaction. Middleware
// must call next exactly once to preserve the transition protocol.
type Middleware[T any] func(next CommitFunc[T]) CommitFunc[T]

type fieldSpec[T any] struct {
	name     string
	workflow *Workflow
	holder   func(T) *StateHolder
}

type implDecl[T any] struct {
	field      string // empty means every field whose workflow has the transition
	transition string
	fn         Implementation[T]
	inherited  bool
}

// Binder collects the workflow fields, transition implementations, and hooks
// of one workflow-enabled type. It is a definition-time builder: declarations
// are validated together by Build, which produces an immutable Bindings table.
//
// Binders are not safe for concurrent use; build them during initialization.
type Binder[T any] struct {
	fields []*fieldSpec[T]
	impls  []implDecl[T]
	hooks  []*hook[T]
	mws    []Middleware[T]
}

// NewBinder creates an empty binder for instances of type T.
func NewBinder[T any]() *Binder[T] {
	return &Binder[T]{}
}

// AddField declares a workflow field: its name, the governing workflow, and
// an accessor returning the instance's state holder for that field.
func (b *Binder[T]) AddField(name string, wf *Workflow, holder func(T) *StateHolder) *Binder[T] {
	b.fields = append(b.fields, &fieldSpec[T]{name: name, workflow: wf, holder: holder})
	return b
}

// Implement registers the implementation for a transition name on every field
// whose workflow declares that transition. Registering a second
// implementation for the same field and transition fails at Build.
func (b *Binder[T]) Implement(transition string, fn Implementation[T]) *Binder[T] {
	b.impls = append(b.impls, implDecl[T]{transition: transition, fn: fn})
	return b
}

// ImplementField registers the implementation for a transition on one
// specific field.
func (b *Binder[T]) ImplementField(field, transition string, fn Implementation[T]) *Binder[T] {
	b.impls = append(b.impls, implDecl[T]{field: field, transition: transition, fn: fn})
	return b
}

// Check registers a pre-transition check hook. The name is the hook's
// identity for ordering ties and failure reporting.
func (b *Binder[T]) Check(name string, fn CheckFunc[T], opts ...HookOption) *Binder[T] {
	h := &hook[T]{kind: HookCheck, name: name, check: fn}
	applyHookOptions(h, opts)
	b.hooks = append(b.hooks, h)
	return b
}

// Before registers a hook that runs before matching transitions.
func (b *Binder[T]) Before(name string, fn BeforeFunc[T], opts ...HookOption) *Binder[T] {
	h := &hook[T]{kind: HookBefore, name: name, before: fn}
	applyHookOptions(h, opts)
	b.hooks = append(b.hooks, h)
	return b
}

// After registers a hook that runs after matching transitions.
func (b *Binder[T]) After(name string, fn AfterFunc[T], opts ...HookOption) *Binder[T] {
	h := &hook[T]{kind: HookAfter, name: name, after: fn}
	applyHookOptions(h, opts)
	b.hooks = append(b.hooks, h)
	return b
}

// OnEnter registers a hook that runs after transitions entering matching states.
func (b *Binder[T]) OnEnter(name string, fn AfterFunc[T], opts ...HookOption) *Binder[T] {
	h := &hook[T]{kind: HookOnEnter, name: name, after: fn}
	applyHookOptions(h, opts)
	b.hooks = append(b.hooks, h)
	return b
}

// OnLeave registers a hook that runs before transitions leaving matching states.
func (b *Binder[T]) OnLeave(name string, fn BeforeFunc[T], opts ...HookOption) *Binder[T] {
	h := &hook[T]{kind: HookOnLeave, name: name, before: fn}
	applyHookOptions(h, opts)
	b.hooks = append(b.hooks, h)
	return b
}

// Use appends middleware around the commit section of every bound transition.
// The first middleware added is the outermost.
func (b *Binder[T]) Use(mw Middleware[T]) *Binder[T] {
	if mw != nil {
		b.mws = append(b.mws, mw)
	}
	return b
}

func applyHookOptions[T any](h *hook[T], opts []HookOption) {
	cfg := hookConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	h.priority = cfg.priority
	h.names = cfg.names
	h.field = cfg.field
}

// Extend returns a new binder inheriting this binder's fields,
// implementations, hooks, and middleware. The child may add hooks and may
// re-implement an inherited (field, transition) pair, which replaces the
// inherited implementation; inherited hooks cannot be removed.
func (b *Binder[T]) Extend() *Binder[T] {
	child := &Binder[T]{
		fields: append([]*fieldSpec[T](nil), b.fields...),
		impls:  make([]implDecl[T], len(b.impls)),
		hooks:  append([]*hook[T](nil), b.hooks...),
		mws:    append([]Middleware[T](nil), b.mws...),
	}
	for i, decl := range b.impls {
		decl.inherited = true
		child.impls[i] = decl
	}
	return child
}

// Build validates every declaration and produces the immutable binding table:
// one binding per (field, transition), each with its implementation (a no-op
// where none was registered) and its hooks resolved and pre-sorted.
func (b *Binder[T]) Build() (*Bindings[T], error) {
	if len(b.fields) == 0 {
		return nil, definitionErrorf("binder declares no workflow fields")
	}

	fieldsByName := make(map[string]*fieldSpec[T], len(b.fields))
	for _, f := range b.fields {
		if f.workflow == nil {
			return nil, definitionErrorf("field '%s' has no workflow", f.name)
		}
		if f.holder == nil {
			return nil, definitionErrorf("field '%s' has no state holder accessor", f.name)
		}
		if _, dup := fieldsByName[f.name]; dup {
			return nil, definitionErrorf("duplicate workflow field '%s'", f.name)
		}
		fieldsByName[f.name] = f
	}

	for _, h := range b.hooks {
		if h.field != "" {
			if _, ok := fieldsByName[h.field]; !ok {
				return nil, definitionErrorf("hook '%s' is scoped to unknown field '%s'", h.name, h.field)
			}
		}
	}

	impls, err := b.resolveImplementations(fieldsByName)
	if err != nil {
		return nil, err
	}

	bs := &Bindings[T]{fields: make(map[string]map[string]*binding[T], len(b.fields))}
	for _, f := range b.fields {
		bs.fieldOrder = append(bs.fieldOrder, f.name)
		table := make(map[string]*binding[T], f.workflow.transitions.Len())
		for _, tr := range f.workflow.transitions.All() {
			impl := impls[bindingKey{field: f.name, transition: tr.name}]
			if impl == nil {
				impl = noop[T]
			}
			bd := &binding[T]{
				field:      f,
				transition: tr,
				impl:       impl,
			}
			for _, h := range b.hooks {
				if !h.matchesField(f.name) || !h.appliesTo(tr) {
					continue
				}
				switch h.kind {
				case HookCheck:
					bd.checks = append(bd.checks, h)
				case HookBefore, HookOnLeave:
					bd.before = append(bd.before, h)
				case HookAfter, HookOnEnter:
					bd.after = append(bd.after, h)
				}
			}
			sortHooks(bd.checks)
			sortHooks(bd.before)
			sortHooks(bd.after)
			bd.commit = buildCommit(bd, b.mws)
			table[tr.name] = bd
		}
		bs.fields[f.name] = table
	}

	return bs, nil
}

// MustBuild builds the binding table and panics on a definition error.
func (b *Binder[T]) MustBuild() *Bindings[T] {
	bs, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build workflow bindings: %v", err))
	}
	return bs
}

type bindingKey struct {
	field      string
	transition string
}

func (b *Binder[T]) resolveImplementations(fieldsByName map[string]*fieldSpec[T]) (map[bindingKey]Implementation[T], error) {
	inherited := make(map[bindingKey]Implementation[T])
	declared := make(map[bindingKey]Implementation[T])

	for _, decl := range b.impls {
		if decl.fn == nil {
			return nil, definitionErrorf("nil implementation for transition '%s'", decl.transition)
		}

		var targets []*fieldSpec[T]
		if decl.field != "" {
			f, ok := fieldsByName[decl.field]
			if !ok {
				return nil, definitionErrorf("implementation for transition '%s' references unknown field '%s'", decl.transition, decl.field)
			}
			if !f.workflow.transitions.Contains(decl.transition) {
				return nil, definitionErrorf("field '%s' has no transition '%s'", decl.field, decl.transition)
			}
			targets = []*fieldSpec[T]{f}
		} else {
			for _, f := range b.fields {
				if f.workflow.transitions.Contains(decl.transition) {
					targets = append(targets, f)
				}
			}
			if len(targets) == 0 {
				return nil, definitionErrorf("no workflow field declares transition '%s'", decl.transition)
			}
		}

		for _, f := range targets {
			key := bindingKey{field: f.name, transition: decl.transition}
			if decl.inherited {
				// Later inherited declarations override earlier ones: they
				// were valid overrides in the binder they came from.
				inherited[key] = decl.fn
				continue
			}
			if _, dup := declared[key]; dup {
				return nil, definitionErrorf("duplicate implementation for transition '%s' on field '%s'", decl.transition, f.name)
			}
			declared[key] = decl.fn
		}
	}

	// An explicit declaration overrides an inherited one for the same pair;
	// that is the only permitted override.
	for key, fn := range declared {
		inherited[key] = fn
	}
	return inherited, nil
}

func noop[T any](ctx context.Context, obj T, args ...any) (any, error) {
	return nil, nil
}

// binding is the resolved, immutable unit of the binding table: one
// (field, transition) pair with its implementation and pre-sorted hooks.
type binding[T any] struct {
	field      *fieldSpec[T]
	transition *Transition
	impl       Implementation[T]

	checks []*hook[T] // check hooks, sorted
	before []*hook[T] // before + on-leave hooks, merged and sorted
	after  []*hook[T] // after + on-enter hooks, merged and sorted
	commit CommitFunc[T]
}

// buildCommit closes the commit section (implementation, state write,
// transition log) over a binding and wraps it with the binder's middleware.
func buildCommit[T any](bd *binding[T], mws []Middleware[T]) CommitFunc[T] {
	commit := func(ctx context.Context, obj T, args ...any) (any, error) {
		result, err := bd.impl(ctx, obj, args...)
		if err != nil {
			return nil, err
		}
		holder := bd.field.holder(obj)
		from := holder.state()
		holder.setState(bd.transition.target)
		err = bd.field.workflow.logTransition(ctx, LogEntry{
			Field:      bd.field.name,
			Transition: bd.transition,
			From:       from,
			Object:     obj,
			Args:       args,
		})
		return result, err
	}
	for i := len(mws) - 1; i >= 0; i-- {
		commit = mws[i](commit)
	}
	return commit
}

// Bindings is the immutable per-type binding table produced by Binder.Build.
// It is safe for unsynchronized concurrent reads; per-instance executors are
// cheap values constructed on demand.
type Bindings[T any] struct {
	fields     map[string]map[string]*binding[T]
	fieldOrder []string
}

// Fields returns the bound field names in declaration order.
func (bs *Bindings[T]) Fields() []string {
	out := make([]string, len(bs.fieldOrder))
	copy(out, bs.fieldOrder)
	return out
}

// Transition returns an executor for the named transition on the named field,
// bound to the given instance.
func (bs *Bindings[T]) Transition(obj T, field, transition string) (*Executor[T], error) {
	table, ok := bs.fields[field]
	if !ok {
		return nil, definitionErrorf("unknown workflow field '%s'", field)
	}
	bd, ok := table[transition]
	if !ok {
		return nil, &TransitionNotFoundError{Name: transition}
	}
	return &Executor[T]{obj: obj, binding: bd}, nil
}

// Exec looks up the transition across fields and executes it. The transition
// name must be unique across the bound fields; use Transition with an
// explicit field name otherwise.
func (bs *Bindings[T]) Exec(ctx context.Context, obj T, transition string, args ...any) (any, error) {
	ex, err := bs.find(obj, transition)
	if err != nil {
		return nil, err
	}
	return ex.Execute(ctx, args...)
}

// IsAvailable looks up the transition across fields and reports whether it
// can run from the instance's current state.
func (bs *Bindings[T]) IsAvailable(ctx context.Context, obj T, transition string) (bool, error) {
	ex, err := bs.find(obj, transition)
	if err != nil {
		return false, err
	}
	return ex.IsAvailable(ctx)
}

func (bs *Bindings[T]) find(obj T, transition string) (*Executor[T], error) {
	var found *binding[T]
	for _, field := range bs.fieldOrder {
		if bd, ok := bs.fields[field][transition]; ok {
			if found != nil {
				return nil, definitionErrorf("transition '%s' is bound on several fields; use Transition with a field name", transition)
			}
			found = bd
		}
	}
	if found == nil {
		return nil, &TransitionNotFoundError{Name: transition}
	}
	return &Executor[T]{obj: obj, binding: found}, nil
}
