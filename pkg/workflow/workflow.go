package workflow

import (
	"context"
	"fmt"
	"log/slog"
)

// LogEntry describes one performed transition, passed to the workflow's
// transition log sink after the state change has been committed.
type LogEntry struct {
	Field      string
	Transition *Transition
	From       *State
	Object     any
	Args       []any
}

// TransitionLogFunc receives a LogEntry for every completed transition.
// A returned error propagates to the Execute caller; the state change has
// already been committed at that point.
type TransitionLogFunc func(ctx context.Context, entry LogEntry) error

// Option configures a workflow during construction.
type Option func(*Workflow)

// WithLogger sets the slog logger used by the default transition log sink.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithTransitionLog replaces the default transition log sink. This is the
// extension point for collaborators that need to observe or persist completed
// transitions (e.g. a journal, or a storage layer wrapping the record in a
// transaction).
func WithTransitionLog(fn TransitionLogFunc) Option {
	return func(w *Workflow) {
		if fn != nil {
			w.logFn = fn
		}
	}
}

// WithBase makes the definition extend an existing workflow: the base's
// states and transitions are inherited, same-name declarations replace the
// inherited ones in place (order preserved), and new declarations append.
// The initial state defaults to the base's when the definition leaves it empty.
func WithBase(base *Workflow) Option {
	return func(w *Workflow) {
		w.base = base
	}
}

// Workflow is an immutable set of states, transitions, and an initial state.
// It is built once from a Definition and shared by reference across all
// instances using it; after construction it is safe for unsynchronized
// concurrent reads.
type Workflow struct {
	def         Definition
	states      *StateList
	transitions *TransitionList
	initial     *State

	base   *Workflow
	logger *slog.Logger
	logFn  TransitionLogFunc
}

// New builds and validates a workflow from a definition. Duplicate names,
// references to unknown states, empty source sets, and a missing or unknown
// initial state all fail with a DefinitionError.
func New(def Definition, opts ...Option) (*Workflow, error) {
	w := &Workflow{logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}

	if w.base != nil {
		def = mergeDefinitions(w.base.def, def)
		w.base = nil
	}
	w.def = def

	states := make([]*State, 0, len(def.States))
	seen := make(map[string]bool, len(def.States))
	for _, sd := range def.States {
		if seen[sd.Name] {
			return nil, definitionErrorf("duplicate state '%s'", sd.Name)
		}
		st, err := newState(sd.Name, sd.Title)
		if err != nil {
			return nil, err
		}
		seen[sd.Name] = true
		states = append(states, st)
	}
	w.states = newStateList(states)

	transitions := make([]*Transition, 0, len(def.Transitions))
	seenTr := make(map[string]bool, len(def.Transitions))
	for _, td := range def.Transitions {
		if seenTr[td.Name] {
			return nil, definitionErrorf("duplicate transition '%s'", td.Name)
		}
		if len(td.From) == 0 {
			return nil, definitionErrorf("transition '%s' has no source states", td.Name)
		}
		tr := &Transition{name: td.Name}
		srcSeen := make(map[string]bool, len(td.From))
		for _, src := range td.From {
			st, ok := w.states.byName[src]
			if !ok {
				return nil, definitionErrorf("transition '%s' references unknown source state '%s'", td.Name, src)
			}
			if srcSeen[src] {
				continue
			}
			srcSeen[src] = true
			tr.sources = append(tr.sources, st)
		}
		target, ok := w.states.byName[td.To]
		if !ok {
			return nil, definitionErrorf("transition '%s' references unknown target state '%s'", td.Name, td.To)
		}
		tr.target = target
		seenTr[td.Name] = true
		transitions = append(transitions, tr)
	}
	w.transitions = newTransitionList(transitions)

	initial, ok := w.states.byName[def.Initial]
	if !ok {
		return nil, definitionErrorf("initial state '%s' is not a known state", def.Initial)
	}
	w.initial = initial

	return w, nil
}

// MustNew builds a workflow and panics on a definition error. Use for
// package-level workflow declarations where a bad definition should prevent
// startup.
func MustNew(def Definition, opts ...Option) *Workflow {
	w, err := New(def, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build workflow: %v", err))
	}
	return w
}

func mergeDefinitions(base, child Definition) Definition {
	merged := Definition{Initial: base.Initial}
	if child.Initial != "" {
		merged.Initial = child.Initial
	}

	merged.States = append(merged.States, base.States...)
	for _, sd := range child.States {
		replaced := false
		for i, prev := range merged.States {
			if prev.Name == sd.Name {
				merged.States[i] = sd
				replaced = true
				break
			}
		}
		if !replaced {
			merged.States = append(merged.States, sd)
		}
	}

	merged.Transitions = append(merged.Transitions, base.Transitions...)
	for _, td := range child.Transitions {
		replaced := false
		for i, prev := range merged.Transitions {
			if prev.Name == td.Name {
				merged.Transitions[i] = td
				replaced = true
				break
			}
		}
		if !replaced {
			merged.Transitions = append(merged.Transitions, td)
		}
	}

	return merged
}

// States returns the workflow's state collection.
func (w *Workflow) States() *StateList { return w.states }

// Transitions returns the workflow's transition collection.
func (w *Workflow) Transitions() *TransitionList { return w.transitions }

// Initial returns the workflow's initial state.
func (w *Workflow) Initial() *State { return w.initial }

// NewHolder returns a state holder owned by this workflow, starting at the
// initial state.
func (w *Workflow) NewHolder() *StateHolder {
	return &StateHolder{workflow: w}
}

func (w *Workflow) logTransition(ctx context.Context, entry LogEntry) error {
	if w.logFn != nil {
		return w.logFn(ctx, entry)
	}
	w.logger.LogAttrs(ctx, slog.LevelInfo, "transition performed",
		slog.String("field", entry.Field),
		slog.String("transition", entry.Transition.Name()),
		slog.String("from", entry.From.Name()),
		slog.String("to", entry.Transition.Target().Name()),
		slog.Any("object", entry.Object),
	)
	return nil
}
