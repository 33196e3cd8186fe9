package workflow

// StateHolder is the per-instance mutable cell holding the current state for
// one workflow field. The zero value is not usable; obtain holders from
// Workflow.NewHolder. The holder only ever stores states belonging to its
// workflow: both direct assignment and the transition path go through the
// same validated write.
//
// The holder itself provides no locking. If an instance is reachable from
// multiple goroutines, the surrounding application must serialize transitions
// per instance.
type StateHolder struct {
	workflow *Workflow
	current  *State
}

// Workflow returns the owning workflow.
func (h *StateHolder) Workflow() *Workflow { return h.workflow }

func (h *StateHolder) state() *State {
	if h.current != nil {
		return h.current
	}
	return h.workflow.initial
}

// Get returns a view of the current state. Before any assignment or
// transition, that is the workflow's initial state.
func (h *StateHolder) Get() StateView {
	return StateView{state: h.state(), workflow: h.workflow}
}

// Set assigns the current state directly, bypassing hooks and transition
// logging. It accepts a *State, a StateView, or a state name string, and
// fails with an InvalidStateError (leaving the stored state unchanged) when
// the value does not belong to the owning workflow.
func (h *StateHolder) Set(value any) error {
	st, ok := h.workflow.states.resolve(value)
	if !ok {
		return &InvalidStateError{Value: stringify(value)}
	}
	h.current = st
	return nil
}

// Is reports whether the current state has the given name.
func (h *StateHolder) Is(name string) bool {
	return h.state().name == name
}

// setState performs the invariant-checked write used by the transition path.
// The state is already known to be a member of the workflow.
func (h *StateHolder) setState(st *State) {
	h.current = st
}

func stringify(v any) string {
	switch s := v.(type) {
	case *State:
		return s.name
	case StateView:
		return s.Name()
	case string:
		return s
	case nil:
		return "<nil>"
	default:
		return "<invalid>"
	}
}

// StateView is an immutable view of a holder's current state. It compares by
// state name, so a view is Equal to another view of the same state, to the
// bare *State, or to the raw name string.
type StateView struct {
	state    *State
	workflow *Workflow
}

// Name returns the state name.
func (v StateView) Name() string { return v.state.name }

// Title returns the state title.
func (v StateView) Title() string { return v.state.title }

// State returns the underlying state.
func (v StateView) State() *State { return v.state }

// Workflow returns the owning workflow.
func (v StateView) Workflow() *Workflow { return v.workflow }

// Is reports whether the viewed state has the given name.
func (v StateView) Is(name string) bool { return v.state.name == name }

// Transitions returns, in declaration order, the transitions available from
// the viewed state.
func (v StateView) Transitions() []*Transition {
	return v.workflow.transitions.AvailableFrom(v.state)
}

// Equal compares by state name against another StateView, a *State, or a
// name string.
func (v StateView) Equal(other any) bool {
	switch o := other.(type) {
	case StateView:
		return v.state.name == o.state.name
	case *State:
		return o != nil && v.state.name == o.name
	case string:
		return v.state.name == o
	default:
		return false
	}
}

func (v StateView) String() string { return v.state.name }
