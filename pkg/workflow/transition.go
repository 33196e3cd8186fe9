package workflow

// Transition is a named, directed move from one or more source states to a
// single target state. Transitions are immutable and owned by exactly one
// Workflow.
type Transition struct {
	name    string
	sources []*State
	target  *State
}

func (t *Transition) Name() string { return t.name }

// Sources returns the source states in declaration order.
func (t *Transition) Sources() []*State {
	out := make([]*State, len(t.sources))
	copy(out, t.sources)
	return out
}

func (t *Transition) Target() *State { return t.target }

func (t *Transition) String() string { return t.name }

func (t *Transition) hasSource(s *State) bool {
	for _, src := range t.sources {
		if src == s {
			return true
		}
	}
	return false
}

// TransitionList is an ordered, name-unique collection of transitions.
// Read-only after workflow construction.
type TransitionList struct {
	byName map[string]*Transition
	order  []*Transition
}

func newTransitionList(transitions []*Transition) *TransitionList {
	l := &TransitionList{byName: make(map[string]*Transition, len(transitions))}
	for _, tr := range transitions {
		l.byName[tr.name] = tr
		l.order = append(l.order, tr)
	}
	return l
}

// Get returns the transition with the given name, or TransitionNotFoundError.
func (l *TransitionList) Get(name string) (*Transition, error) {
	if tr, ok := l.byName[name]; ok {
		return tr, nil
	}
	return nil, &TransitionNotFoundError{Name: name}
}

// Contains reports membership. It accepts a *Transition or a name string.
func (l *TransitionList) Contains(v any) bool {
	switch t := v.(type) {
	case *Transition:
		member, ok := l.byName[t.name]
		return ok && member == t
	case string:
		_, ok := l.byName[t]
		return ok
	default:
		return false
	}
}

// All returns the transitions in declaration order.
func (l *TransitionList) All() []*Transition {
	out := make([]*Transition, len(l.order))
	copy(out, l.order)
	return out
}

func (l *TransitionList) Len() int { return len(l.order) }

// AvailableFrom returns, in declaration order, every transition whose source
// set contains the given state.
func (l *TransitionList) AvailableFrom(state *State) []*Transition {
	var out []*Transition
	for _, tr := range l.order {
		if tr.hasSource(state) {
			out = append(out, tr)
		}
	}
	return out
}
