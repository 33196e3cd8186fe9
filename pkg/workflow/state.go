package workflow

import "regexp"

var stateNameRe = regexp.MustCompile(`^\w+$`)

// State is a named point in a workflow's state space. States are immutable
// and owned by exactly one Workflow.
type State struct {
	name  string
	title string
}

func newState(name, title string) (*State, error) {
	if !stateNameRe.MatchString(name) {
		return nil, definitionErrorf("invalid state name '%s'", name)
	}
	if title == "" {
		title = name
	}
	return &State{name: name, title: title}, nil
}

func (s *State) Name() string { return s.name }

// Title returns the human-readable title; it defaults to the state name.
func (s *State) Title() string { return s.title }

func (s *State) String() string { return s.name }

// StateList is an ordered, name-unique collection of states. It is built once
// during workflow construction and is read-only afterwards, so it is safe for
// unsynchronized concurrent reads.
type StateList struct {
	byName map[string]*State
	order  []*State
}

func newStateList(states []*State) *StateList {
	l := &StateList{byName: make(map[string]*State, len(states))}
	for _, st := range states {
		l.byName[st.name] = st
		l.order = append(l.order, st)
	}
	return l
}

// Get returns the state with the given name, or StateNotFoundError.
func (l *StateList) Get(name string) (*State, error) {
	if st, ok := l.byName[name]; ok {
		return st, nil
	}
	return nil, &StateNotFoundError{Name: name}
}

// Contains reports membership. It accepts a *State, a StateView, or a name string.
func (l *StateList) Contains(v any) bool {
	_, ok := l.resolve(v)
	return ok
}

// resolve maps a *State, StateView, or name string to the member state.
// A *State resolves only to itself: states from another workflow do not
// resolve even when the name matches.
func (l *StateList) resolve(v any) (*State, bool) {
	switch s := v.(type) {
	case *State:
		member, ok := l.byName[s.name]
		return member, ok && member == s
	case StateView:
		member, ok := l.byName[s.Name()]
		return member, ok && member == s.state
	case string:
		member, ok := l.byName[s]
		return member, ok
	default:
		return nil, false
	}
}

// All returns the states in declaration order.
func (l *StateList) All() []*State {
	out := make([]*State, len(l.order))
	copy(out, l.order)
	return out
}

func (l *StateList) Len() int { return len(l.order) }
