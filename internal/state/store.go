package state

import (
	"sync"
)

// Observer is notified after every transition with the action and the state
// it produced. Observers must not dispatch.
type Observer func(Action, State)

// Store coordinates concurrent access to the application state.
type Store struct {
	// dispatchMu orders transitions and their notifications.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	state     State
	observers map[int]Observer
	nextID    int
}

// NewStore returns a Store seeded with initial.
func NewStore(initial State) *Store {
	return &Store{
		state:     initial.Clone(),
		observers: make(map[int]Observer),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies a and notifies observers. It returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state.Clone()
	observers := make([]Observer, 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if obs, ok := s.observers[id]; ok {
			observers = append(observers, obs)
		}
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(a, next.Clone())
	}
	return next
}

// Subscribe registers obs and returns a function that removes it.
func (s *Store) Subscribe(obs Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observers == nil {
		s.observers = make(map[int]Observer)
	}
	id := s.nextID
	s.nextID++
	s.observers[id] = obs
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) SetLoading(loading bool) { s.Dispatch(SetLoading{Loading: loading}) }

func (s *Store) SetError(msg string) { s.Dispatch(SetError{Message: &msg}) }

func (s *Store) ClearError() { s.Dispatch(SetError{}) }

func (s *Store) SetTheme(theme Theme) { s.Dispatch(SetTheme{Theme: theme}) }

func (s *Store) SetAPIs(apis []APIDescriptor) { s.Dispatch(SetAPIs{APIs: apis}) }

// SetSelectedAPI records id as selected. The store does not check that id is
// a known API.
func (s *Store) SetSelectedAPI(id string) { s.Dispatch(SetSelectedAPI{ID: &id}) }

func (s *Store) ClearSelectedAPI() { s.Dispatch(SetSelectedAPI{}) }

func (s *Store) UpdateAPIStatus(id string, status Status) {
	s.Dispatch(UpdateAPIStatus{ID: id, Status: status})
}

// ReportError records a failure message in the shared error slot.
func (s *Store) ReportError(msg string) { s.SetError(msg) }
