// Package session holds the signed-in user's record shared across the
// client and the signals that mutate it.
package session

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/atinyakov/profilepanel/internal/models"
	"go.uber.org/zap"
)

// State is a snapshot of the session.
type State struct {
	CurrentUser *models.User `json:"currentUser"`
	Loading     bool         `json:"-"`
	Error       string       `json:"-"`
}

// Store is the process-wide session record. It is safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	saveMu      sync.Mutex
	state       State
	path        string
	log         *zap.Logger
	subscribers map[int]func(State)
	nextSub     int
}

// NewStore creates a store persisted at path. An empty path keeps the store
// in memory only.
func NewStore(path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		path:        path,
		log:         log,
		subscribers: make(map[int]func(State)),
	}
}

// Load reads the persisted session. A missing file yields an empty session.
func (s *Store) Load() error {
	if s.path == "" {
		return nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.mu.Lock()
			s.state = State{}
			s.mu.Unlock()
			return nil
		}
		return err
	}
	defer f.Close()

	var st State
	if err := json.NewDecoder(f).Decode(&st); err != nil {
		return err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return nil
}

// Save writes the session to disk. Concurrent saves are serialised and each
// writes the state current at the time it runs.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	st := s.state
	s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(st)
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// CurrentUser returns the signed-in user, or the zero User when signed out.
func (s *Store) CurrentUser() models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentUser == nil {
		return models.User{}
	}
	return *s.state.CurrentUser
}

// SignInSuccess seeds the session with a user.
func (s *Store) SignInSuccess(user models.User) {
	s.apply(func(st *State) {
		st.CurrentUser = &user
		st.Loading = false
		st.Error = ""
	}, true)
}

// SignOut clears the session.
func (s *Store) SignOut() {
	s.apply(func(st *State) {
		*st = State{}
	}, true)
}

// UpdateStart marks an account update as in flight.
func (s *Store) UpdateStart() {
	s.apply(func(st *State) {
		st.Loading = true
		st.Error = ""
	}, false)
}

// UpdateSuccess replaces the current user with the server's record.
func (s *Store) UpdateSuccess(user models.User) {
	s.apply(func(st *State) {
		st.CurrentUser = &user
		st.Loading = false
		st.Error = ""
	}, true)
}

// UpdateFailure records a failed account update.
func (s *Store) UpdateFailure(message string) {
	s.apply(func(st *State) {
		st.Loading = false
		st.Error = message
	}, false)
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) apply(mutate func(*State), persist bool) {
	s.mu.Lock()
	mutate(&s.state)
	st := s.snapshot()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if persist {
		if err := s.Save(); err != nil {
			s.log.Error("failed to persist session", zap.Error(err))
		}
	}
	for _, fn := range subs {
		fn(st)
	}
}

// snapshot copies the state; callers hold s.mu.
func (s *Store) snapshot() State {
	st := s.state
	if st.CurrentUser != nil {
		u := *st.CurrentUser
		st.CurrentUser = &u
	}
	return st
}
