package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
)

// Event describes a change of the session token.
type Event int

const (
	EventSet Event = iota + 1
	EventCleared
)

func (e Event) String() string {
	switch e {
	case EventSet:
		return "set"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Options configures a Store. All fields are optional.
type Options struct {
	Backend Backend
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
}

// Store holds the current session token.
type Store struct {
	backend Backend
	logger  *logging.Logger
	metrics *monitoring.Metrics

	mu         sync.RWMutex
	token      string
	present    bool
	generation uint64
	observers  map[int]func(Event)
	nextObs    int
}

// NewStore creates a store and loads any token the backend already holds.
// A backend that fails to load leaves the store empty.
func NewStore(opts Options) *Store {
	s := &Store{
		backend:   opts.Backend,
		logger:    logging.OrNop(opts.Logger).Named("session"),
		metrics:   opts.Metrics,
		observers: make(map[int]func(Event)),
	}
	if s.backend == nil {
		s.backend = NewMemoryBackend()
	}

	token, ok, err := s.backend.Load()
	switch {
	case err != nil:
		s.logger.Warn("Ignoring unreadable persisted session", zap.Error(err))
	case ok && token != "":
		s.token = token
		s.present = true
		s.generation = 1
		s.logger.Debug("Restored persisted session")
	}
	return s
}

// Get returns the current token and whether one is present.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.present
}

// Generation increases every time a token is set. Callers compare
// generations to tell a fresh session from the one they last saw.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Set stores token as the current session. An empty token clears it.
func (s *Store) Set(token string) {
	if token == "" {
		s.Clear()
		return
	}

	s.mu.Lock()
	s.token = token
	s.present = true
	s.generation++
	observers := s.snapshotObservers()
	s.mu.Unlock()

	if err := s.backend.Save(token); err != nil {
		s.logger.Warn("Failed to persist session", zap.Error(err))
	}
	s.metrics.RecordSessionEvent(EventSet.String())
	notify(observers, EventSet)
}

// Clear removes the token. Clearing an absent token does nothing.
func (s *Store) Clear() {
	s.clear(func() bool { return true })
}

// ClearIf removes the token only while it is still token, and reports
// whether it did. A rejection of an older token leaves a newer session
// in place.
func (s *Store) ClearIf(token string) bool {
	return s.clear(func() bool { return s.token == token })
}

func (s *Store) clear(match func() bool) bool {
	s.mu.Lock()
	if !s.present || !match() {
		s.mu.Unlock()
		return false
	}
	s.token = ""
	s.present = false
	observers := s.snapshotObservers()
	s.mu.Unlock()

	if err := s.backend.Delete(); err != nil {
		s.logger.Warn("Failed to delete persisted session", zap.Error(err))
	}
	s.metrics.RecordSessionEvent(EventCleared.String())
	notify(observers, EventCleared)
	return true
}

// Subscribe registers fn for token changes and returns a function that
// removes it. fn runs on the goroutine that changed the token.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.nextObs
	s.nextObs++
	s.observers[key] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, key)
	}
}

func (s *Store) snapshotObservers() []func(Event) {
	out := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(observers []func(Event), e Event) {
	for _, fn := range observers {
		fn(e)
	}
}
