package store

import (
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"academy/internal/domain"
)

// Store owns a single State and replaces it wholesale on every dispatch.
// Dispatches are serialized and applied in call order.
type Store struct {
	mu      sync.Mutex
	state   State
	reducer *Reducer
	logger  zerolog.Logger
}

// New creates a store over a copy of the catalog. A nil reducer behaves like
// the zero Reducer; a nil logger discards output.
func New(reducer *Reducer, courses []domain.Course, logger *zerolog.Logger) *Store {
	if reducer == nil {
		reducer = &Reducer{}
	}
	l := zerolog.New(io.Discard)
	if logger != nil {
		l = *logger
	}
	return &Store{
		state:   Initial(courses),
		reducer: reducer,
		logger:  l,
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies the action and returns the resulting snapshot. A reported
// failure leaves the state untouched and is returned alongside it.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.reducer.Reduce(s.state, a)
	if err != nil {
		evt := s.logger.Info()
		var notice *domain.Notice
		if errors.As(err, &notice) {
			evt = evt.Str("notice", notice.Key)
		}
		evt.Err(err).Str("action", string(a.Type())).Msg("store: action rejected")
		return s.state, err
	}
	s.state = next
	s.logger.Debug().
		Str("action", string(a.Type())).
		Int("cart", len(next.Cart)).
		Int("owned", len(next.MyCourses)).
		Int("catalog", len(next.Courses)).
		Msg("store: action applied")
	return next, nil
}
