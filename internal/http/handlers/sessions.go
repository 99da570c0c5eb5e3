package handlers

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"academy/internal/domain"
	"academy/internal/store"
	"academy/internal/tutor"
)

// Default bounds of the session table.
const (
	DefaultMaxSessions = 10000
	DefaultSessionIdle = 8 * time.Hour
	DefaultFreshIdle   = 15 * time.Minute
)

// SessionOptions configures NewSessions.
type SessionOptions struct {
	Reducer *store.Reducer
	Catalog []domain.Course
	// TutorFactory opens the chats of every session's own tutor registry.
	TutorFactory  tutor.ChatFactory
	TutorPreamble string
	// MaxSessions caps the table; the least recently seen session is evicted
	// to make room. Zero selects DefaultMaxSessions.
	MaxSessions int
	Logger      zerolog.Logger
}

// Sessions holds the state of each client session: a store seeded with its
// own copy of the catalog, and a tutor bridge whose chats nobody else sees.
// Nothing outlives the process.
type Sessions struct {
	opts SessionOptions
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	store    *store.Store
	tutor    *tutor.Bridge
	lastSeen time.Time
	hits     int
}

func NewSessions(opts SessionOptions) *Sessions {
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	return &Sessions{
		opts:    opts,
		now:     time.Now,
		entries: make(map[string]*sessionEntry),
	}
}

// For returns the store of session sid, creating it on first use.
func (s *Sessions) For(sid string) *store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touch(sid).store
}

// Tutor returns the tutor bridge of session sid, creating it on first use.
func (s *Sessions) Tutor(sid string) *tutor.Bridge {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.touch(sid)
	if e.tutor == nil {
		l := s.opts.Logger.With().Str("session", sid).Logger()
		e.tutor = tutor.NewBridge(tutor.NewRegistry(s.opts.TutorFactory, s.opts.TutorPreamble), l)
	}
	return e.tutor
}

func (s *Sessions) touch(sid string) *sessionEntry {
	e, ok := s.entries[sid]
	if !ok {
		if len(s.entries) >= s.opts.MaxSessions {
			s.evictOldest()
		}
		l := s.opts.Logger.With().Str("session", sid).Logger()
		e = &sessionEntry{store: store.New(s.opts.Reducer, s.opts.Catalog, &l)}
		s.entries[sid] = e
	}
	e.lastSeen = s.now()
	e.hits++
	return e
}

func (s *Sessions) evictOldest() {
	var oldest string
	var seen time.Time
	for sid, e := range s.entries {
		if oldest == "" || e.lastSeen.Before(seen) {
			oldest, seen = sid, e.lastSeen
		}
	}
	if oldest != "" {
		delete(s.entries, oldest)
		s.opts.Logger.Debug().Str("session", oldest).Msg("session table full; evicted least recent")
	}
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed. Sessions that were used only once expire after freshIdle.
func (s *Sessions) Prune(maxIdle, freshIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for sid, e := range s.entries {
		limit := maxIdle
		if e.hits <= 1 && freshIdle < maxIdle {
			limit = freshIdle
		}
		if e.lastSeen.Before(now.Add(-limit)) {
			delete(s.entries, sid)
			n++
		}
	}
	return n
}
