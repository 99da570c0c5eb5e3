// Package tutor keeps one chat conversation per course and streams replies
// from it as ordered text fragments.
package tutor

import (
	"context"
	"fmt"
	"sync"

	"academy/internal/domain"
)

// ChatSession is one remote conversation. Implementations serialize
// concurrent turns themselves.
type ChatSession interface {
	SendMessageStream(ctx context.Context, message string, onText func(string) error) error
}

// ChatFactory opens remote conversations.
type ChatFactory interface {
	NewChat(ctx context.Context, systemInstruction string) (ChatSession, error)
}

// Session is the cached conversation of one course. It holds no lock of its
// own: the chat serializes turns, as genai.Chat does with its mutex.
type Session struct {
	CourseID int64

	chat ChatSession
}

// Registry maps course ids to sessions. One registry belongs to one client
// session and lives until Reset or until that client session is dropped.
type Registry struct {
	factory  ChatFactory
	preamble string

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRegistry creates an empty registry. An empty preamble selects SystemPreamble.
func NewRegistry(factory ChatFactory, preamble string) *Registry {
	if preamble == "" {
		preamble = SystemPreamble
	}
	return &Registry{
		factory:  factory,
		preamble: preamble,
		sessions: make(map[int64]*Session),
	}
}

// GetOrCreate returns the session for the course, creating it on first use.
// Creation errors are not cached, so a later call can retry once the
// configuration is fixed.
func (r *Registry) GetOrCreate(ctx context.Context, course domain.Course) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[course.ID]; ok {
		return s, nil
	}
	if r.factory == nil {
		return nil, fmt.Errorf("tutor: no chat factory: %w", domain.ErrMissingCredential)
	}
	chat, err := r.factory.NewChat(ctx, r.preamble)
	if err != nil {
		return nil, fmt.Errorf("tutor: open session for course %d: %w", course.ID, err)
	}
	s := &Session{CourseID: course.ID, chat: chat}
	r.sessions[course.ID] = s
	return s, nil
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reset drops every session. In-flight turns finish on their old session.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[int64]*Session)
}
