package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"academy/internal/domain"
)

// Bridge turns a conversation history into a stream of reply fragments.
type Bridge struct {
	registry *Registry
	logger   zerolog.Logger
}

// NewBridge creates a bridge over registry.
func NewBridge(registry *Registry, logger zerolog.Logger) *Bridge {
	return &Bridge{registry: registry, logger: logger}
}

// Registry returns the session registry the bridge draws from.
func (b *Bridge) Registry() *Registry {
	return b.registry
}

// StreamReply sends the last user message of history to the course session.
// The returned channel yields fragments in delivery order and is closed when
// the turn ends. Service failures are not returned: the channel yields
// Apology instead. Errors are returned only for an invalid history or when
// the session cannot be opened, for example without an API key.
// Cancelling ctx stops the stream.
func (b *Bridge) StreamReply(ctx context.Context, course domain.Course, history []domain.ChatMessage) (<-chan string, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("tutor: empty history: %w", domain.ErrInvalidPrompt)
	}
	last := history[len(history)-1]
	if last.Role != domain.ChatRoleUser || strings.TrimSpace(last.Text) == "" {
		return nil, fmt.Errorf("tutor: history must end with a user message: %w", domain.ErrInvalidPrompt)
	}

	session, err := b.registry.GetOrCreate(ctx, course)
	if err != nil {
		return nil, err
	}

	out := make(chan string)
	go func() {
		defer close(out)

		err := session.chat.SendMessageStream(ctx, last.Text, func(text string) error {
			if text == "" {
				return nil
			}
			select {
			case out <- text:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err == nil {
			return
		}
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			b.logger.Debug().Int64("course_id", course.ID).Msg("tutor: stream abandoned by caller")
			return
		}
		b.logger.Error().Err(err).Int64("course_id", course.ID).Msg("tutor: chat call failed")
		select {
		case out <- Apology:
		case <-ctx.Done():
		}
	}()
	return out, nil
}
