package tutor

import (
	"context"
	"strings"
	"sync"

	"academy/internal/domain"
)

// Conversation is the consumer side of a tutor panel: the ordered message
// list of one course, with model replies growing as fragments arrive. Once
// closed, late fragments are dropped.
type Conversation struct {
	bridge *Bridge
	course domain.Course

	// send is held for a whole turn so replies never interleave.
	send sync.Mutex

	mu       sync.Mutex
	messages []domain.ChatMessage
	closed   bool
}

// NewConversation opens an empty conversation about course.
func (b *Bridge) NewConversation(course domain.Course) *Conversation {
	return &Conversation{bridge: b, course: course}
}

// Messages returns a copy of the message list.
func (c *Conversation) Messages() []domain.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ChatMessage(nil), c.messages...)
}

// Close marks the conversation dead; fragments still in flight are ignored.
func (c *Conversation) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Closed reports whether Close was called.
func (c *Conversation) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Send appends the user message and an empty model message, then folds the
// streamed fragments into the latter. Blank input is ignored. onFragment,
// when set, observes every applied fragment. Concurrent sends take turns.
func (c *Conversation) Send(ctx context.Context, text string, onFragment func(string)) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	c.send.Lock()
	defer c.send.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.ChatRoleUser, Text: text})
	history := append([]domain.ChatMessage(nil), c.messages...)
	placeholder := len(c.messages)
	c.messages = append(c.messages, domain.ChatMessage{Role: domain.ChatRoleModel})
	c.mu.Unlock()

	fragments, err := c.bridge.StreamReply(ctx, c.course, history)
	if err != nil {
		c.mu.Lock()
		c.messages = append(c.messages[:placeholder], c.messages[placeholder+1:]...)
		c.mu.Unlock()
		return err
	}

	for fragment := range fragments {
		if !c.apply(placeholder, fragment) {
			continue
		}
		if onFragment != nil {
			onFragment(fragment)
		}
	}
	return nil
}

func (c *Conversation) apply(idx int, fragment string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || idx >= len(c.messages) || c.messages[idx].Role != domain.ChatRoleModel {
		return false
	}
	c.messages[idx].Text += fragment
	return true
}
