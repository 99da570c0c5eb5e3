package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/domain"
	"academy/internal/infra/credentials"
)

type scriptedChat struct {
	fragments []string
	err       error

	mu   sync.Mutex
	sent []string
}

func (c *scriptedChat) SendMessageStream(ctx context.Context, message string, onText func(string) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, message)

	for _, f := range c.fragments {
		if err := onText(f); err != nil {
			return err
		}
	}
	return c.err
}

type fakeFactory struct {
	newChat func() ChatSession
	err     error
	calls   atomic.Int32
	system  string
}

func (f *fakeFactory) NewChat(_ context.Context, system string) (ChatSession, error) {
	f.calls.Add(1)
	f.system = system
	if f.err != nil {
		return nil, f.err
	}
	return f.newChat(), nil
}

func course(id int64) domain.Course {
	return domain.Course{ID: id, Title: "Course"}
}

func userTurn(text string) []domain.ChatMessage {
	return []domain.ChatMessage{{Role: domain.ChatRoleUser, Text: text}}
}

func collect(ch <-chan string) []string {
	var out []string
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestRegistryReusesSessionPerCourse(t *testing.T) {
	factory := &fakeFactory{newChat: func() ChatSession { return &scriptedChat{} }}
	reg := NewRegistry(factory, "")

	a, err := reg.GetOrCreate(context.Background(), course(1))
	require.NoError(t, err)
	b, err := reg.GetOrCreate(context.Background(), course(1))
	require.NoError(t, err)
	c, err := reg.GetOrCreate(context.Background(), course(2))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, int32(2), factory.calls.Load())
	assert.Equal(t, 2, reg.Len())
	assert.Equal(t, SystemPreamble, factory.system)

	reg.Reset()
	assert.Equal(t, 0, reg.Len())
	d, err := reg.GetOrCreate(context.Background(), course(1))
	require.NoError(t, err)
	assert.NotSame(t, a, d)
}

func TestRegistryDoesNotCacheFailures(t *testing.T) {
	factory := &fakeFactory{err: fmt.Errorf("gemini: %w", domain.ErrMissingCredential)}
	reg := NewRegistry(factory, "custom")

	_, err := reg.GetOrCreate(context.Background(), course(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, 0, reg.Len())

	factory.err = nil
	factory.newChat = func() ChatSession { return &scriptedChat{} }
	_, err = reg.GetOrCreate(context.Background(), course(1))
	require.NoError(t, err)
	assert.Equal(t, "custom", factory.system)
}

func TestStreamReplyYieldsFragmentsInOrder(t *testing.T) {
	chat := &scriptedChat{fragments: []string{"Hel", "", "lo", " there"}}
	bridge := NewBridge(NewRegistry(&fakeFactory{newChat: func() ChatSession { return chat }}, ""), zerolog.Nop())

	history := []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Text: "first"},
		{Role: domain.ChatRoleModel, Text: "reply"},
		{Role: domain.ChatRoleUser, Text: "What is a PLC?"},
	}
	ch, err := bridge.StreamReply(context.Background(), course(1), history)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hel", "lo", " there"}, collect(ch))
	assert.Equal(t, []string{"What is a PLC?"}, chat.sent)
}

func TestStreamReplyApologisesOnFailure(t *testing.T) {
	chat := &scriptedChat{fragments: []string{"partial"}, err: errors.New("boom")}
	bridge := NewBridge(NewRegistry(&fakeFactory{newChat: func() ChatSession { return chat }}, ""), zerolog.Nop())

	ch, err := bridge.StreamReply(context.Background(), course(1), userTurn("hi"))
	require.NoError(t, err)
	assert.Equal(t, []string{"partial", Apology}, collect(ch))
}

func TestStreamReplyRejectsBadHistory(t *testing.T) {
	bridge := NewBridge(NewRegistry(&fakeFactory{newChat: func() ChatSession { return &scriptedChat{} }}, ""), zerolog.Nop())

	_, err := bridge.StreamReply(context.Background(), course(1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPrompt)

	_, err = bridge.StreamReply(context.Background(), course(1), []domain.ChatMessage{{Role: domain.ChatRoleModel, Text: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidPrompt)

	_, err = bridge.StreamReply(context.Background(), course(1), userTurn("   "))
	assert.ErrorIs(t, err, domain.ErrInvalidPrompt)
}

func TestStreamReplyMissingCredentialIsSynchronous(t *testing.T) {
	factory := &GeminiFactory{Credentials: credentials.Static{}}
	bridge := NewBridge(NewRegistry(factory, ""), zerolog.Nop())

	ch, err := bridge.StreamReply(context.Background(), course(1), userTurn("hi"))
	assert.Nil(t, ch)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestStreamReplyStopsOnCancel(t *testing.T) {
	chat := &scriptedChat{fragments: []string{"a", "b", "c", "d"}}
	bridge := NewBridge(NewRegistry(&fakeFactory{newChat: func() ChatSession { return chat }}, ""), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := bridge.StreamReply(ctx, course(1), userTurn("q"))
	require.NoError(t, err)

	assert.Equal(t, "a", <-ch)
	cancel()
	for s := range ch {
		assert.NotEqual(t, Apology, s)
	}
}

func TestConversationAccumulatesReply(t *testing.T) {
	chat := &scriptedChat{fragments: []string{"Ladder ", "logic"}}
	bridge := NewBridge(NewRegistry(&fakeFactory{newChat: func() ChatSession { return chat }}, ""), zerolog.Nop())
	conv := bridge.NewConversation(course(1))

	var seen []string
	require.NoError(t, conv.Send(context.Background(), "explain", func(s string) { seen = append(seen, s) }))
	require.NoError(t, conv.Send(context.Background(), "  ", nil))

	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Text: "explain"},
		{Role: domain.ChatRoleModel, Text: "Ladder logic"},
	}, conv.Messages())
	assert.Equal(t, []string{"Ladder ", "logic"}, seen)
}

func TestConversationDropsFragmentsAfterClose(t *testing.T) {
	var conv *Conversation
	chat := &closingChat{fragments: []string{"one", "two", "three"}, closeAfter: 1, close: func() { conv.Close() }}
	bridge := NewBridge(NewRegistry(&fakeFactory{newChat: func() ChatSession { return chat }}, ""), zerolog.Nop())
	conv = bridge.NewConversation(course(1))

	require.NoError(t, conv.Send(context.Background(), "hi", nil))

	msgs := conv.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[1].Text)
	assert.True(t, conv.Closed())

	require.NoError(t, conv.Send(context.Background(), "again", nil))
	assert.Len(t, conv.Messages(), 2)
}

func TestConversationRollsBackOnError(t *testing.T) {
	bridge := NewBridge(NewRegistry(&GeminiFactory{Credentials: credentials.Static{}}, ""), zerolog.Nop())
	conv := bridge.NewConversation(course(1))

	err := conv.Send(context.Background(), "hi", nil)
	require.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, []domain.ChatMessage{{Role: domain.ChatRoleUser, Text: "hi"}}, conv.Messages())
}

// gatedFactory blocks its first NewChat until release is closed, then fails
// it. Later calls return chat.
type gatedFactory struct {
	entered chan struct{}
	release chan struct{}
	chat    ChatSession
	calls   atomic.Int32
}

func (f *gatedFactory) NewChat(context.Context, string) (ChatSession, error) {
	if f.calls.Add(1) == 1 {
		close(f.entered)
		<-f.release
		return nil, fmt.Errorf("gemini: %w", domain.ErrMissingCredential)
	}
	return f.chat, nil
}

func TestConversationRollbackKeepsConcurrentTurn(t *testing.T) {
	factory := &gatedFactory{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		chat:    &scriptedChat{fragments: []string{"ok"}},
	}
	conv := NewBridge(NewRegistry(factory, ""), zerolog.Nop()).NewConversation(course(1))

	var wg sync.WaitGroup
	var firstErr, secondErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = conv.Send(context.Background(), "first", nil)
	}()
	<-factory.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		secondErr = conv.Send(context.Background(), "second", nil)
	}()
	time.Sleep(20 * time.Millisecond)
	close(factory.release)
	wg.Wait()

	require.ErrorIs(t, firstErr, domain.ErrMissingCredential)
	require.NoError(t, secondErr)
	assert.Equal(t, []domain.ChatMessage{
		{Role: domain.ChatRoleUser, Text: "first"},
		{Role: domain.ChatRoleUser, Text: "second"},
		{Role: domain.ChatRoleModel, Text: "ok"},
	}, conv.Messages())
}

// closingChat calls close once closeAfter fragments have been consumed.
type closingChat struct {
	fragments  []string
	closeAfter int
	close      func()
}

func (c *closingChat) SendMessageStream(_ context.Context, _ string, onText func(string) error) error {
	for i, f := range c.fragments {
		if i == c.closeAfter {
			c.close()
		}
		if err := onText(f); err != nil {
			return err
		}
	}
	return nil
}

func TestSystemPreambleMentionsSchema(t *testing.T) {
	for _, want := range []string{"e-learning platform", "Enrollments:", "progress_percent", "quiz_questions"} {
		assert.True(t, strings.Contains(SystemPreamble, want), want)
	}
}
