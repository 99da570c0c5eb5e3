// Package genai is a small REST client for the Gemini generateContent API
// with multi-turn streaming chat sessions.
package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"academy/internal/domain"
	"academy/internal/infra"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
	// Streams can legitimately run long; the request context bounds them.
	defaultTimeout = 5 * time.Minute
	maxEventSize   = 1 << 20
)

// ErrMissingAPIKey is returned by NewClient without a key.
var ErrMissingAPIKey = fmt.Errorf("gemini api key is required: %w", domain.ErrMissingCredential)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client holds the connection settings shared by every chat session.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerateContentRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; a reusable one will be created.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// Chat is a multi-turn conversation. The service is stateless, so the chat
// keeps the completed turns and replays them with every request.
type Chat struct {
	client *Client
	system string

	mu      sync.Mutex
	history []geminiContent
}

// NewChat starts a conversation governed by systemInstruction.
func (c *Client) NewChat(systemInstruction string) *Chat {
	return &Chat{client: c, system: systemInstruction}
}

// History returns the completed turns of the conversation.
func (ch *Chat) History() []domain.ChatMessage {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	out := make([]domain.ChatMessage, 0, len(ch.history))
	for _, content := range ch.history {
		out = append(out, domain.ChatMessage{Role: domain.ChatRole(content.Role), Text: joinParts(content.Parts)})
	}
	return out
}

// SendMessageStream sends message as the next user turn and calls onText for
// every text fragment in arrival order. Turns on one chat are serialized; this
// lock is the only one guarding a tutor turn. The turn is only added to the
// history when the stream completes with text. A stream that ends without
// text, for example after a safety stop, fails with ErrProviderFailure. An
// error from onText aborts the stream and is returned as is.
func (ch *Chat) SendMessageStream(ctx context.Context, message string, onText func(string) error) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	userTurn := geminiContent{Role: string(domain.ChatRoleUser), Parts: []geminiPart{{Text: message}}}
	payload := geminiGenerateContentRequest{
		Contents: append(append([]geminiContent(nil), ch.history...), userTurn),
	}
	if strings.TrimSpace(ch.system) != "" {
		payload.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: ch.system}}}
	}

	var reply strings.Builder
	finish, err := ch.client.stream(ctx, payload, func(text string) error {
		reply.WriteString(text)
		return onText(text)
	})
	if err != nil {
		return err
	}
	// A turn without text cannot be replayed: the API rejects empty parts.
	if reply.Len() == 0 {
		if finish == "" {
			finish = "no content"
		}
		return fmt.Errorf("%w: empty reply (%s)", domain.ErrProviderFailure, finish)
	}

	ch.history = append(ch.history, userTurn, geminiContent{
		Role:  string(domain.ChatRoleModel),
		Parts: []geminiPart{{Text: reply.String()}},
	})
	ch.client.logger.Debug().
		Str("model", ch.client.model).
		Int("turns", len(ch.history)/2).
		Int("reply_bytes", reply.Len()).
		Msg("genai: chat turn completed")
	return nil
}

// stream posts payload and feeds text fragments to onText. It returns the last
// finish reason reported by the service.
func (c *Client) stream(ctx context.Context, payload geminiGenerateContentRequest, onText func(string) error) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent", c.baseURL, url.PathEscape(c.model))
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("alt", "sse")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("invoke gemini: %w: %w", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %w", domain.ErrProviderFailure, decodeAPIError(resp))
	}

	var finish string
	err = readEvents(resp.Body, func(data []byte) error {
		var chunk geminiGenerateContentResponse
		if err := json.Unmarshal(data, &chunk); err != nil {
			return fmt.Errorf("decode gemini chunk: %w: %w", domain.ErrProviderFailure, err)
		}
		if chunk.PromptFeedback != nil && chunk.PromptFeedback.BlockReason != "" {
			return fmt.Errorf("%w: prompt blocked: %s", domain.ErrProviderFailure, chunk.PromptFeedback.BlockReason)
		}
		for _, candidate := range chunk.Candidates {
			if candidate.FinishReason != "" {
				finish = candidate.FinishReason
			}
			text := joinParts(candidate.Content.Parts)
			if text == "" {
				continue
			}
			if err := onText(text); err != nil {
				return err
			}
		}
		return nil
	})
	return finish, err
}

// readEvents splits a server-sent event stream and hands each data payload
// to fn. Multi-line data fields are joined with newlines.
func readEvents(r io.Reader, fn func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var data bytes.Buffer
	flush := func() error {
		if data.Len() == 0 {
			return nil
		}
		payload := bytes.Clone(data.Bytes())
		data.Reset()
		if bytes.Equal(payload, []byte("[DONE]")) {
			return nil
		}
		return fn(payload)
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		field, value, _ := bytes.Cut(line, []byte(":"))
		if string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		if data.Len() > 0 {
			data.WriteByte('\n')
		}
		data.Write(value)
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("read gemini stream: %w: %w", domain.ErrProviderFailure, err)
	}
	return flush()
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	if msg := strings.TrimSpace(string(data)); msg != "" {
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("gemini status %d", resp.StatusCode)
}

func joinParts(parts []geminiPart) string {
	if len(parts) == 1 {
		return parts[0].Text
	}
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
