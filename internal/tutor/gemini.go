package tutor

import (
	"context"
	"net/http"
	"sync"

	"academy/internal/domain"
	"academy/internal/infra"
	"academy/internal/infra/credentials"
	"academy/internal/providers/genai"
)

// GeminiFactory opens Gemini chat sessions. The API key is resolved on the
// first NewChat call, not at startup, and the client is reused afterwards.
type GeminiFactory struct {
	Credentials domain.CredentialSource
	BaseURL     string
	Model       string
	HTTPClient  *http.Client
	Logger      *infra.Logger

	mu     sync.Mutex
	client *genai.Client
}

// NewChat implements ChatFactory.
func (f *GeminiFactory) NewChat(ctx context.Context, systemInstruction string) (ChatSession, error) {
	client, err := f.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return client.NewChat(systemInstruction), nil
}

func (f *GeminiFactory) resolve(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}
	key, err := credentials.Require(ctx, f.Credentials, credentials.ProviderGemini)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(genai.Options{
		APIKey:     key,
		BaseURL:    f.BaseURL,
		Model:      f.Model,
		HTTPClient: f.HTTPClient,
		Logger:     f.Logger,
	})
	if err != nil {
		return nil, err
	}
	f.client = client
	return client, nil
}

var _ ChatFactory = (*GeminiFactory)(nil)
