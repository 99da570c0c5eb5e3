// Package credentials resolves provider API keys from the environment and
// the integration_tokens table.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"academy/internal/domain"
	"academy/internal/infra"
	"academy/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"
)

// Store reads and writes provider tokens in Postgres.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored token for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("load %s token: %w", provider, err)
	}
	return strings.TrimSpace(token), nil
}

// SetToken stores token for provider, replacing any previous value.
func (s *Store) SetToken(ctx context.Context, provider, token string, props map[string]any) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%s token is required", provider)
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

// Static serves fixed tokens, typically read from the environment.
type Static map[string]string

func (s Static) Token(_ context.Context, provider string) (string, error) {
	return strings.TrimSpace(s[provider]), nil
}

// Chain asks each source in order and returns the first non-empty token. A
// source error is remembered but does not stop the search.
type Chain []domain.CredentialSource

func (c Chain) Token(ctx context.Context, provider string) (string, error) {
	var errs []error
	for _, src := range c {
		if src == nil {
			continue
		}
		token, err := src.Token(ctx, provider)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if token != "" {
			return token, nil
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", nil
}

// Require resolves provider and fails with domain.ErrMissingCredential when
// no source has a token.
func Require(ctx context.Context, src domain.CredentialSource, provider string) (string, error) {
	if src == nil {
		return "", fmt.Errorf("%s: %w", provider, domain.ErrMissingCredential)
	}
	token, err := src.Token(ctx, provider)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", provider, domain.ErrMissingCredential, err)
	}
	if token == "" {
		return "", fmt.Errorf("%s: %w", provider, domain.ErrMissingCredential)
	}
	return token, nil
}

var (
	_ domain.CredentialSource = (*Store)(nil)
	_ domain.CredentialSource = Static(nil)
	_ domain.CredentialSource = Chain(nil)
)
