package domain

import "context"

// CourseRepository persists the seed catalog.
type CourseRepository interface {
	List(ctx context.Context) ([]Course, error)
	ReplaceAll(ctx context.Context, courses []Course) error
}

// CredentialSource resolves provider API keys.
type CredentialSource interface {
	Token(ctx context.Context, provider string) (string, error)
}
