package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrSignInRequired    = errors.New("sign in required")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidCourse     = errors.New("invalid course")
	ErrInvalidPrompt     = errors.New("invalid prompt")
	ErrMissingCredential = errors.New("missing api credential")
	ErrProviderFailure   = errors.New("provider failure")
)

// Notice is a reported, user-facing failure. The store returns it instead
// of mutating state; Key selects the localized message.
type Notice struct {
	Key string
	Err error
}

func (n *Notice) Error() string {
	return n.Err.Error() + ": " + n.Key
}

func (n *Notice) Unwrap() error {
	return n.Err
}

// NewNotice wraps err with a message key.
func NewNotice(key string, err error) *Notice {
	return &Notice{Key: key, Err: err}
}
