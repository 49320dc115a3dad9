package globoid

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

// ErrMissingCredentials marks a fatal configuration gap: no refresh token or
// client id. Never retried; surfaced straight to the caller.
var ErrMissingCredentials = crerr.New("globoid: refresh token and client id are required")

// AuthError is a rejection from the identity provider, carrying whatever
// diagnostic text the provider supplied.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("globoid: token refresh rejected status=%d: %s", e.StatusCode, e.Message)
	}
	return "globoid: token refresh rejected: " + e.Message
}

// IsAuthError reports whether err (or anything it wraps) is a provider
// rejection.
func IsAuthError(err error) bool {
	var target *AuthError
	return crerr.As(err, &target)
}
