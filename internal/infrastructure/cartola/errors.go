package cartola

import (
	"fmt"
	"net/http"

	crerr "github.com/cockroachdb/errors"
)

// StatusError is a non-2xx answer from the upstream API. Body is already
// abbreviated and token-redacted, safe to log as-is.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cartola: upstream status=%d body=%s", e.StatusCode, e.Body)
}

// DecodeError is a 2xx answer whose body did not parse as the expected shape.
// Kept distinct from StatusError so callers never confuse a provider outage
// with a contract drift.
type DecodeError struct {
	Snippet string
	cause   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cartola: decode upstream payload: %v body=%s", e.cause, e.Snippet)
}

func (e *DecodeError) Unwrap() error {
	return e.cause
}

// StatusCodeOf extracts the upstream HTTP status from err, or 0 when err is
// not a StatusError.
func StatusCodeOf(err error) int {
	var statusErr *StatusError
	if crerr.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

func isAuthRejection(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
