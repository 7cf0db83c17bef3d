package mirror

import (
	"errors"
	"fmt"
)

var ErrMalformedResponse = errors.New("malformed mirror node response")

// RequestError is returned when the mirror node cannot be reached or answers
// with a non-2xx status. StatusCode is zero for transport failures.
type RequestError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("mirror node request failed: %v", e.Err)
	}
	return fmt.Sprintf("mirror node request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the mirror node answered 404.
func (e *RequestError) NotFound() bool {
	return e.StatusCode == 404
}
