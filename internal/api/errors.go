package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/berbagi/internal/common"
)

// ErrUnavailable wraps transport failures: the API could not be reached.
var ErrUnavailable = errors.New("story api unavailable")

// APIError is a non-2xx answer (or a 2xx answer flagged "error": true).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("story api: status %d", e.Status)
	}
	return fmt.Sprintf("story api: status %d: %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, common.ErrorUnauthorized) match a 401.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return common.ErrorUnauthorized
	}
	return nil
}

// Temporary reports whether retrying later may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= http.StatusInternalServerError
}

var errMissingErrorField = errors.New("missing error field")

// DecodeError is a 2xx answer whose body is not the expected envelope.
type DecodeError struct {
	Status int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("story api: status %d: decode: %v", e.Status, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
