package errors

import (
	"errors"
	"net/http"
)

// ErrUndecodableResponse marks a 2xx backend response whose body could not be read.
// The request itself succeeded, so callers must not replay it.
var ErrUndecodableResponse = errors.New("cannot decode backend response")

// ErrorWithStatusCode is an error that already knows its HTTP status.
// Handlers write it as-is; any other error becomes a 500.
// The apiclient also returns it for non-2xx backend responses, in which case
// Message is the backend's own message (possibly empty).
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// StatusCode extracts the status carried by err, or 500.
func StatusCode(err error) int {
	var withStatus *ErrorWithStatusCode
	if errors.As(err, &withStatus) {
		return withStatus.StatusCode
	}
	return http.StatusInternalServerError
}

func NotFound(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusNotFound}
}

func BadRequest(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest}
}
