package telegram

import (
	"errors"
	"fmt"
)

// ErrAPI is the fallback message when the Bot API rejects a request without
// a description.
var ErrAPI = errors.New("telegram api error")

// APIError is returned when the Bot API answers with "ok": false.
type APIError struct {
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return ErrAPI.Error()
	}
	return e.Description
}

func (e *APIError) Unwrap() error { return ErrAPI }

// HTTPError is returned when the Bot API answers with a status outside 2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ParseError is returned when a 2xx response body cannot be understood.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
