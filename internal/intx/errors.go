package intx

import (
	"fmt"
	"strings"
)

// maxErrorBody bounds how much of a failed response is kept on HTTPError.
const maxErrorBody = 4096

// HTTPError represents a non-2xx response from an API endpoint.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody] + "..."
	}
	return &HTTPError{Method: method, Path: path, StatusCode: status, Body: strings.TrimSpace(b)}
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: server responded with a %d status code", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: server responded with a %d status code: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// TimeoutError is returned when a request exceeds the client timeout or its
// context deadline. It is kept apart from HTTPError because the server may
// never have answered.
type TimeoutError struct {
	Method string
	Path   string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: request timed out: %v", e.Method, e.Path, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a successful response does not carry JSON.
type DecodeError struct {
	Path string
	Body string
}

func (e *DecodeError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("%s: response is not valid JSON: %q", e.Path, body)
}
