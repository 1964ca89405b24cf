package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized marks a 401 from the API. The router reacts to it by
	// sending the browser to the login page.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrDecode       = errors.New("decode response")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // the body's error field, when the API sent one
	Err     error  // ErrUnauthorized or ErrNotFound where applicable
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err carries a 401 from the API.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// ServerMessage returns the API's error text carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: errorMessage(body),
	}
	switch status {
	case http.StatusUnauthorized:
		e.Err = ErrUnauthorized
	case http.StatusNotFound:
		e.Err = ErrNotFound
	}
	return e
}

// errorMessage extracts {"error": "..."} or {"message": "..."} from a body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
