// Package apperror defines the error taxonomy shared by the session
// manager, the request gateway and the command layer.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSessionExpired is returned by the gateway when the backend answers
	// 401. Observing it means the session has already been torn down.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotAuthenticated is returned when an operation requiring a session
	// is attempted without one.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound is returned when a stored credential key is absent.
	ErrNotFound = errors.New("not found")
)

// APIError carries an HTTP failure that was not a 401: either the message
// the backend included in its error body, or a generic one built from the
// status code.
type APIError struct {
	Status  int    // HTTP status code
	Message string // human-readable message shown to the user
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPError builds an APIError for a response that carried no parseable
// error body.
func HTTPError(status int) *APIError {
	return &APIError{
		Status:  status,
		Message: fmt.Sprintf("HTTP error %d", status),
	}
}

// ValidationError carries the field-keyed messages of a 422 response.
// Error joins every field's messages so a single string surfaces all of
// them to the user.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		for _, msg := range e.Fields[k] {
			parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
		}
	}
	return strings.Join(parts, "; ")
}
