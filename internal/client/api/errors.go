package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformedHistory is returned when /metrics/history does not match
	// the reading schema.
	ErrMalformedHistory = errors.New("malformed metric history")
	// ErrUnexpectedContentType is returned when a typed result was expected
	// but the server answered with a non-JSON body.
	ErrUnexpectedContentType = errors.New("unexpected content type")
)

// APIError is any non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, msg)
}

// IsAuthError reports whether err is a 401 or 403 APIError.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
}

// newAPIError extracts message, then error, from a JSON body and falls back
// to the raw text.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := string(body)
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != "":
			msg = payload.Error
		}
	}
	return &APIError{Status: status, Message: msg}
}
