package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is a non-2xx reply from the backend. Message holds the
// server-supplied message field when the body carried one.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

// NewAPIError builds an APIError from a status code and raw body,
// extracting the conventional message field.
func NewAPIError(statusCode int, body []byte) *APIError {
	msg := gjson.GetBytes(body, "message").String()
	return &APIError{
		StatusCode: statusCode,
		Message:    strings.TrimSpace(msg),
		Body:       body,
	}
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// IsAuthError reports whether err is a 401 reply.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ErrorMessage reduces any request failure to a human-readable message,
// preferring the server-supplied one and falling back to the given
// operation-specific string. This is the single reduction point the stores
// use before surfacing an error.
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
