package httpclient

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBaseURL is returned when a handle is built from a malformed base URL.
var ErrInvalidBaseURL = errors.New("invalid base url")

const maxSnippetBytes = 512

// StatusError reports a non-2xx response received through a handle.
type StatusError struct {
	Method  string
	URL     string
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("%s %s: http response status %d", e.Method, e.URL, e.Code)
	}
	return fmt.Sprintf("%s %s: http response status %d: %s", e.Method, e.URL, e.Code, e.Snippet)
}

// IsStatus reports whether err is a StatusError carrying the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxSnippetBytes {
		body = body[:maxSnippetBytes]
	}
	return strings.TrimSpace(string(body))
}
