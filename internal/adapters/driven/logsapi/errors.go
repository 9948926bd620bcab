package logsapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
)

// Fetch error kinds. All of them are also wrapped with domain.ErrFetch.
var (
	// ErrTransport indicates the request never produced a complete response.
	ErrTransport = errors.New("logsapi: transport failure")

	// ErrMalformedBody indicates the response was not a payload object
	// with a messages array of objects.
	ErrMalformedBody = errors.New("logsapi: malformed response body")
)

// StatusError represents a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("logsapi: unexpected status %d (URL: %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("logsapi: unexpected status %d: %s (URL: %s)", e.StatusCode, e.Body, e.URL)
}

// Unwrap exposes a 404 as domain.ErrNotFound.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return nil
}

// IsNotFound checks if the error is a 404 response. The API answers 404
// for channels it does not log and for days outside its archive.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
