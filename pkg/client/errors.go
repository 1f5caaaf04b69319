package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents malformed response bodies.
	ErrorClassDecode ErrorClass = "decode"
)

// ErrUserAgentRequired is returned by New when no User-Agent is configured.
var ErrUserAgentRequired = errors.New("user-agent is required")

// HTTPError is returned when PokeAPI answers with a non-success status.
type HTTPError struct {
	StatusCode int
	URL        string
	Class      ErrorClass
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("pokeapi %s error (status %d): GET %s", e.Class, e.StatusCode, e.URL)
}

// newHTTPError builds an HTTPError with the class derived from the status.
func newHTTPError(statusCode int, url string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		URL:        url,
		Class:      classifyStatus(statusCode),
	}
}

// IsNotFound reports whether err is an HTTPError with status 404.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0 if there is none.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// classifyStatus maps a non-success HTTP status to an error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		// 1xx/3xx without a usable cache entry
		return ErrorClassClient
	}
}
