package sitepdf

import (
	"errors"
	"fmt"
	"net/http"
)

// Application error codes.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EINTERNAL = "internal"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sitepdf error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrNoSitemaps is reported when discovery finds no sitemap at all.
// The crawl still completes with an empty report.
var ErrNoSitemaps = errors.New("No sitemaps found")

// FetchErrorKind classifies why a sitemap fetch failed.
type FetchErrorKind int

const (
	// FetchConnectionFailed covers DNS, dial, TLS and body read failures.
	FetchConnectionFailed FetchErrorKind = iota
	// FetchTimeout means the per-request timeout expired.
	FetchTimeout
	// FetchHTTPStatus means the server answered with a non-200 status.
	FetchHTTPStatus
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchHTTPStatus:
		return "http status"
	default:
		return "connection failed"
	}
}

// FetchError is returned by SitemapFetcher implementations.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("HTTP %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	case FetchTimeout:
		return fmt.Sprintf("timeout fetching %s", e.URL)
	default:
		if e.Err != nil {
			return fmt.Sprintf("connection failed for %s: %v", e.URL, e.Err)
		}
		return fmt.Sprintf("connection failed for %s", e.URL)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is returned when a sitemap body is neither XML nor a text URL list.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("malformed sitemap: %v", e.Err)
	}
	return fmt.Sprintf("malformed sitemap %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WorkerError wraps a panic recovered while processing a single sitemap.
type WorkerError struct {
	URL   string
	Value any
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker panic on %s: %v", e.URL, e.Value)
}
