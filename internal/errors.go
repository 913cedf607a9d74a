package internal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyDraft is returned when a send is attempted with blank text.
	// Nothing changes and the UI does not report it.
	ErrEmptyDraft = errors.New("draft is empty")

	// ErrBusy is returned when a send is attempted while a request is in flight
	ErrBusy = errors.New("a request is already in flight")
)

// Generic user-facing texts for failures that carry no backend message
const (
	GenericFailureText   = "Something went wrong."
	TransportFailureText = "Could not reach the advisory service."
	ParseFailureText     = "The advisory service returned an unreadable response."
)

// BackendError is a non-success HTTP response from the advisor. The body
// is kept verbatim; it is not assumed to be JSON.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("Backend error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("Backend error (%d): %s", e.StatusCode, body)
}

// TransportError represents a request that never produced a response
type TransportError struct {
	Op  string // "encode", "request", "read"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError represents a success response whose body is not a JSON object
type ParseError struct {
	Source     string // "chat", "health"
	StatusCode int
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] status %d: %v", e.Source, e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ConfigError represents errors loading or validating configuration
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %v", e.Err)
	}
	return fmt.Sprintf("config error [%s]: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status carried by err, or 0 when the
// failure happened before a response arrived.
func StatusCode(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.StatusCode
	}
	return 0
}

// NotificationText converts a failed turn into the text shown to the user.
// Backend-supplied text wins; otherwise a generic message is used.
func NotificationText(err error) string {
	if err == nil {
		return ""
	}
	var be *BackendError
	if errors.As(err, &be) {
		return be.Error()
	}
	var te *TransportError
	if errors.As(err, &te) {
		return TransportFailureText
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		if pe.StatusCode > 0 {
			return fmt.Sprintf("%s (status %d)", ParseFailureText, pe.StatusCode)
		}
		return ParseFailureText
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericFailureText
}
