package solr

import (
	"fmt"
)

// ConfigError indicates an unusable endpoint definition. It is raised at
// parse time, before any request is made.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}

// TransportError indicates the engine could not be reached at all: no
// status line, no headers, no body.
type TransportError struct {
	URL     string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("solr transport failure for [%s]: %s", e.URL, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// EngineError indicates the engine answered with a failing HTTP status.
// The raw body is preserved for logging; it often carries the Solr
// exception trace.
type EngineError struct {
	StatusCode    int
	StatusMessage string
	Body          []byte
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("solr returned status %d (%s)", e.StatusCode, e.StatusMessage)
}

// DecodeError indicates a successful response whose body was not valid
// JSON.
type DecodeError struct {
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode solr response: %s", e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
