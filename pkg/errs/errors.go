// Package errs defines the error taxonomy shared by every mqttsim component:
// ConfigError, GeneratorError, PayloadError, TransportError, and the sentinel
// CancellationSignal that marks ordinary shutdown rather than failure.
package errs

import (
	"errors"
	"fmt"
)

// ConfigError wraps a failure raised by the config loader or expander:
// schema, validation, template-variable, or path-resolution failures.
// It is always fatal before any worker starts.
type ConfigError struct {
	Path string // JSON-pointer-ish path to the offending node, e.g. streams[3].payload.kind
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError from a path and a message.
func NewConfigError(path, msg string) *ConfigError {
	return &ConfigError{Path: path, Err: errors.New(msg)}
}

// GeneratorError marks a generator-domain failure: invalid bounds hit at
// build time, or an expression evaluation error.
type GeneratorError struct {
	Kind string // the generator kind, e.g. "number_walk"
	Err  error
}

func (e *GeneratorError) Error() string {
	return fmt.Sprintf("generator %s: %v", e.Kind, e.Err)
}

func (e *GeneratorError) Unwrap() error { return e.Err }

// PayloadError wraps file I/O, decoding, generation, or serialization
// failures raised while building a payload. It may wrap a GeneratorError.
type PayloadError struct {
	Kind string // the payload builder kind, e.g. "json_fields"
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("payload %s: %v", e.Kind, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }

// TransportError wraps a broker connection or publish failure.
type TransportError struct {
	Broker string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Broker, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ErrCancelled is the sentinel CancellationSignal: normal cancellation that
// must never be surfaced to the user as an error.
var ErrCancelled = errors.New("cancelled")

// IsCancellation reports whether err represents ordinary cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled)
}
