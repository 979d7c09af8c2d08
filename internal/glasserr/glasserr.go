// Package glasserr defines the error kinds shared across the nucleation
// core. Inter-component signalling inside the core is by return value and
// sentinel, never by panic; these types exist so callers can distinguish
// the dispositions listed in the error handling design without resorting
// to string matching.
package glasserr

import "fmt"

// ConfigError reports a missing, mistyped, or malformed configuration value
// discovered at startup. The process is expected to exit non-zero.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("config: %s", e.Field)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err as a ConfigError attributed to field.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

// ParseError reports an unparseable input message. Callers drop the
// message, log at warn, and (when ingesting from disk) move the offending
// file to an error directory.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidateError reports a message that parsed but failed field validation
// (required field absent, value out of range). Disposition matches ParseError.
type ValidateError struct {
	Field  string
	Reason string
}

func (e *ValidateError) Error() string {
	return fmt.Sprintf("validate %s: %s", e.Field, e.Reason)
}

// TransientIO reports a retryable downstream condition: a bounded queue is
// full, or a sink is applying backpressure. The caller should back off and
// retry rather than treat this as fatal.
type TransientIO struct {
	Op  string
	Err error
}

func (e *TransientIO) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transient: %s", e.Op)
	}
	return fmt.Sprintf("transient: %s: %v", e.Op, e.Err)
}

func (e *TransientIO) Unwrap() error { return e.Err }

// Bug reports an invariant violation. Callers log at error and let the
// owning goroutine die; the health-check supervisor (internal/workpool)
// is responsible for turning a dead worker into an orderly shutdown.
type Bug struct {
	Invariant string
}

func (e *Bug) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Invariant)
}

// NoResult is not an error type — it documents the sentinel convention used
// throughout internal/travel and internal/nucleate: "no travel time at this
// distance/depth" and "no associable phase" are represented by the sentinel
// float64 value NoTime, never by an error return. See internal/travel.NoTime.
const NoResultSentinel = -1.0
