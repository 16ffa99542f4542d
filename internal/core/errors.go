package core

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid session configuration, such as bad funding
// bounds or a missing API credential. It is fatal: the session never starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigError creates a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// CollaboratorError reports a failure of the external LLM collaborator:
// the API was unreachable, returned a non-success status, or produced a
// malformed or empty completion. It aborts the session; there is no retry.
type CollaboratorError struct {
	Speaker string
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Speaker != "" {
		return fmt.Sprintf("collaborator error (voicing %s): %v", e.Speaker, e.Err)
	}
	return fmt.Sprintf("collaborator error: %v", e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsCollaboratorError reports whether err is (or wraps) a CollaboratorError.
func IsCollaboratorError(err error) bool {
	var ce *CollaboratorError
	return errors.As(err, &ce)
}
