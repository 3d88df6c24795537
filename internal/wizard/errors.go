package wizard

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	ErrSaveInFlight     = errors.New("a save is already in progress")
	ErrUploadInFlight   = errors.New("an upload is still in progress")
	ErrStepNotOptional  = errors.New("only optional steps can be skipped")
	ErrVersionConflict  = errors.New("progress was changed by another session")
	ErrAlreadyCompleted = errors.New("wizard already completed")
)

// ValidationErrors maps a dot-notation field path to a human readable message.
type ValidationErrors map[string]string

// Fields returns the failing field paths in sorted order.
func (v ValidationErrors) Fields() []string {
	return slices.Sorted(maps.Keys(v))
}

// ValidationError is returned when local validation blocks a transition.
// It never leaves the process: nothing was sent to the remote.
type ValidationError struct {
	Step   int
	Errors ValidationErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d is invalid: %s", e.Step, strings.Join(e.Errors.Fields(), ", "))
}

// NetworkError is a transient failure talking to the remote. Saves are retryable
// by the user; local state is preserved.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteRejection is a 4xx answer from the remote. Fields is set when the
// remote returned structured per-field errors.
type RemoteRejection struct {
	StatusCode int
	Message    string
	Fields     ValidationErrors
	Err        error
}

func (e *RemoteRejection) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("rejected (%d)", e.StatusCode)
}

func (e *RemoteRejection) Unwrap() error { return e.Err }

// ConfigurationError is fatal for the operation until an operator fixes the setup.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Message)
}

// NotFoundError sends the user to a remediation flow instead of a raw error page.
type NotFoundError struct {
	Resource string
	Redirect string
}

func (e *NotFoundError) Error() string {
	if e.Redirect != "" {
		return fmt.Sprintf("%s not found, continue at %s", e.Resource, e.Redirect)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// NavigationRefused is returned when a flow's guard blocks a move. Notice is
// shown to the user; progress is left untouched.
type NavigationRefused struct {
	From, To int
	Notice   string
}

func (e *NavigationRefused) Error() string {
	return fmt.Sprintf("cannot navigate from step %d to %d: %s", e.From, e.To, e.Notice)
}

// IsRetryable reports whether the user may simply trigger the same action again.
func IsRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
