package services

import (
	"errors"

	"github.com/justsurfingit/temu/internal/wizard"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnavailable       = errors.New("service unavailable")
)

// RejectionError is a server-side validation failure. Fields carries per-field
// messages when the failure is tied to specific inputs.
type RejectionError struct {
	Message string
	Fields  wizard.ValidationErrors
}

func (e *RejectionError) Error() string { return e.Message }
