package models

import (
	"errors"
	"fmt"
)

// Sentinel errors let the web, CLI and MCP layers map failures to a response
// without string matching. Match them with errors.Is.
var (
	ErrNotFound             = errors.New("record not found")
	ErrValidation           = errors.New("validation failed")
	ErrConfirmationRequired = errors.New("migration requires an explicit confirmation")
	ErrRemoteUnavailable    = errors.New("remote document store is not configured")
	ErrNotSynced            = errors.New("remote state has not been observed yet")
	ErrUnauthorized         = errors.New("access denied")
)

// ValidationError reports which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) true for any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return e.Kind + " " + e.ID + " not found"
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Migration phases reported by MigrationError.
const (
	MigrationPhaseCommit     = "commit"
	MigrationPhaseClearLocal = "clear-local"
)

// MigrationError carries what the failed migration was attempting so the
// caller can tell the user how much data is still held locally.
type MigrationError struct {
	Phase      string
	Categories int
	Notes      int
	Err        error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s failed (%d categories, %d notes): %v",
		e.Phase, e.Categories, e.Notes, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}
