package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidState      = errors.New("invalid state")
	ErrSchemaUnavailable = errors.New("schema capability unavailable")
)

// PermissionDeniedError carries the action name and caller role so the
// refusal is attributable. It never downgrades to a silent no-op.
type PermissionDeniedError struct {
	Action string
	Role   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %q may not perform %q", e.Role, e.Action)
}

func (e *PermissionDeniedError) StatusCode() int { return http.StatusForbidden }

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrForbidden }

// InvalidStateError indicates an operation was attempted against a record
// whose lifecycle state does not permit it (recovering an active note,
// deleting the last community version, ...).
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

func (e *InvalidStateError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

// ConflictError represents a resource conflict with details about the
// existing resource, or a concurrent-mutation race detected by a
// conditional update.
type ConflictError struct {
	Message      string
	ResourceType string
	ResourceID   string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// SchemaUnavailableError indicates the underlying schema lacks the trash
// columns and the requested operation has no safe degraded path.
type SchemaUnavailableError struct {
	Operation string
}

func (e *SchemaUnavailableError) Error() string {
	return fmt.Sprintf("%s requires the trash schema migration", e.Operation)
}

func (e *SchemaUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

func (e *SchemaUnavailableError) Is(target error) bool { return target == ErrSchemaUnavailable }
