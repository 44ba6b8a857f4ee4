package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError is a client input problem. Writes that fail validation
// never persist anything.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a slug already taken by another product.
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slug already exists: %s", e.Slug)
}

// NotFoundError reports a product that does not exist, looked up either by
// id (writes) or by slug (detail reads).
type NotFoundError struct {
	ID   uuid.UUID
	Slug string
}

func (e *NotFoundError) Error() string {
	if e.Slug != "" {
		return fmt.Sprintf("product not found: %s", e.Slug)
	}
	return fmt.Sprintf("product not found: %s", e.ID)
}

// AuthorizationError reports a caller that does not own the target product
// or has no store at all.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "not authorized: " + e.Reason
}

// UpstreamError wraps a failure of the persistence layer or image store.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
