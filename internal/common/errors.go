// Package common defines shared sentinel errors used across the Running
// Journey service layers. Callers should use errors.Is to match these values;
// the transport layer maps them to HTTP status codes.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Validation and precondition errors.
	ErrValidation    = errors.New("validation error")
	ErrMissingOrigin = errors.New("origin city not set")
	ErrAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
