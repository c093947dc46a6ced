// Package common defines shared constants and sentinel errors used across
// client and server layers of boardkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Request validation errors.
	ErrorValidation = errors.New("validation error")

	// Crypto errors. A failed Open on a single sealed post must surface as
	// this value so batch retrieval can substitute a placeholder and go on.
	ErrorDecryptFailed = errors.New("decrypt failed")

	// Durable storage errors.
	ErrorStorage = errors.New("storage error")
)
