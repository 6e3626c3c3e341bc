package pipeline

import (
	"errors"
	"fmt"
)

// ProviderError is a recoverable failure of a single tier: transport failure, quota or auth
// failure, or a malformed response. The pipeline records it and moves to the next tier.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ValidationError reports malformed request parameters. It is returned before any tier runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// Invalid is a shorthand for building a ValidationError.
func Invalid(field, reason string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(reason, args...)}
}

// FallbackExhaustionError is returned when the terminal fallback itself failed (disk full,
// unwritable media directory). It is fatal for the one request only.
type FallbackExhaustionError struct {
	Provider string
	Err      error
}

func (e *FallbackExhaustionError) Error() string {
	return fmt.Sprintf("fallback %s failed: %v", e.Provider, e.Err)
}

func (e *FallbackExhaustionError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsFallbackExhaustion reports whether err is (or wraps) a FallbackExhaustionError.
func IsFallbackExhaustion(err error) bool {
	var fe *FallbackExhaustionError
	return errors.As(err, &fe)
}
