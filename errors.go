package cadence

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("cadence: not found")
	ErrAlreadyExists = errors.New("cadence: already exists")
	ErrInvalidInput  = errors.New("cadence: invalid input")

	// Rule errors
	ErrRuleNotFound     = errors.New("cadence: rule not found")
	ErrRuleInactive     = errors.New("cadence: rule is not active")
	ErrRuleExpired      = errors.New("cadence: rule end date has passed")
	ErrUnknownFrequency = errors.New("cadence: unknown frequency")

	// Template errors
	ErrTemplateNotFound = errors.New("cadence: template not found")
	ErrTemplateInUse    = errors.New("cadence: template is referenced by rules")

	// Client errors
	ErrClientNotFound = errors.New("cadence: client not found")

	// Document errors
	ErrDocumentNotFound = errors.New("cadence: document not found")

	// Profile errors
	ErrProfileNotFound = errors.New("cadence: business profile not configured")

	// Store errors
	ErrStoreNotReady     = errors.New("cadence: store not ready")
	ErrStoreClosed       = errors.New("cadence: store is closed")
	ErrTransactionFailed = errors.New("cadence: transaction failed")
	ErrMigrationFailed   = errors.New("cadence: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("cadence: validation failed for %s: %s", e.Field, e.Message)
}

// Is makes ValidationError match ErrInvalidInput in errors.Is chains.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "cadence: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("cadence: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrDocumentNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed)
}
