package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for type checking
var (
	ErrNotFound       = errors.New("not found")
	ErrNotInitialized = errors.New("not initialized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrCorrupt        = errors.New("corrupt record")
)

// NotFoundError indicates a resource doesn't exist.
type NotFoundError struct {
	Resource string // "contributor", "memory", "member", "key"
	ID       string // The identifier that wasn't found
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// ValidationError indicates invalid user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotInitializedError indicates the data directory hasn't been set up.
type NotInitializedError struct {
	Path string
}

func (e *NotInitializedError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("memmap not initialized in %s (run 'memmap init')", e.Path)
	}
	return "memmap not initialized (run 'memmap init')"
}

func (e *NotInitializedError) Unwrap() error {
	return ErrNotInitialized
}

// CorruptRecordError indicates a stored record exists but can't be decoded.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() []error {
	return []error{ErrCorrupt, e.Err}
}

// Helper constructors for common cases

func ContributorNotFound(id string) error {
	return &NotFoundError{Resource: "contributor", ID: id}
}

func MemoryNotFound(id string) error {
	return &NotFoundError{Resource: "memory", ID: id}
}

func MemberNotFound(id string) error {
	return &NotFoundError{Resource: "member", ID: id}
}

func KeyNotFound(key string) error {
	return &NotFoundError{Resource: "key", ID: key}
}

func InvalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCorrupt checks if an error is a corrupt-record error.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}
