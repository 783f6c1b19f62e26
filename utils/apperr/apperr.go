// Package apperr holds the error kinds shared by the catalog model, the
// repository and the HTTP layer. Every kind maps to exactly one API status.
package apperr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ValidationError reports fields that failed construction-time checks.
type ValidationError struct {
	Fields map[string]string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// MalformedInputError reports an input record with missing keys or the wrong shape.
type MalformedInputError struct {
	Message string
	Err     error
}

func (e *MalformedInputError) Error() string { return e.Message }
func (e *MalformedInputError) Unwrap() error { return e.Err }

// Malformed wraps cause (which may be nil) into a MalformedInputError.
func Malformed(message string, cause error) *MalformedInputError {
	return &MalformedInputError{Message: message, Err: cause}
}

// DuplicateKeyError reports a unique key that already exists.
type DuplicateKeyError struct {
	Message string
}

func (e *DuplicateKeyError) Error() string { return e.Message }

// Duplicate returns a DuplicateKeyError with a formatted message.
func Duplicate(format string, args ...interface{}) *DuplicateKeyError {
	return &DuplicateKeyError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an operation target that does not exist.
type NotFoundError struct {
	Entity  string
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Specified %s id does not exist", e.Entity)
}

// NotFound returns a NotFoundError for entity identified by key.
func NotFound(entity string, key interface{}) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprint(key)}
}

// ReferentialError reports a missing parent on write or a dependent row on delete.
type ReferentialError struct {
	Message string
}

func (e *ReferentialError) Error() string { return e.Message }

// Referential returns a ReferentialError with a formatted message.
func Referential(format string, args ...interface{}) *ReferentialError {
	return &ReferentialError{Message: fmt.Sprintf(format, args...)}
}

// InvalidPageError reports a page number outside 1..MaxPage.
type InvalidPageError struct {
	Page    int
	MaxPage int
}

func (e *InvalidPageError) Error() string {
	return fmt.Sprintf("Page number must be from 1, up to a maximum of %d", e.MaxPage)
}

// StorageUnavailableError is returned once the reconnect budget is spent.
type StorageUnavailableError struct {
	Attempts int
	Err      error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable after %d reconnect attempts: %v", e.Attempts, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error { return e.Err }

// IsNotFound reports whether err (or its cause chain) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsDataError reports whether err is one of the kinds surfaced as a client data error.
func IsDataError(err error) bool {
	var (
		v   *ValidationError
		m   *MalformedInputError
		d   *DuplicateKeyError
		ref *ReferentialError
	)
	return errors.As(err, &v) || errors.As(err, &m) || errors.As(err, &d) || errors.As(err, &ref)
}
