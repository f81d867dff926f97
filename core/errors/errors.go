// Package errors provides the typed errors shared by the edition pipeline.
//
// Package-specific sentinels (an unknown book, a missing MorphGNT file, an
// unrecognized chapter) are carried in the Err field of these types so callers
// can match either the broad category or the exact condition with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Broad error categories. Every typed error below matches one of them.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrMissingSource = errors.New("source file missing")
)

// NotFoundError reports a book, chapter, chapter directory or registry that
// does not exist.
type NotFoundError struct {
	Resource string // "book", "chapter", "chapter files", "glossary"
	ID       string
	Err      error // narrower sentinel, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Is reports ErrNotFound as a match even when a narrower sentinel is wrapped.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// SourceError reports a source file that could not be located. Hint carries
// remediation text for the operator.
type SourceError struct {
	Path string
	Hint string
	Err  error
}

func (e *SourceError) Error() string {
	msg := fmt.Sprintf("source file missing: %s", e.Path)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *SourceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrMissingSource
}

// Is reports ErrMissingSource as a match even when a narrower sentinel is wrapped.
func (e *SourceError) Is(target error) bool {
	return target == ErrMissingSource
}

// ValidationError reports a rejected configuration value or argument.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// IOError wraps a filesystem failure with the operation and path.
type IOError struct {
	Operation string // "read", "write"
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError reports an input that could not be read as its format:
// "MorphGNT", "translation", "glossary", "edition XML" or "config".
type ParseError struct {
	Format  string
	Path    string // empty for in-memory input
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NewValidation returns a ValidationError for field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewIO returns an IOError.
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// Wrapf prefixes err with a formatted message. A nil err stays nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// As is errors.As, re-exported so callers need not import both packages.
func As(err error, target any) bool {
	return errors.As(err, target)
}
