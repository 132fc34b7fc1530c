package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"syscall"
	"time"
)

// Error types for the lgrep system
type ErrorType string

const (
	// Invocation errors
	ErrorTypeArgument ErrorType = "argument"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeNotDirectory ErrorType = "not_directory"
	ErrorTypeIsDirectory  ErrorType = "is_directory"
	ErrorTypeIO           ErrorType = "io"

	// Content errors
	ErrorTypeDecode ErrorType = "decode"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// ArgumentError reports a bad command line: too few arguments or an unknown flag.
type ArgumentError struct {
	Type      ErrorType
	Reason    string
	Timestamp time.Time
}

// NewArgumentError creates a new argument error
func NewArgumentError(reason string) *ArgumentError {
	return &ArgumentError{
		Type:      ErrorTypeArgument,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// Error implements the error interface
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments: %s", e.Reason)
}

// FileError represents a file or directory that could not be opened or read
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying the underlying cause
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       classifyFileError(err),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithType overrides the classified error type
func (e *FileError) WithType(t ErrorType) *FileError {
	e.Type = t
	return e
}

func classifyFileError(err error) ErrorType {
	switch {
	case err == nil:
		return ErrorTypeIO
	case stderrors.Is(err, fs.ErrNotExist):
		return ErrorTypeFileNotFound
	case stderrors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case stderrors.Is(err, syscall.ENOTDIR):
		return ErrorTypeNotDirectory
	case stderrors.Is(err, syscall.EISDIR):
		return ErrorTypeIsDirectory
	default:
		return ErrorTypeIO
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// DecodeError marks a line whose bytes are not valid text in the source encoding.
// It is recovered locally: the line is dropped and numbering continues.
type DecodeError struct {
	Type     ErrorType
	Line     int
	Encoding string
	Offset   int // byte offset of the first invalid sequence within the line
}

// NewDecodeError creates a new decode error
func NewDecodeError(line int, encoding string, offset int) *DecodeError {
	return &DecodeError{
		Type:     ErrorTypeDecode,
		Line:     line,
		Encoding: encoding,
		Offset:   offset,
	}
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d is not valid %s (byte %d)", e.Line, e.Encoding, e.Offset)
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Suggestion string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithSuggestion attaches a "did you mean" hint
func (e *ConfigError) WithSuggestion(s string) *ConfigError {
	e.Suggestion = s
	return e
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error for field %s (value %q): %v", e.Field, e.Value, e.Underlying)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// ErrOrNil returns nil when no errors were collected
func (e *MultiError) ErrOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// KindOf returns the ErrorType carried by err or anything it wraps.
// Unclassified errors report ErrorTypeIO.
func KindOf(err error) ErrorType {
	var (
		argErr    *ArgumentError
		fileErr   *FileError
		decodeErr *DecodeError
		configErr *ConfigError
	)
	switch {
	case err == nil:
		return ""
	case stderrors.As(err, &argErr):
		return argErr.Type
	case stderrors.As(err, &fileErr):
		return fileErr.Type
	case stderrors.As(err, &decodeErr):
		return decodeErr.Type
	case stderrors.As(err, &configErr):
		return ErrorTypeConfig
	default:
		return ErrorTypeIO
	}
}
