package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Rolodex error code.
type ErrorCode string

const (
	ErrInvalidRequest        ErrorCode = "INVALID_REQUEST"         // 400
	ErrNotFound              ErrorCode = "NOT_FOUND"               // 404
	ErrFileNotFound          ErrorCode = "FILE_NOT_FOUND"          // 404
	ErrIDAlreadyExists       ErrorCode = "ID_ALREADY_EXISTS"       // 409
	ErrContactEncodingFailed ErrorCode = "CONTACT_ENCODING_FAILED" // 422
	ErrCancelled             ErrorCode = "CANCELLED"               // 499
	ErrInternal              ErrorCode = "INTERNAL"                // 500
	ErrSinkUnavailable       ErrorCode = "SINK_UNAVAILABLE"        // 503
	ErrSerializationFailed   ErrorCode = "SERIALIZATION_FAILED"    // 500
)

// RolodexError represents a structured error with code, status, and details.
type RolodexError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. It is never shown to clients.
	Err error
}

// Error implements the error interface.
func (e *RolodexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *RolodexError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RolodexError {
	return &RolodexError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a contact cannot be found.
func NewNotFound(identifier string) *RolodexError {
	return &RolodexError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("contact not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file or image.
func NewFileNotFound(path string) *RolodexError {
	return &RolodexError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewIDAlreadyExists creates a 409 error for contact ID collisions.
func NewIDAlreadyExists(id string) *RolodexError {
	return &RolodexError{
		Code:    ErrIDAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("contact with id %q already exists", id),
		Details: map[string]any{"id": id},
	}
}

// NewContactEncodingFailed creates a 422 error for a single contact that
// could not be turned into a vCard.
func NewContactEncodingFailed(contactID string, err error) *RolodexError {
	msg := "contact could not be encoded"
	if err != nil {
		msg = err.Error()
	}
	return &RolodexError{
		Code:    ErrContactEncodingFailed,
		Status:  422,
		Message: msg,
		Details: map[string]any{"contact_id": contactID},
		Err:     err,
	}
}

// NewCancelled creates an error for an operation stopped by its context.
func NewCancelled(operation string) *RolodexError {
	return &RolodexError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", operation),
	}
}

// NewSinkUnavailable creates a 503 error for an output that could not be opened.
func NewSinkUnavailable(err error) *RolodexError {
	msg := "output could not be opened"
	if err != nil {
		msg = fmt.Sprintf("output could not be opened: %v", err)
	}
	return &RolodexError{
		Code:    ErrSinkUnavailable,
		Status:  503,
		Message: msg,
		Err:     err,
	}
}

// NewSerializationFailed creates a 500 error for a batch that could not be
// written to its output.
func NewSerializationFailed(err error) *RolodexError {
	msg := "failed to write vCard output"
	if err != nil {
		msg = fmt.Sprintf("failed to write vCard output: %v", err)
	}
	return &RolodexError{
		Code:    ErrSerializationFailed,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RolodexError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RolodexError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if an error is (or wraps) a RolodexError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *RolodexError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}
