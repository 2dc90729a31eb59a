// Package apperror defines the closed set of domain failures the social graph
// can report. Every failure is an *AppError wrapping one sentinel below, so
// callers branch with errors.Is and never compare strings.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrUsersNotFound    = errors.New("users not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrSelfConnection   = errors.New("self connection")
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrValidation       = errors.New("validation error")
)

// Machine-readable codes, as sent to API clients in the "error" field.
const (
	CodeUserExists       = "user_exists"
	CodeUsersNotFound    = "users_not_found"
	CodeUserNotFound     = "user_not_found"
	CodeSelfConnection   = "self_connection_invalid"
	CodeConnectionExists = "connection_exists"
	CodeNotConnected     = "not_connected"
	CodeValidation       = "validation_error"
)

type AppError struct {
	Err     error  // sentinel kind
	Code    string // machine-readable code
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// AlreadyExists reports a registration for an external id that is taken.
func AlreadyExists(userStrID string) *AppError {
	return &AppError{
		Err:     ErrAlreadyExists,
		Code:    CodeUserExists,
		Message: "User with this ID already exists.",
		Field:   userStrID,
	}
}

// UsersNotFound reports that one or both users of a pair are unknown.
func UsersNotFound() *AppError {
	return &AppError{
		Err:     ErrUsersNotFound,
		Code:    CodeUsersNotFound,
		Message: "One or both users not found.",
	}
}

// UserNotFound reports an unknown user in a single-user query.
func UserNotFound(userStrID string) *AppError {
	return &AppError{
		Err:     ErrUserNotFound,
		Code:    CodeUserNotFound,
		Message: "User not found.",
		Field:   userStrID,
	}
}

func SelfConnection() *AppError {
	return &AppError{
		Err:     ErrSelfConnection,
		Code:    CodeSelfConnection,
		Message: "Cannot connect to self.",
	}
}

func AlreadyConnected() *AppError {
	return &AppError{
		Err:     ErrAlreadyConnected,
		Code:    CodeConnectionExists,
		Message: "Connection already exists.",
	}
}

func NotConnected() *AppError {
	return &AppError{
		Err:     ErrNotConnected,
		Code:    CodeNotConnected,
		Message: "Connection does not exist.",
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    CodeValidation,
		Message: message,
		Field:   field,
	}
}

// Validationf is ValidationFailed with a formatted message.
func Validationf(field, format string, args ...any) *AppError {
	return ValidationFailed(field, fmt.Sprintf(format, args...))
}

// IsDomain reports whether err carries one of the domain kinds above, as
// opposed to an unexpected storage or programming failure.
func IsDomain(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// CodeOf returns the machine code carried by err, or "" for non-domain errors.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
