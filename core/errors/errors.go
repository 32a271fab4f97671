package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorCode string

const (
	ErrInvalidInput               ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData         ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound                   ErrorCode = "NOT_FOUND"
	ErrAlreadyExists              ErrorCode = "ALREADY_EXISTS"
	ErrInternalServer             ErrorCode = "INTERNAL_SERVER"
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Allocation engine
	ErrLimitExceeded      ErrorCode = "LIMIT_EXCEEDED"
	ErrStateConflict      ErrorCode = "STATE_CONFLICT"
	ErrReservationExpired ErrorCode = "RESERVATION_EXPIRED"
	ErrNoAvailability     ErrorCode = "NO_AVAILABILITY"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails attaches a payload that is returned to the caller as-is.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	if stderrors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	if ae, ok := AsAppError(err); ok {
		return ae.Code
	}
	return ""
}

func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

func NewValidationError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, nil)
}

func NewStateConflict(message string) *AppError {
	return NewAppError(ErrStateConflict, message, nil)
}

func NewNotFound(message string) *AppError {
	return NewAppError(ErrNotFound, message, nil)
}
