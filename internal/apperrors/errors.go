package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource changed state underneath the caller.
var ErrConflict = errors.New("resource state conflict")

// Ledger specific errors.
var (
	ErrInvalidConsumption = errors.New("meter reading is out of order with the readings around it")
	ErrDuplicateAccrual   = errors.New("accrual already exists for this account and period")
	ErrMissingTariff      = errors.New("no active tariff table")
	ErrMissingReading     = errors.New("no meter reading for the billing period")
	ErrAmbiguousMatch     = errors.New("transaction matches more than one account")
	ErrNoMatch            = errors.New("transaction matches no account")
	ErrDuplicateClosing   = errors.New("check closing already exists for this controller and date")
	ErrInvalidTransition  = errors.New("invalid debt case status transition")
	ErrDuplicatePenalty   = errors.New("penalty already applied for this account and day")
	ErrPostingWithdrawn   = errors.New("posting no longer applies to the locked account")
)

// AppError carries an HTTP-ish status code alongside the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ImportError reports the first row of a tabular import that violated the schema.
// It unwraps to ErrValidation.
type ImportError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("line %d: column %q has invalid value %q: %s", e.Line, e.Column, e.Value, e.Reason)
}

func (e *ImportError) Unwrap() error {
	return ErrValidation
}
