package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline failure taxonomy. Acquisition errors and ErrOCRFailed are terminal
// for the request; extraction errors are absorbed by the fallback path;
// ErrStorageWrite aborts after extraction succeeded.
var (
	ErrUnsupportedFormat  = errors.New("unsupported image format")
	ErrSizeExceeded       = errors.New("image size exceeded")
	ErrCorruptImage       = errors.New("corrupt image payload")
	ErrOCRFailed          = errors.New("ocr failed")
	ErrInvalidCandidate   = errors.New("invalid extraction candidate")
	ErrBackendUnavailable = errors.New("extraction backend unavailable")
	ErrStorageWrite       = errors.New("storage write failed")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
