package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Extraction errors
	ErrFetchFailed         ErrorCode = "FETCH_FAILED"
	ErrExtractionFailed    ErrorCode = "EXTRACTION_FAILED"
	ErrInsufficientContent ErrorCode = "INSUFFICIENT_CONTENT"

	// Generation and persistence errors
	ErrGenerationFailed  ErrorCode = "GENERATION_FAILED"
	ErrQuizNotFound      ErrorCode = "QUIZ_NOT_FOUND"
	ErrPersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper constructors for the error taxonomy

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewFetchError(url string, err error) *DomainError {
	return NewError(ErrFetchFailed, fmt.Sprintf("Failed to fetch article: %s", url), err)
}

func NewExtractionError(message string) *DomainError {
	return NewError(ErrExtractionFailed, message, nil)
}

func NewInsufficientContentError(length int) *DomainError {
	return NewError(ErrInsufficientContent,
		fmt.Sprintf("Article content is too short or could not be extracted properly (%d chars)", length), nil)
}

// NewGenerationError carries the last parse/validation error together with a
// snippet of the offending model output for diagnostics.
func NewGenerationError(err error, snippet string) *DomainError {
	msg := "Failed to generate quiz"
	if snippet != "" {
		msg = fmt.Sprintf("Failed to generate quiz (last response: %s)", snippet)
	}
	return NewError(ErrGenerationFailed, msg, err)
}

func NewQuizNotFoundError(id int64) *DomainError {
	return NewError(ErrQuizNotFound, fmt.Sprintf("Quiz not found with ID: %d", id), nil)
}

func NewPersistenceError(message string, err error) *DomainError {
	return NewError(ErrPersistenceFailed, message, err)
}
