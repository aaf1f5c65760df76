package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Evaluation specific errors
	CodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	CodeSentenceNotFound    ErrorCode = "SENTENCE_NOT_FOUND"
	CodeInvalidSessionState ErrorCode = "INVALID_SESSION_STATE"
	CodeProviderError       ErrorCode = "PROVIDER_ERROR"
	CodeModelUnavailable    ErrorCode = "MODEL_UNAVAILABLE"
	CodePersistenceError    ErrorCode = "PERSISTENCE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
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
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("Test session not found with ID: %s", sessionID), nil)
}

func NewSentenceNotFoundError(sentenceID string) *DomainError {
	return NewError(CodeSentenceNotFound, fmt.Sprintf("Test sentence not found with ID: %s", sentenceID), nil)
}

// NewInvalidStateError signals an operation against a session that is no
// longer in progress.
func NewInvalidStateError(sessionID string, status SessionStatus) *DomainError {
	err := NewError(CodeInvalidSessionState,
		fmt.Sprintf("Test session %s is not in progress (status: %s)", sessionID, status), nil)
	err.Context = map[string]interface{}{"session_id": sessionID, "status": string(status)}
	return err
}

// NewModelUnavailableError signals that scoring was attempted without a
// usable reference model and generation failed. This is presented to the
// learner as "try again later / contact an administrator", distinct from a
// transient provider hiccup.
func NewModelUnavailableError(sentenceID string, cause error) *DomainError {
	err := NewError(CodeModelUnavailable,
		fmt.Sprintf("Reference model is not available for sentence %s", sentenceID), cause)
	err.Context = map[string]interface{}{"sentence_id": sentenceID}
	return err
}

func NewPersistenceError(message string, cause error) *DomainError {
	return NewError(CodePersistenceError, message, cause)
}

// WrapProviderError lifts a typed provider failure to the service boundary.
// The numeric provider code is kept for diagnostics, never interpreted.
func WrapProviderError(perr *ProviderError) *DomainError {
	err := NewError(CodeProviderError, "Pronunciation scoring provider failed", perr)
	err.Context = map[string]interface{}{"stage": string(perr.Stage), "provider_code": perr.Code}
	return err
}
