package domain

import "net/http"

// Error is the single error vocabulary the API speaks. Every failure that
// reaches a client is one of these; anything else is normalized to a generic
// 500 by the central error handler.
type Error struct {
	Status  int      `json:"statusCode"`
	Message string   `json:"message"`
	Errs    []string `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// NewValidationError reports missing or blank request fields (400).
func NewValidationError(message string, errs ...string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message, Errs: errs}
}

// NewConflictError reports a duplicate username or email (409).
func NewConflictError(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// NewAuthenticationError reports a credential mismatch (401). The message
// must not reveal whether the identifier or the password was wrong.
func NewAuthenticationError(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NewUnauthorizedError reports a missing, invalid or expired token (401).
func NewUnauthorizedError(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NewNotFoundError reports an unknown account (404).
func NewNotFoundError(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// NewUploadError reports a media hosting failure (500).
func NewUploadError(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message}
}

// NewInternalError reports an unexpected downstream or persistence failure (500).
func NewInternalError(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message}
}
