package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents a typed client error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code, so clones and wraps of a predefined error
// still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUnauthenticated    = New("UNAUTHENTICATED", http.StatusUnauthorized, "not signed in")
	ErrRefreshFailed      = New("REFRESH_FAILED", http.StatusUnauthorized, "session expired, please sign in again")
	ErrNoRefreshToken     = New("NO_REFRESH_TOKEN", http.StatusUnauthorized, "no refresh token available")
	ErrNetwork            = New("NETWORK_ERROR", http.StatusBadGateway, "unable to reach the tracker API, check if the server is running")
	ErrMalformedResponse  = New("MALFORMED_RESPONSE", http.StatusBadGateway, "unexpected response from the tracker API")
	ErrAPI                = New("API_ERROR", http.StatusBadGateway, "tracker API request failed")
	ErrAccessDenied       = New("ACCESS_DENIED", http.StatusForbidden, "access denied for this account")
	ErrTermsRequired      = New("TERMS_REQUIRED", http.StatusPreconditionRequired, "please accept the terms and conditions first")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrSessionStore       = New("SESSION_STORE_ERROR", http.StatusServiceUnavailable, "session store unavailable")
	ErrExportsUnavailable = New("EXPORTS_DISABLED", http.StatusNotFound, "exports are disabled")
)

// APIError describes a non-2xx upstream response. The detail reported by the API is
// used as the message when present; otherwise a status-coded generic message.
func APIError(status int, detail string) *Error {
	message := strings.TrimSpace(detail)
	if message == "" {
		message = genericMessage(status)
	}
	return &Error{Code: ErrAPI.Code, Status: status, Message: message}
}

// Network wraps a transport failure.
func Network(err error) *Error {
	return Wrap(err, ErrNetwork.Code, ErrNetwork.Status, ErrNetwork.Message)
}

// Malformed wraps a 2xx response the client could not use.
func Malformed(err error, message string) *Error {
	if message == "" {
		message = ErrMalformedResponse.Message
	}
	return Wrap(err, ErrMalformedResponse.Code, ErrMalformedResponse.Status, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsSessionTerminal reports whether err ended the browser session.
func IsSessionTerminal(err error) bool {
	return errors.Is(err, ErrUnauthenticated) ||
		errors.Is(err, ErrRefreshFailed) ||
		errors.Is(err, ErrNoRefreshToken)
}

// StatusOf returns the upstream status of an API error, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Code == ErrAPI.Code {
		return e.Status
	}
	return 0
}

func genericMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad request, please check your input"
	case http.StatusUnauthorized:
		return "authentication failed"
	case http.StatusForbidden:
		return "you do not have permission to perform this action"
	case http.StatusNotFound:
		return "server endpoint not found, check if the backend is running"
	case http.StatusConflict:
		return "the resource already exists"
	case http.StatusInternalServerError:
		return "internal server error, please try again later"
	default:
		return fmt.Sprintf("request failed with status %d", status)
	}
}
