package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed failure carrying a stable machine-readable code and the
// HTTP status it maps to.
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

// Is matches on code so sentinels compare equal to their clones.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
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

// Validation and policy kinds.
var (
	ErrInvalidInput    = New("INVALID_INPUT", http.StatusBadRequest, "invalid input")
	ErrMissingLocation = New("MISSING_LOCATION", http.StatusBadRequest, "missing location data")
	ErrOutOfSchedule   = New("OUT_OF_SCHEDULE", http.StatusUnprocessableEntity, "lesson does not take place on this date")
	ErrTooFar          = New("TOO_FAR", http.StatusUnprocessableEntity, "you are too far from the lesson location")
	ErrWrongTiming     = New("WRONG_TIMING", http.StatusUnprocessableEntity, "attendance cannot be marked at this time")
	ErrNotFound        = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden       = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrConflict        = New("CONFLICT", http.StatusConflict, "conflict")
	ErrRateLimited     = New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests")
)

// Authentication kinds.
var (
	ErrMissingCredential  = New("MISSING_CREDENTIAL", http.StatusUnauthorized, "missing token")
	ErrInvalidCredential  = New("INVALID_CREDENTIAL", http.StatusUnauthorized, "invalid token")
	ErrInsufficientRole   = New("INSUFFICIENT_ROLE", http.StatusForbidden, "insufficient role")
	ErrMalformedClaim     = New("MALFORMED_CLAIM", http.StatusUnauthorized, "invalid token payload")
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid login or password")
)

// Infrastructure kinds.
var (
	ErrPersistence = New("PERSISTENCE_ERROR", http.StatusInternalServerError, "database error")
	ErrInternal    = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss   = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

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

// Persistence wraps a storage failure, keeping the driver error for logs only.
func Persistence(err error, message string) *Error {
	if message == "" {
		message = ErrPersistence.Message
	}
	return Wrap(err, ErrPersistence.Code, ErrPersistence.Status, message)
}
