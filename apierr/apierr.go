package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same request may succeed later.
func (e *Error) Retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusConflict, http.StatusGatewayTimeout, http.StatusBadGateway:
		return true
	default:
		return false
	}
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(code, msg string) *Error {
	return New(http.StatusNotFound, code, errors.New(msg))
}

func Invalid(format string, args ...any) *Error {
	return New(http.StatusBadRequest, "invalid_input", fmt.Errorf(format, args...))
}

func CapacityExceeded(code, msg string) *Error {
	return New(http.StatusTooManyRequests, code, errors.New(msg))
}

func Conflict(code string, err error) *Error {
	return New(http.StatusConflict, code, err)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
