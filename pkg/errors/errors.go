// Package errors defines the coded errors shared by the occupancy packages.
//
// Every failure a user can act on carries a [Code]. The CLI maps codes to
// exit statuses and the server maps them to HTTP statuses, so codes are
// part of the public surface:
//
//	INVALID_*           bad input: usage errors, exit 2, HTTP 400
//	NOT_FOUND           unknown support or missing layout, HTTP 404
//	SOURCE_UNAVAILABLE  the booking source refused or failed, HTTP 502
//	NETWORK_ERROR       transport failure, HTTP 502
//	TIMEOUT             the source did not answer in time, HTTP 504
//
// Malformed booking records are not errors at this level: the parser
// excludes them and reports them as issues while the run continues.
//
//	err := errors.New(errors.ErrCodeInvalidYear, "year %d out of range", y)
//	if errors.Is(err, errors.ErrCodeInvalidYear) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidDate   Code = "INVALID_DATE"
	ErrCodeInvalidRange  Code = "INVALID_RANGE"
	ErrCodeInvalidYear   Code = "INVALID_YEAR"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidGroup  Code = "INVALID_GROUP"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeSourceUnavailable Code = "SOURCE_UNAVAILABLE"
	ErrCodeNetwork           Code = "NETWORK_ERROR"
	ErrCodeTimeout           Code = "TIMEOUT"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// invalidCodes are the usage errors.
var invalidCodes = map[Code]bool{
	ErrCodeInvalidInput:  true,
	ErrCodeInvalidDate:   true,
	ErrCodeInvalidRange:  true,
	ErrCodeInvalidYear:   true,
	ErrCodeInvalidFormat: true,
	ErrCodeInvalidGroup:  true,
	ErrCodeInvalidStyle:  true,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error renders "CODE: message" or "CODE: message: cause".
func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether any *Error in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsInvalid reports whether err's code is one of the INVALID_* codes.
func IsInvalid(err error) bool {
	return invalidCodes[GetCode(err)]
}

// UserMessage returns err without code prefixes: the outermost *Error's
// message followed by the user message of its cause.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
