// Package errors defines the coded errors squaremap reports at its edges.
//
// The layout core never fails on bad items or degenerate canvases; those
// degrade to empty layouts. Codes are raised where outside input arrives:
// holdings and layout files, configuration, icon downloads, storage and
// HTTP handlers. A code decides the HTTP status in the API server and the
// exit status of the CLI.
//
//	err := errors.New(errors.ErrCodeInvalidCanvas, "width must be positive, got %v", w)
//	if errors.Is(err, errors.ErrCodeInvalidCanvas) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeNetwork, cause, "fetch icon %s", ref)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Bad input from a file, flag or request.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidItem   Code = "INVALID_ITEM"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidCanvas Code = "INVALID_CANVAS"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"


	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"


	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"


	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error carries a code, a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
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

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
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

// UserMessage returns the message of the outermost *Error without its
// code, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps the code carried by err to an HTTP status.
// Errors without a code map to 500.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidItem, ErrCodeInvalidFormat,
		ErrCodeInvalidCanvas, ErrCodeInvalidColor, ErrCodeInvalidPath, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Exit statuses returned by the CLI.
const (
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitNetwork  = 4
)

// ExitCode maps the code carried by err to a process exit status. Input
// problems the user can fix exit with ExitUsage.
func ExitCode(err error) int {
	switch HTTPStatus(err) {
	case http.StatusBadRequest:
		return ExitUsage
	case http.StatusNotFound:
		return ExitNotFound
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return ExitNetwork
	default:
		return ExitFailure
	}
}
