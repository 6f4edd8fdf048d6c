// Package errors defines the error taxonomy shared by all dms-go packages.
//
// Every error produced by this module can be classified with the standard
// library's errors.Is against one of the sentinel values below:
//
//   - ErrInvalidArgument: a builder or assembler call violated its contract
//     (malformed property path, empty value list, out-of-range limit, ...).
//     Raised before any network activity.
//   - ErrInvalidState: Build() was called on a builder that holds nothing.
//   - ErrRequestFailed: the remote service answered with a non-success status.
//     The concrete error is a *RequestError carrying status and raw body.
//   - ErrDecode: a response body was not a JSON object.
package errors

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorClass classifies errors for handling purposes.
type ErrorClass int

const (
	// ClassInvalidArgument marks contract violations detected at construction time.
	ClassInvalidArgument ErrorClass = iota
	// ClassInvalidState marks operations invoked in the wrong lifecycle state.
	ClassInvalidState
	// ClassRequestFailed marks non-success responses from the remote service.
	ClassRequestFailed
	// ClassDecode marks malformed response envelopes.
	ClassDecode
)

// String returns the string representation of ErrorClass.
func (ec ErrorClass) String() string {
	switch ec {
	case ClassInvalidArgument:
		return "invalid argument"
	case ClassInvalidState:
		return "invalid state"
	case ClassRequestFailed:
		return "request failed"
	case ClassDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Standard errors returned by dms-go packages.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrRequestFailed   = errors.New("request failed")
	ErrDecode          = errors.New("response decode failed")
)

// sentinel maps a class to its sentinel error.
func (ec ErrorClass) sentinel() error {
	switch ec {
	case ClassInvalidArgument:
		return ErrInvalidArgument
	case ClassInvalidState:
		return ErrInvalidState
	case ClassRequestFailed:
		return ErrRequestFailed
	default:
		return ErrDecode
	}
}

// ClassifiedError wraps an error with its classification and the
// component/operation that produced it.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface.
// Format: "component.operation: message: class".
func (ce *ClassifiedError) Error() string {
	prefix := ce.Component
	if ce.Operation != "" {
		if prefix != "" {
			prefix += "."
		}
		prefix += ce.Operation
	}

	msg := ce.Message
	if msg == "" && ce.Err != nil {
		msg = ce.Err.Error()
	}

	var s string
	switch {
	case prefix != "" && msg != "":
		s = prefix + ": " + msg
	case prefix != "":
		s = prefix
	default:
		s = msg
	}
	if ce.Err != nil && ce.Message != "" {
		s += ": " + ce.Err.Error()
	}
	return s
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Is reports whether the target is the sentinel for this error's class.
func (ce *ClassifiedError) Is(target error) bool {
	return target == ce.Class.sentinel()
}

// InvalidArgument returns a ClassifiedError wrapping ErrInvalidArgument.
func InvalidArgument(component, operation, format string, args ...any) error {
	return &ClassifiedError{
		Class:     ClassInvalidArgument,
		Err:       ErrInvalidArgument,
		Message:   fmt.Sprintf(format, args...),
		Component: component,
		Operation: operation,
	}
}

// InvalidState returns a ClassifiedError wrapping ErrInvalidState.
func InvalidState(component, operation, format string, args ...any) error {
	return &ClassifiedError{
		Class:     ClassInvalidState,
		Err:       ErrInvalidState,
		Message:   fmt.Sprintf(format, args...),
		Component: component,
		Operation: operation,
	}
}

// WrapInvalid classifies an existing error (e.g. a validator error) as an
// invalid argument while keeping it in the chain.
func WrapInvalid(err error, component, operation string) error {
	if err == nil {
		return nil
	}
	if IsInvalidArgument(err) {
		return err
	}
	return &ClassifiedError{
		Class:     ClassInvalidArgument,
		Err:       fmt.Errorf("%w: %w", ErrInvalidArgument, err),
		Component: component,
		Operation: operation,
	}
}

// Decode returns a ClassifiedError wrapping ErrDecode and the cause.
func Decode(component, operation string, cause error) error {
	return &ClassifiedError{
		Class:     ClassDecode,
		Err:       fmt.Errorf("%w: %w", ErrDecode, cause),
		Component: component,
		Operation: operation,
	}
}

// IsInvalidArgument reports whether err is a construction-time contract violation.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsInvalidState reports whether err is a builder-state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsRequestFailed reports whether err came from a non-success response.
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// RequestError is returned when the remote service answers with a non-success status.
// The body is kept verbatim; it is not interpreted.
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   []byte
}

func (e *RequestError) Error() string {
	s := "request failed: " + e.Method + " " + e.Path + " returned status " + strconv.Itoa(e.Status)
	if len(e.Body) > 0 {
		s += ": " + string(e.Body)
	}
	return s
}

// Unwrap lets errors.Is match ErrRequestFailed.
func (e *RequestError) Unwrap() error {
	return ErrRequestFailed
}

// Is, As and New forward to the standard library so callers importing this
// package under the name "errors" keep the usual helpers.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
