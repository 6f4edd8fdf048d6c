// Package recovery converts panics in caller-supplied functions into errors.
// Used around injected transports so a faulty implementation cannot crash
// a sync stream.
package recovery

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError is returned when a wrapped function panics.
type PanicError struct {
	Operation string
	Value     any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Operation, e.Value)
}

// RecoverToValue wraps a function that returns a value and error.
// If the function panics, returns the zero value and a *PanicError.
//
// Example:
//
//	res, err := recovery.RecoverToValue(logger, "Sync", func() (*query.Result, error) {
//	    return fetch(ctx, req)
//	})
func RecoverToValue[T any](logger *slog.Logger, operation string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if logger != nil {
				logger.Error("Panic recovered",
					"operation", operation,
					"panic", r,
					"stack", string(debug.Stack()),
				)
			}
			var zero T
			result = zero
			err = &PanicError{Operation: operation, Value: r}
		}
	}()

	return fn()
}

// RecoverToError is RecoverToValue for functions that only return an error.
func RecoverToError(logger *slog.Logger, operation string, fn func() error) error {
	_, err := RecoverToValue(logger, operation, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
