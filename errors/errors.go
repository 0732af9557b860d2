// Package errors provides error constructors that annotate every error with
// the file and line of its origin, so failures surfaced from deep inside a
// session remain traceable without stack traces.
package errors

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// New creates an error carrying file and line number information.
func New(format string, a ...interface{}) error {
	return fmt.Errorf("[%s] %s", caller(), fmt.Sprintf(format, a...))
}

// Wrapf adds context (including file and line number) to an existing error.
// If the provided error is nil, Wrapf returns nil.
func Wrapf(err error, format string, a ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("[%s] %s: %w", caller(), fmt.Sprintf(format, a...), err)
}

// As is a passthrough to the standard library, so callers matching typed
// errors in wrapped chains do not need a second errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is a passthrough to the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func caller() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "???:0"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
