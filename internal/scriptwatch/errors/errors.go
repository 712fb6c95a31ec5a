// Package errors holds the sentinel errors shared by scriptwatch packages
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// Configuration errors
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrMissingRequired = errors.New("missing required field")

	// Script errors
	ErrScriptNotFound    = errors.New("script file not found")
	ErrInitialLoadFailed = errors.New("initial load failed")

	// Capture errors
	ErrCaptureActive = errors.New("output capture already active")

	// Watcher errors
	ErrWatcherNotRunning = errors.New("watcher not running")
	ErrWatcherRunning    = errors.New("watcher already running")

	// Editor errors
	ErrEditorFailed = errors.New("could not open editor")
)

// Wrap wraps an error with additional context
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is checks if the error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As checks if the error can be unwrapped to the target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
