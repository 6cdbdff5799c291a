package rcm

import (
	"errors"
	"fmt"
)

var (
	// ErrDefaultConfigNotFound is returned when the requested default config does not exist or is inactive.
	ErrDefaultConfigNotFound = errors.New("default config not found")

	// ErrStorage wraps any failure of the underlying execution config source.
	ErrStorage = errors.New("storage failure")
)

// NotFoundError names the missing default config.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Default config '%s' not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrDefaultConfigNotFound
}
