// Package apperr defines the error classes the workflow branches on.
// NotFound and Validation surface to the user as plain failure messages,
// Store errors are recoverable (the caller may retry the same command), and
// Oracle errors degrade to empty results and never cross the store boundary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrStore      = errors.New("store failure")
	ErrOracle     = errors.New("oracle failure")
)

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with context.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Storef wraps ErrStore with context.
func Storef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStore)...)
}

// Oraclef wraps ErrOracle with context.
func Oraclef(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrOracle)...)
}

func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsStore(err error) bool      { return errors.Is(err, ErrStore) }
func IsOracle(err error) bool     { return errors.Is(err, ErrOracle) }
