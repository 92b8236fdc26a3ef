// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrAlertNotFound    = errors.New("alert not found")
	ErrAmbiguousAlertID = errors.New("alert id prefix matches multiple alerts")
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrDuplicateOrder   = errors.New("duplicate order submitted within deduplication window")
	ErrMonitorRunning   = errors.New("monitoring already started")
	ErrMonitorStopped   = errors.New("no monitoring task to stop")
	ErrMarketClosed     = errors.New("market is closed")
	ErrTimeout          = errors.New("operation timed out")
	ErrConfigInvalid    = errors.New("invalid configuration")
)

// BrokerErrorKind classifies failures from the broker API.
type BrokerErrorKind string

const (
	BrokerNotFound  BrokerErrorKind = "not_found"
	BrokerTransient BrokerErrorKind = "transient"
	BrokerRejected  BrokerErrorKind = "rejected"
)

// BrokerError represents an error from the broker API.
type BrokerError struct {
	Kind    BrokerErrorKind
	Op      string
	Symbol  string
	Message string
	Err     error
}

func (e *BrokerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("broker error [%s] %s %s: %s: %v", e.Kind, e.Op, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("broker error [%s] %s %s: %s", e.Kind, e.Op, e.Symbol, e.Message)
}

func (e *BrokerError) Unwrap() error {
	return e.Err
}

// NewBrokerError creates a new BrokerError.
func NewBrokerError(kind BrokerErrorKind, op, symbol, message string, err error) *BrokerError {
	return &BrokerError{
		Kind:    kind,
		Op:      op,
		Symbol:  symbol,
		Message: message,
		Err:     err,
	}
}

// IsTransient reports whether err is a transient broker failure that
// should be retried at the next sweep.
func IsTransient(err error) bool {
	var be *BrokerError
	if errors.As(err, &be) {
		return be.Kind == BrokerTransient
	}
	return errors.Is(err, ErrTimeout)
}

// ValidationError represents bad input to a user-facing operation.
// Suggestion carries a corrective hint surfaced to the caller.
type ValidationError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message, suggestion string) *ValidationError {
	return &ValidationError{
		Field:      field,
		Value:      value,
		Message:    message,
		Suggestion: suggestion,
	}
}

// PersistenceError represents a failed durable save. The in-memory state
// remains authoritative; callers log and continue.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error [%s]: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
