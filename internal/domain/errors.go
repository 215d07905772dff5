package domain

import (
	"errors"
	"fmt"
)

// Domain errors returned by the public API. Check with errors.Is.
var (
	// ErrNoDestination is returned when no destination URL can be resolved:
	// the named destination does not exist and no default is configured.
	ErrNoDestination = errors.New("notifier: no destination resolvable")

	// ErrInvalidConfig is returned when configuration validation fails,
	// including malformed destination URLs.
	ErrInvalidConfig = errors.New("notifier: invalid configuration")

	// ErrDestroyed is returned when Notify is called after Destroy.
	ErrDestroyed = errors.New("notifier: destroyed")
)

// DeliveryError is returned when all delivery attempts to a destination have
// been exhausted. It wraps the last attempt's error.
type DeliveryError struct {
	// Destination is the resolved destination name ("" for the default).
	Destination string

	// Attempts is the number of attempts performed.
	Attempts int

	// StatusCode is the HTTP status of the last response, or 0 when the
	// last attempt failed before receiving one.
	StatusCode int

	// Err is the last captured attempt error.
	Err error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed after %d attempt(s): %v", e.Attempts, e.Err)
}

// Unwrap returns the last attempt error.
func (e *DeliveryError) Unwrap() error {
	return e.Err
}
