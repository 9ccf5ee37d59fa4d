package domain

import "fmt"

// Error types for consistent error handling across the service.
//
// The dialogue engine recovers every one of these locally: validation and
// invariant errors become corrective reprompts, upstream failures become a
// "try again" prompt plus an operator log. None of them may terminate a
// session or escape Process.

// ErrNotFound indicates a catalog record was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call
// (spreadsheet backend, chat platform).
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrTimeout indicates an operation exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("operation timed out: %s", e.Operation)
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates bad user input (quantity out of range, search
// term too short, malformed request body).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvariant indicates an operation attempted against the dialogue
// rules, e.g. checkout on an empty cart. Recoverable, never a crash.
type ErrInvariant struct {
	Rule string
}

func (e *ErrInvariant) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Rule)
}

// ErrUnauthorized indicates invalid credentials or token on the admin API.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
