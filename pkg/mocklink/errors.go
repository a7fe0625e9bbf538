package mocklink

import (
	"errors"
	"fmt"

	"github.com/getmockd/mocklink/pkg/canonical"
)

// Sentinel errors.
var (
	// ErrNilHandler is returned when registering a nil handler.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrRejected is the reason used when a Deferred is rejected with a nil error.
	ErrRejected = errors.New("deferred rejected")
)

// DuplicateHandlerError is returned when a handler is already registered for
// a query's canonical key and replacement was not requested.
type DuplicateHandlerError struct {
	Key   canonical.Key
	Query string
}

func (e *DuplicateHandlerError) Error() string {
	return fmt.Sprintf("request handler already defined for query: %s", e.Query)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *DuplicateHandlerError) Hint() string {
	return "Register with the Replace() option to supersede the existing handler, or use a fresh link per test."
}

// MissingHandlerError is returned when no handler matches a dispatched operation.
type MissingHandlerError struct {
	Key           canonical.Key
	Query         string
	OperationName string
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("request handler not defined for query: %s", e.Query)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *MissingHandlerError) Hint() string {
	if e.OperationName != "" {
		return fmt.Sprintf("Register a handler for operation %q. Fields marked @client or @connection and __typename selections are ignored when matching.", e.OperationName)
	}
	return "Register a handler for this query. Fields marked @client or @connection and __typename selections are ignored when matching."
}

// HandlerInvocationError wraps an error returned by a handler, or a panic
// raised while it ran.
type HandlerInvocationError struct {
	OperationName string
	Message       string
	Err           error
	Panicked      bool
}

func (e *HandlerInvocationError) Error() string {
	if e.OperationName != "" {
		return fmt.Sprintf("unexpected error whilst calling request handler for %s: %s", e.OperationName, e.Message)
	}
	return fmt.Sprintf("unexpected error whilst calling request handler: %s", e.Message)
}

func (e *HandlerInvocationError) Unwrap() error {
	return e.Err
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *HandlerInvocationError) Hint() string {
	if e.Panicked {
		return "The handler panicked. To simulate a failed request, return Reject(err) instead."
	}
	return "The handler returned an error. To simulate a failed request, return Reject(err) instead."
}

// InvalidReturnTypeError is returned when a handler produces a result that
// is neither a deferred value nor a subscription handle.
type InvalidReturnTypeError struct {
	OperationName string
	Received      string
}

func (e *InvalidReturnTypeError) Error() string {
	return fmt.Sprintf("mock response must be a deferred value or a subscription handle, got %s", e.Received)
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *InvalidReturnTypeError) Hint() string {
	return "Build handler results with Resolve, Reject, Later or Stream."
}
