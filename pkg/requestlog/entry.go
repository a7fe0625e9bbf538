package requestlog

import "time"

// Operation types, as recorded on an Entry.
const (
	OperationQuery        = "query"
	OperationMutation     = "mutation"
	OperationSubscription = "subscription"
)

// Entry captures a single dispatched operation.
type Entry struct {
	// ID is a unique identifier for the entry.
	ID string `json:"id"`

	// Timestamp is when the operation was dispatched.
	Timestamp time.Time `json:"timestamp"`

	// OperationType is query, mutation or subscription.
	OperationType string `json:"operationType"`

	// OperationName is the name of the dispatched operation, if any.
	OperationName string `json:"operationName,omitempty"`

	// Key is the canonical key the operation was looked up by.
	Key string `json:"key"`

	// Query is the printed query document.
	Query string `json:"query"`

	// Variables are the operation variables.
	Variables map[string]any `json:"variables,omitempty"`

	// Matched reports whether a handler was found.
	Matched bool `json:"matched"`

	// Error contains the dispatch error message, if any.
	Error string `json:"error,omitempty"`
}
