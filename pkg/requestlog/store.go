package requestlog

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store defines the interface for dispatch history storage.
// Store embeds Logger, so any Store can be used where a Logger is expected.
type Store interface {
	Logger

	// Get retrieves an entry by ID.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of entries.
	Count() int
}

// Filter defines criteria for filtering entries. Zero fields match everything.
type Filter struct {
	// OperationName filters by operation name.
	OperationName string

	// OperationType filters by operation type (query, mutation, subscription).
	OperationType string

	// Key filters by canonical key.
	Key string

	// Matched filters by whether a handler was found.
	Matched *bool

	// HasError filters by error presence.
	HasError *bool

	// Limit is the maximum number of entries to return.
	Limit int

	// Offset is the number of entries to skip.
	Offset int
}

// Subscriber is a channel that receives new entries.
type Subscriber chan *Entry

// SubscribableStore extends Store with real-time notification of new entries.
type SubscribableStore interface {
	Store

	// Subscribe registers a subscriber and returns it with an unsubscribe function.
	Subscribe() (Subscriber, func())
}

// Bool returns a pointer to b, for use in Filter.
func Bool(b bool) *bool {
	return &b
}
