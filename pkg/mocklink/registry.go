package mocklink

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/getmockd/mocklink/pkg/canonical"
	"github.com/getmockd/mocklink/pkg/document"
	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/vektah/gqlparser/v2/ast"
)

// RegisterOption configures a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	replace bool
}

// Replace lets a registration supersede an existing handler for the same key.
func Replace() RegisterOption {
	return func(o *registerOptions) {
		o.replace = true
	}
}

// Registry maps canonical keys to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[canonical.Key]Handler
	logger   *slog.Logger
}

// NewRegistry returns an empty registry. A nil logger discards warnings.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{
		handlers: make(map[canonical.Key]Handler),
		logger:   logger,
	}
}

// Register adds handler under the canonical key of doc.
//
// A document that is entirely client-only is not registered; a warning is
// logged and nil returned. Registering a second handler for a key fails with
// *DuplicateHandlerError unless Replace is given.
func (r *Registry) Register(doc *ast.QueryDocument, handler Handler, opts ...RegisterOption) error {
	if handler == nil {
		return ErrNilHandler
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	key := canonical.Canonicalize(doc)
	if key.IsClientOnly() {
		r.logger.Warn("query is client-only, handler will never be called",
			logging.AttrOperation, document.OperationName(doc))
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[key]; exists && !o.replace {
		return &DuplicateHandlerError{Key: key, Query: document.Print(doc)}
	}
	r.handlers[key] = handler
	return nil
}

// Lookup returns the handler registered for key.
func (r *Registry) Lookup(key canonical.Key) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[key]
	return h, ok
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []canonical.Key {
	r.mu.RLock()
	keys := make([]canonical.Key, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
