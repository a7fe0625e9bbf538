package mocklink

import (
	"log/slog"
	"sync"

	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/getmockd/mocklink/pkg/observable"
	"github.com/google/uuid"
)

// SubscriptionOption configures a SubscriptionHandle.
type SubscriptionOption func(*SubscriptionHandle)

// WithoutLogging suppresses the handle's misuse warnings.
func WithoutLogging() SubscriptionOption {
	return func(h *SubscriptionHandle) {
		h.disableLogging = true
	}
}

// WithSubscriptionLogger sets the logger warnings are written to.
func WithSubscriptionLogger(logger *slog.Logger) SubscriptionOption {
	return func(h *SubscriptionHandle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// SubscriptionHandle lets a handler push any number of responses to whoever
// subscribes to the dispatched operation.
//
// The handle starts unattached. Dispatch attaches the subscriber once the
// operation is subscribed, and the handle is closed once that subscriber
// has errored, completed or gone away. Emitting while unattached or closed
// is a no-op that logs a warning.
type SubscriptionHandle struct {
	id             string
	logger         *slog.Logger
	disableLogging bool

	mu       sync.Mutex
	observer observable.Subscriber[*Response]

	ready     chan struct{}
	readyOnce sync.Once
}

// NewSubscriptionHandle returns an unattached handle.
func NewSubscriptionHandle(opts ...SubscriptionOption) *SubscriptionHandle {
	h := &SubscriptionHandle{
		id:     uuid.NewString(),
		logger: logging.Nop(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ID returns the handle's unique identifier.
func (h *SubscriptionHandle) ID() string {
	return h.id
}

// Next forwards resp to the attached subscriber.
func (h *SubscriptionHandle) Next(resp *Response) {
	if obs := h.live(); obs != nil {
		obs.Next(resp)
	}
}

// Error forwards err to the attached subscriber, closing the handle.
func (h *SubscriptionHandle) Error(err error) {
	if obs := h.live(); obs != nil {
		obs.Error(err)
	}
}

// Complete completes the attached subscriber, closing the handle.
func (h *SubscriptionHandle) Complete() {
	if obs := h.live(); obs != nil {
		obs.Complete()
	}
}

// Closed reports whether emissions will be dropped: true before any
// subscriber is attached and after the attached one has closed.
func (h *SubscriptionHandle) Closed() bool {
	obs := h.current()
	return obs == nil || obs.Closed()
}

// Attached reports whether a subscriber has been attached.
func (h *SubscriptionHandle) Attached() bool {
	return h.current() != nil
}

// Ready is closed once a subscriber is first attached. Handlers that emit
// from their own goroutine can wait on it instead of racing the subscription.
func (h *SubscriptionHandle) Ready() <-chan struct{} {
	return h.ready
}

// attach makes s the target of all further emissions.
func (h *SubscriptionHandle) attach(s observable.Subscriber[*Response]) {
	h.mu.Lock()
	previous := h.observer
	h.observer = s
	h.mu.Unlock()
	h.readyOnce.Do(func() { close(h.ready) })

	if previous != nil {
		h.warn("subscription handle observer should probably not be overridden")
	}
}

func (h *SubscriptionHandle) current() observable.Subscriber[*Response] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.observer
}

// live returns the attached subscriber if it can accept signals.
func (h *SubscriptionHandle) live() observable.Subscriber[*Response] {
	obs := h.current()
	if obs == nil {
		h.warn("subscription handle has no observer, this will have no effect")
		return nil
	}
	if obs.Closed() {
		h.warn("subscription handle is closed, this will have no effect")
		return nil
	}
	return obs
}

func (h *SubscriptionHandle) warn(msg string) {
	if h.disableLogging {
		return
	}
	h.logger.Warn(msg, logging.AttrSubscription, h.id)
}
