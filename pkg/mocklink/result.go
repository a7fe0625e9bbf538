package mocklink

import (
	"context"
	"sync"
	"time"
)

// ResultKind discriminates the shapes a handler can return.
type ResultKind int

// Result kinds.
const (
	ResultInvalid ResultKind = iota
	ResultDeferred
	ResultStream
)

func (k ResultKind) String() string {
	switch k {
	case ResultDeferred:
		return "deferred"
	case ResultStream:
		return "stream"
	default:
		return "invalid"
	}
}

// Result is what a handler returns: either a deferred single value or a
// subscription handle. Build one with Resolve, Reject, Later or Stream.
type Result struct {
	kind     ResultKind
	deferred *Deferred
	stream   *SubscriptionHandle
}

// Resolve returns a result that emits resp and completes.
func Resolve(resp *Response) Result {
	d := NewDeferred()
	d.Resolve(resp)
	return Later(d)
}

// Reject returns a result that errors with err.
func Reject(err error) Result {
	d := NewDeferred()
	d.Reject(err)
	return Later(d)
}

// Later returns a result that settles when d does.
func Later(d *Deferred) Result {
	return Result{kind: ResultDeferred, deferred: d}
}

// Stream returns a result whose emissions are driven through h.
func Stream(h *SubscriptionHandle) Result {
	return Result{kind: ResultStream, stream: h}
}

// Kind returns the result's discriminant.
func (r Result) Kind() ResultKind {
	return r.kind
}

// describe names an invalid result shape.
func (r Result) describe() string {
	switch {
	case r.kind == ResultDeferred && r.deferred == nil:
		return "nil deferred"
	case r.kind == ResultStream && r.stream == nil:
		return "nil subscription handle"
	case r.kind == ResultInvalid:
		return "empty result"
	default:
		return r.kind.String()
	}
}

// Deferred is a single response that settles at most once, either resolved
// with a value or rejected with an error.
type Deferred struct {
	once  sync.Once
	done  chan struct{}
	value *Response
	err   error
}

// NewDeferred returns a pending Deferred.
func NewDeferred() *Deferred {
	return &Deferred{done: make(chan struct{})}
}

// ResolveAfter returns a Deferred that resolves with resp once delay elapses.
func ResolveAfter(delay time.Duration, resp *Response) *Deferred {
	d := NewDeferred()
	if delay <= 0 {
		d.Resolve(resp)
		return d
	}
	time.AfterFunc(delay, func() { d.Resolve(resp) })
	return d
}

// Resolve settles d with resp. A nil resp resolves to an empty response.
// It reports whether this call settled d.
func (d *Deferred) Resolve(resp *Response) bool {
	if resp == nil {
		resp = &Response{}
	}
	return d.settle(resp, nil)
}

// Reject settles d with err, or ErrRejected when err is nil.
// It reports whether this call settled d.
func (d *Deferred) Reject(err error) bool {
	if err == nil {
		err = ErrRejected
	}
	return d.settle(nil, err)
}

func (d *Deferred) settle(value *Response, err error) bool {
	settled := false
	d.once.Do(func() {
		d.value = value
		d.err = err
		settled = true
		close(d.done)
	})
	return settled
}

// Done is closed once d has settled.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Value returns the settled value. It must only be called after Done is closed.
func (d *Deferred) Value() (*Response, error) {
	return d.value, d.err
}

// Await blocks until d settles or ctx is done.
func (d *Deferred) Await(ctx context.Context) (*Response, error) {
	select {
	case <-d.done:
		return d.value, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
