package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getmockd/mocklink/pkg/mocklink"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// MockBuilder builds a handler using a fluent API.
type MockBuilder struct {
	link    *MockLink
	query   string
	resp    mocklink.Response
	delay   time.Duration
	reject  error
	replace bool
	times   int   // 0 means unlimited
	err     error // First error encountered during building
}

// setError records the first error encountered during building.
// Subsequent errors are ignored (first error wins pattern).
func (b *MockBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *MockBuilder) Err() error {
	return b.err
}

// WithData sets the response data.
func (b *MockBuilder) WithData(data any) *MockBuilder {
	b.resp.Data = data
	return b
}

// WithJSON sets the response data from a JSON document.
func (b *MockBuilder) WithJSON(data string) *MockBuilder {
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to parse data: %w", err))
		return b
	}
	b.resp.Data = v
	return b
}

// WithError adds a GraphQL error to the response. path elements may be
// field names or list indexes.
func (b *MockBuilder) WithError(message string, path ...any) *MockBuilder {
	gqlErr := &gqlerror.Error{Message: message}
	for _, p := range path {
		switch v := p.(type) {
		case string:
			gqlErr.Path = append(gqlErr.Path, ast.PathName(v))
		case int:
			gqlErr.Path = append(gqlErr.Path, ast.PathIndex(v))
		default:
			b.setError(fmt.Errorf("WithError: invalid path element %v (%T)", p, p))
		}
	}
	b.resp.Errors = append(b.resp.Errors, gqlErr)
	return b
}

// WithExtensions sets the response extensions.
func (b *MockBuilder) WithExtensions(extensions map[string]any) *MockBuilder {
	b.resp.Extensions = extensions
	return b
}

// WithDelay postpones the response.
// Accepts duration strings like "100ms", "1s", "500ms".
func (b *MockBuilder) WithDelay(delay string) *MockBuilder {
	d, err := time.ParseDuration(delay)
	if err != nil {
		b.setError(fmt.Errorf("WithDelay: invalid duration %q: %w", delay, err))
		return b
	}
	b.delay = d
	return b
}

// Reject makes the request fail with err instead of responding.
func (b *MockBuilder) Reject(err error) *MockBuilder {
	if err == nil {
		err = mocklink.ErrRejected
	}
	b.reject = err
	return b
}

// RejectWith is Reject with an error built from message.
func (b *MockBuilder) RejectWith(message string) *MockBuilder {
	return b.Reject(errors.New(message))
}

// Replace lets the handler supersede one already registered for the query.
func (b *MockBuilder) Replace() *MockBuilder {
	b.replace = true
	return b
}

// Times sets how many requests the handler answers. Later requests fail
// with a handler error. Use 0 for unlimited (default).
func (b *MockBuilder) Times(n int) *MockBuilder {
	b.times = n
	return b
}

// Once is a convenience method for Times(1).
func (b *MockBuilder) Once() *MockBuilder {
	return b.Times(1)
}

// Build registers the handler and returns the MockLink for chaining.
func (b *MockBuilder) Build() *MockLink {
	t := b.link.t
	t.Helper()

	if b.err != nil {
		t.Fatalf("invalid mock for %s: %v", summarize(b.query), b.err)
	}

	var opts []mocklink.RegisterOption
	if b.replace {
		opts = append(opts, mocklink.Replace())
	}
	if err := b.link.link.RegisterQuery(b.query, b.handler(), opts...); err != nil {
		t.Fatalf("failed to register mock: %v", err)
	}
	return b.link
}

// Reply is an alias for Build.
// More readable in fluent chains:
//
//	mock.Mock(`{ ping }`).WithData(map[string]any{"ping": true}).Reply()
func (b *MockBuilder) Reply() {
	b.link.t.Helper()
	b.Build()
}

func (b *MockBuilder) handler() mocklink.Handler {
	resp := b.resp
	delay, reject, limit := b.delay, b.reject, b.times
	var calls atomic.Int64

	return func(context.Context, mocklink.Variables) (mocklink.Result, error) {
		if n := calls.Add(1); limit > 0 && n > int64(limit) {
			return mocklink.Result{}, fmt.Errorf("mock already answered its %d allowed requests", limit)
		}

		if reject != nil {
			d := mocklink.NewDeferred()
			if delay <= 0 {
				d.Reject(reject)
			} else {
				time.AfterFunc(delay, func() { d.Reject(reject) })
			}
			return mocklink.Later(d), nil
		}

		r := resp
		return mocklink.Later(mocklink.ResolveAfter(delay, &r)), nil
	}
}
