package testing

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/mocklink/pkg/canonical"
	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/getmockd/mocklink/pkg/mocklink"
	"github.com/getmockd/mocklink/pkg/observable"
	"github.com/getmockd/mocklink/pkg/requestlog"
)

// MockLink is a test helper wrapping a mocklink.Link.
// It provides a fluent API for registering handlers and assertions over the
// requests and warnings the link produced.
type MockLink struct {
	t        testing.TB
	link     *mocklink.Link
	recorder *logging.Recorder
}

// New creates a link for testing. Link logs are captured for assertions and
// mirrored to the test log. opts are applied after the test logger, so a
// WithLogger option replaces both.
func New(t testing.TB, opts ...mocklink.Option) *MockLink {
	t.Helper()

	_, recorder := logging.NewRecorder()
	out := &tbWriter{t: t}
	t.Cleanup(out.close)

	text := logging.NewHandler(logging.Config{
		Level:    logging.LevelDebug,
		Format:   logging.FormatText,
		Output:   out,
		OmitTime: true,
	})
	logger := slog.New(recorder.Tee(text))

	all := append([]mocklink.Option{mocklink.WithLogger(logger)}, opts...)
	return &MockLink{
		t:        t,
		link:     mocklink.New(all...),
		recorder: recorder,
	}
}

// Link returns the underlying link for passing to code under test.
func (m *MockLink) Link() *mocklink.Link {
	return m.link
}

// Logs returns the captured link logs.
func (m *MockLink) Logs() *logging.Recorder {
	return m.recorder
}

// Mock starts a handler for query and returns a builder for configuration.
// Use the builder's fluent methods to configure the response.
//
// Example:
//
//	mock.Mock(`query GetUser { user { id } }`).
//	    WithData(map[string]any{"user": map[string]any{"id": "1"}}).
//	    Reply()
func (m *MockLink) Mock(query string) *MockBuilder {
	m.t.Helper()
	return &MockBuilder{link: m, query: query}
}

// Stream registers query as a subscription and returns the handle that
// drives it. Every subscription to query attaches to the same handle.
func (m *MockLink) Stream(query string) *mocklink.SubscriptionHandle {
	m.t.Helper()

	h := m.link.NewSubscriptionHandle()
	err := m.link.RegisterQuery(query, func(context.Context, mocklink.Variables) (mocklink.Result, error) {
		return mocklink.Stream(h), nil
	})
	if err != nil {
		m.t.Fatalf("failed to register stream: %v", err)
	}
	return h
}

// Request dispatches query and subscribes to the result.
func (m *MockLink) Request(query string, vars mocklink.Variables) *Recording {
	m.t.Helper()

	stream, err := m.link.Request(context.Background(), query, vars)
	if err != nil {
		m.t.Fatalf("request failed: %v", err)
	}
	return Collect(stream)
}

// Reset clears the request log and captured logs. Registered handlers stay.
func (m *MockLink) Reset() {
	m.link.Requests().Clear()
	m.recorder.Reset()
}

// Requests returns all dispatched requests, newest first.
func (m *MockLink) Requests() []*requestlog.Entry {
	return m.link.Requests().List(nil)
}

// AssertCalled asserts that query was dispatched at least once.
func (m *MockLink) AssertCalled(t testing.TB, query string) {
	t.Helper()

	if count := m.countCalls(t, query); count == 0 {
		t.Errorf("expected %s to be called, but it was not called", summarize(query))
	}
}

// AssertCalledTimes asserts that query was dispatched exactly n times.
func (m *MockLink) AssertCalledTimes(t testing.TB, query string, times int) {
	t.Helper()

	if count := m.countCalls(t, query); count != times {
		t.Errorf("expected %s to be called %d times, but was called %d times",
			summarize(query), times, count)
	}
}

// AssertNotCalled asserts that query was never dispatched.
func (m *MockLink) AssertNotCalled(t testing.TB, query string) {
	t.Helper()

	if count := m.countCalls(t, query); count > 0 {
		t.Errorf("expected %s to not be called, but it was called %d times",
			summarize(query), count)
	}
}

// AwaitCalled waits up to timeout for query to be dispatched and returns
// the request log entry. A dispatch made before the call counts. It fails
// the test if the link's request log cannot notify new entries.
func (m *MockLink) AwaitCalled(t testing.TB, query string, timeout time.Duration) *requestlog.Entry {
	t.Helper()

	key, err := canonical.FromQuery(query)
	if err != nil {
		t.Fatalf("invalid query: %v", err)
		return nil
	}
	store, ok := m.link.Requests().(requestlog.SubscribableStore)
	if !ok {
		t.Fatalf("request log %T does not support subscriptions", m.link.Requests())
		return nil
	}

	// Subscribe before listing so a dispatch in between is not missed.
	entries, unsubscribe := store.Subscribe()
	defer unsubscribe()

	filter := &requestlog.Filter{Key: key.String(), Limit: 1}
	if found := store.List(filter); len(found) > 0 {
		return found[0]
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				t.Fatalf("request log closed while waiting for %s", summarize(query))
				return nil
			}
			if filter.Matches(entry) {
				return entry
			}
		case <-timer.C:
			t.Fatalf("timed out after %s waiting for %s to be called", timeout, summarize(query))
			return nil
		}
	}
}

// AssertWarned asserts that a warning containing substr was logged.
func (m *MockLink) AssertWarned(t testing.TB, substr string) {
	t.Helper()

	if m.recorder.Count(logging.LevelWarn, substr) == 0 {
		t.Errorf("expected a warning containing %q, got %q",
			substr, m.recorder.Messages(logging.LevelWarn))
	}
}

// AssertNoWarnings asserts that nothing was logged at warning level.
func (m *MockLink) AssertNoWarnings(t testing.TB) {
	t.Helper()

	if warnings := m.recorder.Messages(logging.LevelWarn); len(warnings) > 0 {
		t.Errorf("expected no warnings, got %q", warnings)
	}
}

// countCalls counts dispatches whose canonical key matches query.
func (m *MockLink) countCalls(t testing.TB, query string) int {
	t.Helper()

	key, err := canonical.FromQuery(query)
	if err != nil {
		t.Fatalf("invalid query: %v", err)
		return 0
	}
	return len(m.link.Requests().List(&requestlog.Filter{Key: key.String()}))
}

// summarize returns the operation name of query, or the query itself.
func summarize(query string) string {
	op, err := mocklink.NewOperation(query, nil)
	if err == nil && op.Name() != "" {
		return op.Name()
	}
	return strings.Join(strings.Fields(query), " ")
}

// tbWriter forwards log output to the test log until the test finishes.
type tbWriter struct {
	mu     sync.Mutex
	t      testing.TB
	closed bool
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.t.Log(strings.TrimRight(string(p), "\n"))
	}
	return len(p), nil
}

func (w *tbWriter) close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
}

// Collect subscribes to stream and records everything it emits.
func Collect(stream *observable.Observable[*mocklink.Response]) *Recording {
	r := &Recording{}
	r.sub = stream.Subscribe(observable.Observer[*mocklink.Response]{
		Next:     r.onNext,
		Error:    r.onError,
		Complete: r.onComplete,
	})
	return r
}
