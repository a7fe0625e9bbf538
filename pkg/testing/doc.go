// Package testing provides a testing SDK for using mocklink in Go tests.
//
// This package wraps a mocklink.Link with a fluent builder API for
// registering handlers, and with assertions over what the link answered,
// which operations it saw and what it warned about.
//
// # Basic Usage
//
// Create a mock link, register handlers and hand the link to the code under
// test:
//
//	func TestProfile(t *testing.T) {
//	    mock := mocklinktesting.New(t)
//
//	    mock.Mock(`query GetUser($id: ID!) { user(id: $id) { id name } }`).
//	        WithData(map[string]any{"user": map[string]any{"id": "1", "name": "Ada"}}).
//	        Reply()
//
//	    profile := NewProfile(mock.Link())
//	    // ...
//
//	    mock.AssertCalled(t, `query GetUser($id: ID!) { user(id: $id) { id name } }`)
//	}
//
// Queries are matched by canonical key, so assertions and registrations
// ignore whitespace, comments, __typename and @client fields.
//
// # Fluent Builder API
//
// The MockBuilder configures what a handler answers:
//
//	mock.Mock(`query Feed { feed { id } }`).
//	    WithJSON(`{"feed": []}`).
//	    WithError("feed is partially unavailable", "feed").
//	    WithDelay("50ms").
//	    Reply()
//
//	// Fail the request instead of answering
//	mock.Mock(`mutation Like { like }`).
//	    RejectWith("network down").
//	    Reply()
//
//	// Answer a single request only
//	mock.Mock(`query Once { token }`).
//	    WithData(map[string]any{"token": "abc"}).
//	    Once().
//	    Reply()
//
// # Subscriptions
//
// Stream registers a subscription and returns the handle that drives it:
//
//	messages := mock.Stream(`subscription OnMessage { messageAdded { body } }`)
//	rec := mock.Request(`subscription OnMessage { messageAdded { body } }`, nil)
//
//	messages.Next(mocklink.NewResponse(map[string]any{"messageAdded": map[string]any{"body": "hi"}}))
//	messages.Complete()
//
//	rec.AssertCompleted(t)
//	rec.AssertJSONPath(t, "$.data.messageAdded.body", "hi")
//
// # Recordings
//
// Request dispatches an operation and returns a Recording of everything the
// subscription emitted. Recording assertions wait up to DefaultWaitTimeout
// for the subscription to terminate:
//
//	rec := mock.Request(`query GetUser($id: ID!) { user(id: $id) { id name } }`,
//	    mocklink.Variables{"id": "1"})
//	rec.AssertCompleted(t)
//	rec.AssertValues(t, 1)
//	rec.AssertData(t, `{"user": {"id": "1", "name": "Ada"}}`)
//
// Use Collect to record an observable obtained some other way.
//
// # Logs
//
// Link logs are mirrored to the test log and captured for assertions:
//
//	mock.Request(`query Unknown { nothing }`, nil)
//	mock.AssertWarned(t, "request handler not defined")
package testing
