// Package mocklink is an in-process test double for a GraphQL transport.
//
// Tests register handlers against query documents. When an operation is
// dispatched, its document is reduced to a canonical key (see package
// canonical) and the matching handler produces the responses that a real
// server would have sent back, as an observable stream.
//
// # Handlers
//
// A handler returns a Result, which is one of two shapes:
//
//   - a single deferred value, built with Resolve, Reject or Later. The
//     stream emits the value then completes, or errors.
//   - a subscription handle, built with Stream. The handler drives the
//     stream through the handle's Next, Error and Complete methods and
//     decides when it ends.
//
// # Usage
//
//	link := mocklink.New()
//
//	err := link.RegisterQuery(`query GetUser($id: ID!) { user(id: $id) { id } }`,
//	    func(ctx context.Context, vars mocklink.Variables) (mocklink.Result, error) {
//	        return mocklink.Resolve(mocklink.NewResponse(map[string]any{
//	            "user": map[string]any{"id": vars["id"]},
//	        })), nil
//	    })
//
//	stream, err := link.Request(ctx, `query GetUser($id: ID!) { user(id: $id) { id __typename } }`,
//	    mocklink.Variables{"id": "1"})
//	stream.Subscribe(observable.Observer[*mocklink.Response]{
//	    Next: func(resp *mocklink.Response) { ... },
//	})
//
// # Missing handlers
//
// By default dispatching an operation with no handler fails immediately
// with a *MissingHandlerError. WithMissingHandlerPolicy switches to
// delivering that error through the stream instead, with or without a
// warning.
//
// # Cancellation
//
// Unsubscribing from a stream stops delivery but does not cancel the
// handler. Handlers that hold live resources must release them themselves.
package mocklink
