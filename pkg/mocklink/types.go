package mocklink

import (
	"context"

	"github.com/getmockd/mocklink/pkg/document"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Variables maps variable names to values.
type Variables = map[string]any

// Operation is a single request: a query document plus its variables.
type Operation struct {
	Query         *ast.QueryDocument
	OperationName string
	Variables     Variables
}

// NewOperation parses query and returns an operation carrying vars.
func NewOperation(query string, vars Variables) (Operation, error) {
	doc, err := document.Parse(query)
	if err != nil {
		return Operation{}, err
	}
	return Operation{
		Query:         doc,
		OperationName: document.OperationName(doc),
		Variables:     vars,
	}, nil
}

// Name returns the operation name, falling back to the name of the first
// operation in the document.
func (op Operation) Name() string {
	if op.OperationName != "" {
		return op.OperationName
	}
	return document.OperationName(op.Query)
}

// Type returns the operation type of the document.
func (op Operation) Type() ast.Operation {
	return document.OperationType(op.Query)
}

// Response is a server-shaped GraphQL response.
type Response struct {
	Data       any            `json:"data"`
	Errors     gqlerror.List  `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// NewResponse returns a response carrying data.
func NewResponse(data any) *Response {
	return &Response{Data: data}
}

// ErrorResponse returns a response with no data and one error per message.
func ErrorResponse(messages ...string) *Response {
	resp := &Response{}
	for _, msg := range messages {
		resp.Errors = append(resp.Errors, &gqlerror.Error{Message: msg})
	}
	return resp
}

// HasErrors reports whether the response carries GraphQL errors.
func (r *Response) HasErrors() bool {
	return r != nil && len(r.Errors) > 0
}

// Handler produces the result for a matched operation. A returned error, or
// a panic, is delivered to the subscriber as a *HandlerInvocationError.
type Handler func(ctx context.Context, vars Variables) (Result, error)
