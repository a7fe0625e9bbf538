// Package canonical derives lookup keys from GraphQL query documents.
//
// A key captures what a server would see of an operation. Client-only
// fields (@client), pagination bookkeeping (@connection) and cache identity
// fields (__typename) are stripped before the document is printed, so two
// documents that differ only in those artifacts share a key.
package canonical

import (
	"encoding/json"

	"github.com/getmockd/mocklink/pkg/document"
	"github.com/vektah/gqlparser/v2/ast"
)

// Key is the canonical form of a query document.
type Key string

// ClientOnly is the key of a document with nothing left to send to a server,
// for example an operation made entirely of @client fields.
const ClientOnly Key = `{"query":null}`

// Directive and field names stripped during canonicalization.
const (
	DirectiveClient     = "client"
	DirectiveConnection = "connection"
	FieldTypename       = "__typename"
)

// String returns the key as a string.
func (k Key) String() string {
	return string(k)
}

// IsClientOnly reports whether k is the ClientOnly sentinel.
func (k Key) IsClientOnly() bool {
	return k == ClientOnly
}

// request is the encoded shape of a key.
type request struct {
	Query *string `json:"query"`
}

// Canonicalize returns the key of doc. Keys are recomputed on every call
// and are byte-identical for logically identical documents.
func Canonicalize(doc *ast.QueryDocument) Key {
	stripped := Strip(doc)
	if stripped == nil {
		return ClientOnly
	}

	text := document.Print(stripped)
	data, err := json.Marshal(request{Query: &text})
	if err != nil {
		// unreachable
		panic("canonical: encoding key: " + err.Error())
	}
	return Key(data)
}

// FromQuery parses query and returns its key.
func FromQuery(query string) (Key, error) {
	doc, err := document.Parse(query)
	if err != nil {
		return "", err
	}
	return Canonicalize(doc), nil
}

// Strip removes the artifacts that do not take part in server-side identity.
// It returns nil when nothing meaningful is left.
func Strip(doc *ast.QueryDocument) *ast.QueryDocument {
	if doc == nil {
		return nil
	}

	doc = document.RemoveDirectives(doc, document.DirectiveRule{Name: DirectiveClient, Remove: true})
	if doc == nil {
		return nil
	}
	doc = document.RemoveDirectives(doc, document.DirectiveRule{Name: DirectiveConnection})
	if doc == nil {
		return nil
	}
	return document.RemoveFields(doc, func(f *ast.Field) bool {
		return f.Name == FieldTypename
	})
}
