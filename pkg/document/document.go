package document

import (
	"bytes"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Parse parses a GraphQL query document. No schema is required; the
// document is only checked for syntax.
func Parse(query string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "query", Input: query})
	if err != nil {
		return nil, fmt.Errorf("failed to parse GraphQL query: %w", err)
	}
	return doc, nil
}

// MustParse is like Parse but panics if the query cannot be parsed.
// It is intended for package-level fixtures in tests.
func MustParse(query string) *ast.QueryDocument {
	doc, err := Parse(query)
	if err != nil {
		panic(err)
	}
	return doc
}

// Print renders a document in its canonical textual form.
// Comments are not printed. A nil document prints as the empty string.
func Print(doc *ast.QueryDocument) string {
	if doc == nil {
		return ""
	}
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String()
}

// OperationName returns the name of the first operation in the document,
// or "" when the operation is anonymous or the document has none.
func OperationName(doc *ast.QueryDocument) string {
	if doc == nil || len(doc.Operations) == 0 {
		return ""
	}
	return doc.Operations[0].Name
}

// OperationType returns the type of the first operation in the document.
// Documents without operations report ast.Query.
func OperationType(doc *ast.QueryDocument) ast.Operation {
	if doc == nil || len(doc.Operations) == 0 || doc.Operations[0].Operation == "" {
		return ast.Query
	}
	return doc.Operations[0].Operation
}
