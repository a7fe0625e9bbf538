// Package document wraps gqlparser query documents for the mock link.
//
// It provides parsing and printing of GraphQL query documents and a small
// set of tree transforms that strip nodes from a document without mutating
// it. The transforms are what the canonical package builds on to derive
// lookup keys.
//
// # Usage
//
//	doc, err := document.Parse(`query GetUser { user { id name @client } }`)
//	if err != nil {
//	    return err
//	}
//
//	// Drop every field marked @client.
//	stripped := document.RemoveDirectives(doc, document.DirectiveRule{
//	    Name:   "client",
//	    Remove: true,
//	})
//
//	fmt.Print(document.Print(stripped))
//
// A transform that leaves no operation behind returns nil.
package document
