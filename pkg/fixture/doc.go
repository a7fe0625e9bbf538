// Package fixture loads declarative mock handlers from YAML files.
//
// A fixture file holds an optional link configuration and a list of
// fixtures. Each fixture names a query and describes how to answer it: a
// fixed response, an error, conditional cases selected by an expression
// over the operation variables, or a script of subscription events.
//
//	config:
//	  missingHandlerPolicy: warn-and-return-error
//	fixtures:
//	  - name: get-user
//	    query: "query GetUser($id: ID!) { user(id: $id) { id name } }"
//	    cases:
//	      - when: 'vars.id == "1"'
//	        response: { data: { user: { id: "{{vars.id}}", name: Ada } } }
//	      - error: user not found
//
// A file may also be a bare list of fixtures. Files are checked against an
// embedded JSON Schema before they are decoded, and ${VAR} or
// ${VAR:-default} references are expanded from the environment.
//
// Response values pass through package template, so {{vars.id}},
// {{uuid}} and friends are substituted on every request. Conditions are
// expr-lang expressions evaluated with vars and operationName in scope.
package fixture
