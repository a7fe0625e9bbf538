package canonical

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/getmockd/mocklink/pkg/document"
	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_IgnoresArtifacts(t *testing.T) {
	base := `query GetUser($id: ID!) { user(id: $id) { id name } }`

	variants := map[string]string{
		"client field":  `query GetUser($id: ID!) { user(id: $id) { id name isSelected @client } }`,
		"typename":      `query GetUser($id: ID!) { user(id: $id) { __typename id name } }`,
		"both":          `query GetUser($id: ID!) { __typename user(id: $id) { __typename id name local @client { x } } }`,
		"whitespace":    "query GetUser(\n  $id: ID!\n) {\n  user(id: $id) {\n    id\n    name\n  }\n}",
		"comments":      "# a comment\nquery GetUser($id: ID!) { user(id: $id) { id # inline\n name } }",
		"client vars":   `query GetUser($id: ID!, $flag: Boolean) { user(id: $id) { id name } prefs(flag: $flag) @client { dark } }`,
		"client spread": `query GetUser($id: ID!) { user(id: $id) { id name ...Local } } fragment Local on User { picked @client }`,
	}

	want, err := FromQuery(base)
	require.NoError(t, err)

	for name, query := range variants {
		t.Run(name, func(t *testing.T) {
			got, err := FromQuery(query)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("key mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCanonicalize_ConnectionDirective(t *testing.T) {
	a, err := FromQuery(`query Feed { feed(first: 10) @connection(key: "feed", filter: ["type"]) { id } }`)
	require.NoError(t, err)
	b, err := FromQuery(`query Feed { feed(first: 10) { id } }`)
	require.NoError(t, err)

	assert.Equal(t, b, a)
	assert.NotContains(t, a.String(), "connection")
}

func TestCanonicalize_SignificantDifferences(t *testing.T) {
	base, err := FromQuery(`query GetUser { user(id: 1) { id name } }`)
	require.NoError(t, err)

	different := []string{
		`query GetUser { user(id: 2) { id name } }`,
		`query GetUser { user(id: 1) { id } }`,
		`query GetUser { user(id: 1) { name id } }`,
		`query GetUser { user(id: 1) @include(if: true) { id name } }`,
		`query OtherName { user(id: 1) { id name } }`,
		`mutation GetUser { user(id: 1) { id name } }`,
	}

	for _, query := range different {
		t.Run(query, func(t *testing.T) {
			got, err := FromQuery(query)
			require.NoError(t, err)
			assert.NotEqual(t, base, got)
		})
	}
}

func TestCanonicalize_Deterministic(t *testing.T) {
	doc := document.MustParse(`query GetUser { user { id name posts(first: 5) { title } } }`)

	first := Canonicalize(doc)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Canonicalize(doc))
	}
}

func TestCanonicalize_Shape(t *testing.T) {
	key, err := FromQuery(`{ user { id } }`)
	require.NoError(t, err)

	var decoded map[string]*string
	require.NoError(t, json.Unmarshal([]byte(key), &decoded))
	require.Len(t, decoded, 1)
	require.NotNil(t, decoded["query"])
	assert.Equal(t, document.Print(document.MustParse(`{ user { id } }`)), *decoded["query"])
}

func TestCanonicalize_ClientOnly(t *testing.T) {
	tests := []string{
		`query Local { isLoggedIn @client }`,
		`query Local { cart @client { items { id } } }`,
		`query Local { __typename }`,
		`query Local { settings { __typename theme @client } }`,
	}

	for _, query := range tests {
		t.Run(query, func(t *testing.T) {
			key, err := FromQuery(query)
			require.NoError(t, err)
			assert.True(t, key.IsClientOnly())
			assert.Equal(t, ClientOnly, key)
		})
	}

	assert.Equal(t, ClientOnly, Canonicalize(nil))
	assert.Equal(t, `{"query":null}`, ClientOnly.String())
}

func TestFromQuery_ParseError(t *testing.T) {
	_, err := FromQuery(`query {`)
	require.Error(t, err)
}

// TestCanonicalize_Golden records which documents collapse onto the same key.
// Each line names a case and the key class it falls into; cases sharing a
// class must canonicalize identically.
func TestCanonicalize_Golden(t *testing.T) {
	cases := []struct {
		name  string
		query string
	}{
		{"get-user", `query GetUser($id: ID!) { user(id: $id) { id name } }`},
		{"get-user-client", `query GetUser($id: ID!) { user(id: $id) { id name selected @client } }`},
		{"get-user-typename", `query GetUser($id: ID!) { user(id: $id) { __typename id name } }`},
		{"get-user-reordered", `query GetUser($id: ID!) { user(id: $id) { name id } }`},
		{"feed", `query Feed { feed(first: 10) { edges { node { id } } } }`},
		{"feed-connection", `query Feed { feed(first: 10) @connection(key: "feed") { edges { node { __typename id } } } }`},
		{"feed-page-2", `query Feed { feed(first: 10, after: "abc") { edges { node { id } } } }`},
		{"local-state", `query Local { isLoggedIn @client }`},
		{"local-typename", `query Local { __typename }`},
	}

	classes := make(map[Key]string)
	var report strings.Builder
	for _, tc := range cases {
		key, err := FromQuery(tc.query)
		require.NoError(t, err, tc.name)

		class := "client-only"
		if !key.IsClientOnly() {
			c, ok := classes[key]
			if !ok {
				c = fmt.Sprintf("k%d", len(classes)+1)
				classes[key] = c
			}
			class = c
		}
		fmt.Fprintf(&report, "%s\t%s\n", tc.name, class)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "key_classes", []byte(report.String()))
}
