package fixture

import (
	"fmt"
	"time"

	"github.com/getmockd/mocklink/pkg/document"
	"github.com/getmockd/mocklink/pkg/logging"
	"github.com/getmockd/mocklink/pkg/mocklink"
	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a fixture file.
type File struct {
	Config   *mocklink.Config  `yaml:"config,omitempty" json:"config,omitempty"`
	Log      *logging.Settings `yaml:"log,omitempty" json:"log,omitempty"`
	Fixtures []Fixture         `yaml:"fixtures" json:"fixtures"`
}

// UnmarshalYAML accepts either a mapping with a fixtures key or a bare list
// of fixtures.
func (f *File) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		f.Config = nil
		f.Log = nil
		return node.Decode(&f.Fixtures)
	}

	type raw File
	var r raw
	if err := node.Decode(&r); err != nil {
		return err
	}
	*f = File(r)
	return nil
}

// Fixture describes how to answer one query.
type Fixture struct {
	// Name identifies the fixture in errors and logs. Defaults to the
	// operation name.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Query is the GraphQL document the fixture answers.
	Query string `yaml:"query" json:"query"`

	// Replace lets the fixture supersede an existing handler for the query.
	Replace bool `yaml:"replace,omitempty" json:"replace,omitempty"`

	// Delay postpones the response.
	Delay time.Duration `yaml:"delay,omitempty" json:"delay,omitempty"`

	// Seed makes random template values reproducible.
	Seed *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`

	// Cases are tried in order; the first whose condition holds answers.
	Cases []Case `yaml:"cases,omitempty" json:"cases,omitempty"`

	// Response is the default answer when no case matches.
	Response *Response `yaml:"response,omitempty" json:"response,omitempty"`

	// Error rejects the request with this message when no case matches.
	Error string `yaml:"error,omitempty" json:"error,omitempty"`

	// Events turn the fixture into a subscription that emits each event in
	// order once subscribed.
	Events []Event `yaml:"events,omitempty" json:"events,omitempty"`

	// Complete ends the subscription after the last event.
	Complete bool `yaml:"complete,omitempty" json:"complete,omitempty"`

	// Source is the file the fixture was loaded from.
	Source string `yaml:"-" json:"-"`
}

// IsStream reports whether the fixture answers with a subscription.
func (f *Fixture) IsStream() bool {
	return len(f.Events) > 0
}

// DisplayName returns Name, falling back to the query's operation name and
// then to the fixture's position in its file.
func (f *Fixture) DisplayName(index int) string {
	if f.Name != "" {
		return f.Name
	}
	if doc, err := document.Parse(f.Query); err == nil {
		if name := document.OperationName(doc); name != "" {
			return name
		}
	}
	return fmt.Sprintf("fixture[%d]", index)
}

// Case is a conditional answer.
type Case struct {
	// When is an expression over vars and operationName. An empty
	// condition always matches.
	When     string        `yaml:"when,omitempty" json:"when,omitempty"`
	Delay    time.Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
	Response *Response     `yaml:"response,omitempty" json:"response,omitempty"`
	Error    string        `yaml:"error,omitempty" json:"error,omitempty"`
}

// Response is a templated GraphQL response.
type Response struct {
	Data       any            `yaml:"data,omitempty" json:"data,omitempty"`
	Errors     []Error        `yaml:"errors,omitempty" json:"errors,omitempty"`
	Extensions map[string]any `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// Error is a templated GraphQL error entry.
type Error struct {
	Message    string         `yaml:"message" json:"message"`
	Path       []any          `yaml:"path,omitempty" json:"path,omitempty"`
	Extensions map[string]any `yaml:"extensions,omitempty" json:"extensions,omitempty"`
}

// Event is one step of a subscription script. An event with Error ends
// the subscription with that error.
type Event struct {
	Delay  time.Duration `yaml:"delay,omitempty" json:"delay,omitempty"`
	Data   any           `yaml:"data,omitempty" json:"data,omitempty"`
	Errors []Error       `yaml:"errors,omitempty" json:"errors,omitempty"`
	Error  string        `yaml:"error,omitempty" json:"error,omitempty"`
}
