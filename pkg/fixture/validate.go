package fixture

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/getmockd/mocklink/pkg/document"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaResource = "fixture.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaResource, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}
	return compiler.Compile(schemaResource)
})

// validateDocument checks a decoded YAML document against the fixture schema.
func validateDocument(source string, doc any) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling fixture schema: %w", err)
	}

	// Convert to JSON and back to ensure consistent types
	data, err := json.Marshal(doc)
	if err != nil {
		return &ValidationError{File: source, Index: -1, Message: err.Error()}
	}
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &ValidationError{File: source, Index: -1, Message: err.Error()}
	}

	err = schema.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return &ValidationError{File: source, Index: -1, Message: err.Error()}
	}
	leaf := mostSpecificCause(verr)
	index, field := locate(leaf.InstanceLocation)
	return &ValidationError{File: source, Index: index, Field: field, Message: leaf.Message}
}

// mostSpecificCause returns the leaf error pointing deepest into the
// instance, breaking ties by depth in the error tree.
func mostSpecificCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	best, bestSegments, bestDepth := err, -1, -1
	var walk func(e *jsonschema.ValidationError, d int)
	walk = func(e *jsonschema.ValidationError, d int) {
		if len(e.Causes) == 0 {
			segments := strings.Count(e.InstanceLocation, "/")
			if segments > bestSegments || (segments == bestSegments && d > bestDepth) {
				best, bestSegments, bestDepth = e, segments, d
			}
			return
		}
		for _, c := range e.Causes {
			walk(c, d+1)
		}
	}
	walk(err, 0)
	return best
}

// locate splits a JSON Pointer into the fixture index and the remaining
// dotted field path. "/fixtures/2/cases/0/when" gives 2, "cases.0.when".
func locate(pointer string) (int, string) {
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	if len(parts) > 0 && parts[0] == "fixtures" {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return -1, strings.TrimPrefix(strings.ReplaceAll(pointer, "/", "."), ".")
	}
	index, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1, strings.Join(parts, ".")
	}
	return index, strings.Join(parts[1:], ".")
}

// validateFixtures checks what the schema cannot: queries must parse and
// conditions must compile.
func validateFixtures(source string, fixtures []Fixture) error {
	for i := range fixtures {
		f := &fixtures[i]
		if _, err := document.Parse(f.Query); err != nil {
			return &ValidationError{File: source, Index: i, Field: "query", Message: err.Error()}
		}
		for j, c := range f.Cases {
			if c.When == "" {
				continue
			}
			if _, err := compileCondition(c.When); err != nil {
				return &ValidationError{
					File:    source,
					Index:   i,
					Field:   fmt.Sprintf("cases.%d.when", j),
					Message: err.Error(),
				}
			}
		}
	}
	return nil
}
