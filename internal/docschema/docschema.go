// Package docschema compiles a JSON Schema from disk and validates
// decoded documents against it.
package docschema

import (
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema tied to the file it was loaded from.
type Schema struct {
	source   string
	compiled *jsonschema.Schema
}

// Load reads and compiles the JSON Schema at path.
func Load(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open schema: %w", err)
	}
	defer func() { _ = f.Close() }()

	doc, err := jsonschema.UnmarshalJSON(f)
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(path, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", path, err)
	}
	compiled, err := c.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", path, err)
	}
	return &Schema{source: path, compiled: compiled}, nil
}

// Source returns the path the schema was loaded from.
func (s *Schema) Source() string { return s.source }

// Validate checks a decoded JSON document against the schema. The
// returned error carries the schema source so scan warnings point at
// the right file.
func (s *Schema) Validate(doc any) error {
	if err := s.compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema %s: %w", s.source, err)
	}
	return nil
}
