package prefab

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.schema.json
var catalogSchemaJSON []byte

const catalogSchemaURL = "catalog.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func catalogSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(catalogSchemaURL, bytes.NewReader(catalogSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add catalog schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(catalogSchemaURL)
	})
	return schema, schemaErr
}

// validateDocument checks raw YAML against the embedded catalog schema. The
// document is round-tripped through JSON so the validator sees JSON types.
func validateDocument(raw []byte) error {
	s, err := catalogSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse prefab catalog: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("parse prefab catalog: empty document")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalize prefab catalog: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("normalize prefab catalog: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("validate prefab catalog: %w", err)
	}
	return nil
}
