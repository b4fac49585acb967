package openapi

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/turbopuffer/apigen"
)

// Document is a parsed OpenAPI document. Only components.schemas is retained;
// schema nodes stay loosely decoded until the grammar asks for them.
type Document struct {
	schemas       map[string]any
	hasComponents bool
}

// Parse decodes a YAML or JSON OpenAPI document
func Parse(data []byte) (*Document, error) {
	var root map[string]any

	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: document is not a YAML or JSON mapping: %w", apigen.ErrSchemaMalformed, err)
	}

	doc := &Document{}

	components, ok := root["components"].(map[string]any)
	if !ok {
		return doc, nil
	}

	schemas, ok := components["schemas"].(map[string]any)
	if !ok {
		return doc, nil
	}

	doc.schemas = schemas
	doc.hasComponents = true

	return doc, nil
}

// SchemaNames returns every component schema name in sorted order
func (d *Document) SchemaNames() []string {
	return sortedKeys(d.schemas)
}

// HasSchema reports whether the document declares a component schema with the name
func (d *Document) HasSchema(name string) bool {
	_, ok := d.schemas[name]
	return ok
}

// decodeSchema strictly decodes one component schema
func (d *Document) decodeSchema(name string) (*Schema, error) {
	raw, ok := d.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: schema '%s'", apigen.ErrSchemaNotFound, name)
	}

	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: %s: schema node must be a mapping, got %T", apigen.ErrSchemaMalformed, name, raw)
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apigen.ErrSchemaMalformed, name, err)
	}

	var schema Schema

	if err := yaml.UnmarshalWithOptions(data, &schema, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apigen.ErrSchemaMalformed, name, err)
	}

	if err := schema.Check(name); err != nil {
		return nil, err
	}

	return &schema, nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
