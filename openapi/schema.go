package openapi

import (
	"fmt"
	"strings"

	"github.com/turbopuffer/apigen"
)

// SchemaRefPrefix is the only reference prefix the grammar understands.
const SchemaRefPrefix = "#/components/schemas/"

// Shape identifies which kind of JSON-Schema node a Schema is
type Shape int

const (
	ShapeAnyOf Shape = iota + 1
	ShapeObject
	ShapeList
	ShapeTuple
	ShapeString
	ShapeNumber
	ShapeInteger
	ShapeBoolean
	ShapeNull
	ShapeConst
	ShapeRef
	ShapeAny
)

// String returns the string representation of Shape
func (s Shape) String() string {
	switch s {
	case ShapeAnyOf:
		return "anyOf"
	case ShapeObject:
		return "object"
	case ShapeList:
		return "array"
	case ShapeTuple:
		return "tuple"
	case ShapeString:
		return "string"
	case ShapeNumber:
		return "number"
	case ShapeInteger:
		return "integer"
	case ShapeBoolean:
		return "boolean"
	case ShapeNull:
		return "null"
	case ShapeConst:
		return "const"
	case ShapeRef:
		return "$ref"
	case ShapeAny:
		return "any"
	default:
		return "unknown"
	}
}

// Schema is one JSON-Schema node of the grammar. Unknown keys are rejected on decode.
type Schema struct {
	Ref             string             `yaml:"$ref"`
	Type            string             `yaml:"type"`
	Title           string             `yaml:"title"`
	Description     string             `yaml:"description"`
	Const           any                `yaml:"const"`
	AnyOf           []*Schema          `yaml:"anyOf"`
	Properties      map[string]*Schema `yaml:"properties"`
	Required        []string           `yaml:"required"`
	Items           *Schema            `yaml:"items"`
	PrefixItems     []*Schema          `yaml:"prefixItems"`
	MinItems        *int               `yaml:"minItems"`
	AdditionalItems *bool              `yaml:"additionalItems"`

	// When used in an anyOf, the name suffix for the extracted variant.
	VariantName string `yaml:"x-turbopuffer-variant-name"`
	// When used in an anyOf, marks a variant that targets requiring named variants may omit.
	VariantDropOnConflict bool `yaml:"x-turbopuffer-variant-drop-on-conflict"`
	// Nested tuple whose items are spliced into the parent's constructor.
	Flatten bool `yaml:"x-turbopuffer-flatten"`
	// Floating point width for numbers (32 or 64).
	Width int `yaml:"x-turbopuffer-width"`
	// String slot holding an attribute name rather than a literal.
	FieldRef bool `yaml:"x-turbopuffer-field-ref"`
	// Explicitly untyped value.
	StainlessAny bool `yaml:"x-stainless-any"`
}

// Shape classifies the node, rejecting key combinations no shape accepts
func (s *Schema) Shape() (Shape, error) {
	switch {
	case s.Ref != "":
		if s.Type != "" || s.Const != nil || s.AnyOf != nil || s.hasArrayKeys() || s.Properties != nil {
			return 0, malformed("$ref must not be combined with other schema keywords")
		}

		if !strings.HasPrefix(s.Ref, SchemaRefPrefix) {
			return 0, malformed("unsupported $ref '%s': must start with %s", s.Ref, SchemaRefPrefix)
		}

		if s.RefName() == "" {
			return 0, malformed("$ref '%s' has an empty name", s.Ref)
		}

		return ShapeRef, nil
	case s.AnyOf != nil:
		if s.Type != "" || s.Const != nil || s.hasArrayKeys() || s.Properties != nil {
			return 0, malformed("anyOf must not be combined with other schema keywords")
		}

		if len(s.AnyOf) == 0 {
			return 0, malformed("anyOf must list at least one schema")
		}

		return ShapeAnyOf, nil
	case s.Const != nil:
		if _, ok := s.Const.(string); !ok {
			return 0, malformed("const must be a string, got %T", s.Const)
		}

		if (s.Type != "" && s.Type != "string") || s.hasArrayKeys() || s.Properties != nil {
			return 0, malformed("const must not be combined with other schema keywords")
		}

		return ShapeConst, nil
	}

	switch s.Type {
	case "object":
		if len(s.Properties) == 0 {
			return 0, malformed("object schema requires properties")
		}

		if s.hasArrayKeys() {
			return 0, malformed("object schema must not declare array keywords")
		}

		if len(s.Properties) != 1 || len(s.Required) != 1 || s.Properties[s.Required[0]] == nil {
			return 0, malformed("object schemas are only supported with a single required property")
		}

		return ShapeObject, nil
	case "array":
		if s.Properties != nil {
			return 0, malformed("array schema must not declare properties")
		}

		if s.PrefixItems != nil {
			// An absent additionalItems reads as false: the tuple is closed.
			if s.AdditionalItems != nil && *s.AdditionalItems {
				return 0, malformed("tuple-type arrays with additionalItems: true are unsupported")
			}

			if s.MinItems != nil && s.Items == nil {
				return 0, malformed("minItems requires items for the variadic tail")
			}

			return ShapeTuple, nil
		}

		if s.Items == nil {
			return 0, malformed("array schema requires items or prefixItems")
		}

		if s.MinItems != nil || s.AdditionalItems != nil {
			return 0, malformed("minItems and additionalItems are only supported on tuples")
		}

		return ShapeList, nil
	case "string", "number", "integer", "boolean", "null":
		if s.hasArrayKeys() || s.Properties != nil {
			return 0, malformed("%s schema must not declare array or object keywords", s.Type)
		}

		if s.Width != 0 && s.Type != "number" {
			return 0, malformed("x-turbopuffer-width is only valid on numbers")
		}

		if s.FieldRef && s.Type != "string" {
			return 0, malformed("x-turbopuffer-field-ref is only valid on strings")
		}

		return primitiveShapes[s.Type], nil
	case "":
		if s.hasArrayKeys() || s.Properties != nil {
			return 0, malformed("schema declares array or object keywords without a type")
		}

		return ShapeAny, nil
	default:
		return 0, malformed("unsupported type '%s'", s.Type)
	}
}

var primitiveShapes = map[string]Shape{
	"string":  ShapeString,
	"number":  ShapeNumber,
	"integer": ShapeInteger,
	"boolean": ShapeBoolean,
	"null":    ShapeNull,
}

func (s *Schema) hasArrayKeys() bool {
	return s.Items != nil || s.PrefixItems != nil || s.MinItems != nil || s.AdditionalItems != nil
}

// RefName returns the referenced schema name without the components prefix
func (s *Schema) RefName() string {
	return strings.TrimPrefix(s.Ref, SchemaRefPrefix)
}

// ConstValue returns the const string of a ShapeConst node
func (s *Schema) ConstValue() string {
	v, _ := s.Const.(string)
	return v
}

// Check walks the node and its children, returning the first malformed node with its path
func (s *Schema) Check(path string) error {
	shape, err := s.Shape()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for i, child := range s.children() {
		if child == nil {
			return fmt.Errorf("%s: %w", path, malformed("child schema %d is empty", i))
		}
	}

	switch shape {
	case ShapeAnyOf:
		for i, item := range s.AnyOf {
			if err := item.Check(fmt.Sprintf("%s.anyOf[%d]", path, i)); err != nil {
				return err
			}
		}
	case ShapeObject:
		for _, name := range sortedKeys(s.Properties) {
			if err := s.Properties[name].Check(path + ".properties." + name); err != nil {
				return err
			}
		}
	case ShapeTuple:
		for i, item := range s.PrefixItems {
			if err := item.Check(fmt.Sprintf("%s.prefixItems[%d]", path, i)); err != nil {
				return err
			}
		}

		if s.Items != nil {
			if err := s.Items.Check(path + ".items"); err != nil {
				return err
			}
		}
	case ShapeList:
		if err := s.Items.Check(path + ".items"); err != nil {
			return err
		}
	}

	return nil
}

func (s *Schema) children() []*Schema {
	var out []*Schema

	out = append(out, s.AnyOf...)
	out = append(out, s.PrefixItems...)

	for _, name := range sortedKeys(s.Properties) {
		out = append(out, s.Properties[name])
	}

	return out
}

// Refs returns every referenced schema name inside this node, in document order
func (s *Schema) Refs() []string {
	var refs []string

	s.walk(func(node *Schema) {
		if node.Ref != "" {
			refs = append(refs, node.RefName())
		}
	})

	return refs
}

func (s *Schema) walk(fn func(*Schema)) {
	if s == nil {
		return
	}

	fn(s)

	for _, child := range s.children() {
		child.walk(fn)
	}

	s.Items.walk(fn)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apigen.ErrSchemaMalformed, fmt.Sprintf(format, args...))
}
