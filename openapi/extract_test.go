package openapi

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/testdata"
)

func TestExtract(t *testing.T) {
	doc, err := Parse(testdata.Spec("turbopuffer.yaml"))
	require.NoError(t, err)

	grammar, err := Extract(doc, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"AggregateCount",
		"AttributeOrder",
		"AttributeValue",
		"ExprRefNew",
		"Filter",
		"FilterAnd",
		"FilterComparison",
		"FilterNot",
		"FilterOr",
		"RankBy",
		"RankByAttribute",
		"RankByText",
		"RankByVector",
		"Vector",
	}, grammar.Names())

	assert.Equal(t, "Filter", grammar.Filter)
	assert.Equal(t, "RankBy", grammar.RankBy)
}

func TestExtract_Options(t *testing.T) {
	src := []byte(`
components:
  schemas:
    Predicate:
      anyOf:
        - $ref: '#/components/schemas/PredicateEq'
    PredicateEq:
      type: array
      prefixItems:
        - const: Eq
        - $ref: '#/components/schemas/Scalar'
    Scalar:
      type: string
    Order:
      type: array
      prefixItems:
        - const: Asc
    Unrelated:
      type: object
      properties:
        anything: {}
        goes: {}
`)

	doc, err := Parse(src)
	require.NoError(t, err)

	grammar, err := Extract(doc, Options{
		TypePrefixes: []string{"Predicate"},
		Filter:       "Predicate",
		RankBy:       "Order",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Order", "Predicate", "PredicateEq", "Scalar"}, grammar.Names())
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		sentinel error
		contains string
	}{
		{
			name:     "no grammar schemas",
			src:      "components:\n  schemas:\n    Namespace:\n      type: string\n",
			sentinel: apigen.ErrSchemaNotFound,
			contains: "no schemas with prefixes",
		},
		{
			name:     "missing entry point",
			src:      "components:\n  schemas:\n    Filter:\n      type: string\n",
			sentinel: apigen.ErrSchemaNotFound,
			contains: "entry schema 'RankBy' is not declared",
		},
		{
			name: "malformed grammar schema",
			src: `
components:
  schemas:
    Filter:
      type: array
      prefixItems:
        - const: Eq
      additionalItems: true
    RankBy:
      type: string
`,
			sentinel: apigen.ErrSchemaMalformed,
			contains: "additionalItems: true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.src))
			require.NoError(t, err)

			_, err = Extract(doc, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	config := apigen.DefaultConfig()
	config.Grammar.Filter = "Where"

	opts := OptionsFromConfig(config.Grammar)
	assert.Equal(t, "Where", opts.Filter)
	assert.Equal(t, "RankBy", opts.RankBy)
	assert.Equal(t, apigen.DefaultTypePrefixes, opts.TypePrefixes)
}
