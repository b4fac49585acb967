package testhelper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/openapi"
	"github.com/turbopuffer/apigen/testdata"
)

// Model compiles and validates a fixture document from testdata/specs
func Model(t *testing.T, name string) *grammar.Model {
	t.Helper()

	return ModelFrom(t, testdata.Spec(name))
}

// ModelFrom compiles and validates an inline document
func ModelFrom(t *testing.T, src []byte) *grammar.Model {
	t.Helper()

	doc, err := openapi.Parse(src)
	require.NoError(t, err)

	schema, err := openapi.Extract(doc, openapi.DefaultOptions())
	require.NoError(t, err)

	m, err := grammar.Build(schema)
	require.NoError(t, err)

	_, err = grammar.Validate(m)
	require.NoError(t, err)

	return m
}
