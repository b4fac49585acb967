package grammar

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen"
)

func TestResolve(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	tests := []struct {
		name     string
		entry    string
		expr     Node
		expected Node
	}{
		{
			name:     "wire names resolve to schema names",
			entry:    "filter",
			expr:     NewCall("Not", NewCall("Lt", Field("n"), Int(3))),
			expected: NewCall("FilterNot", NewCall("FilterComparisonLt", Field("n"), Int(3))),
		},
		{
			name:     "shared wire name picks the first declared operator",
			entry:    "filter",
			expr:     NewCall("Eq", Field("a"), Int(1)),
			expected: NewCall("FilterComparisonEq", Field("a"), Int(1)),
		},
		{
			name:     "schema name selects a specific variant",
			entry:    "filter",
			expr:     NewCall("FilterComparisonEq2", Field("a"), Int(1)),
			expected: NewCall("FilterComparisonEq2", Field("a"), Int(1)),
		},
		{
			name:     "string literal in a field slot becomes a reference",
			entry:    "filter",
			expr:     NewCall("Glob", String("path"), String("*.go")),
			expected: NewCall("FilterComparisonMatches", Field("path"), String("*.go")),
		},
		{
			name:     "field reference in an untyped slot becomes a string",
			entry:    "filter",
			expr:     NewCall("Eq", Field("status"), Field("active")),
			expected: NewCall("FilterComparisonEq", Field("status"), String("active")),
		},
		{
			name:  "variadic operands keep their order",
			entry: "filter",
			expr: NewCall("Or",
				NewCall("Eq", Field("b"), Int(2)),
				NewCall("Eq", Field("a"), Int(1)),
				NewCall("Eq", Field("c"), Int(3)),
			),
			expected: NewCall("FilterOr",
				NewCall("FilterComparisonEq", Field("b"), Int(2)),
				NewCall("FilterComparisonEq", Field("a"), Int(1)),
				NewCall("FilterComparisonEq", Field("c"), Int(3)),
			),
		},
		{
			name:     "enumerated operand",
			entry:    "rank_by",
			expr:     NewCall("Attribute", Field("price"), String("desc")),
			expected: NewCall("RankByAttribute", Field("price"), String("desc")),
		},
		{
			name:  "expressions nested in a vector",
			entry: "rank_by",
			expr: NewCall("Sum", Vector(
				NewCall("BM25", Field("title"), String("fox")),
				NewCall("Product", Int(2), NewCall("BM25", Field("body"), Field("fox"))),
			)),
			expected: NewCall("RankByTextSum", Vector(
				NewCall("RankByTextBM25", Field("title"), String("fox")),
				NewCall("RankByTextProduct", Int(2), NewCall("RankByTextBM25", Field("body"), String("fox"))),
			)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := m.LookupEntry(tt.entry)
			require.True(t, ok)

			resolved, err := Resolve(m, entry.Root, tt.expr)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, resolved, nodeComparer); diff != "" {
				t.Errorf("resolve mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolve_Errors(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	tests := []struct {
		name     string
		entry    string
		expr     Node
		contains string
	}{
		{
			name:     "operator from another entry point",
			entry:    "filter",
			expr:     NewCall("Attribute", Field("price"), String("asc")),
			contains: "operator 'Attribute' is not allowed in Filter (expected one of And, Or, Not, Eq, In, Lt, Glob)",
		},
		{
			name:     "literal where an expression is expected",
			entry:    "filter",
			expr:     String("x"),
			contains: `expected Filter expression, got "x"`,
		},
		{
			name:     "value outside the enumeration",
			entry:    "rank_by",
			expr:     NewCall("Attribute", Field("price"), String("up")),
			contains: `Attribute[1]: "up" is not one of`,
		},
		{
			name:     "number where a string is expected",
			entry:    "filter",
			expr:     NewCall("Glob", Field("path"), Int(1)),
			contains: "expected string, got 1",
		},
		{
			name:     "too few variadic operands",
			entry:    "filter",
			expr:     NewCall("And"),
			contains: "And takes at least 1 argument(s), got 0",
		},
		{
			name:     "nested failure carries its path",
			entry:    "filter",
			expr:     NewCall("Not", NewCall("Lt", Field("n"), String("x"))),
			contains: "Not[0].Lt[1]: expected number",
		},
		{
			name:     "missing argument",
			entry:    "filter",
			expr:     NewCall("Not", nil),
			contains: "Not[0]: missing value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, ok := m.LookupEntry(tt.entry)
			require.True(t, ok)

			_, err := Resolve(m, entry.Root, tt.expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apigen.ErrInvalidExpression))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestNodeString(t *testing.T) {
	expr := NewCall("And",
		NewCall("Eq", Field("status"), String("a \"b\"")),
		NewCall("In", Field("my field"), Vector(Int(1), Bool(false), Null())),
		NewCall("Eq", Field("true"), Field("x.y")),
	)

	assert.Equal(t,
		`And(Eq(status, "a \"b\""), In(@"my field", [1, false, null]), Eq(@"true", x.y))`,
		expr.String())
}

func TestIsBareField(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"status", true},
		{"$id", true},
		{"_a.b-c9", true},
		{"9lives", false},
		{"", false},
		{"null", false},
		{"has space", false},
		{"-x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBareField(tt.name))
		})
	}
}
