package exprtext

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/testhelper"
)

var nodeOptions = cmp.Options{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.EquateEmpty(),
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected grammar.Node
	}{
		{
			name: "nested calls",
			src:  `And(Eq(status, "active"), Eq(count, 5))`,
			expected: grammar.NewCall("And",
				grammar.NewCall("Eq", grammar.Field("status"), grammar.String("active")),
				grammar.NewCall("Eq", grammar.Field("count"), grammar.Int(5)),
			),
		},
		{
			name:     "no arguments",
			src:      "Count()",
			expected: grammar.NewCall("Count"),
		},
		{
			name:     "vector of numbers",
			src:      `ANN(embedding, [0.25, -1, 1e3])`,
			expected: grammar.NewCall("ANN", grammar.Field("embedding"), grammar.Vector(grammar.Number(decimal.RequireFromString("0.25")), grammar.Int(-1), grammar.Int(1000))),
		},
		{
			name:     "keywords",
			src:      "In(flag, [true, false, null])",
			expected: grammar.NewCall("In", grammar.Field("flag"), grammar.Vector(grammar.Bool(true), grammar.Bool(false), grammar.Null())),
		},
		{
			name:     "quoted field",
			src:      `Eq(@"first name", "Ada")`,
			expected: grammar.NewCall("Eq", grammar.Field("first name"), grammar.String("Ada")),
		},
		{
			name:     "field names with dots, dashes and dollars",
			src:      "Eq($meta.top-k, 3)",
			expected: grammar.NewCall("Eq", grammar.Field("$meta.top-k"), grammar.Int(3)),
		},
		{
			name:     "escapes",
			src:      `Glob(path, "a\"b\\cé")`,
			expected: grammar.NewCall("Glob", grammar.Field("path"), grammar.String("a\"b\\cé")),
		},
		{
			name:     "bare literal",
			src:      `  "x"  `,
			expected: grammar.String("x"),
		},
		{
			name:     "empty vector",
			src:      "[]",
			expected: grammar.Vector(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := Parse(tt.src)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.expected, actual, nodeOptions); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_RoundTripsString(t *testing.T) {
	exprs := []grammar.Node{
		grammar.NewCall("Or",
			grammar.NewCall("Not", grammar.NewCall("Lt", grammar.Field("age"), grammar.Number(decimal.RequireFromString("18.5")))),
			grammar.NewCall("Glob", grammar.Field("odd name"), grammar.String("*.go")),
		),
		grammar.NewCall("Sum", grammar.Vector(grammar.NewCall("BM25", grammar.Field("title"), grammar.String("fox")))),
	}

	for _, expr := range exprs {
		t.Run(expr.String(), func(t *testing.T) {
			actual, err := Parse(expr.String())
			require.NoError(t, err)

			if diff := cmp.Diff(expr, actual, nodeOptions); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"empty", "   ", "empty expression"},
		{"unexpected character", "Eq(a; 1)", `offset 4: unexpected character ';'`},
		{"unterminated string", `Eq(a, "x`, "offset 6: unterminated string literal"},
		{"malformed number", "Eq(a, 1.2.3)", "offset 6: malformed number 1.2.3"},
		{"lone minus", "Eq(a, -)", "malformed number -"},
		{"unclosed call", "And(Eq(a, 1)", "expected an operator call"},
		{"trailing input", "Eq(a, 1) Eq(b, 2)", "expected an operator call"},
		{"missing argument", "Eq(a,)", "expected an operator call"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apigen.ErrInvalidExpression))
			assert.Contains(t, err.Error(), tt.expected)
		})
	}
}

func TestParseEntry(t *testing.T) {
	m := testhelper.Model(t, "turbopuffer.yaml")

	n, err := ParseEntry(m, m.Filter, `And(Eq(status, "active"), Eq(count, 5))`)
	require.NoError(t, err)

	wire, err := grammar.Encode(m, n)
	require.NoError(t, err)
	assert.Equal(t, `["And",["Eq","status","active"],["Eq","count",5]]`, string(wire))

	_, err = ParseEntry(m, m.Filter, `Attribute(price, "desc")`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apigen.ErrInvalidExpression))
}
