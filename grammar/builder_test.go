package grammar

import (
	"errors"
	"slices"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/stretchr/testify/require"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/openapi"
	"github.com/turbopuffer/apigen/testdata"
)

func compile(t *testing.T, src []byte) (*Model, error) {
	t.Helper()

	doc, err := openapi.Parse(src)
	require.NoError(t, err)

	schema, err := openapi.Extract(doc, openapi.DefaultOptions())
	require.NoError(t, err)

	return Build(schema)
}

func fixtureModel(t *testing.T, name string) *Model {
	t.Helper()

	m, err := compile(t, testdata.Spec(name))
	require.NoError(t, err)

	_, err = Validate(m)
	require.NoError(t, err)

	return m
}

func TestBuild_Operators(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	tests := []struct {
		name     string
		wire     string
		class    OperatorClass
		arity    Arity
		operands []string
	}{
		{"FilterAnd", "And", Combinator, Variadic, []string{"filters"}},
		{"FilterNot", "Not", Combinator, Unary, []string{"filter"}},
		{"FilterComparisonEq", "Eq", Comparison, Binary, []string{"attr", "value"}},
		{"FilterComparisonEq2", "Eq", Comparison, Binary, []string{"attr", "value"}},
		{"FilterComparisonIn", "In", Comparison, Binary, []string{"attr", "values"}},
		{"FilterComparisonMatches", "Glob", Comparison, Binary, []string{"attr", "pattern"}},
		{"RankByVector", "ANN", Comparison, Binary, []string{"attr", "vector"}},
		{"RankByTextSum", "Sum", Combinator, Unary, []string{"terms"}},
		{"RankByTextProduct", "Product", Combinator, Binary, []string{"weight", "expr"}},
		{"RankByAttribute", "Attribute", Comparison, Binary, []string{"attr", "order"}},
		{"AggregateCount", "Count", Comparison, Nullary, nil},
		{"ExprRefNew", "$ref_new", Comparison, Unary, []string{"$ref_new"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, ok := m.Operators[tt.name]
			require.True(t, ok, "operator %s not built", tt.name)

			assert.Equal(t, tt.wire, op.Wire)
			assert.Equal(t, tt.class, op.Class)
			assert.Equal(t, tt.arity, op.Arity())

			var names []string
			for _, operand := range op.AllOperands() {
				names = append(names, operand.Name)
			}

			assert.Equal(t, tt.operands, names)
		})
	}
}

func TestBuild_OperatorDetails(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	and := m.Operators["FilterAnd"]
	assert.Equal(t, 1, and.MinRest)
	assert.Equal(t, Named(RefUnion, "Filter"), and.Rest.Type)

	assert.True(t, m.Operators["FilterComparisonEq2"].Droppable)
	assert.False(t, m.Operators["FilterComparisonEq"].Droppable)

	eq2 := m.Operators["FilterComparisonEq2"]
	assert.Equal(t, SlotOperand, eq2.Slots[0].Kind)
	assert.Equal(t, SlotConst, eq2.Slots[1].Kind)

	attr := m.Operators["RankByAttribute"]
	assert.True(t, attr.HasGroups())
	assert.Equal(t, 2, len(attr.Slots))
	assert.Equal(t, 2, len(attr.Slots[1].Group))
	assert.Equal(t, Named(RefValue, "AttributeOrder"), attr.Slots[1].Group[1].Operand.Type)

	ref := m.Operators["ExprRefNew"]
	assert.True(t, ref.Keyed)

	eq := m.Operators["FilterComparisonEq"]
	assert.Equal(t, KindFieldRef, eq.Operands()[0].Type.Value.Kind)
	assert.Equal(t, Named(RefValue, "AttributeValue"), eq.Operands()[1].Type)
}

func TestBuild_ValueTypes(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	order := m.ValueTypes["AttributeOrder"]
	require.NotZero(t, order)
	assert.Equal(t, KindString, order.Kind)
	assert.Equal(t, []EnumValue{
		{Value: "asc", Title: "AttributeOrderAscending"},
		{Value: "desc", Title: "AttributeOrderDescending"},
	}, order.Enum)

	vector := m.ValueTypes["Vector"]
	require.NotZero(t, vector)
	assert.Equal(t, KindVector, vector.Kind)
	assert.Equal(t, 32, vector.Elem.Value.Width)

	assert.Equal(t, KindAny, m.ValueTypes["AttributeValue"].Kind)

	_, unrelated := m.ValueTypes["NamespaceMetadata"]
	assert.False(t, unrelated)
}

func TestBuild_Unions(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	filter := m.Unions["Filter"]
	require.NotZero(t, filter)
	assert.Equal(t, []TypeRef{
		Named(RefOperator, "FilterAnd"),
		Named(RefOperator, "FilterOr"),
		Named(RefOperator, "FilterNot"),
		Named(RefUnion, "FilterComparison"),
	}, filter.Members)

	var leaves []string
	for _, op := range m.Leaves(Named(RefUnion, "Filter")) {
		leaves = append(leaves, op.Name)
	}

	assert.Equal(t, []string{
		"FilterAnd", "FilterOr", "FilterNot",
		"FilterComparisonEq", "FilterComparisonEq2", "FilterComparisonIn", "FilterComparisonLt", "FilterComparisonMatches",
	}, leaves)
}

func TestBuild_EntriesAreClosed(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	assert.Equal(t, "Filter", m.Filter.Name)
	assert.Equal(t, "RankBy", m.RankBy.Name)
	assert.Equal(t, []string{
		"FilterAnd", "FilterComparisonEq", "FilterComparisonEq2", "FilterComparisonIn",
		"FilterComparisonLt", "FilterComparisonMatches", "FilterNot", "FilterOr",
	}, m.Filter.Operators)

	for _, entry := range m.Entries() {
		assert.True(t, m.Has(entry.Root))

		for _, name := range entry.Operators {
			op, ok := m.Operators[name]
			require.True(t, ok, "%s reaches undeclared operator %s", entry.Name, name)

			for _, operand := range op.AllOperands() {
				assert.True(t, m.Has(operand.Type), "%s.%s references undeclared %s", name, operand.Name, operand.Type)
			}
		}
	}

	assert.False(t, slices.Contains(m.RankBy.Operators, "AggregateCount"))
}

func TestBuild_DefinitionOrder(t *testing.T) {
	m := fixtureModel(t, "turbopuffer.yaml")

	position := make(map[string]int)
	for i, name := range m.Order {
		position[name] = i
	}

	before := [][2]string{
		{"AttributeValue", "FilterComparisonEq"},
		{"FilterComparisonEq", "FilterComparison"},
		{"FilterComparison", "Filter"},
		{"FilterAnd", "Filter"},
		{"Vector", "RankByVector"},
		{"RankByText", "RankBy"},
	}

	for _, pair := range before {
		assert.True(t, position[pair[0]] < position[pair[1]], "%s must precede %s", pair[0], pair[1])
	}

	assert.Equal(t, len(m.ValueTypes)+len(m.Operators)+len(m.Unions), len(m.Order))
}

func TestBuild_Deterministic(t *testing.T) {
	first := fixtureModel(t, "turbopuffer.yaml")
	second := fixtureModel(t, "turbopuffer.yaml")

	assert.Equal(t, first.Order, second.Order)
	assert.Equal(t, first.Filter, second.Filter)
	assert.Equal(t, first.RankBy, second.RankBy)
}

func TestBuild_UnresolvedReference(t *testing.T) {
	src := []byte(`
components:
  schemas:
    Filter:
      anyOf:
        - $ref: '#/components/schemas/FilterAnd'
    FilterAnd:
      type: array
      prefixItems:
        - const: And
        - $ref: '#/components/schemas/FilterEq'
        - $ref: '#/components/schemas/Or'
    FilterEq:
      type: array
      prefixItems:
        - const: Eq
        - type: string
    RankBy:
      anyOf:
        - $ref: '#/components/schemas/FilterEq'
`)

	_, err := compile(t, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apigen.ErrUnresolvedOperatorReference))

	var unresolved *UnresolvedReferenceError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "Or", unresolved.Name)
	assert.Equal(t, "FilterAnd", unresolved.Referrer)
	assert.Contains(t, err.Error(), "'Or'")
}

func TestBuild_CyclicDefinition(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path []string
	}{
		{
			name: "operators referencing each other",
			src: `
components:
  schemas:
    Filter:
      anyOf:
        - $ref: '#/components/schemas/FilterA'
    FilterA:
      type: array
      prefixItems:
        - const: A
        - $ref: '#/components/schemas/FilterB'
    FilterB:
      type: array
      prefixItems:
        - const: B
        - $ref: '#/components/schemas/FilterA'
    RankBy:
      anyOf:
        - $ref: '#/components/schemas/FilterA'
`,
			path: []string{"FilterA", "FilterB", "FilterA"},
		},
		{
			name: "union containing itself",
			src: `
components:
  schemas:
    Filter:
      anyOf:
        - $ref: '#/components/schemas/FilterEq'
        - $ref: '#/components/schemas/FilterNested'
    FilterNested:
      anyOf:
        - $ref: '#/components/schemas/Filter'
    FilterEq:
      type: array
      prefixItems:
        - const: Eq
    RankBy:
      anyOf:
        - $ref: '#/components/schemas/FilterEq'
`,
			path: []string{"Filter", "FilterNested", "Filter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, []byte(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apigen.ErrCyclicOperatorDefinition))

			var cycle *CycleError
			require.True(t, errors.As(err, &cycle))
			assert.Equal(t, tt.path, cycle.Path)
		})
	}
}

func TestBuild_RecursionThroughUnionIsNotACycle(t *testing.T) {
	m := fixtureModel(t, "minimal.yaml")

	and := m.Operators["FilterAnd"]
	require.NotZero(t, and)
	assert.Equal(t, Named(RefUnion, "Filter"), and.Rest.Type)
	assert.Equal(t, Combinator, and.Class)
}

func TestBuild_InlineTupleOperand(t *testing.T) {
	src := []byte(`
components:
  schemas:
    Filter:
      anyOf:
        - $ref: '#/components/schemas/FilterEq'
    FilterEq:
      type: array
      prefixItems:
        - const: Eq
        - type: array
          prefixItems:
            - type: string
    RankBy:
      anyOf:
        - $ref: '#/components/schemas/FilterEq'
`)

	_, err := compile(t, src)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apigen.ErrSchemaMalformed))
}

func TestExtractVariants_KeepsSource(t *testing.T) {
	doc, err := openapi.Parse(testdata.Spec("turbopuffer.yaml"))
	require.NoError(t, err)

	schema, err := openapi.Extract(doc, openapi.DefaultOptions())
	require.NoError(t, err)

	before := len(schema.Schemas["FilterComparison"].AnyOf[0].PrefixItems)

	set := extractVariants(schema.Schemas)

	assert.Equal(t, "#/components/schemas/FilterComparisonEq", set.schemas["FilterComparison"].AnyOf[0].Ref)
	assert.Equal(t, "", schema.Schemas["FilterComparison"].AnyOf[0].Ref)
	assert.Equal(t, before, len(schema.Schemas["FilterComparison"].AnyOf[0].PrefixItems))
	assert.True(t, set.droppable["FilterComparisonEq2"])

	_, extracted := schema.Schemas["FilterComparisonEq"]
	assert.False(t, extracted)
}

func TestIdentifierPart(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Eq", "Eq"},
		{"ContainsAny", "ContainsAny"},
		{"$ref_new", "RefNew"},
		{"bm25", "Bm25"},
		{"Not Eq", "NotEq"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, identifierPart(tt.input))
		})
	}
}
