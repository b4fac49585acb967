package grammar

import (
	"fmt"

	"github.com/turbopuffer/apigen/openapi"
)

// Build converts the extracted grammar schemas into a Model.
//
// Inline anyOf variants are named first, then the definition graph is sorted so
// every definition is classified after the definitions it depends on. Finally each
// definition is turned into a value type, an operator or a union.
func Build(schema *openapi.GrammarSchema) (*Model, error) {
	variants := extractVariants(schema.Schemas)

	graph, err := newDefinitionGraph(variants.schemas)
	if err != nil {
		return nil, err
	}

	order, err := graph.sort()
	if err != nil {
		return nil, err
	}

	b := &builder{
		schemas:   variants.schemas,
		droppable: variants.droppable,
		classes:   make(map[string]RefClass, len(order)),
	}

	for _, name := range order {
		class, err := b.classify(name, b.schemas[name])
		if err != nil {
			return nil, err
		}

		b.classes[name] = class
	}

	model := &Model{
		ValueTypes: make(map[string]*ValueType),
		Operators:  make(map[string]*Operator),
		Unions:     make(map[string]*Union),
		Order:      order,
	}

	for _, name := range order {
		if err := b.define(model, name); err != nil {
			return nil, err
		}
	}

	model.Filter = b.entry(model, schema.Filter)
	model.RankBy = b.entry(model, schema.RankBy)

	return model, nil
}

type builder struct {
	schemas   map[string]*openapi.Schema
	droppable map[string]bool
	classes   map[string]RefClass
}

// classify decides which declared set a definition belongs to.
// Dependencies are already classified because of the definition order.
func (b *builder) classify(name string, s *openapi.Schema) (RefClass, error) {
	shape, err := s.Shape()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	switch shape {
	case openapi.ShapeTuple, openapi.ShapeObject:
		return RefOperator, nil
	case openapi.ShapeAnyOf:
		if b.allValues(s.AnyOf) {
			return RefValue, nil
		}

		return RefUnion, nil
	case openapi.ShapeRef:
		if b.classes[s.RefName()] == RefValue {
			return RefValue, nil
		}

		return RefUnion, nil
	default:
		return RefValue, nil
	}
}

// allValues reports whether every alternative is a literal type
func (b *builder) allValues(items []*openapi.Schema) bool {
	for _, item := range items {
		switch {
		case item.Ref != "":
			if b.classes[item.RefName()] != RefValue {
				return false
			}
		case item.AnyOf != nil:
			if !b.allValues(item.AnyOf) {
				return false
			}
		case isInlineOperator(item):
			return false
		}
	}

	return true
}

func (b *builder) define(m *Model, name string) error {
	s := b.schemas[name]

	switch b.classes[name] {
	case RefOperator:
		op, err := b.operator(m, name, s)
		if err != nil {
			return err
		}

		m.Operators[name] = op
	case RefUnion:
		u := &Union{Name: name, Description: s.Description}

		members := s.AnyOf
		if s.Ref != "" {
			members = []*openapi.Schema{s}
		}

		for i, item := range members {
			ref, err := b.typeRef(item, fmt.Sprintf("%s.anyOf[%d]", name, i))
			if err != nil {
				return err
			}

			u.Members = append(u.Members, ref)
		}

		m.Unions[name] = u
	default:
		if s.Ref != "" {
			target := *m.ValueTypes[s.RefName()]
			target.Name = name
			m.ValueTypes[name] = &target

			return nil
		}

		v, err := b.valueType(name, s, name)
		if err != nil {
			return err
		}

		m.ValueTypes[name] = v
	}

	return nil
}

// typeRef resolves an operand or member schema
func (b *builder) typeRef(s *openapi.Schema, path string) (TypeRef, error) {
	if s.Ref != "" {
		target := s.RefName()
		return Named(b.classes[target], target), nil
	}

	if s.AnyOf != nil && !b.allValues(s.AnyOf) {
		return TypeRef{}, malformed(path, "inline anyOf over expressions must be declared as a named schema")
	}

	if isInlineOperator(s) {
		return TypeRef{}, malformed(path, "inline tuples and objects must be named or flattened")
	}

	v, err := b.valueType("", s, path)
	if err != nil {
		return TypeRef{}, err
	}

	return Inline(v), nil
}

func (b *builder) valueType(name string, s *openapi.Schema, path string) (*ValueType, error) {
	shape, err := s.Shape()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	v := &ValueType{Name: name, Description: s.Description}

	switch shape {
	case openapi.ShapeString:
		v.Kind = KindString
		if s.FieldRef {
			v.Kind = KindFieldRef
		}
	case openapi.ShapeNumber:
		v.Kind = KindNumber
		v.Width = s.Width
	case openapi.ShapeInteger:
		v.Kind = KindNumber
		v.Integer = true
	case openapi.ShapeBoolean:
		v.Kind = KindBoolean
	case openapi.ShapeNull:
		v.Kind = KindNull
	case openapi.ShapeAny:
		v.Kind = KindAny
	case openapi.ShapeConst:
		v.Kind = KindString
		v.Enum = []EnumValue{{Value: s.ConstValue(), Title: s.Title}}
	case openapi.ShapeList:
		elem, err := b.typeRef(s.Items, path+".items")
		if err != nil {
			return nil, err
		}

		v.Kind = KindVector
		v.Elem = &elem
	case openapi.ShapeAnyOf:
		if allConsts(s.AnyOf) {
			v.Kind = KindString
			for _, item := range s.AnyOf {
				v.Enum = append(v.Enum, EnumValue{Value: item.ConstValue(), Title: item.Title})
			}

			break
		}

		v.Kind = KindAny
		for i, item := range s.AnyOf {
			alt, err := b.typeRef(item, fmt.Sprintf("%s.anyOf[%d]", path, i))
			if err != nil {
				return nil, err
			}

			v.Alternatives = append(v.Alternatives, alt)
		}
	default:
		return nil, malformed(path, "%s schema cannot describe a value", shape)
	}

	return v, nil
}

func allConsts(items []*openapi.Schema) bool {
	for _, item := range items {
		if item.Const == nil || item.Ref != "" {
			return false
		}
	}

	return true
}

func (b *builder) operator(m *Model, name string, s *openapi.Schema) (*Operator, error) {
	op := &Operator{
		Name:        name,
		Description: s.Description,
		Droppable:   b.droppable[name],
	}

	if s.Type == "object" {
		key := s.Required[0]

		typ, err := b.typeRef(s.Properties[key], name+".properties."+key)
		if err != nil {
			return nil, err
		}

		op.Wire = key
		op.Keyed = true
		op.Slots = []Slot{{Kind: SlotOperand, Operand: &Operand{Name: key, Type: typ}}}
	} else {
		index := 0

		slots, err := b.slots(s.PrefixItems, name, &index)
		if err != nil {
			return nil, err
		}

		op.Slots = slots

		for _, slot := range slots {
			if slot.Kind == SlotConst {
				op.Wire = slot.Const
				break
			}
		}

		if s.Items != nil {
			typ, err := b.typeRef(s.Items, name+".items")
			if err != nil {
				return nil, err
			}

			restName := s.Items.Title
			if restName == "" {
				restName = "operands"
			}

			op.Rest = &Operand{Name: restName, Type: typ}

			if s.MinItems != nil {
				op.MinRest = max(0, *s.MinItems-len(s.PrefixItems))
			}
		}
	}

	op.Class = Comparison

	for _, operand := range op.AllOperands() {
		if m.ContainsExpression(operand.Type) || b.refersToExpression(operand.Type) {
			op.Class = Combinator
			break
		}
	}

	return op, nil
}

// refersToExpression covers references to definitions not yet added to the model
func (b *builder) refersToExpression(ref TypeRef) bool {
	if ref.IsExpression() {
		return true
	}

	if ref.Value != nil && ref.Value.Elem != nil {
		return b.refersToExpression(*ref.Value.Elem)
	}

	return false
}

// slots converts prefixItems, numbering unnamed operands by tuple position
func (b *builder) slots(items []*openapi.Schema, name string, index *int) ([]Slot, error) {
	var out []Slot

	for _, item := range items {
		path := fmt.Sprintf("%s.prefixItems[%d]", name, *index)

		switch {
		case item.Const != nil && item.Ref == "":
			out = append(out, Slot{Kind: SlotConst, Const: item.ConstValue()})
		case item.Flatten && item.PrefixItems != nil:
			group, err := b.slots(item.PrefixItems, name, index)
			if err != nil {
				return nil, err
			}

			out = append(out, Slot{Kind: SlotGroup, Group: group})
		default:
			typ, err := b.typeRef(item, path)
			if err != nil {
				return nil, err
			}

			operandName := item.Title
			if operandName == "" {
				operandName = fmt.Sprintf("f%d", *index)
			}

			out = append(out, Slot{Kind: SlotOperand, Operand: &Operand{Name: operandName, Type: typ}})
		}

		*index++
	}

	return out, nil
}

func (b *builder) entry(m *Model, name string) Entry {
	root := Named(b.classes[name], name)

	return Entry{
		Name:      name,
		Root:      root,
		Operators: m.Reachable(root),
	}
}
