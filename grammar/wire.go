package grammar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"
)

// Encode serializes an expression to its wire form: a nested JSON array whose
// first element is the operator's wire name. Keyed operators become single-key
// objects. The output is compact and deterministic.
func Encode(m *Model, n Node) ([]byte, error) {
	wire, err := Wire(m, n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(wire); err != nil {
		return nil, fmt.Errorf("failed to encode expression: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Wire converts an expression into JSON-compatible values ([]any, map[string]any,
// string, json.Number, bool, nil).
func Wire(m *Model, n Node) (any, error) {
	e := &encoder{model: m}
	return e.node(n, "")
}

type encoder struct {
	model *Model
}

func (e *encoder) node(n Node, path string) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return e.literal(n.Value, path)
	case *FieldRef:
		return n.Name, nil
	case *Call:
		return e.call(n, path)
	default:
		return nil, invalidExpression(path, "unknown node %T", n)
	}
}

func (e *encoder) literal(value any, path string) (any, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return json.Number(v.String()), nil
	case []Node:
		out := make([]any, len(v))

		for i, item := range v {
			wire, err := e.node(item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}

			out[i] = wire
		}

		return out, nil
	default:
		return v, nil
	}
}

func (e *encoder) call(c *Call, path string) (any, error) {
	op, ok := e.model.Operators[c.Operator]
	if !ok {
		return nil, invalidExpression(path, "operator '%s' is not declared", c.Operator)
	}

	path = joinPath(path, op.Wire)

	if err := checkArgCount(op, len(c.Args), path); err != nil {
		return nil, err
	}

	args := make([]any, len(c.Args))

	for i, arg := range c.Args {
		wire, err := e.node(arg, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}

		args[i] = wire
	}

	if op.Keyed {
		return map[string]any{op.Wire: args[0]}, nil
	}

	next := 0
	out := fillSlots(op.Slots, args, &next)

	return append(out, args[next:]...), nil
}

// fillSlots lays arguments into the wire array in slot order
func fillSlots(slots []Slot, args []any, next *int) []any {
	out := make([]any, 0, len(slots))

	for _, s := range slots {
		switch s.Kind {
		case SlotConst:
			out = append(out, s.Const)
		case SlotOperand:
			out = append(out, args[*next])
			*next++
		case SlotGroup:
			out = append(out, fillSlots(s.Group, args, next))
		}
	}

	return out
}

// Decode parses the wire form of an expression of the expected type. Operators
// are matched in declaration order; the first one whose shape fits wins.
func Decode(m *Model, expected TypeRef, data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any

	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", invalidExpression("", "wire form is not JSON"), err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalidExpression("", "trailing data after expression")
	}

	d := &decoder{model: m}

	return d.decode(expected, raw, "")
}

type decoder struct {
	model *Model
}

func (d *decoder) decode(expected TypeRef, raw any, path string) (Node, error) {
	if expected.IsExpression() {
		return d.expression(expected, raw, path)
	}

	v := d.model.ValueType(expected)
	if v == nil {
		return nil, invalidExpression(path, "type '%s' is not declared", expected)
	}

	return d.value(v, raw, path)
}

func (d *decoder) expression(expected TypeRef, raw any, path string) (Node, error) {
	var firstErr error

	for _, op := range d.model.Leaves(expected) {
		var (
			n   Node
			err error
		)

		switch raw := raw.(type) {
		case []any:
			if op.Keyed || !constsMatch(op.Slots, raw) {
				continue
			}

			n, err = d.tuple(op, raw, path)
		case map[string]any:
			if !op.Keyed || len(raw) != 1 {
				continue
			}

			value, ok := raw[op.Wire]
			if !ok {
				continue
			}

			var arg Node

			arg, err = d.decode(op.Slots[0].Operand.Type, value, joinPath(path, op.Wire))
			if err == nil {
				n = NewCall(op.Name, arg)
			}
		default:
			continue
		}

		if err == nil {
			return n, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	for _, member := range d.model.ValueMembers(expected) {
		if n, err := d.decode(member, raw, path); err == nil {
			return n, nil
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return nil, invalidExpression(path, "no %s operator matches %s", expected, describeRaw(raw))
}

func (d *decoder) tuple(op *Operator, raw []any, path string) (Node, error) {
	path = joinPath(path, op.Wire)
	call := &Call{Operator: op.Name}

	consumed, err := d.slots(op.Slots, raw, path, call)
	if err != nil {
		return nil, err
	}

	rest := raw[consumed:]

	if op.Rest == nil && len(rest) > 0 {
		return nil, invalidExpression(path, "%d unexpected trailing element(s)", len(rest))
	}

	for i, item := range rest {
		n, err := d.decode(op.Rest.Type, item, fmt.Sprintf("%s[%d]", path, consumed+i))
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, n)
	}

	if err := checkArgCount(op, len(call.Args), path); err != nil {
		return nil, err
	}

	return call, nil
}

// constsMatch reports whether the top-level constants of an operator sit at their
// positions in the array, which tells the operator it is meant for.
func constsMatch(slots []Slot, raw []any) bool {
	for i, s := range slots {
		if s.Kind != SlotConst {
			continue
		}

		if i >= len(raw) {
			return false
		}

		if str, ok := raw[i].(string); !ok || str != s.Const {
			return false
		}
	}

	return true
}

func (d *decoder) slots(slots []Slot, raw []any, path string, call *Call) (int, error) {
	for i, s := range slots {
		if i >= len(raw) {
			return 0, invalidExpression(path, "expected at least %d element(s), got %d", len(slots), len(raw))
		}

		elemPath := fmt.Sprintf("%s[%d]", path, i)

		switch s.Kind {
		case SlotConst:
			if str, ok := raw[i].(string); !ok || str != s.Const {
				return 0, invalidExpression(elemPath, "expected %q, got %s", s.Const, describeRaw(raw[i]))
			}
		case SlotOperand:
			n, err := d.decode(s.Operand.Type, raw[i], elemPath)
			if err != nil {
				return 0, err
			}

			call.Args = append(call.Args, n)
		case SlotGroup:
			inner, ok := raw[i].([]any)
			if !ok {
				return 0, invalidExpression(elemPath, "expected a nested array, got %s", describeRaw(raw[i]))
			}

			consumed, err := d.slots(s.Group, inner, elemPath, call)
			if err != nil {
				return 0, err
			}

			if consumed != len(inner) {
				return 0, invalidExpression(elemPath, "expected %d element(s), got %d", consumed, len(inner))
			}
		}
	}

	return len(slots), nil
}

func (d *decoder) value(v *ValueType, raw any, path string) (Node, error) {
	switch v.Kind {
	case KindString, KindFieldRef:
		s, ok := raw.(string)
		if !ok {
			return nil, invalidExpression(path, "expected string, got %s", describeRaw(raw))
		}

		if v.Kind == KindFieldRef {
			return Field(s), nil
		}

		if len(v.Enum) > 0 && !slices.ContainsFunc(v.Enum, func(e EnumValue) bool { return e.Value == s }) {
			return nil, invalidExpression(path, "%q is not one of %s", s, v)
		}

		return String(s), nil
	case KindNumber:
		num, ok := raw.(json.Number)
		if !ok {
			return nil, invalidExpression(path, "expected number, got %s", describeRaw(raw))
		}

		dec, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, invalidExpression(path, "invalid number %s", num)
		}

		if v.Integer && !dec.IsInteger() {
			return nil, invalidExpression(path, "expected integer, got %s", num)
		}

		return Number(dec), nil
	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, invalidExpression(path, "expected boolean, got %s", describeRaw(raw))
		}

		return Bool(b), nil
	case KindNull:
		if raw != nil {
			return nil, invalidExpression(path, "expected null, got %s", describeRaw(raw))
		}

		return Null(), nil
	case KindVector:
		items, ok := raw.([]any)
		if !ok {
			return nil, invalidExpression(path, "expected array, got %s", describeRaw(raw))
		}

		out := make([]Node, len(items))

		for i, item := range items {
			n, err := d.decode(*v.Elem, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}

			out[i] = n
		}

		return Vector(out...), nil
	case KindAny:
		for _, alt := range v.Alternatives {
			if n, err := d.decode(alt, raw, path); err == nil {
				return n, nil
			}
		}

		if len(v.Alternatives) > 0 {
			return nil, invalidExpression(path, "%s does not match any alternative of %s", describeRaw(raw), v)
		}

		return naturalLiteral(raw), nil
	}

	return nil, invalidExpression(path, "unsupported value kind %s", v.Kind)
}

// naturalLiteral converts untyped JSON into the literal of its own kind
func naturalLiteral(raw any) *Literal {
	switch raw := raw.(type) {
	case nil:
		return Null()
	case string:
		return String(raw)
	case bool:
		return Bool(raw)
	case json.Number:
		if d, err := decimal.NewFromString(raw.String()); err == nil {
			return Number(d)
		}
	case []any:
		items := make([]Node, len(raw))
		for i, item := range raw {
			items[i] = naturalLiteral(item)
		}

		return Vector(items...)
	}

	return &Literal{Kind: KindAny, Value: raw}
}

func describeRaw(raw any) string {
	switch raw := raw.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", raw)
	case json.Number:
		return raw.String()
	case bool:
		return fmt.Sprintf("%t", raw)
	case []any:
		return fmt.Sprintf("array of %d element(s)", len(raw))
	case map[string]any:
		return fmt.Sprintf("object with %d key(s)", len(raw))
	default:
		return fmt.Sprintf("%T", raw)
	}
}
