package grammar

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Resolve checks an expression instance against the type it must have and returns
// the canonical tree: calls name their operator by schema name, string operands are
// literals and field operands are field references. Calls may name operators by
// schema name or by wire name. Argument order is kept exactly.
func Resolve(m *Model, expected TypeRef, n Node) (Node, error) {
	r := &resolver{model: m}
	return r.resolve(expected, n, "")
}

type resolver struct {
	model *Model
}

func (r *resolver) resolve(expected TypeRef, n Node, path string) (Node, error) {
	if n == nil {
		return nil, invalidExpression(path, "missing value")
	}

	if expected.IsExpression() {
		return r.expression(expected, n, path)
	}

	v := r.model.ValueType(expected)
	if v == nil {
		return nil, invalidExpression(path, "type '%s' is not declared", expected)
	}

	return r.value(v, n, path)
}

func (r *resolver) expression(expected TypeRef, n Node, path string) (Node, error) {
	call, ok := n.(*Call)
	if !ok {
		for _, member := range r.model.ValueMembers(expected) {
			if resolved, err := r.resolve(member, n, path); err == nil {
				return resolved, nil
			}
		}

		return nil, invalidExpression(path, "expected %s expression, got %s", expected, n)
	}

	var firstErr error

	for _, op := range r.model.Leaves(expected) {
		if op.Name != call.Operator && op.Wire != call.Operator {
			continue
		}

		resolved, err := r.call(op, call, path)
		if err == nil {
			return resolved, nil
		}

		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return nil, invalidExpression(path, "operator '%s' is not allowed in %s (expected one of %s)",
		call.Operator, expected, strings.Join(wireNames(r.model.Leaves(expected)), ", "))
}

func (r *resolver) call(op *Operator, call *Call, path string) (*Call, error) {
	path = joinPath(path, op.Wire)
	operands := op.Operands()

	if err := checkArgCount(op, len(call.Args), path); err != nil {
		return nil, err
	}

	out := &Call{Operator: op.Name, Args: make([]Node, len(call.Args))}

	for i, arg := range call.Args {
		operand := op.Rest
		if i < len(operands) {
			operand = operands[i]
		}

		resolved, err := r.resolve(operand.Type, arg, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}

		out.Args[i] = resolved
	}

	return out, nil
}

func checkArgCount(op *Operator, count int, path string) error {
	fixed := len(op.Operands())

	switch {
	case op.Rest == nil && count != fixed:
		return invalidExpression(path, "%s takes %d argument(s), got %d", op.Wire, fixed, count)
	case op.Rest != nil && count < fixed+op.MinRest:
		return invalidExpression(path, "%s takes at least %d argument(s), got %d", op.Wire, fixed+op.MinRest, count)
	}

	return nil
}

func (r *resolver) value(v *ValueType, n Node, path string) (Node, error) {
	switch v.Kind {
	case KindFieldRef:
		switch n := n.(type) {
		case *FieldRef:
			return n, nil
		case *Literal:
			if s, ok := n.Value.(string); ok {
				return Field(s), nil
			}
		}

		return nil, invalidExpression(path, "expected field reference, got %s", n)
	case KindAny:
		return r.any(v, n, path)
	}

	var lit *Literal

	switch n := n.(type) {
	case *Literal:
		lit = n
	case *FieldRef:
		if v.Kind != KindString {
			return nil, invalidExpression(path, "expected %s, got field reference %s", v, n)
		}

		lit = String(n.Name)
	default:
		return nil, invalidExpression(path, "expected %s literal, got %s", v, n)
	}

	switch v.Kind {
	case KindString:
		s, ok := lit.Value.(string)
		if !ok {
			return nil, invalidExpression(path, "expected string, got %s", lit)
		}

		if len(v.Enum) > 0 && !slices.ContainsFunc(v.Enum, func(e EnumValue) bool { return e.Value == s }) {
			return nil, invalidExpression(path, "%q is not one of %s", s, v)
		}

		return String(s), nil
	case KindNumber:
		d, ok := lit.Value.(decimal.Decimal)
		if !ok {
			return nil, invalidExpression(path, "expected number, got %s", lit)
		}

		if v.Integer && !d.IsInteger() {
			return nil, invalidExpression(path, "expected integer, got %s", d)
		}

		return Number(d), nil
	case KindBoolean:
		if _, ok := lit.Value.(bool); !ok {
			return nil, invalidExpression(path, "expected boolean, got %s", lit)
		}

		return lit, nil
	case KindNull:
		if lit.Value != nil {
			return nil, invalidExpression(path, "expected null, got %s", lit)
		}

		return Null(), nil
	case KindVector:
		items, ok := lit.Value.([]Node)
		if !ok {
			return nil, invalidExpression(path, "expected vector, got %s", lit)
		}

		out := make([]Node, len(items))

		for i, item := range items {
			resolved, err := r.resolve(*v.Elem, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}

			out[i] = resolved
		}

		return Vector(out...), nil
	}

	return nil, invalidExpression(path, "unsupported value kind %s", v.Kind)
}

// any accepts the first matching alternative, or any literal when unrestricted
func (r *resolver) any(v *ValueType, n Node, path string) (Node, error) {
	if len(v.Alternatives) > 0 {
		for _, alt := range v.Alternatives {
			if resolved, err := r.resolve(alt, n, path); err == nil {
				return resolved, nil
			}
		}

		return nil, invalidExpression(path, "%s does not match any alternative of %s", n, v)
	}

	switch n := n.(type) {
	case *FieldRef:
		return String(n.Name), nil
	case *Literal:
		items, ok := n.Value.([]Node)
		if !ok {
			return n, nil
		}

		out := make([]Node, len(items))

		for i, item := range items {
			resolved, err := r.any(v, item, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}

			out[i] = resolved
		}

		return Vector(out...), nil
	default:
		return nil, invalidExpression(path, "expected a literal, got %s", n)
	}
}

func wireNames(ops []*Operator) []string {
	var names []string

	for _, op := range ops {
		if !slices.Contains(names, op.Wire) {
			names = append(names, op.Wire)
		}
	}

	return names
}

func joinPath(path, element string) string {
	if path == "" {
		return element
	}

	return path + "." + element
}
