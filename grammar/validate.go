package grammar

import (
	"cmp"
	"fmt"
	"slices"
)

// Validate checks the model for internal consistency. It reports every violation
// it finds rather than stopping at the first one, and returns the model unchanged
// when there are none.
func Validate(m *Model) (*Model, error) {
	v := &validator{model: m}

	for _, name := range m.ValueTypeNames() {
		v.valueType(name, m.ValueTypes[name])
	}

	for _, name := range m.OperatorNames() {
		v.operator(m.Operators[name])
	}

	for _, name := range m.UnionNames() {
		v.union(m.Unions[name])
	}

	v.entry("filter", m.Filter)
	v.entry("rank_by", m.RankBy)

	if len(v.violations) == 0 {
		return m, nil
	}

	slices.SortStableFunc(v.violations, func(a, b Violation) int {
		return cmp.Or(cmp.Compare(a.Subject, b.Subject), cmp.Compare(a.Message, b.Message))
	})

	return nil, &ValidationError{Violations: slices.Compact(v.violations)}
}

type validator struct {
	model      *Model
	violations []Violation
}

func (v *validator) report(subject, format string, args ...any) {
	v.violations = append(v.violations, Violation{Subject: subject, Message: fmt.Sprintf(format, args...)})
}

// ref checks that a type reference resolves in the declared set of its class
func (v *validator) ref(subject, where string, r TypeRef) {
	switch {
	case r.Name == "" && r.Value == nil:
		v.report(subject, "%s: empty type reference", where)
	case r.Name == "":
		v.valueType(subject+"."+where, r.Value)
	case r.Class != RefValue && r.Class != RefOperator && r.Class != RefUnion:
		v.report(subject, "%s: reference to '%s' has no class", where, r.Name)
	case !v.model.Has(r):
		v.report(subject, "%s: references undeclared %s '%s'", where, r.Class, r.Name)
	}
}

func (v *validator) valueType(subject string, t *ValueType) {
	switch t.Kind {
	case KindString, KindFieldRef, KindBoolean, KindNull, KindAny:
	case KindNumber:
		if t.Width != 0 && t.Width != 32 && t.Width != 64 {
			v.report(subject, "unsupported number width %d", t.Width)
		}
	case KindVector:
		if t.Elem == nil {
			v.report(subject, "vector has no element type")
		} else {
			v.ref(subject, "items", *t.Elem)
		}
	default:
		v.report(subject, "unknown value kind %d", int(t.Kind))
	}

	if len(t.Enum) > 0 && t.Kind != KindString {
		v.report(subject, "enumeration declared on %s value", t.Kind)
	}

	seen := make(map[string]bool)

	for _, e := range t.Enum {
		if seen[e.Value] {
			v.report(subject, "duplicate enumeration value %q", e.Value)
		}

		seen[e.Value] = true
	}

	if len(t.Alternatives) > 0 && t.Kind != KindAny {
		v.report(subject, "alternatives declared on %s value", t.Kind)
	}

	for i, alt := range t.Alternatives {
		where := fmt.Sprintf("alternative %d", i)
		v.ref(subject, where, alt)

		if alt.IsExpression() {
			v.report(subject, "%s: literal alternative refers to %s '%s'", where, alt.Class, alt.Name)
		}
	}
}

func (v *validator) operator(op *Operator) {
	subject := op.Name

	if op.Wire == "" {
		v.report(subject, "operator has no wire name")
	}

	names := make(map[string]bool)

	for _, operand := range op.AllOperands() {
		if operand.Name == "" {
			v.report(subject, "operand without a name")
		} else if names[operand.Name] {
			v.report(subject, "duplicate operand name '%s'", operand.Name)
		}

		names[operand.Name] = true
		v.ref(subject, "operand "+operand.Name, operand.Type)
	}

	walkSlots(op.Slots, func(s Slot) {
		switch s.Kind {
		case SlotConst, SlotOperand:
			if s.Kind == SlotOperand && s.Operand == nil {
				v.report(subject, "operand slot without an operand")
			}
		case SlotGroup:
			if len(s.Group) == 0 {
				v.report(subject, "empty flattened group")
			}
		default:
			v.report(subject, "unknown slot kind %d", int(s.Kind))
		}
	})

	if op.MinRest < 0 {
		v.report(subject, "negative variadic minimum %d", op.MinRest)
	}

	if op.MinRest > 0 && op.Rest == nil {
		v.report(subject, "variadic minimum %d without a variadic operand", op.MinRest)
	}

	operands := op.AllOperands()

	if op.Keyed {
		if len(operands) != 1 || op.Rest != nil {
			v.report(subject, "keyed operator must have exactly one operand, has %d", len(operands))
		}

		if op.HasGroups() {
			v.report(subject, "keyed operator cannot have flattened groups")
		}
	}

	switch op.Class {
	case Comparison:
		for _, operand := range operands {
			if v.model.ContainsExpression(operand.Type) {
				v.report(subject, "comparison operand '%s' takes an expression", operand.Name)
			}
		}
	case Combinator:
		if len(operands) == 0 {
			v.report(subject, "combinator has no operands")
		} else if !slices.ContainsFunc(operands, func(o *Operand) bool { return v.model.ContainsExpression(o.Type) }) {
			v.report(subject, "combinator has no expression operand")
		}
	default:
		v.report(subject, "operator is neither a comparison nor a combinator")
	}
}

func (v *validator) union(u *Union) {
	if len(u.Members) == 0 {
		v.report(u.Name, "union has no members")
	}

	seen := make(map[string]bool)

	for i, member := range u.Members {
		v.ref(u.Name, fmt.Sprintf("member %d", i), member)

		if member.Name == "" {
			continue
		}

		if seen[member.Name] {
			v.report(u.Name, "duplicate member '%s'", member.Name)
		}

		seen[member.Name] = true
	}
}

func (v *validator) entry(role string, e Entry) {
	subject := "entry " + role

	if e.Name == "" {
		v.report(subject, "entry point has no schema")
		return
	}

	if !e.Root.IsExpression() {
		v.report(subject, "entry point '%s' is a %s, not an expression", e.Name, e.Root.Class)
		return
	}

	if !v.model.Has(e.Root) {
		v.report(subject, "entry point '%s' is not declared", e.Name)
		return
	}

	reachable := v.model.Reachable(e.Root)
	if len(reachable) == 0 {
		v.report(subject, "entry point '%s' reaches no operator", e.Name)
	}

	for _, name := range e.Operators {
		if _, ok := v.model.Operators[name]; !ok {
			v.report(subject, "lists undeclared operator '%s'", name)
		}
	}
}
