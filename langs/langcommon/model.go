package langcommon

import (
	"slices"

	"github.com/turbopuffer/apigen/grammar"
)

// Operators returns the declared operators in name order. Droppable variants are
// left out when the target cannot give them a distinct shape.
func Operators(m *grammar.Model, keepDroppable bool) []*grammar.Operator {
	var out []*grammar.Operator

	for _, name := range m.OperatorNames() {
		op := m.Operators[name]
		if op.Droppable && !keepDroppable {
			continue
		}

		out = append(out, op)
	}

	return out
}

// Members returns the names of a union's direct expression members, skipping
// dropped variants
func Members(m *grammar.Model, u *grammar.Union, keepDroppable bool) []string {
	var out []string

	for _, member := range u.Members {
		if !member.IsExpression() || slices.Contains(out, member.Name) {
			continue
		}

		if op, ok := m.Operators[member.Name]; ok && op.Droppable && !keepDroppable {
			continue
		}

		out = append(out, member.Name)
	}

	return out
}

// Parents maps every operator or union name to the unions listing it directly, in name order
func Parents(m *grammar.Model, keepDroppable bool) map[string][]string {
	parents := make(map[string][]string)

	for _, name := range m.UnionNames() {
		for _, member := range Members(m, m.Unions[name], keepDroppable) {
			parents[member] = append(parents[member], name)
		}
	}

	return parents
}

// Operand is one constructor parameter of an operator
type Operand struct {
	Name     string // Parameter name in the target language
	WireName string // Operand name as declared
	Type     grammar.TypeRef
	Rest     bool
}

// Parameters lists the constructor parameters of an operator in wire order, the
// variadic tail last, with names converted by rename.
func Parameters(op *grammar.Operator, rename func(string) string) []Operand {
	var out []Operand

	for _, o := range op.Operands() {
		out = append(out, Operand{Name: rename(o.Name), WireName: o.Name, Type: o.Type})
	}

	if op.Rest != nil {
		out = append(out, Operand{Name: rename(op.Rest.Name), WireName: op.Rest.Name, Type: op.Rest.Type, Rest: true})
	}

	return out
}

// Element is one position of an operator's wire array
type Element struct {
	Const   *string  // Constant string, when the position holds one
	Operand *Operand // Operand, when the position holds one
	Group   []Element
}

// Elements lays out the fixed wire positions of a tuple operator, naming operands
// with rename. The variadic tail is not included.
func Elements(op *grammar.Operator, rename func(string) string) []Element {
	return elements(op.Slots, rename)
}

func elements(slots []grammar.Slot, rename func(string) string) []Element {
	out := make([]Element, 0, len(slots))

	for _, s := range slots {
		switch s.Kind {
		case grammar.SlotConst:
			out = append(out, Element{Const: &s.Const})
		case grammar.SlotOperand:
			out = append(out, Element{Operand: &Operand{Name: rename(s.Operand.Name), WireName: s.Operand.Name, Type: s.Operand.Type}})
		case grammar.SlotGroup:
			out = append(out, Element{Group: elements(s.Group, rename)})
		}
	}

	return out
}
