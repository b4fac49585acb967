package grammar

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind is the leaf type of a literal or field reference
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindBoolean
	KindVector
	KindFieldRef
	KindNull
	KindAny
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindVector:
		return "vector"
	case KindFieldRef:
		return "field"
	case KindNull:
		return "null"
	case KindAny:
		return "any"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// RefClass tells which declared set a TypeRef points into
type RefClass int

const (
	RefValue RefClass = iota + 1
	RefOperator
	RefUnion
)

// String returns the string representation of RefClass
func (c RefClass) String() string {
	switch c {
	case RefValue:
		return "value type"
	case RefOperator:
		return "operator"
	case RefUnion:
		return "union"
	default:
		return fmt.Sprintf("RefClass(%d)", int(c))
	}
}

// TypeRef points at a declared type by name, or carries an anonymous value type.
type TypeRef struct {
	Class RefClass
	Name  string     // Declared name; empty for inline value types
	Value *ValueType // Inline value type; nil for named references
}

// Named returns a reference to a declared type
func Named(class RefClass, name string) TypeRef {
	return TypeRef{Class: class, Name: name}
}

// Inline returns a reference carrying an anonymous value type
func Inline(v *ValueType) TypeRef {
	return TypeRef{Class: RefValue, Value: v}
}

// IsExpression reports whether values of this type are sub-expressions rather than literals
func (r TypeRef) IsExpression() bool {
	return r.Class == RefOperator || r.Class == RefUnion
}

// IsInline reports whether the reference carries its own value type
func (r TypeRef) IsInline() bool {
	return r.Name == "" && r.Value != nil
}

func (r TypeRef) String() string {
	if r.Name != "" {
		return r.Name
	}

	if r.Value != nil {
		return r.Value.String()
	}

	return "<empty>"
}

// EnumValue is one allowed constant of a string enumeration
type EnumValue struct {
	Value string
	Title string // Optional identifier override for targets that name constants
}

// ValueType describes a literal: primitive, vector, enumeration or untyped value.
type ValueType struct {
	Name         string // Empty for inline value types
	Kind         Kind
	Width        int         // Numbers only: 0 (unspecified), 32 or 64
	Integer      bool        // Numbers only
	Enum         []EnumValue // Strings only: allowed constants
	Elem         *TypeRef    // Vectors only
	Alternatives []TypeRef   // Any only: accepted alternatives, empty means unrestricted
	Description  string
}

func (v *ValueType) String() string {
	switch {
	case v.Name != "":
		return v.Name
	case v.Kind == KindVector && v.Elem != nil:
		return "[]" + v.Elem.String()
	case len(v.Enum) > 0:
		values := make([]string, len(v.Enum))
		for i, e := range v.Enum {
			values[i] = fmt.Sprintf("%q", e.Value)
		}

		return fmt.Sprintf("enum(%s)", strings.Join(values, ", "))
	case v.Kind == KindNumber && v.Integer:
		return "integer"
	case v.Kind == KindNumber && v.Width != 0:
		return fmt.Sprintf("number%d", v.Width)
	default:
		return v.Kind.String()
	}
}

// OperatorClass partitions operators into comparisons and combinators
type OperatorClass int

const (
	// Comparison operators take only literals and field references.
	Comparison OperatorClass = iota + 1
	// Combinator operators take at least one sub-expression.
	Combinator
)

func (c OperatorClass) String() string {
	switch c {
	case Comparison:
		return "comparison"
	case Combinator:
		return "combinator"
	default:
		return fmt.Sprintf("OperatorClass(%d)", int(c))
	}
}

// Arity summarizes how many operands an operator takes
type Arity int

const (
	Nullary Arity = iota
	Unary
	Binary
	Nary
	Variadic
)

func (a Arity) String() string {
	switch a {
	case Nullary:
		return "nullary"
	case Unary:
		return "unary"
	case Binary:
		return "binary"
	case Nary:
		return "n-ary"
	case Variadic:
		return "variadic"
	default:
		return fmt.Sprintf("Arity(%d)", int(a))
	}
}

// SlotKind identifies a position inside an operator's wire array
type SlotKind int

const (
	SlotConst SlotKind = iota + 1
	SlotOperand
	SlotGroup
)

// Slot is one element of an operator's wire array. Groups nest as an inner array
// on the wire while their operands are passed flat to constructors.
type Slot struct {
	Kind    SlotKind
	Const   string
	Operand *Operand
	Group   []Slot
}

// Operand is a typed, named argument position
type Operand struct {
	Name string
	Type TypeRef
}

// Operator is a named, fixed-shape function symbol of the grammar
type Operator struct {
	Name        string // Declared schema name, unique in the model
	Wire        string // Name written as the first wire constant, or the key of a keyed operator
	Keyed       bool   // Serialized as a single-key object instead of an array
	Slots       []Slot
	Rest        *Operand // Variadic tail appended after the slots
	MinRest     int      // Minimum number of tail operands
	Class       OperatorClass
	Droppable   bool // Targets that require named variants may omit this operator
	Description string
}

// Operands returns the fixed operands in wire order, flattening groups
func (o *Operator) Operands() []*Operand {
	var out []*Operand

	walkSlots(o.Slots, func(s Slot) {
		if s.Kind == SlotOperand {
			out = append(out, s.Operand)
		}
	})

	return out
}

// AllOperands returns the fixed operands followed by the rest operand, if any
func (o *Operator) AllOperands() []*Operand {
	out := o.Operands()
	if o.Rest != nil {
		out = append(out, o.Rest)
	}

	return out
}

// Arity classifies the operator by operand count
func (o *Operator) Arity() Arity {
	if o.Rest != nil {
		return Variadic
	}

	switch n := len(o.Operands()); n {
	case 0:
		return Nullary
	case 1:
		return Unary
	case 2:
		return Binary
	default:
		return Nary
	}
}

// HasGroups reports whether any slot is a flattened group
func (o *Operator) HasGroups() bool {
	return slices.ContainsFunc(o.Slots, func(s Slot) bool { return s.Kind == SlotGroup })
}

func walkSlots(slots []Slot, fn func(Slot)) {
	for _, s := range slots {
		fn(s)

		if s.Kind == SlotGroup {
			walkSlots(s.Group, fn)
		}
	}
}

// Union is a grammar nonterminal: an expression of any member type
type Union struct {
	Name        string
	Members     []TypeRef
	Description string
}

// Entry is one of the grammar's two entry points
type Entry struct {
	Name      string   // Entry schema name
	Root      TypeRef  // Type of a complete expression
	Operators []string // Operators reachable from Root, sorted
}

// Model is the language-neutral grammar IR. It is immutable once built and
// shared read-only by all emitters.
type Model struct {
	ValueTypes map[string]*ValueType
	Operators  map[string]*Operator
	Unions     map[string]*Union
	Order      []string // Definition order: every definition follows the definitions it depends on
	Filter     Entry
	RankBy     Entry
}

// Entries returns filter and rank_by in that order
func (m *Model) Entries() []Entry {
	return []Entry{m.Filter, m.RankBy}
}

// LookupEntry finds an entry by its role ("filter", "rank_by") or its schema name
func (m *Model) LookupEntry(name string) (Entry, bool) {
	switch name {
	case "filter", m.Filter.Name:
		return m.Filter, true
	case "rank_by", m.RankBy.Name:
		return m.RankBy, true
	}

	return Entry{}, false
}

// ValueType resolves a value type reference, returning nil when it is not a declared value type
func (m *Model) ValueType(ref TypeRef) *ValueType {
	if ref.Value != nil {
		return ref.Value
	}

	if ref.Class != RefValue {
		return nil
	}

	return m.ValueTypes[ref.Name]
}

// Has reports whether a named reference resolves in the declared set of its class
func (m *Model) Has(ref TypeRef) bool {
	if ref.Name == "" {
		return ref.Value != nil
	}

	switch ref.Class {
	case RefValue:
		_, ok := m.ValueTypes[ref.Name]
		return ok
	case RefOperator:
		_, ok := m.Operators[ref.Name]
		return ok
	case RefUnion:
		_, ok := m.Unions[ref.Name]
		return ok
	default:
		return false
	}
}

// OperatorNames returns every operator name in sorted order
func (m *Model) OperatorNames() []string {
	return slices.Sorted(maps.Keys(m.Operators))
}

// UnionNames returns every union name in sorted order
func (m *Model) UnionNames() []string {
	return slices.Sorted(maps.Keys(m.Unions))
}

// ValueTypeNames returns every named value type in sorted order
func (m *Model) ValueTypeNames() []string {
	return slices.Sorted(maps.Keys(m.ValueTypes))
}

// Leaves returns the operators an expression of the given type may be, in
// declaration order with nested unions expanded. Unknown names are skipped.
func (m *Model) Leaves(ref TypeRef) []*Operator {
	var out []*Operator

	seen := make(map[string]bool)

	var visit func(TypeRef)

	visit = func(r TypeRef) {
		if seen[r.Name] {
			return
		}

		seen[r.Name] = true

		switch r.Class {
		case RefOperator:
			if op, ok := m.Operators[r.Name]; ok {
				out = append(out, op)
			}
		case RefUnion:
			if u, ok := m.Unions[r.Name]; ok {
				for _, member := range u.Members {
					visit(member)
				}
			}
		}
	}

	if ref.IsExpression() {
		visit(ref)
	}

	return out
}

// ValueMembers returns the value-type members of a union, expanding nested unions
func (m *Model) ValueMembers(ref TypeRef) []TypeRef {
	var out []TypeRef

	seen := make(map[string]bool)

	var visit func(TypeRef)

	visit = func(r TypeRef) {
		switch r.Class {
		case RefValue:
			out = append(out, r)
		case RefUnion:
			if seen[r.Name] {
				return
			}

			seen[r.Name] = true

			if u, ok := m.Unions[r.Name]; ok {
				for _, member := range u.Members {
					visit(member)
				}
			}
		}
	}

	visit(ref)

	return out
}

// Reachable returns the sorted names of every operator reachable from ref
func (m *Model) Reachable(ref TypeRef) []string {
	found := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(TypeRef)

	visit = func(r TypeRef) {
		if r.Name != "" {
			key := r.Class.String() + ":" + r.Name
			if visited[key] {
				return
			}

			visited[key] = true
		}

		switch r.Class {
		case RefOperator:
			op, ok := m.Operators[r.Name]
			if !ok {
				return
			}

			found[op.Name] = true

			for _, operand := range op.AllOperands() {
				visit(operand.Type)
			}
		case RefUnion:
			if u, ok := m.Unions[r.Name]; ok {
				for _, member := range u.Members {
					visit(member)
				}
			}
		case RefValue:
			v := m.ValueType(r)
			if v == nil {
				return
			}

			if v.Elem != nil {
				visit(*v.Elem)
			}

			for _, alt := range v.Alternatives {
				visit(alt)
			}
		}
	}

	visit(ref)

	return slices.Sorted(maps.Keys(found))
}

// ContainsExpression reports whether a value of this type can carry sub-expressions
func (m *Model) ContainsExpression(ref TypeRef) bool {
	return m.containsExpression(ref, make(map[string]bool))
}

func (m *Model) containsExpression(ref TypeRef, seen map[string]bool) bool {
	if ref.IsExpression() {
		return true
	}

	if ref.Name != "" {
		if seen[ref.Name] {
			return false
		}

		seen[ref.Name] = true
	}

	v := m.ValueType(ref)
	if v == nil {
		return false
	}

	if v.Elem != nil && m.containsExpression(*v.Elem, seen) {
		return true
	}

	for _, alt := range v.Alternatives {
		if m.containsExpression(alt, seen) {
			return true
		}
	}

	return false
}
