package grammar

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Node is one expression instance: a *Literal, a *FieldRef or a *Call.
type Node interface {
	fmt.Stringer
	node()
}

// Literal is a constant value. Value holds a string, a decimal.Decimal, a bool,
// nil, a []Node for vectors, or decoded JSON for untyped values.
type Literal struct {
	Kind  Kind
	Value any
}

// FieldRef names an attribute of the records an expression is evaluated against
type FieldRef struct {
	Name string
}

// Call applies an operator to ordered arguments. Arguments of flattened groups
// and variadic tails are listed flat, in wire order.
type Call struct {
	Operator string
	Args     []Node
}

func (*Literal) node()  {}
func (*FieldRef) node() {}
func (*Call) node()     {}

// String returns a string literal
func String(v string) *Literal {
	return &Literal{Kind: KindString, Value: v}
}

// Number returns a number literal
func Number(v decimal.Decimal) *Literal {
	return &Literal{Kind: KindNumber, Value: v}
}

// Int returns an integral number literal
func Int(v int64) *Literal {
	return Number(decimal.NewFromInt(v))
}

// Bool returns a boolean literal
func Bool(v bool) *Literal {
	return &Literal{Kind: KindBoolean, Value: v}
}

// Null returns the null literal
func Null() *Literal {
	return &Literal{Kind: KindNull}
}

// Vector returns a vector literal
func Vector(items ...Node) *Literal {
	return &Literal{Kind: KindVector, Value: items}
}

// Field returns a field reference
func Field(name string) *FieldRef {
	return &FieldRef{Name: name}
}

// NewCall returns a call node
func NewCall(operator string, args ...Node) *Call {
	return &Call{Operator: operator, Args: args}
}

// String renders the literal in call notation
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case decimal.Decimal:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []Node:
		return "[" + joinNodes(v) + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// String renders the reference bare when it reads as an identifier, as @"name" otherwise
func (f *FieldRef) String() string {
	if IsBareField(f.Name) {
		return f.Name
	}

	return "@" + strconv.Quote(f.Name)
}

// IsBareField reports whether a field name can be written without quoting in call notation
func IsBareField(name string) bool {
	switch name {
	case "", "true", "false", "null":
		return false
	}

	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && (r == '.' || r == '-' || unicode.IsDigit(r)):
		default:
			return false
		}
	}

	return true
}

func (c *Call) String() string {
	return c.Operator + "(" + joinNodes(c.Args) + ")"
}

func joinNodes(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}

	return strings.Join(parts, ", ")
}
