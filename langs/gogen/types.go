package gogen

import (
	"slices"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

var goKeywords = langcommon.Reserved(
	"break", "case", "chan", "const", "continue", "default", "defer", "else",
	"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
	"map", "package", "range", "return", "select", "struct", "switch", "type", "var",
	// Predeclared names that would shadow types used in constructor signatures
	"any", "bool", "error", "float32", "float64", "int64", "string",
)

// declNames returns every declared name in sorted order
func declNames(m *grammar.Model) []string {
	names := append(m.ValueTypeNames(), m.UnionNames()...)
	names = append(names, m.OperatorNames()...)
	slices.Sort(names)

	return names
}

// goType maps an operand or element type to Go source
func goType(subject string, ref grammar.TypeRef) (string, error) {
	if ref.Name != "" {
		return ref.Name, nil
	}

	return goValueType(subject, ref.Value)
}

// goValueType maps the structure of a value type to Go source
func goValueType(subject string, v *grammar.ValueType) (string, error) {
	switch v.Kind {
	case grammar.KindString, grammar.KindFieldRef:
		if len(v.Enum) > 0 {
			return "", langcommon.Unsupported(apigen.TargetGo, subject, "inline enumeration %s", v)
		}

		return "string", nil
	case grammar.KindNumber:
		if v.Integer {
			return "int64", nil
		}

		switch v.Width {
		case 32:
			return "float32", nil
		case 0, 64:
			return "float64", nil
		default:
			return "", langcommon.Unsupported(apigen.TargetGo, subject, "number width %d", v.Width)
		}
	case grammar.KindBoolean:
		return "bool", nil
	case grammar.KindNull:
		return "", langcommon.Unsupported(apigen.TargetGo, subject, "standalone null type")
	case grammar.KindVector:
		elem, err := goType(subject, *v.Elem)
		if err != nil {
			return "", err
		}

		return "[]" + elem, nil
	case grammar.KindAny:
		return "any", nil
	}

	return "", langcommon.Unsupported(apigen.TargetGo, subject, "value kind %s", v.Kind)
}

func newFieldNamer() *langcommon.Namer {
	return langcommon.NewNamer(langcommon.CamelCase, goKeywords)
}
