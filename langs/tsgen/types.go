package tsgen

import (
	"slices"
	"strings"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

var tsKeywords = langcommon.Reserved(
	"await", "break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "enum", "export", "extends", "false",
	"finally", "for", "function", "if", "implements", "import", "in", "instanceof",
	"interface", "let", "new", "null", "package", "private", "protected", "public",
	"return", "static", "super", "switch", "this", "throw", "true", "try", "typeof",
	"var", "void", "while", "with", "yield",
)

func declNames(m *grammar.Model) []string {
	names := append(m.ValueTypeNames(), m.UnionNames()...)
	names = append(names, m.OperatorNames()...)
	slices.Sort(names)

	return names
}

// tsType maps an operand or element type to a TypeScript type expression
func tsType(subject string, ref grammar.TypeRef) (string, error) {
	if ref.Name != "" {
		return ref.Name, nil
	}

	return valueType(subject, ref.Value)
}

// valueType maps the structure of a value type to a TypeScript type expression
func valueType(subject string, v *grammar.ValueType) (string, error) {
	switch v.Kind {
	case grammar.KindString, grammar.KindFieldRef:
		if len(v.Enum) == 0 {
			return "string", nil
		}

		values := make([]string, len(v.Enum))
		for i, e := range v.Enum {
			values[i] = langcommon.QuoteJSON(e.Value)
		}

		return strings.Join(values, " | "), nil
	case grammar.KindNumber:
		return "number", nil
	case grammar.KindBoolean:
		return "boolean", nil
	case grammar.KindNull:
		return "null", nil
	case grammar.KindVector:
		elem, err := tsType(subject, *v.Elem)
		if err != nil {
			return "", err
		}

		return "readonly " + arrayOf(elem), nil
	case grammar.KindAny:
		if len(v.Alternatives) == 0 {
			return "unknown", nil
		}

		alternatives := make([]string, len(v.Alternatives))

		for i, alt := range v.Alternatives {
			typ, err := tsType(subject, alt)
			if err != nil {
				return "", err
			}

			alternatives[i] = typ
		}

		return strings.Join(alternatives, " | "), nil
	}

	return "", langcommon.Unsupported(apigen.TargetTypescript, subject, "value kind %s", v.Kind)
}

// arrayOf returns the array type of elem, parenthesizing unions
// Example: "string | number" -> "(string | number)[]"
func arrayOf(elem string) string {
	if strings.Contains(elem, " | ") || strings.HasPrefix(elem, "readonly ") {
		return "(" + elem + ")[]"
	}

	return elem + "[]"
}

func newNamer() *langcommon.Namer {
	return langcommon.NewNamer(langcommon.CamelCase, tsKeywords)
}
