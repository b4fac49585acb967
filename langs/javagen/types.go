package javagen

import (
	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

var javaKeywords = []string{
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "false", "final", "finally", "float", "for", "goto", "if",
	"implements", "import", "instanceof", "int", "interface", "long", "native",
	"new", "null", "package", "private", "protected", "public", "record", "return",
	"sealed", "short", "static", "strictfp", "super", "switch", "synchronized",
	"this", "throw", "throws", "transient", "true", "try", "var", "void",
	"volatile", "while", "yield",
}

// componentNames excludes the methods every record already declares
var componentNames = langcommon.Reserved(append([]string{
	"equals", "getClass", "hashCode", "notify", "notifyAll", "toString", "toWire", "wait",
}, javaKeywords...)...)

// methodNames excludes the helpers the wrapper class declares
var methodNames = langcommon.Reserved(append([]string{
	"toJson", "tuple", "tupleWithRest", "writeJson", "writeString",
}, javaKeywords...)...)

// javaType maps an operand type to a boxed Java type. Value types other than
// enumerations resolve to their structure.
func javaType(m *grammar.Model, subject string, ref grammar.TypeRef) (string, error) {
	switch {
	case ref.IsExpression():
		return ref.Name, nil
	case ref.Name != "":
		v := m.ValueTypes[ref.Name]
		if isEnum(v) {
			return v.Name, nil
		}

		return structuralType(m, subject, v)
	default:
		return structuralType(m, subject, ref.Value)
	}
}

func structuralType(m *grammar.Model, subject string, v *grammar.ValueType) (string, error) {
	switch v.Kind {
	case grammar.KindString, grammar.KindFieldRef:
		return "String", nil
	case grammar.KindNumber:
		if v.Integer {
			return "Long", nil
		}

		return "Double", nil
	case grammar.KindBoolean:
		return "Boolean", nil
	case grammar.KindNull:
		return "", langcommon.Unsupported(apigen.TargetJava, subject, "standalone null type")
	case grammar.KindVector:
		elem, err := javaType(m, subject, *v.Elem)
		if err != nil {
			return "", err
		}

		return "List<" + elem + ">", nil
	case grammar.KindAny:
		return "Object", nil
	}

	return "", langcommon.Unsupported(apigen.TargetJava, subject, "value kind %s", v.Kind)
}

func isEnum(v *grammar.ValueType) bool {
	return v != nil && v.Name != "" && v.Kind == grammar.KindString && len(v.Enum) > 0
}

func newNamer() *langcommon.Namer {
	return langcommon.NewNamer(langcommon.CamelCase, componentNames)
}
