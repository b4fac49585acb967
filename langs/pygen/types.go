package pygen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

var keywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally", "for",
	"from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not", "or",
	"pass", "raise", "return", "try", "while", "with", "yield",
}

var pythonKeywords = langcommon.Reserved(keywords...)

// moduleNames are taken at module level by keywords, imports and helpers
var moduleNames = langcommon.Reserved(append([]string{
	"annotations", "dataclass", "json", "serialize", "tuple", "len",
	"Any", "List", "Literal", "Tuple", "Union",
}, keywords...)...)

// typeMapper converts grammar types to Python type hints and records the
// typing names it used
type typeMapper struct {
	typing map[string]bool
}

func newTypeMapper() *typeMapper {
	return &typeMapper{typing: make(map[string]bool)}
}

// hint returns the type hint for a reference. Declared names are quoted when
// the hint is evaluated at import time rather than inside an annotation.
func (t *typeMapper) hint(ref grammar.TypeRef, evaluated bool) (string, error) {
	if ref.Name != "" {
		if evaluated {
			return fmt.Sprintf("%q", ref.Name), nil
		}

		return ref.Name, nil
	}

	return t.valueHint(ref.Value, evaluated)
}

func (t *typeMapper) valueHint(v *grammar.ValueType, evaluated bool) (string, error) {
	switch v.Kind {
	case grammar.KindString, grammar.KindFieldRef:
		if len(v.Enum) == 0 {
			return "str", nil
		}

		values := make([]string, len(v.Enum))
		for i, e := range v.Enum {
			values[i] = langcommon.QuoteJSON(e.Value)
		}

		t.typing["Literal"] = true

		return "Literal[" + strings.Join(values, ", ") + "]", nil
	case grammar.KindNumber:
		if v.Integer {
			return "int", nil
		}

		return "float", nil
	case grammar.KindBoolean:
		return "bool", nil
	case grammar.KindNull:
		return "None", nil
	case grammar.KindVector:
		elem, err := t.hint(*v.Elem, evaluated)
		if err != nil {
			return "", err
		}

		t.typing["List"] = true

		return "List[" + elem + "]", nil
	case grammar.KindAny:
		if len(v.Alternatives) == 0 {
			t.typing["Any"] = true
			return "Any", nil
		}

		alternatives := make([]string, len(v.Alternatives))

		for i, alt := range v.Alternatives {
			hint, err := t.hint(alt, evaluated)
			if err != nil {
				return "", err
			}

			alternatives[i] = hint
		}

		t.typing["Union"] = true

		return "Union[" + strings.Join(alternatives, ", ") + "]", nil
	}

	return "", langcommon.Unsupported(apigen.TargetPython, v.Name, "value kind %s", v.Kind)
}

// imports returns the typing names used so far, sorted
func (t *typeMapper) imports() []string {
	var names []string

	for name := range t.typing {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

func newNamer() *langcommon.Namer {
	return langcommon.NewNamer(langcommon.SnakeCase, pythonKeywords)
}
