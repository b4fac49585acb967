package grammar

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/turbopuffer/apigen/openapi"
)

// variantSet is the schema map after inline anyOf variants became named definitions
type variantSet struct {
	schemas   map[string]*openapi.Schema
	droppable map[string]bool
}

// extractVariants names every inline tuple or object member of a top-level anyOf
// and replaces it with a reference. The source map and its nodes are left untouched.
func extractVariants(source map[string]*openapi.Schema) *variantSet {
	set := &variantSet{
		schemas:   maps.Clone(source),
		droppable: make(map[string]bool),
	}

	for _, name := range slices.Sorted(maps.Keys(source)) {
		schema := source[name]
		if schema.AnyOf == nil || !slices.ContainsFunc(schema.AnyOf, isInlineOperator) {
			continue
		}

		union := *schema
		union.AnyOf = make([]*openapi.Schema, len(schema.AnyOf))

		for i, item := range schema.AnyOf {
			if !isInlineOperator(item) {
				union.AnyOf[i] = item
				continue
			}

			base := name + variantSuffix(item)
			variant := base

			for suffix := 2; set.schemas[variant] != nil; suffix++ {
				variant = fmt.Sprintf("%s%d", base, suffix)
			}

			set.schemas[variant] = item
			if item.VariantDropOnConflict {
				set.droppable[variant] = true
			}

			union.AnyOf[i] = &openapi.Schema{
				Ref:   openapi.SchemaRefPrefix + variant,
				Title: item.Title,
			}
		}

		set.schemas[name] = &union
	}

	return set
}

func isInlineOperator(s *openapi.Schema) bool {
	return s.Ref == "" && s.AnyOf == nil && (s.PrefixItems != nil || s.Type == "object")
}

// variantSuffix picks the name part appended to the union name
func variantSuffix(s *openapi.Schema) string {
	if s.VariantName != "" {
		return s.VariantName
	}

	if s.Type == "object" && len(s.Required) == 1 {
		return identifierPart(s.Required[0])
	}

	for _, item := range s.PrefixItems {
		if item.Const != nil {
			return identifierPart(item.ConstValue())
		}
	}

	return "Variant"
}

// identifierPart turns a wire constant such as "ContainsAny" or "$ref_new" into a name part
func identifierPart(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, w := range words {
		b.WriteString(upperFirst(w))
	}

	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}

	return string(unicode.ToUpper(r)) + s[size:]
}
