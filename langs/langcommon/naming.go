package langcommon

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers keep state between calls, so each conversion makes its own.
func title(s string) string { return cases.Title(language.Und, cases.NoLower).String(s) }
func lower(s string) string { return cases.Lower(language.Und).String(s) }
func upper(s string) string { return cases.Upper(language.Und).String(s) }

// Words splits an identifier into its words.
// Separators are any non-alphanumeric runes; case changes start a new word,
// keeping acronyms such as "BM25" or "HTTP" in one piece.
// Example: "RankByTextBM25" -> ["Rank", "By", "Text", "BM25"], "$ref_new" -> ["ref", "new"]
func Words(s string) []string {
	var (
		words   []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}

	runes := []rune(s)

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}

		if unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextIsLower) {
				flush()
			}
		}

		current = append(current, r)
	}

	flush()

	return words
}

// PascalCase joins the words of s with each one capitalized
// Example: "attribute_order" -> "AttributeOrder"
func PascalCase(s string) string {
	var b strings.Builder

	for _, w := range Words(s) {
		b.WriteString(title(w))
	}

	return b.String()
}

// CamelCase is PascalCase with the first word lowercased
// Example: "RankByTextBM25" -> "rankByTextBM25"
func CamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString(lower(words[0]))

	for _, w := range words[1:] {
		b.WriteString(title(w))
	}

	return b.String()
}

// SnakeCase joins the lowercased words of s with underscores
// Example: "FilterComparisonEq" -> "filter_comparison_eq"
func SnakeCase(s string) string {
	return lower(strings.Join(Words(s), "_"))
}

// ScreamingSnakeCase joins the uppercased words of s with underscores
// Example: "AttributeOrderAscending" -> "ATTRIBUTE_ORDER_ASCENDING"
func ScreamingSnakeCase(s string) string {
	return upper(strings.Join(Words(s), "_"))
}

// Escape appends an underscore to names the target language reserves
func Escape(name string, reserved map[string]bool) string {
	if reserved[name] {
		return name + "_"
	}

	return name
}

// Reserved builds a reserved-word set
func Reserved(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}

	return set
}

// QuoteJSON renders s as a JSON string literal, which is also a valid string
// literal in Python, TypeScript and Java.
func QuoteJSON(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	// Encoding a string cannot fail.
	_ = enc.Encode(s)

	return strings.TrimSuffix(buf.String(), "\n")
}

// CommentLines splits a description into lines for a doc comment, dropping
// trailing blank lines.
func CommentLines(description string) []string {
	lines := strings.Split(strings.TrimRight(description, " \t\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}

	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return lines
}

// Indent indents each non-empty line of s by the given number of spaces
func Indent(spaces int, s string) string {
	if s == "" {
		return ""
	}

	indent := strings.Repeat(" ", spaces)
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}

	return strings.Join(lines, "\n")
}
