package pygen

import (
	"strings"
	"text/template"

	"github.com/turbopuffer/apigen/langs/langcommon"
)

// getTemplateFuncs returns the function map for the Python template
func getTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"join":      strings.Join,
		"quote":     langcommon.QuoteJSON,
		"comment":   comment,
		"docstring": docstring,
	}
}

// comment renders one line of a # comment
func comment(line string) string {
	if line == "" {
		return "#"
	}

	return "# " + line
}

// docstring joins description lines for a class docstring indented by four spaces
// Example: ["A filter.", "", "More."] -> "A filter.\n\n    More."
func docstring(lines []string) string {
	indented := make([]string, len(lines))

	for i, line := range lines {
		if i > 0 && line != "" {
			line = "    " + line
		}

		indented[i] = line
	}

	return strings.ReplaceAll(strings.Join(indented, "\n"), `"""`, `\"\"\"`)
}
