package testhelper

import (
	"regexp"
	"strings"
	"testing"
)

var (
	whiteSpaces   = regexp.MustCompile(`(\s+)`)
	leadingIndent = regexp.MustCompile(`^[ \t]*`)
)

// TrimIndent strips the first line and the indentation of the second line from
// every line, so expected source can be written inline in a raw string.
func TrimIndent(t *testing.T, src string) string {
	t.Helper()

	lines := strings.Split(src, "\n")

	var indent string
	if len(lines) > 1 {
		indent = leadingIndent.FindString(lines[1])
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	if last := len(lines) - 1; strings.TrimSpace(lines[last]) == "" {
		lines[last] = ""
	}

	return strings.Join(lines[1:], "\n")
}

// Squash collapses every run of white space into one space, so generated
// source can be matched without depending on alignment or line breaks.
func Squash(src string) string {
	return strings.TrimSpace(whiteSpaces.ReplaceAllString(src, " "))
}
