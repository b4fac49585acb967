package javagen

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/turbopuffer/apigen/langs/langcommon"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// docLines renders a CommonMark description as javadoc HTML lines. The first
// paragraph loses its <p> tags because javadoc takes it as the summary.
func docLines(description string) []string {
	if strings.TrimSpace(description) == "" {
		return nil
	}

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(description), &buf); err != nil {
		return langcommon.CommentLines(description)
	}

	html := buf.String()

	if rest, ok := strings.CutPrefix(html, "<p>"); ok {
		if end := strings.Index(rest, "</p>"); end >= 0 {
			html = rest[:end] + rest[end+len("</p>"):]
		}
	}

	// Keep descriptions from closing the comment early.
	html = strings.ReplaceAll(html, "*/", "*&#47;")

	return langcommon.CommentLines(html)
}
