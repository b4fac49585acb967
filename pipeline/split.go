package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"regexp"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/langs/langcommon"
)

var markerLine = regexp.MustCompile(`^(\S+) @@ apigen target=(\S+) file=(.+?) @@$`)

// Marker returns the line announcing a unit in a combined stream
// Example: "// @@ apigen target=go file=expressions.go @@"
func Marker(unit *langcommon.Unit) string {
	return fmt.Sprintf("%s @@ apigen target=%s file=%s @@", unit.Comment, unit.Target, unit.Filename)
}

// Split reads a combined stream written by Run back into its units.
// Text before the first marker is ignored.
func Split(r io.Reader) ([]*langcommon.Unit, error) {
	var (
		units   []*langcommon.Unit
		current *langcommon.Unit
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if match := markerLine.FindStringSubmatch(line); match != nil {
			current = &langcommon.Unit{Comment: match[1], Target: apigen.Target(match[2]), Filename: match[3]}
			units = append(units, current)

			continue
		}

		if current != nil {
			current.Content = append(current.Content, line...)
			current.Content = append(current.Content, '\n')
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read combined output: %w", err)
	}

	return units, nil
}
