package langcommon

import (
	"fmt"
	"unicode"
)

// Namer turns the operand names of one operator into distinct identifiers
type Namer struct {
	convert  func(string) string
	reserved map[string]bool
	used     map[string]bool
	index    int
}

// NewNamer returns a Namer converting names with convert and escaping reserved words
func NewNamer(convert func(string) string, reserved map[string]bool) *Namer {
	return &Namer{convert: convert, reserved: reserved, used: make(map[string]bool)}
}

// Name returns the identifier for the next operand. Names that convert to
// nothing usable fall back to their position, f0, f1 and so on.
func (n *Namer) Name(operand string) string {
	name := n.convert(operand)
	if name == "" || unicode.IsDigit([]rune(name)[0]) {
		name = fmt.Sprintf("f%d", n.index)
	}

	name = Escape(name, n.reserved)

	for base, i := name, 2; n.used[name]; i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}

	n.used[name] = true
	n.index++

	return name
}
