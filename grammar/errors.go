package grammar

import (
	"fmt"
	"strings"

	"github.com/turbopuffer/apigen"
)

// UnresolvedReferenceError reports definitions that reference undeclared names
type UnresolvedReferenceError struct {
	Name     string   // First missing name in sorted order
	Referrer string   // First definition referencing Name
	Missing  []string // Every missing name, sorted
}

func (e *UnresolvedReferenceError) Error() string {
	msg := fmt.Sprintf("%s: '%s' referenced by '%s'", apigen.ErrUnresolvedOperatorReference, e.Name, e.Referrer)
	if len(e.Missing) > 1 {
		msg += fmt.Sprintf(" (all missing: %s)", strings.Join(e.Missing, ", "))
	}

	return msg
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return apigen.ErrUnresolvedOperatorReference
}

// CycleError reports one cycle in the definition graph
type CycleError struct {
	Path []string // Cycle members; the first name is repeated at the end
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", apigen.ErrCyclicOperatorDefinition, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return apigen.ErrCyclicOperatorDefinition
}

// Violation is one consistency problem found in a model
type Violation struct {
	Subject string // Definition or entry the problem belongs to
	Message string
}

func (v Violation) String() string {
	return v.Subject + ": " + v.Message
}

// ValidationError carries every violation found by Validate
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %d violation(s)", apigen.ErrInvalidGrammarModel, len(e.Violations))

	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v.String())
	}

	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return apigen.ErrInvalidGrammarModel
}

func malformed(path string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", apigen.ErrSchemaMalformed, path, fmt.Sprintf(format, args...))
}

func invalidExpression(path string, format string, args ...any) error {
	if path == "" {
		path = "$"
	}

	return fmt.Errorf("%w: %s: %s", apigen.ErrInvalidExpression, path, fmt.Sprintf(format, args...))
}
