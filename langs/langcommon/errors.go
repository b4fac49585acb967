package langcommon

import (
	"fmt"

	"github.com/turbopuffer/apigen"
)

// UnsupportedShapeError reports a model construct a target cannot represent
type UnsupportedShapeError struct {
	Target  apigen.Target
	Subject string // Declared name the construct belongs to
	Reason  string
}

func (e *UnsupportedShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %s", apigen.ErrUnsupportedOperatorShape, e.Target, e.Subject, e.Reason)
}

func (e *UnsupportedShapeError) Unwrap() error {
	return apigen.ErrUnsupportedOperatorShape
}

// Unsupported builds an UnsupportedShapeError
func Unsupported(target apigen.Target, subject, format string, args ...any) error {
	return &UnsupportedShapeError{Target: target, Subject: subject, Reason: fmt.Sprintf(format, args...)}
}
