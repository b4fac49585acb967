package apigen

import (
	"fmt"
	"slices"
)

// Target represents a supported output language
// This type is shared across all packages
type Target string

const (
	TargetGo         Target = "go"
	TargetPython     Target = "python"
	TargetTypescript Target = "typescript"
	TargetJava       Target = "java"
)

// KnownTargets lists every target in the default emission order.
var KnownTargets = []Target{TargetGo, TargetPython, TargetTypescript, TargetJava}

// ParseTarget converts a configured name into a Target.
func ParseTarget(name string) (Target, error) {
	t := Target(name)
	if !slices.Contains(KnownTargets, t) {
		return "", fmt.Errorf("%w: '%s': must be one of go, python, typescript, java", ErrUnknownTarget, name)
	}

	return t, nil
}

func (t Target) String() string {
	return string(t)
}
