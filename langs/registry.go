// Package langs maps target names to their emitters.
package langs

import (
	"fmt"

	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/langs/gogen"
	"github.com/turbopuffer/apigen/langs/javagen"
	"github.com/turbopuffer/apigen/langs/langcommon"
	"github.com/turbopuffer/apigen/langs/pygen"
	"github.com/turbopuffer/apigen/langs/tsgen"
)

// New returns the emitter for a target configured with its language options
func New(target apigen.Target, config apigen.LanguageConfig) (langcommon.Emitter, error) {
	switch target {
	case apigen.TargetGo:
		return gogen.New(gogen.WithConfig(config)), nil
	case apigen.TargetPython:
		return pygen.New(pygen.WithConfig(config)), nil
	case apigen.TargetTypescript:
		return tsgen.New(tsgen.WithConfig(config)), nil
	case apigen.TargetJava:
		return javagen.New(javagen.WithConfig(config)), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", apigen.ErrUnknownTarget, target)
	}
}

// Lookup parses a target name and returns its emitter with default options
func Lookup(name string) (langcommon.Emitter, error) {
	target, err := apigen.ParseTarget(name)
	if err != nil {
		return nil, err
	}

	return New(target, apigen.LanguageConfig{})
}

// ForConfig returns the emitters of the configured targets in configured order
func ForConfig(config *apigen.Config) ([]langcommon.Emitter, error) {
	emitters := make([]langcommon.Emitter, 0, len(config.Targets))

	for _, name := range config.Targets {
		target, err := apigen.ParseTarget(name)
		if err != nil {
			return nil, err
		}

		emitter, err := New(target, config.Language(target))
		if err != nil {
			return nil, err
		}

		emitters = append(emitters, emitter)
	}

	return emitters, nil
}
