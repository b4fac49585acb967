// Package langcommon holds what every target emitter shares: the emission unit,
// the emitter contract, identifier casing and the unsupported-shape error.
package langcommon

import (
	"github.com/turbopuffer/apigen"
	"github.com/turbopuffer/apigen/grammar"
)

// Unit is the complete source text produced for one target
type Unit struct {
	Target   apigen.Target
	Filename string // Suggested file name
	Comment  string // Line comment prefix of the target language
	Content  []byte
}

// Emitter renders a validated grammar model into one target language
type Emitter interface {
	Target() apigen.Target
	Emit(m *grammar.Model) (*Unit, error)
}

// GeneratedHeader is the first line of every emitted unit
const GeneratedHeader = "Code generated by apigen. DO NOT EDIT."
