package openapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/turbopuffer/apigen"
)

// Options selects the grammar schemas inside a document
type Options struct {
	TypePrefixes []string // Schema name prefixes belonging to the grammar
	Filter       string   // Entry schema name for filter expressions
	RankBy       string   // Entry schema name for rank_by expressions
}

// DefaultOptions returns the options matching the default configuration
func DefaultOptions() Options {
	return Options{
		TypePrefixes: apigen.DefaultTypePrefixes,
		Filter:       "Filter",
		RankBy:       "RankBy",
	}
}

// OptionsFromConfig converts the grammar section of the configuration
func OptionsFromConfig(config apigen.GrammarConfig) Options {
	return Options{
		TypePrefixes: config.TypePrefixes,
		Filter:       config.Filter,
		RankBy:       config.RankBy,
	}
}

// GrammarSchema is the isolated set of schemas describing filter and rank_by expressions
type GrammarSchema struct {
	Schemas map[string]*Schema
	Filter  string
	RankBy  string
}

// Names returns the grammar schema names in sorted order
func (g *GrammarSchema) Names() []string {
	return sortedKeys(g.Schemas)
}

// Extract isolates the grammar schemas from the document.
// Schemas whose names carry one of the prefixes are the roots; every schema they
// reference is pulled in as well. All other document content is ignored.
func Extract(doc *Document, opts Options) (*GrammarSchema, error) {
	if doc == nil || !doc.hasComponents {
		return nil, fmt.Errorf("%w: no components.schemas in specification document", apigen.ErrSchemaNotFound)
	}

	var queue []string

	for _, name := range doc.SchemaNames() {
		if hasAnyPrefix(name, opts.TypePrefixes) {
			queue = append(queue, name)
		}
	}

	if len(queue) == 0 {
		return nil, fmt.Errorf("%w: no schemas with prefixes %s", apigen.ErrSchemaNotFound, strings.Join(opts.TypePrefixes, ", "))
	}

	for _, entry := range []string{opts.Filter, opts.RankBy} {
		if doc.HasSchema(entry) && !slices.Contains(queue, entry) {
			queue = append(queue, entry)
		}
	}

	grammar := &GrammarSchema{
		Schemas: make(map[string]*Schema),
		Filter:  opts.Filter,
		RankBy:  opts.RankBy,
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if _, done := grammar.Schemas[name]; done {
			continue
		}

		// References to undeclared names are reported by the model builder.
		if !doc.HasSchema(name) {
			continue
		}

		schema, err := doc.decodeSchema(name)
		if err != nil {
			return nil, err
		}

		grammar.Schemas[name] = schema
		queue = append(queue, schema.Refs()...)
	}

	for _, entry := range []string{opts.Filter, opts.RankBy} {
		if _, ok := grammar.Schemas[entry]; !ok {
			return nil, fmt.Errorf("%w: entry schema '%s' is not declared", apigen.ErrSchemaNotFound, entry)
		}
	}

	return grammar, nil
}

func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
