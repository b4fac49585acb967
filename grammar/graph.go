package grammar

import (
	"maps"
	"slices"

	"github.com/turbopuffer/apigen/openapi"
)

// definitionGraph is the adjacency map between grammar definitions.
// An edge A -> B means A cannot be classified before B is.
type definitionGraph struct {
	deps map[string][]string
}

// newDefinitionGraph collects definition edges. Unions and aliases depend on every
// referenced schema; other definitions depend on referenced schemas that are not
// unions. References into a union are recursion points of the expression grammar,
// not part of the definition.
func newDefinitionGraph(schemas map[string]*openapi.Schema) (*definitionGraph, error) {
	g := &definitionGraph{deps: make(map[string][]string, len(schemas))}
	missing := make(map[string]string)

	for _, name := range slices.Sorted(maps.Keys(schemas)) {
		schema := schemas[name]
		structural := schema.AnyOf != nil || schema.Ref != ""

		var deps []string

		for _, ref := range schema.Refs() {
			target, ok := schemas[ref]
			if !ok {
				if _, seen := missing[ref]; !seen {
					missing[ref] = name
				}

				continue
			}

			if target.AnyOf != nil && !structural {
				continue
			}

			if !slices.Contains(deps, ref) {
				deps = append(deps, ref)
			}
		}

		slices.Sort(deps)
		g.deps[name] = deps
	}

	if len(missing) > 0 {
		names := slices.Sorted(maps.Keys(missing))

		return nil, &UnresolvedReferenceError{
			Name:     names[0],
			Referrer: missing[names[0]],
			Missing:  names,
		}
	}

	return g, nil
}

// sort returns every definition after its dependencies, breaking ties alphabetically
func (g *definitionGraph) sort() ([]string, error) {
	pending := make(map[string]int, len(g.deps))
	dependents := make(map[string][]string)

	for name, deps := range g.deps {
		pending[name] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string

	for name, count := range pending {
		if count == 0 {
			ready = append(ready, name)
		}
	}

	slices.Sort(ready)

	order := make([]string, 0, len(g.deps))

	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, name)

		for _, dependent := range dependents[name] {
			pending[dependent]--
			if pending[dependent] == 0 {
				i, _ := slices.BinarySearch(ready, dependent)
				ready = slices.Insert(ready, i, dependent)
			}
		}
	}

	if len(order) < len(g.deps) {
		return nil, &CycleError{Path: g.findCycle(pending)}
	}

	return order, nil
}

// findCycle walks from the smallest unsorted definition along its smallest unsorted
// dependency until a definition repeats. Every unsorted definition has at least one
// unsorted dependency, so the walk always ends on a cycle.
func (g *definitionGraph) findCycle(pending map[string]int) []string {
	var start string

	for _, name := range slices.Sorted(maps.Keys(pending)) {
		if pending[name] > 0 {
			start = name
			break
		}
	}

	var path []string

	index := make(map[string]int)
	current := start

	for {
		if i, seen := index[current]; seen {
			return append(path[i:], current)
		}

		index[current] = len(path)
		path = append(path, current)

		for _, dep := range g.deps[current] {
			if pending[dep] > 0 {
				current = dep
				break
			}
		}
	}
}
