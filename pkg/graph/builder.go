package graph

import (
	"fmt"
	"slices"

	"github.com/aretw0/tutorgraph/internal/validator"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

// Builder manages the graph construction. Problems found while adding nodes
// and edges are collected and reported together by Compile.
type Builder struct {
	name     string
	nodes    map[string]Node
	order    []string
	entry    string
	edges    map[string]Edge
	problems []string
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]Node),
		edges: make(map[string]Edge),
	}
}

// AddNode registers a node. Names must be unique.
func (b *Builder) AddNode(n Node) *Builder {
	switch {
	case n.Name == "" || n.Name == START || n.Name == END:
		b.problems = append(b.problems, fmt.Sprintf("Invalid node name: '%s'", n.Name))
		return b
	case n.Handler == nil:
		b.problems = append(b.problems, fmt.Sprintf("Node '%s' has no handler", n.Name))
	}
	if _, ok := b.nodes[n.Name]; ok {
		b.problems = append(b.problems, fmt.Sprintf("Duplicate node: '%s'", n.Name))
		return b
	}
	b.nodes[n.Name] = n
	b.order = append(b.order, n.Name)
	return b
}

// SetEntry selects the first node of every run.
func (b *Builder) SetEntry(name string) *Builder {
	b.entry = name
	return b
}

// AddEdge adds an unconditional transition.
func (b *Builder) AddEdge(from, to string) *Builder {
	if from == START {
		return b.SetEntry(to)
	}
	return b.addEdge(Edge{From: from, To: to})
}

// AddConditionalEdge adds a routed transition. Every value the router may
// return must be listed in destinations.
func (b *Builder) AddConditionalEdge(from string, router Router, destinations ...string) *Builder {
	if router == nil {
		b.problems = append(b.problems, fmt.Sprintf("Conditional edge from '%s' has no router", from))
		return b
	}
	if len(destinations) == 0 {
		b.problems = append(b.problems, fmt.Sprintf("Conditional edge from '%s' declares no destinations", from))
		return b
	}
	return b.addEdge(Edge{From: from, Router: router, Destinations: slices.Clone(destinations)})
}

func (b *Builder) addEdge(e Edge) *Builder {
	if _, ok := b.edges[e.From]; ok {
		b.problems = append(b.problems, fmt.Sprintf("Node '%s' has more than one outgoing edge", e.From))
		return b
	}
	b.edges[e.From] = e
	return b
}

// Compile validates the graph against the reducer table and the recognized
// configuration keys and returns the immutable definition.
func (b *Builder) Compile(table domain.ReducerTable) (*Definition, error) {
	problems := slices.Clone(b.problems)

	if b.entry == "" {
		problems = append(problems, "No entry node")
	}

	successors := make(map[string][]string, len(b.edges))
	for from, e := range b.edges {
		if _, ok := b.nodes[from]; !ok {
			problems = append(problems, fmt.Sprintf("Edge from unknown node: '%s'", from))
			continue
		}
		successors[from] = e.Targets()
	}

	for _, name := range b.order {
		n := b.nodes[name]
		if _, ok := b.edges[name]; !ok {
			problems = append(problems, fmt.Sprintf("Node '%s' has no outgoing edge", name))
		}
		for _, out := range n.Outputs {
			if !table.Has(out) {
				problems = append(problems, fmt.Sprintf("Node '%s' declares output '%s' which has no reducer", name, out))
			}
		}
		for _, key := range n.RequiredConfig {
			if !config.Known(key) {
				problems = append(problems, fmt.Sprintf("Node '%s' requires unknown config key '%s'", name, key))
			}
		}
	}

	if b.entry != "" {
		problems = append(problems, validator.ValidateTopology(validator.Topology{
			Entry:      b.entry,
			Nodes:      b.order,
			Successors: successors,
			Terminal:   END,
		})...)
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Graph: b.name, Problems: problems}
	}

	nodes := make(map[string]Node, len(b.nodes))
	for k, v := range b.nodes {
		nodes[k] = v
	}
	edges := make(map[string]Edge, len(b.edges))
	for k, v := range b.edges {
		edges[k] = v
	}

	return &Definition{
		name:     b.name,
		entry:    b.entry,
		nodes:    nodes,
		order:    slices.Clone(b.order),
		edges:    edges,
		reducers: table,
	}, nil
}
