package graph

import (
	"slices"

	presentation "github.com/aretw0/tutorgraph/internal/presentation/graph"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

// Definition is a compiled, immutable graph. It is safe for concurrent use.
type Definition struct {
	name     string
	entry    string
	nodes    map[string]Node
	order    []string
	edges    map[string]Edge
	reducers domain.ReducerTable
}

func (d *Definition) Name() string { return d.name }

func (d *Definition) Entry() string { return d.entry }

// Reducers returns the reducer table the graph was compiled against.
func (d *Definition) Reducers() domain.ReducerTable { return d.reducers }

// Node looks up a node by name.
func (d *Definition) Node(name string) (Node, bool) {
	n, ok := d.nodes[name]
	return n, ok
}

// Nodes returns the nodes in declaration order.
func (d *Definition) Nodes() []Node {
	out := make([]Node, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.nodes[name])
	}
	return out
}

// Edge returns the outgoing edge of a node.
func (d *Definition) Edge(from string) (Edge, bool) {
	e, ok := d.edges[from]
	return e, ok
}

// Next resolves the node that follows from, given the state it produced.
func (d *Definition) Next(from string, state *domain.State) (string, error) {
	e, ok := d.edges[from]
	if !ok {
		return "", &RoutingError{From: from}
	}
	if !e.Conditional() {
		return e.To, nil
	}

	dest := e.Router(state)
	if !slices.Contains(e.Destinations, dest) {
		return "", &RoutingError{From: from, Got: dest, Allowed: e.Destinations}
	}
	return dest, nil
}

// Mermaid renders the graph as a Mermaid flowchart. When state is non-nil,
// the nodes it visited (and the failed one, if any) are highlighted.
func (d *Definition) Mermaid(state *domain.State) string {
	vertices := []presentation.Vertex{{ID: START, Kind: presentation.KindStart}}
	for _, name := range d.order {
		vertices = append(vertices, presentation.Vertex{ID: name})
	}
	vertices = append(vertices, presentation.Vertex{ID: END, Kind: presentation.KindEnd})

	arrows := []presentation.Arrow{{From: START, To: d.entry}}
	for _, name := range d.order {
		e := d.edges[name]
		if !e.Conditional() {
			arrows = append(arrows, presentation.Arrow{From: name, To: e.To})
			continue
		}
		for _, dest := range e.Destinations {
			arrows = append(arrows, presentation.Arrow{From: name, To: dest, Label: dest, Conditional: true})
		}
	}

	var overlay *presentation.GraphOverlay
	if state != nil {
		overlay = &presentation.GraphOverlay{VisitedNodes: state.History}
		if state.Error != nil {
			overlay.FailedNode = state.Error.Stage
		}
	}

	return presentation.GenerateMermaid(vertices, arrows, overlay)
}
