/*
Package graph defines executable pipeline graphs.

A graph is a set of named nodes, exactly one outgoing edge per node and an
entry node. Edges are either static (always go to the same node or END) or
conditional (a Router picks one of the declared destinations from the state).

Graphs are assembled with a Builder and frozen by Compile, which performs every
static check up front: unknown targets, undeclared router destinations, missing
edges, unreachable nodes, outputs without a reducer and unrecognized
configuration keys. A malformed graph never reaches the runner.

	b := graph.New("enriched").
		AddNode(validate).
		AddNode(search).
		AddEdge(graph.START, "validate_request").
		AddConditionalEdge("validate_request", router, "generate_queries", graph.END).
		AddEdge("generate_queries", graph.END)

	def, err := b.Compile(domain.DefaultReducers())
*/
package graph
