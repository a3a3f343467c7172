// Package runtime executes compiled graphs.
//
// The Engine walks a graph.Definition from its entry node, calls each
// handler, merges the returned partial through the reducer table and follows
// the outgoing edge until END. The first failure stops the run and is stored
// in the state; it is never returned as an error.
package runtime
