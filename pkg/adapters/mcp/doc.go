// Package mcp exposes the tutor as Model Context Protocol tools.
//
// Tools: ask_tutor runs a chat exchange and returns the reply with the visited
// path; describe_graph renders a topology as Mermaid. The resource
// tutorgraph://graphs lists the registered topologies.
package mcp
