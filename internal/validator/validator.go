package validator

import (
	"sort"
)

// Topology is the minimal view of a graph needed for static checks.
type Topology struct {
	// Entry is the node the crawl starts from.
	Entry string
	// Nodes lists every declared node.
	Nodes []string
	// Successors maps a node to every target it may transition to.
	Successors map[string][]string
	// Terminal is the end marker. It is a valid target but not a node.
	Terminal string
}

// ValidateTopology checks for broken links and unreachable nodes, crawling
// breadth-first from the entry. It returns one message per problem found.
func ValidateTopology(t Topology) []string {
	declared := make(map[string]bool, len(t.Nodes))
	for _, id := range t.Nodes {
		declared[id] = true
	}

	var problems []string
	if !declared[t.Entry] {
		return append(problems, "Missing entry node: '"+t.Entry+"'")
	}

	visited := make(map[string]bool)
	queue := []string{t.Entry}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		for _, target := range t.Successors[currentID] {
			if target == t.Terminal {
				continue // Sink
			}
			if !declared[target] {
				problems = append(problems, "Missing node: '"+target+"' (from '"+currentID+"')")
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	var unreachable []string
	for _, id := range t.Nodes {
		if !visited[id] {
			unreachable = append(unreachable, id)
		}
	}
	sort.Strings(unreachable)
	for _, id := range unreachable {
		problems = append(problems, "Unreachable node: '"+id+"'")
	}

	return problems
}
