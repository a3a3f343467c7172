package graph

import (
	"fmt"
	"strings"
)

// VertexKind selects the shape of a vertex.
type VertexKind int

const (
	KindStep VertexKind = iota
	KindStart
	KindEnd
)

// Vertex is a node of the rendered flowchart.
type Vertex struct {
	ID   string
	Kind VertexKind
}

// Arrow is a transition of the rendered flowchart.
type Arrow struct {
	From  string
	To    string
	Label string
	// Conditional arrows are drawn dotted.
	Conditional bool
}

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	// FailedNode is highlighted when a run stopped with an error.
	FailedNode string
}

// GenerateMermaid produces a Mermaid flowchart syntax string.
// It applies semantic styling:
// - Start/End markers: ((Circle))
// - Steps: [Rectangle]
// Conditional arrows are dotted and labelled with the router outcome.
// It also applies overlay styles (Visited/Failed) if provided.
func GenerateMermaid(vertices []Vertex, arrows []Arrow, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, v := range vertices {
		safeID := sanitizeMermaidID(v.ID)

		opener, closer := "[", "]"
		switch v.Kind {
		case KindStart, KindEnd:
			opener, closer = "((", "))"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, strings.Trim(v.ID, "_"), closer))
	}

	for _, a := range arrows {
		arrow := "-->"
		if a.Conditional {
			arrow = "-.->"
		}
		if a.Label != "" {
			// Escape double quotes in label for Mermaid
			safeLabel := strings.ReplaceAll(a.Label, "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
			if a.Conditional {
				arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
			}
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(a.From), arrow, sanitizeMermaidID(a.To)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.FailedNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", sanitizeMermaidID(overlay.FailedNode)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
