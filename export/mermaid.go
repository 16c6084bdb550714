package export

import (
	"fmt"
	"strings"

	"lectern/diagram"
)

// MermaidExporter exports roadmap diagrams to Mermaid flowchart syntax.
type MermaidExporter struct{}

// NewMermaidExporter creates a new Mermaid exporter.
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{}
}

// Export converts a diagram to a Mermaid flowchart.
func (e *MermaidExporter) Export(d *diagram.Diagram) (string, error) {
	var sb strings.Builder

	if d != nil && d.Title != "" {
		sb.WriteString("---\ntitle: " + d.Title + "\n---\n")
	}
	sb.WriteString("flowchart TD\n")

	if d == nil {
		return sb.String(), nil
	}

	for _, node := range d.Nodes {
		label := escapeMermaid(node.Label)
		if label == "" {
			label = fmt.Sprintf("node %d", node.ID)
		}
		fmt.Fprintf(&sb, "    n%d[\"%s\"]\n", node.ID, label)
	}

	for _, edge := range d.Edges {
		if edge.Label != "" {
			fmt.Fprintf(&sb, "    n%d -->|%s| n%d\n", edge.From, escapeMermaid(edge.Label), edge.To)
		} else {
			fmt.Fprintf(&sb, "    n%d --> n%d\n", edge.From, edge.To)
		}
	}

	return sb.String(), nil
}

// GetFileExtension returns the file extension for Mermaid.
func (e *MermaidExporter) GetFileExtension() string {
	return ".mmd"
}

// GetFormatName returns the format name.
func (e *MermaidExporter) GetFormatName() string {
	return "Mermaid"
}

// escapeMermaid neutralizes characters that break Mermaid labels.
func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
