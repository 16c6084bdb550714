// Package export provides functionality to export roadmap diagrams to
// text-based formats.
package export

import (
	"fmt"

	"lectern/diagram"
)

// Format represents an export format.
type Format string

const (
	// FormatJSON exports the diagram's canonical JSON form.
	FormatJSON Format = "json"
	// FormatMermaid exports to Mermaid flowchart syntax.
	FormatMermaid Format = "mermaid"
)

// Exporter interface for different export formats.
type Exporter interface {
	// Export converts a diagram to the target format.
	Export(d *diagram.Diagram) (string, error)
	// GetFileExtension returns the recommended file extension for this format.
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format.
	GetFormatName() string
}

// NewExporter creates an exporter for the specified format.
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatMermaid:
		return NewMermaidExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// GetAvailableFormats returns a list of all available export formats.
func GetAvailableFormats() []Format {
	return []Format{FormatJSON, FormatMermaid}
}
