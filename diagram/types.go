// Package diagram contains the fundamental types for reading-roadmap graphs.
package diagram

// Point represents a 2D coordinate in screen cells.
type Point struct {
	X, Y int
}

// Paper is a reference attached to a roadmap node.
type Paper struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
}

// Node represents one step in the roadmap graph.
type Node struct {
	ID          int     `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Papers      []Paper `json:"papers,omitempty"`
	X           int     `json:"-"` // Set by layout
	Y           int     `json:"-"` // Set by layout
	Width       int     `json:"-"` // Calculated from label
	Height      int     `json:"-"` // Calculated from label
}

// Center returns the center point of the node.
func (n Node) Center() Point {
	return Point{
		X: n.X + n.Width/2,
		Y: n.Y + n.Height/2,
	}
}

// Contains checks if a point is inside the node.
func (n Node) Contains(p Point) bool {
	return p.X >= n.X && p.X < n.X+n.Width &&
		p.Y >= n.Y && p.Y < n.Y+n.Height
}

// Edge represents a directed dependency between roadmap nodes.
type Edge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Label string `json:"label,omitempty"`
}

// Diagram represents a complete roadmap with nodes and edges.
type Diagram struct {
	Title string `json:"title,omitempty"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// IsEmpty reports whether the diagram has nothing to draw.
func (d *Diagram) IsEmpty() bool {
	return d == nil || len(d.Nodes) == 0
}

// NodeByID returns the node with the given ID, or nil when absent.
func (d *Diagram) NodeByID(id int) *Node {
	if d == nil {
		return nil
	}
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Clone creates a deep copy of the diagram.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}

	clone := &Diagram{
		Title: d.Title,
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}

	// Nodes carry a Papers slice that must be copied, not shared.
	for i, node := range d.Nodes {
		papers := make([]Paper, len(node.Papers))
		copy(papers, node.Papers)
		clone.Nodes[i] = node
		clone.Nodes[i].Papers = papers
	}
	copy(clone.Edges, d.Edges)

	return clone
}

// Bounds represents a rectangular area.
type Bounds struct {
	Min, Max Point
}

// Width returns the width of the bounds.
func (b Bounds) Width() int {
	return b.Max.X - b.Min.X
}

// Height returns the height of the bounds.
func (b Bounds) Height() int {
	return b.Max.Y - b.Min.Y
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y
}
