package diagram

import "fmt"

// Validate checks that a diagram has a consistent structure: unique node
// IDs and edges that reference existing nodes.
func Validate(d *Diagram) error {
	if d == nil {
		return nil
	}

	nodeIDs := make(map[int]bool)
	for _, node := range d.Nodes {
		if nodeIDs[node.ID] {
			return fmt.Errorf("duplicate node ID: %d", node.ID)
		}
		nodeIDs[node.ID] = true
	}

	for i, edge := range d.Edges {
		if !nodeIDs[edge.From] {
			return fmt.Errorf("edge %d references non-existent 'from' node: %d", i, edge.From)
		}
		if !nodeIDs[edge.To] {
			return fmt.Errorf("edge %d references non-existent 'to' node: %d", i, edge.To)
		}
	}

	return nil
}

// EnsureUniqueNodeIDs reassigns IDs so every node has a unique one.
// Edges naming a duplicated ID keep pointing at its first occurrence.
// Diagrams produced by a model occasionally repeat IDs; repair beats
// rejection here.
func EnsureUniqueNodeIDs(d *Diagram) {
	if d == nil {
		return
	}

	seen := make(map[int]bool)
	next := 0
	for _, node := range d.Nodes {
		if node.ID >= next {
			next = node.ID + 1
		}
	}

	for i := range d.Nodes {
		id := d.Nodes[i].ID
		if !seen[id] {
			seen[id] = true
			continue
		}
		// Collision: give this node a fresh ID. Edges naming the old ID
		// keep pointing at the first occurrence.
		d.Nodes[i].ID = next
		seen[next] = true
		next++
	}
}
