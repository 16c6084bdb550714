package panel

import (
	"lectern/canvas"
	"lectern/diagram"
)

const panelTitle = " Roadmap "

// Render draws the panel into a fresh rune matrix of its current size:
// border, title bar, and the diagram body under the camera offset.
// Styling (colors, dim background) is the shell's concern.
func (c *Controller) Render() *canvas.Matrix {
	m := canvas.NewMatrix(c.width, c.height)
	if m == nil {
		return nil
	}

	m.DrawBox(0, 0, c.width, c.height, canvas.DefaultBoxStyle)
	m.DrawText(2, 0, panelTitle, c.width-4)
	// Hints live right-aligned in the title bar; the grip marks resize.
	hints := "[e]xport [x]close"
	if c.width > len(hints)+len(panelTitle)+6 {
		m.DrawText(c.width-len(hints)-2, 0, hints, len(hints))
	}
	m.Set(c.width-1, c.height-1, '◢')

	switch {
	case c.loading:
		m.DrawText(2, c.height/2, "Generating roadmap…", c.width-4)
	case c.current.IsEmpty():
		m.DrawText(2, c.height/2, "No roadmap available for this document.", c.width-4)
	default:
		c.renderDiagram(m)
	}
	return m
}

// renderDiagram draws nodes and edges clipped to the panel body.
func (c *Controller) renderDiagram(m *canvas.Matrix) {
	body := canvas.NewMatrix(max(c.bounds.Max.X, 1), max(c.bounds.Max.Y, 1))
	if body == nil {
		return
	}

	// Edges first so node boxes overwrite the elbows they cross.
	for _, e := range c.current.Edges {
		from := c.current.NodeByID(e.From)
		to := c.current.NodeByID(e.To)
		if from == nil || to == nil {
			continue
		}
		drawEdge(body, from, to)
	}

	for i := range c.current.Nodes {
		node := &c.current.Nodes[i]
		style := canvas.DefaultBoxStyle
		if c.selected != nil && c.selected.ID == node.ID {
			style = canvas.HeavyBoxStyle
		}
		body.DrawBox(node.X, node.Y, node.Width, node.Height, style)
		body.DrawText(node.X+2, node.Y+1, node.Label, node.Width-4)
	}

	// Blit the camera window into the panel interior.
	for y := 1; y < c.height-1; y++ {
		for x := 1; x < c.width-1; x++ {
			r := body.Get(x-1+c.scrollX, y-1+c.scrollY)
			if r != ' ' {
				m.Set(x, y, r)
			}
		}
	}
}

// drawEdge routes a simple elbow from the bottom of one node to the
// top of the next layer's node.
func drawEdge(m *canvas.Matrix, from, to *diagram.Node) {
	fx := from.X + from.Width/2
	fy := from.Y + from.Height
	tx := to.X + to.Width/2
	ty := to.Y - 1

	if ty < fy {
		// Back-edge in a cyclic graph; draw nothing rather than spaghetti.
		return
	}

	midY := fy + (ty-fy)/2
	m.DrawVLine(fx, fy, midY, '│')
	if fx != tx {
		m.DrawHLine(fx, tx, midY, '─')
		m.Set(fx, midY, cornerFor(fx, tx, true))
		m.Set(tx, midY, cornerFor(fx, tx, false))
	}
	m.DrawVLine(tx, midY+1, ty, '│')
	m.Set(tx, ty, '▼')
}

func cornerFor(fx, tx int, atFrom bool) rune {
	if fx < tx {
		if atFrom {
			return '╰'
		}
		return '╮'
	}
	if atFrom {
		return '╯'
	}
	return '╭'
}

// DetailLines renders the selected node's detail overlay as wrapped
// lines for the given width. Nil when no node is selected.
func (c *Controller) DetailLines(width int) []string {
	if c.selected == nil || width <= 0 {
		return nil
	}

	var lines []string
	lines = append(lines, canvas.Truncate(c.selected.Label, width))
	if c.selected.Description != "" {
		lines = append(lines, "")
		lines = append(lines, canvas.Wrap(c.selected.Description, width)...)
	}
	if len(c.selected.Papers) > 0 {
		lines = append(lines, "", "Papers:")
		for _, p := range c.selected.Papers {
			lines = append(lines, canvas.Truncate("• "+p.Title, width))
			if p.Link != "" {
				lines = append(lines, canvas.Truncate("  "+p.Link, width))
			}
		}
	}
	return lines
}
