package panel

import (
	"sort"

	"github.com/mattn/go-runewidth"

	"lectern/diagram"
)

const (
	maxNodeLabelWidth = 24
	nodeHeight        = 3
	levelGap          = 2
	siblingGap        = 3
)

// layoutDiagram assigns X/Y/Width/Height to every node: a top-down
// layered placement where each node sits one row band below its deepest
// prerequisite. Good enough for roadmap graphs, which are shallow and
// mostly tree-shaped.
func layoutDiagram(d *diagram.Diagram) diagram.Bounds {
	if d.IsEmpty() {
		return diagram.Bounds{}
	}

	levels := assignLevels(d)

	// Group node indices per level, stable by ID for deterministic output.
	byLevel := make(map[int][]int)
	maxLevel := 0
	for i := range d.Nodes {
		lvl := levels[d.Nodes[i].ID]
		byLevel[lvl] = append(byLevel[lvl], i)
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}
	for _, idxs := range byLevel {
		sort.Slice(idxs, func(a, b int) bool { return d.Nodes[idxs[a]].ID < d.Nodes[idxs[b]].ID })
	}

	bounds := diagram.Bounds{}
	for lvl := 0; lvl <= maxLevel; lvl++ {
		x := 1
		y := 1 + lvl*(nodeHeight+levelGap)
		for _, i := range byLevel[lvl] {
			node := &d.Nodes[i]
			w := runewidth.StringWidth(node.Label)
			if w > maxNodeLabelWidth {
				w = maxNodeLabelWidth
			}
			if w < 3 {
				w = 3
			}
			node.X = x
			node.Y = y
			node.Width = w + 4 // border + one cell padding each side
			node.Height = nodeHeight
			x += node.Width + siblingGap

			if node.X+node.Width > bounds.Max.X {
				bounds.Max.X = node.X + node.Width
			}
			if node.Y+node.Height > bounds.Max.Y {
				bounds.Max.Y = node.Y + node.Height
			}
		}
	}
	bounds.Max.X++ // breathing room for edge elbows
	bounds.Max.Y++
	return bounds
}

// assignLevels computes the layer of each node: longest prerequisite
// chain from any root. Nodes caught in a cycle fall back to layer 0 —
// a model-produced graph is not guaranteed acyclic and must still draw.
func assignLevels(d *diagram.Diagram) map[int]int {
	indegree := make(map[int]int, len(d.Nodes))
	succ := make(map[int][]int)
	for _, n := range d.Nodes {
		indegree[n.ID] = 0
	}
	for _, e := range d.Edges {
		if _, ok := indegree[e.To]; !ok {
			continue
		}
		indegree[e.To]++
		succ[e.From] = append(succ[e.From], e.To)
	}

	levels := make(map[int]int, len(d.Nodes))
	var queue []int
	for _, n := range d.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n.ID)
			levels[n.ID] = 0
		}
	}
	sort.Ints(queue)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range succ[id] {
			if levels[id]+1 > levels[next] {
				levels[next] = levels[id] + 1
			}
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	return levels
}
