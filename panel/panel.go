// Package panel implements the floating roadmap panel: a draggable,
// resizable overlay window anchored to screen cells. The controller is
// a pure presentation-state machine; the terminal shell feeds it mouse
// coordinates and it answers with geometry and rendered content.
//
// All mutation happens on the UI event-loop goroutine. Asynchronous
// diagram loads hand their results back through the Dispatch hook, and
// a generation counter discards completions that were superseded by a
// later load, so the last requested document always wins.
package panel

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"lectern/diagram"
	"lectern/event"
	"lectern/export"
)

// ExportFilename is the fixed name of the exported roadmap artifact.
const ExportFilename = "roadmap.json"

// settleDelay postpones fit-to-view until the freshly loaded diagram
// has been laid out and drawn once.
const settleDelay = 150 * time.Millisecond

// Minimum panel geometry; resizing clamps here.
const (
	MinWidth  = 20
	MinHeight = 8
)

// Source fetches the roadmap diagram for a document.
type Source interface {
	Fetch(ctx context.Context, docID string) (*diagram.Diagram, error)
}

// dragSession exists only between pointer-down on the handle and the
// matching pointer-up (or teardown).
type dragSession struct {
	pointerStartX, pointerStartY int
	panelStartX, panelStartY     int
}

// resizeSession mirrors dragSession for the resize grip.
type resizeSession struct {
	pointerStartX, pointerStartY int
	startWidth, startHeight      int
}

// Controller manages the floating panel's screen state.
type Controller struct {
	x, y          int
	width, height int
	visible       bool

	drag   *dragSession
	resize *resizeSession

	current  *diagram.Diagram
	bounds   diagram.Bounds
	loading  bool
	emptyMsg string

	selected *diagram.Node

	scrollX, scrollY int

	source     Source
	sub        *event.Subscription
	generation uint64
	log        *zap.Logger

	// Dispatch marshals a closure onto the UI event loop. The default
	// runs it inline, which is only correct single-threaded (tests).
	Dispatch func(func())
	// Schedule runs fn through Dispatch after a delay.
	Schedule func(d time.Duration, fn func())
}

// New creates a panel controller at the given geometry, subscribed to
// document changes on bus. A nil logger disables logging.
func New(source Source, bus *event.Bus[event.DocumentChanged], x, y, width, height int, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{
		x: x, y: y,
		width: max(width, MinWidth), height: max(height, MinHeight),
		visible: true,
		source:  source,
		log:     log,
	}
	c.Dispatch = func(fn func()) { fn() }
	c.Schedule = func(d time.Duration, fn func()) {
		time.AfterFunc(d, func() { c.Dispatch(fn) })
	}

	if bus != nil {
		// Document switch: stale detail views must never survive, and
		// the diagram reloads for the new document.
		c.sub = bus.Subscribe(func(e event.DocumentChanged) {
			c.CloseDetail()
			c.LoadDiagram(e.ID)
		})
	}
	return c
}

// Close tears the panel down: the bus subscription and any mid-flight
// drag session are released unconditionally.
func (c *Controller) Close() {
	c.sub.Close()
	c.EndDrag()
}

// Position returns the panel's top-left screen cell.
func (c *Controller) Position() (x, y int) {
	return c.x, c.y
}

// Size returns the panel's dimensions.
func (c *Controller) Size() (width, height int) {
	return c.width, c.height
}

// Visible reports whether the panel is shown.
func (c *Controller) Visible() bool {
	return c.visible
}

// ToggleVisible shows or hides the panel. Hiding cancels any session.
func (c *Controller) ToggleVisible() {
	c.visible = !c.visible
	if !c.visible {
		c.EndDrag()
	}
}

// Contains reports whether a screen cell falls inside the panel.
func (c *Controller) Contains(x, y int) bool {
	return c.visible &&
		x >= c.x && x < c.x+c.width &&
		y >= c.y && y < c.y+c.height
}

// InHandle reports whether a screen cell is on the drag handle (the
// title bar row).
func (c *Controller) InHandle(x, y int) bool {
	return c.visible && y == c.y && x >= c.x && x < c.x+c.width
}

// InResizeGrip reports whether a screen cell is on the resize grip
// (the bottom-right corner).
func (c *Controller) InResizeGrip(x, y int) bool {
	return c.visible && x == c.x+c.width-1 && y == c.y+c.height-1
}

// BeginDrag opens a drag session from the handle. No-op while hidden.
func (c *Controller) BeginDrag(pointerX, pointerY int) {
	if !c.visible {
		return
	}
	c.drag = &dragSession{
		pointerStartX: pointerX, pointerStartY: pointerY,
		panelStartX: c.x, panelStartY: c.y,
	}
}

// BeginResize opens a resize session from the grip. No-op while hidden.
func (c *Controller) BeginResize(pointerX, pointerY int) {
	if !c.visible {
		return
	}
	c.resize = &resizeSession{
		pointerStartX: pointerX, pointerStartY: pointerY,
		startWidth: c.width, startHeight: c.height,
	}
}

// PointerMove applies the pointer delta to whichever session is active.
// Without a session it does nothing, which guards against listener
// leakage: motion events keep arriving after EndDrag.
func (c *Controller) PointerMove(pointerX, pointerY int) {
	if c.drag != nil {
		c.x = c.drag.panelStartX + (pointerX - c.drag.pointerStartX)
		c.y = c.drag.panelStartY + (pointerY - c.drag.pointerStartY)
		return
	}
	if c.resize != nil {
		c.width = max(c.resize.startWidth+(pointerX-c.resize.pointerStartX), MinWidth)
		c.height = max(c.resize.startHeight+(pointerY-c.resize.pointerStartY), MinHeight)
	}
}

// EndDrag closes any active drag or resize session. Idempotent.
func (c *Controller) EndDrag() {
	c.drag = nil
	c.resize = nil
}

// Dragging reports whether a drag or resize session is active.
func (c *Controller) Dragging() bool {
	return c.drag != nil || c.resize != nil
}

// LoadDiagram fetches the roadmap for a document. The fetch runs off
// the UI loop; its completion is dispatched back and discarded when a
// newer load has started since.
func (c *Controller) LoadDiagram(docID string) {
	c.generation++
	gen := c.generation

	if docID == "" {
		c.loading = false
		c.setDiagram(nil)
		return
	}

	c.loading = true
	go func() {
		d, err := c.source.Fetch(context.Background(), docID)
		c.Dispatch(func() {
			if gen != c.generation {
				return // a later load superseded this one
			}
			c.loading = false
			if err != nil {
				c.log.Warn("roadmap load failed", zap.String("doc", docID), zap.Error(err))
				c.setDiagram(nil)
				return
			}
			c.setDiagram(d)
			// Fit once the first render after layout has happened.
			c.Schedule(settleDelay, func() {
				if gen == c.generation {
					c.FitToView()
				}
			})
		})
	}()
}

func (c *Controller) setDiagram(d *diagram.Diagram) {
	c.current = d
	if d.IsEmpty() {
		c.bounds = diagram.Bounds{}
		return
	}
	c.bounds = layoutDiagram(d)
}

// Loading reports whether a diagram fetch is pending.
func (c *Controller) Loading() bool {
	return c.loading
}

// Diagram returns the currently displayed diagram (may be nil).
func (c *Controller) Diagram() *diagram.Diagram {
	return c.current
}

// FitToView resets the camera to the diagram origin.
func (c *Controller) FitToView() {
	c.scrollX, c.scrollY = 0, 0
}

// ScrollBy pans the camera, clamped to the laid-out content.
func (c *Controller) ScrollBy(dx, dy int) {
	c.scrollX = clamp(c.scrollX+dx, 0, max(c.bounds.Max.X-c.width+2, 0))
	c.scrollY = clamp(c.scrollY+dy, 0, max(c.bounds.Max.Y-c.height+2, 0))
}

// SelectNodeAt hit-tests the panel-relative cell against laid-out
// nodes and opens the detail overlay on a hit. Returns whether a node
// was selected.
func (c *Controller) SelectNodeAt(screenX, screenY int) bool {
	if c.current.IsEmpty() {
		return false
	}
	// Screen cell -> diagram coordinates: undo panel origin, border and
	// camera.
	p := diagram.Point{
		X: screenX - c.x - 1 + c.scrollX,
		Y: screenY - c.y - 1 + c.scrollY,
	}
	for i := range c.current.Nodes {
		if c.current.Nodes[i].Contains(p) {
			c.SelectNode(&c.current.Nodes[i])
			return true
		}
	}
	return false
}

// SelectNode records the node whose details are shown.
func (c *Controller) SelectNode(n *diagram.Node) {
	c.selected = n
}

// SelectedNode returns the node in the detail overlay, nil when closed.
func (c *Controller) SelectedNode() *diagram.Node {
	return c.selected
}

// CloseDetail clears the detail overlay.
func (c *Controller) CloseDetail() {
	c.selected = nil
}

// Export writes the current diagram as JSON to ExportFilename in the
// working directory. Synchronous; the file is its only side effect.
func (c *Controller) Export() error {
	exp := export.NewJSONExporter()
	d := c.current
	if d == nil {
		d = &diagram.Diagram{}
	}
	out, err := exp.Export(d)
	if err != nil {
		return fmt.Errorf("serializing roadmap: %w", err)
	}
	if err := os.WriteFile(ExportFilename, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", ExportFilename, err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
