package panel

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectern/diagram"
	"lectern/event"
)

// chdirTemp switches to a fresh temp dir for the test and restores the
// previous working directory afterwards (stand-in for t.Chdir, Go 1.24+).
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

// fixedSource answers every fetch with the same diagram.
type fixedSource struct {
	d   *diagram.Diagram
	err error
}

func (s *fixedSource) Fetch(context.Context, string) (*diagram.Diagram, error) {
	return s.d, s.err
}

// gatedSource blocks each fetch until the test releases its document.
type gatedSource struct {
	gates map[string]chan *diagram.Diagram
}

func newGatedSource(ids ...string) *gatedSource {
	g := &gatedSource{gates: make(map[string]chan *diagram.Diagram)}
	for _, id := range ids {
		g.gates[id] = make(chan *diagram.Diagram, 1)
	}
	return g
}

func (s *gatedSource) Fetch(_ context.Context, docID string) (*diagram.Diagram, error) {
	return <-s.gates[docID], nil
}

// newTestController wires Dispatch to a channel so the test decides
// when (and on which goroutine) async completions apply, mirroring the
// UI event loop.
func newTestController(src Source, bus *event.Bus[event.DocumentChanged]) (*Controller, chan func()) {
	c := New(src, bus, 10, 5, 40, 12, nil)
	dispatched := make(chan func(), 16)
	c.Dispatch = func(fn func()) { dispatched <- fn }
	c.Schedule = func(time.Duration, func()) {} // settle timing covered separately
	return c, dispatched
}

func drain(t *testing.T, ch chan func()) {
	t.Helper()
	select {
	case fn := <-ch:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("no dispatched completion arrived")
	}
}

func TestDragAlgebra(t *testing.T) {
	c, _ := newTestController(&fixedSource{}, nil)

	// Panel at (50,50); pointer down at (100,100), move to (130,115).
	c.x, c.y = 50, 50
	c.BeginDrag(100, 100)
	c.PointerMove(110, 104)
	c.PointerMove(130, 115)
	c.EndDrag()

	x, y := c.Position()
	assert.Equal(t, 80, x)
	assert.Equal(t, 65, y)
}

func TestPointerMoveWithoutSessionIsNoop(t *testing.T) {
	c, _ := newTestController(&fixedSource{}, nil)
	x0, y0 := c.Position()

	c.PointerMove(500, 500)

	x, y := c.Position()
	assert.Equal(t, x0, x)
	assert.Equal(t, y0, y)
}

func TestEndDragIsIdempotent(t *testing.T) {
	c, _ := newTestController(&fixedSource{}, nil)

	c.BeginDrag(0, 0)
	c.EndDrag()
	x0, y0 := c.Position()

	c.EndDrag() // second call must change nothing
	c.PointerMove(99, 99)

	x, y := c.Position()
	assert.Equal(t, x0, x)
	assert.Equal(t, y0, y)
	assert.False(t, c.Dragging())
}

func TestBeginDragWhileHiddenIsNoop(t *testing.T) {
	c, _ := newTestController(&fixedSource{}, nil)

	c.ToggleVisible()
	c.BeginDrag(0, 0)

	assert.False(t, c.Dragging())
}

func TestResizeClampsToMinimum(t *testing.T) {
	c, _ := newTestController(&fixedSource{}, nil)

	c.BeginResize(100, 100)
	c.PointerMove(0, 0) // shrink far past the minimum
	c.EndDrag()

	w, h := c.Size()
	assert.Equal(t, MinWidth, w)
	assert.Equal(t, MinHeight, h)
}

func TestDocumentChangeClearsSelectionAndReloads(t *testing.T) {
	bus := event.NewBus[event.DocumentChanged]()
	src := &fixedSource{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "A"}}}}
	c, dispatched := newTestController(src, bus)

	node := diagram.Node{ID: 7, Label: "stale"}
	c.SelectNode(&node)

	bus.Publish(event.DocumentChanged{ID: "doc2"})

	assert.Nil(t, c.SelectedNode(), "selection must clear on document change")
	assert.True(t, c.Loading())

	drain(t, dispatched)
	assert.False(t, c.Loading())
	require.NotNil(t, c.Diagram())
	assert.Len(t, c.Diagram().Nodes, 1)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	src := newGatedSource("first", "second")
	c, dispatched := newTestController(src, nil)

	c.LoadDiagram("first")
	c.LoadDiagram("second")

	// The superseded fetch completes after the newer one started.
	src.gates["first"] <- &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "old"}}}
	drain(t, dispatched)
	assert.True(t, c.Loading(), "stale completion must not clear loading")
	assert.Nil(t, c.Diagram())

	src.gates["second"] <- &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "new"}}}
	drain(t, dispatched)
	assert.False(t, c.Loading())
	require.NotNil(t, c.Diagram())
	assert.Equal(t, "new", c.Diagram().Nodes[0].Label)
}

func TestLoadFailureRendersEmptyState(t *testing.T) {
	src := &fixedSource{err: errors.New("model unavailable")}
	c, dispatched := newTestController(src, nil)

	c.LoadDiagram("doc1")
	drain(t, dispatched)

	assert.False(t, c.Loading())
	assert.True(t, c.Diagram().IsEmpty())
}

func TestLoadEmptyIDClearsDiagram(t *testing.T) {
	src := &fixedSource{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0}}}}
	c, dispatched := newTestController(src, nil)

	c.LoadDiagram("doc1")
	drain(t, dispatched)
	require.False(t, c.Diagram().IsEmpty())

	c.LoadDiagram("")
	assert.True(t, c.Diagram().IsEmpty())
	assert.False(t, c.Loading())
}

func TestFitToViewScheduledAfterLoad(t *testing.T) {
	src := &fixedSource{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "A"}}}}
	c, dispatched := newTestController(src, nil)

	scheduled := 0
	c.Schedule = func(_ time.Duration, fn func()) {
		scheduled++
		fn()
	}

	c.ScrollBy(5, 5)
	c.LoadDiagram("doc1")
	drain(t, dispatched)

	assert.Equal(t, 1, scheduled)
	assert.Equal(t, 0, c.scrollX)
	assert.Equal(t, 0, c.scrollY)
}

func TestSelectNodeAtHitTest(t *testing.T) {
	d := &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "Alpha"}, {ID: 1, Label: "Beta"}}}
	src := &fixedSource{d: d}
	c, dispatched := newTestController(src, nil)

	c.LoadDiagram("doc1")
	drain(t, dispatched)

	node := c.Diagram().Nodes[0]
	// Center of the first node, translated into screen cells.
	screenX := c.x + 1 + node.X + node.Width/2
	screenY := c.y + 1 + node.Y + node.Height/2

	require.True(t, c.SelectNodeAt(screenX, screenY))
	require.NotNil(t, c.SelectedNode())
	assert.Equal(t, 0, c.SelectedNode().ID)

	// A miss keeps the selection.
	assert.False(t, c.SelectNodeAt(0, 0))
	assert.NotNil(t, c.SelectedNode())

	c.CloseDetail()
	assert.Nil(t, c.SelectedNode())
}

func TestCloseReleasesSubscriptionMidDrag(t *testing.T) {
	bus := event.NewBus[event.DocumentChanged]()
	c, _ := newTestController(&fixedSource{}, bus)
	require.Equal(t, 1, bus.Len())

	c.BeginDrag(5, 5) // teardown mid-drag must still release everything
	c.Close()

	assert.Equal(t, 0, bus.Len())
	assert.False(t, c.Dragging())
	assert.NotPanics(t, func() { c.Close() })
}

func TestExportWritesFixedFilename(t *testing.T) {
	chdirTemp(t)

	src := &fixedSource{d: &diagram.Diagram{
		Title: "Attention",
		Nodes: []diagram.Node{{ID: 0, Label: "A"}},
	}}
	c, dispatched := newTestController(src, nil)
	c.LoadDiagram("doc1")
	drain(t, dispatched)

	require.NoError(t, c.Export())

	data, err := os.ReadFile(ExportFilename)
	require.NoError(t, err)

	var decoded diagram.Diagram
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Attention", decoded.Title)
}

func TestExportWithoutDiagram(t *testing.T) {
	chdirTemp(t)

	c, _ := newTestController(&fixedSource{}, nil)
	require.NoError(t, c.Export())

	_, err := os.Stat(ExportFilename)
	assert.NoError(t, err)
}
