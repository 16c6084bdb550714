package roadmap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectern/diagram"
)

type stubGenerator struct {
	calls int
	d     *diagram.Diagram
	err   error
}

func (s *stubGenerator) Generate(context.Context, string, string) (*diagram.Diagram, error) {
	s.calls++
	return s.d, s.err
}

func TestFetchCachesPerDocument(t *testing.T) {
	gen := &stubGenerator{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "A"}}}}
	svc := NewService(gen, nil)

	first, err := svc.Fetch(context.Background(), "doc1", "t", "text")
	require.NoError(t, err)
	second, err := svc.Fetch(context.Background(), "doc1", "t", "text")
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls, "second fetch must be served from cache")
	assert.Same(t, first, second)
}

func TestFetchSeparateDocuments(t *testing.T) {
	gen := &stubGenerator{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0}}}}
	svc := NewService(gen, nil)

	_, err := svc.Fetch(context.Background(), "doc1", "t", "")
	require.NoError(t, err)
	_, err = svc.Fetch(context.Background(), "doc2", "t", "")
	require.NoError(t, err)

	assert.Equal(t, 2, gen.calls)
}

func TestFetchGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	svc := NewService(gen, nil)

	_, err := svc.Fetch(context.Background(), "doc1", "t", "")
	assert.Error(t, err)

	// Errors are not cached; the next fetch retries.
	gen.err = nil
	gen.d = &diagram.Diagram{}
	_, err = svc.Fetch(context.Background(), "doc1", "t", "")
	assert.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestInvalidDiagramBecomesEmptyState(t *testing.T) {
	gen := &stubGenerator{d: &diagram.Diagram{
		Nodes: []diagram.Node{{ID: 0}},
		Edges: []diagram.Edge{{From: 0, To: 42}}, // dangling endpoint
	}}
	svc := NewService(gen, nil)

	d, err := svc.Fetch(context.Background(), "doc1", "t", "")
	require.NoError(t, err)
	assert.True(t, d.IsEmpty())
}

func TestResetForNewDocumentKeepsCache(t *testing.T) {
	gen := &stubGenerator{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0}}}}
	svc := NewService(gen, nil)

	_, err := svc.Fetch(context.Background(), "doc1", "t", "")
	require.NoError(t, err)

	svc.ResetForNewDocument()
	assert.Nil(t, svc.Current())

	// Switching back hits the cache, not the generator.
	_, err = svc.Fetch(context.Background(), "doc1", "t", "")
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestRemoveDocumentPurgesCache(t *testing.T) {
	gen := &stubGenerator{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0}}}}
	svc := NewService(gen, nil)

	_, err := svc.Fetch(context.Background(), "doc1", "t", "")
	require.NoError(t, err)

	svc.RemoveDocument("doc1")

	_, err = svc.Fetch(context.Background(), "doc1", "t", "")
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestFetchRequiresDocumentID(t *testing.T) {
	svc := NewService(&stubGenerator{}, nil)
	_, err := svc.Fetch(context.Background(), "", "t", "")
	assert.Error(t, err)
}

// quietGenerator keeps no state of its own so it is safe to call from
// many goroutines at once.
type quietGenerator struct {
	d *diagram.Diagram
}

func (g quietGenerator) Generate(context.Context, string, string) (*diagram.Diagram, error) {
	return g.d, nil
}

func TestFetchConcurrentWithReset(t *testing.T) {
	svc := NewService(quietGenerator{d: &diagram.Diagram{Nodes: []diagram.Node{{ID: 0, Label: "A"}}}}, nil)

	// Fetch completes on the panel's background goroutine while the
	// sidebar resets the active roadmap on the UI loop.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		docID := fmt.Sprintf("doc%d", i%4)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := svc.Fetch(context.Background(), docID, "t", "text"); err != nil {
				t.Error(err)
			}
		}()
		go func() {
			defer wg.Done()
			svc.ResetForNewDocument()
			_ = svc.Current()
		}()
	}
	wg.Wait()
}
