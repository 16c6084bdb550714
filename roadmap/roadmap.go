// Package roadmap produces reading-roadmap diagrams for documents. A
// Service answers panel fetches from a per-document cache and falls
// back to a Generator (normally the OpenAI one) on a miss. A nil or
// empty diagram is a valid answer; the panel renders it as an empty
// state rather than an error.
package roadmap

import (
	"context"
	"fmt"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"lectern/diagram"
)

// Generator turns document text into a roadmap diagram.
type Generator interface {
	Generate(ctx context.Context, title, text string) (*diagram.Diagram, error)
}

// Service caches generated roadmaps per document.
type Service struct {
	gen   Generator
	cache *gocache.Cache
	log   *zap.Logger

	// mu guards current: Fetch completes on the panel's fetch
	// goroutine while resets and reads run on the UI event loop.
	mu      sync.Mutex
	current *diagram.Diagram // roadmap of the active document, cleared on switch
}

// NewService creates a Service. A nil logger disables logging.
func NewService(gen Generator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		gen:   gen,
		cache: gocache.New(gocache.NoExpiration, 0),
		log:   log,
	}
}

// Fetch returns the roadmap for the document, generating it on a cache
// miss. The text argument is only consulted when generation runs.
func (s *Service) Fetch(ctx context.Context, docID, title, text string) (*diagram.Diagram, error) {
	if docID == "" {
		return nil, fmt.Errorf("fetch requires a document id")
	}

	if cached, ok := s.cache.Get(docID); ok {
		d := cached.(*diagram.Diagram)
		s.setCurrent(d)
		return d, nil
	}

	d, err := s.gen.Generate(ctx, title, text)
	if err != nil {
		return nil, fmt.Errorf("generating roadmap for %s: %w", docID, err)
	}

	diagram.EnsureUniqueNodeIDs(d)
	if err := diagram.Validate(d); err != nil {
		// A structurally broken diagram renders as the empty state.
		s.log.Warn("discarding invalid roadmap", zap.String("doc", docID), zap.Error(err))
		d = &diagram.Diagram{}
	}

	s.cache.Set(docID, d, gocache.NoExpiration)
	s.setCurrent(d)
	s.log.Info("roadmap ready", zap.String("doc", docID), zap.Int("nodes", len(d.Nodes)))
	return d, nil
}

func (s *Service) setCurrent(d *diagram.Diagram) {
	s.mu.Lock()
	s.current = d
	s.mu.Unlock()
}

// Current returns the roadmap of the active document, or nil after a reset.
func (s *Service) Current() *diagram.Diagram {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ResetForNewDocument drops the in-memory roadmap when the active
// document changes. Cached roadmaps of other documents survive so
// switching back is instant.
func (s *Service) ResetForNewDocument() {
	s.setCurrent(nil)
}

// RemoveDocument purges the cache entry for a removed document.
func (s *Service) RemoveDocument(docID string) {
	s.cache.Delete(docID)
}
