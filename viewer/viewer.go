// Package viewer owns the active document: its extracted text pages,
// the scroll position, and in-session highlights. Every document
// switch is announced on an event bus so dependent components (the
// roadmap panel in particular) can react without a framework watch.
package viewer

import (
	"fmt"

	"go.uber.org/zap"

	"lectern/event"
	"lectern/pdftext"
)

// Highlight marks a stretch of text on one page of a document.
type Highlight struct {
	Page int
	Text string
}

// Extractor turns a document file into text pages. Injected so tests
// do not need real PDFs.
type Extractor func(path string) ([]pdftext.Page, error)

// Viewer holds the active document and its presentation state.
type Viewer struct {
	bus     *event.Bus[event.DocumentChanged]
	extract Extractor
	log     *zap.Logger

	currentID   string
	currentPath string
	pages       []pdftext.Page
	scroll      int

	highlights map[string][]Highlight // document id -> highlights
}

// New creates a viewer publishing document changes on bus.
func New(bus *event.Bus[event.DocumentChanged], log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{
		bus:        bus,
		extract:    pdftext.Extract,
		log:        log,
		highlights: make(map[string][]Highlight),
	}
}

// SetExtractor replaces the text extractor.
func (v *Viewer) SetExtractor(fn Extractor) {
	v.extract = fn
}

// SetCurrentDocument loads the document at path and makes it active,
// resetting scroll and announcing the change. Extraction failure
// leaves the previous document in place.
func (v *Viewer) SetCurrentDocument(path, id string) error {
	pages, err := v.extract(path)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	v.currentID = id
	v.currentPath = path
	v.pages = pages
	v.scroll = 0

	v.log.Info("document opened", zap.String("doc", id), zap.Int("pages", len(pages)))
	if v.bus != nil {
		v.bus.Publish(event.DocumentChanged{ID: id, Path: path})
	}
	return nil
}

// CurrentID returns the active document id, empty when none is open.
func (v *Viewer) CurrentID() string {
	return v.currentID
}

// CurrentPath returns the active document's file path.
func (v *Viewer) CurrentPath() string {
	return v.currentPath
}

// Pages returns the extracted pages of the active document.
func (v *Viewer) Pages() []pdftext.Page {
	return v.pages
}

// Scroll returns the current scroll offset in lines.
func (v *Viewer) Scroll() int {
	return v.scroll
}

// ScrollBy moves the scroll offset, clamped at zero. The upper clamp
// belongs to the renderer, which knows the wrapped line count.
func (v *Viewer) ScrollBy(delta int) {
	v.scroll += delta
	if v.scroll < 0 {
		v.scroll = 0
	}
}

// SetScroll sets an absolute scroll offset, clamped at zero.
func (v *Viewer) SetScroll(offset int) {
	if offset < 0 {
		offset = 0
	}
	v.scroll = offset
}

// AddHighlight records a highlight on the active document. No-op when
// no document is open.
func (v *Viewer) AddHighlight(h Highlight) {
	if v.currentID == "" {
		return
	}
	v.highlights[v.currentID] = append(v.highlights[v.currentID], h)
}

// Highlights returns the highlights recorded for a document.
func (v *Viewer) Highlights(docID string) []Highlight {
	return v.highlights[docID]
}

// RemoveDocumentHighlights purges all highlights of a document. Called
// before the document record itself is removed.
func (v *Viewer) RemoveDocumentHighlights(docID string) {
	delete(v.highlights, docID)
}
