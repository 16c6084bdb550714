// Package sidebar implements the collapsible document-library rail.
// Collapsed it shows an icon rail; resting the pointer on the screen's
// left edge reveals a narrow preview, and expanding shows the full
// list. The controller relays user intent (upload, select, remove) to
// its collaborators and keeps no document state of its own.
package sidebar

import (
	"go.uber.org/zap"

	"lectern/library"
	"lectern/pdftext"
)

// Library is the document store the sidebar delegates persistence to.
type Library interface {
	Add(path string, tags ...string) (library.Document, error)
	Select(id string) (library.Document, error)
	Remove(id string) error
	Documents() ([]library.Document, error)
	AllTags() ([]string, error)
}

// Viewer is the slice of the document viewer the sidebar drives.
type Viewer interface {
	SetCurrentDocument(path, id string) error
	RemoveDocumentHighlights(id string)
}

// DocumentCache is a per-document cache collaborator (chat, roadmap)
// that must be reset when the active document changes and purged when
// a document is removed.
type DocumentCache interface {
	ResetForNewDocument()
	RemoveDocument(id string)
}

// ClickEvent carries propagation control for a pointer press that may
// hit nested targets (the remove button sits on a selectable row).
type ClickEvent struct {
	stopped bool
}

// StopPropagation prevents outer targets from also handling the click.
func (e *ClickEvent) StopPropagation() {
	if e != nil {
		e.stopped = true
	}
}

// Propagates reports whether outer targets should still handle the click.
func (e *ClickEvent) Propagates() bool {
	return e == nil || !e.stopped
}

// Controller holds the sidebar's presentation state.
type Controller struct {
	collapsed bool
	hovering  bool
	cursor    int

	lib    Library
	viewer Viewer
	caches []DocumentCache

	// Alert surfaces a blocking user-visible message; wired to the
	// shell's alert line.
	Alert func(msg string)

	sniff func(path string) bool
	log   *zap.Logger
}

// New creates a collapsed sidebar. Caches are the per-document
// collaborators reset on every document switch.
func New(lib Library, viewer Viewer, log *zap.Logger, caches ...DocumentCache) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		collapsed: true,
		lib:       lib,
		viewer:    viewer,
		caches:    caches,
		Alert:     func(string) {},
		sniff:     pdftext.IsPDF,
		log:       log,
	}
}

// ToggleCollapsed flips between the rail and the full list. Expanding
// always drops a live hover so a stale hover-preview cannot persist.
func (c *Controller) ToggleCollapsed() {
	c.collapsed = !c.collapsed
	if !c.collapsed {
		c.hovering = false
	}
}

// Collapsed reports the collapse state.
func (c *Controller) Collapsed() bool {
	return c.collapsed
}

// EdgeEnter marks the pointer resting on the reveal edge. Only
// meaningful while collapsed.
func (c *Controller) EdgeEnter() {
	if c.collapsed {
		c.hovering = true
	}
}

// Leave clears the hover unconditionally.
func (c *Controller) Leave() {
	c.hovering = false
}

// ShowNarrow reports whether the hover-reveal narrow rail is visible.
// Derived state; recomputed from scratch on every call.
func (c *Controller) ShowNarrow() bool {
	return c.collapsed && c.hovering
}

// ShowFull reports whether the expanded rail is visible.
func (c *Controller) ShowFull() bool {
	return !c.collapsed
}

// UploadDocument adds the file at path to the library and makes it the
// active document. Only PDFs are accepted; anything else is rejected
// silently, with no state change anywhere.
func (c *Controller) UploadDocument(path string, tags ...string) {
	if !c.sniff(path) {
		return
	}

	// New document: dependent per-document state is stale.
	for _, cache := range c.caches {
		cache.ResetForNewDocument()
	}

	doc, err := c.lib.Add(path, tags...)
	if err != nil {
		c.log.Warn("upload failed", zap.String("path", path), zap.Error(err))
		c.Alert("Could not add document: " + err.Error())
		return
	}

	if err := c.viewer.SetCurrentDocument(doc.Path, doc.ID); err != nil {
		c.Alert("Could not open document: " + err.Error())
		return
	}

	c.collapse()
}

// SelectDocument makes an existing document active. Unknown ids are a
// no-op.
func (c *Controller) SelectDocument(id string) {
	docs, err := c.lib.Documents()
	if err != nil {
		c.Alert("Could not list documents: " + err.Error())
		return
	}
	var found *library.Document
	for i := range docs {
		if docs[i].ID == id {
			found = &docs[i]
			break
		}
	}
	if found == nil {
		return
	}

	for _, cache := range c.caches {
		cache.ResetForNewDocument()
	}

	doc, err := c.lib.Select(id)
	if err != nil {
		c.Alert("Could not select document: " + err.Error())
		return
	}
	if err := c.viewer.SetCurrentDocument(doc.Path, doc.ID); err != nil {
		c.Alert("Could not open document: " + err.Error())
		return
	}

	c.collapse()
}

// RemoveDocument deletes a document. The click that hit the remove
// button must not bubble into row selection, so propagation stops
// first; document-scoped derived state (highlights, caches) is purged
// before the record itself goes.
func (c *Controller) RemoveDocument(id string, ev *ClickEvent) {
	ev.StopPropagation()

	c.viewer.RemoveDocumentHighlights(id)
	for _, cache := range c.caches {
		cache.RemoveDocument(id)
	}

	if err := c.lib.Remove(id); err != nil {
		c.Alert("Could not remove document: " + err.Error())
		return
	}
	c.clampCursor()
}

// Documents returns the library listing for rendering.
func (c *Controller) Documents() []library.Document {
	docs, err := c.lib.Documents()
	if err != nil {
		c.log.Warn("listing documents failed", zap.Error(err))
		return nil
	}
	return docs
}

// AllTags returns the library's tag set for the rail footer.
func (c *Controller) AllTags() []string {
	tags, err := c.lib.AllTags()
	if err != nil {
		return nil
	}
	return tags
}

// Cursor returns the index of the focused row.
func (c *Controller) Cursor() int {
	return c.cursor
}

// MoveCursor shifts the focused row, clamped to the document list.
func (c *Controller) MoveCursor(delta int) {
	c.cursor += delta
	c.clampCursor()
}

func (c *Controller) clampCursor() {
	n := len(c.Documents())
	if c.cursor >= n {
		c.cursor = n - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

// collapse returns to the rail after an action, clearing hover with it.
func (c *Controller) collapse() {
	c.collapsed = true
	c.hovering = false
}
