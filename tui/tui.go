// Package tui is the terminal shell: it owns the tcell screen, routes
// mouse and key events to the sidebar and panel controllers, and draws
// everything. All controller mutation happens on the event-loop
// goroutine; asynchronous work re-enters the loop through PostEvent.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"lectern/auth"
	"lectern/chat"
	"lectern/config"
	"lectern/diagram"
	"lectern/event"
	"lectern/library"
	"lectern/panel"
	"lectern/pdftext"
	"lectern/roadmap"
	"lectern/sidebar"
	"lectern/viewer"
)

// Sidebar geometry in cells.
const (
	railWidth   = 4
	narrowWidth = 14
	fullWidth   = 32
)

// dispatchEvent carries a closure into the event loop.
type dispatchEvent struct {
	when time.Time
	fn   func()
}

func (e *dispatchEvent) When() time.Time { return e.when }

// App wires the controllers to a tcell screen.
type App struct {
	screen tcell.Screen
	cfg    *config.Config
	log    *zap.Logger

	bus     *event.Bus[event.DocumentChanged]
	lib     *library.Library
	view    *viewer.Viewer
	roadmap *roadmap.Service
	chat    *chat.Store
	session *auth.Store

	sidebar *sidebar.Controller
	panel   *panel.Controller

	alert      string
	alertUntil time.Time

	// prompt is the single-line input at the bottom of the screen,
	// shared by the upload path and the chat question.
	prompt     string
	promptKind promptKind
	chatLines  []string

	prevButtons tcell.ButtonMask
	quit        bool
}

type promptKind int

const (
	promptNone promptKind = iota
	promptUpload
	promptAsk
)

// New assembles the application. The caller owns the library handle.
func New(cfg *config.Config, lib *library.Library, rm *roadmap.Service, ch *chat.Store, session *auth.Store, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}

	bus := event.NewBus[event.DocumentChanged]()
	view := viewer.New(bus, log)

	a := &App{
		cfg:     cfg,
		log:     log,
		bus:     bus,
		lib:     lib,
		view:    view,
		roadmap: rm,
		chat:    ch,
		session: session,
	}

	a.sidebar = sidebar.New(lib, view, log, rm, ch)
	a.sidebar.Alert = a.showAlert

	a.panel = panel.New(
		&roadmapSource{svc: rm, lib: lib, excerptRunes: cfg.ExcerptRunes},
		bus,
		cfg.PanelX, cfg.PanelY, cfg.PanelWidth, cfg.PanelHeight,
		log,
	)
	return a
}

// Run takes over the terminal until quit. The panel subscription and
// the screen are released on every exit path, including panics.
func (a *App) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	a.screen = screen
	screen.EnableMouse()
	screen.SetStyle(tcell.StyleDefault)

	defer func() {
		a.panel.Close() // releases the pointer/bus subscription even mid-drag
		screen.Fini()
	}()

	// Async completions re-enter the loop here instead of mutating
	// from foreign goroutines.
	a.panel.Dispatch = func(fn func()) {
		screen.PostEvent(&dispatchEvent{when: time.Now(), fn: fn})
	}

	for !a.quit {
		a.draw()
		switch ev := screen.PollEvent().(type) {
		case *dispatchEvent:
			ev.fn()
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			a.handleKey(ev)
		case *tcell.EventMouse:
			a.handleMouse(ev)
		}
	}
	return nil
}

func (a *App) showAlert(msg string) {
	a.alert = msg
	a.alertUntil = time.Now().Add(4 * time.Second)
	a.log.Warn("alert", zap.String("msg", msg))
}

// sidebarWidth returns the current width of the sidebar region.
func (a *App) sidebarWidth() int {
	switch {
	case a.sidebar.ShowFull():
		return fullWidth
	case a.sidebar.ShowNarrow():
		return narrowWidth
	default:
		return railWidth
	}
}

// roadmapSource adapts the roadmap service to the panel's Source: it
// resolves the document and hands the service an excerpt of its text.
// Fetch runs on the panel's background goroutine, so it touches only
// goroutine-safe collaborators and re-extracts the text itself rather
// than reaching into the viewer's loop-owned state.
type roadmapSource struct {
	svc          *roadmap.Service
	lib          *library.Library
	excerptRunes int
}

func (s *roadmapSource) Fetch(ctx context.Context, docID string) (*diagram.Diagram, error) {
	docs, err := s.lib.Documents()
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.ID == docID {
			pages, err := pdftext.Extract(d.Path)
			if err != nil {
				return nil, err
			}
			return s.svc.Fetch(ctx, docID, d.Name, pdftext.Excerpt(pages, s.excerptRunes))
		}
	}
	return nil, fmt.Errorf("document %s is not in the library", docID)
}
