package tui

import (
	"context"
	"os"

	"github.com/gdamore/tcell/v2"

	"lectern/canvas"
	"lectern/diagram"
	"lectern/export"
	"lectern/panel"
	"lectern/pdftext"
	"lectern/sidebar"
)

// Row of the first document entry inside the sidebar.
const docListTop = 2

func (a *App) handleKey(ev *tcell.EventKey) {
	if a.promptKind != promptNone {
		a.handlePromptKey(ev)
		return
	}

	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		a.quit = true
		return
	case tcell.KeyUp:
		a.moveFocus(-1)
		return
	case tcell.KeyDown:
		a.moveFocus(1)
		return
	case tcell.KeyEnter:
		if a.sidebar.ShowFull() {
			docs := a.sidebar.Documents()
			if i := a.sidebar.Cursor(); i < len(docs) {
				a.sidebar.SelectDocument(docs[i].ID)
			}
		}
		return
	case tcell.KeyDelete:
		a.removeFocused()
		return
	}

	switch ev.Rune() {
	case 'q':
		a.quit = true
	case 's':
		a.sidebar.ToggleCollapsed()
	case 'p':
		a.panel.ToggleVisible()
	case 'u':
		a.promptKind = promptUpload
		a.prompt = ""
	case 'c':
		if a.view.CurrentID() == "" {
			a.showAlert("Open a document before asking about it")
			return
		}
		a.promptKind = promptAsk
		a.prompt = ""
	case 'd':
		a.removeFocused()
	case 'e':
		if err := a.panel.Export(); err != nil {
			a.showAlert("Export failed: " + err.Error())
		} else {
			a.showAlert("Exported " + panel.ExportFilename)
		}
	case 'E':
		a.exportMermaid()
	case 'x':
		a.panel.CloseDetail()
	case 'f':
		a.panel.FitToView()
	case 'j':
		a.view.ScrollBy(1)
	case 'k':
		a.view.ScrollBy(-1)
	case 'J':
		a.panel.ScrollBy(0, 1)
	case 'K':
		a.panel.ScrollBy(0, -1)
	case 'H':
		a.panel.ScrollBy(-1, 0)
	case 'L':
		a.panel.ScrollBy(1, 0)
	}
}

// moveFocus moves the sidebar cursor when the list is open, otherwise
// scrolls the viewer.
func (a *App) moveFocus(delta int) {
	if a.sidebar.ShowFull() {
		a.sidebar.MoveCursor(delta)
		return
	}
	a.view.ScrollBy(delta)
}

func (a *App) removeFocused() {
	if !a.sidebar.ShowFull() {
		return
	}
	docs := a.sidebar.Documents()
	i := a.sidebar.Cursor()
	if i >= len(docs) {
		return
	}
	a.sidebar.RemoveDocument(docs[i].ID, nil)
}

func (a *App) handlePromptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		a.promptKind = promptNone
		a.prompt = ""
	case tcell.KeyEnter:
		input := a.prompt
		kind := a.promptKind
		a.promptKind = promptNone
		a.prompt = ""
		if input == "" {
			return
		}
		switch kind {
		case promptUpload:
			a.sidebar.UploadDocument(input)
		case promptAsk:
			a.askQuestion(input)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(a.prompt) > 0 {
			a.prompt = a.prompt[:len(a.prompt)-1]
		}
	case tcell.KeyRune:
		a.prompt += string(ev.Rune())
	}
}

// exportMermaid writes the current roadmap as a Mermaid flowchart next
// to the JSON artifact.
func (a *App) exportMermaid() {
	exp, err := export.NewExporter(export.FormatMermaid)
	if err != nil {
		a.showAlert("Export failed: " + err.Error())
		return
	}
	d := a.panel.Diagram()
	if d == nil {
		d = &diagram.Diagram{}
	}
	out, err := exp.Export(d)
	if err != nil {
		a.showAlert("Export failed: " + err.Error())
		return
	}
	name := "roadmap" + exp.GetFileExtension()
	if err := os.WriteFile(name, []byte(out), 0o644); err != nil {
		a.showAlert("Export failed: " + err.Error())
		return
	}
	a.showAlert("Exported " + name)
}

// askQuestion sends the question to the chat store off the event loop
// and dispatches the answer back for display.
func (a *App) askQuestion(question string) {
	docID := a.view.CurrentID()
	excerpt := pdftext.Excerpt(a.view.Pages(), a.cfg.ExcerptRunes)

	a.chatLines = []string{"› " + question, "…"}
	go func() {
		answer, err := a.chat.Ask(context.Background(), docID, question, excerpt)
		a.panel.Dispatch(func() {
			if err != nil {
				a.chatLines = nil
				a.showAlert("Chat failed: " + err.Error())
				return
			}
			a.chatLines = append([]string{"› " + question}, canvas.Wrap(answer, 70)...)
		})
	}()
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0
	wasPressed := a.prevButtons&tcell.Button1 != 0
	a.prevButtons = buttons

	switch {
	case buttons&tcell.WheelUp != 0:
		a.wheel(x, y, -2)
		return
	case buttons&tcell.WheelDown != 0:
		a.wheel(x, y, 2)
		return
	}

	switch {
	case pressed && !wasPressed:
		a.mouseDown(x, y)
	case pressed && wasPressed:
		a.panel.PointerMove(x, y)
	case !pressed && wasPressed:
		a.panel.EndDrag()
	default:
		a.mouseHover(x, y)
	}
}

func (a *App) wheel(x, y, delta int) {
	if a.panel.Contains(x, y) {
		a.panel.ScrollBy(0, delta)
		return
	}
	a.view.ScrollBy(delta)
}

func (a *App) mouseDown(x, y int) {
	// The sidebar is a drawer above the panel, so its region wins.
	if x < a.sidebarWidth() {
		a.sidebarClick(x, y)
		return
	}

	switch {
	case a.panel.InResizeGrip(x, y):
		a.panel.BeginResize(x, y)
	case a.panel.InHandle(x, y):
		a.panel.BeginDrag(x, y)
	case a.panel.Contains(x, y):
		a.panel.SelectNodeAt(x, y)
	}
}

// mouseHover drives the sidebar's edge-reveal: resting on the leftmost
// column opens the narrow preview, moving past the rail closes it.
func (a *App) mouseHover(x, _ int) {
	switch {
	case x == 0:
		a.sidebar.EdgeEnter()
	case x >= a.sidebarWidth():
		a.sidebar.Leave()
	}
}

// sidebarClick resolves a press inside the sidebar region. A hit on
// the row's remove glyph deletes the document and swallows the click;
// anywhere else on a row selects it.
func (a *App) sidebarClick(x, y int) {
	if y == 0 {
		a.sidebar.ToggleCollapsed()
		return
	}
	if !a.sidebar.ShowFull() && !a.sidebar.ShowNarrow() {
		return
	}

	// The logout entry sits two rows above the status line.
	if a.sidebar.ShowFull() && a.screen != nil {
		if _, h := a.screen.Size(); y == h-3 {
			if _, ok := a.session.User(); ok {
				if err := a.session.Logout(); err != nil {
					a.showAlert("Logout failed: " + err.Error())
				} else {
					a.showAlert("Logged out")
				}
				return
			}
		}
	}

	docs := a.sidebar.Documents()
	i := y - docListTop
	if i < 0 || i >= len(docs) {
		return
	}

	ev := &sidebar.ClickEvent{}
	if a.sidebar.ShowFull() && x == a.sidebarWidth()-2 {
		a.sidebar.RemoveDocument(docs[i].ID, ev)
	}
	if ev.Propagates() {
		a.sidebar.SelectDocument(docs[i].ID)
	}
}

