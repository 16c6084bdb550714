package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"lectern/canvas"
)

var (
	styleDefault = tcell.StyleDefault
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleAccent  = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleCursor  = tcell.StyleDefault.Reverse(true)
	styleAlert   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

func (a *App) draw() {
	a.screen.Clear()
	w, h := a.screen.Size()

	chatRows := 0
	if len(a.chatLines) > 0 {
		chatRows = len(a.chatLines) + 1
		if chatRows > 8 {
			chatRows = 8
		}
	}
	a.drawViewer(a.sidebarWidth(), 0, w-a.sidebarWidth(), h-1-chatRows)
	a.drawChat(a.sidebarWidth(), h-1-chatRows, w-a.sidebarWidth(), chatRows)
	a.drawPanel()
	a.drawSidebar(h - 1)
	a.drawStatus(w, h-1)

	a.screen.Show()
}

// drawViewer renders the active document's text into the main region,
// wrapped to the region width and offset by the scroll position.
func (a *App) drawViewer(x, y, w, h int) {
	if w <= 2 || h <= 0 {
		return
	}

	pages := a.view.Pages()
	if len(pages) == 0 {
		a.drawString(x+2, y+1, "No document open. Press u to upload a PDF.", styleDim)
		return
	}

	var lines []string
	for _, p := range pages {
		lines = append(lines, fmt.Sprintf("── page %d ──", p.Number))
		lines = append(lines, canvas.Wrap(p.Text, w-4)...)
		lines = append(lines, "")
	}

	top := a.view.Scroll()
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	for row := 0; row < h && top+row < len(lines); row++ {
		style := styleDefault
		if strings.HasPrefix(lines[top+row], "── page") {
			style = styleDim
		}
		a.drawString(x+2, y+row, lines[top+row], style)
	}
}

// drawChat shows the latest chat exchange under the viewer text. The
// most recent lines win when the answer is taller than the region.
func (a *App) drawChat(x, y, w, h int) {
	if h <= 0 {
		return
	}
	for col := 0; col < w-2; col++ {
		a.screen.SetContent(x+2+col, y, '─', nil, styleDim)
	}
	lines := a.chatLines
	if len(lines) > h-1 {
		lines = lines[len(lines)-(h-1):]
	}
	for i, line := range lines {
		a.drawString(x+2, y+1+i, canvas.Truncate(line, w-4), styleDefault)
	}
}

func (a *App) drawSidebar(h int) {
	width := a.sidebarWidth()
	for row := 0; row < h; row++ {
		for col := 0; col < width; col++ {
			a.screen.SetContent(col, row, ' ', nil, styleDim.Reverse(true))
		}
	}

	bg := styleDim.Reverse(true)
	switch {
	case a.sidebar.ShowFull():
		a.drawStringStyled(1, 0, "Library", bg.Bold(true), width-1)
		a.drawDocRows(width, h, bg, true)
		if s, ok := a.session.User(); ok {
			a.drawStringStyled(1, h-2, canvas.Truncate("⏻ "+s.Username, width-2), bg, width-2)
		}
		a.drawTagFooter(width, h, bg)
	case a.sidebar.ShowNarrow():
		a.drawStringStyled(1, 0, "Library", bg.Bold(true), width-1)
		a.drawDocRows(width, h, bg, false)
	default:
		a.drawStringStyled(1, 0, "≡", bg, width-1)
		for i, d := range a.sidebar.Documents() {
			if docListTop+i >= h {
				break
			}
			initial := "?"
			if d.Name != "" {
				initial = string([]rune(d.Name)[0])
			}
			a.drawStringStyled(1, docListTop+i, initial, bg, width-1)
		}
	}
}

func (a *App) drawDocRows(width, h int, bg tcell.Style, full bool) {
	docs := a.sidebar.Documents()
	for i, d := range docs {
		row := docListTop + i
		if row >= h-1 {
			break
		}
		style := bg
		if full && i == a.sidebar.Cursor() {
			style = styleCursor
		}
		name := canvas.Truncate(d.Name, width-4)
		a.drawStringStyled(1, row, name, style, width-3)
		if full {
			a.drawStringStyled(width-2, row, "✕", bg, 1)
		}
	}
}

func (a *App) drawTagFooter(width, h int, bg tcell.Style) {
	tags := a.sidebar.AllTags()
	if len(tags) == 0 {
		return
	}
	line := "tags:"
	for _, t := range tags {
		line += " " + t
	}
	a.drawStringStyled(1, h-1, canvas.Truncate(line, width-2), bg, width-2)
}

// drawPanel blits the panel's rune matrix and, when a node is
// selected, the detail overlay just inside the panel border.
func (a *App) drawPanel() {
	if !a.panel.Visible() {
		return
	}
	px, py := a.panel.Position()
	m := a.panel.Render()
	mw, mh := m.Size()
	for row := 0; row < mh; row++ {
		style := styleDefault
		if row == 0 {
			style = styleAccent
		}
		for col := 0; col < mw; col++ {
			a.screen.SetContent(px+col, py+row, m.Get(col, row), nil, style)
		}
	}

	pw, ph := a.panel.Size()
	lines := a.panel.DetailLines(pw - 6)
	if lines == nil {
		return
	}
	boxH := len(lines) + 2
	if boxH > ph-2 {
		boxH = ph - 2
		lines = lines[:boxH-2]
	}
	ox, oy := px+2, py+ph-boxH-1
	overlay := canvas.NewMatrix(pw-4, boxH)
	overlay.DrawBox(0, 0, pw-4, boxH, canvas.DefaultBoxStyle)
	for i, line := range lines {
		overlay.DrawText(1, i+1, line, pw-6)
	}
	ow, ohh := overlay.Size()
	for row := 0; row < ohh; row++ {
		for col := 0; col < ow; col++ {
			a.screen.SetContent(ox+col, oy+row, overlay.Get(col, row), nil, styleAccent)
		}
	}
}

func (a *App) drawStatus(w, row int) {
	switch a.promptKind {
	case promptUpload:
		a.drawString(0, row, "Upload PDF path: "+a.prompt+"▏", styleAccent)
		return
	case promptAsk:
		a.drawString(0, row, "Ask: "+a.prompt+"▏", styleAccent)
		return
	}
	if a.alert != "" && time.Now().Before(a.alertUntil) {
		a.drawString(0, row, a.alert, styleAlert)
		return
	}

	who := ""
	if s, ok := a.session.User(); ok {
		who = "  " + s.Username
	}
	hints := "q quit  s sidebar  p panel  u upload  e export  j/k scroll" + who
	a.drawString(0, row, canvas.Truncate(hints, w), styleDim)
}

func (a *App) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// drawStringStyled draws s clipped to maxWidth cells.
func (a *App) drawStringStyled(x, y int, s string, style tcell.Style, maxWidth int) {
	for i, r := range []rune(s) {
		if i >= maxWidth {
			break
		}
		a.screen.SetContent(x+i, y, r, nil, style)
	}
}
