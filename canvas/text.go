package canvas

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// DrawText writes a string starting at (x, y), clipped to maxWidth
// display columns. Wide runes that would straddle the clip boundary are
// dropped rather than half-drawn. Returns the number of columns used.
func (m *Matrix) DrawText(x, y int, text string, maxWidth int) int {
	if maxWidth <= 0 {
		return 0
	}

	col := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue // combining marks have no cell of their own
		}
		if col+w > maxWidth {
			break
		}
		m.Set(x+col, y, r)
		// Wide runes occupy two cells; blank the second so stale
		// content does not show through.
		for i := 1; i < w; i++ {
			m.Set(x+col+i, y, ' ')
		}
		col += w
	}
	return col
}

// Truncate shortens a string to at most width display columns, adding
// an ellipsis when it was cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// Pad extends or truncates a string to exactly width display columns.
func Pad(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// Wrap breaks text into lines of at most width columns, breaking on
// spaces where possible.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range splitLines(text) {
		if para == "" {
			lines = append(lines, "")
			continue
		}
		line := ""
		lineW := 0
		for _, word := range splitWords(para) {
			ww := runewidth.StringWidth(word)
			switch {
			case lineW == 0:
				// A word longer than the width is hard-cut.
				lines, line, lineW = hardCut(lines, word, width)
			case lineW+1+ww <= width:
				line += " " + word
				lineW += 1 + ww
			default:
				lines = append(lines, line)
				lines, line, lineW = hardCut(lines, word, width)
			}
		}
		if lineW > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}

// hardCut splits a word wider than the line into full lines and
// returns the remainder with its width. A rune wider than the line
// gets a line of its own so each iteration always consumes input.
func hardCut(lines []string, word string, width int) ([]string, string, int) {
	ww := runewidth.StringWidth(word)
	for ww > width {
		cut := runewidth.Truncate(word, width, "")
		if cut == "" {
			_, size := utf8.DecodeRuneInString(word)
			cut = word[:size]
		}
		lines = append(lines, cut)
		word = word[len(cut):]
		ww = runewidth.StringWidth(word)
	}
	return lines, word, ww
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

func splitWords(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
