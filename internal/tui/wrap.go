package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapWords breaks text at spaces so no line exceeds width cells. Words
// wider than width are split.
func wrapWords(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	var out strings.Builder
	lineWidth := 0
	for i, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		switch {
		case i == 0:
		case lineWidth+1+w > width:
			out.WriteRune('\n')
			lineWidth = 0
		default:
			out.WriteRune(' ')
			lineWidth++
		}
		for lineWidth == 0 && w > width {
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				break
			}
			out.WriteString(head)
			out.WriteRune('\n')
			word = strings.TrimPrefix(word, head)
			w = runewidth.StringWidth(word)
		}
		out.WriteString(word)
		lineWidth += w
	}
	return out.String()
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

func centerText(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}
