package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/timesince/internal/elapsed"
	"github.com/verte-zerg/timesince/internal/model"
)

const (
	maxCardWidth = 64
	// minCardWidth fits the six digit cells.
	minCardWidth = 44
)

var (
	titleStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	accentStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	digitStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	flipStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	fieldStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	focusedFieldStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#C89A3A"))
	cardStyle         = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("#C89A3A"))
)

// cardView is everything needed to draw one tracker.
type cardView struct {
	tracker  model.Tracker
	now      time.Time
	prevNow  time.Time
	selected bool
	// nameLine replaces the name, e.g. with a rename input.
	nameLine string
	// editor is drawn under the start line, e.g. a date editor.
	editor string
}

func cardWidth(total int) int {
	w := total - 2
	if w > maxCardWidth {
		w = maxCardWidth
	}
	if w < minCardWidth {
		w = minCardWidth
	}
	return w
}

func renderCard(c cardView, width int) string {
	inner := width - 4 // 2 border + 2 padding
	b := elapsed.Compute(c.tracker.StartInstant, c.now)

	var changed []bool
	if !c.prevNow.IsZero() {
		changed = changedUnits(elapsed.Compute(c.tracker.StartInstant, c.prevNow), b)
	}

	name := c.nameLine
	if name == "" {
		name = titleStyle.Render(truncate(c.tracker.Name, inner))
	}
	lines := []string{
		name,
		"",
		renderDigits(b, changed),
		"",
		wrapWords(b.Phrase(), inner),
		mutedStyle.Render(formatStarted(c.tracker.StartInstant.Local())),
	}
	if c.editor != "" {
		lines = append(lines, "", c.editor)
	}

	style := cardStyle
	if c.selected {
		style = selectedCardStyle
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// renderDigits draws the six two-digit cells with their labels. Cells whose
// value changed since the previous tick are highlighted.
func renderDigits(b elapsed.Breakdown, changed []bool) string {
	units := b.Units()
	cells := make([]string, len(units))
	for i, u := range units {
		w := max(len(u.Label), 2)
		style := digitStyle
		if i < len(changed) && changed[i] {
			style = flipStyle
		}
		top := style.Render(centerText(fmt.Sprintf("%02d", u.Value), w))
		cells[i] = top + "\n" + mutedStyle.Render(centerText(u.Label, w))
	}
	return joinColumns(cells, " ")
}

func changedUnits(prev, cur elapsed.Breakdown) []bool {
	p, c := prev.Units(), cur.Units()
	out := make([]bool, len(c))
	for i := range c {
		out[i] = p[i].Value != c[i].Value
	}
	return out
}
