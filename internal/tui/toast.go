package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/timesince/internal/model"
)

const (
	toastTTL  = 4 * time.Second
	toastFade = time.Second
)

type toastExpiredMsg struct{ seq int }

type toast struct {
	notice  model.Notice
	expires time.Time
	seq     int
}

// show replaces the current toast and schedules its removal.
func (t *toast) show(n model.Notice, now time.Time) tea.Cmd {
	t.seq++
	t.notice = n
	t.expires = now.Add(toastTTL)
	seq := t.seq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (t *toast) expire(seq int) {
	if seq == t.seq {
		t.notice = model.Notice{}
	}
}

func (t *toast) active() bool {
	return t.notice.Title != ""
}

func (t *toast) View(now time.Time, width int) string {
	if !t.active() {
		return ""
	}
	text := t.notice.Title
	if t.notice.Description != "" {
		text += " · " + t.notice.Description
	}
	if width > 0 {
		text = truncate(text, width)
	}
	switch {
	case t.expires.Sub(now) <= toastFade:
		return footerStyle.Render(text)
	case t.notice.Err:
		return errorStyle.Render(text)
	default:
		return accentStyle.Render(text)
	}
}
