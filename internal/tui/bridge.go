package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/timesince/internal/board"
	"github.com/verte-zerg/timesince/internal/gate"
	"github.com/verte-zerg/timesince/internal/model"
)

type boardMsg struct{ snap board.Snapshot }

type noticeMsg struct{ notice model.Notice }

type gateMsg struct{ event gate.Event }

// Bridge forwards board and gate callbacks into the Bubble Tea event loop.
// It implements board.Listener; pass GateChanged to gate.OnChange.
type Bridge struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewBridge creates an open bridge.
func NewBridge() *Bridge {
	return &Bridge{
		ch:   make(chan tea.Msg, 64),
		done: make(chan struct{}),
	}
}

// StateChanged implements board.Listener.
func (b *Bridge) StateChanged(s board.Snapshot) { b.send(boardMsg{snap: s}) }

// Notify implements board.Listener.
func (b *Bridge) Notify(n model.Notice) { b.send(noticeMsg{notice: n}) }

// GateChanged forwards a gate transition.
func (b *Bridge) GateChanged(ev gate.Event) { b.send(gateMsg{event: ev}) }

// Close releases pending senders and waiters.
func (b *Bridge) Close() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	case <-b.done:
	}
}

// wait returns a command that delivers the next forwarded message.
func (b *Bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.ch:
			return msg
		case <-b.done:
			return nil
		}
	}
}
