// Package tui provides the Bubble Tea tracker interface.
package tui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/timesince/internal/auth"
	"github.com/verte-zerg/timesince/internal/board"
	"github.com/verte-zerg/timesince/internal/elapsed"
	"github.com/verte-zerg/timesince/internal/gate"
	"github.com/verte-zerg/timesince/internal/model"
	"github.com/verte-zerg/timesince/internal/share"
)

// DefaultTick is the readout refresh interval.
const DefaultTick = time.Second

// Board is the tracker state owner driven by the UI.
type Board interface {
	Snapshot() board.Snapshot
	Add(ctx context.Context) error
	Rename(ctx context.Context, id, name string) error
	SetStart(ctx context.Context, id string, start time.Time) error
	ResetToNow(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ToggleSort(ctx context.Context) bool
}

// Auth signs users in and out.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*auth.Identity, error)
	SignUp(ctx context.Context, email, password string) (*auth.Identity, error)
	SignOut(ctx context.Context) error
}

// Gate performs the initial session check.
type Gate interface {
	Start(ctx context.Context)
}

// Sharer delivers share text.
type Sharer interface {
	Share(ctx context.Context, title, text string) (share.Method, error)
}

// Options wires the model to its collaborators.
type Options struct {
	Board  Board
	Auth   Auth
	Gate   Gate
	Sharer Sharer
	Bridge *Bridge
	Tick   time.Duration
	Logger *slog.Logger
}

type tickMsg time.Time

type authDoneMsg struct{ err error }

type signedOutMsg struct{ err error }

type shareDoneMsg struct {
	method share.Method
	err    error
}

// Model implements the Bubble Tea tracker UI.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	board  Board
	auth   Auth
	gate   Gate
	sharer Sharer
	bridge *Bridge
	logger *slog.Logger
	tick   time.Duration
	clock  func() time.Time

	keys     keyMap
	editKeys editKeyMap
	help     help.Model
	spinner  spinner.Model

	width  int
	height int

	status   gate.Status
	identity *auth.Identity
	snap     board.Snapshot

	selectedID  string
	selectedIdx int
	scroll      int

	now     time.Time
	prevNow time.Time

	form        signInForm
	renameInput textinput.Model
	renamingID  string
	editor      *dateEditor
	editingID   string
	toast       toast
}

// NewModel constructs the tracker UI.
func NewModel(opts Options) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bridge := opts.Bridge
	if bridge == nil {
		bridge = NewBridge()
	}

	rename := textinput.New()
	rename.Prompt = ""
	rename.CharLimit = 120

	m := &Model{
		ctx:         ctx,
		cancel:      cancel,
		board:       opts.Board,
		auth:        opts.Auth,
		gate:        opts.Gate,
		sharer:      opts.Sharer,
		bridge:      bridge,
		logger:      logger,
		tick:        tick,
		clock:       time.Now,
		keys:        newKeyMap(),
		editKeys:    newEditKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		status:      gate.StatusLoading,
		form:        newSignInForm(),
		renameInput: rename,
	}
	m.now = m.clock()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	ctx := m.ctx
	start := func() tea.Msg {
		if m.gate != nil {
			m.gate.Start(ctx)
		}
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.bridge.wait(), m.tickCmd(), start)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tickMsg:
		m.prevNow = m.now
		m.now = time.Time(msg)
		return m, m.tickCmd()
	case spinner.TickMsg:
		if m.status != gate.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case boardMsg:
		m.applySnapshot(msg.snap)
		return m, m.bridge.wait()
	case noticeMsg:
		return m, tea.Batch(m.toast.show(msg.notice, m.clock()), m.bridge.wait())
	case gateMsg:
		return m, tea.Batch(m.applyGate(msg.event), m.bridge.wait())
	case authDoneMsg:
		m.form.pending = false
		if msg.err != nil {
			m.form.err = msg.err.Error()
		}
		return m, nil
	case signedOutMsg:
		if msg.err != nil {
			return m, m.toast.show(model.Notice{Title: "Failed to sign out", Description: msg.err.Error(), Err: true}, m.clock())
		}
		return m, m.toast.show(model.Notice{Title: "Signed out", Description: "See you next time!"}, m.clock())
	case shareDoneMsg:
		if msg.err != nil {
			return m, m.toast.show(model.Notice{Title: "Failed to share", Description: msg.err.Error(), Err: true}, m.clock())
		}
		return m, m.toast.show(msg.method.Notice(), m.clock())
	case toastExpiredMsg:
		m.toast.expire(msg.seq)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m.quit()
		}
		switch m.status {
		case gate.StatusSignedOut:
			return m.updateForm(msg)
		case gate.StatusSignedIn:
			switch {
			case m.renamingID != "":
				return m.updateRename(msg)
			case m.editor != nil:
				return m.updateEditor(msg)
			default:
				return m.updateBoard(msg)
			}
		}
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	switch m.status {
	case gate.StatusLoading:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" "+mutedStyle.Render("Loading..."))
	case gate.StatusSignedOut:
		body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, m.form.View(m.width))
		return body + "\n" + m.toast.View(m.clock(), m.width)
	}
	return m.renderBoard()
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// intent runs a board mutation off the event loop. Failures reach the user
// through board notices.
func (m *Model) intent(name string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	logger := m.logger
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			logger.Debug("intent failed", "intent", name, "err", err)
		}
		return nil
	}
}

func (m *Model) applyGate(ev gate.Event) tea.Cmd {
	m.status = ev.Status
	m.identity = ev.Identity
	now := m.clock()
	switch ev.Status {
	case gate.StatusSignedIn:
		m.form.reset()
		if ev.Restored {
			return m.toast.show(model.Notice{Title: "Welcome back!", Description: "Your trackers are loading..."}, now)
		}
		return m.toast.show(model.Notice{Title: "Signed in successfully", Description: "Welcome to Time Since!"}, now)
	case gate.StatusSignedOut:
		m.renamingID = ""
		m.editor = nil
		m.editingID = ""
		if ev.Err != nil {
			return m.toast.show(model.Notice{Title: "Failed to restore session", Description: ev.Err.Error(), Err: true}, now)
		}
	}
	return nil
}

func (m *Model) applySnapshot(s board.Snapshot) {
	m.snap = s
	m.keys.Sort.SetEnabled(len(s.Trackers) > 1)
	if len(s.Trackers) == 0 {
		m.selectedID, m.selectedIdx = "", 0
	} else if idx := m.indexOf(m.selectedID); idx >= 0 {
		m.selectedIdx = idx
	} else {
		m.selectedIdx = clampInt(m.selectedIdx, 0, len(s.Trackers)-1)
		m.selectedID = s.Trackers[m.selectedIdx].ID
	}
	if m.renamingID != "" && m.indexOf(m.renamingID) < 0 {
		m.renamingID = ""
	}
	if m.editingID != "" && m.indexOf(m.editingID) < 0 {
		m.editor, m.editingID = nil, ""
	}
}

func (m *Model) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range m.snap.Trackers {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) selected() (model.Tracker, bool) {
	if len(m.snap.Trackers) == 0 {
		return model.Tracker{}, false
	}
	return m.snap.Trackers[clampInt(m.selectedIdx, 0, len(m.snap.Trackers)-1)], true
}

func (m *Model) moveSelection(delta int) {
	n := len(m.snap.Trackers)
	if n == 0 {
		return
	}
	m.selectedIdx = clampInt(m.selectedIdx+delta, 0, n-1)
	m.selectedID = m.snap.Trackers[m.selectedIdx].ID
}

func (m *Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form.pending {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m.quit()
	case "tab", "down":
		return m, m.form.setFocus(m.form.focus + 1)
	case "shift+tab", "up":
		return m, m.form.setFocus(m.form.focus - 1)
	case "ctrl+t":
		m.form.toggleMode()
		return m, nil
	case "enter":
		if m.form.focus == 0 {
			return m, m.form.setFocus(1)
		}
		return m, m.submitForm()
	}
	return m, m.form.update(msg)
}

func (m *Model) submitForm() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	m.form.pending = true
	m.form.err = ""
	ctx := m.ctx
	email, password, signUp := m.form.email(), m.form.password(), m.form.signUp
	authn := m.auth
	return func() tea.Msg {
		var err error
		if signUp {
			_, err = authn.SignUp(ctx, email, password)
		} else {
			_, err = authn.SignIn(ctx, email, password)
		}
		return authDoneMsg{err: err}
	}
}

func (m *Model) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	b := m.board
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Add):
		return m, m.intent("add", b.Add)
	case key.Matches(msg, m.keys.Sort):
		return m, m.intent("sort", func(ctx context.Context) error {
			b.ToggleSort(ctx)
			return nil
		})
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.SignOut):
		return m, m.signOut()
	}

	t, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Rename):
		m.renamingID = t.ID
		m.renameInput.SetValue(t.Name)
		m.renameInput.CursorEnd()
		return m, m.renameInput.Focus()
	case key.Matches(msg, m.keys.Date):
		m.editingID = t.ID
		m.editor = newDateEditor(t.StartInstant, m.clock())
	case key.Matches(msg, m.keys.Reset):
		return m, m.intent("reset", func(ctx context.Context) error {
			return b.ResetToNow(ctx, t.ID)
		})
	case key.Matches(msg, m.keys.Delete):
		return m, m.intent("delete", func(ctx context.Context) error {
			return b.Delete(ctx, t.ID)
		})
	case key.Matches(msg, m.keys.Share):
		return m, m.share(t)
	}
	return m, nil
}

func (m *Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.renamingID = ""
		m.renameInput.Blur()
		return m, nil
	case tea.KeyEnter:
		id, name := m.renamingID, m.renameInput.Value()
		m.renamingID = ""
		m.renameInput.Blur()
		b := m.board
		return m, m.intent("rename", func(ctx context.Context) error {
			return b.Rename(ctx, id, name)
		})
	}
	var cmd tea.Cmd
	m.renameInput, cmd = m.renameInput.Update(msg)
	return m, cmd
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.editKeys.Cancel):
		m.editor, m.editingID = nil, ""
	case key.Matches(msg, m.editKeys.Commit):
		id, start, changed := m.editingID, m.editor.Time(), m.editor.changed()
		m.editor, m.editingID = nil, ""
		if !changed {
			return m, nil
		}
		b := m.board
		return m, m.intent("set-start", func(ctx context.Context) error {
			return b.SetStart(ctx, id, start)
		})
	case key.Matches(msg, m.editKeys.Prev):
		m.editor.move(-1)
	case key.Matches(msg, m.editKeys.Next):
		m.editor.move(1)
	case key.Matches(msg, m.editKeys.Inc):
		m.editor.adjust(1)
	case key.Matches(msg, m.editKeys.Dec):
		m.editor.adjust(-1)
	}
	return m, nil
}

func (m *Model) signOut() tea.Cmd {
	if m.auth == nil {
		return nil
	}
	ctx := m.ctx
	authn := m.auth
	return func() tea.Msg {
		return signedOutMsg{err: authn.SignOut(ctx)}
	}
}

func (m *Model) share(t model.Tracker) tea.Cmd {
	if m.sharer == nil {
		return nil
	}
	text := share.Text(t.Name, elapsed.Compute(t.StartInstant, m.clock()), t.StartInstant.Local())
	title := share.Title(t.Name)
	ctx := m.ctx
	sharer := m.sharer
	return func() tea.Msg {
		method, err := sharer.Share(ctx, title, text)
		return shareDoneMsg{method: method, err: err}
	}
}

func (m *Model) renderBoard() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Top, m.renderCards(bodyHeight))
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("Time Since")
	var right []string
	if m.identity != nil {
		right = append(right, mutedStyle.Render(m.identity.Email))
	}
	if len(m.snap.Trackers) > 1 {
		label := m.snap.Mode.Label()
		if m.snap.Swapping {
			label = "Swapping..."
		}
		right = append(right, accentStyle.Render("["+label+"]"))
	}
	rightText := strings.Join(right, "  ")
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(rightText)
	if gap < 1 {
		gap = 1
	}
	line := title + strings.Repeat(" ", gap) + rightText
	subtitle := mutedStyle.Render(truncate("Track how much time has passed since important events", m.width))
	return line + "\n" + subtitle + "\n"
}

func (m *Model) renderFooter() string {
	var helpView string
	switch {
	case m.renamingID != "":
		helpView = footerStyle.Render("enter: save  esc: cancel")
	case m.editor != nil:
		helpView = m.help.View(m.editKeys)
	default:
		helpView = m.help.View(m.keys)
	}
	return m.toast.View(m.clock(), m.width) + "\n" + helpView
}

func (m *Model) renderCards(height int) string {
	if len(m.snap.Trackers) == 0 {
		return lipgloss.JoinVertical(lipgloss.Center,
			"",
			titleStyle.Render("No trackers yet"),
			mutedStyle.Render("Press n to create your first tracker."),
		)
	}
	width := cardWidth(m.width)
	cards := make([]string, len(m.snap.Trackers))
	heights := make([]int, len(cards))
	for i, t := range m.snap.Trackers {
		cards[i] = renderCard(m.cardView(t, i == m.selectedIdx), width)
		heights[i] = lipgloss.Height(cards[i])
	}
	m.scroll = scrollFor(heights, m.scroll, m.selectedIdx, height)

	used := 0
	var visible []string
	for i := m.scroll; i < len(cards); i++ {
		if used+heights[i] > height && len(visible) > 0 {
			break
		}
		visible = append(visible, cards[i])
		used += heights[i]
	}
	return lipgloss.JoinVertical(lipgloss.Left, visible...)
}

func (m *Model) cardView(t model.Tracker, selected bool) cardView {
	c := cardView{tracker: t, now: m.now, prevNow: m.prevNow, selected: selected}
	if t.ID == m.renamingID {
		c.nameLine = m.renameInput.View()
	}
	if t.ID == m.editingID && m.editor != nil {
		c.editor = m.editor.View()
	}
	return c
}

// scrollFor returns the first visible card so that selected fits in height.
func scrollFor(heights []int, scroll, selected, height int) int {
	if selected < scroll {
		return selected
	}
	for scroll < selected {
		used := 0
		for i := scroll; i <= selected; i++ {
			used += heights[i]
		}
		if used <= height {
			break
		}
		scroll++
	}
	return scroll
}
