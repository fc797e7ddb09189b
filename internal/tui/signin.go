package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var formStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#C89A3A")).
	Padding(1, 2)

// signInForm collects credentials for signing in or creating an account.
type signInForm struct {
	inputs  []textinput.Model
	focus   int
	signUp  bool
	pending bool
	err     string
}

func newSignInForm() signInForm {
	email := newFormInput("Email:    ")
	email.Placeholder = "you@example.com"
	password := newFormInput("Password: ")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	f := signInForm{inputs: []textinput.Model{email, password}}
	f.inputs[0].Focus()
	return f
}

func newFormInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 254
	input.Width = 32
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (f *signInForm) email() string    { return strings.TrimSpace(f.inputs[0].Value()) }
func (f *signInForm) password() string { return f.inputs[1].Value() }

func (f *signInForm) setFocus(idx int) tea.Cmd {
	f.focus = wrapInt(idx, 0, len(f.inputs)-1)
	var cmd tea.Cmd
	for i := range f.inputs {
		if i == f.focus {
			cmd = f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
	return cmd
}

func (f *signInForm) toggleMode() {
	f.signUp = !f.signUp
	f.err = ""
}

// reset clears the password and any error, as after signing out.
func (f *signInForm) reset() {
	f.inputs[1].SetValue("")
	f.err = ""
	f.pending = false
}

func (f *signInForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *signInForm) View(width int) string {
	heading := "Sign In"
	toggle := "ctrl+t: create an account"
	if f.signUp {
		heading = "Create Account"
		toggle = "ctrl+t: sign in instead"
	}
	lines := []string{
		titleStyle.Render(heading),
		"",
		f.inputs[0].View(),
		f.inputs[1].View(),
		"",
	}
	switch {
	case f.pending:
		lines = append(lines, mutedStyle.Render("Please wait..."))
	case f.err != "":
		lines = append(lines, errorStyle.Render(f.err))
	default:
		lines = append(lines, "")
	}
	lines = append(lines,
		footerStyle.Render("enter: submit  tab: next field"),
		footerStyle.Render(toggle+"  ctrl+c: quit"),
	)
	box := formStyle.Render(strings.Join(lines, "\n"))
	header := lipgloss.JoinVertical(lipgloss.Center,
		titleStyle.Render("Time Since"),
		mutedStyle.Render("Track how much time has passed since important events"),
		"",
	)
	return lipgloss.JoinVertical(lipgloss.Center, header, box)
}
