// Package share renders a tracker as shareable text and hands it to the
// first share mechanism that works.
package share

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"

	"github.com/verte-zerg/timesince/internal/elapsed"
	"github.com/verte-zerg/timesince/internal/model"
)

// ErrUnavailable is returned when no share command is configured.
var ErrUnavailable = errors.New("share command unavailable")

// Method is the mechanism that delivered the text.
type Method int

const (
	MethodCommand Method = iota
	MethodClipboard
	MethodTerminal
)

func (m Method) String() string {
	switch m {
	case MethodCommand:
		return "command"
	case MethodClipboard:
		return "clipboard"
	default:
		return "terminal"
	}
}

// Notice is the confirmation shown after a successful share.
func (m Method) Notice() model.Notice {
	if m == MethodCommand {
		return model.Notice{Title: "Shared successfully!", Description: "Your tracker has been shared"}
	}
	return model.Notice{
		Title:       "Copied to clipboard!",
		Description: "Share text has been copied. Paste it anywhere to share!",
	}
}

// Text renders the share message for a tracker.
func Text(name string, b elapsed.Breakdown, start time.Time) string {
	return fmt.Sprintf("🕐 It's been %s since \"%s\"!\n\nStarted on %s at %s\n\nShared from Time Since ⏰",
		b.Phrase(), name, start.Format("1/2/2006"), start.Format("3:04 PM"))
}

// Title is passed to share commands alongside the text.
func Title(name string) string {
	return "Time Since: " + name
}

// Sharer tries a share command, then the system clipboard, then an OSC 52
// escape sequence written to the terminal.
type Sharer struct {
	// Command is the share program and its arguments. The text is written
	// to its stdin and the title is exported as TIMESINCE_SHARE_TITLE.
	Command []string
	// Terminal receives the OSC 52 sequence. Defaults to os.Stdout.
	Terminal io.Writer

	runCommand func(ctx context.Context, argv []string, title, text string) error
	copyText   func(text string) error
}

// New returns a sharer for the given command line. An empty command skips
// straight to the clipboard.
func New(command string) *Sharer {
	return &Sharer{Command: strings.Fields(command)}
}

// Share delivers text and reports which method succeeded.
func (s *Sharer) Share(ctx context.Context, title, text string) (Method, error) {
	cmdErr := s.command(ctx, title, text)
	if cmdErr == nil {
		return MethodCommand, nil
	}
	clipErr := s.clipboard(text)
	if clipErr == nil {
		return MethodClipboard, nil
	}
	termErr := s.terminal(text)
	if termErr == nil {
		return MethodTerminal, nil
	}
	return MethodTerminal, fmt.Errorf("failed to share: %w", errors.Join(cmdErr, clipErr, termErr))
}

func (s *Sharer) command(ctx context.Context, title, text string) error {
	if len(s.Command) == 0 {
		return ErrUnavailable
	}
	run := s.runCommand
	if run == nil {
		run = execCommand
	}
	if err := run(ctx, s.Command, title, text); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Sharer) clipboard(text string) error {
	if s.copyText != nil {
		return s.copyText(text)
	}
	if clipboard.Unsupported {
		return errors.New("clipboard unsupported")
	}
	return clipboard.WriteAll(text)
}

func (s *Sharer) terminal(text string) error {
	w := s.Terminal
	if w == nil {
		w = os.Stdout
	}
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if strings.HasPrefix(os.Getenv("TERM"), "screen") {
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}

func execCommand(ctx context.Context, argv []string, title, text string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Env = append(os.Environ(), "TIMESINCE_SHARE_TITLE="+title)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return nil
}
