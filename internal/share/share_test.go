package share

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/timesince/internal/elapsed"
)

func TestTextGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	start := time.Date(2023, 3, 4, 17, 7, 0, 0, time.UTC)
	g.Assert(t, "text_multi_unit",
		[]byte(Text("Quit coffee", elapsed.Breakdown{Years: 1, Days: 2, Seconds: 5}, start)))

	midnight := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	g.Assert(t, "text_just_started",
		[]byte(Text("Launch", elapsed.Breakdown{}, midnight)))
}

func TestShareUsesCommandFirst(t *testing.T) {
	var gotArgv []string
	var gotTitle, gotText string
	s := New("termux-share -a send")
	s.runCommand = func(_ context.Context, argv []string, title, text string) error {
		gotArgv, gotTitle, gotText = argv, title, text
		return nil
	}
	s.copyText = func(string) error {
		t.Fatal("clipboard must not be used")
		return nil
	}

	m, err := s.Share(context.Background(), Title("Gym"), "hello")
	require.NoError(t, err)
	assert.Equal(t, MethodCommand, m)
	assert.Equal(t, []string{"termux-share", "-a", "send"}, gotArgv)
	assert.Equal(t, "Time Since: Gym", gotTitle)
	assert.Equal(t, "hello", gotText)
	assert.Equal(t, "Shared successfully!", m.Notice().Title)
}

func TestShareFallsBackToClipboard(t *testing.T) {
	var copied string
	s := New("")
	s.copyText = func(text string) error {
		copied = text
		return nil
	}

	m, err := s.Share(context.Background(), "t", "hello")
	require.NoError(t, err)
	assert.Equal(t, MethodClipboard, m)
	assert.Equal(t, "hello", copied)
	assert.Equal(t, "Copied to clipboard!", m.Notice().Title)
}

func TestShareCommandFailureFallsBack(t *testing.T) {
	s := New("share-it")
	s.runCommand = func(context.Context, []string, string, string) error {
		return errors.New("exit status 1")
	}
	s.copyText = func(string) error { return nil }

	m, err := s.Share(context.Background(), "t", "hello")
	require.NoError(t, err)
	assert.Equal(t, MethodClipboard, m)
}

func TestShareFallsBackToTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := New("")
	s.copyText = func(string) error { return errors.New("no clipboard") }
	s.Terminal = &buf
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm-256color")

	m, err := s.Share(context.Background(), "t", "hello")
	require.NoError(t, err)
	assert.Equal(t, MethodTerminal, m)
	assert.Contains(t, buf.String(), "\x1b]52;c;aGVsbG8=")
	assert.Equal(t, "Copied to clipboard!", m.Notice().Title)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestShareAllMethodsFail(t *testing.T) {
	s := New("")
	s.copyText = func(string) error { return errors.New("no clipboard") }
	s.Terminal = failingWriter{}

	_, err := s.Share(context.Background(), "t", "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}
