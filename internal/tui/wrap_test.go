package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapWordsKeepsShortText(t *testing.T) {
	if got := wrapWords("2 days and 1 second", 40); got != "2 days and 1 second" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapWordsBreaksAtSpaces(t *testing.T) {
	got := wrapWords("1 year, 2 months, 3 days, and 4 seconds", 16)
	for _, line := range strings.Split(got, "\n") {
		if runewidth.StringWidth(line) > 16 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
	if strings.ReplaceAll(got, "\n", " ") != "1 year, 2 months, 3 days, and 4 seconds" {
		t.Fatalf("wrap lost words: %q", got)
	}
}

func TestWrapWordsSplitsLongWord(t *testing.T) {
	got := wrapWords("abcdefghij", 4)
	if got != "abcd\nefgh\nij" {
		t.Fatalf("unexpected split: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Anniversary", 6); got != "Anniv…" {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncate: %q", got)
	}
	if got := truncate("x", 0); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestCenterText(t *testing.T) {
	if got := centerText("ab", 6); got != "  ab  " {
		t.Fatalf("unexpected center: %q", got)
	}
	if got := centerText("abc", 4); got != " abc" {
		t.Fatalf("unexpected center: %q", got)
	}
	if got := centerText("toolong", 3); got != "toolong" {
		t.Fatalf("unexpected center: %q", got)
	}
}
