package tui

import (
	"strings"
	"testing"
	"time"
)

var editorNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func TestDateEditorRoundTrip(t *testing.T) {
	start := time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)
	ed := newDateEditor(start, editorNow)
	if got := ed.Time(); !got.Equal(start) {
		t.Fatalf("expected %v, got %v", start, got)
	}
}

func TestDateEditorDropsSeconds(t *testing.T) {
	ed := newDateEditor(time.Date(2024, 3, 10, 0, 5, 42, 0, time.UTC), editorNow)
	want := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)
	if got := ed.Time(); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDateEditorAdjustWraps(t *testing.T) {
	ed := newDateEditor(time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC), editorNow)

	ed.move(1) // month
	ed.adjust(1)
	if ed.month != time.January {
		t.Fatalf("expected month to wrap to January, got %s", ed.month)
	}

	ed.move(3) // minute
	ed.adjust(1)
	if ed.minute != 0 {
		t.Fatalf("expected minute to wrap to 0, got %d", ed.minute)
	}

	ed.move(1) // meridiem
	ed.adjust(1)
	if ed.pm {
		t.Fatalf("expected meridiem to flip to AM")
	}
	want := time.Date(2024, 1, 31, 11, 0, 0, 0, time.UTC)
	if got := ed.Time(); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDateEditorClampsDayToMonth(t *testing.T) {
	ed := newDateEditor(time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), editorNow)
	ed.move(1)
	ed.adjust(1)
	if ed.day != 29 {
		t.Fatalf("expected day 29 in leap February, got %d", ed.day)
	}
}

func TestDateEditorKeepsYearOutsideWindow(t *testing.T) {
	start := time.Date(1990, 5, 1, 8, 30, 0, 0, time.UTC)
	ed := newDateEditor(start, editorNow)
	if ed.year != 1990 {
		t.Fatalf("expected year 1990, got %d", ed.year)
	}
	if !ed.Time().Equal(start) {
		t.Fatalf("Time() = %v, want %v", ed.Time(), start)
	}
	if ed.changed() {
		t.Fatalf("expected unedited editor to report no change")
	}
	ed.adjust(-1)
	if ed.year != editorNow.Year()+yearWindow-1 {
		t.Fatalf("expected year to wrap to %d, got %d", editorNow.Year()+yearWindow-1, ed.year)
	}
	ed.adjust(1)
	if ed.year != 1990 || ed.changed() {
		t.Fatalf("expected year back at 1990 with no change, got %d", ed.year)
	}
}

func TestDateEditorChangedIgnoresSeconds(t *testing.T) {
	ed := newDateEditor(time.Date(2026, 10, 1, 8, 30, 42, 0, time.UTC), editorNow)
	if ed.changed() {
		t.Fatalf("expected no change before editing")
	}
	ed.move(int(fieldMinute))
	ed.adjust(1)
	if !ed.changed() {
		t.Fatalf("expected change after editing the minute")
	}
}

func TestDateEditorFocusWraps(t *testing.T) {
	ed := newDateEditor(editorNow, editorNow)
	ed.move(-1)
	if ed.focus != fieldMeridiem {
		t.Fatalf("expected focus on meridiem, got %d", ed.focus)
	}
	ed.move(1)
	if ed.focus != fieldYear {
		t.Fatalf("expected focus on year, got %d", ed.focus)
	}
}

func TestDateEditorView(t *testing.T) {
	ed := newDateEditor(time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC), editorNow)
	out := ed.View()
	for _, want := range []string{"2024", "Mar", "10", "02", "30", "PM", "Year", "AM/PM"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q: %s", want, out)
		}
	}
}

func TestTo12Hour(t *testing.T) {
	cases := map[int]int{0: 12, 1: 1, 11: 11, 12: 12, 13: 1, 23: 11}
	for in, want := range cases {
		if got := to12Hour(in); got != want {
			t.Fatalf("to12Hour(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestFormatStarted(t *testing.T) {
	got := formatStarted(time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC))
	if got != "Started on 3/5/2024 at 2:07 PM" {
		t.Fatalf("unexpected started line: %q", got)
	}
}
