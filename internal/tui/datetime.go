package tui

import (
	"fmt"
	"strings"
	"time"
)

// yearWindow is how far the year field reaches around the current year.
const yearWindow = 25

type dateField int

const (
	fieldYear dateField = iota
	fieldMonth
	fieldDay
	fieldHour
	fieldMinute
	fieldMeridiem
	fieldCount
)

var dateFieldLabels = [fieldCount]string{"Year", "Month", "Day", "Hour", "Minute", "AM/PM"}

// dateEditor edits a local wall-clock time on a 12-hour clock.
type dateEditor struct {
	year     int
	month    time.Month
	day      int
	hour     int // 1-12
	minute   int
	pm       bool
	focus    dateField
	minYear  int
	maxYear  int
	location *time.Location
	// initial is the opening value truncated to the minute.
	initial time.Time
}

func newDateEditor(t, now time.Time) *dateEditor {
	t = t.In(now.Location())
	h := t.Hour()
	ed := &dateEditor{
		year:     t.Year(),
		month:    t.Month(),
		day:      t.Day(),
		hour:     to12Hour(h),
		minute:   t.Minute(),
		pm:       h >= 12,
		minYear:  min(now.Year()-yearWindow, t.Year()),
		maxYear:  max(now.Year()+yearWindow-1, t.Year()),
		location: now.Location(),
	}
	ed.initial = ed.Time()
	return ed
}

// Time returns the edited instant. Seconds are zero.
func (d *dateEditor) Time() time.Time {
	h := d.hour % 12
	if d.pm {
		h += 12
	}
	return time.Date(d.year, d.month, d.day, h, d.minute, 0, 0, d.location)
}

// changed reports whether any field differs from the opening value.
func (d *dateEditor) changed() bool {
	return !d.Time().Equal(d.initial)
}

func (d *dateEditor) move(delta int) {
	d.focus = dateField(wrapInt(int(d.focus)+delta, 0, int(fieldCount)-1))
}

func (d *dateEditor) adjust(delta int) {
	switch d.focus {
	case fieldYear:
		d.year = wrapInt(d.year+delta, d.minYear, d.maxYear)
	case fieldMonth:
		d.month = time.Month(wrapInt(int(d.month)+delta, 1, 12))
	case fieldDay:
		d.day = wrapInt(d.day+delta, 1, daysIn(d.year, d.month))
	case fieldHour:
		d.hour = wrapInt(d.hour+delta, 1, 12)
	case fieldMinute:
		d.minute = wrapInt(d.minute+delta, 0, 59)
	case fieldMeridiem:
		d.pm = !d.pm
	}
	d.day = clampInt(d.day, 1, daysIn(d.year, d.month))
}

func (d *dateEditor) values() [fieldCount]string {
	meridiem := "AM"
	if d.pm {
		meridiem = "PM"
	}
	return [fieldCount]string{
		fmt.Sprintf("%04d", d.year),
		d.month.String()[:3],
		fmt.Sprintf("%02d", d.day),
		fmt.Sprintf("%02d", d.hour),
		fmt.Sprintf("%02d", d.minute),
		meridiem,
	}
}

func (d *dateEditor) View() string {
	vals := d.values()
	cells := make([]string, 0, fieldCount)
	for i, v := range vals {
		label := dateFieldLabels[i]
		width := max(len(label), len(v))
		value := fmt.Sprintf("%-*s", width, v)
		if dateField(i) == d.focus {
			value = focusedFieldStyle.Render(value)
		} else {
			value = fieldStyle.Render(value)
		}
		cells = append(cells, value+"\n"+mutedStyle.Render(fmt.Sprintf("%-*s", width, label)))
	}
	return joinColumns(cells, "  ")
}

// joinColumns lays out two-line cells side by side.
func joinColumns(cells []string, sep string) string {
	var top, bottom []string
	for _, c := range cells {
		parts := strings.SplitN(c, "\n", 2)
		top = append(top, parts[0])
		if len(parts) > 1 {
			bottom = append(bottom, parts[1])
		} else {
			bottom = append(bottom, "")
		}
	}
	return strings.Join(top, sep) + "\n" + strings.Join(bottom, sep)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func to12Hour(h int) int {
	h %= 12
	if h == 0 {
		return 12
	}
	return h
}

func wrapInt(v, lo, hi int) int {
	span := hi - lo + 1
	if span <= 0 {
		return lo
	}
	return lo + ((v-lo)%span+span)%span
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func formatStarted(t time.Time) string {
	return fmt.Sprintf("Started on %s at %s", t.Format("1/2/2006"), t.Format("3:04 PM"))
}
