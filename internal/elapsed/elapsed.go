// Package elapsed breaks a time delta into approximate calendar units.
//
// Months are a fixed 30 days and years a fixed 365 days. The decomposition is
// intentionally not calendar aware.
package elapsed

import (
	"fmt"
	"strings"
	"time"
)

const (
	msPerSecond = int64(1000)
	msPerMinute = 60 * msPerSecond
	msPerHour   = 60 * msPerMinute
	msPerDay    = 24 * msPerHour
	msPerMonth  = 30 * msPerDay
	msPerYear   = 365 * msPerDay
)

// Breakdown is an elapsed duration split into display units.
type Breakdown struct {
	Years   int64
	Months  int64
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Unit is one labelled cell of the readout.
type Unit struct {
	Label string
	Value int64
}

// Compute returns the breakdown of now-start. A start in the future yields
// the zero breakdown.
func Compute(start, now time.Time) Breakdown {
	return FromMillis(now.Sub(start).Milliseconds())
}

// FromMillis decomposes a millisecond delta.
func FromMillis(diffMs int64) Breakdown {
	if diffMs < 0 {
		diffMs = 0
	}
	return Breakdown{
		Years:   diffMs / msPerYear,
		Months:  (diffMs / msPerMonth) % 12,
		Days:    (diffMs / msPerDay) % 30,
		Hours:   (diffMs / msPerHour) % 24,
		Minutes: (diffMs / msPerMinute) % 60,
		Seconds: (diffMs / msPerSecond) % 60,
	}
}

// IsZero reports whether every unit is zero.
func (b Breakdown) IsZero() bool {
	return b == Breakdown{}
}

// Units returns the six readout cells, largest first.
func (b Breakdown) Units() []Unit {
	return []Unit{
		{Label: "years", Value: b.Years},
		{Label: "months", Value: b.Months},
		{Label: "days", Value: b.Days},
		{Label: "hours", Value: b.Hours},
		{Label: "minutes", Value: b.Minutes},
		{Label: "seconds", Value: b.Seconds},
	}
}

// Phrase renders the breakdown as "2 days, 3 hours, and 1 second".
// Zero units are omitted; seconds are kept when nothing else is shown.
func (b Breakdown) Phrase() string {
	parts := make([]string, 0, 6)
	add := func(n int64, unit string) {
		if n > 0 {
			parts = append(parts, plural(n, unit))
		}
	}
	add(b.Years, "year")
	add(b.Months, "month")
	add(b.Days, "day")
	add(b.Hours, "hour")
	add(b.Minutes, "minute")
	if len(parts) == 0 || b.Seconds > 0 {
		parts = append(parts, plural(b.Seconds, "second"))
	}

	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
