// Package report renders a user's trackers for the list and export commands.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/timesince/internal/elapsed"
	"github.com/verte-zerg/timesince/internal/model"
)

// Lister loads an owner's trackers, newest first.
type Lister interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Tracker, error)
}

// Report is a point-in-time view of one owner's trackers.
type Report struct {
	Owner     string  `yaml:"owner"`
	Generated string  `yaml:"generated"`
	Trackers  []Entry `yaml:"trackers"`
}

// Entry is one tracker with its elapsed time at generation.
type Entry struct {
	model.Tracker `yaml:",inline"`
	Elapsed       string `yaml:"elapsed"`
	TotalDays     int64  `yaml:"total_days"`
	Breakdown     Units  `yaml:"breakdown"`
}

// Units mirrors the readout cells.
type Units struct {
	Years   int64 `yaml:"years"`
	Months  int64 `yaml:"months"`
	Days    int64 `yaml:"days"`
	Hours   int64 `yaml:"hours"`
	Minutes int64 `yaml:"minutes"`
	Seconds int64 `yaml:"seconds"`
}

// Build loads the owner's trackers and computes elapsed times against now.
func Build(ctx context.Context, st Lister, ownerID, owner string, now time.Time) (Report, error) {
	trackers, err := st.ListByOwner(ctx, ownerID)
	if err != nil {
		return Report{}, err
	}
	r := Report{
		Owner:     owner,
		Generated: now.UTC().Format(time.RFC3339),
		Trackers:  make([]Entry, len(trackers)),
	}
	for i, t := range trackers {
		b := elapsed.Compute(t.StartInstant, now)
		r.Trackers[i] = Entry{
			Tracker:   t,
			Elapsed:   b.Phrase(),
			TotalDays: totalDays(t.StartInstant, now),
			Breakdown: Units{
				Years:   b.Years,
				Months:  b.Months,
				Days:    b.Days,
				Hours:   b.Hours,
				Minutes: b.Minutes,
				Seconds: b.Seconds,
			},
		}
	}
	return r, nil
}

func totalDays(start, now time.Time) int64 {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / (24 * time.Hour))
}

// WriteTable prints one line per tracker. A positive width narrows the name
// column to fit.
func WriteTable(w io.Writer, r Report, width int) error {
	if len(r.Trackers) == 0 {
		_, err := fmt.Fprintln(w, "No trackers yet.")
		return err
	}
	headers := []string{"Name", "Started", "Days", "Elapsed"}
	rows := make([][]string, len(r.Trackers))
	for i, e := range r.Trackers {
		start := e.StartInstant.Local()
		rows[i] = []string{
			e.Name,
			start.Format("1/2/2006 3:04 PM"),
			fmt.Sprintf("%d", e.TotalDays),
			e.Elapsed,
		}
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true}, 0, width) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// WriteYAML encodes the report as a YAML document.
func WriteYAML(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
