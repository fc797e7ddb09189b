// Package reorder animates a display order toward a target order through a
// sequence of visible pairwise swaps.
package reorder

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"time"
)

// ErrBusy is returned when a reconciliation is already running.
var ErrBusy = errors.New("reconciliation already running")

// Swap exchanges the items at positions A and B.
type Swap struct {
	A int
	B int
}

// Plan returns the swaps that move current toward target. For each target
// slot the wanted id is walked one position per step, with at most
// len(current)-1 steps per slot. Ids absent from current are skipped.
func Plan(current, target []string) []Swap {
	working := slices.Clone(current)
	var swaps []Swap
	for i := range target {
		for j := 0; j < len(working)-1; j++ {
			idx := slices.Index(working, target[i])
			var sw Swap
			switch {
			case idx < 0 || idx == i:
				continue
			case idx > i:
				sw = Swap{A: idx, B: idx - 1}
			default:
				if idx+1 >= len(working) {
					continue
				}
				sw = Swap{A: idx, B: idx + 1}
			}
			apply(working, sw)
			swaps = append(swaps, sw)
		}
	}
	return swaps
}

// Frames returns the order after each swap of Plan(current, target).
func Frames(current, target []string) [][]string {
	working := slices.Clone(current)
	swaps := Plan(current, target)
	frames := make([][]string, 0, len(swaps))
	for _, sw := range swaps {
		apply(working, sw)
		frames = append(frames, slices.Clone(working))
	}
	return frames
}

func apply(order []string, sw Swap) {
	order[sw.A], order[sw.B] = order[sw.B], order[sw.A]
}

// Default pauses around each swap.
const (
	DefaultTransition = 300 * time.Millisecond
	DefaultSettle     = 100 * time.Millisecond
)

// Animator replays swap plans with a pause around each swap. Only one
// reconciliation runs at a time.
type Animator struct {
	// Transition is the pause before a swap is applied.
	Transition time.Duration
	// Settle is the pause after a swap is published.
	Settle time.Duration

	busy atomic.Bool
}

// NewAnimator returns an animator with the given pauses.
func NewAnimator(transition, settle time.Duration) *Animator {
	return &Animator{Transition: transition, Settle: settle}
}

// Busy reports whether a reconciliation is in flight.
func (a *Animator) Busy() bool {
	return a.busy.Load()
}

// Run is an acquired reconciliation slot.
type Run struct {
	a    *Animator
	done atomic.Bool
}

// Begin claims the animator. It returns false when another run holds it.
func (a *Animator) Begin() (*Run, bool) {
	if !a.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	return &Run{a: a}, true
}

// Play reconciles current toward target, calling observe with a copy of the
// order after every swap. It releases the animator when it returns and
// reports the final working order. A cancelled context stops early.
func (r *Run) Play(ctx context.Context, current, target []string, observe func([]string)) ([]string, error) {
	defer r.release()

	working := slices.Clone(current)
	for _, sw := range Plan(current, target) {
		if err := sleep(ctx, r.a.Transition); err != nil {
			return working, err
		}
		apply(working, sw)
		if observe != nil {
			observe(slices.Clone(working))
		}
		if err := sleep(ctx, r.a.Settle); err != nil {
			return working, err
		}
	}
	return working, nil
}

// Release frees the slot without playing. It is safe to call more than once.
func (r *Run) Release() {
	r.release()
}

func (r *Run) release() {
	if r.done.CompareAndSwap(false, true) {
		r.a.busy.Store(false)
	}
}

// Reconcile is Begin followed by Play. It returns ErrBusy without touching
// anything when a run is already active.
func (a *Animator) Reconcile(ctx context.Context, current, target []string, observe func([]string)) ([]string, error) {
	run, ok := a.Begin()
	if !ok {
		return nil, ErrBusy
	}
	return run.Play(ctx, current, target, observe)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
