// Package board owns the signed-in user's trackers, their on-screen order,
// and the sort mode. All mutations go through named intents.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/timesince/internal/model"
	"github.com/verte-zerg/timesince/internal/reorder"
)

// ErrNoOwner is returned by intents issued while nobody is signed in.
var ErrNoOwner = errors.New("no signed-in user")

// Store is the tracker persistence the board drives.
type Store interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Tracker, error)
	Insert(ctx context.Context, ownerID, name string, start time.Time) (model.Tracker, error)
	Update(ctx context.Context, id string, upd model.TrackerUpdate) error
	Delete(ctx context.Context, id string) error
}

// Listener observes board changes.
type Listener interface {
	StateChanged(Snapshot)
	Notify(model.Notice)
}

// Snapshot is an immutable view of the board.
type Snapshot struct {
	OwnerID string
	// Trackers are in display order.
	Trackers []model.Tracker
	Order    []string
	Mode     model.SortMode
	Swapping bool
}

// Board coordinates the store, the animator, and listeners.
type Board struct {
	store    Store
	animator *reorder.Animator
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	owner     string
	trackers  []model.Tracker // creation order, newest first
	order     []string
	mode      model.SortMode
	listeners []Listener
}

// New creates an empty board.
func New(st Store, animator *reorder.Animator, logger *slog.Logger) *Board {
	if animator == nil {
		animator = reorder.NewAnimator(0, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		store:    st,
		animator: animator,
		logger:   logger,
		now:      time.Now,
	}
}

// AddListener registers l for state changes and notices.
func (b *Board) AddListener(l Listener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Board) snapshotLocked() Snapshot {
	byID := make(map[string]model.Tracker, len(b.trackers))
	for _, t := range b.trackers {
		byID[t.ID] = t
	}
	ordered := make([]model.Tracker, 0, len(b.order))
	for _, id := range b.order {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return Snapshot{
		OwnerID:  b.owner,
		Trackers: ordered,
		Order:    slices.Clone(b.order),
		Mode:     b.mode,
		Swapping: b.animator.Busy(),
	}
}

// Load replaces the board with the owner's stored trackers. The display
// order is reset to creation order.
func (b *Board) Load(ctx context.Context, ownerID string) {
	trackers, err := b.store.ListByOwner(ctx, ownerID)
	if err != nil {
		b.logger.Error("load trackers", "owner", ownerID, "err", err)
		b.notify(failure("Error loading trackers", err))
		return
	}
	b.mu.Lock()
	b.owner = ownerID
	b.trackers = trackers
	b.order = ids(trackers)
	b.mode = model.SortNone
	b.mu.Unlock()
	b.logger.Info("trackers loaded", "owner", ownerID, "count", len(trackers))
	b.publish()

	if n := len(trackers); n > 0 {
		b.notify(model.Notice{
			Title:       "Trackers loaded",
			Description: fmt.Sprintf("Found %d tracker%s", n, plural(n)),
		})
	}
}

// Clear drops all state, as on sign-out.
func (b *Board) Clear() {
	b.mu.Lock()
	b.owner = ""
	b.trackers = nil
	b.order = nil
	b.mode = model.SortNone
	b.mu.Unlock()
	b.publish()
}

// Add creates a tracker named "New event" starting now.
func (b *Board) Add(ctx context.Context) error {
	owner := b.currentOwner()
	if owner == "" {
		return ErrNoOwner
	}
	t, err := b.store.Insert(ctx, owner, model.DefaultTrackerName, b.now())
	if err != nil {
		b.logger.Error("create tracker", "err", err)
		b.notify(failure("Failed to create tracker", err))
		return err
	}
	b.mu.Lock()
	b.trackers = append([]model.Tracker{t}, b.trackers...)
	b.order = append([]string{t.ID}, b.order...)
	b.mu.Unlock()
	b.publish()
	b.resort(ctx)
	b.notify(model.Notice{
		Title:       "Tracker created!",
		Description: "Your new time tracker is ready to use",
	})
	return nil
}

// Rename sets the tracker name. A blank name becomes "Untitled".
func (b *Board) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.UntitledTrackerName
	}
	if err := b.store.Update(ctx, id, model.TrackerUpdate{Name: &name}); err != nil {
		b.logger.Error("rename tracker", "id", id, "err", err)
		b.notify(failure("Failed to update name", err))
		return err
	}
	b.mutate(id, func(t *model.Tracker) { t.Name = name })
	b.publish()
	b.notify(model.Notice{
		Title:       "Name updated",
		Description: fmt.Sprintf("Tracker renamed to %q", name),
	})
	return nil
}

// SetStart reassigns the tracker's start instant. In a sorted mode the
// display order is animated toward the new target unless an animation is
// already running, in which case the update is not re-sorted.
func (b *Board) SetStart(ctx context.Context, id string, start time.Time) error {
	start = start.UTC()
	if err := b.store.Update(ctx, id, model.TrackerUpdate{StartInstant: &start}); err != nil {
		b.logger.Error("update tracker date", "id", id, "err", err)
		b.notify(failure("Failed to update date", err))
		return err
	}
	b.mutate(id, func(t *model.Tracker) { t.StartInstant = start })
	b.publish()
	b.resort(ctx)
	b.notify(model.Notice{
		Title:       "Date updated",
		Description: "Tracker time has been updated",
	})
	return nil
}

// ResetToNow sets the tracker's start instant to the current time.
func (b *Board) ResetToNow(ctx context.Context, id string) error {
	return b.SetStart(ctx, id, b.now())
}

// Delete removes the tracker. Ids missing from the display order are
// tolerated.
func (b *Board) Delete(ctx context.Context, id string) error {
	name := "tracker"
	b.mu.Lock()
	for _, t := range b.trackers {
		if t.ID == id {
			name = t.Name
			break
		}
	}
	b.mu.Unlock()

	if err := b.store.Delete(ctx, id); err != nil {
		b.logger.Error("delete tracker", "id", id, "err", err)
		b.notify(failure("Failed to delete tracker", err))
		return err
	}
	b.mu.Lock()
	b.trackers = slices.DeleteFunc(b.trackers, func(t model.Tracker) bool { return t.ID == id })
	b.order = slices.DeleteFunc(b.order, func(v string) bool { return v == id })
	b.mu.Unlock()
	b.publish()
	b.notify(model.Notice{
		Title:       "Tracker deleted",
		Description: fmt.Sprintf("%q has been removed", name),
	})
	return nil
}

// ToggleSort advances the sort mode and animates the display order toward
// it. It returns false without doing anything when an animation is running.
func (b *Board) ToggleSort(ctx context.Context) bool {
	run, ok := b.animator.Begin()
	if !ok {
		b.logger.Debug("sort toggle dropped, animation running")
		return false
	}
	b.mu.Lock()
	next := b.mode.Next()
	current := slices.Clone(b.order)
	target := targetOrder(b.trackers, next)
	b.mu.Unlock()

	b.notify(model.Notice{
		Title:       "Sorting trackers...",
		Description: "Organizing by " + next.Description(),
	})
	b.publish()

	_, err := run.Play(ctx, current, target, b.observe)
	if err != nil {
		b.logger.Warn("sort animation interrupted", "err", err)
		b.publish()
		return true
	}
	b.mu.Lock()
	b.mode = next
	b.mu.Unlock()
	b.publish()
	b.notify(model.Notice{
		Title:       "Sorting complete!",
		Description: "Trackers are now sorted by " + next.Description(),
	})
	return true
}

// resort animates toward the current mode's order when sorted and idle.
func (b *Board) resort(ctx context.Context) {
	b.mu.Lock()
	mode := b.mode
	current := slices.Clone(b.order)
	target := targetOrder(b.trackers, mode)
	b.mu.Unlock()

	if mode == model.SortNone || slices.Equal(current, target) {
		return
	}
	run, ok := b.animator.Begin()
	if !ok {
		b.logger.Info("re-sort skipped, animation running")
		return
	}
	b.publish()
	if _, err := run.Play(ctx, current, target, b.observe); err != nil {
		b.logger.Warn("re-sort interrupted", "err", err)
	}
	b.publish()
}

// observe applies an intermediate order. Trackers deleted mid-animation are
// dropped and trackers added mid-animation stay in front.
func (b *Board) observe(order []string) {
	b.mu.Lock()
	known := make(map[string]bool, len(b.trackers))
	for _, t := range b.trackers {
		known[t.ID] = true
	}
	seen := make(map[string]bool, len(order))
	merged := make([]string, 0, len(b.trackers))
	for _, t := range b.trackers {
		if !slices.Contains(order, t.ID) {
			merged = append(merged, t.ID)
		}
	}
	for _, id := range order {
		if known[id] && !seen[id] {
			merged = append(merged, id)
			seen[id] = true
		}
	}
	b.order = merged
	b.mu.Unlock()
	b.publish()
}

func (b *Board) currentOwner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

func (b *Board) mutate(id string, fn func(*model.Tracker)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.trackers {
		if b.trackers[i].ID == id {
			fn(&b.trackers[i])
			return
		}
	}
}

func (b *Board) publish() {
	b.mu.Lock()
	snap := b.snapshotLocked()
	listeners := slices.Clone(b.listeners)
	b.mu.Unlock()
	for _, l := range listeners {
		l.StateChanged(snap)
	}
}

func (b *Board) notify(n model.Notice) {
	b.mu.Lock()
	listeners := slices.Clone(b.listeners)
	b.mu.Unlock()
	for _, l := range listeners {
		l.Notify(n)
	}
}

// targetOrder returns tracker ids ordered for mode. Ties keep creation order.
func targetOrder(trackers []model.Tracker, mode model.SortMode) []string {
	sorted := slices.Clone(trackers)
	switch mode {
	case model.SortNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StartInstant.After(sorted[j].StartInstant)
		})
	case model.SortOldest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].StartInstant.Before(sorted[j].StartInstant)
		})
	}
	return ids(sorted)
}

func ids(trackers []model.Tracker) []string {
	out := make([]string, len(trackers))
	for i, t := range trackers {
		out[i] = t.ID
	}
	return out
}

func failure(title string, err error) model.Notice {
	return model.Notice{Title: title, Description: err.Error(), Err: true}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
