package board

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/timesince/internal/model"
	"github.com/verte-zerg/timesince/internal/reorder"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu       sync.Mutex
	trackers []model.Tracker
	seq      int
	err      error
}

func (f *fakeStore) ListByOwner(_ context.Context, ownerID string) ([]model.Tracker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Tracker
	for _, t := range f.trackers {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, ownerID, name string, start time.Time) (model.Tracker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Tracker{}, f.err
	}
	f.seq++
	t := model.Tracker{ID: string(rune('m' + f.seq)), OwnerID: ownerID, Name: name, StartInstant: start}
	f.trackers = append([]model.Tracker{t}, f.trackers...)
	return t, nil
}

func (f *fakeStore) Update(_ context.Context, id string, upd model.TrackerUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.trackers {
		if f.trackers[i].ID == id {
			if upd.Name != nil {
				f.trackers[i].Name = *upd.Name
			}
			if upd.StartInstant != nil {
				f.trackers[i].StartInstant = *upd.StartInstant
			}
		}
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeStore) fail(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type recorder struct {
	mu        sync.Mutex
	snapshots []Snapshot
	notices   []model.Notice
}

func (r *recorder) StateChanged(s Snapshot) {
	r.mu.Lock()
	r.snapshots = append(r.snapshots, s)
	r.mu.Unlock()
}

func (r *recorder) Notify(n model.Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Title
	}
	return out
}

func (r *recorder) lastNotice() model.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}

// seeded returns a loaded board with trackers a, b, c in creation order
// (newest first) whose start instants are c newest, a oldest.
func seeded(t *testing.T, animator *reorder.Animator) (*Board, *fakeStore, *recorder) {
	t.Helper()
	st := &fakeStore{trackers: []model.Tracker{
		{ID: "a", OwnerID: "u", Name: "Alpha", StartInstant: base.Add(-3 * time.Hour)},
		{ID: "b", OwnerID: "u", Name: "Bravo", StartInstant: base.Add(-2 * time.Hour)},
		{ID: "c", OwnerID: "u", Name: "Charlie", StartInstant: base.Add(-1 * time.Hour)},
	}}
	b := New(st, animator, nil)
	b.now = func() time.Time { return base }
	rec := &recorder{}
	b.AddListener(rec)
	b.Load(context.Background(), "u")
	return b, st, rec
}

func TestLoadResetsOrderAndNotifies(t *testing.T) {
	b, _, rec := seeded(t, nil)

	snap := b.Snapshot()
	assert.Equal(t, "u", snap.OwnerID)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Order)
	assert.Equal(t, model.SortNone, snap.Mode)
	assert.False(t, snap.Swapping)
	assert.Equal(t, model.Notice{Title: "Trackers loaded", Description: "Found 3 trackers"}, rec.lastNotice())
}

func TestLoadFailureKeepsState(t *testing.T) {
	b, st, rec := seeded(t, nil)
	st.fail(errors.New("connection refused"))

	b.Load(context.Background(), "u")

	assert.Equal(t, []string{"a", "b", "c"}, b.Snapshot().Order)
	n := rec.lastNotice()
	assert.Equal(t, "Error loading trackers", n.Title)
	assert.Equal(t, "connection refused", n.Description)
	assert.True(t, n.Err)
}

func TestAddPrependsNewTracker(t *testing.T) {
	b, _, rec := seeded(t, nil)

	require.NoError(t, b.Add(context.Background()))

	snap := b.Snapshot()
	require.Len(t, snap.Trackers, 4)
	assert.Equal(t, model.DefaultTrackerName, snap.Trackers[0].Name)
	assert.True(t, snap.Trackers[0].StartInstant.Equal(base))
	assert.Equal(t, "Tracker created!", rec.lastNotice().Title)
}

func TestAddWithoutOwner(t *testing.T) {
	b := New(&fakeStore{}, nil, nil)
	assert.ErrorIs(t, b.Add(context.Background()), ErrNoOwner)
}

func TestRenameBlankBecomesUntitled(t *testing.T) {
	b, st, rec := seeded(t, nil)

	require.NoError(t, b.Rename(context.Background(), "b", "   "))

	assert.Equal(t, model.UntitledTrackerName, b.Snapshot().Trackers[1].Name)
	assert.Equal(t, model.UntitledTrackerName, st.trackers[1].Name)
	assert.Equal(t, model.Notice{Title: "Name updated", Description: `Tracker renamed to "Untitled"`}, rec.lastNotice())
}

func TestFailedMutationsLeaveStateIntact(t *testing.T) {
	b, st, rec := seeded(t, nil)
	before := b.Snapshot()
	st.fail(errors.New("boom"))
	ctx := context.Background()

	assert.Error(t, b.Add(ctx))
	assert.Error(t, b.Rename(ctx, "a", "New"))
	assert.Error(t, b.SetStart(ctx, "a", base))
	assert.Error(t, b.Delete(ctx, "a"))

	assert.Equal(t, before, b.Snapshot())
	assert.Equal(t, []string{
		"Trackers loaded",
		"Failed to create tracker",
		"Failed to update name",
		"Failed to update date",
		"Failed to delete tracker",
	}, rec.titles())
}

func TestDeleteRemovesFromOrder(t *testing.T) {
	b, _, rec := seeded(t, nil)

	require.NoError(t, b.Delete(context.Background(), "b"))

	snap := b.Snapshot()
	assert.Equal(t, []string{"a", "c"}, snap.Order)
	assert.Len(t, snap.Trackers, 2)
	assert.Equal(t, model.Notice{Title: "Tracker deleted", Description: `"Bravo" has been removed`}, rec.lastNotice())
}

func TestDeleteIDMissingFromOrderIsNoop(t *testing.T) {
	b, _, _ := seeded(t, nil)
	b.mu.Lock()
	b.order = []string{"a", "c"}
	b.mu.Unlock()

	require.NoError(t, b.Delete(context.Background(), "b"))
	assert.Equal(t, []string{"a", "c"}, b.Snapshot().Order)

	require.NoError(t, b.Delete(context.Background(), "zzz"))
	assert.Equal(t, []string{"a", "c"}, b.Snapshot().Order)
}

func TestToggleSortCyclesModes(t *testing.T) {
	b, _, rec := seeded(t, nil)
	ctx := context.Background()

	require.True(t, b.ToggleSort(ctx))
	snap := b.Snapshot()
	assert.Equal(t, model.SortNewest, snap.Mode)
	assert.Equal(t, []string{"c", "b", "a"}, snap.Order)
	assert.Equal(t, model.Notice{Title: "Sorting complete!", Description: "Trackers are now sorted by newest first"}, rec.lastNotice())

	require.True(t, b.ToggleSort(ctx))
	snap = b.Snapshot()
	assert.Equal(t, model.SortOldest, snap.Mode)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Order)

	require.True(t, b.ToggleSort(ctx))
	snap = b.Snapshot()
	assert.Equal(t, model.SortNone, snap.Mode)
	assert.Equal(t, []string{"a", "b", "c"}, snap.Order)
}

func TestToggleSortPublishesIntermediateOrders(t *testing.T) {
	b, _, rec := seeded(t, nil)
	rec.mu.Lock()
	rec.snapshots = nil
	rec.mu.Unlock()

	b.ToggleSort(context.Background())

	var orders [][]string
	for _, s := range rec.snapshots {
		orders = append(orders, s.Order)
	}
	assert.Contains(t, orders, []string{"a", "c", "b"})
	assert.Contains(t, orders, []string{"c", "a", "b"})
	assert.Equal(t, []string{"c", "b", "a"}, orders[len(orders)-1])
}

func TestConcurrentToggleSortIsDropped(t *testing.T) {
	b, _, _ := seeded(t, reorder.NewAnimator(20*time.Millisecond, 5*time.Millisecond))
	ctx := context.Background()

	done := make(chan bool)
	go func() { done <- b.ToggleSort(ctx) }()

	require.Eventually(t, func() bool { return b.Snapshot().Swapping }, time.Second, time.Millisecond)
	assert.False(t, b.ToggleSort(ctx), "second toggle must be dropped")

	require.True(t, <-done)
	snap := b.Snapshot()
	assert.Equal(t, model.SortNewest, snap.Mode)
	assert.Equal(t, []string{"c", "b", "a"}, snap.Order)
	assert.False(t, snap.Swapping)
}

func TestSetStartResortsWhenSorted(t *testing.T) {
	b, _, rec := seeded(t, nil)
	ctx := context.Background()
	require.True(t, b.ToggleSort(ctx))

	require.NoError(t, b.SetStart(ctx, "a", base))

	assert.Equal(t, []string{"a", "c", "b"}, b.Snapshot().Order)
	assert.Equal(t, "Date updated", rec.lastNotice().Title)
}

func TestSetStartUnsortedKeepsOrder(t *testing.T) {
	b, _, _ := seeded(t, nil)

	require.NoError(t, b.SetStart(context.Background(), "a", base))
	assert.Equal(t, []string{"a", "b", "c"}, b.Snapshot().Order)
}

func TestSetStartDuringAnimationSkipsResort(t *testing.T) {
	animator := reorder.NewAnimator(0, 0)
	b, _, _ := seeded(t, animator)
	ctx := context.Background()
	require.True(t, b.ToggleSort(ctx))

	run, ok := animator.Begin()
	require.True(t, ok)
	defer run.Release()

	require.NoError(t, b.ResetToNow(ctx, "a"))
	assert.Equal(t, []string{"c", "b", "a"}, b.Snapshot().Order, "re-sort is skipped, not queued")
}

func TestClear(t *testing.T) {
	b, _, _ := seeded(t, nil)
	b.Clear()
	snap := b.Snapshot()
	assert.Empty(t, snap.OwnerID)
	assert.Empty(t, snap.Trackers)
	assert.Empty(t, snap.Order)
}

func TestObserveKeepsTrackersAddedMidAnimation(t *testing.T) {
	b, _, _ := seeded(t, nil)
	b.mu.Lock()
	b.trackers = append([]model.Tracker{{ID: "n", OwnerID: "u"}}, b.trackers...)
	b.trackers = b.trackers[:3] // drop "c"
	b.mu.Unlock()

	b.observe([]string{"c", "b", "a"})
	assert.Equal(t, []string{"n", "b", "a"}, b.Snapshot().Order)
}
