package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/timesince/internal/model"
)

// ListByOwner returns the owner's trackers, most recently created first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]model.Tracker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, start_date, created_at, updated_at
		 FROM trackers
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return nil, opErr("list trackers", err)
	}
	defer closeRows(rows)

	var trackers []model.Tracker
	for rows.Next() {
		t, err := scanTracker(rows)
		if err != nil {
			return nil, opErr("list trackers", err)
		}
		trackers = append(trackers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, opErr("list trackers", err)
	}
	return trackers, nil
}

// Get returns a single tracker by id.
func (s *Store) Get(ctx context.Context, id string) (model.Tracker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, start_date, created_at, updated_at
		 FROM trackers WHERE id = ?`, id)
	if err != nil {
		return model.Tracker{}, opErr("get tracker", err)
	}
	defer closeRows(rows)
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.Tracker{}, opErr("get tracker", err)
		}
		return model.Tracker{}, opErr("get tracker", ErrNotFound)
	}
	t, err := scanTracker(rows)
	if err != nil {
		return model.Tracker{}, opErr("get tracker", err)
	}
	return t, nil
}

// Insert creates a tracker for the owner and returns the stored record.
func (s *Store) Insert(ctx context.Context, ownerID, name string, start time.Time) (model.Tracker, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Tracker{}, opErr("create tracker", err)
	}
	now := s.now().UTC()
	t := model.Tracker{
		ID:           id.String(),
		OwnerID:      ownerID,
		Name:         name,
		StartInstant: start.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO trackers (id, user_id, name, start_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.OwnerID, t.Name,
		formatTime(t.StartInstant),
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		return model.Tracker{}, opErr("create tracker", err)
	}
	return t, nil
}

// Update applies the non-nil fields of upd and bumps updated_at.
func (s *Store) Update(ctx context.Context, id string, upd model.TrackerUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{formatTime(s.now())}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.StartInstant != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, formatTime(*upd.StartInstant))
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE trackers SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return opErr("update tracker", err)
	}
	return opErr("update tracker", checkAffected(res))
}

// Delete removes a tracker.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM trackers WHERE id = ?", id)
	if err != nil {
		return opErr("delete tracker", err)
	}
	return opErr("delete tracker", checkAffected(res))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTracker(row scanner) (model.Tracker, error) {
	var t model.Tracker
	var start, created, updated string
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &start, &created, &updated); err != nil {
		return model.Tracker{}, err
	}
	var err error
	if t.StartInstant, err = parseTime(start); err != nil {
		return model.Tracker{}, err
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return model.Tracker{}, err
	}
	if t.UpdatedAt, err = parseTime(updated); err != nil {
		return model.Tracker{}, err
	}
	return t, nil
}
