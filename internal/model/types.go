// Package model defines shared data structures.
package model

import "time"

// DefaultTrackerName is the name given to freshly created trackers.
const DefaultTrackerName = "New event"

// UntitledTrackerName replaces a blank name on rename.
const UntitledTrackerName = "Untitled"

// Tracker pairs a start instant with a display label for one owner.
type Tracker struct {
	ID           string    `yaml:"id"`
	OwnerID      string    `yaml:"-"`
	Name         string    `yaml:"name"`
	StartInstant time.Time `yaml:"start"`
	CreatedAt    time.Time `yaml:"created"`
	UpdatedAt    time.Time `yaml:"updated"`
}

// TrackerUpdate carries the optional fields of a tracker mutation.
type TrackerUpdate struct {
	Name         *string
	StartInstant *time.Time
}

// User is an authenticated identity.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session binds a token to a user until it expires.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SortMode selects how trackers are ordered on screen.
type SortMode int

const (
	SortNone SortMode = iota
	SortNewest
	SortOldest
)

// Next cycles none → newest → oldest → none.
func (m SortMode) Next() SortMode {
	switch m {
	case SortNone:
		return SortNewest
	case SortNewest:
		return SortOldest
	default:
		return SortNone
	}
}

// Label is the text shown on the sort control.
func (m SortMode) Label() string {
	switch m {
	case SortNewest:
		return "Newest First"
	case SortOldest:
		return "Oldest First"
	default:
		return "Sort by Date"
	}
}

// Description names the ordering in notices.
func (m SortMode) Description() string {
	switch m {
	case SortNewest:
		return "newest first"
	case SortOldest:
		return "oldest first"
	default:
		return "creation order"
	}
}

// Notice is a one-shot user-visible notification.
type Notice struct {
	Title       string
	Description string
	Err         bool
}
