package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/timesince/internal/model"
)

// ErrDuplicate is returned when a unique value is already taken.
var ErrDuplicate = errors.New("record already exists")

// CreateUser stores a new user with an already hashed password.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (model.User, error) {
	if _, err := s.UserByEmail(ctx, email); err == nil {
		return model.User{}, opErr("create user", ErrDuplicate)
	} else if !errors.Is(err, ErrNotFound) {
		return model.User{}, opErr("create user", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return model.User{}, opErr("create user", err)
	}
	u := model.User{
		ID:           id.String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, opErr("create user", ErrDuplicate)
		}
		return model.User{}, opErr("create user", err)
	}
	return u, nil
}

// UserByEmail looks up a user by email.
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	return s.queryUser(ctx, "email", email)
}

// UserByID looks up a user by id.
func (s *Store) UserByID(ctx context.Context, id string) (model.User, error) {
	return s.queryUser(ctx, "id", id)
}

func (s *Store) queryUser(ctx context.Context, column, value string) (model.User, error) {
	var u model.User
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM users WHERE "+column+" = ?", value).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, opErr("load user", err)
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return model.User{}, opErr("load user", err)
	}
	return u, nil
}

// CreateSession stores a session token for the user valid for ttl.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (model.Session, error) {
	now := s.now().UTC()
	sess := model.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		sess.Token, sess.UserID, formatTime(sess.CreatedAt), formatTime(sess.ExpiresAt))
	if err != nil {
		return model.Session{}, opErr("create session", err)
	}
	return sess, nil
}

// SessionByToken returns the session for token, expired or not.
func (s *Store) SessionByToken(ctx context.Context, token string) (model.Session, error) {
	var sess model.Session
	var created, expires string
	err := s.db.QueryRowContext(ctx,
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?", token).
		Scan(&sess.Token, &sess.UserID, &created, &expires)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, ErrNotFound
	}
	if err != nil {
		return model.Session{}, opErr("load session", err)
	}
	if sess.CreatedAt, err = parseTime(created); err != nil {
		return model.Session{}, opErr("load session", err)
	}
	if sess.ExpiresAt, err = parseTime(expires); err != nil {
		return model.Session{}, opErr("load session", err)
	}
	return sess, nil
}

// DeleteSession removes a session token. Unknown tokens are ignored.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return opErr("delete session", err)
	}
	return nil
}

// DeleteExpiredSessions drops sessions that expired before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", formatTime(s.now()))
	if err != nil {
		return 0, opErr("purge sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, opErr("purge sessions", err)
	}
	return n, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
